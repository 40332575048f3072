package common

import "strconv"

// SpeechSynthesisOutputFormat is the audio encoding requested from the synthesizer.
// The value is the name the service expects.
type SpeechSynthesisOutputFormat string

const (
	Raw16Khz16BitMonoPcm         SpeechSynthesisOutputFormat = "raw-16khz-16bit-mono-pcm"
	Raw24Khz16BitMonoPcm         SpeechSynthesisOutputFormat = "raw-24khz-16bit-mono-pcm"
	Raw48Khz16BitMonoPcm         SpeechSynthesisOutputFormat = "raw-48khz-16bit-mono-pcm"
	Riff16Khz16BitMonoPcm        SpeechSynthesisOutputFormat = "riff-16khz-16bit-mono-pcm"
	Riff24Khz16BitMonoPcm        SpeechSynthesisOutputFormat = "riff-24khz-16bit-mono-pcm"
	Audio16Khz32KBitRateMonoMp3  SpeechSynthesisOutputFormat = "audio-16khz-32kbitrate-mono-mp3"
	Audio24Khz48KBitRateMonoMp3  SpeechSynthesisOutputFormat = "audio-24khz-48kbitrate-mono-mp3"
	Ogg24Khz16BitMonoOpus        SpeechSynthesisOutputFormat = "ogg-24khz-16bit-mono-opus"
	Webm24Khz16Bit24KbpsMonoOpus SpeechSynthesisOutputFormat = "webm-24khz-16bit-24kbps-mono-opus"
)

// SampleRate returns the sample rate encoded in a raw PCM format name, or 0 for
// formats that are not raw PCM.
func (f SpeechSynthesisOutputFormat) SampleRate() int {
	switch f {
	case Raw16Khz16BitMonoPcm:
		return 16000
	case Raw24Khz16BitMonoPcm:
		return 24000
	case Raw48Khz16BitMonoPcm:
		return 48000
	default:
		return 0
	}
}

// SpeechSynthesisBoundaryType classifies a word boundary event.
type SpeechSynthesisBoundaryType int

const (
	WordBoundary        SpeechSynthesisBoundaryType = 0
	PunctuationBoundary SpeechSynthesisBoundaryType = 1
	SentenceBoundary    SpeechSynthesisBoundaryType = 2
)

func (t SpeechSynthesisBoundaryType) String() string {
	switch t {
	case WordBoundary:
		return "Word"
	case PunctuationBoundary:
		return "Punctuation"
	case SentenceBoundary:
		return "Sentence"
	default:
		return "SpeechSynthesisBoundaryType(" + strconv.Itoa(int(t)) + ")"
	}
}
