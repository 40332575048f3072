package common

// ResultReason specifies the possible reasons a recognition result might be generated.
type ResultReason int

const (
	NoMatch                    ResultReason = 0
	Canceled                   ResultReason = 1
	RecognizingSpeech          ResultReason = 2
	RecognizedSpeech           ResultReason = 3
	RecognizingIntent          ResultReason = 4
	RecognizedIntent           ResultReason = 5
	TranslatingSpeech          ResultReason = 6
	TranslatedSpeech           ResultReason = 7
	SynthesizingAudio          ResultReason = 8
	SynthesizingAudioCompleted ResultReason = 9
	RecognizingKeyword         ResultReason = 10
	RecognizedKeyword          ResultReason = 11
	SynthesizingAudioStarted   ResultReason = 12
)

func (r ResultReason) String() string {
	switch r {
	case NoMatch:
		return "NoMatch"
	case Canceled:
		return "Canceled"
	case RecognizingSpeech:
		return "RecognizingSpeech"
	case RecognizedSpeech:
		return "RecognizedSpeech"
	case RecognizingIntent:
		return "RecognizingIntent"
	case RecognizedIntent:
		return "RecognizedIntent"
	case TranslatingSpeech:
		return "TranslatingSpeech"
	case TranslatedSpeech:
		return "TranslatedSpeech"
	case SynthesizingAudio:
		return "SynthesizingAudio"
	case SynthesizingAudioCompleted:
		return "SynthesizingAudioCompleted"
	case RecognizingKeyword:
		return "RecognizingKeyword"
	case RecognizedKeyword:
		return "RecognizedKeyword"
	case SynthesizingAudioStarted:
		return "SynthesizingAudioStarted"
	default:
		return "Unknown"
	}
}
