package native

import (
	"errors"
	"sync"
)

// ErrEngineUnavailable is returned by Default when no engine was installed and the
// binary was built without the speechsdk tag.
var ErrEngineUnavailable = errors.New("native speech engine not available (build with -tags speechsdk)")

// EventKind identifies one of the recognizer or synthesizer callback slots.
type EventKind int

const (
	EventSessionStarted EventKind = iota
	EventSessionStopped
	EventSpeechStartDetected
	EventSpeechEndDetected
	EventRecognizing
	EventRecognized
	EventCanceled

	EventSynthesisStarted
	EventSynthesizing
	EventSynthesisCompleted
	EventSynthesisCanceled
	EventWordBoundary
	EventVisemeReceived
	EventBookmarkReached
)

// EventKinds lists every recognizer callback slot, in registration order.
var EventKinds = []EventKind{
	EventSessionStarted,
	EventSessionStopped,
	EventSpeechStartDetected,
	EventSpeechEndDetected,
	EventRecognizing,
	EventRecognized,
	EventCanceled,
}

// SynthesisEventKinds lists every synthesizer callback slot.
var SynthesisEventKinds = []EventKind{
	EventSynthesisStarted,
	EventSynthesizing,
	EventSynthesisCompleted,
	EventSynthesisCanceled,
	EventWordBoundary,
	EventVisemeReceived,
	EventBookmarkReached,
}

// IsSynthesisEvent reports whether kind belongs to a synthesizer.
func (k EventKind) IsSynthesisEvent() bool {
	return k >= EventSynthesisStarted && k <= EventBookmarkReached
}

// carriesSynthesisResult reports whether events of kind expose a synthesis result.
func (k EventKind) carriesSynthesisResult() bool {
	return k >= EventSynthesisStarted && k <= EventSynthesisCanceled
}

func (k EventKind) String() string {
	switch k {
	case EventSessionStarted:
		return "session_started"
	case EventSessionStopped:
		return "session_stopped"
	case EventSpeechStartDetected:
		return "speech_start_detected"
	case EventSpeechEndDetected:
		return "speech_end_detected"
	case EventRecognizing:
		return "recognizing"
	case EventRecognized:
		return "recognized"
	case EventCanceled:
		return "canceled"
	case EventSynthesisStarted:
		return "synthesis_started"
	case EventSynthesizing:
		return "synthesizing"
	case EventSynthesisCompleted:
		return "synthesis_completed"
	case EventSynthesisCanceled:
		return "synthesis_canceled"
	case EventWordBoundary:
		return "word_boundary"
	case EventVisemeReceived:
		return "viseme_received"
	case EventBookmarkReached:
		return "bookmark_reached"
	default:
		return "unknown"
	}
}

// WordBoundary is the numeric payload of a word boundary event. Offsets and durations
// are in ticks of 100 ns; TextOffset and WordLength count characters of the input.
type WordBoundary struct {
	AudioOffset  uint64
	Duration     uint64
	TextOffset   uint32
	WordLength   uint32
	BoundaryType int
}

// Viseme is the numeric payload of a viseme event.
type Viseme struct {
	AudioOffset uint64
	VisemeID    uint32
}

// EventCallback is invoked by the engine, possibly from its own goroutines. source is
// the recognizer or synthesizer that raised the event. The event handle belongs to the
// receiver, which must release it with EventRelease. context is the opaque value passed
// to RecognizerSetCallback or SynthesizerSetCallback.
type EventCallback func(source Handle, event Handle, context uintptr)

// Engine is the catalog of native entry points. Every method returns a Status that the
// caller checks immediately. String inputs are NUL-terminated.
//
// Methods that copy a string out take a caller-owned buffer and report the number of
// bytes written, excluding the terminator. If the buffer is too small they return
// StatusBufferTooSmall together with the required length.
type Engine interface {
	SpeechConfigFromSubscription(subscriptionKey, region CString) (Handle, Status)
	SpeechConfigGetPropertyBag(config Handle) (Handle, Status)
	SpeechConfigRelease(config Handle) Status

	PropertyBagSetString(bag Handle, id int, name, value CString) Status
	PropertyBagGetString(bag Handle, id int, name, defaultValue CString, buf []byte) (uint32, Status)
	PropertyBagRelease(bag Handle) Status

	AudioConfigFromDefaultMicrophone() (Handle, Status)
	AudioConfigFromWavFile(fileName CString) (Handle, Status)
	AudioConfigFromStream(stream Handle) (Handle, Status)
	// AudioConfigFromStreamOutput directs synthesized audio into a pull stream.
	AudioConfigFromStreamOutput(stream Handle) (Handle, Status)
	AudioConfigRelease(config Handle) Status

	// PullAudioOutputStreamRead blocks until at least one byte is available or the
	// stream reached its end, then fills at most len(buf) bytes.
	PullAudioOutputStreamCreate() (Handle, Status)
	PullAudioOutputStreamRead(stream Handle, buf []byte) (uint32, Status)
	PushAudioInputStreamCreate() (Handle, Status)
	PushAudioInputStreamWrite(stream Handle, data []byte) Status
	PushAudioInputStreamClose(stream Handle) Status
	AudioStreamRelease(stream Handle) Status

	RecognizerCreateFromConfig(config, audioConfig Handle) (Handle, Status)
	RecognizerGetPropertyBag(recognizer Handle) (Handle, Status)
	// RecognizerSetCallback connects cb to the kind slot; a nil cb disconnects it.
	RecognizerSetCallback(recognizer Handle, kind EventKind, cb EventCallback, context uintptr) Status
	RecognizerStartContinuous(recognizer Handle) Status
	RecognizerStopContinuous(recognizer Handle) Status
	RecognizerRelease(recognizer Handle) Status

	// languages is a comma-separated list of locales.
	AutoDetectSourceLanguageConfigFromLanguages(languages CString) (Handle, Status)
	AutoDetectSourceLanguageConfigFromSourceLanguageConfigs(configs []Handle) (Handle, Status)
	AutoDetectSourceLanguageConfigRelease(config Handle) Status
	// An empty endpointID selects the base model.
	SourceLanguageConfigFromLanguage(language, endpointID CString) (Handle, Status)
	SourceLanguageConfigRelease(config Handle) Status
	RecognizerCreateFromAutoDetectConfig(config, autoDetect, audioConfig Handle) (Handle, Status)

	KeywordModelFromFile(fileName CString) (Handle, Status)
	KeywordModelRelease(model Handle) Status
	RecognizerStartKeyword(recognizer, model Handle) Status
	RecognizerStopKeyword(recognizer Handle) Status

	// SynthesizerCreateFromConfig accepts InvalidHandle as audioConfig, in which case
	// audio is only returned through results.
	SynthesizerCreateFromConfig(config, audioConfig Handle) (Handle, Status)
	SynthesizerGetPropertyBag(synthesizer Handle) (Handle, Status)
	SynthesizerSetCallback(synthesizer Handle, kind EventKind, cb EventCallback, context uintptr) Status
	// SynthesizerSpeak blocks until synthesis completed or was canceled and returns
	// the result handle. text is SSML when ssml is set.
	SynthesizerSpeak(synthesizer Handle, text CString, ssml bool) (Handle, Status)
	SynthesizerStopSpeaking(synthesizer Handle) Status
	SynthesizerRelease(synthesizer Handle) Status

	SynthesisEventGetResult(event Handle) (Handle, Status)
	WordBoundaryEventGetValues(event Handle) (WordBoundary, Status)
	VisemeEventGetValues(event Handle) (Viseme, Status)
	BookmarkEventGetOffset(event Handle) (uint64, Status)
	// SynthesisEventGetText copies the word of a word boundary event, the animation
	// of a viseme event or the text of a bookmark event.
	SynthesisEventGetText(event Handle, buf []byte) (uint32, Status)

	SynthesisResultGetAudioLength(result Handle) (uint32, Status)
	SynthesisResultGetAudioData(result Handle, buf []byte) (uint32, Status)

	// AudioDataStreamFromResult takes a result returned by SynthesizerSpeak. Results
	// taken from events may be refused with StatusInvalidState.
	AudioDataStreamFromResult(result Handle) (Handle, Status)
	// AudioDataStreamRead never blocks on a completed result; zero filled means the
	// audio is exhausted.
	AudioDataStreamRead(stream Handle, buf []byte) (uint32, Status)
	AudioDataStreamRelease(stream Handle) Status

	EventGetSessionID(event Handle, buf []byte) (uint32, Status)
	RecognitionEventGetOffset(event Handle) (uint64, Status)
	RecognitionEventGetResult(event Handle) (Handle, Status)
	EventRelease(event Handle) Status

	ResultGetReason(result Handle) (int, Status)
	ResultGetCanceledReason(result Handle) (int, Status)
	ResultGetCanceledErrorCode(result Handle) (int, Status)
	ResultGetText(result Handle, buf []byte) (uint32, Status)
	ResultGetResultID(result Handle, buf []byte) (uint32, Status)
	ResultGetPropertyBag(result Handle) (Handle, Status)
	ResultRelease(result Handle) Status
}

var (
	defaultMu     sync.Mutex
	defaultEngine Engine
)

// SetDefault installs the engine used by constructors that do not take one and returns
// the previously installed engine (nil if none).
func SetDefault(e Engine) Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultEngine
	defaultEngine = e
	return prev
}

// Default returns the installed engine, creating the SDK-backed engine on first use.
func Default() (Engine, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultEngine != nil {
		return defaultEngine, nil
	}

	e, err := NewSDKEngine()
	if err != nil {
		return nil, err
	}
	defaultEngine = e
	return e, nil
}
