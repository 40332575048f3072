package speech

import (
	"log"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// SessionEventHandler handles SessionStarted and SessionStopped.
type SessionEventHandler func(event SessionEventArgs)

// RecognitionEventHandler handles SpeechStartDetected and SpeechEndDetected.
type RecognitionEventHandler func(event RecognitionEventArgs)

// SpeechRecognitionEventHandler handles Recognizing and Recognized.
type SpeechRecognitionEventHandler func(event SpeechRecognitionEventArgs)

// SpeechRecognitionCanceledEventHandler handles Canceled.
type SpeechRecognitionCanceledEventHandler func(event SpeechRecognitionCanceledEventArgs)

// EventHandler receives every recognizer event. Embed NoOpEventHandler to implement
// only the methods you need.
type EventHandler interface {
	OnSessionStarted(event SessionEventArgs)
	OnSessionStopped(event SessionEventArgs)
	OnSpeechStartDetected(event RecognitionEventArgs)
	OnSpeechEndDetected(event RecognitionEventArgs)
	OnRecognizing(event SpeechRecognitionEventArgs)
	OnRecognized(event SpeechRecognitionEventArgs)
	OnCanceled(event SpeechRecognitionCanceledEventArgs)
}

// NoOpEventHandler ignores every event.
type NoOpEventHandler struct{}

func (NoOpEventHandler) OnSessionStarted(SessionEventArgs)             {}
func (NoOpEventHandler) OnSessionStopped(SessionEventArgs)             {}
func (NoOpEventHandler) OnSpeechStartDetected(RecognitionEventArgs)    {}
func (NoOpEventHandler) OnSpeechEndDetected(RecognitionEventArgs)      {}
func (NoOpEventHandler) OnRecognizing(SpeechRecognitionEventArgs)      {}
func (NoOpEventHandler) OnRecognized(SpeechRecognitionEventArgs)       {}
func (NoOpEventHandler) OnCanceled(SpeechRecognitionCanceledEventArgs) {}

var _ EventHandler = NoOpEventHandler{}

// handlerSet holds at most one handler per event kind. Only the field matching the
// kind is set.
type handlerSet struct {
	session     map[native.EventKind]SessionEventHandler
	recognition map[native.EventKind]RecognitionEventHandler
	speech      map[native.EventKind]SpeechRecognitionEventHandler
	canceled    SpeechRecognitionCanceledEventHandler
}

func newHandlerSet() handlerSet {
	return handlerSet{
		session:     make(map[native.EventKind]SessionEventHandler),
		recognition: make(map[native.EventKind]RecognitionEventHandler),
		speech:      make(map[native.EventKind]SpeechRecognitionEventHandler),
	}
}

// recognizers maps callback context tokens to live recognizers. The engine only ever
// sees the token, never a Go pointer.
var recognizers = native.NewHandleTable[*SpeechRecognizer]()

func register(r *SpeechRecognizer) uintptr {
	return uintptr(recognizers.Insert(r))
}

func unregister(token uintptr) {
	recognizers.Remove(native.Handle(token))
}

// nativeCallback returns the callback connected to the kind slot. It resolves the
// recognizer from the context token, so an event arriving after Close is released
// without touching the recognizer.
func nativeCallback(engine native.Engine, kind native.EventKind) native.EventCallback {
	return func(_ native.Handle, event native.Handle, context uintptr) {
		r, ok := recognizers.Lookup(native.Handle(context))
		if !ok {
			engine.EventRelease(event)
			return
		}
		r.dispatch(kind, event)
	}
}

// dispatch builds the event value for kind, hands it to the registered handler and
// releases it once the handler returns.
func (r *SpeechRecognizer) dispatch(kind native.EventKind, event native.Handle) {
	r.mu.RLock()
	session := r.handlers.session[kind]
	recognition := r.handlers.recognition[kind]
	recognized := r.handlers.speech[kind]
	canceled := r.handlers.canceled
	r.mu.RUnlock()

	switch kind {
	case native.EventSessionStarted, native.EventSessionStopped:
		handler := session
		if handler == nil {
			r.engine.EventRelease(event)
			return
		}
		args, err := NewSessionEventArgsFromHandle(r.engine, event)
		if err != nil {
			log.Printf("[SpeechRecognizer] %s event dropped: %v", kind, err)
			return
		}
		defer args.Close()
		handler(*args)

	case native.EventSpeechStartDetected, native.EventSpeechEndDetected:
		handler := recognition
		if handler == nil {
			r.engine.EventRelease(event)
			return
		}
		args, err := NewRecognitionEventArgsFromHandle(r.engine, event)
		if err != nil {
			log.Printf("[SpeechRecognizer] %s event dropped: %v", kind, err)
			return
		}
		defer args.Close()
		handler(*args)

	case native.EventRecognizing, native.EventRecognized:
		handler := recognized
		if handler == nil {
			r.engine.EventRelease(event)
			return
		}
		args, err := NewSpeechRecognitionEventArgsFromHandle(r.engine, event)
		if err != nil {
			log.Printf("[SpeechRecognizer] %s event dropped: %v", kind, err)
			return
		}
		defer args.Close()
		handler(*args)

	case native.EventCanceled:
		handler := canceled
		if handler == nil {
			r.engine.EventRelease(event)
			return
		}
		args, err := NewSpeechRecognitionCanceledEventArgsFromHandle(r.engine, event)
		if err != nil {
			log.Printf("[SpeechRecognizer] %s event dropped: %v", kind, err)
			return
		}
		defer args.Close()
		if !common.IsKnownCancellationReason(args.ReasonCode) {
			log.Printf("[SpeechRecognizer] unknown cancellation reason %d, treating as %s", args.ReasonCode, args.Reason)
		}
		handler(*args)

	default:
		r.engine.EventRelease(event)
	}
}
