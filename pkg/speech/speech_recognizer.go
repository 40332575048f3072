package speech

import (
	"context"
	"sync"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
	"github.com/realtime-ai/speech-sdk-go/pkg/trace"
)

// SpeechRecognizer transcribes audio from its AudioConfig. It owns the SpeechConfig
// and AudioConfig it was created from and releases them on Close.
//
// Handlers run on the engine's goroutines. A recognizer stays reachable from the
// callback registry until Close, so it must always be closed.
type SpeechRecognizer struct {
	engine      native.Engine
	handle      *common.SmartHandle
	properties  *common.PropertyCollection
	config      *SpeechConfig
	audioConfig *audio.AudioConfig
	token       uintptr

	mu        sync.RWMutex
	handlers  handlerSet
	connected map[native.EventKind]bool
	closeOnce sync.Once
}

// RecognizerOption adjusts how NewSpeechRecognizerFromConfig creates a recognizer.
type RecognizerOption func(*recognizerOptions)

type recognizerOptions struct {
	autoDetect *AutoDetectSourceLanguageConfig
}

// WithAutoDetectSourceLanguageConfig makes the recognizer detect the spoken language
// among the candidates of c instead of using the config's recognition language. c is
// only read during creation and stays owned by the caller.
func WithAutoDetectSourceLanguageConfig(c *AutoDetectSourceLanguageConfig) RecognizerOption {
	return func(o *recognizerOptions) {
		o.autoDetect = c
	}
}

// NewSpeechRecognizerFromConfig creates a recognizer and moves config and audioConfig
// into it. Both arguments are unusable afterwards, whether or not creation succeeds.
func NewSpeechRecognizerFromConfig(config *SpeechConfig, audioConfig *audio.AudioConfig, opts ...RecognizerOption) (*SpeechRecognizer, error) {
	var options recognizerOptions
	for _, opt := range opts {
		opt(&options)
	}

	var cfg *SpeechConfig
	if config != nil {
		cfg = config.take()
	}
	var input *audio.AudioConfig
	if audioConfig != nil {
		input = audioConfig.Take()
	}
	drop := func() {
		if cfg != nil {
			cfg.Close()
		}
		if input != nil {
			input.Close()
		}
	}

	switch {
	case cfg == nil:
		drop()
		return nil, common.InvalidArgumentError("SpeechRecognizer.FromConfig", "nil speech config")
	case input == nil:
		drop()
		return nil, common.InvalidArgumentError("SpeechRecognizer.FromConfig", "nil audio config")
	case cfg.engine != input.Engine():
		drop()
		return nil, common.InvalidArgumentError("SpeechRecognizer.FromConfig", "configs belong to different engines")
	case options.autoDetect != nil && options.autoDetect.engine != cfg.engine:
		drop()
		return nil, common.InvalidArgumentError("SpeechRecognizer.FromConfig", "auto detect config belongs to a different engine")
	}

	configHandle, err := cfg.handle.Get()
	if err != nil {
		drop()
		return nil, err
	}
	audioHandle := input.GetHandle()
	if !audioHandle.IsValid() {
		drop()
		return nil, common.ReleasedError("AudioConfig")
	}

	engine := cfg.engine
	var h native.Handle
	if options.autoDetect == nil {
		var status native.Status
		h, status = engine.RecognizerCreateFromConfig(configHandle, audioHandle)
		err = common.CheckStatus(status, "SpeechRecognizer.FromConfig")
	} else {
		err = options.autoDetect.handle.Use(func(detect native.Handle) error {
			var status native.Status
			h, status = engine.RecognizerCreateFromAutoDetectConfig(configHandle, detect, audioHandle)
			return common.CheckStatus(status, "SpeechRecognizer.FromAutoDetectConfig")
		})
	}
	if err != nil {
		drop()
		return nil, err
	}
	handle := common.NewSmartHandle("SpeechRecognizer", h, engine.RecognizerRelease)

	bag, status := engine.RecognizerGetPropertyBag(h)
	if err := common.CheckStatus(status, "SpeechRecognizer.GetPropertyBag"); err != nil {
		handle.Close()
		drop()
		return nil, err
	}

	r := &SpeechRecognizer{
		engine:      engine,
		handle:      handle,
		properties:  common.NewPropertyCollection(engine, bag),
		config:      cfg,
		audioConfig: input,
		handlers:    newHandlerSet(),
		connected:   make(map[native.EventKind]bool),
	}
	r.token = register(r)
	return r, nil
}

// Properties returns the recognizer's property collection.
func (r *SpeechRecognizer) Properties() *common.PropertyCollection {
	return r.properties
}

// GetHandle returns the raw handle, or native.InvalidHandle once closed.
func (r *SpeechRecognizer) GetHandle() native.Handle {
	return r.handle.Inner()
}

// SessionStarted sets the handler for session start. A nil handler disconnects.
func (r *SpeechRecognizer) SessionStarted(handler SessionEventHandler) error {
	return r.setSessionHandler(native.EventSessionStarted, handler)
}

// SessionStopped sets the handler for session end. A nil handler disconnects.
func (r *SpeechRecognizer) SessionStopped(handler SessionEventHandler) error {
	return r.setSessionHandler(native.EventSessionStopped, handler)
}

// SpeechStartDetected sets the handler for detected start of speech.
func (r *SpeechRecognizer) SpeechStartDetected(handler RecognitionEventHandler) error {
	return r.setRecognitionHandler(native.EventSpeechStartDetected, handler)
}

// SpeechEndDetected sets the handler for detected end of speech.
func (r *SpeechRecognizer) SpeechEndDetected(handler RecognitionEventHandler) error {
	return r.setRecognitionHandler(native.EventSpeechEndDetected, handler)
}

// Recognizing sets the handler for intermediate results.
func (r *SpeechRecognizer) Recognizing(handler SpeechRecognitionEventHandler) error {
	return r.setSpeechHandler(native.EventRecognizing, handler)
}

// Recognized sets the handler for final results.
func (r *SpeechRecognizer) Recognized(handler SpeechRecognitionEventHandler) error {
	return r.setSpeechHandler(native.EventRecognized, handler)
}

// Canceled sets the handler for canceled recognitions.
func (r *SpeechRecognizer) Canceled(handler SpeechRecognitionCanceledEventHandler) error {
	return r.connect(native.EventCanceled, handler != nil, func() {
		r.handlers.canceled = handler
	})
}

func (r *SpeechRecognizer) setSessionHandler(kind native.EventKind, handler SessionEventHandler) error {
	return r.connect(kind, handler != nil, func() {
		if handler == nil {
			delete(r.handlers.session, kind)
			return
		}
		r.handlers.session[kind] = handler
	})
}

func (r *SpeechRecognizer) setRecognitionHandler(kind native.EventKind, handler RecognitionEventHandler) error {
	return r.connect(kind, handler != nil, func() {
		if handler == nil {
			delete(r.handlers.recognition, kind)
			return
		}
		r.handlers.recognition[kind] = handler
	})
}

func (r *SpeechRecognizer) setSpeechHandler(kind native.EventKind, handler SpeechRecognitionEventHandler) error {
	return r.connect(kind, handler != nil, func() {
		if handler == nil {
			delete(r.handlers.speech, kind)
			return
		}
		r.handlers.speech[kind] = handler
	})
}

// connect stores a handler with store and makes the native slot for kind match:
// connected while a handler is set, disconnected otherwise.
func (r *SpeechRecognizer) connect(kind native.EventKind, enable bool, store func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected[kind] != enable {
		var cb native.EventCallback
		if enable {
			cb = nativeCallback(r.engine, kind)
		}
		err := r.handle.Use(func(h native.Handle) error {
			status := r.engine.RecognizerSetCallback(h, kind, cb, r.token)
			return common.CheckStatus(status, "SpeechRecognizer.SetCallback("+kind.String()+")")
		})
		if err != nil {
			return err
		}
		r.connected[kind] = enable
	}
	store()
	return nil
}

// RegisterEventHandler routes every event kind to h. Passing nil disconnects all
// handlers.
func (r *SpeechRecognizer) RegisterEventHandler(h EventHandler) error {
	if h == nil {
		for _, kind := range native.EventKinds {
			if err := r.connect(kind, false, r.clearer(kind)); err != nil {
				return err
			}
		}
		return nil
	}

	setters := []func() error{
		func() error { return r.SessionStarted(h.OnSessionStarted) },
		func() error { return r.SessionStopped(h.OnSessionStopped) },
		func() error { return r.SpeechStartDetected(h.OnSpeechStartDetected) },
		func() error { return r.SpeechEndDetected(h.OnSpeechEndDetected) },
		func() error { return r.Recognizing(h.OnRecognizing) },
		func() error { return r.Recognized(h.OnRecognized) },
		func() error { return r.Canceled(h.OnCanceled) },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SpeechRecognizer) clearer(kind native.EventKind) func() {
	return func() {
		delete(r.handlers.session, kind)
		delete(r.handlers.recognition, kind)
		delete(r.handlers.speech, kind)
		if kind == native.EventCanceled {
			r.handlers.canceled = nil
		}
	}
}

// StartContinuousRecognition starts recognizing until StopContinuousRecognition is
// called. Results arrive on the Recognizing and Recognized handlers.
func (r *SpeechRecognizer) StartContinuousRecognition(ctx context.Context) error {
	return trace.WithSpan(ctx, "speech.recognizer.start", func(context.Context) error {
		return r.handle.Use(func(h native.Handle) error {
			status := r.engine.RecognizerStartContinuous(h)
			return common.CheckStatus(status, "SpeechRecognizer.StartContinuousRecognition")
		})
	})
}

// StopContinuousRecognition stops a running continuous recognition.
func (r *SpeechRecognizer) StopContinuousRecognition(ctx context.Context) error {
	return trace.WithSpan(ctx, "speech.recognizer.stop", func(context.Context) error {
		return r.handle.Use(func(h native.Handle) error {
			status := r.engine.RecognizerStopContinuous(h)
			return common.CheckStatus(status, "SpeechRecognizer.StopContinuousRecognition")
		})
	})
}

// StartKeywordRecognition listens for the keyword of model. A Recognized event with
// reason RecognizedKeyword reports each match; the audio following it is recognized
// like continuous recognition until StopKeywordRecognition.
func (r *SpeechRecognizer) StartKeywordRecognition(ctx context.Context, model *KeywordRecognitionModel) error {
	if model == nil {
		return common.InvalidArgumentError("SpeechRecognizer.StartKeywordRecognition", "nil keyword model")
	}
	if model.engine != r.engine {
		return common.InvalidArgumentError("SpeechRecognizer.StartKeywordRecognition", "model belongs to a different engine")
	}
	return trace.WithSpan(ctx, "speech.recognizer.start_keyword", func(context.Context) error {
		return r.handle.Use(func(h native.Handle) error {
			return model.handle.Use(func(m native.Handle) error {
				status := r.engine.RecognizerStartKeyword(h, m)
				return common.CheckStatus(status, "SpeechRecognizer.StartKeywordRecognition")
			})
		})
	})
}

// StopKeywordRecognition stops keyword recognition.
func (r *SpeechRecognizer) StopKeywordRecognition(ctx context.Context) error {
	return trace.WithSpan(ctx, "speech.recognizer.stop_keyword", func(context.Context) error {
		return r.handle.Use(func(h native.Handle) error {
			status := r.engine.RecognizerStopKeyword(h)
			return common.CheckStatus(status, "SpeechRecognizer.StopKeywordRecognition")
		})
	})
}

// StartKeywordRecognitionAsync runs StartKeywordRecognition on a new goroutine.
func (r *SpeechRecognizer) StartKeywordRecognitionAsync(model *KeywordRecognitionModel) chan error {
	return runAsync(func() error {
		return r.StartKeywordRecognition(context.Background(), model)
	})
}

// StopKeywordRecognitionAsync runs StopKeywordRecognition on a new goroutine.
func (r *SpeechRecognizer) StopKeywordRecognitionAsync() chan error {
	return runAsync(func() error {
		return r.StopKeywordRecognition(context.Background())
	})
}

// StartContinuousRecognitionAsync runs StartContinuousRecognition on a new goroutine.
// The channel receives the outcome and is then closed.
func (r *SpeechRecognizer) StartContinuousRecognitionAsync() chan error {
	return runAsync(func() error {
		return r.StartContinuousRecognition(context.Background())
	})
}

// StopContinuousRecognitionAsync runs StopContinuousRecognition on a new goroutine.
func (r *SpeechRecognizer) StopContinuousRecognitionAsync() chan error {
	return runAsync(func() error {
		return r.StopContinuousRecognition(context.Background())
	})
}

func runAsync(fn func() error) chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- fn()
	}()
	return out
}

// Close stops event dispatch, then releases the recognizer, its property bag and the
// configs it owns, in that order. Events still in flight are released unseen.
func (r *SpeechRecognizer) Close() {
	r.closeOnce.Do(func() {
		unregister(r.token)

		r.mu.Lock()
		r.handlers = newHandlerSet()
		r.mu.Unlock()

		r.handle.Close()
		r.properties.Close()
		r.config.Close()
		r.audioConfig.Close()
	})
}
