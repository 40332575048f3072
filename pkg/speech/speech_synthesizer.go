package speech

import (
	"context"
	"log"
	"sync"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
	"github.com/realtime-ai/speech-sdk-go/pkg/trace"
)

// SpeechSynthesisEventHandler handles SynthesisStarted, Synthesizing,
// SynthesisCompleted and SynthesisCanceled.
type SpeechSynthesisEventHandler func(event SpeechSynthesisEventArgs)

// SpeechSynthesisWordBoundaryEventHandler handles WordBoundary.
type SpeechSynthesisWordBoundaryEventHandler func(event SpeechSynthesisWordBoundaryEventArgs)

// SpeechSynthesisVisemeEventHandler handles VisemeReceived.
type SpeechSynthesisVisemeEventHandler func(event SpeechSynthesisVisemeEventArgs)

// SpeechSynthesisBookmarkEventHandler handles BookmarkReached.
type SpeechSynthesisBookmarkEventHandler func(event SpeechSynthesisBookmarkEventArgs)

type synthesisHandlerSet struct {
	result   map[native.EventKind]SpeechSynthesisEventHandler
	word     SpeechSynthesisWordBoundaryEventHandler
	viseme   SpeechSynthesisVisemeEventHandler
	bookmark SpeechSynthesisBookmarkEventHandler
}

func newSynthesisHandlerSet() synthesisHandlerSet {
	return synthesisHandlerSet{result: make(map[native.EventKind]SpeechSynthesisEventHandler)}
}

// SpeechSynthesizer turns text or SSML into audio. It owns the SpeechConfig and the
// optional AudioConfig it was created from and releases them on Close.
//
// Handlers run on the engine's goroutines. Like a recognizer, a synthesizer stays
// reachable from the callback registry until Close.
type SpeechSynthesizer struct {
	engine      native.Engine
	handle      *common.SmartHandle
	properties  *common.PropertyCollection
	config      *SpeechConfig
	audioConfig *audio.AudioConfig
	token       uintptr

	mu        sync.RWMutex
	handlers  synthesisHandlerSet
	connected map[native.EventKind]bool
	closeOnce sync.Once
}

// NewSpeechSynthesizerFromConfig creates a synthesizer and moves config and
// audioConfig into it. A nil audioConfig keeps the audio in the results only; pass a
// config from audio.NewAudioConfigFromStreamOutput to also stream it.
func NewSpeechSynthesizerFromConfig(config *SpeechConfig, audioConfig *audio.AudioConfig) (*SpeechSynthesizer, error) {
	var cfg *SpeechConfig
	if config != nil {
		cfg = config.take()
	}
	var output *audio.AudioConfig
	if audioConfig != nil {
		output = audioConfig.Take()
	}
	drop := func() {
		if cfg != nil {
			cfg.Close()
		}
		if output != nil {
			output.Close()
		}
	}

	if cfg == nil {
		drop()
		return nil, common.InvalidArgumentError("SpeechSynthesizer.FromConfig", "nil speech config")
	}
	if output != nil && output.Engine() != cfg.engine {
		drop()
		return nil, common.InvalidArgumentError("SpeechSynthesizer.FromConfig", "configs belong to different engines")
	}

	configHandle, err := cfg.handle.Get()
	if err != nil {
		drop()
		return nil, err
	}
	audioHandle := native.InvalidHandle
	if output != nil {
		if audioHandle = output.GetHandle(); !audioHandle.IsValid() {
			drop()
			return nil, common.ReleasedError("AudioConfig")
		}
	}

	engine := cfg.engine
	h, status := engine.SynthesizerCreateFromConfig(configHandle, audioHandle)
	if err := common.CheckStatus(status, "SpeechSynthesizer.FromConfig"); err != nil {
		drop()
		return nil, err
	}
	handle := common.NewSmartHandle("SpeechSynthesizer", h, engine.SynthesizerRelease)

	bag, status := engine.SynthesizerGetPropertyBag(h)
	if err := common.CheckStatus(status, "SpeechSynthesizer.GetPropertyBag"); err != nil {
		handle.Close()
		drop()
		return nil, err
	}

	s := &SpeechSynthesizer{
		engine:      engine,
		handle:      handle,
		properties:  common.NewPropertyCollection(engine, bag),
		config:      cfg,
		audioConfig: output,
		handlers:    newSynthesisHandlerSet(),
		connected:   make(map[native.EventKind]bool),
	}
	s.token = registerSynthesizer(s)
	return s, nil
}

// Properties returns the synthesizer's property collection.
func (s *SpeechSynthesizer) Properties() *common.PropertyCollection {
	return s.properties
}

// GetHandle returns the raw handle, or native.InvalidHandle once closed.
func (s *SpeechSynthesizer) GetHandle() native.Handle {
	return s.handle.Inner()
}

// SynthesisStarted sets the handler for the start of a synthesis.
func (s *SpeechSynthesizer) SynthesisStarted(handler SpeechSynthesisEventHandler) error {
	return s.setResultHandler(native.EventSynthesisStarted, handler)
}

// Synthesizing sets the handler for audio chunks as they are produced.
func (s *SpeechSynthesizer) Synthesizing(handler SpeechSynthesisEventHandler) error {
	return s.setResultHandler(native.EventSynthesizing, handler)
}

// SynthesisCompleted sets the handler for finished syntheses.
func (s *SpeechSynthesizer) SynthesisCompleted(handler SpeechSynthesisEventHandler) error {
	return s.setResultHandler(native.EventSynthesisCompleted, handler)
}

// SynthesisCanceled sets the handler for canceled syntheses.
func (s *SpeechSynthesizer) SynthesisCanceled(handler SpeechSynthesisEventHandler) error {
	return s.setResultHandler(native.EventSynthesisCanceled, handler)
}

// WordBoundary sets the handler for word boundaries.
func (s *SpeechSynthesizer) WordBoundary(handler SpeechSynthesisWordBoundaryEventHandler) error {
	return s.connect(native.EventWordBoundary, handler != nil, func() {
		s.handlers.word = handler
	})
}

// VisemeReceived sets the handler for visemes.
func (s *SpeechSynthesizer) VisemeReceived(handler SpeechSynthesisVisemeEventHandler) error {
	return s.connect(native.EventVisemeReceived, handler != nil, func() {
		s.handlers.viseme = handler
	})
}

// BookmarkReached sets the handler for SSML bookmarks.
func (s *SpeechSynthesizer) BookmarkReached(handler SpeechSynthesisBookmarkEventHandler) error {
	return s.connect(native.EventBookmarkReached, handler != nil, func() {
		s.handlers.bookmark = handler
	})
}

func (s *SpeechSynthesizer) setResultHandler(kind native.EventKind, handler SpeechSynthesisEventHandler) error {
	return s.connect(kind, handler != nil, func() {
		if handler == nil {
			delete(s.handlers.result, kind)
			return
		}
		s.handlers.result[kind] = handler
	})
}

func (s *SpeechSynthesizer) connect(kind native.EventKind, enable bool, store func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected[kind] != enable {
		var cb native.EventCallback
		if enable {
			cb = nativeSynthesisCallback(s.engine, kind)
		}
		err := s.handle.Use(func(h native.Handle) error {
			status := s.engine.SynthesizerSetCallback(h, kind, cb, s.token)
			return common.CheckStatus(status, "SpeechSynthesizer.SetCallback("+kind.String()+")")
		})
		if err != nil {
			return err
		}
		s.connected[kind] = enable
	}
	store()
	return nil
}

// SpeakText synthesizes plain text and waits for the result. The result must be
// closed. A canceled synthesis is not an error: inspect Reason and use
// NewCancellationDetailsFromSpeechSynthesisResult.
//
// If ctx ends first the synthesis is stopped, its result released and ctx.Err()
// returned.
func (s *SpeechSynthesizer) SpeakText(ctx context.Context, text string) (*SpeechSynthesisResult, error) {
	return s.speak(ctx, text, false)
}

// SpeakSsml is SpeakText for an SSML document.
func (s *SpeechSynthesizer) SpeakSsml(ctx context.Context, ssml string) (*SpeechSynthesisResult, error) {
	return s.speak(ctx, ssml, true)
}

func (s *SpeechSynthesizer) speak(ctx context.Context, text string, ssml bool) (*SpeechSynthesisResult, error) {
	input, err := common.NewCString(text)
	if err != nil {
		return nil, err
	}

	var result *SpeechSynthesisResult
	err = trace.WithSpan(ctx, "speech.synthesizer.speak", func(ctx context.Context) error {
		done := make(chan SpeechSynthesisOutcome, 1)
		go func() {
			done <- s.speakNative(input, ssml)
		}()

		select {
		case outcome := <-done:
			result = outcome.Result
			return outcome.Error
		case <-ctx.Done():
			if err := s.StopSpeaking(context.WithoutCancel(ctx)); err != nil {
				log.Printf("[SpeechSynthesizer] failed to stop speaking: %v", err)
			}
			go func() {
				(<-done).Close()
			}()
			return ctx.Err()
		}
	}, trace.SynthesisAttrs(len(text), ssml)...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SpeechSynthesizer) speakNative(input native.CString, ssml bool) SpeechSynthesisOutcome {
	var outcome SpeechSynthesisOutcome
	outcome.Error = s.handle.Use(func(h native.Handle) error {
		resultHandle, status := s.engine.SynthesizerSpeak(h, input, ssml)
		if err := common.CheckStatus(status, "SpeechSynthesizer.Speak"); err != nil {
			return err
		}
		result, err := NewSpeechSynthesisResultFromHandle(s.engine, resultHandle)
		if err != nil {
			return err
		}
		outcome.Result = result
		return nil
	})
	return outcome
}

// SpeakTextAsync runs SpeakText on a new goroutine. The channel receives the outcome
// and is then closed.
func (s *SpeechSynthesizer) SpeakTextAsync(text string) chan SpeechSynthesisOutcome {
	return s.speakAsync(text, false)
}

// SpeakSsmlAsync runs SpeakSsml on a new goroutine.
func (s *SpeechSynthesizer) SpeakSsmlAsync(ssml string) chan SpeechSynthesisOutcome {
	return s.speakAsync(ssml, true)
}

func (s *SpeechSynthesizer) speakAsync(text string, ssml bool) chan SpeechSynthesisOutcome {
	out := make(chan SpeechSynthesisOutcome, 1)
	go func() {
		defer close(out)
		result, err := s.speak(context.Background(), text, ssml)
		out <- SpeechSynthesisOutcome{Result: result, Error: err}
	}()
	return out
}

// StopSpeaking stops the synthesis in progress, if any.
func (s *SpeechSynthesizer) StopSpeaking(ctx context.Context) error {
	return trace.WithSpan(ctx, "speech.synthesizer.stop", func(context.Context) error {
		return s.handle.Use(func(h native.Handle) error {
			return common.CheckStatus(s.engine.SynthesizerStopSpeaking(h), "SpeechSynthesizer.StopSpeaking")
		})
	})
}

// Close stops event dispatch, then releases the synthesizer, its property bag and the
// configs it owns. An output stream the synthesizer was writing to reaches its end.
func (s *SpeechSynthesizer) Close() {
	s.closeOnce.Do(func() {
		unregisterSynthesizer(s.token)

		s.mu.Lock()
		s.handlers = newSynthesisHandlerSet()
		s.mu.Unlock()

		s.handle.Close()
		s.properties.Close()
		s.config.Close()
		if s.audioConfig != nil {
			s.audioConfig.Close()
		}
	})
}

// synthesizers maps callback context tokens to live synthesizers.
var synthesizers = native.NewHandleTable[*SpeechSynthesizer]()

func registerSynthesizer(s *SpeechSynthesizer) uintptr {
	return uintptr(synthesizers.Insert(s))
}

func unregisterSynthesizer(token uintptr) {
	synthesizers.Remove(native.Handle(token))
}

func nativeSynthesisCallback(engine native.Engine, kind native.EventKind) native.EventCallback {
	return func(_ native.Handle, event native.Handle, context uintptr) {
		s, ok := synthesizers.Lookup(native.Handle(context))
		if !ok {
			engine.EventRelease(event)
			return
		}
		s.dispatch(kind, event)
	}
}

func (s *SpeechSynthesizer) dispatch(kind native.EventKind, event native.Handle) {
	s.mu.RLock()
	result := s.handlers.result[kind]
	word := s.handlers.word
	viseme := s.handlers.viseme
	bookmark := s.handlers.bookmark
	s.mu.RUnlock()

	drop := func(err error) {
		log.Printf("[SpeechSynthesizer] %s event dropped: %v", kind, err)
	}

	switch kind {
	case native.EventSynthesisStarted, native.EventSynthesizing,
		native.EventSynthesisCompleted, native.EventSynthesisCanceled:
		if result == nil {
			s.engine.EventRelease(event)
			return
		}
		args, err := NewSpeechSynthesisEventArgsFromHandle(s.engine, event)
		if err != nil {
			drop(err)
			return
		}
		defer args.Close()
		result(*args)

	case native.EventWordBoundary:
		if word == nil {
			s.engine.EventRelease(event)
			return
		}
		args, err := NewSpeechSynthesisWordBoundaryEventArgsFromHandle(s.engine, event)
		if err != nil {
			drop(err)
			return
		}
		defer args.Close()
		word(*args)

	case native.EventVisemeReceived:
		if viseme == nil {
			s.engine.EventRelease(event)
			return
		}
		args, err := NewSpeechSynthesisVisemeEventArgsFromHandle(s.engine, event)
		if err != nil {
			drop(err)
			return
		}
		defer args.Close()
		viseme(*args)

	case native.EventBookmarkReached:
		if bookmark == nil {
			s.engine.EventRelease(event)
			return
		}
		args, err := NewSpeechSynthesisBookmarkEventArgsFromHandle(s.engine, event)
		if err != nil {
			drop(err)
			return
		}
		defer args.Close()
		bookmark(*args)

	default:
		s.engine.EventRelease(event)
	}
}
