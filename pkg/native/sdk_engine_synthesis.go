//go:build speechsdk

package native

import (
	"errors"
	"io"
	"strings"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
)

func (e *sdkEngine) AutoDetectSourceLanguageConfigFromLanguages(languages CString) (Handle, Status) {
	var list []string
	for _, lang := range strings.Split(languages.String(), ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			list = append(list, lang)
		}
	}
	if len(list) == 0 {
		return InvalidHandle, StatusInvalidArg
	}
	c, err := speech.NewAutoDetectSourceLanguageConfigFromLanguages(list)
	if err != nil {
		return InvalidHandle, statusFromError("auto detect config from languages", err)
	}
	return e.autoDetect.Insert(c), StatusOK
}

func (e *sdkEngine) AutoDetectSourceLanguageConfigFromSourceLanguageConfigs(configs []Handle) (Handle, Status) {
	if len(configs) == 0 {
		return InvalidHandle, StatusInvalidArg
	}
	list := make([]*speech.SourceLanguageConfig, 0, len(configs))
	for _, h := range configs {
		c, ok := e.sourceLangs.Lookup(h)
		if !ok {
			return InvalidHandle, StatusInvalidHandle
		}
		list = append(list, c)
	}
	c, err := speech.NewAutoDetectSourceLanguageConfigFromLanguageConfigs(list)
	if err != nil {
		return InvalidHandle, statusFromError("auto detect config from source languages", err)
	}
	return e.autoDetect.Insert(c), StatusOK
}

func (e *sdkEngine) AutoDetectSourceLanguageConfigRelease(config Handle) Status {
	c, ok := e.autoDetect.Remove(config)
	if !ok {
		return StatusInvalidHandle
	}
	c.Close()
	return StatusOK
}

func (e *sdkEngine) SourceLanguageConfigFromLanguage(language, endpointID CString) (Handle, Status) {
	var (
		c   *speech.SourceLanguageConfig
		err error
	)
	if id := endpointID.String(); id != "" {
		c, err = speech.NewSourceLanguageConfigFromLanguageAndEndpointId(language.String(), id)
	} else {
		c, err = speech.NewSourceLanguageConfigFromLanguage(language.String())
	}
	if err != nil {
		return InvalidHandle, statusFromError("source language config", err)
	}
	return e.sourceLangs.Insert(c), StatusOK
}

func (e *sdkEngine) SourceLanguageConfigRelease(config Handle) Status {
	c, ok := e.sourceLangs.Remove(config)
	if !ok {
		return StatusInvalidHandle
	}
	c.Close()
	return StatusOK
}

func (e *sdkEngine) RecognizerCreateFromAutoDetectConfig(config, autoDetect, audioConfig Handle) (Handle, Status) {
	c, ok := e.configs.Lookup(config)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	d, ok := e.autoDetect.Lookup(autoDetect)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	a, ok := e.audioConfig.Lookup(audioConfig)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	r, err := speech.NewSpeechRecognizerFomAutoDetectSourceLangConfig(c, d, a)
	if err != nil {
		return InvalidHandle, statusFromError("create auto detect recognizer", err)
	}
	return e.recognizers.Insert(&sdkRecognizer{recognizer: r, slots: newCallbackSlots()}), StatusOK
}

func (e *sdkEngine) KeywordModelFromFile(fileName CString) (Handle, Status) {
	m, err := speech.NewKeywordRecognitionModelFromFile(fileName.String())
	if err != nil {
		return InvalidHandle, statusFromError("keyword model from file", err)
	}
	return e.keywords.Insert(m), StatusOK
}

func (e *sdkEngine) KeywordModelRelease(model Handle) Status {
	m, ok := e.keywords.Remove(model)
	if !ok {
		return StatusInvalidHandle
	}
	m.Close()
	return StatusOK
}

func (e *sdkEngine) RecognizerStartKeyword(recognizer, model Handle) Status {
	r, ok := e.recognizers.Lookup(recognizer)
	if !ok {
		return StatusInvalidHandle
	}
	m, ok := e.keywords.Lookup(model)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("start keyword recognition", <-r.recognizer.StartKeywordRecognitionAsync(m))
}

func (e *sdkEngine) RecognizerStopKeyword(recognizer Handle) Status {
	r, ok := e.recognizers.Lookup(recognizer)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("stop keyword recognition", <-r.recognizer.StopKeywordRecognitionAsync())
}

func (e *sdkEngine) SynthesizerCreateFromConfig(config, audioConfig Handle) (Handle, Status) {
	c, ok := e.configs.Lookup(config)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	var s *speech.SpeechSynthesizer
	var err error
	if audioConfig == InvalidHandle {
		s, err = speech.NewSpeechSynthesizerFromConfig(c, nil)
	} else {
		a, ok := e.audioConfig.Lookup(audioConfig)
		if !ok {
			return InvalidHandle, StatusInvalidHandle
		}
		s, err = speech.NewSpeechSynthesizerFromConfig(c, a)
	}
	if err != nil {
		return InvalidHandle, statusFromError("create synthesizer", err)
	}
	return e.synthesizers.Insert(&sdkSynthesizer{synthesizer: s, slots: newCallbackSlots()}), StatusOK
}

func (e *sdkEngine) SynthesizerGetPropertyBag(synthesizer Handle) (Handle, Status) {
	s, ok := e.synthesizers.Lookup(synthesizer)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	return e.bags.Insert(collectionBag{props: s.synthesizer.Properties}), StatusOK
}

func (e *sdkEngine) SynthesizerSetCallback(synthesizer Handle, kind EventKind, cb EventCallback, context uintptr) Status {
	if !kind.IsSynthesisEvent() {
		return StatusInvalidArg
	}
	s, ok := e.synthesizers.Lookup(synthesizer)
	if !ok {
		return StatusInvalidHandle
	}
	if s.slots.set(kind, cb, context) {
		e.hookSynthesis(synthesizer, s, kind)
	}
	return StatusOK
}

func synthesisEvent(result *speech.SpeechSynthesisResult) *sdkEvent {
	return &sdkEvent{
		resultID: result.ResultID,
		reason:   int(result.Reason),
		audio:    append([]byte(nil), result.AudioData...),
	}
}

func (e *sdkEngine) hookSynthesis(h Handle, s *sdkSynthesizer, kind EventKind) {
	dispatch := e.dispatcher(h, &s.slots, kind)

	result := func(evt speech.SpeechSynthesisEventArgs) {
		defer evt.Close()
		ev := synthesisEvent(&evt.Result)
		if kind == EventSynthesisCanceled {
			fillSynthesisCancellation(ev, &evt.Result)
		}
		dispatch(ev)
	}

	switch kind {
	case EventSynthesisStarted:
		s.synthesizer.SynthesisStarted(result)
	case EventSynthesizing:
		s.synthesizer.Synthesizing(result)
	case EventSynthesisCompleted:
		s.synthesizer.SynthesisCompleted(result)
	case EventSynthesisCanceled:
		s.synthesizer.SynthesisCanceled(result)
	case EventWordBoundary:
		s.synthesizer.WordBoundary(func(evt speech.SpeechSynthesisWordBoundaryEventArgs) {
			defer evt.Close()
			dispatch(&sdkEvent{
				text: evt.Text,
				wordBoundary: WordBoundary{
					AudioOffset:  evt.AudioOffset,
					Duration:     uint64(evt.Duration / 100),
					TextOffset:   uint32(evt.TextOffset),
					WordLength:   uint32(evt.WordLength),
					BoundaryType: int(evt.BoundaryType),
				},
			})
		})
	case EventVisemeReceived:
		s.synthesizer.VisemeReceived(func(evt speech.SpeechSynthesisVisemeEventArgs) {
			defer evt.Close()
			dispatch(&sdkEvent{
				text:   evt.Animation,
				viseme: Viseme{AudioOffset: evt.AudioOffset, VisemeID: uint32(evt.VisemeID)},
			})
		})
	case EventBookmarkReached:
		s.synthesizer.BookmarkReached(func(evt speech.SpeechSynthesisBookmarkEventArgs) {
			defer evt.Close()
			dispatch(&sdkEvent{text: evt.Text, offset: evt.AudioOffset})
		})
	}
}

func fillSynthesisCancellation(ev *sdkEvent, result *speech.SpeechSynthesisResult) {
	details, err := speech.NewCancellationDetailsFromSpeechSynthesisResult(result)
	if err != nil {
		statusFromError("synthesis cancellation details", err)
		return
	}
	ev.cancellationReason = int(details.Reason)
	ev.errorCode = int(details.ErrorCode)
	ev.errorDetails = details.ErrorDetails
}

func (e *sdkEngine) SynthesizerSpeak(synthesizer Handle, text CString, ssml bool) (Handle, Status) {
	s, ok := e.synthesizers.Lookup(synthesizer)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	var outcome speech.SpeechSynthesisOutcome
	if ssml {
		outcome = <-s.synthesizer.SpeakSsmlAsync(text.String())
	} else {
		outcome = <-s.synthesizer.SpeakTextAsync(text.String())
	}
	if outcome.Error != nil {
		outcome.Close()
		return InvalidHandle, statusFromError("speak", outcome.Error)
	}

	ev := synthesisEvent(outcome.Result)
	ev.kind = EventSynthesisCompleted
	ev.synthesis = outcome.Result
	if outcome.Result.Reason == common.Canceled {
		ev.kind = EventSynthesisCanceled
		fillSynthesisCancellation(ev, outcome.Result)
	}
	return e.results.Insert(ev), StatusOK
}

func (e *sdkEngine) SynthesizerStopSpeaking(synthesizer Handle) Status {
	s, ok := e.synthesizers.Lookup(synthesizer)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("stop speaking", <-s.synthesizer.StopSpeakingAsync())
}

func (e *sdkEngine) SynthesizerRelease(synthesizer Handle) Status {
	s, ok := e.synthesizers.Remove(synthesizer)
	if !ok {
		return StatusInvalidHandle
	}
	s.synthesizer.Close()
	return StatusOK
}

func (e *sdkEngine) SynthesisEventGetResult(event Handle) (Handle, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	if !ev.kind.carriesSynthesisResult() {
		return InvalidHandle, StatusInvalidArg
	}
	res := *ev
	return e.results.Insert(&res), StatusOK
}

func (e *sdkEngine) WordBoundaryEventGetValues(event Handle) (WordBoundary, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return WordBoundary{}, StatusInvalidHandle
	}
	if ev.kind != EventWordBoundary {
		return WordBoundary{}, StatusInvalidArg
	}
	return ev.wordBoundary, StatusOK
}

func (e *sdkEngine) VisemeEventGetValues(event Handle) (Viseme, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return Viseme{}, StatusInvalidHandle
	}
	if ev.kind != EventVisemeReceived {
		return Viseme{}, StatusInvalidArg
	}
	return ev.viseme, StatusOK
}

func (e *sdkEngine) BookmarkEventGetOffset(event Handle) (uint64, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return 0, StatusInvalidHandle
	}
	if ev.kind != EventBookmarkReached {
		return 0, StatusInvalidArg
	}
	return ev.offset, StatusOK
}

func (e *sdkEngine) SynthesisEventGetText(event Handle, buf []byte) (uint32, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return 0, StatusInvalidHandle
	}
	switch ev.kind {
	case EventWordBoundary, EventVisemeReceived, EventBookmarkReached:
		return copyOut(ev.text, buf)
	default:
		return 0, StatusInvalidArg
	}
}

func (e *sdkEngine) synthesisResult(result Handle) (*sdkEvent, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return nil, StatusInvalidHandle
	}
	if !r.kind.carriesSynthesisResult() {
		return nil, StatusInvalidArg
	}
	return r, StatusOK
}

func (e *sdkEngine) SynthesisResultGetAudioLength(result Handle) (uint32, Status) {
	r, st := e.synthesisResult(result)
	if st != StatusOK {
		return 0, st
	}
	return uint32(len(r.audio)), StatusOK
}

func (e *sdkEngine) SynthesisResultGetAudioData(result Handle, buf []byte) (uint32, Status) {
	r, st := e.synthesisResult(result)
	if st != StatusOK {
		return 0, st
	}
	if len(buf) < len(r.audio) {
		return uint32(len(r.audio)), StatusBufferTooSmall
	}
	return uint32(copy(buf, r.audio)), StatusOK
}

// AudioDataStreamFromResult only accepts results returned by SynthesizerSpeak; results
// taken from events hold a copy of the audio but no SDK result.
func (e *sdkEngine) AudioDataStreamFromResult(result Handle) (Handle, Status) {
	r, st := e.synthesisResult(result)
	if st != StatusOK {
		return InvalidHandle, st
	}
	if r.synthesis == nil {
		return InvalidHandle, StatusInvalidState
	}
	s, err := speech.NewAudioDataStreamFromSpeechSynthesisResult(r.synthesis)
	if err != nil {
		return InvalidHandle, statusFromError("audio data stream from result", err)
	}
	return e.dataStreams.Insert(s), StatusOK
}

func (e *sdkEngine) AudioDataStreamRead(stream Handle, buf []byte) (uint32, Status) {
	s, ok := e.dataStreams.Lookup(stream)
	if !ok {
		return 0, StatusInvalidHandle
	}
	n, err := s.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, statusFromError("read audio data stream", err)
	}
	return uint32(n), StatusOK
}

func (e *sdkEngine) AudioDataStreamRelease(stream Handle) Status {
	s, ok := e.dataStreams.Remove(stream)
	if !ok {
		return StatusInvalidHandle
	}
	s.Close()
	return StatusOK
}
