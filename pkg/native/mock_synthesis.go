package native

import (
	"strings"

	"github.com/google/uuid"
)

func (m *MockEngine) AutoDetectSourceLanguageConfigFromLanguages(languages CString) (Handle, Status) {
	if st := m.record("AutoDetectSourceLanguageConfigFromLanguages"); st != StatusOK {
		return InvalidHandle, st
	}
	var list []string
	for _, lang := range strings.Split(languages.String(), ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			list = append(list, lang)
		}
	}
	if len(list) == 0 {
		return InvalidHandle, StatusInvalidArg
	}
	return m.insert(&mockObject{kind: KindAutoDetectConfig, languages: list}), StatusOK
}

func (m *MockEngine) AutoDetectSourceLanguageConfigFromSourceLanguageConfigs(configs []Handle) (Handle, Status) {
	if st := m.record("AutoDetectSourceLanguageConfigFromSourceLanguageConfigs"); st != StatusOK {
		return InvalidHandle, st
	}
	if len(configs) == 0 {
		return InvalidHandle, StatusInvalidArg
	}
	var list []string
	for _, h := range configs {
		obj, st := m.lookup(h, KindSourceLanguageConfig)
		if st != StatusOK {
			return InvalidHandle, st
		}
		list = append(list, obj.languages...)
	}
	return m.insert(&mockObject{kind: KindAutoDetectConfig, languages: list}), StatusOK
}

func (m *MockEngine) AutoDetectSourceLanguageConfigRelease(config Handle) Status {
	return m.release("AutoDetectSourceLanguageConfigRelease", config, KindAutoDetectConfig)
}

func (m *MockEngine) SourceLanguageConfigFromLanguage(language, endpointID CString) (Handle, Status) {
	if st := m.record("SourceLanguageConfigFromLanguage"); st != StatusOK {
		return InvalidHandle, st
	}
	lang := language.String()
	if lang == "" {
		return InvalidHandle, StatusInvalidArg
	}
	props := newMockProps()
	if id := endpointID.String(); id != "" {
		props.set("endpoint", id)
	}
	return m.insert(&mockObject{kind: KindSourceLanguageConfig, languages: []string{lang}, props: props}), StatusOK
}

func (m *MockEngine) SourceLanguageConfigRelease(config Handle) Status {
	return m.release("SourceLanguageConfigRelease", config, KindSourceLanguageConfig)
}

func (m *MockEngine) RecognizerCreateFromAutoDetectConfig(config, autoDetect, audioConfig Handle) (Handle, Status) {
	if st := m.record("RecognizerCreateFromAutoDetectConfig"); st != StatusOK {
		return InvalidHandle, st
	}
	cfg, st := m.lookup(config, KindSpeechConfig)
	if st != StatusOK {
		return InvalidHandle, st
	}
	detect, st := m.lookup(autoDetect, KindAutoDetectConfig)
	if st != StatusOK {
		return InvalidHandle, st
	}
	if _, st := m.lookup(audioConfig, KindAudioConfig); st != StatusOK {
		return InvalidHandle, st
	}
	props := cfg.props.clone()
	props.set(propKey(mockPropAutoDetectLanguages, nil), strings.Join(detect.languages, ","))
	return m.insertRecognizer(props), StatusOK
}

func (m *MockEngine) KeywordModelFromFile(fileName CString) (Handle, Status) {
	if st := m.record("KeywordModelFromFile"); st != StatusOK {
		return InvalidHandle, st
	}
	if fileName.String() == "" {
		return InvalidHandle, StatusFileOpenFailed
	}
	return m.insert(&mockObject{kind: KindKeywordModel}), StatusOK
}

func (m *MockEngine) KeywordModelRelease(model Handle) Status {
	return m.release("KeywordModelRelease", model, KindKeywordModel)
}

func (m *MockEngine) RecognizerStartKeyword(recognizer, model Handle) Status {
	if st := m.record("RecognizerStartKeyword"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return st
	}
	if _, st := m.lookup(model, KindKeywordModel); st != StatusOK {
		return st
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj.recognizer.running || obj.recognizer.keyword {
		return StatusAlreadyInProgress
	}
	obj.recognizer.keyword = true
	return StatusOK
}

func (m *MockEngine) RecognizerStopKeyword(recognizer Handle) Status {
	if st := m.record("RecognizerStopKeyword"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return st
	}
	m.mu.Lock()
	obj.recognizer.keyword = false
	m.mu.Unlock()
	return StatusOK
}

// KeywordActive reports whether keyword recognition is active on recognizer.
func (m *MockEngine) KeywordActive(recognizer Handle) bool {
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return obj.recognizer.keyword
}

func (m *MockEngine) SynthesizerCreateFromConfig(config, audioConfig Handle) (Handle, Status) {
	if st := m.record("SynthesizerCreateFromConfig"); st != StatusOK {
		return InvalidHandle, st
	}
	cfg, st := m.lookup(config, KindSpeechConfig)
	if st != StatusOK {
		return InvalidHandle, st
	}
	synth := &mockSynthesizer{callbacks: make(map[EventKind]registeredCallback)}
	if audioConfig != InvalidHandle {
		ac, st := m.lookup(audioConfig, KindAudioConfig)
		if st != StatusOK {
			return InvalidHandle, st
		}
		synth.output = ac.output
	}
	return m.insert(&mockObject{kind: KindSynthesizer, props: cfg.props.clone(), synthesizer: synth}), StatusOK
}

func (m *MockEngine) SynthesizerGetPropertyBag(synthesizer Handle) (Handle, Status) {
	if st := m.record("SynthesizerGetPropertyBag"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(synthesizer, KindSynthesizer)
	if st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindPropertyBag, props: obj.props}), StatusOK
}

func (m *MockEngine) SynthesizerSetCallback(synthesizer Handle, kind EventKind, cb EventCallback, context uintptr) Status {
	if st := m.record("SynthesizerSetCallback"); st != StatusOK {
		return st
	}
	if !kind.IsSynthesisEvent() {
		return StatusInvalidArg
	}
	obj, st := m.lookup(synthesizer, KindSynthesizer)
	if st != StatusOK {
		return st
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb == nil {
		delete(obj.synthesizer.callbacks, kind)
		return StatusOK
	}
	obj.synthesizer.callbacks[kind] = registeredCallback{fn: cb, context: context}
	return StatusOK
}

// HasSynthesisCallback reports whether a callback is connected to the kind slot.
func (m *MockEngine) HasSynthesisCallback(synthesizer Handle, kind EventKind) bool {
	obj, st := m.lookup(synthesizer, KindSynthesizer)
	if st != StatusOK {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := obj.synthesizer.callbacks[kind]
	return ok
}

// FailSynthesis makes the next SynthesizerSpeak cancel with the given error.
func (m *MockEngine) FailSynthesis(errorCode int, details string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synthesisFailure = &mockSynthesisFailure{errorCode: errorCode, details: details}
}

// SynthesizerSpeak raises SynthesisStarted, one WordBoundary per word, a single
// Synthesizing event with all audio and finally SynthesisCompleted. The audio is also
// appended to the synthesizer's output stream, if any.
func (m *MockEngine) SynthesizerSpeak(synthesizer Handle, text CString, ssml bool) (Handle, Status) {
	if st := m.record("SynthesizerSpeak"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(synthesizer, KindSynthesizer)
	if st != StatusOK {
		return InvalidHandle, st
	}
	plain := text.String()
	if ssml {
		plain = stripMarkup(plain)
	}

	m.mu.Lock()
	failure := m.synthesisFailure
	m.synthesisFailure = nil
	m.mu.Unlock()

	resultID := strings.ReplaceAll(uuid.NewString(), "-", "")
	m.FireSynthesisEvent(synthesizer, EventSynthesisStarted, MockEvent{ResultID: resultID, Reason: mockReasonSynthesisStarted})

	if failure != nil {
		ev := MockEvent{
			ResultID:           resultID,
			Reason:             mockReasonCanceled,
			CancellationReason: 1,
			ErrorCode:          failure.errorCode,
			ErrorDetails:       failure.details,
		}
		m.FireSynthesisEvent(synthesizer, EventSynthesisCanceled, ev)
		ev.Kind = EventSynthesisCanceled
		return m.insertResult(ev), StatusOK
	}

	audio := []byte(plain)
	if m.SynthesizeFunc != nil {
		audio = m.SynthesizeFunc(plain)
	}

	pos := 0
	for i, word := range strings.Fields(plain) {
		idx := strings.Index(plain[pos:], word) + pos
		pos = idx + len(word)
		m.FireSynthesisEvent(synthesizer, EventWordBoundary, MockEvent{
			Text: word,
			WordBoundary: WordBoundary{
				AudioOffset: uint64(i) * MockWordTicks,
				Duration:    MockWordTicks,
				TextOffset:  uint32(idx),
				WordLength:  uint32(len(word)),
			},
		})
	}

	m.FireSynthesisEvent(synthesizer, EventSynthesizing, MockEvent{ResultID: resultID, Reason: mockReasonSynthesizing, Audio: audio})
	if out := obj.synthesizer.output; out != nil {
		out.mu.Lock()
		out.data = append(out.data, audio...)
		out.cond.Broadcast()
		out.mu.Unlock()
	}

	done := MockEvent{ResultID: resultID, Reason: mockReasonSynthesisCompleted, Audio: audio}
	m.FireSynthesisEvent(synthesizer, EventSynthesisCompleted, done)
	done.Kind = EventSynthesisCompleted
	return m.insertResult(done), StatusOK
}

func stripMarkup(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
			b.WriteByte(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func (m *MockEngine) SynthesizerStopSpeaking(synthesizer Handle) Status {
	if st := m.record("SynthesizerStopSpeaking"); st != StatusOK {
		return st
	}
	_, st := m.lookup(synthesizer, KindSynthesizer)
	return st
}

// SynthesizerRelease also ends the output stream the synthesizer was writing to.
func (m *MockEngine) SynthesizerRelease(synthesizer Handle) Status {
	return m.release("SynthesizerRelease", synthesizer, KindSynthesizer)
}

// FireSynthesisEvent creates an event handle carrying ev and invokes the synthesizer
// callback connected to kind on the calling goroutine. It reports whether a callback ran.
func (m *MockEngine) FireSynthesisEvent(synthesizer Handle, kind EventKind, ev MockEvent) bool {
	obj, st := m.lookup(synthesizer, KindSynthesizer)
	if st != StatusOK {
		return false
	}
	m.mu.Lock()
	cb, ok := obj.synthesizer.callbacks[kind]
	m.mu.Unlock()
	if !ok {
		return false
	}

	ev.Kind = kind
	event := m.insert(&mockObject{kind: KindEvent, event: &ev})
	cb.fn(synthesizer, event, cb.context)
	return true
}

func (m *MockEngine) SynthesisEventGetResult(event Handle) (Handle, Status) {
	if st := m.record("SynthesisEventGetResult"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return InvalidHandle, st
	}
	if !obj.event.Kind.carriesSynthesisResult() {
		return InvalidHandle, StatusInvalidArg
	}
	return m.insertResult(*obj.event), StatusOK
}

func (m *MockEngine) WordBoundaryEventGetValues(event Handle) (WordBoundary, Status) {
	if st := m.record("WordBoundaryEventGetValues"); st != StatusOK {
		return WordBoundary{}, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return WordBoundary{}, st
	}
	if obj.event.Kind != EventWordBoundary {
		return WordBoundary{}, StatusInvalidArg
	}
	return obj.event.WordBoundary, StatusOK
}

func (m *MockEngine) VisemeEventGetValues(event Handle) (Viseme, Status) {
	if st := m.record("VisemeEventGetValues"); st != StatusOK {
		return Viseme{}, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return Viseme{}, st
	}
	if obj.event.Kind != EventVisemeReceived {
		return Viseme{}, StatusInvalidArg
	}
	return obj.event.Viseme, StatusOK
}

func (m *MockEngine) BookmarkEventGetOffset(event Handle) (uint64, Status) {
	if st := m.record("BookmarkEventGetOffset"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return 0, st
	}
	if obj.event.Kind != EventBookmarkReached {
		return 0, StatusInvalidArg
	}
	return obj.event.Offset, StatusOK
}

func (m *MockEngine) SynthesisEventGetText(event Handle, buf []byte) (uint32, Status) {
	if st := m.record("SynthesisEventGetText"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return 0, st
	}
	switch obj.event.Kind {
	case EventWordBoundary, EventVisemeReceived, EventBookmarkReached:
		return copyOut(obj.event.Text, buf)
	default:
		return 0, StatusInvalidArg
	}
}

func (m *MockEngine) synthesisResult(entryPoint string, result Handle) (*mockObject, Status) {
	if st := m.record(entryPoint); st != StatusOK {
		return nil, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return nil, st
	}
	if !obj.event.Kind.carriesSynthesisResult() {
		return nil, StatusInvalidArg
	}
	return obj, StatusOK
}

func (m *MockEngine) SynthesisResultGetAudioLength(result Handle) (uint32, Status) {
	obj, st := m.synthesisResult("SynthesisResultGetAudioLength", result)
	if st != StatusOK {
		return 0, st
	}
	return uint32(len(obj.event.Audio)), StatusOK
}

func (m *MockEngine) SynthesisResultGetAudioData(result Handle, buf []byte) (uint32, Status) {
	obj, st := m.synthesisResult("SynthesisResultGetAudioData", result)
	if st != StatusOK {
		return 0, st
	}
	audio := obj.event.Audio
	if len(buf) < len(audio) {
		return uint32(len(audio)), StatusBufferTooSmall
	}
	return uint32(copy(buf, audio)), StatusOK
}

func (m *MockEngine) AudioDataStreamFromResult(result Handle) (Handle, Status) {
	obj, st := m.synthesisResult("AudioDataStreamFromResult", result)
	if st != StatusOK {
		return InvalidHandle, st
	}
	s := newMockStream(false)
	s.data = append([]byte(nil), obj.event.Audio...)
	s.ended = true
	return m.insert(&mockObject{kind: KindAudioDataStream, stream: s}), StatusOK
}

func (m *MockEngine) AudioDataStreamRead(stream Handle, buf []byte) (uint32, Status) {
	if st := m.record("AudioDataStreamRead"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(stream, KindAudioDataStream)
	if st != StatusOK {
		return 0, st
	}
	s := obj.stream
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(buf, s.data)
	s.data = s.data[n:]
	return uint32(n), StatusOK
}

func (m *MockEngine) AudioDataStreamRelease(stream Handle) Status {
	return m.release("AudioDataStreamRelease", stream, KindAudioDataStream)
}
