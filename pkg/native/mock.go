package native

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// ObjectKind classifies the objects a MockEngine hands out, for create/release
// accounting.
type ObjectKind int

const (
	KindSpeechConfig ObjectKind = iota
	KindPropertyBag
	KindAudioConfig
	KindAudioStream
	KindRecognizer
	KindEvent
	KindResult
	KindSynthesizer
	KindAutoDetectConfig
	KindSourceLanguageConfig
	KindKeywordModel
	KindAudioDataStream
)

func (k ObjectKind) String() string {
	switch k {
	case KindSpeechConfig:
		return "speech_config"
	case KindPropertyBag:
		return "property_bag"
	case KindAudioConfig:
		return "audio_config"
	case KindAudioStream:
		return "audio_stream"
	case KindRecognizer:
		return "recognizer"
	case KindEvent:
		return "event"
	case KindResult:
		return "result"
	case KindSynthesizer:
		return "synthesizer"
	case KindAutoDetectConfig:
		return "auto_detect_config"
	case KindSourceLanguageConfig:
		return "source_language_config"
	case KindKeywordModel:
		return "keyword_model"
	case KindAudioDataStream:
		return "audio_data_stream"
	default:
		return "unknown"
	}
}

// Property ids the mock pre-populates. They match common.PropertyID values.
const (
	mockPropSubscriptionKey     = 1000
	mockPropRegion              = 1002
	mockPropAutoDetectLanguages = 3300
	mockPropAutoDetectResult    = 3301
	mockPropErrorDetails        = 5001
)

// Result reasons the mock reports for synthesis. They match common.ResultReason.
const (
	mockReasonCanceled           = 1
	mockReasonSynthesizing       = 8
	mockReasonSynthesisCompleted = 9
	mockReasonSynthesisStarted   = 12
)

// MockWordTicks is the audio duration the mock assigns to every synthesized word.
const MockWordTicks = 2_000_000

// MockEvent is the payload of an event fired through MockEngine.FireEvent or
// FireSynthesisEvent. Zero-valued SessionID means "the recognizer's current session".
type MockEvent struct {
	Kind               EventKind
	SessionID          string
	Offset             uint64
	Reason             int
	Text               string
	ResultID           string
	CancellationReason int
	ErrorCode          int
	ErrorDetails       string
	// Language is reported as the auto-detected source language of the result.
	Language string
	// Audio is the synthesized audio carried by synthesis results.
	Audio        []byte
	WordBoundary WordBoundary
	Viseme       Viseme
}

type mockProps struct {
	mu     sync.Mutex
	values map[string]string
}

func newMockProps() *mockProps {
	return &mockProps{values: make(map[string]string)}
}

func (p *mockProps) set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

func (p *mockProps) get(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *mockProps) clone() *mockProps {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := newMockProps()
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}

type mockStream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	pull   bool
	data   []byte
	ended  bool
	closed bool
}

func newMockStream(pull bool) *mockStream {
	s := &mockStream{pull: pull}
	s.cond = sync.NewCond(&s.mu)
	return s
}

type registeredCallback struct {
	fn      EventCallback
	context uintptr
}

type mockRecognizer struct {
	callbacks map[EventKind]registeredCallback
	running   bool
	keyword   bool
	sessionID string
}

type mockSynthesizer struct {
	callbacks map[EventKind]registeredCallback
	output    *mockStream
}

type mockSynthesisFailure struct {
	errorCode int
	details   string
}

type mockObject struct {
	kind        ObjectKind
	props       *mockProps
	stream      *mockStream
	output      *mockStream
	recognizer  *mockRecognizer
	synthesizer *mockSynthesizer
	event       *MockEvent
	languages   []string
}

// MockEngine is an in-memory Engine for tests. It records every entry point call,
// counts creations and releases per object kind, and lets tests feed pull streams
// and fire recognizer events.
type MockEngine struct {
	// PullReadFunc, when set, replaces the built-in PullAudioOutputStreamRead.
	PullReadFunc func(stream Handle, buf []byte) (uint32, Status)
	// SynthesizeFunc, when set, produces the audio for a synthesized text. By default
	// the audio is the text's bytes.
	SynthesizeFunc func(text string) []byte

	mu               sync.Mutex
	objects          *HandleTable[*mockObject]
	calls            []string
	failures         map[string]Status
	created          map[ObjectKind]int
	released         map[ObjectKind]int
	synthesisFailure *mockSynthesisFailure
}

// NewMockEngine creates an empty MockEngine.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		objects:  NewHandleTable[*mockObject](),
		failures: make(map[string]Status),
		created:  make(map[ObjectKind]int),
		released: make(map[ObjectKind]int),
	}
}

// Fail makes the named entry point return status instead of running.
// StatusOK clears a previous failure.
func (m *MockEngine) Fail(entryPoint string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == StatusOK {
		delete(m.failures, entryPoint)
		return
	}
	m.failures[entryPoint] = status
}

// Calls returns the entry point names invoked so far, in order.
func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the named entry point was invoked.
func (m *MockEngine) CallCount(entryPoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == entryPoint {
			n++
		}
	}
	return n
}

// Created returns the number of objects of kind handed out.
func (m *MockEngine) Created(kind ObjectKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created[kind]
}

// Released returns the number of successful releases of kind.
func (m *MockEngine) Released(kind ObjectKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released[kind]
}

// Live returns the number of handles not yet released.
func (m *MockEngine) Live() int {
	return m.objects.Len()
}

func (m *MockEngine) record(entryPoint string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, entryPoint)
	if st, ok := m.failures[entryPoint]; ok {
		return st
	}
	return StatusOK
}

func (m *MockEngine) insert(obj *mockObject) Handle {
	h := m.objects.Insert(obj)
	m.mu.Lock()
	m.created[obj.kind]++
	m.mu.Unlock()
	return h
}

func (m *MockEngine) lookup(h Handle, kind ObjectKind) (*mockObject, Status) {
	obj, ok := m.objects.Lookup(h)
	if !ok || obj.kind != kind {
		return nil, StatusInvalidHandle
	}
	return obj, StatusOK
}

func (m *MockEngine) release(entryPoint string, h Handle, kind ObjectKind) Status {
	if st := m.record(entryPoint); st != StatusOK {
		return st
	}
	if _, st := m.lookup(h, kind); st != StatusOK {
		return st
	}
	obj, _ := m.objects.Remove(h)
	if obj.synthesizer != nil && obj.synthesizer.output != nil {
		out := obj.synthesizer.output
		out.mu.Lock()
		out.ended = true
		out.cond.Broadcast()
		out.mu.Unlock()
	}
	if obj.stream != nil {
		obj.stream.mu.Lock()
		obj.stream.closed = true
		obj.stream.cond.Broadcast()
		obj.stream.mu.Unlock()
	}
	m.mu.Lock()
	m.released[kind]++
	m.mu.Unlock()
	return StatusOK
}

func propKey(id int, name CString) string {
	if id != 0 {
		return "#" + strconv.Itoa(id)
	}
	return name.String()
}

func copyOut(s string, buf []byte) (uint32, Status) {
	if len(s)+1 > len(buf) {
		return uint32(len(s)), StatusBufferTooSmall
	}
	copy(buf, s)
	buf[len(s)] = 0
	return uint32(len(s)), StatusOK
}

func (m *MockEngine) SpeechConfigFromSubscription(subscriptionKey, region CString) (Handle, Status) {
	if st := m.record("SpeechConfigFromSubscription"); st != StatusOK {
		return InvalidHandle, st
	}
	props := newMockProps()
	props.set(propKey(mockPropSubscriptionKey, nil), subscriptionKey.String())
	props.set(propKey(mockPropRegion, nil), region.String())
	return m.insert(&mockObject{kind: KindSpeechConfig, props: props}), StatusOK
}

func (m *MockEngine) SpeechConfigGetPropertyBag(config Handle) (Handle, Status) {
	if st := m.record("SpeechConfigGetPropertyBag"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(config, KindSpeechConfig)
	if st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindPropertyBag, props: obj.props}), StatusOK
}

func (m *MockEngine) SpeechConfigRelease(config Handle) Status {
	return m.release("SpeechConfigRelease", config, KindSpeechConfig)
}

func (m *MockEngine) PropertyBagSetString(bag Handle, id int, name, value CString) Status {
	if st := m.record("PropertyBagSetString"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(bag, KindPropertyBag)
	if st != StatusOK {
		return st
	}
	obj.props.set(propKey(id, name), value.String())
	return StatusOK
}

func (m *MockEngine) PropertyBagGetString(bag Handle, id int, name, defaultValue CString, buf []byte) (uint32, Status) {
	if st := m.record("PropertyBagGetString"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(bag, KindPropertyBag)
	if st != StatusOK {
		return 0, st
	}
	v, ok := obj.props.get(propKey(id, name))
	if !ok {
		v = defaultValue.String()
	}
	return copyOut(v, buf)
}

func (m *MockEngine) PropertyBagRelease(bag Handle) Status {
	return m.release("PropertyBagRelease", bag, KindPropertyBag)
}

func (m *MockEngine) AudioConfigFromDefaultMicrophone() (Handle, Status) {
	if st := m.record("AudioConfigFromDefaultMicrophone"); st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindAudioConfig}), StatusOK
}

func (m *MockEngine) AudioConfigFromWavFile(fileName CString) (Handle, Status) {
	if st := m.record("AudioConfigFromWavFile"); st != StatusOK {
		return InvalidHandle, st
	}
	if len(fileName.String()) == 0 {
		return InvalidHandle, StatusFileOpenFailed
	}
	return m.insert(&mockObject{kind: KindAudioConfig}), StatusOK
}

func (m *MockEngine) AudioConfigFromStream(stream Handle) (Handle, Status) {
	if st := m.record("AudioConfigFromStream"); st != StatusOK {
		return InvalidHandle, st
	}
	if _, st := m.lookup(stream, KindAudioStream); st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindAudioConfig}), StatusOK
}

func (m *MockEngine) AudioConfigFromStreamOutput(stream Handle) (Handle, Status) {
	if st := m.record("AudioConfigFromStreamOutput"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK {
		return InvalidHandle, st
	}
	if !obj.stream.pull {
		return InvalidHandle, StatusInvalidArg
	}
	return m.insert(&mockObject{kind: KindAudioConfig, output: obj.stream}), StatusOK
}

func (m *MockEngine) AudioConfigRelease(config Handle) Status {
	return m.release("AudioConfigRelease", config, KindAudioConfig)
}

func (m *MockEngine) PullAudioOutputStreamCreate() (Handle, Status) {
	if st := m.record("PullAudioOutputStreamCreate"); st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindAudioStream, stream: newMockStream(true)}), StatusOK
}

func (m *MockEngine) PullAudioOutputStreamRead(stream Handle, buf []byte) (uint32, Status) {
	if st := m.record("PullAudioOutputStreamRead"); st != StatusOK {
		return 0, st
	}
	if m.PullReadFunc != nil {
		return m.PullReadFunc(stream, buf)
	}
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK {
		return 0, st
	}
	s := obj.stream
	if !s.pull {
		return 0, StatusInvalidArg
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.data) == 0 && !s.ended && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return 0, StatusInvalidHandle
	}
	n := copy(buf, s.data)
	s.data = s.data[n:]
	return uint32(n), StatusOK
}

// FeedPullStream appends data to a pull stream, waking blocked readers.
func (m *MockEngine) FeedPullStream(stream Handle, data []byte) bool {
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK || !obj.stream.pull {
		return false
	}
	obj.stream.mu.Lock()
	obj.stream.data = append(obj.stream.data, data...)
	obj.stream.cond.Broadcast()
	obj.stream.mu.Unlock()
	return true
}

// EndPullStream marks a pull stream as finished; reads drain what is left and then
// report zero bytes.
func (m *MockEngine) EndPullStream(stream Handle) bool {
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK || !obj.stream.pull {
		return false
	}
	obj.stream.mu.Lock()
	obj.stream.ended = true
	obj.stream.cond.Broadcast()
	obj.stream.mu.Unlock()
	return true
}

func (m *MockEngine) PushAudioInputStreamCreate() (Handle, Status) {
	if st := m.record("PushAudioInputStreamCreate"); st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindAudioStream, stream: newMockStream(false)}), StatusOK
}

func (m *MockEngine) PushAudioInputStreamWrite(stream Handle, data []byte) Status {
	if st := m.record("PushAudioInputStreamWrite"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK {
		return st
	}
	if obj.stream.pull {
		return StatusInvalidArg
	}
	obj.stream.mu.Lock()
	defer obj.stream.mu.Unlock()
	if obj.stream.ended {
		return StatusInvalidState
	}
	obj.stream.data = append(obj.stream.data, data...)
	return StatusOK
}

func (m *MockEngine) PushAudioInputStreamClose(stream Handle) Status {
	if st := m.record("PushAudioInputStreamClose"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK {
		return st
	}
	obj.stream.mu.Lock()
	obj.stream.ended = true
	obj.stream.mu.Unlock()
	return StatusOK
}

// PushedData returns everything written to a push stream so far.
func (m *MockEngine) PushedData(stream Handle) []byte {
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK {
		return nil
	}
	obj.stream.mu.Lock()
	defer obj.stream.mu.Unlock()
	out := make([]byte, len(obj.stream.data))
	copy(out, obj.stream.data)
	return out
}

// PushStreamEnded reports whether end-of-stream was signalled on a push stream.
func (m *MockEngine) PushStreamEnded(stream Handle) bool {
	obj, st := m.lookup(stream, KindAudioStream)
	if st != StatusOK {
		return false
	}
	obj.stream.mu.Lock()
	defer obj.stream.mu.Unlock()
	return obj.stream.ended
}

func (m *MockEngine) AudioStreamRelease(stream Handle) Status {
	return m.release("AudioStreamRelease", stream, KindAudioStream)
}

func (m *MockEngine) RecognizerCreateFromConfig(config, audioConfig Handle) (Handle, Status) {
	if st := m.record("RecognizerCreateFromConfig"); st != StatusOK {
		return InvalidHandle, st
	}
	cfg, st := m.lookup(config, KindSpeechConfig)
	if st != StatusOK {
		return InvalidHandle, st
	}
	if _, st := m.lookup(audioConfig, KindAudioConfig); st != StatusOK {
		return InvalidHandle, st
	}
	return m.insertRecognizer(cfg.props.clone()), StatusOK
}

func (m *MockEngine) insertRecognizer(props *mockProps) Handle {
	return m.insert(&mockObject{
		kind:  KindRecognizer,
		props: props,
		recognizer: &mockRecognizer{
			callbacks: make(map[EventKind]registeredCallback),
		},
	})
}

func (m *MockEngine) RecognizerGetPropertyBag(recognizer Handle) (Handle, Status) {
	if st := m.record("RecognizerGetPropertyBag"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindPropertyBag, props: obj.props}), StatusOK
}

func (m *MockEngine) RecognizerSetCallback(recognizer Handle, kind EventKind, cb EventCallback, context uintptr) Status {
	if st := m.record("RecognizerSetCallback"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return st
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb == nil {
		delete(obj.recognizer.callbacks, kind)
		return StatusOK
	}
	obj.recognizer.callbacks[kind] = registeredCallback{fn: cb, context: context}
	return StatusOK
}

// HasCallback reports whether a callback is connected to the kind slot.
func (m *MockEngine) HasCallback(recognizer Handle, kind EventKind) bool {
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := obj.recognizer.callbacks[kind]
	return ok
}

func (m *MockEngine) RecognizerStartContinuous(recognizer Handle) Status {
	if st := m.record("RecognizerStartContinuous"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return st
	}
	m.mu.Lock()
	if obj.recognizer.running || obj.recognizer.keyword {
		m.mu.Unlock()
		return StatusAlreadyInProgress
	}
	obj.recognizer.running = true
	obj.recognizer.sessionID = uuid.NewString()
	m.mu.Unlock()

	m.FireEvent(recognizer, EventSessionStarted, MockEvent{})
	return StatusOK
}

func (m *MockEngine) RecognizerStopContinuous(recognizer Handle) Status {
	if st := m.record("RecognizerStopContinuous"); st != StatusOK {
		return st
	}
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return st
	}
	m.mu.Lock()
	wasRunning := obj.recognizer.running
	obj.recognizer.running = false
	m.mu.Unlock()

	if wasRunning {
		m.FireEvent(recognizer, EventSessionStopped, MockEvent{})
	}
	return StatusOK
}

// Running reports whether continuous recognition is active on recognizer.
func (m *MockEngine) Running(recognizer Handle) bool {
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return obj.recognizer.running
}

func (m *MockEngine) RecognizerRelease(recognizer Handle) Status {
	return m.release("RecognizerRelease", recognizer, KindRecognizer)
}

// FireEvent creates an event handle carrying ev and invokes the callback connected to
// kind, synchronously on the calling goroutine. It reports whether a callback ran.
func (m *MockEngine) FireEvent(recognizer Handle, kind EventKind, ev MockEvent) bool {
	obj, st := m.lookup(recognizer, KindRecognizer)
	if st != StatusOK {
		return false
	}

	m.mu.Lock()
	cb, ok := obj.recognizer.callbacks[kind]
	if ev.SessionID == "" {
		if obj.recognizer.sessionID == "" {
			obj.recognizer.sessionID = uuid.NewString()
		}
		ev.SessionID = obj.recognizer.sessionID
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	ev.Kind = kind
	event := m.insert(&mockObject{kind: KindEvent, event: &ev})
	cb.fn(recognizer, event, cb.context)
	return true
}

func (m *MockEngine) EventGetSessionID(event Handle, buf []byte) (uint32, Status) {
	if st := m.record("EventGetSessionID"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return 0, st
	}
	return copyOut(obj.event.SessionID, buf)
}

func isRecognitionEvent(kind EventKind) bool {
	return !kind.IsSynthesisEvent() && kind != EventSessionStarted && kind != EventSessionStopped
}

func isCanceledResult(ev *MockEvent) bool {
	return ev.Kind == EventCanceled || ev.Kind == EventSynthesisCanceled
}

func hasResult(kind EventKind) bool {
	return kind == EventRecognizing || kind == EventRecognized || kind == EventCanceled
}

func (m *MockEngine) RecognitionEventGetOffset(event Handle) (uint64, Status) {
	if st := m.record("RecognitionEventGetOffset"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return 0, st
	}
	if !isRecognitionEvent(obj.event.Kind) {
		return 0, StatusInvalidArg
	}
	return obj.event.Offset, StatusOK
}

func (m *MockEngine) RecognitionEventGetResult(event Handle) (Handle, Status) {
	if st := m.record("RecognitionEventGetResult"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(event, KindEvent)
	if st != StatusOK {
		return InvalidHandle, st
	}
	if !hasResult(obj.event.Kind) {
		return InvalidHandle, StatusInvalidArg
	}
	return m.insertResult(*obj.event), StatusOK
}

func (m *MockEngine) insertResult(ev MockEvent) Handle {
	props := newMockProps()
	if ev.ErrorDetails != "" {
		props.set(propKey(mockPropErrorDetails, nil), ev.ErrorDetails)
	}
	if ev.Language != "" {
		props.set(propKey(mockPropAutoDetectResult, nil), ev.Language)
	}
	return m.insert(&mockObject{kind: KindResult, event: &ev, props: props})
}

func (m *MockEngine) EventRelease(event Handle) Status {
	return m.release("EventRelease", event, KindEvent)
}

func (m *MockEngine) ResultGetReason(result Handle) (int, Status) {
	if st := m.record("ResultGetReason"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return 0, st
	}
	return obj.event.Reason, StatusOK
}

func (m *MockEngine) ResultGetCanceledReason(result Handle) (int, Status) {
	if st := m.record("ResultGetCanceledReason"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return 0, st
	}
	if !isCanceledResult(obj.event) {
		return 0, StatusInvalidState
	}
	return obj.event.CancellationReason, StatusOK
}

func (m *MockEngine) ResultGetCanceledErrorCode(result Handle) (int, Status) {
	if st := m.record("ResultGetCanceledErrorCode"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return 0, st
	}
	if !isCanceledResult(obj.event) {
		return 0, StatusInvalidState
	}
	return obj.event.ErrorCode, StatusOK
}

func (m *MockEngine) ResultGetText(result Handle, buf []byte) (uint32, Status) {
	if st := m.record("ResultGetText"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return 0, st
	}
	return copyOut(obj.event.Text, buf)
}

func (m *MockEngine) ResultGetResultID(result Handle, buf []byte) (uint32, Status) {
	if st := m.record("ResultGetResultID"); st != StatusOK {
		return 0, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return 0, st
	}
	return copyOut(obj.event.ResultID, buf)
}

func (m *MockEngine) ResultGetPropertyBag(result Handle) (Handle, Status) {
	if st := m.record("ResultGetPropertyBag"); st != StatusOK {
		return InvalidHandle, st
	}
	obj, st := m.lookup(result, KindResult)
	if st != StatusOK {
		return InvalidHandle, st
	}
	return m.insert(&mockObject{kind: KindPropertyBag, props: obj.props}), StatusOK
}

func (m *MockEngine) ResultRelease(result Handle) Status {
	return m.release("ResultRelease", result, KindResult)
}

// Ensure MockEngine implements Engine at compile time.
var _ Engine = (*MockEngine)(nil)
