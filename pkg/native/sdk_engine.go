//go:build speechsdk

package native

import (
	"log"
	"sync"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
)

// propertyErrorDetails is common.SpeechServiceResponseJSONErrorDetails and
// propertyAutoDetectResult is common.SpeechServiceConnectionAutoDetectSourceLanguageResult.
const (
	propertyErrorDetails     = 5001
	propertyAutoDetectResult = 3301
)

// sdkBag is the property surface shared by configs, recognizers and results.
type sdkBag interface {
	get(id int, name, defaultValue string) string
	set(id int, name, value string) error
}

type configBag struct{ config *speech.SpeechConfig }

func (b configBag) get(id int, name, defaultValue string) string {
	var v string
	if id != 0 {
		v = b.config.GetProperty(common.PropertyID(id))
	} else {
		v = b.config.GetPropertyByString(name)
	}
	if v == "" {
		return defaultValue
	}
	return v
}

func (b configBag) set(id int, name, value string) error {
	if id != 0 {
		return b.config.SetProperty(common.PropertyID(id), value)
	}
	return b.config.SetPropertyByString(name, value)
}

type collectionBag struct{ props *common.PropertyCollection }

func (b collectionBag) get(id int, name, defaultValue string) string {
	if id != 0 {
		return b.props.GetProperty(common.PropertyID(id), defaultValue)
	}
	return b.props.GetPropertyByString(name, defaultValue)
}

func (b collectionBag) set(id int, name, value string) error {
	if id != 0 {
		return b.props.SetProperty(common.PropertyID(id), value)
	}
	return b.props.SetPropertyByString(name, value)
}

// mapBag holds values copied out of an SDK event, which the SDK frees once the
// handler returns.
type mapBag struct {
	mu     sync.Mutex
	values map[int]string
}

func (b *mapBag) get(id int, name, defaultValue string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.values[id]; ok && id != 0 {
		return v
	}
	return defaultValue
}

func (b *mapBag) set(id int, name, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[id] = value
	return nil
}

type sdkEvent struct {
	kind               EventKind
	sessionID          string
	offset             uint64
	resultID           string
	reason             int
	text               string
	language           string
	cancellationReason int
	errorCode          int
	errorDetails       string
	audio              []byte
	wordBoundary       WordBoundary
	viseme             Viseme
	// synthesis is set on results returned by SynthesizerSpeak and closed with them.
	synthesis *speech.SpeechSynthesisResult
}

// callbackSlots forwards SDK events to whatever callback is registered at dispatch
// time. Each SDK handler is installed once, so disconnecting never touches the SDK.
type callbackSlots struct {
	mu        sync.RWMutex
	callbacks map[EventKind]registeredCallback
	hooked    map[EventKind]bool
}

func newCallbackSlots() callbackSlots {
	return callbackSlots{
		callbacks: make(map[EventKind]registeredCallback),
		hooked:    make(map[EventKind]bool),
	}
}

// set stores cb and reports whether the SDK handler for kind still has to be installed.
func (s *callbackSlots) set(kind EventKind, cb EventCallback, context uintptr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb == nil {
		delete(s.callbacks, kind)
		return false
	}
	s.callbacks[kind] = registeredCallback{fn: cb, context: context}
	if s.hooked[kind] {
		return false
	}
	s.hooked[kind] = true
	return true
}

func (e *sdkEngine) dispatcher(h Handle, s *callbackSlots, kind EventKind) func(*sdkEvent) {
	return func(ev *sdkEvent) {
		s.mu.RLock()
		cb, ok := s.callbacks[kind]
		s.mu.RUnlock()
		if !ok {
			return
		}
		ev.kind = kind
		cb.fn(h, e.events.Insert(ev), cb.context)
	}
}

type sdkRecognizer struct {
	recognizer *speech.SpeechRecognizer
	slots      callbackSlots
}

type sdkSynthesizer struct {
	synthesizer *speech.SpeechSynthesizer
	slots       callbackSlots
}

// sdkEngine implements Engine on top of the Go Speech SDK. Handles index a table of
// SDK objects; events are copied into the table while the SDK handler runs.
type sdkEngine struct {
	configs     *HandleTable[*speech.SpeechConfig]
	bags        *HandleTable[sdkBag]
	audioConfig *HandleTable[*audio.AudioConfig]
	pulls       *HandleTable[*audio.PullAudioOutputStream]
	pushes      *HandleTable[*audio.PushAudioInputStream]
	recognizers *HandleTable[*sdkRecognizer]
	events      *HandleTable[*sdkEvent]
	results     *HandleTable[*sdkEvent]

	autoDetect   *HandleTable[*speech.AutoDetectSourceLanguageConfig]
	sourceLangs  *HandleTable[*speech.SourceLanguageConfig]
	keywords     *HandleTable[*speech.KeywordRecognitionModel]
	synthesizers *HandleTable[*sdkSynthesizer]
	dataStreams  *HandleTable[*speech.AudioDataStream]
}

// NewSDKEngine returns an Engine backed by the native Speech SDK runtime.
func NewSDKEngine() (Engine, error) {
	return &sdkEngine{
		configs:     NewHandleTable[*speech.SpeechConfig](),
		bags:        NewHandleTable[sdkBag](),
		audioConfig: NewHandleTable[*audio.AudioConfig](),
		pulls:       NewHandleTable[*audio.PullAudioOutputStream](),
		pushes:      NewHandleTable[*audio.PushAudioInputStream](),
		recognizers: NewHandleTable[*sdkRecognizer](),
		events:      NewHandleTable[*sdkEvent](),
		results:     NewHandleTable[*sdkEvent](),

		autoDetect:   NewHandleTable[*speech.AutoDetectSourceLanguageConfig](),
		sourceLangs:  NewHandleTable[*speech.SourceLanguageConfig](),
		keywords:     NewHandleTable[*speech.KeywordRecognitionModel](),
		synthesizers: NewHandleTable[*sdkSynthesizer](),
		dataStreams:  NewHandleTable[*speech.AudioDataStream](),
	}, nil
}

func statusFromError(op string, err error) Status {
	if err == nil {
		return StatusOK
	}
	log.Printf("[speechsdk] %s: %v", op, err)
	return StatusRuntimeError
}

func (e *sdkEngine) SpeechConfigFromSubscription(subscriptionKey, region CString) (Handle, Status) {
	config, err := speech.NewSpeechConfigFromSubscription(subscriptionKey.String(), region.String())
	if err != nil {
		return InvalidHandle, statusFromError("create speech config", err)
	}
	return e.configs.Insert(config), StatusOK
}

func (e *sdkEngine) SpeechConfigGetPropertyBag(config Handle) (Handle, Status) {
	c, ok := e.configs.Lookup(config)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	return e.bags.Insert(configBag{config: c}), StatusOK
}

func (e *sdkEngine) SpeechConfigRelease(config Handle) Status {
	c, ok := e.configs.Remove(config)
	if !ok {
		return StatusInvalidHandle
	}
	c.Close()
	return StatusOK
}

func (e *sdkEngine) PropertyBagSetString(bag Handle, id int, name, value CString) Status {
	b, ok := e.bags.Lookup(bag)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("set property", b.set(id, name.String(), value.String()))
}

func (e *sdkEngine) PropertyBagGetString(bag Handle, id int, name, defaultValue CString, buf []byte) (uint32, Status) {
	b, ok := e.bags.Lookup(bag)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return copyOut(b.get(id, name.String(), defaultValue.String()), buf)
}

func (e *sdkEngine) PropertyBagRelease(bag Handle) Status {
	if _, ok := e.bags.Remove(bag); !ok {
		return StatusInvalidHandle
	}
	return StatusOK
}

func (e *sdkEngine) AudioConfigFromDefaultMicrophone() (Handle, Status) {
	c, err := audio.NewAudioConfigFromDefaultMicrophoneInput()
	if err != nil {
		return InvalidHandle, statusFromError("audio config from microphone", err)
	}
	return e.audioConfig.Insert(c), StatusOK
}

func (e *sdkEngine) AudioConfigFromWavFile(fileName CString) (Handle, Status) {
	c, err := audio.NewAudioConfigFromWavFileInput(fileName.String())
	if err != nil {
		return InvalidHandle, statusFromError("audio config from wav file", err)
	}
	return e.audioConfig.Insert(c), StatusOK
}

func (e *sdkEngine) AudioConfigFromStream(stream Handle) (Handle, Status) {
	s, ok := e.pushes.Lookup(stream)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	c, err := audio.NewAudioConfigFromStreamInput(s)
	if err != nil {
		return InvalidHandle, statusFromError("audio config from stream", err)
	}
	return e.audioConfig.Insert(c), StatusOK
}

func (e *sdkEngine) AudioConfigFromStreamOutput(stream Handle) (Handle, Status) {
	s, ok := e.pulls.Lookup(stream)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	c, err := audio.NewAudioConfigFromStreamOutput(s)
	if err != nil {
		return InvalidHandle, statusFromError("audio config from output stream", err)
	}
	return e.audioConfig.Insert(c), StatusOK
}

func (e *sdkEngine) AudioConfigRelease(config Handle) Status {
	c, ok := e.audioConfig.Remove(config)
	if !ok {
		return StatusInvalidHandle
	}
	c.Close()
	return StatusOK
}

func (e *sdkEngine) PullAudioOutputStreamCreate() (Handle, Status) {
	s, err := audio.CreatePullAudioOutputStream()
	if err != nil {
		return InvalidHandle, statusFromError("create pull stream", err)
	}
	return e.pulls.Insert(s), StatusOK
}

func (e *sdkEngine) PullAudioOutputStreamRead(stream Handle, buf []byte) (uint32, Status) {
	s, ok := e.pulls.Lookup(stream)
	if !ok {
		return 0, StatusInvalidHandle
	}
	data, err := s.Read(uint(len(buf)))
	if err != nil {
		return 0, statusFromError("read pull stream", err)
	}
	n := copy(buf, data)
	return uint32(n), StatusOK
}

func (e *sdkEngine) PushAudioInputStreamCreate() (Handle, Status) {
	s, err := audio.CreatePushAudioInputStream()
	if err != nil {
		return InvalidHandle, statusFromError("create push stream", err)
	}
	return e.pushes.Insert(s), StatusOK
}

func (e *sdkEngine) PushAudioInputStreamWrite(stream Handle, data []byte) Status {
	s, ok := e.pushes.Lookup(stream)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("write push stream", s.Write(data))
}

func (e *sdkEngine) PushAudioInputStreamClose(stream Handle) Status {
	s, ok := e.pushes.Lookup(stream)
	if !ok {
		return StatusInvalidHandle
	}
	s.CloseStream()
	return StatusOK
}

func (e *sdkEngine) AudioStreamRelease(stream Handle) Status {
	if s, ok := e.pulls.Remove(stream); ok {
		s.Close()
		return StatusOK
	}
	if s, ok := e.pushes.Remove(stream); ok {
		s.Close()
		return StatusOK
	}
	return StatusInvalidHandle
}

func (e *sdkEngine) RecognizerCreateFromConfig(config, audioConfig Handle) (Handle, Status) {
	c, ok := e.configs.Lookup(config)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	a, ok := e.audioConfig.Lookup(audioConfig)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	r, err := speech.NewSpeechRecognizerFromConfig(c, a)
	if err != nil {
		return InvalidHandle, statusFromError("create recognizer", err)
	}
	return e.recognizers.Insert(&sdkRecognizer{recognizer: r, slots: newCallbackSlots()}), StatusOK
}

func (e *sdkEngine) RecognizerGetPropertyBag(recognizer Handle) (Handle, Status) {
	r, ok := e.recognizers.Lookup(recognizer)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	return e.bags.Insert(collectionBag{props: r.recognizer.Properties}), StatusOK
}

func (e *sdkEngine) RecognizerSetCallback(recognizer Handle, kind EventKind, cb EventCallback, context uintptr) Status {
	if kind.IsSynthesisEvent() {
		return StatusInvalidArg
	}
	r, ok := e.recognizers.Lookup(recognizer)
	if !ok {
		return StatusInvalidHandle
	}
	if r.slots.set(kind, cb, context) {
		e.hook(recognizer, r, kind)
	}
	return StatusOK
}

func autoDetectedLanguage(props *common.PropertyCollection) string {
	if props == nil {
		return ""
	}
	return props.GetProperty(common.PropertyID(propertyAutoDetectResult), "")
}

// hook installs the SDK handler for one recognizer slot. The SDK frees event args
// once they are closed, so every value is copied out first.
func (e *sdkEngine) hook(h Handle, r *sdkRecognizer, kind EventKind) {
	dispatch := e.dispatcher(h, &r.slots, kind)

	session := func(evt speech.SessionEventArgs) {
		defer evt.Close()
		dispatch(&sdkEvent{sessionID: evt.SessionID})
	}
	recognition := func(evt speech.RecognitionEventArgs) {
		defer evt.Close()
		dispatch(&sdkEvent{sessionID: evt.SessionID, offset: evt.Offset})
	}
	result := func(evt speech.SpeechRecognitionEventArgs) {
		defer evt.Close()
		dispatch(&sdkEvent{
			sessionID: evt.SessionID,
			offset:    evt.Offset,
			resultID:  evt.Result.ResultID,
			reason:    int(evt.Result.Reason),
			text:      evt.Result.Text,
			language:  autoDetectedLanguage(evt.Result.Properties),
		})
	}

	switch kind {
	case EventSessionStarted:
		r.recognizer.SessionStarted(session)
	case EventSessionStopped:
		r.recognizer.SessionStopped(session)
	case EventSpeechStartDetected:
		r.recognizer.SpeechStartDetected(recognition)
	case EventSpeechEndDetected:
		r.recognizer.SpeechEndDetected(recognition)
	case EventRecognizing:
		r.recognizer.Recognizing(result)
	case EventRecognized:
		r.recognizer.Recognized(result)
	case EventCanceled:
		r.recognizer.Canceled(func(evt speech.SpeechRecognitionCanceledEventArgs) {
			defer evt.Close()
			dispatch(&sdkEvent{
				sessionID:          evt.SessionID,
				offset:             evt.Offset,
				resultID:           evt.Result.ResultID,
				reason:             int(evt.Result.Reason),
				text:               evt.Result.Text,
				cancellationReason: int(evt.Reason),
				errorCode:          int(evt.ErrorCode),
				errorDetails:       evt.ErrorDetails,
			})
		})
	}
}

func (e *sdkEngine) RecognizerStartContinuous(recognizer Handle) Status {
	r, ok := e.recognizers.Lookup(recognizer)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("start continuous recognition", <-r.recognizer.StartContinuousRecognitionAsync())
}

func (e *sdkEngine) RecognizerStopContinuous(recognizer Handle) Status {
	r, ok := e.recognizers.Lookup(recognizer)
	if !ok {
		return StatusInvalidHandle
	}
	return statusFromError("stop continuous recognition", <-r.recognizer.StopContinuousRecognitionAsync())
}

func (e *sdkEngine) RecognizerRelease(recognizer Handle) Status {
	r, ok := e.recognizers.Remove(recognizer)
	if !ok {
		return StatusInvalidHandle
	}
	r.recognizer.Close()
	return StatusOK
}

func (e *sdkEngine) EventGetSessionID(event Handle, buf []byte) (uint32, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return copyOut(ev.sessionID, buf)
}

func (e *sdkEngine) RecognitionEventGetOffset(event Handle) (uint64, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return 0, StatusInvalidHandle
	}
	if !isRecognitionEvent(ev.kind) {
		return 0, StatusInvalidArg
	}
	return ev.offset, StatusOK
}

func (e *sdkEngine) RecognitionEventGetResult(event Handle) (Handle, Status) {
	ev, ok := e.events.Lookup(event)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	if !hasResult(ev.kind) {
		return InvalidHandle, StatusInvalidArg
	}
	res := *ev
	return e.results.Insert(&res), StatusOK
}

func (e *sdkEngine) EventRelease(event Handle) Status {
	if _, ok := e.events.Remove(event); !ok {
		return StatusInvalidHandle
	}
	return StatusOK
}

func (e *sdkEngine) ResultGetReason(result Handle) (int, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return r.reason, StatusOK
}

func (e *sdkEngine) ResultGetCanceledReason(result Handle) (int, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return 0, StatusInvalidHandle
	}
	if r.kind != EventCanceled && r.kind != EventSynthesisCanceled {
		return 0, StatusInvalidState
	}
	return r.cancellationReason, StatusOK
}

func (e *sdkEngine) ResultGetCanceledErrorCode(result Handle) (int, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return 0, StatusInvalidHandle
	}
	if r.kind != EventCanceled && r.kind != EventSynthesisCanceled {
		return 0, StatusInvalidState
	}
	return r.errorCode, StatusOK
}

func (e *sdkEngine) ResultGetText(result Handle, buf []byte) (uint32, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return copyOut(r.text, buf)
}

func (e *sdkEngine) ResultGetResultID(result Handle, buf []byte) (uint32, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return copyOut(r.resultID, buf)
}

func (e *sdkEngine) ResultGetPropertyBag(result Handle) (Handle, Status) {
	r, ok := e.results.Lookup(result)
	if !ok {
		return InvalidHandle, StatusInvalidHandle
	}
	bag := &mapBag{values: map[int]string{
		propertyErrorDetails:     r.errorDetails,
		propertyAutoDetectResult: r.language,
	}}
	return e.bags.Insert(bag), StatusOK
}

func (e *sdkEngine) ResultRelease(result Handle) Status {
	r, ok := e.results.Remove(result)
	if !ok {
		return StatusInvalidHandle
	}
	if r.synthesis != nil {
		r.synthesis.Close()
	}
	return StatusOK
}

var _ Engine = (*sdkEngine)(nil)
