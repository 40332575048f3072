package native

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cstr(s string) CString {
	return CString(s + "\x00")
}

func TestMockEngine_CountsCreateAndRelease(t *testing.T) {
	m := NewMockEngine()

	config, st := m.SpeechConfigFromSubscription(cstr("key"), cstr("region"))
	require.Equal(t, StatusOK, st)
	assert.Equal(t, 1, m.Created(KindSpeechConfig))
	assert.Equal(t, 1, m.Live())

	assert.Equal(t, StatusOK, m.SpeechConfigRelease(config))
	assert.Equal(t, StatusInvalidHandle, m.SpeechConfigRelease(config))
	assert.Equal(t, 1, m.Released(KindSpeechConfig))
	assert.Zero(t, m.Live())
	assert.Equal(t, 2, m.CallCount("SpeechConfigRelease"))
}

func TestMockEngine_ReleaseChecksKind(t *testing.T) {
	m := NewMockEngine()

	stream, _ := m.PushAudioInputStreamCreate()
	assert.Equal(t, StatusInvalidHandle, m.SpeechConfigRelease(stream))
	assert.Equal(t, StatusOK, m.AudioStreamRelease(stream))
}

func TestMockEngine_Fail(t *testing.T) {
	m := NewMockEngine()
	m.Fail("PullAudioOutputStreamCreate", StatusRuntimeError)

	h, st := m.PullAudioOutputStreamCreate()
	assert.Equal(t, StatusRuntimeError, st)
	assert.Equal(t, InvalidHandle, h)

	m.Fail("PullAudioOutputStreamCreate", StatusOK)
	_, st = m.PullAudioOutputStreamCreate()
	assert.Equal(t, StatusOK, st)
	assert.Equal(t, []string{"PullAudioOutputStreamCreate", "PullAudioOutputStreamCreate"}, m.Calls())
}

func TestMockEngine_PropertyBagBufferTooSmall(t *testing.T) {
	m := NewMockEngine()
	config, _ := m.SpeechConfigFromSubscription(cstr("subscription"), cstr("r"))
	bag, _ := m.SpeechConfigGetPropertyBag(config)

	n, st := m.PropertyBagGetString(bag, 1000, nil, cstr(""), make([]byte, 4))
	assert.Equal(t, StatusBufferTooSmall, st)
	assert.Equal(t, uint32(len("subscription")), n)

	buf := make([]byte, 32)
	n, st = m.PropertyBagGetString(bag, 1000, nil, cstr(""), buf)
	require.Equal(t, StatusOK, st)
	assert.Equal(t, "subscription", string(buf[:n]))
	assert.Equal(t, byte(0), buf[n])
}

func TestMockEngine_PullReadBlocksUntilFed(t *testing.T) {
	m := NewMockEngine()
	stream, _ := m.PullAudioOutputStreamCreate()

	type readResult struct {
		n  uint32
		st Status
	}
	done := make(chan readResult, 1)
	buf := make([]byte, 8)
	go func() {
		n, st := m.PullAudioOutputStreamRead(stream, buf)
		done <- readResult{n, st}
	}()

	select {
	case <-done:
		t.Fatal("read returned before data was available")
	case <-time.After(20 * time.Millisecond):
	}

	require.True(t, m.FeedPullStream(stream, []byte{1, 2, 3}))
	r := <-done
	assert.Equal(t, StatusOK, r.st)
	assert.Equal(t, uint32(3), r.n)

	m.EndPullStream(stream)
	n, st := m.PullAudioOutputStreamRead(stream, buf)
	assert.Equal(t, StatusOK, st)
	assert.Zero(t, n)
}

func TestMockEngine_RecognizerLifecycle(t *testing.T) {
	m := NewMockEngine()
	config, _ := m.SpeechConfigFromSubscription(cstr("k"), cstr("r"))
	audio, _ := m.AudioConfigFromDefaultMicrophone()
	reco, st := m.RecognizerCreateFromConfig(config, audio)
	require.Equal(t, StatusOK, st)

	var sessions []string
	cb := func(recognizer, event Handle, context uintptr) {
		assert.Equal(t, reco, recognizer)
		assert.Equal(t, uintptr(7), context)
		buf := make([]byte, 64)
		n, st := m.EventGetSessionID(event, buf)
		require.Equal(t, StatusOK, st)
		sessions = append(sessions, string(buf[:n]))
		m.EventRelease(event)
	}
	require.Equal(t, StatusOK, m.RecognizerSetCallback(reco, EventSessionStarted, cb, 7))
	assert.True(t, m.HasCallback(reco, EventSessionStarted))

	assert.Equal(t, StatusOK, m.RecognizerStartContinuous(reco))
	assert.True(t, m.Running(reco))
	assert.Equal(t, StatusAlreadyInProgress, m.RecognizerStartContinuous(reco))
	assert.Equal(t, StatusOK, m.RecognizerStopContinuous(reco))
	assert.False(t, m.Running(reco))

	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0], 36)
	assert.Equal(t, m.Created(KindEvent), m.Released(KindEvent))

	require.Equal(t, StatusOK, m.RecognizerSetCallback(reco, EventSessionStarted, nil, 0))
	assert.False(t, m.FireEvent(reco, EventSessionStarted, MockEvent{}))
}

func TestMockEngine_EventAccessorsByKind(t *testing.T) {
	m := NewMockEngine()
	config, _ := m.SpeechConfigFromSubscription(cstr("k"), cstr("r"))
	audio, _ := m.AudioConfigFromDefaultMicrophone()
	reco, _ := m.RecognizerCreateFromConfig(config, audio)

	var offsetStatus, resultStatus Status
	cb := func(_, event Handle, _ uintptr) {
		_, offsetStatus = m.RecognitionEventGetOffset(event)
		_, resultStatus = m.RecognitionEventGetResult(event)
		m.EventRelease(event)
	}
	m.RecognizerSetCallback(reco, EventSessionStopped, cb, 0)
	m.FireEvent(reco, EventSessionStopped, MockEvent{})

	assert.Equal(t, StatusInvalidArg, offsetStatus)
	assert.Equal(t, StatusInvalidArg, resultStatus)
}
