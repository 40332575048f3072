package asr

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

func useMockEngine(t *testing.T) *native.MockEngine {
	t.Helper()
	engine := native.NewMockEngine()
	prev := native.SetDefault(engine)
	t.Cleanup(func() { native.SetDefault(prev) })
	return engine
}

func newTestProvider(t *testing.T) *AzureProvider {
	t.Helper()
	provider, err := NewAzureProvider(AzureConfig{SubscriptionKey: "key", Region: "westus"})
	require.NoError(t, err)
	return provider
}

func startTestStream(t *testing.T, config RecognitionConfig) (*native.MockEngine, *AzureStreamingRecognizer) {
	t.Helper()
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	recognizer, err := provider.StreamingRecognize(ctx, DefaultAudioConfig(), config)
	require.NoError(t, err)
	stream := recognizer.(*AzureStreamingRecognizer)
	t.Cleanup(func() { stream.Close() })
	return engine, stream
}

func drain(ch <-chan *RecognitionResult) []*RecognitionResult {
	var out []*RecognitionResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestNewAzureProvider_MissingCredentials(t *testing.T) {
	_, err := NewAzureProvider(AzureConfig{Region: "westus"})
	var asrErr *Error
	require.ErrorAs(t, err, &asrErr)
	assert.Equal(t, ErrCodeInvalidConfig, asrErr.Code)

	_, err = NewAzureProvider(AzureConfig{SubscriptionKey: "key"})
	require.ErrorAs(t, err, &asrErr)
	assert.Equal(t, ErrCodeInvalidConfig, asrErr.Code)
}

func TestAzureProvider_Metadata(t *testing.T) {
	provider := newTestProvider(t)

	assert.Equal(t, "azure-speech", provider.Name())
	assert.True(t, provider.SupportsStreaming())
	assert.NotNil(t, provider.SupportedLanguages())
	assert.NoError(t, provider.Close())
}

func TestAzureProvider_RejectsUnsupportedAudio(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	formats := []AudioConfig{
		{SampleRate: 48000, Channels: 1, BitsPerSample: 16, Encoding: "pcm"},
		{SampleRate: 16000, Channels: 2, BitsPerSample: 16, Encoding: "pcm"},
		{SampleRate: 16000, Channels: 1, BitsPerSample: 16, Encoding: "opus"},
	}
	for _, format := range formats {
		_, err := provider.StreamingRecognize(context.Background(), format, RecognitionConfig{})
		var asrErr *Error
		require.ErrorAs(t, err, &asrErr)
		assert.Equal(t, ErrCodeInvalidAudio, asrErr.Code)
	}
	assert.Empty(t, engine.Calls())
}

func TestAzureStreaming_ConfiguresRecognizer(t *testing.T) {
	_, stream := startTestStream(t, RecognitionConfig{
		Language:            "zh-CN",
		ProfanityFilter:     true,
		SegmentationSilence: 500 * time.Millisecond,
		InitialSilence:      5 * time.Second,
	})

	props := stream.recognizer.Properties()
	expected := map[common.PropertyID]string{
		common.SpeechServiceConnectionRecoLanguage:     "zh-CN",
		common.SpeechServiceResponseProfanityFilter:    "true",
		common.SegmentationSilenceTimeoutMs:            "500",
		common.SpeechServiceConnectionInitialSilenceMs: "5000",
	}
	for id, want := range expected {
		got, err := props.GetProperty(id, "")
		require.NoError(t, err)
		assert.Equal(t, want, got, "property %d", id)
	}
	assert.Equal(t, "zh-CN", stream.language)
}

func TestAzureStreaming_DefaultLanguage(t *testing.T) {
	_, stream := startTestStream(t, RecognitionConfig{})
	assert.Equal(t, defaultAzureLanguage, stream.language)
}

func TestAzureStreaming_Results(t *testing.T) {
	engine, stream := startTestStream(t, RecognitionConfig{EnablePartialResults: true})
	h := stream.recognizer.GetHandle()

	require.NoError(t, stream.SendAudio(context.Background(), []byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, engine.PushedData(stream.pushStream.GetHandle()))

	engine.FireEvent(h, native.EventRecognizing, native.MockEvent{
		Reason: int(common.RecognizingSpeech),
		Text:   "hello",
	})
	engine.FireEvent(h, native.EventRecognized, native.MockEvent{
		Reason: int(common.RecognizedSpeech),
		Text:   "hello world",
		Offset: 15_000_000,
	})
	engine.FireEvent(h, native.EventRecognized, native.MockEvent{Reason: int(common.NoMatch)})

	require.NoError(t, stream.Close())
	results := drain(stream.Results())

	require.Len(t, results, 2)
	assert.False(t, results[0].IsFinal)
	assert.Equal(t, "hello", results[0].Text)
	assert.True(t, results[1].IsFinal)
	assert.Equal(t, "hello world", results[1].Text)
	assert.Equal(t, 1500*time.Millisecond, results[1].Offset)
	assert.Len(t, results[1].SessionID, 36)
	assert.Equal(t, defaultAzureLanguage, results[1].Language)

	assert.NoError(t, stream.Err())
	assert.Zero(t, engine.Live())
}

func TestAzureStreaming_PartialsDisabled(t *testing.T) {
	engine, stream := startTestStream(t, RecognitionConfig{})

	engine.FireEvent(stream.recognizer.GetHandle(), native.EventRecognizing, native.MockEvent{
		Reason: int(common.RecognizingSpeech),
		Text:   "hel",
	})
	require.NoError(t, stream.Close())
	assert.Empty(t, drain(stream.Results()))
}

func TestAzureStreaming_CanceledWithError(t *testing.T) {
	tests := []struct {
		code common.CancellationErrorCode
		want ErrorCode
	}{
		{common.AuthenticationFailure, ErrCodeAuthenticationFailed},
		{common.Forbidden, ErrCodeAuthenticationFailed},
		{common.TooManyRequests, ErrCodeQuotaExceeded},
		{common.ConnectionFailure, ErrCodeNetworkError},
		{common.BadRequest, ErrCodeInvalidConfig},
		{common.ServiceError, ErrCodeProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			engine, stream := startTestStream(t, RecognitionConfig{})

			engine.FireEvent(stream.recognizer.GetHandle(), native.EventCanceled, native.MockEvent{
				Reason:             int(common.Canceled),
				CancellationReason: int(common.CancellationReasonError),
				ErrorCode:          int(tt.code),
				ErrorDetails:       "details",
			})

			assert.Empty(t, drain(stream.Results()))
			var asrErr *Error
			require.ErrorAs(t, stream.Err(), &asrErr)
			assert.Equal(t, tt.want, asrErr.Code)
			assert.Contains(t, asrErr.Message, "details")
		})
	}
}

func TestAzureStreaming_CanceledAtEndOfStream(t *testing.T) {
	engine, stream := startTestStream(t, RecognitionConfig{})

	engine.FireEvent(stream.recognizer.GetHandle(), native.EventCanceled, native.MockEvent{
		Reason:             int(common.Canceled),
		CancellationReason: int(common.CancellationReasonEndOfStream),
	})

	assert.Empty(t, drain(stream.Results()))
	assert.NoError(t, stream.Err())
}

func TestAzureStreaming_SendAfterClose(t *testing.T) {
	_, stream := startTestStream(t, RecognitionConfig{})
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	err := stream.SendAudio(context.Background(), []byte{0, 0})
	var asrErr *Error
	require.ErrorAs(t, err, &asrErr)
	assert.Equal(t, ErrCodeClosed, asrErr.Code)
}

func TestAzureStreaming_ContextCancelCloses(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	recognizer, err := provider.StreamingRecognize(ctx, DefaultAudioConfig(), RecognitionConfig{})
	require.NoError(t, err)

	cancel()
	assert.Empty(t, drain(recognizer.Results()))
	require.Eventually(t, func() bool { return engine.Live() == 0 }, time.Second, 10*time.Millisecond)
}

func TestAzureStreaming_StartFailureReleasesEverything(t *testing.T) {
	engine := useMockEngine(t)
	engine.Fail("RecognizerStartContinuous", native.StatusRuntimeError)
	provider := newTestProvider(t)

	_, err := provider.StreamingRecognize(context.Background(), DefaultAudioConfig(), RecognitionConfig{})
	var asrErr *Error
	require.ErrorAs(t, err, &asrErr)
	assert.Equal(t, ErrCodeProviderError, asrErr.Code)
	assert.Equal(t, native.StatusRuntimeError, common.StatusOf(err))
	assert.Zero(t, engine.Live())
}

func TestAzureStreaming_InvalidLanguage(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	_, err := provider.StreamingRecognize(context.Background(), DefaultAudioConfig(), RecognitionConfig{Language: "en\x00US"})
	var asrErr *Error
	require.ErrorAs(t, err, &asrErr)
	assert.Equal(t, ErrCodeInvalidConfig, asrErr.Code)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
	assert.Zero(t, engine.Live())
}

func TestAzureStreaming_Transcribe(t *testing.T) {
	engine, stream := startTestStream(t, RecognitionConfig{})
	h := stream.recognizer.GetHandle()
	pushHandle := stream.pushStream.GetHandle()

	go func() {
		for !engine.PushStreamEnded(pushHandle) {
			time.Sleep(5 * time.Millisecond)
		}
		engine.FireEvent(h, native.EventRecognized, native.MockEvent{Reason: int(common.RecognizedSpeech), Text: "first", Offset: 10})
		engine.FireEvent(h, native.EventRecognized, native.MockEvent{Reason: int(common.RecognizedSpeech), Text: "second"})
		engine.FireEvent(h, native.EventSessionStopped, native.MockEvent{})
	}()

	pcm := bytes.Repeat([]byte{0x01, 0x00}, recognizeChunkSize)
	result, err := stream.transcribe(context.Background(), bytes.NewReader(pcm))
	require.NoError(t, err)

	assert.Equal(t, "first second", result.Text)
	assert.True(t, result.IsFinal)
	assert.Equal(t, time.Microsecond, result.Offset)
	assert.Equal(t, pcm, engine.PushedData(pushHandle))
}

func TestAzureStreaming_TranscribeContextDone(t *testing.T) {
	_, stream := startTestStream(t, RecognitionConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := stream.transcribe(ctx, bytes.NewReader([]byte{0, 0}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAzureStreaming_TranscribeKeepsEveryFinal(t *testing.T) {
	engine, stream := startTestStream(t, RecognitionConfig{})
	h := stream.recognizer.GetHandle()

	const finals = resultsBufferSize + 36
	go func() {
		for i := 0; i < finals; i++ {
			engine.FireEvent(h, native.EventRecognized, native.MockEvent{Reason: int(common.RecognizedSpeech), Text: "w"})
		}
		engine.FireEvent(h, native.EventSessionStopped, native.MockEvent{})
	}()

	pcm := bytes.Repeat([]byte{0x01, 0x00}, recognizeChunkSize)
	result, err := stream.transcribe(context.Background(), bytes.NewReader(pcm))
	require.NoError(t, err)
	assert.Len(t, strings.Fields(result.Text), finals)
}

func TestAzureStreaming_CloseReleasesPendingFinal(t *testing.T) {
	engine, stream := startTestStream(t, RecognitionConfig{})
	h := stream.recognizer.GetHandle()

	fired := make(chan struct{})
	go func() {
		defer close(fired)
		for i := 0; i <= resultsBufferSize; i++ {
			engine.FireEvent(h, native.EventRecognized, native.MockEvent{Reason: int(common.RecognizedSpeech), Text: "w"})
		}
	}()

	require.Eventually(t, func() bool {
		return len(stream.Results()) == resultsBufferSize
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, stream.Close())

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("event handler still blocked after Close")
	}
	assert.Len(t, drain(stream.Results()), resultsBufferSize)
}
