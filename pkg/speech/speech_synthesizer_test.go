package speech

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// newTestSynthesizer expects a mock engine installed with useMockEngine.
func newTestSynthesizer(t *testing.T, audioConfig *audio.AudioConfig) *SpeechSynthesizer {
	t.Helper()

	config, err := NewSpeechConfigFromSubscription("key", "westus")
	require.NoError(t, err)
	require.NoError(t, config.SetSpeechSynthesisVoiceName("en-US-AvaNeural"))

	synthesizer, err := NewSpeechSynthesizerFromConfig(config, audioConfig)
	require.NoError(t, err)
	t.Cleanup(synthesizer.Close)
	return synthesizer
}

func TestSpeechSynthesizer_CreateAndClose(t *testing.T) {
	engine := useMockEngine(t)

	config, err := NewSpeechConfigFromSubscription("key", "westus")
	require.NoError(t, err)
	synthesizer, err := NewSpeechSynthesizerFromConfig(config, nil)
	require.NoError(t, err)

	assert.True(t, synthesizer.GetHandle().IsValid())
	assert.Equal(t, native.InvalidHandle, config.GetHandle(), "config was moved")

	synthesizer.Close()
	synthesizer.Close()
	assert.Equal(t, native.InvalidHandle, synthesizer.GetHandle())
	assertNoLeaks(t, engine)
}

func TestSpeechSynthesizer_NilConfig(t *testing.T) {
	engine := useMockEngine(t)

	audioConfig, err := audio.NewAudioConfigFromDefaultMicrophoneInput()
	require.NoError(t, err)

	_, err = NewSpeechSynthesizerFromConfig(nil, audioConfig)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Equal(t, native.InvalidHandle, audioConfig.GetHandle(), "audio config was consumed")
	assertNoLeaks(t, engine)
}

func TestSpeechSynthesizer_CreateFailureReleasesConfigs(t *testing.T) {
	engine := useMockEngine(t)
	engine.Fail("SynthesizerCreateFromConfig", native.StatusRuntimeError)

	config, err := NewSpeechConfigFromSubscription("key", "westus")
	require.NoError(t, err)

	_, err = NewSpeechSynthesizerFromConfig(config, nil)
	assert.ErrorIs(t, err, common.ErrNative)
	assertNoLeaks(t, engine)
}

func TestSpeechSynthesizer_SpeakText(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	var reasons []common.ResultReason
	var chunks []byte
	record := func(e SpeechSynthesisEventArgs) {
		reasons = append(reasons, e.Result.Reason)
	}
	require.NoError(t, synthesizer.SynthesisStarted(record))
	require.NoError(t, synthesizer.Synthesizing(func(e SpeechSynthesisEventArgs) {
		reasons = append(reasons, e.Result.Reason)
		chunks = append(chunks, e.Result.AudioData...)
	}))
	require.NoError(t, synthesizer.SynthesisCompleted(record))

	result, err := synthesizer.SpeakText(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, common.SynthesizingAudioCompleted, result.Reason)
	assert.Len(t, result.ResultID, 32)
	assert.Equal(t, []byte("hello world"), result.AudioData)
	assert.Equal(t, []byte("hello world"), chunks)
	assert.Equal(t, []common.ResultReason{
		common.SynthesizingAudioStarted,
		common.SynthesizingAudio,
		common.SynthesizingAudioCompleted,
	}, reasons)

	result.Close()
	result.Close()
	synthesizer.Close()
	assertNoLeaks(t, engine)
}

func TestSpeechSynthesizer_SpeakSsml(t *testing.T) {
	useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	result, err := synthesizer.SpeakSsml(context.Background(),
		`<speak version="1.0"><voice name="en-US-AvaNeural">good morning</voice></speak>`)
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, "good morning", string(result.AudioData))
}

func TestSpeechSynthesizer_SpeakTextRejectsNUL(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	_, err := synthesizer.SpeakText(context.Background(), "a\x00b")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.NotContains(t, engine.Calls(), "SynthesizerSpeak")
}

func TestSpeechSynthesizer_Canceled(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	var canceled *CancellationDetails
	require.NoError(t, synthesizer.SynthesisCanceled(func(e SpeechSynthesisEventArgs) {
		details, err := NewCancellationDetailsFromSpeechSynthesisResult(&e.Result)
		require.NoError(t, err)
		canceled = details
	}))

	engine.FailSynthesis(int(common.AuthenticationFailure), "invalid voice")
	result, err := synthesizer.SpeakText(context.Background(), "hello")
	require.NoError(t, err, "a canceled synthesis is reported through the result")
	defer result.Close()

	assert.Equal(t, common.Canceled, result.Reason)
	assert.Empty(t, result.AudioData)

	details, err := NewCancellationDetailsFromSpeechSynthesisResult(result)
	require.NoError(t, err)
	assert.Equal(t, common.CancellationReasonError, details.Reason)
	assert.Equal(t, common.AuthenticationFailure, details.ErrorCode)
	assert.Equal(t, "invalid voice", details.ErrorDetails)

	require.NotNil(t, canceled)
	assert.Equal(t, *details, *canceled)
}

func TestCancellationDetails_RequiresCanceledSynthesis(t *testing.T) {
	useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	result, err := synthesizer.SpeakText(context.Background(), "hello")
	require.NoError(t, err)
	defer result.Close()

	_, err = NewCancellationDetailsFromSpeechSynthesisResult(result)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = NewCancellationDetailsFromSpeechSynthesisResult(nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestSpeechSynthesizer_WordBoundary(t *testing.T) {
	useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	var words []SpeechSynthesisWordBoundaryEventArgs
	require.NoError(t, synthesizer.WordBoundary(func(e SpeechSynthesisWordBoundaryEventArgs) {
		words = append(words, e)
	}))

	result, err := synthesizer.SpeakText(context.Background(), "say  héllo there")
	require.NoError(t, err)
	result.Close()

	require.Len(t, words, 3)
	assert.Equal(t, "héllo", words[1].Text)
	assert.Equal(t, uint(5), words[1].TextOffset)
	assert.Equal(t, uint(len("héllo")), words[1].WordLength)
	assert.Equal(t, uint64(native.MockWordTicks), words[1].AudioOffset)
	assert.Equal(t, 200*time.Millisecond, words[1].Duration)
	assert.Equal(t, common.WordBoundary, words[1].BoundaryType)
}

func TestSpeechSynthesizer_VisemeAndBookmark(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	var visemes []SpeechSynthesisVisemeEventArgs
	var bookmarks []SpeechSynthesisBookmarkEventArgs
	require.NoError(t, synthesizer.VisemeReceived(func(e SpeechSynthesisVisemeEventArgs) {
		visemes = append(visemes, e)
	}))
	require.NoError(t, synthesizer.BookmarkReached(func(e SpeechSynthesisBookmarkEventArgs) {
		bookmarks = append(bookmarks, e)
	}))

	h := synthesizer.GetHandle()
	require.True(t, engine.FireSynthesisEvent(h, native.EventVisemeReceived, native.MockEvent{
		Text:   "<svg/>",
		Viseme: native.Viseme{AudioOffset: 5_000_000, VisemeID: 21},
	}))
	require.True(t, engine.FireSynthesisEvent(h, native.EventBookmarkReached, native.MockEvent{
		Offset: 7_000_000,
		Text:   "flower_1",
	}))

	require.Len(t, visemes, 1)
	assert.Equal(t, uint(21), visemes[0].VisemeID)
	assert.Equal(t, uint64(5_000_000), visemes[0].AudioOffset)
	assert.Equal(t, "<svg/>", visemes[0].Animation)

	require.Len(t, bookmarks, 1)
	assert.Equal(t, uint64(7_000_000), bookmarks[0].AudioOffset)
	assert.Equal(t, "flower_1", bookmarks[0].Text)

	assert.Equal(t, 2, engine.Released(native.KindEvent))
}

func TestSpeechSynthesizer_NilHandlerDisconnects(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)
	h := synthesizer.GetHandle()

	calls := 0
	require.NoError(t, synthesizer.BookmarkReached(func(SpeechSynthesisBookmarkEventArgs) { calls++ }))
	assert.True(t, engine.HasSynthesisCallback(h, native.EventBookmarkReached))

	require.NoError(t, synthesizer.BookmarkReached(nil))
	assert.False(t, engine.HasSynthesisCallback(h, native.EventBookmarkReached))
	assert.False(t, engine.FireSynthesisEvent(h, native.EventBookmarkReached, native.MockEvent{Text: "x"}))
	assert.Zero(t, calls)
}

func TestSpeechSynthesizer_EventAfterUnregister(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	called := false
	require.NoError(t, synthesizer.Synthesizing(func(SpeechSynthesisEventArgs) { called = true }))
	unregisterSynthesizer(synthesizer.token)

	assert.True(t, engine.FireSynthesisEvent(synthesizer.GetHandle(), native.EventSynthesizing, native.MockEvent{}))
	assert.False(t, called)
	assert.Equal(t, 1, engine.Released(native.KindEvent))
}

func TestSpeechSynthesizer_SpeakAfterClose(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)
	synthesizer.Close()

	_, err := synthesizer.SpeakText(context.Background(), "late")
	assert.ErrorIs(t, err, common.ErrAlreadyReleased)
	assert.NotContains(t, engine.Calls(), "SynthesizerSpeak")
}

func TestSpeechSynthesizer_SpeakContextCanceled(t *testing.T) {
	engine := useMockEngine(t)
	release := make(chan struct{})
	engine.SynthesizeFunc = func(text string) []byte {
		<-release
		return []byte(text)
	}
	synthesizer := newTestSynthesizer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := synthesizer.SpeakText(ctx, "slow")
		errc <- err
	}()

	require.Eventually(t, func() bool {
		for _, call := range engine.Calls() {
			if call == "SynthesizerSpeak" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond, "synthesis should have started")
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("SpeakText did not return after cancel")
	}
	assert.Contains(t, engine.Calls(), "SynthesizerStopSpeaking")

	close(release)
	assert.Eventually(t, func() bool {
		created := engine.Created(native.KindResult)
		return created > 0 && created == engine.Released(native.KindResult)
	}, time.Second, time.Millisecond, "late result must be released")
}

func TestSpeechSynthesizer_SpeakTextAsync(t *testing.T) {
	useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	outcome, ok := <-synthesizer.SpeakTextAsync("async")
	require.True(t, ok)
	defer outcome.Close()
	require.NoError(t, outcome.Error)
	assert.Equal(t, "async", string(outcome.Result.AudioData))

	again := <-synthesizer.SpeakTextAsync("again")
	again.Close()
	assert.NoError(t, again.Error)
}

func TestSpeechSynthesizer_WritesPullStream(t *testing.T) {
	engine := useMockEngine(t)

	stream, err := audio.CreatePullAudioOutputStream()
	require.NoError(t, err)
	defer stream.Close()
	audioConfig, err := audio.NewAudioConfigFromStreamOutput(stream)
	require.NoError(t, err)

	synthesizer := newTestSynthesizer(t, audioConfig)

	for _, text := range []string{"first ", "second"} {
		result, err := synthesizer.SpeakText(context.Background(), text)
		require.NoError(t, err)
		result.Close()
	}

	got := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(stream.Reader())
		got <- data
	}()
	synthesizer.Close()

	select {
	case data := <-got:
		assert.Equal(t, "first second", string(data))
	case <-time.After(time.Second):
		t.Fatal("stream did not end when the synthesizer closed")
	}

	stream.Close()
	assertNoLeaks(t, engine)
	assert.Equal(t, engine.Created(native.KindAudioStream), engine.Released(native.KindAudioStream))
}

func TestAudioDataStream_ReadsResultAudio(t *testing.T) {
	engine := useMockEngine(t)
	synthesizer := newTestSynthesizer(t, nil)

	result, err := synthesizer.SpeakText(context.Background(), "stream me please")
	require.NoError(t, err)

	stream, err := NewAudioDataStreamFromSpeechSynthesisResult(result)
	require.NoError(t, err)
	result.Close()

	n, err := stream.Read(nil)
	assert.NoError(t, err)
	assert.Zero(t, n)

	first := make([]byte, 6)
	n, err = stream.Read(first)
	require.NoError(t, err)
	assert.Equal(t, "stream", string(first[:n]))

	rest, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, " me please", string(rest))

	n, err = stream.Read(first)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	_, err = stream.Read(first)
	assert.ErrorIs(t, err, common.ErrAlreadyReleased)

	synthesizer.Close()
	assertNoLeaks(t, engine)
}

func TestAudioDataStream_NilResult(t *testing.T) {
	useMockEngine(t)
	_, err := NewAudioDataStreamFromSpeechSynthesisResult(nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}
