package tts

import (
	"context"
	"io"
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
	provider, err := NewAzureProvider(AzureConfig{SubscriptionKey: "key", Region: "westus", Language: "en-US"})
	require.NoError(t, err)
	return provider
}

// assertReleased checks that every native object the provider created was released.
func assertReleased(t *testing.T, engine *native.MockEngine) {
	t.Helper()
	assert.Eventually(t, func() bool { return engine.Live() == 0 }, time.Second, time.Millisecond,
		"%d native objects still live", engine.Live())
}

func TestNewAzureProvider(t *testing.T) {
	_, err := NewAzureProvider(AzureConfig{Region: "westus"})
	assert.Error(t, err)

	provider, err := NewAzureProvider(AzureConfig{SubscriptionKey: "key", Region: "westus"})
	require.NoError(t, err)
	assert.Equal(t, "azure-speech", provider.Name())
	assert.Equal(t, azureDefaultVoice, provider.GetDefaultVoice())
	assert.Contains(t, provider.GetSupportedVoices(), provider.GetDefaultVoice())
	assert.Equal(t, AudioFormat{SampleRate: 16000, Channels: 1, Encoding: "raw-16khz-16bit-mono-pcm"}, provider.Format())

	provider, err = NewAzureProvider(AzureConfig{
		SubscriptionKey: "key",
		Region:          "westus",
		Voice:           "zh-CN-XiaoxiaoNeural",
		OutputFormat:    common.Audio24Khz48KBitRateMonoMp3,
	})
	require.NoError(t, err)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", provider.GetDefaultVoice())
	assert.Zero(t, provider.Format().SampleRate)
}

func TestAzureProvider_Synthesize(t *testing.T) {
	engine := useMockEngine(t)
	pcm := make([]byte, 32000)
	engine.SynthesizeFunc = func(string) []byte { return pcm }
	provider := newTestProvider(t)

	resp, err := provider.Synthesize(context.Background(), &SynthesizeRequest{Text: "one second of audio"})
	require.NoError(t, err)

	assert.Len(t, resp.AudioData, len(pcm))
	assert.Equal(t, 16000, resp.AudioFormat.SampleRate)
	assert.InDelta(t, 1.0, resp.Duration, 1e-9)
	assertReleased(t, engine)
}

func TestAzureProvider_SynthesizeSsml(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	resp, err := provider.Synthesize(context.Background(), &SynthesizeRequest{
		Text: `<speak version="1.0" xml:lang="en-US"><voice name="en-US-GuyNeural">hi there</voice></speak>`,
		SSML: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(resp.AudioData))
	assertReleased(t, engine)
}

func TestAzureProvider_SynthesizeCanceled(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	engine.FailSynthesis(int(common.AuthenticationFailure), "invalid subscription key")
	_, err := provider.Synthesize(context.Background(), &SynthesizeRequest{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid subscription key")
	assertReleased(t, engine)
}

func TestAzureProvider_EmptyRequest(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	_, err := provider.Synthesize(context.Background(), &SynthesizeRequest{})
	assert.Error(t, err)
	_, err = provider.Synthesize(context.Background(), nil)
	assert.Error(t, err)

	audioCh, errCh := provider.StreamSynthesize(context.Background(), &SynthesizeRequest{})
	_, open := <-audioCh
	assert.False(t, open)
	assert.Error(t, <-errCh)
	assert.Zero(t, engine.Created(native.KindSynthesizer))
}

func TestAzureProvider_StreamSynthesize(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	audioCh, errCh := provider.StreamSynthesize(context.Background(), &SynthesizeRequest{Text: "streamed speech"})

	var got []byte
	for chunk := range audioCh {
		got = append(got, chunk...)
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, "streamed speech", string(got))
	assertReleased(t, engine)
}

func TestAzureProvider_StreamSynthesizeCanceled(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	engine.FailSynthesis(int(common.ServiceTimeout), "timed out")
	audioCh, errCh := provider.StreamSynthesize(context.Background(), &SynthesizeRequest{Text: "never"})

	for range audioCh {
		t.Fatal("no audio expected")
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assertReleased(t, engine)
}

func TestAzureProvider_SynthesizeToStream(t *testing.T) {
	engine := useMockEngine(t)
	provider := newTestProvider(t)

	text := strings.Repeat("word ", 100)
	stream, errCh, err := provider.SynthesizeToStream(context.Background(), &SynthesizeRequest{Text: text})
	require.NoError(t, err)

	data, err := io.ReadAll(stream.Reader())
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
	assert.NoError(t, <-errCh)

	stream.Close()
	assertReleased(t, engine)
}
