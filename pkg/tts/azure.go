package tts

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/speech"
	"github.com/realtime-ai/speech-sdk-go/pkg/trace"
)

const (
	azureDefaultVoice  = "en-US-JennyNeural"
	azureDefaultFormat = common.Raw16Khz16BitMonoPcm
	// streamBufferSize is the number of chunks StreamSynthesize queues.
	streamBufferSize = 32
)

// Azure neural voices known to work with the default output format
var azureVoices = []string{
	"en-US-JennyNeural",
	"en-US-GuyNeural",
	"en-US-AvaNeural",
	"en-GB-SoniaNeural",
	"de-DE-KatjaNeural",
	"zh-CN-XiaoxiaoNeural",
	"zh-CN-YunxiNeural",
	"ja-JP-NanamiNeural",
}

// AzureConfig holds the settings of an AzureProvider.
type AzureConfig struct {
	SubscriptionKey string
	Region          string
	// Language and Voice are used when a request leaves them empty.
	Language string
	Voice    string
	// OutputFormat defaults to 16 kHz 16-bit mono PCM.
	OutputFormat common.SpeechSynthesisOutputFormat
}

// AzureProvider synthesizes speech with the native speech engine. Every request
// gets its own synthesizer.
type AzureProvider struct {
	config AzureConfig
}

var _ StreamingTTSProvider = (*AzureProvider)(nil)

// NewAzureProvider creates a provider. Credentials are only checked for presence.
func NewAzureProvider(config AzureConfig) (*AzureProvider, error) {
	if config.Voice == "" {
		config.Voice = azureDefaultVoice
	}
	if config.OutputFormat == "" {
		config.OutputFormat = azureDefaultFormat
	}
	p := &AzureProvider{config: config}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the provider name
func (p *AzureProvider) Name() string {
	return "azure-speech"
}

// GetSupportedVoices returns a selection of neural voices. Any voice name the
// service knows is accepted.
func (p *AzureProvider) GetSupportedVoices() []string {
	return azureVoices
}

// GetDefaultVoice returns the configured voice
func (p *AzureProvider) GetDefaultVoice() string {
	return p.config.Voice
}

// ValidateConfig reports missing credentials.
func (p *AzureProvider) ValidateConfig() error {
	if p.config.SubscriptionKey == "" || p.config.Region == "" {
		return fmt.Errorf("azure speech credentials not set")
	}
	return nil
}

// Format returns the format of the audio the provider produces.
func (p *AzureProvider) Format() AudioFormat {
	return AudioFormat{
		SampleRate: p.config.OutputFormat.SampleRate(),
		Channels:   1,
		Encoding:   string(p.config.OutputFormat),
	}
}

// Synthesize converts text to speech and waits for the complete audio.
func (p *AzureProvider) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ctx, span := trace.InstrumentSynthesis(ctx, p.config.Region, p.voice(req), trace.SynthesisAttrs(len(req.Text), req.SSML)...)
	defer span.End()

	synthesizer, err := p.newSynthesizer(req, nil)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	defer synthesizer.Close()

	data, err := speak(ctx, synthesizer, req)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}

	format := p.Format()
	resp := &SynthesizeResponse{AudioData: data, AudioFormat: format}
	if format.SampleRate > 0 {
		resp.Duration = float64(len(data)) / float64(format.SampleRate*2*format.Channels)
	}
	return resp, nil
}

// StreamSynthesize delivers audio chunks as the synthesizer produces them. A slow
// reader stalls synthesis; cancel ctx to abandon it.
func (p *AzureProvider) StreamSynthesize(ctx context.Context, req *SynthesizeRequest) (<-chan []byte, <-chan error) {
	audioCh := make(chan []byte, streamBufferSize)
	errCh := make(chan error, 1)
	fail := func(err error) (<-chan []byte, <-chan error) {
		errCh <- err
		close(audioCh)
		close(errCh)
		return audioCh, errCh
	}

	if err := validateRequest(req); err != nil {
		return fail(err)
	}
	synthesizer, err := p.newSynthesizer(req, nil)
	if err != nil {
		return fail(err)
	}

	// mu keeps a handler still running on an engine goroutine from sending on the
	// closed channel.
	var mu sync.Mutex
	closed := false
	err = synthesizer.Synthesizing(func(e speech.SpeechSynthesisEventArgs) {
		if len(e.Result.AudioData) == 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case audioCh <- e.Result.AudioData:
		case <-ctx.Done():
		}
	})
	if err != nil {
		synthesizer.Close()
		return fail(err)
	}

	go func() {
		defer close(errCh)
		_, err := speak(ctx, synthesizer, req)
		synthesizer.Close()

		mu.Lock()
		closed = true
		close(audioCh)
		mu.Unlock()

		if err != nil {
			errCh <- err
		}
	}()
	return audioCh, errCh
}

// SynthesizeToStream synthesizes into a pull stream, e.g. for device.StartPlayback.
// The stream ends when synthesis is done; the caller must Close it after reading.
// The error channel receives the outcome and is then closed.
func (p *AzureProvider) SynthesizeToStream(ctx context.Context, req *SynthesizeRequest) (*audio.PullAudioOutputStream, <-chan error, error) {
	if err := validateRequest(req); err != nil {
		return nil, nil, err
	}
	stream, err := audio.CreatePullAudioOutputStream()
	if err != nil {
		return nil, nil, err
	}
	output, err := audio.NewAudioConfigFromStreamOutput(stream)
	if err != nil {
		stream.Close()
		return nil, nil, err
	}
	synthesizer, err := p.newSynthesizer(req, output)
	if err != nil {
		stream.Close()
		return nil, nil, err
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		// Closing the synthesizer ends the stream.
		defer synthesizer.Close()
		if _, err := speak(ctx, synthesizer, req); err != nil {
			errCh <- err
		}
	}()
	return stream, errCh, nil
}

func validateRequest(req *SynthesizeRequest) error {
	if req == nil || req.Text == "" {
		return fmt.Errorf("empty synthesis request")
	}
	return nil
}

func (p *AzureProvider) voice(req *SynthesizeRequest) string {
	if req.Voice != "" {
		return req.Voice
	}
	return p.config.Voice
}

// newSynthesizer creates a synthesizer for req and moves output, which may be nil,
// into it.
func (p *AzureProvider) newSynthesizer(req *SynthesizeRequest, output *audio.AudioConfig) (*speech.SpeechSynthesizer, error) {
	speechConfig, err := speech.NewSpeechConfigFromSubscription(p.config.SubscriptionKey, p.config.Region)
	if err != nil {
		if output != nil {
			output.Close()
		}
		return nil, fmt.Errorf("failed to create speech config: %w", err)
	}

	language := req.Language
	if language == "" {
		language = p.config.Language
	}
	settings := []func() error{
		func() error { return speechConfig.SetSpeechSynthesisVoiceName(p.voice(req)) },
		func() error { return speechConfig.SetSpeechSynthesisOutputFormat(p.config.OutputFormat) },
	}
	if language != "" {
		settings = append(settings, func() error { return speechConfig.SetSpeechSynthesisLanguage(language) })
	}
	for _, set := range settings {
		if err := set(); err != nil {
			speechConfig.Close()
			if output != nil {
				output.Close()
			}
			return nil, err
		}
	}

	synthesizer, err := speech.NewSpeechSynthesizerFromConfig(speechConfig, output)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	return synthesizer, nil
}

// speak runs one synthesis and turns a canceled result into an error.
func speak(ctx context.Context, synthesizer *speech.SpeechSynthesizer, req *SynthesizeRequest) ([]byte, error) {
	var result *speech.SpeechSynthesisResult
	var err error
	if req.SSML {
		result, err = synthesizer.SpeakSsml(ctx, req.Text)
	} else {
		result, err = synthesizer.SpeakText(ctx, req.Text)
	}
	if err != nil {
		return nil, err
	}
	defer result.Close()

	if result.Reason == common.Canceled {
		details, err := speech.NewCancellationDetailsFromSpeechSynthesisResult(result)
		if err != nil {
			return nil, err
		}
		log.Printf("[AzureTTS] synthesis %s canceled: %s", result.ResultID, details.Reason)
		return nil, fmt.Errorf("synthesis canceled: %s: %s", details.ErrorCode, details.ErrorDetails)
	}
	return result.AudioData, nil
}
