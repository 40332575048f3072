// Package tts exposes speech synthesis as a provider interface: whole-clip synthesis
// returning the audio, and streaming synthesis delivering audio chunks on a channel
// as they are produced.
package tts

import (
	"context"
)

// AudioFormat describes synthesized audio.
type AudioFormat struct {
	SampleRate int    // Sample rate in Hz, 0 if the encoding is not raw PCM
	Channels   int    // Number of audio channels (1 for mono)
	Encoding   string // Service format name (e.g., "raw-16khz-16bit-mono-pcm")
}

// SynthesizeRequest represents a request to synthesize speech
type SynthesizeRequest struct {
	Text     string // Text to synthesize, or an SSML document when SSML is set
	SSML     bool
	Voice    string // Voice name; the provider default when empty
	Language string // Language code (e.g., "en-US", "zh-CN")
}

// SynthesizeResponse represents the response from speech synthesis
type SynthesizeResponse struct {
	AudioData   []byte      // Raw audio data
	AudioFormat AudioFormat // Format of the audio data
	Duration    float64     // Duration in seconds, 0 if unknown
}

// TTSProvider defines the interface that all TTS services must implement
type TTSProvider interface {
	// Name returns the name of the TTS provider
	Name() string

	// Synthesize converts text to speech and returns the complete audio.
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// GetSupportedVoices returns voice names that can be used in SynthesizeRequest
	GetSupportedVoices() []string

	// GetDefaultVoice returns the voice used when a request names none
	GetDefaultVoice() string

	// ValidateConfig returns an error if credentials or required settings are missing
	ValidateConfig() error
}

// StreamingTTSProvider extends TTSProvider with streaming capabilities
type StreamingTTSProvider interface {
	TTSProvider

	// StreamSynthesize streams audio chunks as they are generated. Both channels are
	// closed when synthesis ends; the error channel carries at most one error.
	StreamSynthesize(ctx context.Context, req *SynthesizeRequest) (<-chan []byte, <-chan error)
}
