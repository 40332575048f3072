// Package asr exposes speech recognition as a provider interface: whole-clip
// recognition from an io.Reader and streaming recognition fed chunk by chunk, with
// results delivered on a channel.
package asr

import (
	"context"
	"io"
	"time"
)

// RecognitionResult represents the output of speech recognition.
type RecognitionResult struct {
	// Text is the recognized text
	Text string

	// IsFinal indicates if this is a final result (true) or partial/interim (false)
	IsFinal bool

	// Language used for recognition
	Language string

	// SessionID of the recognition session that produced the result
	SessionID string

	// Offset of the utterance from the start of the audio
	Offset time.Duration

	// Timestamp when recognition completed
	Timestamp time.Time
}

// AudioConfig specifies the audio format for recognition.
type AudioConfig struct {
	// SampleRate in Hz (e.g., 16000)
	SampleRate int

	// Channels (1 for mono)
	Channels int

	// Encoding format, only "pcm" is accepted
	Encoding string

	// BitsPerSample (e.g., 16)
	BitsPerSample int
}

// DefaultAudioConfig is the format push streams expect: 16 kHz, 16-bit mono PCM.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:    16000,
		Channels:      1,
		Encoding:      "pcm",
		BitsPerSample: 16,
	}
}

// RecognitionConfig contains settings for speech recognition.
type RecognitionConfig struct {
	// Language code (e.g., "en-US", "zh-CN")
	Language string

	// EnablePartialResults determines if partial/interim results should be returned
	// during streaming recognition
	EnablePartialResults bool

	// ProfanityFilter enables profanity filtering
	ProfanityFilter bool

	// SegmentationSilence ends an utterance after this much silence. Zero keeps the
	// service default.
	SegmentationSilence time.Duration

	// InitialSilence cancels recognition if no speech starts within this time.
	// Zero keeps the service default.
	InitialSilence time.Duration
}

// StreamingRecognizer handles continuous speech recognition from an audio stream.
type StreamingRecognizer interface {
	// SendAudio sends audio data to the recognizer.
	// Audio must match the AudioConfig provided during initialization.
	SendAudio(ctx context.Context, audioData []byte) error

	// Results returns a channel that receives recognition results.
	// The channel is closed when the session ends or the recognizer is closed.
	Results() <-chan *RecognitionResult

	// Err returns the error that ended the session, if any.
	Err() error

	// Close stops recognition and releases resources.
	Close() error
}

// Provider is the main interface for ASR systems.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Recognize performs speech recognition on a complete audio segment.
	Recognize(ctx context.Context, audio io.Reader, audioConfig AudioConfig, config RecognitionConfig) (*RecognitionResult, error)

	// StreamingRecognize creates a streaming recognizer for continuous audio input.
	StreamingRecognize(ctx context.Context, audioConfig AudioConfig, config RecognitionConfig) (StreamingRecognizer, error)

	// SupportsStreaming indicates if the provider supports streaming recognition.
	SupportsStreaming() bool

	// SupportedLanguages returns a list of supported language codes.
	// Returns empty slice if all languages are supported.
	SupportedLanguages() []string

	// Close releases any resources held by the provider.
	Close() error
}

// Error types for ASR operations
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeInvalidConfig
	ErrCodeInvalidAudio
	ErrCodeUnsupportedFeature
	ErrCodeAuthenticationFailed
	ErrCodeQuotaExceeded
	ErrCodeNetworkError
	ErrCodeProviderError
	ErrCodeClosed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidConfig:
		return "invalid config"
	case ErrCodeInvalidAudio:
		return "invalid audio"
	case ErrCodeUnsupportedFeature:
		return "unsupported feature"
	case ErrCodeAuthenticationFailed:
		return "authentication failed"
	case ErrCodeQuotaExceeded:
		return "quota exceeded"
	case ErrCodeNetworkError:
		return "network error"
	case ErrCodeProviderError:
		return "provider error"
	case ErrCodeClosed:
		return "closed"
	default:
		return "unknown"
	}
}
