// Package config loads speechctl settings from the environment, optionally seeded
// from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/realtime-ai/speech-sdk-go/pkg/asr"
	"github.com/realtime-ai/speech-sdk-go/pkg/trace"
	"github.com/realtime-ai/speech-sdk-go/pkg/tts"
)

// Environment variables read by FromEnv.
const (
	EnvSpeechKey           = "AZURE_SPEECH_KEY"
	EnvSpeechRegion        = "AZURE_SPEECH_REGION"
	EnvSpeechLanguage      = "AZURE_SPEECH_LANGUAGE"
	EnvSpeechVoice         = "AZURE_SPEECH_VOICE"
	EnvSegmentationSilence = "AZURE_SPEECH_SEGMENTATION_SILENCE_MS"
	EnvInitialSilence      = "AZURE_SPEECH_INITIAL_SILENCE_MS"
	EnvTraceExporter       = "TRACE_EXPORTER"
	EnvOTLPEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvEnvironment         = "ENVIRONMENT"
	EnvSamplingRate        = "TRACE_SAMPLING_RATE"
)

// Config is the complete speechctl configuration.
type Config struct {
	SubscriptionKey string
	Region          string
	Language        string
	// Voice is the synthesis voice; empty picks the provider default.
	Voice string

	// SegmentationSilence and InitialSilence are zero when unset.
	SegmentationSilence time.Duration
	InitialSilence      time.Duration

	Trace *trace.Config
}

// Load reads the given .env files into the process environment, then builds a Config
// from it. Without arguments it reads ./.env if present. Variables already set in the
// environment win over file contents.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", files, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		SubscriptionKey: os.Getenv(EnvSpeechKey),
		Region:          os.Getenv(EnvSpeechRegion),
		Language:        getEnv(EnvSpeechLanguage, "en-US"),
		Voice:           os.Getenv(EnvSpeechVoice),
		Trace:           trace.DefaultConfig(),
	}

	var err error
	if cfg.SegmentationSilence, err = getMillis(EnvSegmentationSilence); err != nil {
		return nil, err
	}
	if cfg.InitialSilence, err = getMillis(EnvInitialSilence); err != nil {
		return nil, err
	}

	cfg.Trace.ExporterType = getEnv(EnvTraceExporter, cfg.Trace.ExporterType)
	cfg.Trace.OTLPEndpoint = getEnv(EnvOTLPEndpoint, cfg.Trace.OTLPEndpoint)
	cfg.Trace.Environment = getEnv(EnvEnvironment, cfg.Trace.Environment)
	if v := os.Getenv(EnvSamplingRate); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 || rate > 1 {
			return nil, fmt.Errorf("%s must be a number between 0 and 1, got %q", EnvSamplingRate, v)
		}
		cfg.Trace.SamplingRate = rate
	}
	return cfg, nil
}

// Validate reports missing credentials.
func (c *Config) Validate() error {
	if c.SubscriptionKey == "" || c.Region == "" {
		return fmt.Errorf("speech credentials not set: %s and %s are required", EnvSpeechKey, EnvSpeechRegion)
	}
	return nil
}

// AzureConfig returns the provider settings.
func (c *Config) AzureConfig() asr.AzureConfig {
	return asr.AzureConfig{
		SubscriptionKey: c.SubscriptionKey,
		Region:          c.Region,
		Language:        c.Language,
	}
}

// TTSConfig returns the synthesis provider settings.
func (c *Config) TTSConfig() tts.AzureConfig {
	return tts.AzureConfig{
		SubscriptionKey: c.SubscriptionKey,
		Region:          c.Region,
		Language:        c.Language,
		Voice:           c.Voice,
	}
}

// RecognitionConfig returns the per-recognition settings.
func (c *Config) RecognitionConfig() asr.RecognitionConfig {
	return asr.RecognitionConfig{
		Language:             c.Language,
		EnablePartialResults: true,
		SegmentationSilence:  c.SegmentationSilence,
		InitialSilence:       c.InitialSilence,
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getMillis(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number of milliseconds, got %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
