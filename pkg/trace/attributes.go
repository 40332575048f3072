package trace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttrSessionID     = "speech.session_id"
	AttrRegion        = "speech.region"
	AttrLanguage      = "speech.language"
	AttrResultReason  = "speech.result.reason"
	AttrResultLength  = "speech.result.text_length"
	AttrCancelReason  = "speech.cancel.reason"
	AttrCancelCode    = "speech.cancel.error_code"
	AttrNativeStatus  = "native.status"
	AttrErrorCode     = "speech.error_code"
	AttrVoice         = "speech.synthesis.voice"
	AttrTextLength    = "speech.synthesis.text_length"
	AttrAudioBytes    = "speech.synthesis.audio_bytes"
	AttrSSML          = "speech.synthesis.ssml"
	AttrAudioSource   = "audio.source"
	AttrAudioSampleHz = "audio.sample_rate"
	AttrAudioChannels = "audio.channels"
)

// SessionAttrs creates attributes for a recognition session.
func SessionAttrs(sessionID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
}

// RecognizerAttrs describes the recognizer a span belongs to.
func RecognizerAttrs(region, language string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRegion, region),
		attribute.String(AttrLanguage, language),
	}
}

// ResultAttrs describes a recognition result without recording its text.
func ResultAttrs(sessionID, reason string, textLength int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
		attribute.String(AttrResultReason, reason),
		attribute.Int(AttrResultLength, textLength),
	}
}

// CancelAttrs describes why a recognition was canceled.
func CancelAttrs(reason, errorCode string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCancelReason, reason),
		attribute.String(AttrCancelCode, errorCode),
	}
}

// AudioAttrs describes an audio source.
func AudioAttrs(source string, sampleRate, channels int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAudioSource, source),
		attribute.Int(AttrAudioSampleHz, sampleRate),
		attribute.Int(AttrAudioChannels, channels),
	}
}

// InstrumentRecognition starts the span covering a whole recognition run.
func InstrumentRecognition(ctx context.Context, region, language string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(RecognizerAttrs(region, language), attrs...)
	return StartSpan(ctx, "speech.recognition", trace.WithAttributes(attrs...))
}

// SynthesisAttrs describes the input of a synthesis without recording its text.
func SynthesisAttrs(textLength int, ssml bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrTextLength, textLength),
		attribute.Bool(AttrSSML, ssml),
	}
}

// InstrumentSynthesis starts the span covering one synthesis request.
func InstrumentSynthesis(ctx context.Context, region, voice string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String(AttrRegion, region),
		attribute.String(AttrVoice, voice),
	}, attrs...)
	return StartSpan(ctx, "speech.synthesis", trace.WithAttributes(attrs...))
}
