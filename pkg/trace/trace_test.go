package trace

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		provider.Shutdown(context.Background())
	})
	return recorder
}

func TestWithSpan_RecordsError(t *testing.T) {
	recorder := useRecorder(t)

	want := errors.New("start failed")
	err := WithSpan(context.Background(), "speech.recognizer.start", func(ctx context.Context) error {
		assert.NotEmpty(t, TraceID(ctx))
		return want
	})
	assert.ErrorIs(t, err, want)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "speech.recognizer.start", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestWithSpan_Success(t *testing.T) {
	recorder := useRecorder(t)

	require.NoError(t, WithSpan(context.Background(), "ok", func(context.Context) error { return nil }))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestInstrumentRecognition_Attributes(t *testing.T) {
	recorder := useRecorder(t)

	_, span := InstrumentRecognition(context.Background(), "westus", "en-US",
		AudioAttrs("push-stream", 16000, 1)...)
	span.SetAttributes(CancelAttrs("Error", "ConnectionFailure")...)
	AddEvent(span, "speech.recognized", ResultAttrs("session-1", "RecognizedSpeech", 5)...)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "westus", attrs[AttrRegion])
	assert.Equal(t, "en-US", attrs[AttrLanguage])
	assert.Equal(t, "push-stream", attrs[AttrAudioSource])
	assert.Equal(t, "16000", attrs[AttrAudioSampleHz])
	assert.Equal(t, "ConnectionFailure", attrs[AttrCancelCode])

	require.Len(t, spans[0].Events(), 1)
	event := spans[0].Events()[0]
	assert.Equal(t, "speech.recognized", event.Name)
	assert.Contains(t, event.Attributes, attribute.Int(AttrResultLength, 5))
}

func TestRecordError_BindingError(t *testing.T) {
	recorder := useRecorder(t)

	err := WithSpan(context.Background(), "speech.recognizer.start", func(ctx context.Context) error {
		return common.CheckStatus(native.StatusInvalidState, "SpeechRecognizer.StartContinuousRecognition")
	})
	require.ErrorIs(t, err, common.ErrNative)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrErrorCode, "native"))
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrNativeStatus, native.StatusInvalidState.String()))
}

func TestInstrumentSynthesis_Attributes(t *testing.T) {
	recorder := useRecorder(t)

	_, span := InstrumentSynthesis(context.Background(), "westus", "en-US-JennyNeural", SynthesisAttrs(11, true)...)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "speech.synthesis", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrVoice, "en-US-JennyNeural"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int(AttrTextLength, 11))
	assert.Contains(t, spans[0].Attributes(), attribute.Bool(AttrSSML, true))
}

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	Logf(context.Background(), "stop failed: %v", "boom")
	assert.Contains(t, buf.String(), "stop failed: boom")
	assert.NotContains(t, buf.String(), "trace_id")

	useRecorder(t)
	ctx, span := StartSpan(context.Background(), "log")
	defer span.End()
	buf.Reset()
	Logf(ctx, "hello")
	assert.Contains(t, buf.String(), "[trace_id="+TraceID(ctx)+"] hello")
}

func TestInitializeAndShutdown(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	cfg := DefaultConfig()
	require.NoError(t, Initialize(ctx, cfg))
	assert.Error(t, Initialize(ctx, cfg), "second Initialize must fail")

	_, span := StartSpan(ctx, "after-init")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, Shutdown(ctx))
	require.NoError(t, Shutdown(ctx))
}

func TestInitialize_StdoutExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig()
	cfg.ExporterType = ExporterStdout
	cfg.Engine = "mock"
	require.NoError(t, Initialize(context.Background(), cfg))
	require.NoError(t, Shutdown(context.Background()))
}

func TestInitialize_UnknownExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExporterType = "jaeger"
	assert.ErrorContains(t, Initialize(context.Background(), cfg), "unsupported exporter type")
}
