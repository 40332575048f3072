package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/speech"
	"github.com/realtime-ai/speech-sdk-go/pkg/trace"
)

const (
	defaultAzureLanguage = "en-US"
	resultsBufferSize    = 64
	// recognizeChunkSize is 100 ms of 16 kHz 16-bit mono audio.
	recognizeChunkSize = 3200
)

// AzureConfig holds the credentials of an AzureProvider.
type AzureConfig struct {
	SubscriptionKey string
	Region          string
	// Language is used when a RecognitionConfig leaves it empty.
	Language string
}

// AzureProvider recognizes speech with the native speech engine.
type AzureProvider struct {
	config AzureConfig
}

var _ Provider = (*AzureProvider)(nil)

// NewAzureProvider creates a provider. Credentials are only checked for presence;
// the service rejects bad ones when recognition starts.
func NewAzureProvider(config AzureConfig) (*AzureProvider, error) {
	if config.SubscriptionKey == "" || config.Region == "" {
		return nil, &Error{
			Code:    ErrCodeInvalidConfig,
			Message: "azure provider requires a subscription key and a region",
		}
	}
	if config.Language == "" {
		config.Language = defaultAzureLanguage
	}
	return &AzureProvider{config: config}, nil
}

// Name returns the provider name.
func (p *AzureProvider) Name() string {
	return "azure-speech"
}

// SupportsStreaming returns true.
func (p *AzureProvider) SupportsStreaming() bool {
	return true
}

// SupportedLanguages returns an empty slice; the service decides.
func (p *AzureProvider) SupportedLanguages() []string {
	return []string{}
}

// Close releases nothing; every recognizer owns its native objects.
func (p *AzureProvider) Close() error {
	return nil
}

// Recognize transcribes a complete clip and returns the final results joined by
// spaces.
func (p *AzureProvider) Recognize(ctx context.Context, r io.Reader, audioConfig AudioConfig, config RecognitionConfig) (*RecognitionResult, error) {
	config.EnablePartialResults = false
	stream, err := p.startStream(ctx, audioConfig, config)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return stream.transcribe(ctx, r)
}

// StreamingRecognize starts continuous recognition. The returned recognizer is
// closed when ctx is done.
func (p *AzureProvider) StreamingRecognize(ctx context.Context, audioConfig AudioConfig, config RecognitionConfig) (StreamingRecognizer, error) {
	stream, err := p.startStream(ctx, audioConfig, config)
	if err != nil {
		return nil, err
	}
	go func() {
		select {
		case <-ctx.Done():
			stream.Close()
		case <-stream.done:
		}
	}()
	return stream, nil
}

func validateAudioConfig(c AudioConfig) error {
	want := DefaultAudioConfig()
	if c.SampleRate != want.SampleRate || c.Channels != want.Channels || c.BitsPerSample != want.BitsPerSample {
		return &Error{
			Code: ErrCodeInvalidAudio,
			Message: fmt.Sprintf("unsupported audio format %d Hz, %d channel(s), %d bit; want %d Hz mono %d bit",
				c.SampleRate, c.Channels, c.BitsPerSample, want.SampleRate, want.BitsPerSample),
		}
	}
	if c.Encoding != "" && c.Encoding != want.Encoding {
		return &Error{Code: ErrCodeInvalidAudio, Message: "unsupported encoding " + c.Encoding}
	}
	return nil
}

// newSpeechConfig returns the config together with the recognition language it
// was set to.
func (p *AzureProvider) newSpeechConfig(config RecognitionConfig) (*speech.SpeechConfig, string, error) {
	speechConfig, err := speech.NewSpeechConfigFromSubscription(p.config.SubscriptionKey, p.config.Region)
	if err != nil {
		return nil, "", err
	}

	language := config.Language
	if language == "" {
		language = p.config.Language
	}
	settings := map[common.PropertyID]string{
		common.SpeechServiceConnectionRecoLanguage: language,
	}
	if config.ProfanityFilter {
		settings[common.SpeechServiceResponseProfanityFilter] = "true"
	}
	if config.SegmentationSilence > 0 {
		settings[common.SegmentationSilenceTimeoutMs] = strconv.FormatInt(config.SegmentationSilence.Milliseconds(), 10)
	}
	if config.InitialSilence > 0 {
		settings[common.SpeechServiceConnectionInitialSilenceMs] = strconv.FormatInt(config.InitialSilence.Milliseconds(), 10)
	}
	for id, value := range settings {
		if err := speechConfig.SetProperty(id, value); err != nil {
			speechConfig.Close()
			return nil, "", err
		}
	}
	return speechConfig, language, nil
}

func (p *AzureProvider) startStream(ctx context.Context, audioConfig AudioConfig, config RecognitionConfig) (*AzureStreamingRecognizer, error) {
	if err := validateAudioConfig(audioConfig); err != nil {
		return nil, err
	}

	pushStream, err := audio.CreatePushAudioInputStream()
	if err != nil {
		return nil, providerError("failed to create push stream", err)
	}
	input, err := audio.NewAudioConfigFromStreamInput(pushStream)
	if err != nil {
		pushStream.Close()
		return nil, providerError("failed to create audio config", err)
	}
	speechConfig, language, err := p.newSpeechConfig(config)
	if err != nil {
		input.Close()
		pushStream.Close()
		return nil, providerError("failed to create speech config", err)
	}

	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, input)
	if err != nil {
		pushStream.Close()
		return nil, providerError("failed to create recognizer", err)
	}

	spanCtx, span := trace.InstrumentRecognition(context.WithoutCancel(ctx), p.config.Region, language,
		trace.AudioAttrs("push-stream", audioConfig.SampleRate, audioConfig.Channels)...)
	s := &AzureStreamingRecognizer{
		pushStream: pushStream,
		recognizer: recognizer,
		language:   language,
		partials:   config.EnablePartialResults,
		results:    make(chan *RecognitionResult, resultsBufferSize),
		done:       make(chan struct{}),
		span:       span,
	}
	if err := recognizer.RegisterEventHandler(s); err != nil {
		s.release()
		return nil, providerError("failed to connect recognizer events", err)
	}
	if err := recognizer.StartContinuousRecognition(spanCtx); err != nil {
		s.release()
		return nil, providerError("failed to start recognition", err)
	}
	log.Printf("[Azure] Recognition started (language=%s)", language)
	return s, nil
}

func providerError(message string, err error) *Error {
	code := ErrCodeProviderError
	if errors.Is(err, common.ErrInvalidArgument) {
		code = ErrCodeInvalidConfig
	}
	return &Error{Code: code, Message: message, Err: err}
}

// AzureStreamingRecognizer feeds a push stream into a speech recognizer and turns
// recognizer events into RecognitionResults.
type AzureStreamingRecognizer struct {
	speech.NoOpEventHandler

	pushStream *audio.PushAudioInputStream
	recognizer *speech.SpeechRecognizer
	language   string
	partials   bool
	span       oteltrace.Span

	mu      sync.Mutex
	results chan *RecognitionResult
	ended   bool

	errMu sync.Mutex
	err   error

	done      chan struct{}
	closeOnce sync.Once
}

var _ StreamingRecognizer = (*AzureStreamingRecognizer)(nil)

// SendAudio writes 16 kHz 16-bit mono PCM into the recognizer.
func (s *AzureStreamingRecognizer) SendAudio(ctx context.Context, audioData []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return &Error{Code: ErrCodeClosed, Message: "recognizer is closed"}
	default:
	}
	if err := s.pushStream.Write(audioData); err != nil {
		return providerError("failed to write audio", err)
	}
	return nil
}

// EndAudio signals that no more audio follows. Pending results are still
// delivered and the session ends once the engine has drained the stream.
func (s *AzureStreamingRecognizer) EndAudio() error {
	if err := s.pushStream.CloseStream(); err != nil {
		return providerError("failed to end audio stream", err)
	}
	return nil
}

// Results returns a channel that receives recognition results.
func (s *AzureStreamingRecognizer) Results() <-chan *RecognitionResult {
	return s.results
}

// Err returns the error that canceled the session, if any.
func (s *AzureStreamingRecognizer) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close stops recognition and releases the recognizer and the push stream.
func (s *AzureStreamingRecognizer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if stopErr := s.recognizer.StopContinuousRecognition(context.Background()); stopErr != nil {
			err = providerError("failed to stop recognition", stopErr)
		}
		s.release()
		log.Printf("[Azure] Recognizer closed")
	})
	return err
}

func (s *AzureStreamingRecognizer) release() {
	s.recognizer.Close()
	s.pushStream.Close()
	s.finish(nil)
}

// transcribe writes r into the recognizer while a second goroutine collects the
// final results, so a long clip never waits on a full results channel.
func (s *AzureStreamingRecognizer) transcribe(ctx context.Context, r io.Reader) (*RecognitionResult, error) {
	collected := make(chan *RecognitionResult, 1)
	go func() {
		collected <- s.collect()
	}()

	if err := s.writeAll(ctx, r); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-collected:
		if err := s.Err(); err != nil {
			return nil, err
		}
		return result, nil
	}
}

func (s *AzureStreamingRecognizer) writeAll(ctx context.Context, r io.Reader) error {
	buf := make([]byte, recognizeChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if sendErr := s.SendAudio(ctx, buf[:n]); sendErr != nil {
				return sendErr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &Error{Code: ErrCodeInvalidAudio, Message: "failed to read audio", Err: err}
		}
	}
	return s.EndAudio()
}

// collect joins the final results until the results channel is closed.
func (s *AzureStreamingRecognizer) collect() *RecognitionResult {
	var text []string
	combined := &RecognitionResult{IsFinal: true, Language: s.language}
	for result := range s.results {
		if !result.IsFinal {
			continue
		}
		if len(text) == 0 {
			combined.SessionID = result.SessionID
			combined.Offset = result.Offset
		}
		text = append(text, result.Text)
	}
	combined.Text = strings.Join(text, " ")
	combined.Timestamp = time.Now()
	return combined
}

// send delivers a result. Partial results are dropped when the channel is full;
// final results wait for the consumer until the recognizer is closed.
func (s *AzureStreamingRecognizer) send(result *RecognitionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	if !result.IsFinal {
		select {
		case s.results <- result:
		default:
			log.Printf("[Azure] Results channel full, dropping partial result %q", result.Text)
		}
		return
	}
	select {
	case s.results <- result:
	case <-s.done:
		log.Printf("[Azure] Recognizer closed, dropping final result %q", result.Text)
	}
}

// finish closes the results channel once, recording err as the reason.
func (s *AzureStreamingRecognizer) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
	close(s.results)

	trace.RecordError(s.span, err)
	s.span.End()
}

func ticksToDuration(ticks uint64) time.Duration {
	return time.Duration(ticks) * 100 * time.Nanosecond
}

func (s *AzureStreamingRecognizer) OnSessionStarted(e speech.SessionEventArgs) {
	s.span.SetAttributes(trace.SessionAttrs(e.SessionID)...)
	log.Printf("[Azure] Session %s started", e.SessionID)
}

func (s *AzureStreamingRecognizer) OnSessionStopped(e speech.SessionEventArgs) {
	log.Printf("[Azure] Session %s stopped", e.SessionID)
	s.finish(nil)
}

func (s *AzureStreamingRecognizer) OnRecognizing(e speech.SpeechRecognitionEventArgs) {
	if !s.partials || e.Result.Reason != common.RecognizingSpeech {
		return
	}
	s.send(s.result(e, false))
}

func (s *AzureStreamingRecognizer) OnRecognized(e speech.SpeechRecognitionEventArgs) {
	if e.Result.Reason != common.RecognizedSpeech || e.Result.Text == "" {
		return
	}
	trace.AddEvent(s.span, "speech.recognized",
		trace.ResultAttrs(e.SessionID, e.Result.Reason.String(), len(e.Result.Text))...)
	s.send(s.result(e, true))
}

func (s *AzureStreamingRecognizer) OnCanceled(e speech.SpeechRecognitionCanceledEventArgs) {
	s.span.SetAttributes(trace.CancelAttrs(e.Reason.String(), e.ErrorCode.String())...)
	if e.Reason != common.CancellationReasonError {
		log.Printf("[Azure] Recognition canceled: %s", e.Reason)
		s.finish(nil)
		return
	}
	log.Printf("[Azure] Recognition canceled: %s: %s", e.ErrorCode, e.ErrorDetails)
	s.finish(cancellationError(e))
}

func (s *AzureStreamingRecognizer) result(e speech.SpeechRecognitionEventArgs, final bool) *RecognitionResult {
	return &RecognitionResult{
		Text:      e.Result.Text,
		IsFinal:   final,
		Language:  s.language,
		SessionID: e.SessionID,
		Offset:    ticksToDuration(e.Offset),
		Timestamp: time.Now(),
	}
}

func cancellationError(e speech.SpeechRecognitionCanceledEventArgs) *Error {
	code := ErrCodeProviderError
	switch e.ErrorCode {
	case common.AuthenticationFailure, common.Forbidden:
		code = ErrCodeAuthenticationFailed
	case common.TooManyRequests:
		code = ErrCodeQuotaExceeded
	case common.ConnectionFailure, common.ServiceTimeout:
		code = ErrCodeNetworkError
	case common.BadRequest:
		code = ErrCodeInvalidConfig
	}
	message := "recognition canceled: " + e.ErrorCode.String()
	if e.ErrorDetails != "" {
		message += ": " + e.ErrorDetails
	}
	return &Error{Code: code, Message: message}
}
