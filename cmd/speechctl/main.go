// Command speechctl transcribes speech from the default microphone, a WAV file or
// audio captured through the local sound card, and speaks text through the sound card.
//
// Usage:
//
//	speechctl -source mic
//	speechctl -source mic -detect en-US,de-DE
//	speechctl -source wav -file sample.wav
//	speechctl -source capture -partials
//	speechctl -speak "Hello there" -voice en-US-AvaNeural
//
// Credentials come from AZURE_SPEECH_KEY and AZURE_SPEECH_REGION, optionally loaded
// from a .env file. The binary needs the native engine: build with -tags speechsdk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/realtime-ai/speech-sdk-go/pkg/asr"
	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/config"
	"github.com/realtime-ai/speech-sdk-go/pkg/device"
	"github.com/realtime-ai/speech-sdk-go/pkg/speech"
	"github.com/realtime-ai/speech-sdk-go/pkg/trace"
	"github.com/realtime-ai/speech-sdk-go/pkg/tts"
	"go.opentelemetry.io/otel/attribute"
)

func main() {
	source := flag.String("source", "mic", "audio source: mic, wav or capture")
	file := flag.String("file", "", "WAV file for -source wav")
	language := flag.String("language", "", "recognition language, overrides AZURE_SPEECH_LANGUAGE")
	envFile := flag.String("env", "", "load settings from this .env file instead of ./.env")
	partials := flag.Bool("partials", false, "print intermediate results")
	detect := flag.String("detect", "", "comma-separated candidate languages to detect, for -source mic or wav")
	text := flag.String("speak", "", "synthesize this text and play it instead of recognizing")
	ssml := flag.Bool("ssml", false, "treat -speak as an SSML document")
	voice := flag.String("voice", "", "synthesis voice, overrides AZURE_SPEECH_VOICE")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *language != "" {
		cfg.Language = *language
	}
	if *voice != "" {
		cfg.Voice = *voice
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := trace.Initialize(ctx, cfg.Trace); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracing: %v", err)
		}
	}()

	if *text != "" {
		err = speak(ctx, cfg, &tts.SynthesizeRequest{Text: *text, SSML: *ssml})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Synthesis failed: %v", err)
		}
		return
	}

	var languages []string
	if *detect != "" {
		languages = strings.Split(*detect, ",")
	}
	switch *source {
	case "mic":
		err = recognizeFrom(ctx, cfg, *source, *partials, languages, audio.NewAudioConfigFromDefaultMicrophoneInput)
	case "wav":
		if *file == "" {
			log.Fatal("-file is required for -source wav")
		}
		err = recognizeFrom(ctx, cfg, *source, *partials, languages, func() (*audio.AudioConfig, error) {
			return audio.NewAudioConfigFromWavFileInput(*file)
		})
	case "capture":
		err = recognizeCapture(ctx, cfg, *partials)
	default:
		log.Fatalf("unknown source %q", *source)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Recognition failed: %v", err)
	}
}

// transcriptPrinter prints recognizer events and signals the end of the session.
type transcriptPrinter struct {
	speech.NoOpEventHandler
	partials bool
	detect   bool
	done     chan error
}

func (p *transcriptPrinter) OnSessionStarted(e speech.SessionEventArgs) {
	log.Printf("Session %s started", e.SessionID)
}

func (p *transcriptPrinter) OnSessionStopped(e speech.SessionEventArgs) {
	log.Printf("Session %s stopped", e.SessionID)
	p.finish(nil)
}

func (p *transcriptPrinter) OnRecognizing(e speech.SpeechRecognitionEventArgs) {
	if p.partials {
		fmt.Printf("... %s\n", e.Result.Text)
	}
}

func (p *transcriptPrinter) OnRecognized(e speech.SpeechRecognitionEventArgs) {
	if e.Result.Text == "" {
		return
	}
	if p.detect {
		if lang, err := speech.NewAutoDetectSourceLanguageResult(&e.Result); err == nil && lang.Language != "" {
			fmt.Printf("[%s] %s\n", lang.Language, e.Result.Text)
			return
		}
	}
	fmt.Println(e.Result.Text)
}

func (p *transcriptPrinter) OnCanceled(e speech.SpeechRecognitionCanceledEventArgs) {
	if e.Reason == common.CancellationReasonError {
		p.finish(fmt.Errorf("canceled: %s: %s", e.ErrorCode, e.ErrorDetails))
		return
	}
	p.finish(nil)
}

func (p *transcriptPrinter) finish(err error) {
	select {
	case p.done <- err:
	default:
	}
}

// recognizeFrom runs continuous recognition on the audio config returned by open
// until the session ends or ctx is canceled. With languages set the recognizer
// detects which of them is spoken.
func recognizeFrom(ctx context.Context, cfg *config.Config, source string, partials bool, languages []string, open func() (*audio.AudioConfig, error)) error {
	ctx, span := trace.InstrumentRecognition(ctx, cfg.Region, cfg.Language,
		attribute.String(trace.AttrAudioSource, source))
	defer span.End()

	speechConfig, err := speech.NewSpeechConfigFromSubscription(cfg.SubscriptionKey, cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to create speech config: %w", err)
	}
	if err := speechConfig.SetSpeechRecognitionLanguage(cfg.Language); err != nil {
		speechConfig.Close()
		return err
	}

	audioConfig, err := open()
	if err != nil {
		speechConfig.Close()
		return fmt.Errorf("failed to open audio: %w", err)
	}

	var opts []speech.RecognizerOption
	if len(languages) > 0 {
		detect, err := speech.NewAutoDetectSourceLanguageConfigFromLanguages(languages)
		if err != nil {
			speechConfig.Close()
			audioConfig.Close()
			return fmt.Errorf("failed to create language detection config: %w", err)
		}
		defer detect.Close()
		opts = append(opts, speech.WithAutoDetectSourceLanguageConfig(detect))
	}

	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, audioConfig, opts...)
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}
	defer recognizer.Close()

	printer := &transcriptPrinter{partials: partials, detect: len(languages) > 0, done: make(chan error, 1)}
	if err := recognizer.RegisterEventHandler(printer); err != nil {
		return err
	}
	if err := recognizer.StartContinuousRecognition(ctx); err != nil {
		trace.RecordError(span, err)
		return err
	}

	select {
	case err = <-printer.done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if stopErr := recognizer.StopContinuousRecognition(context.Background()); stopErr != nil {
		trace.Logf(ctx, "Failed to stop recognition: %v", stopErr)
	}
	trace.RecordError(span, err)
	return err
}

// streamSink adapts a streaming recognizer to device.AudioSink.
type streamSink struct {
	ctx    context.Context
	stream asr.StreamingRecognizer
}

func (s streamSink) Write(data []byte) error {
	return s.stream.SendAudio(s.ctx, data)
}

// recognizeCapture records the sound card and streams it through the asr provider.
func recognizeCapture(ctx context.Context, cfg *config.Config, partials bool) error {
	provider, err := asr.NewAzureProvider(cfg.AzureConfig())
	if err != nil {
		return err
	}
	defer provider.Close()

	recoConfig := cfg.RecognitionConfig()
	recoConfig.EnablePartialResults = partials
	stream, err := provider.StreamingRecognize(ctx, asr.DefaultAudioConfig(), recoConfig)
	if err != nil {
		return err
	}
	defer stream.Close()

	audioCtx, err := device.NewContext()
	if err != nil {
		return err
	}
	defer audioCtx.Close()

	capture, err := device.StartCapture(audioCtx, streamSink{ctx: ctx, stream: stream})
	if err != nil {
		return err
	}
	defer capture.Close()

	fmt.Fprintln(os.Stderr, "Listening. Press Ctrl+C to stop.")
	for {
		select {
		case result, ok := <-stream.Results():
			if !ok {
				return stream.Err()
			}
			if result.IsFinal {
				fmt.Println(result.Text)
			} else {
				fmt.Printf("... %s\n", result.Text)
			}
		case err := <-capture.Errors():
			if err != nil {
				return fmt.Errorf("audio capture: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// speak synthesizes req into a pull stream and plays it on the default output device.
func speak(ctx context.Context, cfg *config.Config, req *tts.SynthesizeRequest) error {
	provider, err := tts.NewAzureProvider(cfg.TTSConfig())
	if err != nil {
		return err
	}

	audioCtx, err := device.NewContext()
	if err != nil {
		return err
	}
	defer audioCtx.Close()

	stream, synthErr, err := provider.SynthesizeToStream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	playback, err := device.StartPlayback(audioCtx, stream)
	if err != nil {
		return err
	}
	defer playback.Close()

	select {
	case <-playback.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := <-synthErr; err != nil {
		return err
	}
	return playback.Err()
}
