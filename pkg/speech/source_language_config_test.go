package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

func newAutoDetectRecognizer(t *testing.T, detect *AutoDetectSourceLanguageConfig) *SpeechRecognizer {
	t.Helper()
	config, err := NewSpeechConfigFromSubscription("key", "westus")
	require.NoError(t, err)
	audioConfig, err := audio.NewAudioConfigFromDefaultMicrophoneInput()
	require.NoError(t, err)

	recognizer, err := NewSpeechRecognizerFromConfig(config, audioConfig, WithAutoDetectSourceLanguageConfig(detect))
	require.NoError(t, err)
	t.Cleanup(recognizer.Close)
	return recognizer
}

func TestAutoDetectSourceLanguageConfig_FromLanguages(t *testing.T) {
	engine := useMockEngine(t)

	detect, err := NewAutoDetectSourceLanguageConfigFromLanguages([]string{"en-US", "de-DE", "zh-CN"})
	require.NoError(t, err)
	recognizer := newAutoDetectRecognizer(t, detect)
	detect.Close()

	assert.Contains(t, engine.Calls(), "RecognizerCreateFromAutoDetectConfig")
	assert.NotContains(t, engine.Calls(), "RecognizerCreateFromConfig")

	candidates, err := recognizer.Properties().GetProperty(common.SpeechServiceConnectionAutoDetectSourceLanguages, "")
	require.NoError(t, err)
	assert.Equal(t, "en-US,de-DE,zh-CN", candidates)

	var detected []string
	require.NoError(t, recognizer.Recognized(func(e SpeechRecognitionEventArgs) {
		lang, err := NewAutoDetectSourceLanguageResult(&e.Result)
		require.NoError(t, err)
		detected = append(detected, lang.Language)
	}))
	engine.FireEvent(recognizer.GetHandle(), native.EventRecognized, native.MockEvent{
		Reason:   int(common.RecognizedSpeech),
		Text:     "guten Morgen",
		Language: "de-DE",
	})
	engine.FireEvent(recognizer.GetHandle(), native.EventRecognized, native.MockEvent{
		Reason:   int(common.RecognizedSpeech),
		Text:     "good morning",
		Language: "en-US",
	})
	assert.Equal(t, []string{"de-DE", "en-US"}, detected)

	recognizer.Close()
	assertNoLeaks(t, engine)
}

func TestAutoDetectSourceLanguageConfig_InvalidLanguages(t *testing.T) {
	engine := useMockEngine(t)

	tests := []struct {
		name      string
		languages []string
	}{
		{"nil", nil},
		{"empty entry", []string{"en-US", ""}},
		{"comma in entry", []string{"en-US,de-DE"}},
		{"nul byte", []string{"en-\x00US"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAutoDetectSourceLanguageConfigFromLanguages(tt.languages)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}
	assert.Zero(t, engine.Created(native.KindAutoDetectConfig))
}

func TestAutoDetectSourceLanguageConfig_FromLanguageConfigs(t *testing.T) {
	engine := useMockEngine(t)

	english, err := NewSourceLanguageConfigFromLanguage("en-US")
	require.NoError(t, err)
	defer english.Close()
	custom, err := NewSourceLanguageConfigFromLanguageAndEndpointID("fr-FR", "b7f1c2d4-endpoint")
	require.NoError(t, err)
	defer custom.Close()

	detect, err := NewAutoDetectSourceLanguageConfigFromLanguageConfigs([]*SourceLanguageConfig{english, custom})
	require.NoError(t, err)
	defer detect.Close()

	recognizer := newAutoDetectRecognizer(t, detect)
	candidates, err := recognizer.Properties().GetProperty(common.SpeechServiceConnectionAutoDetectSourceLanguages, "")
	require.NoError(t, err)
	assert.Equal(t, "en-US,fr-FR", candidates)

	_, err = NewAutoDetectSourceLanguageConfigFromLanguageConfigs(nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = NewAutoDetectSourceLanguageConfigFromLanguageConfigs([]*SourceLanguageConfig{english, nil})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	english.Close()
	_, err = NewAutoDetectSourceLanguageConfigFromLanguageConfigs([]*SourceLanguageConfig{english})
	assert.ErrorIs(t, err, common.ErrAlreadyReleased)

	recognizer.Close()
	custom.Close()
	detect.Close()
	assertNoLeaks(t, engine)
}

func TestSourceLanguageConfig_Invalid(t *testing.T) {
	useMockEngine(t)

	_, err := NewSourceLanguageConfigFromLanguage("")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = NewSourceLanguageConfigFromLanguageAndEndpointID("en-US", "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestAutoDetectSourceLanguageResult_WithoutDetection(t *testing.T) {
	engine, recognizer := newTestRecognizer(t)

	language := "unset"
	require.NoError(t, recognizer.Recognized(func(e SpeechRecognitionEventArgs) {
		lang, err := NewAutoDetectSourceLanguageResult(&e.Result)
		require.NoError(t, err)
		language = lang.Language
	}))
	engine.FireEvent(recognizer.GetHandle(), native.EventRecognized, native.MockEvent{Text: "hi"})

	assert.Empty(t, language)

	_, err := NewAutoDetectSourceLanguageResult(nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestSpeechRecognizer_KeywordRecognition(t *testing.T) {
	engine, recognizer := newTestRecognizer(t)

	model, err := NewKeywordRecognitionModelFromFile("computer.table")
	require.NoError(t, err)
	defer model.Close()

	require.NoError(t, recognizer.StartKeywordRecognition(context.Background(), model))
	assert.True(t, engine.KeywordActive(recognizer.GetHandle()))

	err = recognizer.StartContinuousRecognition(context.Background())
	assert.Equal(t, native.StatusAlreadyInProgress, common.StatusOf(err))

	var keywords []string
	require.NoError(t, recognizer.Recognized(func(e SpeechRecognitionEventArgs) {
		if e.Result.Reason == common.RecognizedKeyword {
			keywords = append(keywords, e.Result.Text)
		}
	}))
	engine.FireEvent(recognizer.GetHandle(), native.EventRecognized, native.MockEvent{
		Reason: int(common.RecognizedKeyword),
		Text:   "computer",
	})
	assert.Equal(t, []string{"computer"}, keywords)

	require.NoError(t, <-recognizer.StopKeywordRecognitionAsync())
	assert.False(t, engine.KeywordActive(recognizer.GetHandle()))

	require.NoError(t, <-recognizer.StartKeywordRecognitionAsync(model))
	require.NoError(t, recognizer.StopKeywordRecognition(context.Background()))

	model.Close()
	recognizer.Close()
	assertNoLeaks(t, engine)
}

func TestSpeechRecognizer_KeywordRecognitionInvalid(t *testing.T) {
	engine, recognizer := newTestRecognizer(t)

	err := recognizer.StartKeywordRecognition(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = NewKeywordRecognitionModelFromFile("")
	assert.Equal(t, native.StatusFileOpenFailed, common.StatusOf(err))

	model, err := NewKeywordRecognitionModelFromFile("computer.table")
	require.NoError(t, err)
	model.Close()
	err = recognizer.StartKeywordRecognition(context.Background(), model)
	assert.ErrorIs(t, err, common.ErrAlreadyReleased)
	assert.False(t, engine.KeywordActive(recognizer.GetHandle()))
}
