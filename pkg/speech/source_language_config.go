package speech

import (
	"runtime"
	"strings"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// SourceLanguageConfig names one candidate language for language detection,
// optionally with the endpoint of a custom model for it.
type SourceLanguageConfig struct {
	engine native.Engine
	handle *common.SmartHandle
}

// NewSourceLanguageConfigFromLanguage creates a SourceLanguageConfig using the base
// model for language.
func NewSourceLanguageConfigFromLanguage(language string) (*SourceLanguageConfig, error) {
	return newSourceLanguageConfig(language, "")
}

// NewSourceLanguageConfigFromLanguageAndEndpointID creates a SourceLanguageConfig
// using the custom model deployed at endpointID.
func NewSourceLanguageConfigFromLanguageAndEndpointID(language, endpointID string) (*SourceLanguageConfig, error) {
	if endpointID == "" {
		return nil, common.InvalidArgumentError("SourceLanguageConfig.FromLanguageAndEndpointID", "empty endpoint id")
	}
	return newSourceLanguageConfig(language, endpointID)
}

func newSourceLanguageConfig(language, endpointID string) (*SourceLanguageConfig, error) {
	if language == "" {
		return nil, common.InvalidArgumentError("SourceLanguageConfig.FromLanguage", "empty language")
	}
	args, err := common.NewCStrings(language, endpointID)
	if err != nil {
		return nil, err
	}
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.SourceLanguageConfigFromLanguage(args[0], args[1])
	if err := common.CheckStatus(status, "SourceLanguageConfig.FromLanguage"); err != nil {
		return nil, err
	}
	return &SourceLanguageConfig{
		engine: engine,
		handle: common.NewSmartHandle("SourceLanguageConfig", h, engine.SourceLanguageConfigRelease),
	}, nil
}

// Close releases the native config.
func (c *SourceLanguageConfig) Close() {
	c.handle.Close()
}

// AutoDetectSourceLanguageConfig lists the languages a recognizer chooses from. Pass
// it to NewSpeechRecognizerFromConfig with WithAutoDetectSourceLanguageConfig.
type AutoDetectSourceLanguageConfig struct {
	engine native.Engine
	handle *common.SmartHandle
}

// NewAutoDetectSourceLanguageConfigFromLanguages creates a config choosing among
// languages, e.g. []string{"en-US", "de-DE"}.
func NewAutoDetectSourceLanguageConfigFromLanguages(languages []string) (*AutoDetectSourceLanguageConfig, error) {
	const op = "AutoDetectSourceLanguageConfig.FromLanguages"
	if len(languages) == 0 {
		return nil, common.InvalidArgumentError(op, "no languages")
	}
	for _, lang := range languages {
		if lang == "" || strings.Contains(lang, ",") {
			return nil, common.InvalidArgumentError(op, "invalid language "+strings.TrimSpace(lang))
		}
	}
	list, err := common.NewCString(strings.Join(languages, ","))
	if err != nil {
		return nil, err
	}
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.AutoDetectSourceLanguageConfigFromLanguages(list)
	if err := common.CheckStatus(status, op); err != nil {
		return nil, err
	}
	return newAutoDetectConfig(engine, h), nil
}

// NewAutoDetectSourceLanguageConfigFromLanguageConfigs creates a config choosing among
// configs. The configs stay owned by the caller.
func NewAutoDetectSourceLanguageConfigFromLanguageConfigs(configs []*SourceLanguageConfig) (*AutoDetectSourceLanguageConfig, error) {
	const op = "AutoDetectSourceLanguageConfig.FromLanguageConfigs"
	if len(configs) == 0 {
		return nil, common.InvalidArgumentError(op, "no source language configs")
	}
	var engine native.Engine
	handles := make([]native.Handle, 0, len(configs))
	for _, c := range configs {
		if c == nil {
			return nil, common.InvalidArgumentError(op, "nil source language config")
		}
		if engine == nil {
			engine = c.engine
		}
		if c.engine != engine {
			return nil, common.InvalidArgumentError(op, "configs belong to different engines")
		}
		h, err := c.handle.Get()
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	h, status := engine.AutoDetectSourceLanguageConfigFromSourceLanguageConfigs(handles)
	runtime.KeepAlive(configs)
	if err := common.CheckStatus(status, op); err != nil {
		return nil, err
	}
	return newAutoDetectConfig(engine, h), nil
}

func newAutoDetectConfig(engine native.Engine, h native.Handle) *AutoDetectSourceLanguageConfig {
	return &AutoDetectSourceLanguageConfig{
		engine: engine,
		handle: common.NewSmartHandle("AutoDetectSourceLanguageConfig", h, engine.AutoDetectSourceLanguageConfigRelease),
	}
}

// Close releases the native config. Recognizers created from it are unaffected.
func (c *AutoDetectSourceLanguageConfig) Close() {
	c.handle.Close()
}

// AutoDetectSourceLanguageResult is the language detected for a recognition result.
type AutoDetectSourceLanguageResult struct {
	Language string
}

// NewAutoDetectSourceLanguageResult reads the detected language of result. It must be
// called before the result is closed, i.e. inside the event handler. The language is
// empty for recognizers created without language detection.
func NewAutoDetectSourceLanguageResult(result *SpeechRecognitionResult) (*AutoDetectSourceLanguageResult, error) {
	if result == nil || result.handle == nil {
		return nil, common.InvalidArgumentError("AutoDetectSourceLanguageResult", "nil result")
	}
	var language string
	err := result.handle.Use(func(h native.Handle) error {
		bag, status := result.engine.ResultGetPropertyBag(h)
		if err := common.CheckStatus(status, "AutoDetectSourceLanguageResult.Properties"); err != nil {
			return err
		}
		props := common.NewPropertyCollection(result.engine, bag)
		defer props.Close()

		var err error
		language, err = props.GetProperty(common.SpeechServiceConnectionAutoDetectSourceLanguageResult, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &AutoDetectSourceLanguageResult{Language: language}, nil
}
