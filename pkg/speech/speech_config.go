// Package speech provides speech recognizers along with their configuration and the
// event values delivered to recognizer callbacks.
package speech

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// systemLanguage is the value of common.SystemLanguagePropertyName for this binding.
const systemLanguage = "Go"

// SpeechConfig holds the subscription information and recognition settings.
// Apart from its properties it is immutable once created.
type SpeechConfig struct {
	engine     native.Engine
	handle     *common.SmartHandle
	properties *common.PropertyCollection
}

// NewSpeechConfigFromSubscription creates a SpeechConfig from a subscription key and
// a service region. Credentials are not validated locally: the native engine reports
// problems when recognition starts.
func NewSpeechConfigFromSubscription(subscriptionKey, region string) (*SpeechConfig, error) {
	args, err := common.NewCStrings(subscriptionKey, region)
	if err != nil {
		return nil, err
	}
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}

	h, status := engine.SpeechConfigFromSubscription(args[0], args[1])
	if err := common.CheckStatus(status, "SpeechConfig.FromSubscription"); err != nil {
		return nil, err
	}
	handle := common.NewSmartHandle("SpeechConfig", h, engine.SpeechConfigRelease)

	bag, status := engine.SpeechConfigGetPropertyBag(h)
	if err := common.CheckStatus(status, "SpeechConfig.GetPropertyBag"); err != nil {
		handle.Close()
		return nil, err
	}
	properties := common.NewPropertyCollection(engine, bag)

	if err := properties.SetPropertyByString(common.SystemLanguagePropertyName, systemLanguage); err != nil {
		properties.Close()
		handle.Close()
		return nil, err
	}

	return &SpeechConfig{
		engine:     engine,
		handle:     handle,
		properties: properties,
	}, nil
}

// Properties returns the config's property collection.
func (c *SpeechConfig) Properties() *common.PropertyCollection {
	return c.properties
}

// SetProperty sets a property value by id.
func (c *SpeechConfig) SetProperty(id common.PropertyID, value string) error {
	return c.properties.SetProperty(id, value)
}

// GetProperty returns a property value by id, or "" if it is not set.
func (c *SpeechConfig) GetProperty(id common.PropertyID) (string, error) {
	return c.properties.GetProperty(id, "")
}

// SetPropertyByString sets a property value by name.
func (c *SpeechConfig) SetPropertyByString(name, value string) error {
	return c.properties.SetPropertyByString(name, value)
}

// GetPropertyByString returns a property value by name, or "" if it is not set.
func (c *SpeechConfig) GetPropertyByString(name string) (string, error) {
	return c.properties.GetPropertyByString(name, "")
}

// SetSpeechRecognitionLanguage sets the input language, e.g. "en-US" or "zh-CN".
func (c *SpeechConfig) SetSpeechRecognitionLanguage(language string) error {
	return c.properties.SetProperty(common.SpeechServiceConnectionRecoLanguage, language)
}

// SpeechRecognitionLanguage returns the input language.
func (c *SpeechConfig) SpeechRecognitionLanguage() (string, error) {
	return c.GetProperty(common.SpeechServiceConnectionRecoLanguage)
}

// SetSpeechSynthesisLanguage sets the language voices are picked from when no voice
// name is set.
func (c *SpeechConfig) SetSpeechSynthesisLanguage(language string) error {
	return c.properties.SetProperty(common.SpeechServiceConnectionSynthLanguage, language)
}

// SpeechSynthesisLanguage returns the synthesis language.
func (c *SpeechConfig) SpeechSynthesisLanguage() (string, error) {
	return c.GetProperty(common.SpeechServiceConnectionSynthLanguage)
}

// SetSpeechSynthesisVoiceName sets the synthesis voice, e.g. "en-US-JennyNeural".
func (c *SpeechConfig) SetSpeechSynthesisVoiceName(voice string) error {
	return c.properties.SetProperty(common.SpeechServiceConnectionSynthVoice, voice)
}

// SpeechSynthesisVoiceName returns the synthesis voice.
func (c *SpeechConfig) SpeechSynthesisVoiceName() (string, error) {
	return c.GetProperty(common.SpeechServiceConnectionSynthVoice)
}

// SetSpeechSynthesisOutputFormat sets the encoding of synthesized audio.
func (c *SpeechConfig) SetSpeechSynthesisOutputFormat(format common.SpeechSynthesisOutputFormat) error {
	return c.properties.SetProperty(common.SpeechServiceConnectionSynthOutputFormat, string(format))
}

// SpeechSynthesisOutputFormat returns the encoding of synthesized audio.
func (c *SpeechConfig) SpeechSynthesisOutputFormat() (common.SpeechSynthesisOutputFormat, error) {
	v, err := c.GetProperty(common.SpeechServiceConnectionSynthOutputFormat)
	return common.SpeechSynthesisOutputFormat(v), err
}

// SubscriptionKey returns the subscription key the config was created with.
func (c *SpeechConfig) SubscriptionKey() (string, error) {
	return c.GetProperty(common.SpeechServiceConnectionKey)
}

// Region returns the service region.
func (c *SpeechConfig) Region() (string, error) {
	return c.GetProperty(common.SpeechServiceConnectionRegion)
}

// GetHandle returns the raw handle, or native.InvalidHandle once closed or moved into
// a recognizer or synthesizer.
func (c *SpeechConfig) GetHandle() native.Handle {
	return c.handle.Inner()
}

// take moves the config into a new value, leaving the receiver closed.
func (c *SpeechConfig) take() *SpeechConfig {
	return &SpeechConfig{
		engine:     c.engine,
		handle:     c.handle.Transfer(),
		properties: c.properties.Take(),
	}
}

// Close releases the property bag and the native config. A config that was handed to
// NewSpeechRecognizerFromConfig or NewSpeechSynthesizerFromConfig is owned by the new
// object; closing it is a no-op.
func (c *SpeechConfig) Close() {
	c.properties.Close()
	c.handle.Close()
}
