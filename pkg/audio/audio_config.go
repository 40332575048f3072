// Package audio wraps the native audio objects: audio configs that tell a recognizer
// where its input comes from, push streams the application writes into, and pull
// streams the application reads from.
package audio

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// AudioConfig selects the audio input of a recognizer or the audio output of a
// synthesizer.
type AudioConfig struct {
	engine native.Engine
	handle *common.SmartHandle
}

func newAudioConfig(engine native.Engine, h native.Handle) *AudioConfig {
	return &AudioConfig{
		engine: engine,
		handle: common.NewSmartHandle("AudioConfig", h, engine.AudioConfigRelease),
	}
}

// NewAudioConfigFromDefaultMicrophoneInput creates an AudioConfig reading from the
// system's default microphone.
func NewAudioConfigFromDefaultMicrophoneInput() (*AudioConfig, error) {
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.AudioConfigFromDefaultMicrophone()
	if err := common.CheckStatus(status, "AudioConfig.FromDefaultMicrophoneInput"); err != nil {
		return nil, err
	}
	return newAudioConfig(engine, h), nil
}

// NewAudioConfigFromWavFileInput creates an AudioConfig reading from a WAV file.
func NewAudioConfigFromWavFileInput(filename string) (*AudioConfig, error) {
	name, err := common.NewCString(filename)
	if err != nil {
		return nil, err
	}
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.AudioConfigFromWavFile(name)
	if err := common.CheckStatus(status, "AudioConfig.FromWavFileInput"); err != nil {
		return nil, err
	}
	return newAudioConfig(engine, h), nil
}

// NewAudioConfigFromStreamInput creates an AudioConfig reading from a push stream.
// The stream stays owned by the caller and must outlive any recognizer using it.
func NewAudioConfigFromStreamInput(stream *PushAudioInputStream) (*AudioConfig, error) {
	var h native.Handle
	err := stream.handle.Use(func(sh native.Handle) error {
		var status native.Status
		h, status = stream.engine.AudioConfigFromStream(sh)
		return common.CheckStatus(status, "AudioConfig.FromStreamInput")
	})
	if err != nil {
		return nil, err
	}
	return newAudioConfig(stream.engine, h), nil
}

// NewAudioConfigFromStreamOutput creates an AudioConfig that directs synthesized
// audio into a pull stream. The stream stays owned by the caller; it reaches its end
// once the synthesizer using the config is closed.
func NewAudioConfigFromStreamOutput(stream *PullAudioOutputStream) (*AudioConfig, error) {
	if stream == nil {
		return nil, common.InvalidArgumentError("AudioConfig.FromStreamOutput", "nil stream")
	}
	var h native.Handle
	err := stream.handle.Use(func(sh native.Handle) error {
		var status native.Status
		h, status = stream.engine.AudioConfigFromStreamOutput(sh)
		return common.CheckStatus(status, "AudioConfig.FromStreamOutput")
	})
	if err != nil {
		return nil, err
	}
	return newAudioConfig(stream.engine, h), nil
}

// Engine returns the native engine the config was created on.
func (c *AudioConfig) Engine() native.Engine {
	return c.engine
}

// GetHandle returns the raw handle, or native.InvalidHandle once closed or moved.
func (c *AudioConfig) GetHandle() native.Handle {
	return c.handle.Inner()
}

// Take moves the config into a new value. The receiver behaves as closed afterwards;
// closing it again does not touch the native object.
func (c *AudioConfig) Take() *AudioConfig {
	return &AudioConfig{engine: c.engine, handle: c.handle.Transfer()}
}

// Close releases the native audio config.
func (c *AudioConfig) Close() {
	c.handle.Close()
}
