// Package device connects the local sound card to speech streams: microphone capture
// feeding an audio sink, and speaker playback drained from an audio source.
package device

import (
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

const (
	CaptureSampleRate = 16000
	CaptureChannels   = 1

	PlaybackSampleRate = 16000
	PlaybackChannels   = 1

	bytesPerSample = 2
	periodMs       = 20
)

// AudioSink receives captured PCM. *audio.PushAudioInputStream implements it.
type AudioSink interface {
	Write(data []byte) error
}

// AudioSource produces PCM to play. An empty read means end of audio.
// *audio.PullAudioOutputStream implements it.
type AudioSource interface {
	Read(maxSize uint32) ([]byte, error)
}

// audioDevice is the part of *malgo.Device that capture and playback drive.
type audioDevice interface {
	Stop() error
	Uninit()
}

// Context owns the malgo audio context shared by capture and playback devices.
type Context struct {
	ctx       *malgo.AllocatedContext
	closeOnce sync.Once
	closeErr  error
}

// NewContext initializes the platform audio backend.
func NewContext() (*Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Printf("[malgo] %s", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %v", err)
	}
	return &Context{ctx: ctx}, nil
}

// Close releases the audio context. Devices must be closed first. Only the first
// call does anything; later calls return its error.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		if c.ctx == nil {
			return
		}
		if err := c.ctx.Uninit(); err != nil {
			c.closeErr = fmt.Errorf("failed to uninit audio context: %v", err)
			return
		}
		c.ctx.Free()
	})
	return c.closeErr
}

func deviceConfig(kind malgo.DeviceType, sampleRate, channels int) malgo.DeviceConfig {
	cfg := malgo.DefaultDeviceConfig(kind)
	cfg.PeriodSizeInMilliseconds = periodMs
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1
	switch kind {
	case malgo.Capture:
		cfg.Capture.Format = malgo.FormatS16
		cfg.Capture.Channels = uint32(channels)
	case malgo.Playback:
		cfg.Playback.Format = malgo.FormatS16
		cfg.Playback.Channels = uint32(channels)
	}
	return cfg
}

func startDevice(c *Context, cfg malgo.DeviceConfig, onData malgo.DataProc) (*malgo.Device, error) {
	dev, err := malgo.InitDevice(c.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize device: %v", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return nil, fmt.Errorf("failed to start device: %v", err)
	}
	return dev, nil
}
