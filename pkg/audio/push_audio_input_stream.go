package audio

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// PushAudioInputStream is an audio source the application writes into. The default
// format expected by the engine is 16 kHz, 16-bit, mono PCM.
type PushAudioInputStream struct {
	engine native.Engine
	handle *common.SmartHandle
}

// CreatePushAudioInputStream allocates a native push stream.
func CreatePushAudioInputStream() (*PushAudioInputStream, error) {
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.PushAudioInputStreamCreate()
	if err := common.CheckStatus(status, "PushAudioInputStream.Create"); err != nil {
		return nil, err
	}
	return &PushAudioInputStream{
		engine: engine,
		handle: common.NewSmartHandle("PushAudioInputStream", h, engine.AudioStreamRelease),
	}, nil
}

// Write hands data to the engine. The engine copies it; data may be reused afterwards.
func (s *PushAudioInputStream) Write(data []byte) error {
	return s.handle.Use(func(h native.Handle) error {
		return common.CheckStatus(s.engine.PushAudioInputStreamWrite(h, data), "PushAudioInputStream.Write")
	})
}

// CloseStream signals end of stream. The native object stays alive until Close.
func (s *PushAudioInputStream) CloseStream() error {
	return s.handle.Use(func(h native.Handle) error {
		return common.CheckStatus(s.engine.PushAudioInputStreamClose(h), "PushAudioInputStream.CloseStream")
	})
}

// GetHandle returns the raw handle, or native.InvalidHandle once closed.
func (s *PushAudioInputStream) GetHandle() native.Handle {
	return s.handle.Inner()
}

// Close releases the native stream.
func (s *PushAudioInputStream) Close() {
	s.handle.Close()
}
