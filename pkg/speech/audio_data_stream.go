package speech

import (
	"io"
	"math"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// AudioDataStream reads the audio of a completed synthesis result. It implements
// io.ReadCloser and never blocks.
type AudioDataStream struct {
	engine native.Engine
	handle *common.SmartHandle
}

// NewAudioDataStreamFromSpeechSynthesisResult opens the audio of result. The stream
// holds its own reference: result may be closed while the stream is read.
func NewAudioDataStreamFromSpeechSynthesisResult(result *SpeechSynthesisResult) (*AudioDataStream, error) {
	if result == nil || result.handle == nil {
		return nil, common.InvalidArgumentError("AudioDataStream.FromSpeechSynthesisResult", "nil result")
	}
	var h native.Handle
	err := result.handle.Use(func(rh native.Handle) error {
		var status native.Status
		h, status = result.engine.AudioDataStreamFromResult(rh)
		return common.CheckStatus(status, "AudioDataStream.FromSpeechSynthesisResult")
	})
	if err != nil {
		return nil, err
	}
	return &AudioDataStream{
		engine: result.engine,
		handle: common.NewSmartHandle("AudioDataStream", h, result.engine.AudioDataStreamRelease),
	}, nil
}

// Read fills p with the next audio bytes. It returns io.EOF once the audio is
// exhausted.
func (s *AudioDataStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if uint64(len(p)) > math.MaxUint32 {
		p = p[:uint64(math.MaxUint32)]
	}
	var n int
	err := s.handle.Use(func(h native.Handle) error {
		filled, status := s.engine.AudioDataStreamRead(h, p)
		if err := common.CheckStatus(status, "AudioDataStream.Read"); err != nil {
			return err
		}
		var err error
		n, err = common.FilledLength("AudioDataStream.Read", filled, len(p))
		return err
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close releases the stream. It always returns nil.
func (s *AudioDataStream) Close() error {
	s.handle.Close()
	return nil
}

var _ io.ReadCloser = (*AudioDataStream)(nil)
