package audio

import (
	"io"
	"math"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// maxNativeRead is the largest length a native read can report.
var maxNativeRead uint32 = math.MaxUint32

// PullAudioOutputStream is a blocking byte source backed by a native audio stream.
// It does no buffering of its own.
type PullAudioOutputStream struct {
	engine native.Engine
	handle *common.SmartHandle
}

// CreatePullAudioOutputStream allocates a native pull stream.
func CreatePullAudioOutputStream() (*PullAudioOutputStream, error) {
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.PullAudioOutputStreamCreate()
	if err := common.CheckStatus(status, "PullAudioOutputStream.Create"); err != nil {
		return nil, err
	}
	return &PullAudioOutputStream{
		engine: engine,
		handle: common.NewSmartHandle("PullAudioOutputStream", h, engine.AudioStreamRelease),
	}, nil
}

// Read reads up to maxSize bytes. If no data is immediately available it blocks until
// the next data arrives or the stream ends. The result has exactly the length the
// native side reports as filled; an empty result means end of stream.
//
// There is no timeout. To abandon a blocked Read, Close the stream from another
// goroutine; the Read then fails with a native error.
//
// A zero maxSize is rejected: its empty result would read as end of stream.
func (s *PullAudioOutputStream) Read(maxSize uint32) ([]byte, error) {
	if maxSize == 0 {
		return nil, common.InvalidArgumentError("PullAudioOutputStream.Read", "maxSize must be positive")
	}
	buf := make([]byte, maxSize)
	n, err := s.readInto(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (s *PullAudioOutputStream) readInto(buf []byte) (int, error) {
	if uint64(len(buf)) > math.MaxUint32 {
		buf = buf[:maxNativeRead]
	}
	var n int
	err := s.handle.Use(func(h native.Handle) error {
		filled, status := s.engine.PullAudioOutputStreamRead(h, buf)
		if err := common.CheckStatus(status, "PullAudioOutputStream.Read"); err != nil {
			return err
		}
		var err error
		n, err = common.FilledLength("PullAudioOutputStream.Read", filled, len(buf))
		return err
	})
	return n, err
}

// Reader adapts the stream to io.Reader. End of stream is reported as io.EOF.
func (s *PullAudioOutputStream) Reader() io.Reader {
	return pullReader{s}
}

type pullReader struct {
	s *PullAudioOutputStream
}

func (r pullReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.s.readInto(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// GetHandle returns the raw handle, or native.InvalidHandle once closed.
func (s *PullAudioOutputStream) GetHandle() native.Handle {
	return s.handle.Inner()
}

// Close releases the native stream.
func (s *PullAudioOutputStream) Close() {
	s.handle.Close()
}
