package speech

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

const (
	resultIDCapacity   = 64
	resultTextCapacity = 1024
)

// SpeechRecognitionResult is the outcome of a recognition.
type SpeechRecognitionResult struct {
	engine   native.Engine
	handle   *common.SmartHandle
	ResultID string
	Reason   common.ResultReason
	Text     string
}

// NewSpeechRecognitionResultFromHandle builds a SpeechRecognitionResult and takes
// ownership of handle.
func NewSpeechRecognitionResultFromHandle(engine native.Engine, handle native.Handle) (*SpeechRecognitionResult, error) {
	sh := common.NewSmartHandle("SpeechRecognitionResult", handle, engine.ResultRelease)

	result, err := readResult(engine, handle)
	if err != nil {
		sh.Close()
		return nil, err
	}
	result.engine = engine
	result.handle = sh
	return result, nil
}

func readResult(engine native.Engine, handle native.Handle) (*SpeechRecognitionResult, error) {
	id, err := common.CopyString("SpeechRecognitionResult.ResultID", resultIDCapacity, func(buf []byte) (uint32, native.Status) {
		return engine.ResultGetResultID(handle, buf)
	})
	if err != nil {
		return nil, err
	}
	reason, status := engine.ResultGetReason(handle)
	if err := common.CheckStatus(status, "SpeechRecognitionResult.Reason"); err != nil {
		return nil, err
	}
	text, err := common.CopyString("SpeechRecognitionResult.Text", resultTextCapacity, func(buf []byte) (uint32, native.Status) {
		return engine.ResultGetText(handle, buf)
	})
	if err != nil {
		return nil, err
	}
	return &SpeechRecognitionResult{
		ResultID: id,
		Reason:   common.ResultReason(reason),
		Text:     text,
	}, nil
}

// Close releases the native result.
func (r SpeechRecognitionResult) Close() {
	if r.handle != nil {
		r.handle.Close()
	}
}
