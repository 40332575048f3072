package speech

import (
	"math"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// SpeechSynthesisResult is the outcome of a synthesis, or the audio chunk carried by a
// Synthesizing event.
type SpeechSynthesisResult struct {
	engine    native.Engine
	handle    *common.SmartHandle
	ResultID  string
	Reason    common.ResultReason
	AudioData []byte
}

// NewSpeechSynthesisResultFromHandle builds a SpeechSynthesisResult and takes
// ownership of handle.
func NewSpeechSynthesisResultFromHandle(engine native.Engine, handle native.Handle) (*SpeechSynthesisResult, error) {
	sh := common.NewSmartHandle("SpeechSynthesisResult", handle, engine.ResultRelease)

	id, err := common.CopyString("SpeechSynthesisResult.ResultID", resultIDCapacity, func(buf []byte) (uint32, native.Status) {
		return engine.ResultGetResultID(handle, buf)
	})
	if err != nil {
		sh.Close()
		return nil, err
	}
	reason, status := engine.ResultGetReason(handle)
	if err := common.CheckStatus(status, "SpeechSynthesisResult.Reason"); err != nil {
		sh.Close()
		return nil, err
	}
	audio, err := readAudioData(engine, handle)
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &SpeechSynthesisResult{
		engine:    engine,
		handle:    sh,
		ResultID:  id,
		Reason:    common.ResultReason(reason),
		AudioData: audio,
	}, nil
}

// maxAudioData bounds a single synthesis result.
const maxAudioData = math.MaxInt32

// readAudioData asks for the length first, then copies the audio. The length may grow
// in between while synthesis is running, so a BufferTooSmall answer is retried once
// with the size it reports.
func readAudioData(engine native.Engine, handle native.Handle) ([]byte, error) {
	const op = "SpeechSynthesisResult.AudioData"
	length, status := engine.SynthesisResultGetAudioLength(handle)
	if err := common.CheckStatus(status, "SpeechSynthesisResult.AudioLength"); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	read := func(length uint32) ([]byte, uint32, native.Status, error) {
		if uint64(length) > maxAudioData {
			return nil, 0, native.StatusOK, &common.Error{Code: common.ErrCodeSizeConversion, Message: op + ": audio too large"}
		}
		buf := make([]byte, length)
		n, status := engine.SynthesisResultGetAudioData(handle, buf)
		return buf, n, status, nil
	}
	buf, n, status, err := read(length)
	if err == nil && status == native.StatusBufferTooSmall {
		buf, n, status, err = read(n)
	}
	if err != nil {
		return nil, err
	}
	if err := common.CheckStatus(status, op); err != nil {
		return nil, err
	}
	filled, err := common.FilledLength(op, n, len(buf))
	if err != nil {
		return nil, err
	}
	return buf[:filled], nil
}

// Close releases the native result.
func (r *SpeechSynthesisResult) Close() {
	if r != nil && r.handle != nil {
		r.handle.Close()
	}
}

// NewCancellationDetailsFromSpeechSynthesisResult reads why result was canceled. It
// fails with ErrInvalidArgument unless result.Reason is Canceled.
func NewCancellationDetailsFromSpeechSynthesisResult(result *SpeechSynthesisResult) (*CancellationDetails, error) {
	const op = "CancellationDetails.FromSpeechSynthesisResult"
	if result == nil || result.handle == nil {
		return nil, common.InvalidArgumentError(op, "nil result")
	}
	if result.Reason != common.Canceled {
		return nil, common.InvalidArgumentError(op, "result was not canceled")
	}
	details, err := readCancellationDetails(result.engine, result.handle, op)
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// SpeechSynthesisOutcome is delivered by the async speak methods. Close it to release
// the result.
type SpeechSynthesisOutcome struct {
	Result *SpeechSynthesisResult
	Error  error
}

// Close releases the result, if any.
func (o SpeechSynthesisOutcome) Close() {
	o.Result.Close()
}
