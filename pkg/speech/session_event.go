package speech

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// sessionIDCapacity fits a canonical 36-character session id and its terminator.
const sessionIDCapacity = 37

// SessionEventArgs carries the session identifier of session events.
type SessionEventArgs struct {
	handle    *common.SmartHandle
	SessionID string
}

// NewSessionEventArgsFromHandle builds a SessionEventArgs and takes ownership of
// handle. On failure the handle is released before returning.
func NewSessionEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SessionEventArgs, error) {
	sh := common.NewSmartHandle("SessionEventArgs", handle, engine.EventRelease)
	id, err := common.CopyString("SessionEventArgs.SessionID", sessionIDCapacity, func(buf []byte) (uint32, native.Status) {
		return engine.EventGetSessionID(handle, buf)
	})
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &SessionEventArgs{handle: sh, SessionID: id}, nil
}

// Close releases the native event. The extracted fields stay valid.
func (e SessionEventArgs) Close() {
	if e.handle != nil {
		e.handle.Close()
	}
}

// RecognitionEventArgs adds the audio offset to a session event.
type RecognitionEventArgs struct {
	SessionEventArgs
	// Offset of the event in ticks of 100 ns from the start of the audio.
	Offset uint64
}

// NewRecognitionEventArgsFromHandle builds a RecognitionEventArgs and takes ownership
// of handle.
func NewRecognitionEventArgsFromHandle(engine native.Engine, handle native.Handle) (*RecognitionEventArgs, error) {
	base, err := NewSessionEventArgsFromHandle(engine, handle)
	if err != nil {
		return nil, err
	}
	offset, status := engine.RecognitionEventGetOffset(handle)
	if err := common.CheckStatus(status, "RecognitionEventArgs.Offset"); err != nil {
		base.Close()
		return nil, err
	}
	return &RecognitionEventArgs{SessionEventArgs: *base, Offset: offset}, nil
}

// SpeechRecognitionEventArgs is delivered for intermediate and final results.
type SpeechRecognitionEventArgs struct {
	RecognitionEventArgs
	Result SpeechRecognitionResult
}

// NewSpeechRecognitionEventArgsFromHandle builds a SpeechRecognitionEventArgs and
// takes ownership of handle.
func NewSpeechRecognitionEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SpeechRecognitionEventArgs, error) {
	base, err := NewRecognitionEventArgsFromHandle(engine, handle)
	if err != nil {
		return nil, err
	}
	resultHandle, status := engine.RecognitionEventGetResult(handle)
	if err := common.CheckStatus(status, "SpeechRecognitionEventArgs.Result"); err != nil {
		base.Close()
		return nil, err
	}
	result, err := NewSpeechRecognitionResultFromHandle(engine, resultHandle)
	if err != nil {
		base.Close()
		return nil, err
	}
	return &SpeechRecognitionEventArgs{RecognitionEventArgs: *base, Result: *result}, nil
}

// Close releases the result and the native event.
func (e SpeechRecognitionEventArgs) Close() {
	e.Result.Close()
	e.SessionEventArgs.Close()
}

// SpeechRecognitionCanceledEventArgs is delivered when recognition is canceled.
type SpeechRecognitionCanceledEventArgs struct {
	SpeechRecognitionEventArgs
	CancellationDetails
}

// NewSpeechRecognitionCanceledEventArgsFromHandle builds a
// SpeechRecognitionCanceledEventArgs and takes ownership of handle.
func NewSpeechRecognitionCanceledEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SpeechRecognitionCanceledEventArgs, error) {
	base, err := NewSpeechRecognitionEventArgsFromHandle(engine, handle)
	if err != nil {
		return nil, err
	}
	details, err := readCancellationDetails(engine, base.Result.handle, "SpeechRecognitionCanceledEventArgs")
	if err != nil {
		base.Close()
		return nil, err
	}
	return &SpeechRecognitionCanceledEventArgs{SpeechRecognitionEventArgs: *base, CancellationDetails: details}, nil
}

// CancellationDetails explains why a recognition or a synthesis was canceled.
type CancellationDetails struct {
	Reason common.CancellationReason
	// ErrorCode and ErrorDetails are only meaningful when Reason is
	// CancellationReasonError.
	ErrorCode    common.CancellationErrorCode
	ErrorDetails string
	// ReasonCode is the raw native code behind Reason.
	ReasonCode int
}

func readCancellationDetails(engine native.Engine, result *common.SmartHandle, op string) (CancellationDetails, error) {
	var d CancellationDetails
	err := result.Use(func(h native.Handle) error {
		code, status := engine.ResultGetCanceledReason(h)
		if err := common.CheckStatus(status, op+".Reason"); err != nil {
			return err
		}
		d.ReasonCode = code
		d.Reason = common.CancellationReasonFromCode(code)

		errorCode, status := engine.ResultGetCanceledErrorCode(h)
		if err := common.CheckStatus(status, op+".ErrorCode"); err != nil {
			return err
		}
		d.ErrorCode = common.CancellationErrorCode(errorCode)

		bag, status := engine.ResultGetPropertyBag(h)
		if err := common.CheckStatus(status, op+".Properties"); err != nil {
			return err
		}
		props := common.NewPropertyCollection(engine, bag)
		defer props.Close()

		details, err := props.GetProperty(common.SpeechServiceResponseJSONErrorDetails, "")
		if err != nil {
			return err
		}
		d.ErrorDetails = details
		return nil
	})
	return d, err
}
