// Package common holds the pieces shared by every wrapper object: the error
// taxonomy, the string conversion boundary, owned native handles and property
// collections, plus the enumerations mirrored from the native engine.
package common

import (
	"errors"
	"fmt"

	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// ErrorCode classifies an Error.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	// ErrCodeNative wraps a non-OK native status.
	ErrCodeNative
	// ErrCodeInvalidArgument is a string that cannot cross the boundary (embedded NUL).
	ErrCodeInvalidArgument
	// ErrCodeEncoding is native string output that is not valid UTF-8.
	ErrCodeEncoding
	// ErrCodeSizeConversion is a native-reported length that does not fit the buffer
	// or the platform int.
	ErrCodeSizeConversion
	// ErrCodeAlreadyReleased is any use of an object after Close.
	ErrCodeAlreadyReleased
	// ErrCodeEngineUnavailable means no native engine could be obtained.
	ErrCodeEngineUnavailable
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNative:
		return "native"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeEncoding:
		return "encoding"
	case ErrCodeSizeConversion:
		return "size conversion"
	case ErrCodeAlreadyReleased:
		return "already released"
	case ErrCodeEngineUnavailable:
		return "engine unavailable"
	default:
		return "unknown"
	}
}

// Error is returned by every fallible operation in this module.
type Error struct {
	Code    ErrorCode
	Message string
	// Status is the native status for ErrCodeNative, StatusOK otherwise.
	Status native.Status
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code == ErrCodeNative {
		msg = fmt.Sprintf("%s (native status: %s)", msg, e.Status)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNative            = &Error{Code: ErrCodeNative, Message: "native call failed"}
	ErrInvalidArgument   = &Error{Code: ErrCodeInvalidArgument, Message: "invalid argument"}
	ErrEncoding          = &Error{Code: ErrCodeEncoding, Message: "invalid utf-8 from native string"}
	ErrSizeConversion    = &Error{Code: ErrCodeSizeConversion, Message: "native size out of range"}
	ErrAlreadyReleased   = &Error{Code: ErrCodeAlreadyReleased, Message: "handle already released"}
	ErrEngineUnavailable = &Error{Code: ErrCodeEngineUnavailable, Message: "native engine unavailable"}
)

// CheckStatus converts a native status into an error. context names the operation,
// e.g. "PullAudioOutputStream.Read".
func CheckStatus(status native.Status, context string) error {
	if status == native.StatusOK {
		return nil
	}
	return &Error{Code: ErrCodeNative, Message: context, Status: status}
}

// StatusOf returns the native status carried by err, or StatusOK if err is not a
// native error.
func StatusOf(err error) native.Status {
	var e *Error
	if errors.As(err, &e) && e.Code == ErrCodeNative {
		return e.Status
	}
	return native.StatusOK
}

// ReleasedError reports use of the object named by label after it was closed or moved.
func ReleasedError(label string) error {
	return &Error{Code: ErrCodeAlreadyReleased, Message: label + ": handle already released"}
}

// InvalidArgumentError reports an argument rejected before any native call.
func InvalidArgumentError(context, reason string) error {
	return &Error{Code: ErrCodeInvalidArgument, Message: context + ": " + reason}
}

// DefaultEngine returns native.Default, converting its failure into an Error.
func DefaultEngine() (native.Engine, error) {
	e, err := native.Default()
	if err != nil {
		return nil, &Error{Code: ErrCodeEngineUnavailable, Message: "no native engine", Err: err}
	}
	return e, nil
}
