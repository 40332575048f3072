// Package native describes the boundary with the native speech engine: opaque
// handles, status codes and the fixed catalog of entry points in Engine.
//
// Nothing in this package owns a handle. Ownership and release discipline live in
// pkg/common (SmartHandle) and the objects built on top of it.
package native

import "fmt"

// Handle is an opaque token identifying a native-side resource (config, recognizer,
// audio stream, event, property bag, result). It is only valid between creation and
// release and must never be dereferenced.
type Handle uintptr

// InvalidHandle is the designated empty sentinel. Releasing it is a no-op.
const InvalidHandle = ^Handle(0)

// IsValid reports whether h is something other than the empty sentinel.
func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

func (h Handle) String() string {
	if h == InvalidHandle {
		return "<invalid>"
	}
	return fmt.Sprintf("0x%x", uintptr(h))
}

// Status is a native result code. StatusOK means success, anything else is a failure
// that must be converted to an error before reaching calling code.
type Status uintptr

const (
	StatusOK                Status = 0x000
	StatusUninitialized     Status = 0x001
	StatusNotFound          Status = 0x004
	StatusInvalidArg        Status = 0x005
	StatusTimeout           Status = 0x006
	StatusAlreadyInProgress Status = 0x007
	StatusFileOpenFailed    Status = 0x008
	StatusUnexpectedEOF     Status = 0x009
	StatusMicNotAvailable   Status = 0x00e
	StatusInvalidState      Status = 0x00f
	StatusBufferTooSmall    Status = 0x019
	StatusRuntimeError      Status = 0x01b
	StatusInvalidHandle     Status = 0x021
	StatusNotImplemented    Status = 0xfff
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUninitialized:
		return "uninitialized"
	case StatusNotFound:
		return "not found"
	case StatusInvalidArg:
		return "invalid argument"
	case StatusTimeout:
		return "timeout"
	case StatusAlreadyInProgress:
		return "already in progress"
	case StatusFileOpenFailed:
		return "file open failed"
	case StatusUnexpectedEOF:
		return "unexpected eof"
	case StatusMicNotAvailable:
		return "microphone not available"
	case StatusInvalidState:
		return "invalid state"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusRuntimeError:
		return "runtime error"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusNotImplemented:
		return "not implemented"
	default:
		return fmt.Sprintf("status 0x%03x", uintptr(s))
	}
}

// CString is a NUL-terminated byte string ready to cross the native boundary.
// Build one with common.NewCString, which rejects embedded NUL bytes.
type CString []byte

// String returns the Go string without the terminator.
func (c CString) String() string {
	if n := len(c); n > 0 && c[n-1] == 0 {
		return string(c[:n-1])
	}
	return string(c)
}
