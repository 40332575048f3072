package common

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// maxNativeString bounds the buffer grown for a native string copy.
const maxNativeString = 1 << 20

// NewCString converts s into a NUL-terminated native string. It fails with
// ErrCodeInvalidArgument if s contains an embedded NUL.
func NewCString(s string) (native.CString, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, &Error{
			Code:    ErrCodeInvalidArgument,
			Message: fmt.Sprintf("string contains a NUL byte at offset %d", i),
		}
	}
	c := make(native.CString, len(s)+1)
	copy(c, s)
	return c, nil
}

// NewCStrings converts every argument, stopping at the first failure.
func NewCStrings(values ...string) ([]native.CString, error) {
	out := make([]native.CString, len(values))
	for i, v := range values {
		c, err := NewCString(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// DecodeString turns native output bytes into a Go string, rejecting invalid UTF-8.
func DecodeString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &Error{Code: ErrCodeEncoding, Message: "native string is not valid utf-8"}
	}
	return string(b), nil
}

// CopyString runs a bounded-buffer native string copy. call receives a zeroed buffer of
// capacity bytes and reports the written length (terminator excluded). If the native
// side answers StatusBufferTooSmall with the required length, the copy is retried once
// with a buffer of that size. The written length is trusted only if it fits the buffer.
func CopyString(context string, capacity int, call func(buf []byte) (uint32, native.Status)) (string, error) {
	buf := make([]byte, capacity)
	n, status := call(buf)
	if status == native.StatusBufferTooSmall {
		if uint64(n) >= maxNativeString {
			return "", &Error{Code: ErrCodeSizeConversion, Message: fmt.Sprintf("%s: required length %d too large", context, n)}
		}
		buf = make([]byte, int(n)+1)
		n, status = call(buf)
	}
	if err := CheckStatus(status, context); err != nil {
		return "", err
	}
	size, err := FilledLength(context, n, len(buf))
	if err != nil {
		return "", err
	}
	return DecodeString(buf[:size])
}

// FilledLength converts a native-reported length to int and checks it against the
// capacity of the buffer the native side wrote into.
func FilledLength(context string, n uint32, capacity int) (int, error) {
	if uint64(n) > math.MaxInt || int(n) > capacity {
		return 0, &Error{
			Code:    ErrCodeSizeConversion,
			Message: fmt.Sprintf("%s: native length %d exceeds buffer of %d", context, n, capacity),
		}
	}
	return int(n), nil
}
