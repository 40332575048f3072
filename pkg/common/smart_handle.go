package common

import (
	"log"
	"runtime"
	"sync/atomic"

	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// ReleaseFunc frees a native handle.
type ReleaseFunc func(native.Handle) native.Status

// SmartHandle owns exactly one native handle and releases it at most once, either on
// Close or, as a last resort, when the garbage collector finds it unreachable. The
// label names the owning type in diagnostics.
type SmartHandle struct {
	label    string
	handle   native.Handle
	release  ReleaseFunc
	released atomic.Bool
}

// NewSmartHandle wraps handle. Wrapping native.InvalidHandle yields an already-released
// SmartHandle whose Close never calls release.
func NewSmartHandle(label string, handle native.Handle, release ReleaseFunc) *SmartHandle {
	sh := &SmartHandle{label: label, handle: handle, release: release}
	if !handle.IsValid() {
		sh.released.Store(true)
		return sh
	}
	runtime.SetFinalizer(sh, func(sh *SmartHandle) {
		if !sh.released.Load() {
			log.Printf("[%s] handle %s was not closed; releasing from finalizer", sh.label, sh.handle)
			sh.Close()
		}
	})
	return sh
}

// Label returns the diagnostic label.
func (sh *SmartHandle) Label() string {
	return sh.label
}

// Inner returns the raw handle without transferring ownership, or
// native.InvalidHandle once released.
func (sh *SmartHandle) Inner() native.Handle {
	if sh.released.Load() {
		return native.InvalidHandle
	}
	return sh.handle
}

// Get is Inner with an ErrCodeAlreadyReleased error instead of the sentinel.
func (sh *SmartHandle) Get() (native.Handle, error) {
	if sh.released.Load() {
		return native.InvalidHandle, ReleasedError(sh.label)
	}
	return sh.handle, nil
}

// Use runs fn with the raw handle and keeps the SmartHandle reachable until fn
// returns, so the finalizer cannot release the handle mid-call.
func (sh *SmartHandle) Use(fn func(native.Handle) error) error {
	h, err := sh.Get()
	if err != nil {
		return err
	}
	err = fn(h)
	runtime.KeepAlive(sh)
	return err
}

// Released reports whether the handle was released or transferred.
func (sh *SmartHandle) Released() bool {
	return sh.released.Load()
}

// Close releases the handle. Only the first call does anything. A failing release is
// logged, never returned: there is nothing a caller could do about it.
func (sh *SmartHandle) Close() {
	if !sh.released.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(sh, nil)
	if status := sh.release(sh.handle); status != native.StatusOK {
		log.Printf("[%s] release of handle %s failed: %s", sh.label, sh.handle, status)
	}
}

// Transfer moves ownership into a new SmartHandle. The receiver ends up released
// without the native release having run.
func (sh *SmartHandle) Transfer() *SmartHandle {
	if !sh.released.CompareAndSwap(false, true) {
		return NewSmartHandle(sh.label, native.InvalidHandle, sh.release)
	}
	runtime.SetFinalizer(sh, nil)
	return NewSmartHandle(sh.label, sh.handle, sh.release)
}
