//go:build !speechsdk

package native

// NewSDKEngine returns ErrEngineUnavailable when built without the speechsdk tag.
// The SDK-backed engine needs cgo and the native speech runtime libraries.
func NewSDKEngine() (Engine, error) {
	return nil, ErrEngineUnavailable
}
