package common

// CancellationReason defines the possible reasons a recognition result might be canceled.
type CancellationReason int

const (
	// CancellationReasonError indicates that an error occurred during speech recognition.
	CancellationReasonError CancellationReason = 1
	// CancellationReasonEndOfStream indicates that the end of the audio stream was reached.
	CancellationReasonEndOfStream CancellationReason = 2
	// CancellationReasonCancelledByUser indicates that the request was cancelled by the user.
	CancellationReasonCancelledByUser CancellationReason = 3
)

// CancellationReasonFromCode decodes a native cancellation code. Codes other than
// 1, 2 and 3 decode to CancellationReasonCancelledByUser; use
// IsKnownCancellationReason to tell the fallback apart from a genuine cancellation.
func CancellationReasonFromCode(code int) CancellationReason {
	switch code {
	case 1:
		return CancellationReasonError
	case 2:
		return CancellationReasonEndOfStream
	default:
		return CancellationReasonCancelledByUser
	}
}

// IsKnownCancellationReason reports whether code is one of the decoded values.
func IsKnownCancellationReason(code int) bool {
	return code >= int(CancellationReasonError) && code <= int(CancellationReasonCancelledByUser)
}

func (r CancellationReason) String() string {
	switch r {
	case CancellationReasonError:
		return "Error"
	case CancellationReasonEndOfStream:
		return "EndOfStream"
	case CancellationReasonCancelledByUser:
		return "CancelledByUser"
	default:
		return "Unknown"
	}
}

// CancellationErrorCode is the error code attached to a canceled result when the
// reason is Error.
type CancellationErrorCode int

const (
	NoError               CancellationErrorCode = 0
	AuthenticationFailure CancellationErrorCode = 1
	BadRequest            CancellationErrorCode = 2
	TooManyRequests       CancellationErrorCode = 3
	Forbidden             CancellationErrorCode = 4
	ConnectionFailure     CancellationErrorCode = 5
	ServiceTimeout        CancellationErrorCode = 6
	ServiceError          CancellationErrorCode = 7
	ServiceUnavailable    CancellationErrorCode = 8
	RuntimeError          CancellationErrorCode = 9
)

func (c CancellationErrorCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case AuthenticationFailure:
		return "AuthenticationFailure"
	case BadRequest:
		return "BadRequest"
	case TooManyRequests:
		return "TooManyRequests"
	case Forbidden:
		return "Forbidden"
	case ConnectionFailure:
		return "ConnectionFailure"
	case ServiceTimeout:
		return "ServiceTimeout"
	case ServiceError:
		return "ServiceError"
	case ServiceUnavailable:
		return "ServiceUnavailable"
	case RuntimeError:
		return "RuntimeError"
	default:
		return "Unknown"
	}
}
