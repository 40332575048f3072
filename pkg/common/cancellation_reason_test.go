package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancellationReasonFromCode(t *testing.T) {
	tests := []struct {
		code  int
		want  CancellationReason
		known bool
	}{
		{1, CancellationReasonError, true},
		{2, CancellationReasonEndOfStream, true},
		{3, CancellationReasonCancelledByUser, true},
		{99, CancellationReasonCancelledByUser, false},
		{0, CancellationReasonCancelledByUser, false},
		{-1, CancellationReasonCancelledByUser, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CancellationReasonFromCode(tt.code), "code %d", tt.code)
		assert.Equal(t, tt.known, IsKnownCancellationReason(tt.code), "code %d", tt.code)
	}
}

func TestCancellationReason_String(t *testing.T) {
	assert.Equal(t, "Error", CancellationReasonError.String())
	assert.Equal(t, "EndOfStream", CancellationReasonEndOfStream.String())
	assert.Equal(t, "CancelledByUser", CancellationReasonCancelledByUser.String())
	assert.Equal(t, "Unknown", CancellationReason(42).String())
}
