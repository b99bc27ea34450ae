package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewUpstreamError("log entries", cause)

	assert.Equal(t, "UPSTREAM_FETCH_FAILED", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "log entries", err.Details["store"])
}

func TestComputationErrorUsesSafeMessage(t *testing.T) {
	err := NewComputationError(fmt.Errorf("index out of range"))

	assert.Equal(t, SafeForecastMessage, err.Message)
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(err))
	assert.True(t, IsType(err, ErrorTypeComputation))
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		retryable bool
	}{
		{"unauthorized", NewUnauthorizedError("missing token"), http.StatusUnauthorized, false},
		{"wrapped upstream", Wrap(NewUpstreamError("profile", nil), "fetch"), http.StatusServiceUnavailable, true},
		{"rate limit", NewRateLimitError("slow down"), http.StatusTooManyRequests, true},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestIs(t *testing.T) {
	err := NewUpstreamError("profile", context.Canceled)
	assert.True(t, Is(Wrap(err, "fetch"), context.Canceled))
	assert.False(t, Is(err, context.DeadlineExceeded))
}
