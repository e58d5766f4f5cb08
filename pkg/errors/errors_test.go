package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantType  ErrorType
		retryable bool
	}{
		{"rate limited", 429, ErrorTypeRateLimit, true},
		{"internal server error", 500, ErrorTypeServerError, true},
		{"bad gateway", 502, ErrorTypeServerError, true},
		{"service unavailable", 503, ErrorTypeServerError, true},
		{"unauthorized", 401, ErrorTypeAuth, false},
		{"forbidden", 403, ErrorTypeAuth, false},
		{"not found", 404, ErrorTypeNotFound, false},
		{"unprocessable", 422, ErrorTypeClient, false},
		{"teapot", 418, ErrorTypeClient, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.code, "body", 0)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, IsRetryable(err.Type))
		})
	}
}

func TestFromStatusTruncatesBody(t *testing.T) {
	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'x'
	}
	err := FromStatus(500, string(long), 0)
	assert.Len(t, err.Body, maxBodySnippet+3) // snippet plus ellipsis
}

func TestRetryAfter(t *testing.T) {
	err := FromStatus(429, "", 30*time.Second)
	d, ok := RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, d)

	// Wrapped errors still expose the delay.
	wrapped := fmt.Errorf("fetching page: %w", err)
	d, ok = RetryAfter(wrapped)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, d)

	_, ok = RetryAfter(FromStatus(500, "", 0))
	assert.False(t, ok)
}

func TestExhausted(t *testing.T) {
	last := FromStatus(429, `{"error":"slow down"}`, 0)
	err := Exhausted(3, last)

	assert.Equal(t, ErrorTypeExhausted, err.Type)
	assert.False(t, IsRetryable(err.Type))
	assert.Equal(t, 429, err.Code)
	assert.Equal(t, `{"error":"slow down"}`, err.Body)
	assert.ErrorIs(t, err, last)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(FromStatus(503, "", 0)))
	assert.True(t, Retryable(fmt.Errorf("wrapped: %w", FromStatus(429, "", 0))))
	assert.False(t, Retryable(FromStatus(404, "", 0)))
	assert.False(t, Retryable(fmt.Errorf("plain error")))
	assert.False(t, Retryable(nil))
}
