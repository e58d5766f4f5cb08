package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeClient      ErrorType = "client"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeExhausted   ErrorType = "retries_exhausted"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// maxBodySnippet bounds how much of a response body an error carries around.
const maxBodySnippet = 512

// Error represents an API error with type information and, where available,
// the HTTP status and a snippet of the response body that produced it.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Body    string
	// RetryAfter is the server-requested wait, set on rate limit errors
	// when the response carried a Retry-After header.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given type.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates an error of the given type around an underlying cause.
func Wrap(t ErrorType, err error, message string) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// FromStatus classifies a non-success HTTP response into a typed error.
// The body snippet is truncated; retryAfter is only meaningful for 429s.
func FromStatus(code int, body string, retryAfter time.Duration) *Error {
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet] + "..."
	}

	e := &Error{Code: code, Body: body}
	switch {
	case code == 429:
		e.Type = ErrorTypeRateLimit
		e.Message = "rate limit exceeded"
		e.RetryAfter = retryAfter
	case code >= 500:
		e.Type = ErrorTypeServerError
		e.Message = fmt.Sprintf("server returned status %d", code)
	case code == 401 || code == 403:
		e.Type = ErrorTypeAuth
		e.Message = "authentication rejected"
	case code == 404:
		e.Type = ErrorTypeNotFound
		e.Message = "resource not found"
	case code >= 400:
		e.Type = ErrorTypeClient
		e.Message = fmt.Sprintf("request rejected with status %d", code)
	default:
		e.Type = ErrorTypeUnknown
		e.Message = fmt.Sprintf("unexpected status code: %d", code)
	}
	return e
}

// Exhausted converts the last transient error into a terminal one once the
// retry budget is spent. The status code and body of the final attempt are
// preserved so callers can report what the server last said.
func Exhausted(attempts int, last error) *Error {
	e := &Error{
		Type:    ErrorTypeExhausted,
		Message: fmt.Sprintf("retry budget exhausted after %d attempts", attempts),
		Err:     last,
	}
	var apiErr *Error
	if errors.As(last, &apiErr) {
		e.Code = apiErr.Code
		e.Body = apiErr.Body
		e.Message = fmt.Sprintf("retry budget exhausted after %d attempts: %s", attempts, apiErr.Message)
	}
	return e
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// Retryable reports whether err is a transient API error worth retrying.
func Retryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return IsRetryable(apiErr.Type)
	}
	return false
}

// RetryAfter extracts the server-requested delay from a rate limit error.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
