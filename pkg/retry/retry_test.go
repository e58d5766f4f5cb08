package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "vexrank/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
		{6, 1 * time.Second, "Sixth attempt (still capped)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			delay := backoff.NextDelay(test.attempt)
			if delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	// Test that jitter adds randomness
	delays := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		delay := backoff.NextDelay(2)
		delays[delay] = true
	}

	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errs.FromStatus(503, "", 0)
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryRateLimitedThenSuccess(t *testing.T) {
	// Two 429s followed by success: with budget for them the payload
	// comes back and exactly three attempts were made.
	attempts := 0
	op := func() error {
		attempts++
		if attempts <= 2 {
			return errs.FromStatus(429, "slow down", 0)
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	if err := Do(op, cfg); err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", attempts)
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	// Same stream but only one retry allowed: terminal error after
	// exactly two attempts, carrying the last status and body.
	attempts := 0
	op := func() error {
		attempts++
		return errs.FromStatus(429, `{"error":"slow down"}`, 0)
	}

	cfg := &Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected error when budget exhausted")
	}
	if attempts != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", attempts)
	}

	var apiErr *errs.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *errs.Error, got %T", err)
	}
	if apiErr.Type != errs.ErrorTypeExhausted {
		t.Errorf("Expected exhausted error type, got %s", apiErr.Type)
	}
	if apiErr.Code != 429 {
		t.Errorf("Expected last status 429, got %d", apiErr.Code)
	}
	if apiErr.Body != `{"error":"slow down"}` {
		t.Errorf("Expected last body to be preserved, got %q", apiErr.Body)
	}
	if errs.Retryable(err) {
		t.Error("Exhausted error must not be retryable")
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	authError := errs.FromStatus(401, "", 0)

	op := func() error {
		attempts++
		return authError
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, authError) {
		t.Errorf("Expected auth error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for auth error), got %d", attempts)
	}
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts == 1 {
			// Server asks for a short wait; the 10s backoff must not apply.
			return errs.FromStatus(429, "", 30*time.Millisecond)
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	start := time.Now()
	if err := Do(op, cfg); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 30*time.Millisecond {
		t.Errorf("Expected at least the server-requested 30ms wait, got %v", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("Backoff delay was not overridden by Retry-After, took %v", elapsed)
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errs.FromStatus(503, "", 0)
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 100 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     ctx,
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when context cancelled")
	}
	if attempts > 3 {
		t.Errorf("Expected at most 3 attempts before cancellation, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errs.FromStatus(429, "", 0), true},
		{"server error", errs.FromStatus(502, "", 0), true},
		{"network", errs.Wrap(errs.ErrorTypeNetwork, errors.New("refused"), "network error"), true},
		{"request timeout", errs.Wrap(errs.ErrorTypeNetwork, context.DeadlineExceeded, "request failed"), true},
		{"auth", errs.FromStatus(403, "", 0), false},
		{"not found", errs.FromStatus(404, "", 0), false},
		{"parsing", errs.New(errs.ErrorTypeParsing, "bad json"), false},
		{"context cancelled", context.Canceled, false},
		{"plain error", errors.New("something"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.FromStatus(500, "", 0)
		}
		return "success", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got '%s'", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierWith(t *testing.T) {
	base := NewRetrier(&Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	})

	derived := base.WithMaxAttempts(4)
	if derived.config.MaxAttempts != 4 {
		t.Errorf("Expected derived max attempts 4, got %d", derived.config.MaxAttempts)
	}
	if base.config.MaxAttempts != 2 {
		t.Errorf("Base retrier was mutated, max attempts now %d", base.config.MaxAttempts)
	}
}
