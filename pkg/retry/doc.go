// Package retry provides exponential backoff and retry logic for handling
// transient failures in network operations, particularly RobotEvents API calls.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Server-requested delays (Retry-After) take precedence over backoff
//   - Configurable retry predicates
//   - Terminal errors carry the last failure's status and body
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return client.FetchSeasonPage(ctx, seasonID, page)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     60 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Retry decisions:
//
// DefaultRetryIf consults the shared error taxonomy: network, rate limit and
// server errors are retried; auth, not-found, client and parsing errors are
// returned immediately. When the retry budget runs out the caller receives a
// single exhausted error wrapping the last attempt's failure, so the status
// code and response body of the final 429 or 5xx survive to the log line.
package retry
