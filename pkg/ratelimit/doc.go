// Package ratelimit provides request pacing for the RobotEvents API.
//
// The API tolerates roughly one request per second, so the transport shares
// a single pacing limiter across every goroutine that issues requests.
//
// Available Implementations:
//
// Interval:
//   - Enforces a minimum spacing between any two admissions
//   - One shared instance gives a process-wide pacing clock
//   - Default implementation used by the transport
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait(ctx) error - Block until a request is allowed or ctx is cancelled
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// One request every 1.1 seconds, shared by all fetchers
//	limiter := ratelimit.NewInterval(1100 * time.Millisecond)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // cancelled while waiting
//	}
//	// Proceed with request
package ratelimit
