package models

import (
	"time"
)

// Result is the outcome of a throttle check.
type Result struct {
	Allowed bool `json:"allowed"`
	// Bypassed is set when the origin is allowlisted and no counter was consumed.
	Bypassed   bool      `json:"bypassed,omitempty"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RetryAfterSeconds computes the Retry-After value for a denial at now.
// Never less than one second so clients do not spin.
func RetryAfterSeconds(resetAt, now time.Time) int {
	secs := int(resetAt.Sub(now).Seconds())
	if resetAt.Sub(now) > time.Duration(secs)*time.Second {
		secs++
	}
	if secs < 1 {
		return 1
	}
	return secs
}
