// Package ports defines the interfaces the throttle service consumes.
package ports

import (
	"context"
	"time"

	"procuration/internal/ratelimit/models"
)

// BucketStore manages windowed request counters.
type BucketStore interface {
	// Allow checks if a single request is allowed and consumes one slot if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error

	// GetCurrentCount returns the number of requests counted in the window.
	GetCurrentCount(ctx context.Context, key string) (int, error)
}
