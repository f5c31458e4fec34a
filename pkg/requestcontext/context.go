// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; the lifecycle service reads them without pulling
// in net/http.
//
// Usage in services (read values):
//
//	origin := requestcontext.Origin(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithOrigin(ctx, "203.0.113.7")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	identityKey    struct{}
	originKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyIdentity    = identityKey{}
	ContextKeyOrigin      = originKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Identity retrieves the email the current session is scoped to.
// Returns "" for anonymous requests.
func Identity(ctx context.Context) string {
	if identity, ok := ctx.Value(ContextKeyIdentity).(string); ok {
		return identity
	}
	return ""
}

// WithIdentity injects the session identity into the context.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// -----------------------------------------------------------------------------
// Client metadata
// -----------------------------------------------------------------------------

// Origin retrieves the request origin (client IP) used for throttling.
func Origin(ctx context.Context) string {
	if origin, ok := ctx.Value(ContextKeyOrigin).(string); ok {
		return origin
	}
	return ""
}

// WithOrigin injects the request origin into the context.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, ContextKeyOrigin, origin)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
