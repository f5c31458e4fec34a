// Package requestlimit throttles request submissions per origin.
package requestlimit

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"procuration/internal/audit"
	"procuration/internal/ratelimit/metrics"
	"procuration/internal/ratelimit/models"
	"procuration/internal/ratelimit/ports"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/requestcontext"
)

type BucketStore = ports.BucketStore

const (
	DefaultLimit  = 3
	DefaultWindow = time.Minute
)

type Service struct {
	buckets        BucketStore
	auditPublisher audit.Publisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	limit          int
	window         time.Duration
	allowlist      []string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLimit sets how many submissions an origin may make per window.
func WithLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		s.limit = limit
		s.window = window
	}
}

// WithAllowlist exempts origins (exact match) from throttling.
func WithAllowlist(origins ...string) Option {
	return func(s *Service) {
		s.allowlist = append(s.allowlist, origins...)
	}
}

func New(buckets BucketStore, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}
	svc := &Service{
		buckets: buckets,
		limit:   DefaultLimit,
		window:  DefaultWindow,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.limit <= 0 || svc.window <= 0 {
		return nil, errors.New("throttle limit and window must be positive")
	}
	return svc, nil
}

// Allow consumes one submission slot for origin. A denial is a normal result,
// not an error; errors mean the counter store failed.
func (s *Service) Allow(ctx context.Context, origin string) (*models.Result, error) {
	if slices.Contains(s.allowlist, origin) {
		if s.metrics != nil {
			s.metrics.RecordAllowlistBypass()
		}
		audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.ActionThrottleBypassed, "subject", origin)
		return &models.Result{
			Allowed:   true,
			Bypassed:  true,
			Limit:     s.limit,
			Remaining: s.limit,
			ResetAt:   requestcontext.Now(ctx).Add(s.window),
		}, nil
	}

	key := models.NewKey(models.KeyPrefixSubmission, origin)
	result, err := s.buckets.Allow(ctx, key.String(), s.limit, s.window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check throttle")
	}
	if s.metrics != nil {
		s.metrics.RecordDecision(result.Allowed)
	}
	if !result.Allowed {
		audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.ActionThrottled,
			"subject", origin,
			"limit", s.limit,
			"window_seconds", int(s.window.Seconds()),
		)
	}
	return result, nil
}
