// Package lifecycle advances proxy-vote requests through their stages:
// submission, email verification, locality choice, confirmation
// acknowledgment and cancellation.
//
// Every transition is a short unit of work returning a value or a coded
// error from pkg/domain-errors. Guard failures return before any write.
// Collaborator failures (mail, geocoding, match cancellation) are surfaced
// as CodeExternalFailure without rolling back what was already written:
// minted tokens and incremented counters stay.
//
// Locality choices for one identity are serialized with a kv.Locker, so the
// change counter increment and the locality write form one step and the
// "not matched" guard is re-checked inside it.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"procuration/internal/audit"
	"procuration/internal/kv"
	"procuration/internal/platform/metrics"
	"procuration/internal/request/models"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/platform/sentinel"
)

const tracerName = "procuration/internal/lifecycle"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Dependencies are the stores and collaborators a Service cannot run without.
type Dependencies struct {
	Records    RecordStore
	Tokens     TokenRegistry
	Locker     kv.Locker
	Sessions   Sessions
	Mailer     Mailer
	Geocoder   Geocoder
	Localities LocalityStore
	Matches    MatchCanceller
	// Throttle may be nil to disable submission throttling.
	Throttle Throttle
}

// Service runs lifecycle transitions.
type Service struct {
	records    RecordStore
	tokens     TokenRegistry
	locker     kv.Locker
	sessions   Sessions
	mailer     Mailer
	geocoder   Geocoder
	localities LocalityStore
	matches    MatchCanceller
	throttle   Throttle

	logger           *slog.Logger
	metrics          *metrics.Metrics
	auditPublisher   AuditPublisher
	tracer           trace.Tracer
	host             string
	consularListDest string
	maxChanges       int64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithHost sets the public base URL used in emailed links.
func WithHost(host string) Option {
	return func(s *Service) {
		s.host = host
	}
}

// WithConsularListDest sets who receives consular-list requests.
func WithConsularListDest(dest string) Option {
	return func(s *Service) {
		s.consularListDest = dest
	}
}

// WithMaxLocalityChanges overrides the cap on accepted locality choices.
func WithMaxLocalityChanges(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChanges = n
		}
	}
}

func New(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.Records == nil:
		return nil, errors.New("records store is required")
	case deps.Tokens == nil:
		return nil, errors.New("token registry is required")
	case deps.Locker == nil:
		return nil, errors.New("locker is required")
	case deps.Sessions == nil:
		return nil, errors.New("sessions are required")
	case deps.Mailer == nil:
		return nil, errors.New("mailer is required")
	case deps.Geocoder == nil:
		return nil, errors.New("geocoder is required")
	case deps.Localities == nil:
		return nil, errors.New("locality store is required")
	case deps.Matches == nil:
		return nil, errors.New("match canceller is required")
	}

	svc := &Service{
		records:    deps.Records,
		tokens:     deps.Tokens,
		locker:     deps.Locker,
		sessions:   deps.Sessions,
		mailer:     deps.Mailer,
		geocoder:   deps.Geocoder,
		localities: deps.Localities,
		matches:    deps.Matches,
		throttle:   deps.Throttle,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		maxChanges: models.MaxLocalityChanges,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// begin opens a span for a transition. The returned func records the outcome
// (the error code, or "ok") on the span and in the transition metrics.
func (s *Service) begin(ctx context.Context, transition string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "lifecycle."+transition)
	return ctx, func(errp *error) {
		outcome := "ok"
		if err := *errp; err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveTransition(transition, outcome, start)
		}
	}
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, attrs ...any) {
	audit.LogAudit(ctx, s.logger, s.auditPublisher, action, attrs...)
}

// requireSession rejects anonymous callers.
func requireSession(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "a verified session is required")
	}
	return nil
}

// tokenError translates a registry failure into the caller-facing error.
func tokenError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeInvalidToken, "invalid or expired token")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve token")
}

// ensureNotMatched fails with CodeAlreadyMatched once a proxy holder is linked.
func (s *Service) ensureNotMatched(ctx context.Context, identity string) error {
	offer, err := s.records.MatchedOffer(ctx, identity)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read match")
	}
	if offer != "" {
		return dErrors.New(dErrors.CodeAlreadyMatched, "a proxy holder is already matched with this request")
	}
	return nil
}
