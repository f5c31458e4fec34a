package lifecycle

import (
	"context"
	"time"

	"procuration/internal/audit"
	"procuration/internal/locality"
	"procuration/internal/mail"
	ratelimitmodels "procuration/internal/ratelimit/models"
	"procuration/internal/request/models"
	"procuration/internal/token"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Mailer,Geocoder,LocalityStore,MatchCanceller

// Mailer sends one email synchronously.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Geocoder looks localities up by free text, in relevance order.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]locality.Candidate, error)
}

// LocalityStore persists locality metadata. Save is an idempotent upsert.
type LocalityStore interface {
	Save(ctx context.Context, code string, meta locality.Metadata) error
}

// MatchCanceller undoes the link between a requester and a proxy holder.
type MatchCanceller interface {
	Cancel(ctx context.Context, request, offer string) error
}

// Throttle limits submissions per origin.
type Throttle interface {
	Allow(ctx context.Context, origin string) (*ratelimitmodels.Result, error)
}

// Sessions issues the session handed out after email verification.
type Sessions interface {
	Issue(identity string, now time.Time) (string, error)
	TTL() time.Duration
}

// RecordStore is the request record persistence.
type RecordStore interface {
	RegisterRequester(ctx context.Context, identity string) (bool, error)
	Requesters(ctx context.Context) ([]string, error)
	MarkPending(ctx context.Context, identity string) error
	MarkVerified(ctx context.Context, identity string, at time.Time) error
	Verification(ctx context.Context, identity string) (models.Verification, error)
	IncrementChanges(ctx context.Context, identity string) (int64, error)
	SaveLocality(ctx context.Context, identity, code, label string, at time.Time) error
	DeleteLocality(ctx context.Context, identity string) error
	SetFlags(ctx context.Context, identity string, flags models.StatusFlags) (models.StatusFlags, error)
	MatchedOffer(ctx context.Context, identity string) (string, error)
	Load(ctx context.Context, identity string) (*models.Record, error)
}

// TokenRegistry mints and resolves tokens.
type TokenRegistry interface {
	Mint(ctx context.Context, kind token.Kind, payload token.Payload) (string, error)
	Resolve(ctx context.Context, kind token.Kind, tok string) (token.Payload, error)
}

// AuditPublisher is re-exported so callers need not import the audit package.
type AuditPublisher = audit.Publisher
