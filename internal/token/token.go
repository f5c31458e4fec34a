// Package token mints opaque, unguessable tokens and binds each one to the
// identity (or identity pair) allowed to perform a transition.
//
// Bindings are never expired or deleted: resolving a token any number of
// times yields the same payload, so a link clicked from two devices works
// twice. A superseded token therefore keeps resolving; only tokens that were
// never minted report ErrNotFound.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"procuration/internal/kv"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/platform/sentinel"
)

// Kind selects the namespace a token lives in. A token minted for one kind
// never resolves as another.
type Kind string

const (
	KindVerification Kind = "verification"
	KindConfirmation Kind = "confirmation"
	KindCancellation Kind = "cancellation"
)

// Key prefixes, one namespace per kind. Verification tokens share the
// requests: namespace with request records; UUIDs never collide with
// identity keys, which always contain '@'.
const (
	verificationKeyPrefix = "requests:"
	confirmationKeyPrefix = "requests:confirmations:"
	cancellationKeyPrefix = "requests:cancellations:"
)

// Payload is what a token authorizes. Offer is set only for cancellation
// tokens, which bind the requester to its matched proxy holder.
type Payload struct {
	Identity string `json:"request"`
	Offer    string `json:"offer,omitempty"`
}

// Generator produces token strings. The default is a random (v4) UUID.
type Generator func() string

// Registry mints and resolves tokens over a kv.Store.
type Registry struct {
	store    kv.Store
	generate Generator
}

// Option configures a Registry.
type Option func(*Registry)

// WithGenerator overrides the token generator (tests use a deterministic one).
func WithGenerator(g Generator) Option {
	return func(r *Registry) {
		if g != nil {
			r.generate = g
		}
	}
}

// New constructs a Registry.
func New(store kv.Store, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		generate: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mint stores a fresh token bound to payload and returns it.
func (r *Registry) Mint(ctx context.Context, kind Kind, payload Payload) (string, error) {
	if err := payload.validate(kind); err != nil {
		return "", err
	}
	value, err := encode(kind, payload)
	if err != nil {
		return "", err
	}
	key, err := keyFor(kind, "")
	if err != nil {
		return "", err
	}

	tok := r.generate()
	if err := r.store.Set(ctx, key+tok, value); err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}
	return tok, nil
}

// Resolve returns the payload bound to tok. Unknown tokens return
// sentinel.ErrNotFound (wrapped).
func (r *Registry) Resolve(ctx context.Context, kind Kind, tok string) (Payload, error) {
	key, err := keyFor(kind, tok)
	if err != nil {
		return Payload{}, err
	}
	if !wellFormed(tok) {
		return Payload{}, fmt.Errorf("%s token: %w", kind, sentinel.ErrNotFound)
	}

	value, err := r.store.Get(ctx, key)
	if err != nil {
		return Payload{}, err
	}
	return decode(kind, value)
}

func (p Payload) validate(kind Kind) error {
	if strings.TrimSpace(p.Identity) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "token payload requires an identity")
	}
	switch kind {
	case KindCancellation:
		if strings.TrimSpace(p.Offer) == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "cancellation token requires an offer identity")
		}
	default:
		if p.Offer != "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "only cancellation tokens carry an offer identity")
		}
	}
	return nil
}

func keyFor(kind Kind, tok string) (string, error) {
	switch kind {
	case KindVerification:
		return verificationKeyPrefix + tok, nil
	case KindConfirmation:
		return confirmationKeyPrefix + tok, nil
	case KindCancellation:
		return cancellationKeyPrefix + tok, nil
	default:
		return "", dErrors.New(dErrors.CodeInvariantViolation, "unknown token kind: "+string(kind))
	}
}

// reserved are the non-token keys directly under the requests: namespace.
var reserved = map[string]bool{
	"all":           true,
	"confirmations": true,
	"cancellations": true,
}

// wellFormed rejects tokens that could address a non-token key, such as
// "a@x.com:valid" or "all" in the shared requests: namespace.
func wellFormed(tok string) bool {
	return tok != "" && !strings.ContainsAny(tok, ":@/ ") && !reserved[tok]
}

// Verification and confirmation tokens store the bare identity; cancellation
// tokens store the pair as JSON.
func encode(kind Kind, p Payload) (string, error) {
	if kind != KindCancellation {
		return p.Identity, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode cancellation payload: %w", err)
	}
	return string(raw), nil
}

func decode(kind Kind, value string) (Payload, error) {
	if kind != KindCancellation {
		return Payload{Identity: value}, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return Payload{}, errors.Join(fmt.Errorf("decode cancellation payload: %w", err), sentinel.ErrInvalidState)
	}
	if p.Identity == "" || p.Offer == "" {
		return Payload{}, fmt.Errorf("cancellation payload incomplete: %w", sentinel.ErrInvalidState)
	}
	return p, nil
}
