// Package matching records and clears the link between a requester and the
// proxy holder who accepted their request. Choosing who to match is out of
// scope; this package only owns the linkage keys.
package matching

import (
	"context"
	"errors"
	"fmt"

	"procuration/internal/kv"
	"procuration/internal/request/models"
	"procuration/pkg/platform/sentinel"
)

// ErrAlreadyMatched is returned by Match when either side already has a link.
var ErrAlreadyMatched = errors.New("already matched")

// OfferMatchKey holds the requester an offer is matched with.
func OfferMatchKey(offer string) string {
	return "offers:" + models.SanitizeKeySegment(offer) + ":match"
}

// Store writes match links to the key-value store.
type Store struct {
	kv     kv.Store
	locker kv.Locker
}

func New(store kv.Store, locker kv.Locker) *Store {
	return &Store{kv: store, locker: locker}
}

// Match links request and offer. It holds the requester's lock so it cannot
// interleave with a locality change for the same requester.
func (s *Store) Match(ctx context.Context, request, offer string) error {
	unlock, err := s.locker.Lock(ctx, models.LockKey(request))
	if err != nil {
		return fmt.Errorf("lock %s: %w", request, err)
	}
	defer unlock()

	ok, err := s.kv.SetIfAbsent(ctx, OfferMatchKey(offer), request)
	if err != nil {
		return fmt.Errorf("link offer: %w", err)
	}
	if !ok {
		return ErrAlreadyMatched
	}
	ok, err = s.kv.SetIfAbsent(ctx, models.MatchKey(request), offer)
	if err != nil || !ok {
		_ = s.kv.Delete(ctx, OfferMatchKey(offer))
		if err != nil {
			return fmt.Errorf("link request: %w", err)
		}
		return ErrAlreadyMatched
	}
	return nil
}

// Cancel removes the link between request and offer. Cancelling a link that
// no longer exists succeeds, so replaying a cancellation token is harmless.
// A link to a different offer is left alone.
func (s *Store) Cancel(ctx context.Context, request, offer string) error {
	unlock, err := s.locker.Lock(ctx, models.LockKey(request))
	if err != nil {
		return fmt.Errorf("lock %s: %w", request, err)
	}
	defer unlock()

	current, err := s.kv.Get(ctx, models.MatchKey(request))
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read match: %w", err)
	case current == offer:
		if err := s.kv.Delete(ctx, models.MatchKey(request)); err != nil {
			return fmt.Errorf("unlink request: %w", err)
		}
	}

	linked, err := s.kv.Get(ctx, OfferMatchKey(offer))
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read offer match: %w", err)
	case linked == request:
		if err := s.kv.Delete(ctx, OfferMatchKey(offer)); err != nil {
			return fmt.Errorf("unlink offer: %w", err)
		}
	}
	return nil
}

// OfferOf returns the offer matched with request, "" when none.
func (s *Store) OfferOf(ctx context.Context, request string) (string, error) {
	v, err := s.kv.Get(ctx, models.MatchKey(request))
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read match: %w", err)
	}
	return v, nil
}
