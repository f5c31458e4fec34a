// Package store persists the per-identity request record on top of kv.Store.
//
// A record is not a single document: each field lives under its own key so
// that concurrent transitions touching different fields never overwrite each
// other. Every method is atomic for the key it writes and nothing more;
// multi-key sequences are serialized by the caller's per-identity lock.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"procuration/internal/kv"
	"procuration/internal/request/models"
	"procuration/pkg/platform/sentinel"
)

// pendingMarker is the stored value of the verified flag before verification.
const pendingMarker = "false"

// Store reads and writes request records.
type Store struct {
	kv kv.Store
}

// New wraps a kv.Store.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// RegisterRequester adds identity to the requesters list unless already
// present, reporting whether it was added.
func (s *Store) RegisterRequester(ctx context.Context, identity string) (bool, error) {
	added, err := s.kv.ListAppend(ctx, models.RequestersKey, identity)
	if err != nil {
		return false, fmt.Errorf("register requester: %w", err)
	}
	return added, nil
}

// Requesters lists every identity that ever submitted, most recent first.
func (s *Store) Requesters(ctx context.Context) ([]string, error) {
	list, err := s.kv.List(ctx, models.RequestersKey)
	if err != nil {
		return nil, fmt.Errorf("list requesters: %w", err)
	}
	return list, nil
}

// MarkPending resets the verified flag to pending. Called on every submission,
// so a resubmission after verification requires verifying again.
func (s *Store) MarkPending(ctx context.Context, identity string) error {
	if err := s.kv.Set(ctx, models.VerifiedKey(identity), pendingMarker); err != nil {
		return fmt.Errorf("mark pending: %w", err)
	}
	return nil
}

// MarkVerified records the verification instant.
func (s *Store) MarkVerified(ctx context.Context, identity string, at time.Time) error {
	if err := s.kv.Set(ctx, models.VerifiedKey(identity), at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// Verification reads the verified flag.
func (s *Store) Verification(ctx context.Context, identity string) (models.Verification, error) {
	raw, err := s.kv.Get(ctx, models.VerifiedKey(identity))
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Verification{Status: models.VerificationAbsent}, nil
	}
	if err != nil {
		return models.Verification{}, fmt.Errorf("read verification: %w", err)
	}
	if raw == pendingMarker {
		return models.Verification{Status: models.VerificationPending}, nil
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return models.Verification{}, fmt.Errorf("verification of %s: %w", identity, sentinel.ErrInvalidState)
	}
	return models.Verification{Status: models.VerificationVerified, VerifiedAt: &at}, nil
}

// IncrementChanges bumps the change counter and returns the post-increment
// value. The increment is never rolled back.
func (s *Store) IncrementChanges(ctx context.Context, identity string) (int64, error) {
	n, err := s.kv.Incr(ctx, models.ChangesKey(identity))
	if err != nil {
		return 0, fmt.Errorf("increment changes: %w", err)
	}
	return n, nil
}

// ChangeCount reads the change counter, 0 when absent.
func (s *Store) ChangeCount(ctx context.Context, identity string) (int64, error) {
	return s.readInt(ctx, models.ChangesKey(identity))
}

// SaveLocality stores the chosen locality code and display label, and the
// creation instant if this is the first accepted choice.
func (s *Store) SaveLocality(ctx context.Context, identity, code, label string, at time.Time) error {
	if err := s.kv.Set(ctx, models.LocalityKey(identity), code); err != nil {
		return fmt.Errorf("save locality: %w", err)
	}
	if _, err := s.kv.SetIfAbsent(ctx, models.CreatedKey(identity), at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save creation date: %w", err)
	}
	if err := s.kv.Set(ctx, models.LabelKey(identity), label); err != nil {
		return fmt.Errorf("save locality label: %w", err)
	}
	return nil
}

// DeleteLocality removes the locality choice. The change counter and the
// creation instant are kept.
func (s *Store) DeleteLocality(ctx context.Context, identity string) error {
	if err := s.kv.Delete(ctx, models.LocalityKey(identity), models.LabelKey(identity)); err != nil {
		return fmt.Errorf("delete locality: %w", err)
	}
	return nil
}

// Locality returns the chosen code, "" when none.
func (s *Store) Locality(ctx context.Context, identity string) (string, error) {
	return s.readString(ctx, models.LocalityKey(identity))
}

// SetFlags ORs flags into the status bitmask.
func (s *Store) SetFlags(ctx context.Context, identity string, flags models.StatusFlags) (models.StatusFlags, error) {
	v, err := s.kv.Or(ctx, models.FlagsKey(identity), int64(flags))
	if err != nil {
		return 0, fmt.Errorf("set flags: %w", err)
	}
	return models.StatusFlags(v), nil
}

// MatchedOffer returns the matched proxy holder, "" when unmatched.
func (s *Store) MatchedOffer(ctx context.Context, identity string) (string, error) {
	return s.readString(ctx, models.MatchKey(identity))
}

// Load assembles the full record. Absent fields read as zero values; an
// identity that never submitted loads with VerificationAbsent.
func (s *Store) Load(ctx context.Context, identity string) (*models.Record, error) {
	rec := &models.Record{Identity: identity}
	var err error

	if rec.Verification, err = s.Verification(ctx, identity); err != nil {
		return nil, err
	}
	if rec.LocalityCode, err = s.Locality(ctx, identity); err != nil {
		return nil, err
	}
	if rec.LocalityLabel, err = s.readString(ctx, models.LabelKey(identity)); err != nil {
		return nil, err
	}
	if rec.ChangeCount, err = s.ChangeCount(ctx, identity); err != nil {
		return nil, err
	}
	flags, err := s.readInt(ctx, models.FlagsKey(identity))
	if err != nil {
		return nil, err
	}
	rec.Flags = models.StatusFlags(flags)
	if rec.MatchedOffer, err = s.MatchedOffer(ctx, identity); err != nil {
		return nil, err
	}

	created, err := s.readString(ctx, models.CreatedKey(identity))
	if err != nil {
		return nil, err
	}
	if created != "" {
		at, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("creation date of %s: %w", identity, sentinel.ErrInvalidState)
		}
		rec.CreatedAt = &at
	}
	return rec, nil
}

func (s *Store) readString(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) readInt(ctx context.Context, key string) (int64, error) {
	raw, err := s.readString(ctx, key)
	if err != nil || raw == "" {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, sentinel.ErrInvalidState)
	}
	return n, nil
}
