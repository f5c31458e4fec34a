package locality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"procuration/internal/kv"
	"procuration/pkg/platform/sentinel"
)

// ErrUnknown is returned by MetadataStore.Find for a code never saved.
var ErrUnknown = errors.New("unknown locality")

// MetadataStore persists locality metadata under "communes:<code>".
type MetadataStore struct {
	kv kv.Store
}

func NewMetadataStore(store kv.Store) *MetadataStore {
	return &MetadataStore{kv: store}
}

func metadataKey(code string) string {
	return "communes:" + code
}

// Save upserts metadata for code. Saving the same value twice is a no-op.
func (s *MetadataStore) Save(ctx context.Context, code string, meta Metadata) error {
	meta.PostalCodes = postalCodes(meta.PostalCodes)
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal locality %s: %w", code, err)
	}
	if err := s.kv.Set(ctx, metadataKey(code), string(raw)); err != nil {
		return fmt.Errorf("save locality %s: %w", code, err)
	}
	return nil
}

func (s *MetadataStore) Find(ctx context.Context, code string) (*Metadata, error) {
	raw, err := s.kv.Get(ctx, metadataKey(code))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("find locality %s: %w", code, err)
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("locality %s: %w", code, sentinel.ErrInvalidState)
	}
	return &meta, nil
}

// MetadataFrom collapses ordered candidates into the metadata of the first
// one, keeping every candidate's postal code.
func MetadataFrom(cands []Candidate) Metadata {
	if len(cands) == 0 {
		return Metadata{}
	}
	codes := make([]string, 0, len(cands))
	for _, c := range cands {
		codes = append(codes, c.PostalCode)
	}
	return Metadata{
		Name:        cands[0].Name,
		Context:     cands[0].Context,
		PostalCodes: postalCodes(codes),
	}
}
