// Package export dumps request records for the statistics and follow-up
// spreadsheets the volunteers work from.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"procuration/internal/request/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" and "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want csv or json)", s)
	}
}

// ParseState validates a --state filter. The empty string keeps everyone.
func ParseState(s string) (models.State, error) {
	switch st := models.State(s); st {
	case "", models.StateNew, models.StateSubmitted, models.StateVerified,
		models.StateLocalityChosen, models.StateMatched, models.StateConfirmed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown state %q", s)
	}
}

// Records is the read side of the record store.
type Records interface {
	Requesters(ctx context.Context) ([]string, error)
	Load(ctx context.Context, identity string) (*models.Record, error)
}

// Row is one exported requester.
type Row struct {
	Email        string       `json:"email"`
	State        models.State `json:"state"`
	Verification string       `json:"verification"`
	VerifiedAt   *time.Time   `json:"verified_at,omitempty"`
	Locality     string       `json:"insee,omitempty"`
	Label        string       `json:"commune,omitempty"`
	Changes      int64        `json:"changes"`
	CreatedAt    *time.Time   `json:"date,omitempty"`
	Offer        string       `json:"match,omitempty"`
	Confirmed    bool         `json:"confirmed"`
}

func rowFrom(rec *models.Record) Row {
	return Row{
		Email:        rec.Identity,
		State:        rec.State(),
		Verification: rec.Verification.Status.String(),
		VerifiedAt:   rec.Verification.VerifiedAt,
		Locality:     rec.LocalityCode,
		Label:        rec.LocalityLabel,
		Changes:      rec.ChangeCount,
		CreatedAt:    rec.CreatedAt,
		Offer:        rec.MatchedOffer,
		Confirmed:    rec.Flags.Has(models.FlagConfirmationAcknowledged),
	}
}

// Options filters the export. An empty State keeps every requester.
type Options struct {
	Format Format
	State  models.State
}

// Write loads every requester and writes the matching ones to w. It returns
// the number of rows written.
func Write(ctx context.Context, records Records, w io.Writer, opts Options) (int, error) {
	identities, err := records.Requesters(ctx)
	if err != nil {
		return 0, fmt.Errorf("list requesters: %w", err)
	}

	var enc rowEncoder
	switch opts.Format {
	case FormatJSON:
		enc = &jsonEncoder{enc: json.NewEncoder(w)}
	default:
		enc = newCSVEncoder(w)
	}
	if err := enc.header(); err != nil {
		return 0, err
	}

	written := 0
	for _, identity := range identities {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		rec, err := records.Load(ctx, identity)
		if err != nil {
			return written, fmt.Errorf("load %s: %w", identity, err)
		}
		row := rowFrom(rec)
		if opts.State != "" && row.State != opts.State {
			continue
		}
		if err := enc.row(row); err != nil {
			return written, err
		}
		written++
	}
	return written, enc.flush()
}

type rowEncoder interface {
	header() error
	row(Row) error
	flush() error
}

// jsonEncoder writes one JSON object per line.
type jsonEncoder struct {
	enc *json.Encoder
}

func (e *jsonEncoder) header() error { return nil }

func (e *jsonEncoder) row(r Row) error { return e.enc.Encode(r) }

func (e *jsonEncoder) flush() error { return nil }

type csvEncoder struct {
	w *csv.Writer
}

func newCSVEncoder(w io.Writer) *csvEncoder {
	return &csvEncoder{w: csv.NewWriter(w)}
}

var csvHeader = []string{"email", "state", "verification", "verified_at", "insee", "commune", "changes", "date", "match", "confirmed"}

func (e *csvEncoder) header() error { return e.w.Write(csvHeader) }

func (e *csvEncoder) row(r Row) error {
	return e.w.Write([]string{
		r.Email,
		string(r.State),
		r.Verification,
		formatTime(r.VerifiedAt),
		r.Locality,
		r.Label,
		strconv.FormatInt(r.Changes, 10),
		formatTime(r.CreatedAt),
		r.Offer,
		strconv.FormatBool(r.Confirmed),
	})
}

func (e *csvEncoder) flush() error {
	e.w.Flush()
	return e.w.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
