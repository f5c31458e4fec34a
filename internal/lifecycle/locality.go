package lifecycle

import (
	"context"
	"strings"

	"procuration/internal/audit"
	"procuration/internal/locality"
	"procuration/internal/mail"
	"procuration/internal/request/models"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/requestcontext"
)

// ChooseLocality records the locality an authenticated requester votes in.
//
// The first geocoding candidate is authoritative; the postal codes of every
// candidate are kept in the locality metadata. The change counter is
// incremented before the cap is checked and never decremented, so the
// attempt past the cap still counts.
func (s *Service) ChooseLocality(ctx context.Context, identity, query string) (result *LocalityResult, err error) {
	ctx, done := s.begin(ctx, "choose_locality")
	defer done(&err)

	if err := requireSession(identity); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "locality cannot be empty")
	}
	if err := s.ensureNotMatched(ctx, identity); err != nil {
		return nil, err
	}

	cands, err := s.geocoder.Search(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "geocoding failed", "email", identity, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeExternalFailure, "locality lookup failed")
	}
	if len(cands) == 0 {
		return nil, dErrors.New(dErrors.CodeUnknownLocality, "unknown locality")
	}

	unlock, err := s.locker.Lock(ctx, models.LockKey(identity))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock request")
	}
	defer unlock()

	// A match may have landed while geocoding; matching takes the same lock,
	// so this check holds until the write below.
	if err := s.ensureNotMatched(ctx, identity); err != nil {
		return nil, err
	}

	count, err := s.records.IncrementChanges(ctx, identity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count locality change")
	}
	if !models.ChangeAllowed(count, s.maxChanges) {
		s.logAudit(ctx, audit.ActionChangeLimitReached, "subject", identity, "change_count", count)
		return nil, dErrors.New(dErrors.CodeChangeLimitExceeded, "the locality cannot be changed anymore")
	}

	chosen := cands[0]
	meta := locality.MetadataFrom(cands)
	if err := s.localities.Save(ctx, chosen.Code, meta); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeExternalFailure, "failed to save locality")
	}

	label := models.LocalityLabel(chosen.Name, chosen.Context)
	if err := s.records.SaveLocality(ctx, identity, chosen.Code, label, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save request locality")
	}

	s.logAudit(ctx, audit.ActionLocalityChosen, "subject", identity, "locality", chosen.Code, "change_count", count)
	return &LocalityResult{
		Code:        chosen.Code,
		Name:        chosen.Name,
		Context:     chosen.Context,
		Label:       label,
		PostalCodes: meta.PostalCodes,
		ChangeCount: count,
	}, nil
}

// LocalityView returns what the locality step shows an authenticated,
// unmatched requester.
func (s *Service) LocalityView(ctx context.Context, identity string) (view *LocalityView, err error) {
	ctx, done := s.begin(ctx, "locality_view")
	defer done(&err)

	if err := requireSession(identity); err != nil {
		return nil, err
	}
	if err := s.ensureNotMatched(ctx, identity); err != nil {
		return nil, err
	}

	rec, err := s.records.Load(ctx, identity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	return &LocalityView{
		Identity:    identity,
		Code:        rec.LocalityCode,
		Label:       rec.LocalityLabel,
		ChangesLeft: max(s.maxChanges-rec.ChangeCount, 0),
	}, nil
}

type consularListInput struct {
	List string `validate:"required,max=200"`
}

// RequestConsularList forwards an authenticated requester's wish to vote
// from a consular list to the consular-list desk.
func (s *Service) RequestConsularList(ctx context.Context, identity, list string) (err error) {
	ctx, done := s.begin(ctx, "consular_list")
	defer done(&err)

	if err := requireSession(identity); err != nil {
		return err
	}
	list = strings.TrimSpace(list)
	if err := validate.Struct(consularListInput{List: list}); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "consular list cannot be empty")
	}
	if s.consularListDest == "" {
		return dErrors.New(dErrors.CodeInternal, "no consular list destination configured")
	}

	if err := s.mailer.Send(ctx, mail.ConsularListMessage(s.consularListDest, identity, list)); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementMailFailures()
		}
		s.logger.ErrorContext(ctx, "failed to send consular list request", "email", identity, "error", err)
		return dErrors.Wrap(err, dErrors.CodeExternalFailure, "failed to send consular list request")
	}

	s.logAudit(ctx, audit.ActionConsularListRequested, "subject", identity, "list", list)
	return nil
}
