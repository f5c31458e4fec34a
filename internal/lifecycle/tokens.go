package lifecycle

import (
	"context"

	"procuration/internal/audit"
	"procuration/internal/request/models"
	"procuration/internal/token"
	dErrors "procuration/pkg/domain-errors"
)

// AcknowledgeConfirmation sets the confirmation-acknowledged flag of the
// identity bound to tok. Acknowledging twice, with the same token or another,
// leaves the flag set once.
func (s *Service) AcknowledgeConfirmation(ctx context.Context, tok string) (identity string, err error) {
	ctx, done := s.begin(ctx, "acknowledge_confirmation")
	defer done(&err)

	payload, err := s.tokens.Resolve(ctx, token.KindConfirmation, tok)
	if err != nil {
		return "", tokenError(err)
	}
	if _, err := s.records.SetFlags(ctx, payload.Identity, models.FlagConfirmationAcknowledged); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
	}

	s.logAudit(ctx, audit.ActionConfirmationAcked, "subject", payload.Identity)
	return payload.Identity, nil
}

// CheckCancellation resolves a cancellation token without acting on it.
func (s *Service) CheckCancellation(ctx context.Context, tok string) (pair token.Payload, err error) {
	ctx, done := s.begin(ctx, "check_cancellation")
	defer done(&err)

	payload, err := s.tokens.Resolve(ctx, token.KindCancellation, tok)
	if err != nil {
		return token.Payload{}, tokenError(err)
	}
	return payload, nil
}

// Cancel undoes the match bound to tok. With withDelete the requester also
// opts out: the locality choice is removed, the change counter is kept.
// The token stays valid, so cancelling again repeats the collaborator call.
func (s *Service) Cancel(ctx context.Context, tok string, withDelete bool) (result *CancelResult, err error) {
	ctx, done := s.begin(ctx, "cancel")
	defer done(&err)

	pair, err := s.tokens.Resolve(ctx, token.KindCancellation, tok)
	if err != nil {
		return nil, tokenError(err)
	}

	if err := s.matches.Cancel(ctx, pair.Identity, pair.Offer); err != nil {
		s.logger.ErrorContext(ctx, "match cancellation failed", "email", pair.Identity, "offer", pair.Offer, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeExternalFailure, "failed to cancel match")
	}

	if withDelete {
		if err := s.deleteLocality(ctx, pair.Identity); err != nil {
			return nil, err
		}
	}

	s.logAudit(ctx, audit.ActionCancelled,
		"subject", pair.Identity,
		"offer", pair.Offer,
		"with_delete", withDelete,
	)
	return &CancelResult{Identity: pair.Identity, Offer: pair.Offer, LocalityDeleted: withDelete}, nil
}

func (s *Service) deleteLocality(ctx context.Context, identity string) error {
	unlock, err := s.locker.Lock(ctx, models.LockKey(identity))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock request")
	}
	defer unlock()

	if err := s.records.DeleteLocality(ctx, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete locality")
	}
	return nil
}

// IssueConfirmationToken mints the token emailed to a matched requester so
// they can acknowledge the match.
func (s *Service) IssueConfirmationToken(ctx context.Context, identity string) (string, error) {
	tok, err := s.tokens.Mint(ctx, token.KindConfirmation, token.Payload{Identity: identity})
	if err != nil {
		return "", mintError(err)
	}
	return tok, nil
}

// IssueCancellationToken mints the token that lets identity cancel its match
// with offer.
func (s *Service) IssueCancellationToken(ctx context.Context, identity, offer string) (string, error) {
	tok, err := s.tokens.Mint(ctx, token.KindCancellation, token.Payload{Identity: identity, Offer: offer})
	if err != nil {
		return "", mintError(err)
	}
	return tok, nil
}

func mintError(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid token payload")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token")
}

// Requesters lists every identity that ever submitted, most recent first.
func (s *Service) Requesters(ctx context.Context) ([]string, error) {
	list, err := s.records.Requesters(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requesters")
	}
	return list, nil
}
