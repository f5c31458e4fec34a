package lifecycle

import (
	"context"

	"procuration/internal/audit"
	"procuration/internal/mail"
	"procuration/internal/request/models"
	"procuration/internal/token"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/email"
	"procuration/pkg/requestcontext"
)

type submitInput struct {
	Email string `validate:"required,email,max=254"`
}

// Submit starts (or restarts) a request for rawEmail: it registers the
// identity, mints a verification token and emails the link. The origin for
// throttling is read from ctx.
//
// Submitting again mints another token; earlier links keep working.
func (s *Service) Submit(ctx context.Context, rawEmail string) (result *SubmitResult, err error) {
	ctx, done := s.begin(ctx, "submit")
	defer done(&err)

	if err := s.checkThrottle(ctx); err != nil {
		return nil, err
	}

	identity := email.Normalize(rawEmail)
	if err := validate.Struct(submitInput{Email: identity}); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email address is required")
	}

	verification, err := s.records.Verification(ctx, identity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read request")
	}
	result = &SubmitResult{Identity: identity}
	if verification.Status == models.VerificationAbsent {
		added, err := s.records.RegisterRequester(ctx, identity)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register requester")
		}
		result.NewRequester = added
		if added && s.metrics != nil {
			s.metrics.IncrementRequesters()
		}
	}

	tok, err := s.tokens.Mint(ctx, token.KindVerification, token.Payload{Identity: identity})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint verification token")
	}
	result.Token = tok

	if err := s.records.MarkPending(ctx, identity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
	}

	if err := s.mailer.Send(ctx, mail.VerificationMessage(s.host, identity, tok)); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementMailFailures()
		}
		s.logger.ErrorContext(ctx, "failed to send verification email", "email", identity, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeExternalFailure, "failed to send verification email")
	}

	s.logAudit(ctx, audit.ActionSubmitted, "subject", identity, "new_requester", result.NewRequester)
	return result, nil
}

func (s *Service) checkThrottle(ctx context.Context) error {
	if s.throttle == nil {
		return nil
	}
	res, err := s.throttle.Allow(ctx, requestcontext.Origin(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check throttle")
	}
	if !res.Allowed {
		if s.metrics != nil {
			s.metrics.IncrementThrottleRejections()
		}
		return dErrors.Wrap(&ThrottledError{RetryAfter: res.RetryAfter}, dErrors.CodeThrottled, "too many requests, try again later")
	}
	return nil
}

// VerifyEmail marks the identity bound to tok as verified and issues a
// session scoped to it.
func (s *Service) VerifyEmail(ctx context.Context, tok string) (result *VerifyResult, err error) {
	ctx, done := s.begin(ctx, "verify_email")
	defer done(&err)

	payload, err := s.tokens.Resolve(ctx, token.KindVerification, tok)
	if err != nil {
		return nil, tokenError(err)
	}

	now := requestcontext.Now(ctx)
	if err := s.records.MarkVerified(ctx, payload.Identity, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
	}

	session, err := s.sessions.Issue(payload.Identity, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}

	s.logAudit(ctx, audit.ActionVerified, "subject", payload.Identity)
	return &VerifyResult{
		Identity:  payload.Identity,
		Session:   session,
		ExpiresAt: now.Add(s.sessions.TTL()),
	}, nil
}
