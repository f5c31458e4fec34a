package backoffice

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the back-office steps need from the scenario context.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	SetAdmin(enabled bool)
	LastStatus() int
	LastBody() []byte
	ResponseField(field string) (any, error)
	Save(name, value string)
	Saved(name string) (string, error)
}

// RegisterSteps registers the matching back-office steps and the links it
// hands out to requesters.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &backofficeSteps{tc: tc}

	ctx.Step(`^I act as the back office$`, steps.actAsBackOffice)
	ctx.Step(`^I act without back-office credentials$`, steps.actWithoutCredentials)
	ctx.Step(`^the back office matches "([^"]*)" with offer "([^"]*)"$`, steps.matchRequest)
	ctx.Step(`^the back office issues a confirmation link for "([^"]*)"$`, steps.issueConfirmation)
	ctx.Step(`^the back office issues a cancellation link for "([^"]*)" and offer "([^"]*)"$`, steps.issueCancellation)
	ctx.Step(`^the requesters list should be "([^"]*)"$`, steps.requestersShouldBe)

	ctx.Step(`^I open the confirmation link$`, steps.openConfirmation)
	ctx.Step(`^I open the cancellation link$`, steps.openCancellation)
	ctx.Step(`^I open the cancellation link "([^"]*)"$`, steps.openCancellationToken)
	ctx.Step(`^I cancel the match and (keep|delete) my locality$`, steps.cancelMatch)
}

type backofficeSteps struct {
	tc TestContext
}

func (s *backofficeSteps) actAsBackOffice(ctx context.Context) error {
	s.tc.SetAdmin(true)
	return nil
}

func (s *backofficeSteps) actWithoutCredentials(ctx context.Context) error {
	s.tc.SetAdmin(false)
	return nil
}

// asBackOffice runs fn with the admin credential and drops it afterwards, so
// the requester steps that follow stay unprivileged.
func (s *backofficeSteps) asBackOffice(fn func() error) error {
	s.tc.SetAdmin(true)
	defer s.tc.SetAdmin(false)
	return fn()
}

func (s *backofficeSteps) matchRequest(ctx context.Context, email, offer string) error {
	return s.asBackOffice(func() error {
		if err := s.tc.POST("/admin/matches", map[string]string{"email": email, "offer": offer}); err != nil {
			return err
		}
		return s.expectStatus(204)
	})
}

func (s *backofficeSteps) issueConfirmation(ctx context.Context, email string) error {
	return s.asBackOffice(func() error {
		if err := s.tc.POST("/admin/confirmation-tokens", map[string]string{"email": email}); err != nil {
			return err
		}
		return s.saveToken("confirmation")
	})
}

func (s *backofficeSteps) issueCancellation(ctx context.Context, email, offer string) error {
	return s.asBackOffice(func() error {
		if err := s.tc.POST("/admin/cancellation-tokens", map[string]string{"email": email, "offer": offer}); err != nil {
			return err
		}
		return s.saveToken("cancellation")
	})
}

func (s *backofficeSteps) saveToken(name string) error {
	if err := s.expectStatus(201); err != nil {
		return err
	}
	tok, err := s.tc.ResponseField("token")
	if err != nil {
		return err
	}
	str, ok := tok.(string)
	if !ok || str == "" {
		return fmt.Errorf("token is not a string: %v", tok)
	}
	s.tc.Save(name, str)
	return nil
}

func (s *backofficeSteps) requestersShouldBe(ctx context.Context, want string) error {
	return s.asBackOffice(func() error {
		if err := s.tc.GET("/admin/requesters"); err != nil {
			return err
		}
		if err := s.expectStatus(200); err != nil {
			return err
		}
		var body struct {
			Requesters []string `json:"requesters"`
		}
		if err := json.Unmarshal(s.tc.LastBody(), &body); err != nil {
			return err
		}
		expected := strings.Split(want, ",")
		if !slices.Equal(body.Requesters, expected) {
			return fmt.Errorf("expected requesters %v, got %v", expected, body.Requesters)
		}
		return nil
	})
}

func (s *backofficeSteps) openConfirmation(ctx context.Context) error {
	tok, err := s.tc.Saved("confirmation")
	if err != nil {
		return err
	}
	return s.tc.GET("/confirmation/" + tok)
}

func (s *backofficeSteps) openCancellation(ctx context.Context) error {
	tok, err := s.tc.Saved("cancellation")
	if err != nil {
		return err
	}
	return s.openCancellationToken(ctx, tok)
}

func (s *backofficeSteps) openCancellationToken(ctx context.Context, tok string) error {
	return s.tc.GET("/annulation/" + tok)
}

func (s *backofficeSteps) cancelMatch(ctx context.Context, mode string) error {
	tok, err := s.tc.Saved("cancellation")
	if err != nil {
		return err
	}
	return s.tc.POST("/annulation/"+tok, map[string]string{"type": mode})
}

func (s *backofficeSteps) expectStatus(want int) error {
	if got := s.tc.LastStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d (body %s)", want, got, s.tc.LastBody())
	}
	return nil
}
