package requester

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"procuration/internal/mail"
)

// TestContext is what the requester steps need from the scenario context.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	LastStatus() int
	LastBody() []byte
	ForgetSession() error
	MailsTo(addr string) []mail.Message
	VerificationToken(addr string) (string, error)
	Save(name, value string)
}

// RegisterSteps registers the steps a requester goes through: submitting,
// verifying the address, then picking a locality.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &requesterSteps{tc: tc}

	// Step one
	ctx.Step(`^I submit my email "([^"]*)"$`, steps.submitEmail)
	ctx.Step(`^I submit my email "([^"]*)" (\d+) times$`, steps.submitEmailNTimes)
	ctx.Step(`^"([^"]*)" should receive (\d+) verification mails?$`, steps.shouldReceiveVerificationMails)
	ctx.Step(`^I open the verification link sent to "([^"]*)"$`, steps.openVerificationLink)
	ctx.Step(`^I have a verified request as "([^"]*)"$`, steps.haveVerifiedRequest)
	ctx.Step(`^I drop my session$`, steps.dropSession)

	// Step two
	ctx.Step(`^I choose the locality "([^"]*)"$`, steps.chooseLocality)
	ctx.Step(`^I have chosen the locality "([^"]*)" (\d+) times$`, steps.chooseLocalityNTimes)
	ctx.Step(`^I look at my locality$`, steps.lookAtLocality)
	ctx.Step(`^I ask for the consular list "([^"]*)"$`, steps.askConsularList)
	ctx.Step(`^"([^"]*)" should receive a mail mentioning "([^"]*)"$`, steps.shouldReceiveMailMentioning)
}

type requesterSteps struct {
	tc TestContext
}

func (s *requesterSteps) submitEmail(ctx context.Context, email string) error {
	return s.tc.POST("/etape-1", map[string]string{"email": email})
}

func (s *requesterSteps) submitEmailNTimes(ctx context.Context, email string, n int) error {
	for range n {
		if err := s.submitEmail(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

func (s *requesterSteps) shouldReceiveVerificationMails(ctx context.Context, email string, want int) error {
	got := 0
	for _, m := range s.tc.MailsTo(email) {
		if strings.Contains(m.Text, "/etape-1/confirmation/") {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("expected %d verification mails to %s, got %d", want, email, got)
	}
	return nil
}

func (s *requesterSteps) openVerificationLink(ctx context.Context, email string) error {
	tok, err := s.tc.VerificationToken(email)
	if err != nil {
		return err
	}
	s.tc.Save("verification:"+email, tok)
	return s.tc.GET("/etape-1/confirmation/" + tok)
}

func (s *requesterSteps) haveVerifiedRequest(ctx context.Context, email string) error {
	if err := s.submitEmail(ctx, email); err != nil {
		return err
	}
	if err := s.expectStatus(202); err != nil {
		return err
	}
	if err := s.openVerificationLink(ctx, email); err != nil {
		return err
	}
	return s.expectStatus(200)
}

func (s *requesterSteps) dropSession(ctx context.Context) error {
	return s.tc.ForgetSession()
}

func (s *requesterSteps) chooseLocality(ctx context.Context, query string) error {
	return s.tc.POST("/etape-2", map[string]string{"commune": query})
}

func (s *requesterSteps) chooseLocalityNTimes(ctx context.Context, query string, n int) error {
	for range n {
		if err := s.chooseLocality(ctx, query); err != nil {
			return err
		}
		if err := s.expectStatus(200); err != nil {
			return err
		}
	}
	return nil
}

func (s *requesterSteps) lookAtLocality(ctx context.Context) error {
	return s.tc.GET("/etape-2")
}

func (s *requesterSteps) askConsularList(ctx context.Context, list string) error {
	return s.tc.POST("/etape-2-liste-consulaire", map[string]string{"liste": list})
}

func (s *requesterSteps) shouldReceiveMailMentioning(ctx context.Context, addr, needle string) error {
	for _, m := range s.tc.MailsTo(addr) {
		if strings.Contains(m.Text, needle) || strings.Contains(m.Subject, needle) {
			return nil
		}
	}
	return fmt.Errorf("no mail to %s mentions %q", addr, needle)
}

func (s *requesterSteps) expectStatus(want int) error {
	if got := s.tc.LastStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d (body %s)", want, got, s.tc.LastBody())
	}
	return nil
}
