package common

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the common steps need from the scenario context.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	SetOrigin(ip string)
	LastStatus() int
	LastBody() []byte
	LastHeader(key string) string
	ResponseField(field string) (any, error)
	AuditActions() []string
	AddLocality(code, name, context string, postalCodes ...string)
	FailGeocoder(failing bool)
}

// RegisterSteps registers background, generic request, and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background
	ctx.Step(`^the address API knows "([^"]*)" as "([^"]*)" in "([^"]*)" with postal codes "([^"]*)"$`, steps.addressAPIKnows)
	ctx.Step(`^the address API is down$`, steps.addressAPIDown)
	ctx.Step(`^the address API is back$`, steps.addressAPIBack)
	ctx.Step(`^I come from "([^"]*)"$`, steps.comeFrom)

	// Generic requests
	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.errorShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBeString)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.fieldShouldBeNumber)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.bodyShouldNotContain)
	ctx.Step(`^the response header "([^"]*)" should be set$`, steps.headerShouldBeSet)
	ctx.Step(`^the audit trail should contain "([^"]*)"$`, steps.auditShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) addressAPIKnows(ctx context.Context, code, name, area, postalCodes string) error {
	s.tc.AddLocality(code, name, area, strings.Split(postalCodes, ",")...)
	return nil
}

func (s *commonSteps) addressAPIDown(ctx context.Context) error {
	s.tc.FailGeocoder(true)
	return nil
}

func (s *commonSteps) addressAPIBack(ctx context.Context) error {
	s.tc.FailGeocoder(false)
	return nil
}

func (s *commonSteps) comeFrom(ctx context.Context, ip string) error {
	s.tc.SetOrigin(ip)
	return nil
}

func (s *commonSteps) postWithBody(ctx context.Context, path string, body *godog.DocString) error {
	var payload any
	if err := json.Unmarshal([]byte(body.Content), &payload); err != nil {
		return fmt.Errorf("step body is not JSON: %w", err)
	}
	return s.tc.POST(path, payload)
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.LastStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d (body %s)", want, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) errorShouldBe(ctx context.Context, want string) error {
	return s.fieldShouldBeString(ctx, "error", want)
}

func (s *commonSteps) fieldShouldBeString(ctx context.Context, field, want string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got, ok := v.(string); !ok || got != want {
		return fmt.Errorf("expected %s to be %q, got %v", field, want, v)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeNumber(ctx context.Context, field string, want int) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	// encoding/json decodes numbers into float64
	if got, ok := v.(float64); !ok || int(got) != want {
		return fmt.Errorf("expected %s to be %d, got %v", field, want, v)
	}
	return nil
}

func (s *commonSteps) bodyShouldNotContain(ctx context.Context, needle string) error {
	if strings.Contains(string(s.tc.LastBody()), needle) {
		return fmt.Errorf("response unexpectedly contains %q: %s", needle, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) headerShouldBeSet(ctx context.Context, key string) error {
	if s.tc.LastHeader(key) == "" {
		return fmt.Errorf("expected header %s to be set", key)
	}
	return nil
}

func (s *commonSteps) auditShouldContain(ctx context.Context, action string) error {
	actions := s.tc.AuditActions()
	if !slices.Contains(actions, action) {
		return fmt.Errorf("audit action %q not published, got %v", action, actions)
	}
	return nil
}
