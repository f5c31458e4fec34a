package e2e

import (
	"github.com/cucumber/godog"

	"procuration/e2e/steps/backoffice"
	"procuration/e2e/steps/common"
	"procuration/e2e/steps/requester"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	requester.RegisterSteps(ctx, tc)
	backoffice.RegisterSteps(ctx, tc)
}
