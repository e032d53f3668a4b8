package e2e

import (
	"github.com/cucumber/godog"

	"demandas/e2e/steps/common"
	"demandas/e2e/steps/form"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (authentication, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register form-specific steps
	form.RegisterSteps(ctx, tc)
}
