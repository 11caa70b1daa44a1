package e2e

import (
	"github.com/cucumber/godog"

	"bizhealth/e2e/steps/common"
	"bizhealth/e2e/steps/scoring"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	scoring.RegisterSteps(ctx, tc)
}
