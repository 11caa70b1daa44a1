package scoring

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers normalization, quality audit and anomaly steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &scoringSteps{tc: tc}

	ctx.Step(`^the company revenue is (\d+)$`, steps.companyRevenue)
	ctx.Step(`^a "([^"]*)" answer "([^"]*)" to question "([^"]*)"$`, steps.addAnswer)
	ctx.Step(`^I normalize the answers$`, steps.normalize)
	ctx.Step(`^question "([^"]*)" should score ([0-9.]+)$`, steps.questionShouldScore)

	ctx.Step(`^dimension "([^"]*)" reports (\d+) questions and (\d+) sub-indicators$`, steps.dimensionCounts)
	ctx.Step(`^dimension "([^"]*)" was skipped because "([^"]*)"$`, steps.dimensionSkipped)
	ctx.Step(`^I submit the quality observations for run "([^"]*)"$`, steps.submitObservations)

	ctx.Step(`^I check anomalies for run "([^"]*)"$`, steps.checkAnomalies)
	ctx.Step(`^I scan anomalies for runs "([^"]*)"$`, steps.scanAnomalies)
}

type scoringSteps struct {
	tc         TestContext
	revenue    float64
	answers    []map[string]any
	dimensions []map[string]any
}

func (s *scoringSteps) companyRevenue(ctx context.Context, revenue int) error {
	s.revenue = float64(revenue)
	return nil
}

func (s *scoringSteps) addAnswer(ctx context.Context, responseType, value, questionID string) error {
	s.answers = append(s.answers, map[string]any{
		"question_id":   questionID,
		"response_type": responseType,
		"value":         value,
	})
	return nil
}

func (s *scoringSteps) normalize(ctx context.Context) error {
	body := map[string]any{
		"responses": s.answers,
		"context":   map[string]any{"company_revenue": s.revenue},
	}
	return s.tc.POST("/v1/normalize", body)
}

func (s *scoringSteps) questionShouldScore(ctx context.Context, questionID, want string) error {
	expected, err := strconv.ParseFloat(want, 64)
	if err != nil {
		return err
	}
	scores, err := s.tc.GetResponseField("scores")
	if err != nil {
		return err
	}
	list, _ := scores.([]any)
	for _, item := range list {
		entry, _ := item.(map[string]any)
		if entry["question_id"] != questionID {
			continue
		}
		got, _ := entry["score"].(float64)
		if math.Abs(got-expected) > 0.01 {
			return fmt.Errorf("question %s scored %v, expected %v", questionID, got, expected)
		}
		return nil
	}
	return fmt.Errorf("no score returned for question %s", questionID)
}

func (s *scoringSteps) dimensionCounts(ctx context.Context, code string, questions, subIndicators int) error {
	s.dimensions = append(s.dimensions, map[string]any{
		"code":                     code,
		"questions_found":          questions,
		"sub_indicators_generated": subIndicators,
	})
	return nil
}

func (s *scoringSteps) dimensionSkipped(ctx context.Context, code, reason string) error {
	s.dimensions = append(s.dimensions, map[string]any{
		"code":           code,
		"skipped_reason": reason,
	})
	return nil
}

func (s *scoringSteps) submitObservations(ctx context.Context, runID string) error {
	return s.tc.POST("/v1/runs/"+runID+"/audit", map[string]any{"dimensions": s.dimensions})
}

func (s *scoringSteps) checkAnomalies(ctx context.Context, runID string) error {
	return s.tc.POST("/v1/runs/"+runID+"/anomalies", nil)
}

func (s *scoringSteps) scanAnomalies(ctx context.Context, runIDs string) error {
	var ids []string
	for _, id := range strings.Split(runIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return s.tc.POST("/v1/anomalies/scan", map[string]any{"run_ids": ids})
}
