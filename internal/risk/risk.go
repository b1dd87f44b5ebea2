// Package risk classifies analyzed failures into root-cause categories and
// derives the run-level release verdict.
package risk

import (
	"fmt"
	"strings"

	"github.com/kamilpajak/fring/pkg/models"
)

// Category is a failure root-cause bucket.
type Category string

const (
	CategoryLocator     Category = "Locator"
	CategoryApplication Category = "Application"
	CategoryEnvironment Category = "Environment"
	CategoryTest        Category = "Test Issue"
)

// Canonical verdict reasons.
const (
	ReasonAllPassed        = "All tests passed successfully"
	ReasonMinorInstability = "Minor test instability"
	ReasonAppDefects       = "Application defects detected"
	ReasonEnvInstability   = "Environment/Infrastructure instability"
	ReasonMultipleTimeouts = "Multiple timeouts detected"
	ReasonHighFailureRate  = "High failure rate"
	ReasonLocatorIssues    = "Multiple locator issues (UI instability)"
	ReasonModerateRate     = "Moderate failure rate"
)

// classificationRules is the ordered decision table: first match wins.
// Matching is a case-insensitive substring search over the analysis text
// concatenated with the error message, so the free-text diagnosis takes
// priority but a bare error message still classifies when no analysis
// service is configured. Unknown failures land in the default test-issue
// bucket rather than aborting the run.
var classificationRules = []struct {
	keywords []string
	category Category
}{
	{[]string{"locator", "selector"}, CategoryLocator},
	{[]string{"application", "backend", "server", "api", "data mismatch"}, CategoryApplication},
	{[]string{"environment", "network", "infra", "configuration"}, CategoryEnvironment},
}

// Classify returns the root-cause category for a single analyzed failure.
func Classify(rec models.AnalysisRecord) Category {
	text := strings.ToLower(rec.AIAnalysis + " " + rec.ErrorMessage)
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return CategoryTest
}

// IsTimeout reports whether the failure is timeout-flavored, either by
// status or by error text. Orthogonal to Classify: a timeout can land in
// any category.
func IsTimeout(rec models.AnalysisRecord) bool {
	if rec.Status == models.StatusTimedOut {
		return true
	}
	err := strings.ToLower(rec.ErrorMessage)
	return strings.Contains(err, "timeout") || strings.Contains(err, "timed out")
}

// Score computes the RiskSummary for a run. It is a pure function of its
// input: the same records and total always produce the same summary.
func Score(records []models.AnalysisRecord, totalTests int) models.RiskSummary {
	var locator, app, env, testIssue, timeouts int

	for _, rec := range records {
		switch Classify(rec) {
		case CategoryLocator:
			locator++
		case CategoryApplication:
			app++
		case CategoryEnvironment:
			env++
		default:
			testIssue++
		}
		if IsTimeout(rec) {
			timeouts++
		}
	}

	totalFailures := len(records)

	rate := 0.0
	if totalTests > 0 {
		rate = float64(totalFailures) / float64(totalTests) * 100
	}

	level := models.RiskLow
	decision := models.DecisionProceed
	reason := ReasonMinorInstability
	if totalFailures == 0 {
		reason = ReasonAllPassed
	}

	// Strict priority: HIGH rules before MEDIUM rules, first match wins.
	switch {
	case app > 0:
		level, decision, reason = models.RiskHigh, models.DecisionBlock, ReasonAppDefects
	case env > 0:
		level, decision, reason = models.RiskHigh, models.DecisionBlock, ReasonEnvInstability
	case timeouts >= 2:
		level, decision, reason = models.RiskHigh, models.DecisionBlock, ReasonMultipleTimeouts
	case rate > 30:
		level, decision, reason = models.RiskHigh, models.DecisionBlock, ReasonHighFailureRate
	case locator >= 3:
		level, decision, reason = models.RiskMedium, models.DecisionReview, ReasonLocatorIssues
	case rate > 10:
		level, decision, reason = models.RiskMedium, models.DecisionReview, ReasonModerateRate
	}

	return models.RiskSummary{
		TotalTests:        totalTests,
		TotalFailures:     totalFailures,
		FailureRate:       fmt.Sprintf("%.1f%%", rate),
		LocatorIssues:     locator,
		ApplicationIssues: app,
		EnvironmentIssues: env,
		TestIssues:        testIssue,
		TimeoutFailures:   timeouts,
		RiskLevel:         level,
		Decision:          decision,
		Reason:            reason,
	}
}
