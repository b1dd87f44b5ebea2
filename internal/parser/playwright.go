// Package parser reads Playwright JSON reports and turns them into the
// per-test outcomes the pipeline ingests. The gate never drives a browser
// itself; a report file is its only view of the run.
package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kamilpajak/fring/pkg/models"
)

// RunReport is a parsed run: the announced test count plus every outcome
// in report order.
type RunReport struct {
	TotalTests int
	Outcomes   []models.TestOutcome
}

// PlaywrightParser parses Playwright JSON reports.
type PlaywrightParser struct{}

// playwrightReport represents the raw Playwright JSON structure.
type playwrightReport struct {
	Suites []playwrightSuite `json:"suites"`
	Stats  playwrightStats   `json:"stats"`
}

type playwrightStats struct {
	Expected   int `json:"expected"`
	Unexpected int `json:"unexpected"`
	Flaky      int `json:"flaky"`
	Skipped    int `json:"skipped"`
	// Blob format uses these
	Total int `json:"total"`
}

type playwrightSuite struct {
	Title  string            `json:"title"`
	File   string            `json:"file"`
	Specs  []playwrightSpec  `json:"specs"`
	Suites []playwrightSuite `json:"suites"`
}

type playwrightSpec struct {
	Title string           `json:"title"`
	Tests []playwrightTest `json:"tests"`
}

type playwrightTest struct {
	Status  string             `json:"status"`
	Results []playwrightResult `json:"results"`
}

type playwrightResult struct {
	Status string            `json:"status"`
	Errors []playwrightError `json:"errors"`
}

type playwrightError struct {
	Message string `json:"message"`
}

// Parse reads and parses a Playwright JSON report file.
func (p *PlaywrightParser) Parse(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseBytes parses Playwright JSON from raw bytes.
func (p *PlaywrightParser) ParseBytes(data []byte) (*RunReport, error) {
	var raw playwrightReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	report := &RunReport{}
	for _, suite := range raw.Suites {
		p.collectSuite(suite, report)
	}

	// JSON-reporter stats count expected/unexpected; blob format carries
	// the total directly. Fall back to the outcome count when stats are
	// bare.
	total := raw.Stats.Total
	if total == 0 {
		total = raw.Stats.Expected + raw.Stats.Unexpected + raw.Stats.Flaky + raw.Stats.Skipped
	}
	if total == 0 {
		total = len(report.Outcomes)
	}
	report.TotalTests = total

	return report, nil
}

func (p *PlaywrightParser) collectSuite(suite playwrightSuite, report *RunReport) {
	for _, spec := range suite.Specs {
		if outcome := p.normalizeSpec(spec); outcome != nil {
			report.Outcomes = append(report.Outcomes, *outcome)
		}
	}
	for _, nested := range suite.Suites {
		p.collectSuite(nested, report)
	}
}

func (p *PlaywrightParser) normalizeSpec(spec playwrightSpec) *models.TestOutcome {
	if len(spec.Tests) == 0 {
		return nil
	}

	test := spec.Tests[0]
	if len(test.Results) == 0 {
		return nil
	}

	// The last result is the final verdict after retries.
	result := test.Results[len(test.Results)-1]

	outcome := &models.TestOutcome{
		Name:   spec.Title,
		Status: normalizeStatus(result.Status),
	}

	if len(result.Errors) > 0 {
		outcome.ErrorMessage = result.Errors[0].Message
	}

	return outcome
}

func normalizeStatus(status string) models.TestStatus {
	switch status {
	case "passed":
		return models.StatusPassed
	case "skipped":
		return models.StatusSkipped
	case "timedOut":
		return models.StatusTimedOut
	case "interrupted":
		return models.StatusInterrupted
	default:
		return models.StatusFailed
	}
}
