package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kamilpajak/fring/pkg/models"
)

// failurePrompt asks for a per-failure diagnosis in a fixed format so the
// risk classifier can keyword-match the response.
func failurePrompt(testName, errorMessage string) string {
	return fmt.Sprintf(`You are a Senior Playwright QA Engineer.

Context:
- Framework: Playwright
- Test Type: End-to-End UI Automation

Analyze the following test failure and give suggestions specific to Playwright.

Provide the output in this format:

Root Cause:
Failure Type (Locator / Application Bug / Network / Environment / Test Issue):
Suggested Fix (Playwright specific):
Severity (Low / Medium / High):

Guidelines:
- Suggest Playwright best practices (getByRole, getByTestId, waitFor, expect, retries, etc.)
- Do NOT mention Selenium or other tools
- Keep the response short and actionable

Test Name:
%s

Error:
%s
`, testName, errorMessage)
}

// SummaryPrompt asks for the QA-lead executive summary of a run verdict.
func SummaryPrompt(summary models.RiskSummary) string {
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")

	return fmt.Sprintf(`You are a Senior QA Lead reviewing an automated test execution.

Context:
- Framework: Playwright
- Test Type: End-to-End Automation

Execution Summary:
%s

Write a concise executive summary (5-6 lines):

Include:
- Overall stability based on failure rate
- Dominant failure category
- Risk interpretation
- Release recommendation aligned with:
  LOW -> PROCEED
  MEDIUM -> REVIEW
  HIGH -> BLOCK
- Immediate action if needed

Tone: Executive, concise, professional.
No unnecessary technical details.
`, string(summaryJSON))
}

// SummarizeRun produces the executive summary text for a run verdict.
func (c *Client) SummarizeRun(ctx context.Context, summary models.RiskSummary) string {
	return c.Generate(ctx, SummaryPrompt(summary))
}
