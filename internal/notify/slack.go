// Package notify delivers the run verdict to Slack. Delivery is
// best-effort: an unconfigured webhook is a logged no-op and transport
// errors never propagate to the pipeline.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/kamilpajak/fring/internal/risk"
	"github.com/kamilpajak/fring/pkg/models"
)

const (
	botUsername = "fring-qa-bot"
	botIcon     = ":robot_face:"

	maxFailedTests = 5
	maxTrendLines  = 5
)

// Meta carries the run metadata shown in the message header fields.
type Meta struct {
	Project     string
	Environment string
	TriggeredBy string
}

// Notifier posts the release-readiness message to a Slack webhook.
type Notifier struct {
	webhookURL string
	meta       Meta
	log        logrus.FieldLogger

	// postWebhook is swapped in tests.
	postWebhook func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// NewNotifier creates a Notifier. An empty webhook URL disables delivery.
func NewNotifier(webhookURL string, meta Meta, log logrus.FieldLogger) *Notifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifier{
		webhookURL:  webhookURL,
		meta:        meta,
		log:         log,
		postWebhook: slack.PostWebhookContext,
	}
}

// Deliver posts the verdict. Failures are logged, never returned: by the
// time delivery runs, all artifacts are already on disk and a chat outage
// must not fail the run.
func (n *Notifier) Deliver(ctx context.Context, summary models.RiskSummary, records []models.AnalysisRecord, trends []string, executive string) {
	if n.webhookURL == "" {
		n.log.Info("slack webhook not configured, skipping delivery")
		return
	}

	msg := BuildMessage(n.meta, summary, records, trends, executive)
	if err := n.postWebhook(ctx, n.webhookURL, msg); err != nil {
		n.log.WithError(err).Error("failed to deliver slack report")
		return
	}
	n.log.Info("slack report delivered")
}

// BuildMessage renders the channel payload: risk-colored header, metadata
// fields, execution summary, top failed tests with their classified
// category, recent trends, the release decision, and the executive
// summary. With zero failures the per-failure section is omitted.
func BuildMessage(meta Meta, summary models.RiskSummary, records []models.AnalysisRecord, trends []string, executive string) *slack.WebhookMessage {
	blocks := []slack.Block{
		&slack.HeaderBlock{
			Type: slack.MBTHeader,
			Text: &slack.TextBlockObject{
				Type: slack.PlainTextType,
				Text: fmt.Sprintf("%s AI Release Readiness Report", riskEmoji(summary.RiskLevel)),
			},
		},
		&slack.SectionBlock{
			Type: slack.MBTSection,
			Fields: []*slack.TextBlockObject{
				{Type: slack.MarkdownType, Text: "*Project:*\n" + meta.Project},
				{Type: slack.MarkdownType, Text: "*Environment:*\n" + meta.Environment},
				{Type: slack.MarkdownType, Text: "*Triggered By:*\n" + meta.TriggeredBy},
				{Type: slack.MarkdownType, Text: fmt.Sprintf("*Risk Level:*\n*%s*", summary.RiskLevel)},
			},
		},
		markdownSection(fmt.Sprintf(
			"*Execution Summary*\nTotal Tests: %d\nFailures: %d\nFailure Rate: %s",
			summary.TotalTests, summary.TotalFailures, summary.FailureRate,
		)),
	}

	if len(records) > 0 {
		blocks = append(blocks, markdownSection("*Failed Tests (Top 5)*\n"+failedTestsText(records)))
	}

	blocks = append(blocks,
		markdownSection("*Trend Analysis*\n"+trendText(trends)),
		markdownSection(fmt.Sprintf("*Release Decision:* %s", summary.Decision)),
		&slack.DividerBlock{Type: slack.MBTDivider},
		markdownSection("*AI QA Lead Insight*\n"+executive),
	)

	return &slack.WebhookMessage{
		Username:  botUsername,
		IconEmoji: botIcon,
		Blocks:    &slack.Blocks{BlockSet: blocks},
	}
}

func markdownSection(text string) *slack.SectionBlock {
	return &slack.SectionBlock{
		Type: slack.MBTSection,
		Text: &slack.TextBlockObject{Type: slack.MarkdownType, Text: text},
	}
}

func riskEmoji(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return "🔴"
	case models.RiskMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func failedTestsText(records []models.AnalysisRecord) string {
	text := ""
	for i, rec := range records {
		if i >= maxFailedTests {
			break
		}
		if i > 0 {
			text += "\n"
		}
		text += fmt.Sprintf("• %s\n   → %s", rec.TestName, risk.Classify(rec))
	}
	if len(records) > maxFailedTests {
		text += fmt.Sprintf("\n+%d more failures", len(records)-maxFailedTests)
	}
	return text
}

func trendText(trends []string) string {
	if len(trends) == 0 {
		return "No trend detected"
	}
	text := ""
	for i, tr := range trends {
		if i >= maxTrendLines {
			break
		}
		if i > 0 {
			text += "\n"
		}
		text += "• " + tr
	}
	return text
}
