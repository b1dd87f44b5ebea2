// Package pipeline orchestrates the post-run analysis: history append,
// trend detection, failure enrichment, risk scoring, artifact writing, and
// notification delivery, in that order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kamilpajak/fring/internal/history"
	"github.com/kamilpajak/fring/internal/report"
	"github.com/kamilpajak/fring/internal/risk"
	"github.com/kamilpajak/fring/internal/trend"
	"github.com/kamilpajak/fring/pkg/models"
)

// allPassedExecutive is the executive summary when nothing failed; no
// model call is needed to say this.
const allPassedExecutive = "All tests passed successfully. Application is stable and safe for release."

// maxConcurrentAnalyses bounds parallel per-failure enrichment calls.
const maxConcurrentAnalyses = 4

// Analyzer produces free-text diagnosis. Implementations never fail; they
// return fallback text instead.
type Analyzer interface {
	AnalyzeFailure(ctx context.Context, testName, errorMessage string) string
	SummarizeRun(ctx context.Context, summary models.RiskSummary) string
}

// Deliverer sends the verdict to the notification channel.
type Deliverer interface {
	Deliver(ctx context.Context, summary models.RiskSummary, records []models.AnalysisRecord, trends []string, executive string)
}

// Uploader attaches supplementary artifacts to the channel.
type Uploader interface {
	UploadReport(ctx context.Context)
}

// Result is everything a run produced, for callers that want to render or
// gate on it.
type Result struct {
	Summary   models.RiskSummary
	Records   []models.AnalysisRecord
	Trends    []models.TrendFlag
	Executive string
}

// Blocked reports whether the verdict requires a failed process status.
func (r *Result) Blocked() bool {
	return r.Summary.RiskLevel == models.RiskHigh
}

// Pipeline wires the analysis stages together. Analyzer may be nil, in
// which case records carry empty analysis text and the executive summary
// is composed locally.
type Pipeline struct {
	Partition string
	Ledger    *history.Ledger
	Detector  *trend.Detector
	Assembler *report.Assembler
	Analyzer  Analyzer
	Deliverer Deliverer
	Uploader  Uploader
	Log       logrus.FieldLogger
}

// Run executes the full post-run analysis for one run's outcomes. It
// returns an error only on total failure; individually failed stages
// degrade to logged warnings so a partial report still ships.
func (p *Pipeline) Run(ctx context.Context, outcomes []models.TestOutcome, failures []models.FailureRecord, totalTests int) (*Result, error) {
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{
		"run_id":    uuid.New().String(),
		"partition": p.Partition,
	})

	log.WithFields(logrus.Fields{
		"total_tests": totalTests,
		"failures":    len(failures),
	}).Info("run analysis started")

	// History first, so this run's outcomes are visible to its own trend
	// detection.
	if err := p.Ledger.Append(ctx, p.Partition, outcomes); err != nil {
		log.WithError(err).Error("failed to update history")
	}

	flags, err := p.Detector.Detect(ctx, p.Partition)
	if err != nil {
		log.WithError(err).Error("trend detection failed")
		flags = nil
	}

	records := p.enrich(ctx, failures)
	summary := risk.Score(records, totalTests)
	executive := p.executiveSummary(ctx, summary)

	if err := p.Assembler.WriteAll(summary, records, flags, executive); err != nil {
		log.WithError(err).Error("failed to write report artifacts")
	}

	// Delivery strictly after artifacts so the channel never references
	// files that are not on disk yet.
	trends := report.TrendStrings(flags)
	if p.Deliverer != nil {
		p.Deliverer.Deliver(ctx, summary, records, trends, executive)
	}
	if p.Uploader != nil {
		p.Uploader.UploadReport(ctx)
	}

	log.WithFields(logrus.Fields{
		"risk_level": summary.RiskLevel,
		"decision":   summary.Decision,
	}).Info("run analysis finished")

	return &Result{
		Summary:   summary,
		Records:   records,
		Trends:    flags,
		Executive: executive,
	}, nil
}

// enrich turns failures into analysis records, calling the analyzer for
// each in parallel. Calls are independent and stateless, so ordering of
// the calls does not matter; the record order still follows the failure
// order.
func (p *Pipeline) enrich(ctx context.Context, failures []models.FailureRecord) []models.AnalysisRecord {
	records := make([]models.AnalysisRecord, len(failures))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)

	for i, f := range failures {
		i, f := i, f
		g.Go(func() error {
			analysis := ""
			if p.Analyzer != nil {
				analysis = p.Analyzer.AnalyzeFailure(gctx, f.TestName, f.ErrorMessage)
			}
			records[i] = models.AnalysisRecord{
				TestName:     f.TestName,
				Status:       f.Status,
				ErrorMessage: f.ErrorMessage,
				AIAnalysis:   analysis,
				Time:         time.Now().UTC().Format(time.RFC3339),
			}
			return nil
		})
	}
	_ = g.Wait()

	return records
}

func (p *Pipeline) executiveSummary(ctx context.Context, summary models.RiskSummary) string {
	if summary.TotalFailures == 0 {
		return allPassedExecutive
	}
	if p.Analyzer != nil {
		return p.Analyzer.SummarizeRun(ctx, summary)
	}
	return localExecutive(summary)
}

// localExecutive is the no-model stand-in for the QA-lead summary.
func localExecutive(summary models.RiskSummary) string {
	return fmt.Sprintf(
		"%d of %d tests failed (%s). %s. Risk level %s, recommendation: %s.",
		summary.TotalFailures, summary.TotalTests, summary.FailureRate,
		summary.Reason, summary.RiskLevel, summary.Decision,
	)
}
