package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/fring/internal/collector"
	"github.com/kamilpajak/fring/internal/config"
	"github.com/kamilpajak/fring/internal/parser"
	"github.com/kamilpajak/fring/internal/pipeline"
	"github.com/kamilpajak/fring/pkg/models"
)

var analyzePartition string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <playwright-report.json>",
	Short: "Analyze a finished run and gate the release",
	Long: `Analyze reads a Playwright JSON report, updates the cross-run history,
classifies failures, computes the release-risk verdict, writes the report
artifacts, and delivers the summary to Slack.

Examples:
  fring analyze ./playwright-report/results.json
  CARRIER=IOS fring analyze ./results.json
  fring analyze ./results.json --config fring.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzePartition, "partition", "p", "", "History partition (overrides CARRIER)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()
	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return err
	}
	if analyzePartition != "" {
		cfg.Partition = analyzePartition
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}

	fmt.Fprintf(os.Stderr, "Parsing report: %s\n", path)
	p := &parser.PlaywrightParser{}
	run, err := p.Parse(path)
	if err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}

	col := collector.New()
	col.OnRunStart(run.TotalTests)
	for _, outcome := range run.Outcomes {
		col.OnTestFinished(outcome)
	}
	outcomes, failures, total := col.OnRunEnd()

	fmt.Fprintf(os.Stderr, "Found %d failures in %d tests\n", len(failures), total)

	pipe, cleanup := pipeline.New(ctx, cfg, fs, logrus.StandardLogger())
	defer cleanup()

	spin := newSpinner(len(failures))
	start := time.Now()

	result, err := pipe.Run(ctx, outcomes, failures, total)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Analysis complete (%.1fs)\n\n", time.Since(start).Seconds())
	printVerdict(os.Stdout, result)

	if result.Blocked() {
		return fmt.Errorf("release blocked: HIGH risk (%s)", result.Summary.Reason)
	}
	return nil
}

func newSpinner(failures int) *spinner.Spinner {
	if failures == 0 {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Analyzing %d failures with AI...", failures)
	s.Start()
	return s
}

func printVerdict(w io.Writer, result *pipeline.Result) {
	verdictColor := map[models.RiskLevel]*color.Color{
		models.RiskLow:    color.New(color.FgGreen, color.Bold),
		models.RiskMedium: color.New(color.FgYellow, color.Bold),
		models.RiskHigh:   color.New(color.FgRed, color.Bold),
	}[result.Summary.RiskLevel]

	s := result.Summary
	_, _ = verdictColor.Fprintf(w, "## %s — %s\n\n", s.RiskLevel, s.Decision)
	fmt.Fprintf(w, "%s\n\n", s.Reason)

	fmt.Fprintf(w, "Total Tests:  %d\n", s.TotalTests)
	fmt.Fprintf(w, "Failures:     %d\n", s.TotalFailures)
	fmt.Fprintf(w, "Failure Rate: %s\n", s.FailureRate)

	if s.TotalFailures > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Locator:      %d\n", s.LocatorIssues)
		fmt.Fprintf(w, "Application:  %d\n", s.ApplicationIssues)
		fmt.Fprintf(w, "Environment:  %d\n", s.EnvironmentIssues)
		fmt.Fprintf(w, "Test Issues:  %d\n", s.TestIssues)
		fmt.Fprintf(w, "Timeouts:     %d\n", s.TimeoutFailures)
	}

	if len(result.Trends) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Trends")
		for _, f := range result.Trends {
			fmt.Fprintf(w, "- %s\n", f.String())
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "### Executive Summary")
	fmt.Fprintf(w, "%s\n", result.Executive)
}
