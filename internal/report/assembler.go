// Package report serializes the run's analysis into the artifact files
// consumed by dashboards and the notification layer.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/kamilpajak/fring/pkg/models"
)

// Artifact file names inside the report directory.
const (
	TrendFile     = "ai-trend.json"
	SummaryFile   = "ai-summary.json"
	ReportFile    = "ai-report.json"
	ExecutiveFile = "ai-executive-summary.txt"
)

// Assembler writes report artifacts. Every artifact is regenerated in full
// on each run and written independently: one failed write never blocks the
// others.
type Assembler struct {
	fs  afero.Fs
	dir string
	log logrus.FieldLogger
}

// NewAssembler creates an Assembler writing into dir on the given
// filesystem.
func NewAssembler(fs afero.Fs, dir string, log logrus.FieldLogger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{fs: fs, dir: dir, log: log}
}

// TrendStrings renders trend flags into their artifact form.
func TrendStrings(flags []models.TrendFlag) []string {
	strs := make([]string, 0, len(flags))
	for _, f := range flags {
		strs = append(strs, f.String())
	}
	return strs
}

// WriteTrends writes ai-trend.json. An empty flag list still produces an
// empty JSON array so consumers can rely on the file existing.
func (a *Assembler) WriteTrends(flags []models.TrendFlag) error {
	return a.writeJSON(TrendFile, TrendStrings(flags))
}

// WriteSummary writes ai-summary.json.
func (a *Assembler) WriteSummary(summary models.RiskSummary) error {
	return a.writeJSON(SummaryFile, summary)
}

// WriteAnalyses writes ai-report.json, one entry per analyzed failure.
func (a *Assembler) WriteAnalyses(records []models.AnalysisRecord) error {
	return a.writeJSON(ReportFile, records)
}

// WriteExecutiveSummary writes the plain-text executive summary.
func (a *Assembler) WriteExecutiveSummary(text string) error {
	return a.write(ExecutiveFile, []byte(text))
}

// WriteAll writes every artifact for a run. With zero failures the
// per-failure report is omitted. Each write is attempted regardless of
// earlier failures; the combined error reports everything that went wrong.
func (a *Assembler) WriteAll(summary models.RiskSummary, records []models.AnalysisRecord, flags []models.TrendFlag, executive string) error {
	var errs *multierror.Error

	if err := a.WriteTrends(flags); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := a.WriteSummary(summary); err != nil {
		errs = multierror.Append(errs, err)
	}
	if len(records) > 0 {
		if err := a.WriteAnalyses(records); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := a.WriteExecutiveSummary(executive); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

func (a *Assembler) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return a.write(name, data)
}

func (a *Assembler) write(name string, data []byte) error {
	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", a.dir, err)
	}

	path := filepath.Join(a.dir, name)
	if err := afero.WriteFile(a.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	a.log.WithField("artifact", name).Debug("artifact written")
	return nil
}
