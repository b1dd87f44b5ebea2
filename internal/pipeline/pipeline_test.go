package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/fring/internal/history"
	"github.com/kamilpajak/fring/internal/report"
	"github.com/kamilpajak/fring/internal/trend"
	"github.com/kamilpajak/fring/pkg/models"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	analyses map[string]string
	calls    int
}

func (f *fakeAnalyzer) AnalyzeFailure(_ context.Context, testName, _ string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if text, ok := f.analyses[testName]; ok {
		return text
	}
	return "Failure Type: Test Issue"
}

func (f *fakeAnalyzer) SummarizeRun(_ context.Context, _ models.RiskSummary) string {
	return "Executive: review before release."
}

type fakeDeliverer struct {
	delivered bool
	summary   models.RiskSummary
	records   []models.AnalysisRecord
	trends    []string
	executive string
}

func (f *fakeDeliverer) Deliver(_ context.Context, summary models.RiskSummary, records []models.AnalysisRecord, trends []string, executive string) {
	f.delivered = true
	f.summary = summary
	f.records = records
	f.trends = trends
	f.executive = executive
}

func testPipeline(t *testing.T, analyzer Analyzer) (*Pipeline, afero.Fs, *fakeDeliverer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	log := logrus.New()
	log.SetOutput(io.Discard)

	ledger := history.NewLedger(history.NewFileStore(fs, "reports"), 10, log)
	deliverer := &fakeDeliverer{}

	p := &Pipeline{
		Partition: "DEFAULT",
		Ledger:    ledger,
		Detector:  trend.NewDetector(ledger),
		Assembler: report.NewAssembler(fs, "reports", log),
		Analyzer:  analyzer,
		Deliverer: deliverer,
		Log:       log,
	}
	return p, fs, deliverer
}

func readJSON(t *testing.T, fs afero.Fs, name string, v any) {
	t.Helper()
	data, err := afero.ReadFile(fs, "reports/"+name)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestRun_AllPassed(t *testing.T) {
	p, fs, deliverer := testPipeline(t, &fakeAnalyzer{})

	outcomes := []models.TestOutcome{
		{Name: "login", Status: models.StatusPassed},
		{Name: "cart", Status: models.StatusPassed},
	}

	result, err := p.Run(context.Background(), outcomes, nil, 10)
	require.NoError(t, err)

	assert.False(t, result.Blocked())
	assert.Equal(t, models.RiskLow, result.Summary.RiskLevel)
	assert.Equal(t, "0.0%", result.Summary.FailureRate)
	assert.Equal(t, allPassedExecutive, result.Executive)

	// ai-report.json is omitted on a clean run; the rest exist.
	exists, _ := afero.Exists(fs, "reports/"+report.ReportFile)
	assert.False(t, exists)
	for _, name := range []string{report.TrendFile, report.SummaryFile, report.ExecutiveFile} {
		ok, _ := afero.Exists(fs, "reports/"+name)
		assert.True(t, ok, name)
	}

	assert.True(t, deliverer.delivered)
	assert.Empty(t, deliverer.records)
}

func TestRun_FailuresProduceFullArtifactSet(t *testing.T) {
	analyzer := &fakeAnalyzer{analyses: map[string]string{
		"checkout": "Failure Type: Application Bug in backend",
	}}
	p, fs, deliverer := testPipeline(t, analyzer)

	outcomes := []models.TestOutcome{
		{Name: "login", Status: models.StatusPassed},
		{Name: "checkout", Status: models.StatusFailed, ErrorMessage: "500 from server"},
	}
	failures := []models.FailureRecord{
		{TestName: "checkout", Status: models.StatusFailed, ErrorMessage: "500 from server"},
	}

	result, err := p.Run(context.Background(), outcomes, failures, 2)
	require.NoError(t, err)

	assert.True(t, result.Blocked())
	assert.Equal(t, models.DecisionBlock, result.Summary.Decision)
	assert.Equal(t, 1, result.Summary.ApplicationIssues)

	var records []models.AnalysisRecord
	readJSON(t, fs, report.ReportFile, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "checkout", records[0].TestName)
	assert.Contains(t, records[0].AIAnalysis, "Application Bug")

	_, err = time.Parse(time.RFC3339, records[0].Time)
	assert.NoError(t, err, "analysis timestamp should be RFC3339")

	var summary models.RiskSummary
	readJSON(t, fs, report.SummaryFile, &summary)
	assert.Equal(t, result.Summary, summary)

	assert.True(t, deliverer.delivered)
	assert.Equal(t, "Executive: review before release.", deliverer.executive)
}

func TestRun_OwnOutcomesVisibleToTrendDetection(t *testing.T) {
	p, _, _ := testPipeline(t, nil)
	ctx := context.Background()

	outcome := []models.TestOutcome{{Name: "flappy", Status: models.StatusFailed}}
	failure := []models.FailureRecord{{TestName: "flappy", Status: models.StatusFailed, ErrorMessage: "x"}}

	_, err := p.Run(ctx, outcome, failure, 1)
	require.NoError(t, err)

	// Second run: ledger now has two entries, so the run's own append
	// must make the test eligible for trend flags.
	result, err := p.Run(ctx, outcome, failure, 1)
	require.NoError(t, err)

	require.Len(t, result.Trends, 1)
	assert.Equal(t, models.TrendPersistentFailure, result.Trends[0].Kind)
}

func TestRun_NilAnalyzerUsesEmptyAnalysis(t *testing.T) {
	p, _, _ := testPipeline(t, nil)

	failures := []models.FailureRecord{
		{TestName: "t", Status: models.StatusFailed, ErrorMessage: "locator not found"},
	}
	outcomes := []models.TestOutcome{{Name: "t", Status: models.StatusFailed, ErrorMessage: "locator not found"}}

	result, err := p.Run(context.Background(), outcomes, failures, 10)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Empty(t, result.Records[0].AIAnalysis)
	// Classification still works off the raw error message.
	assert.Equal(t, 1, result.Summary.LocatorIssues)
	assert.NotEmpty(t, result.Executive)
}

func TestRun_RecordOrderFollowsFailureOrder(t *testing.T) {
	p, _, _ := testPipeline(t, &fakeAnalyzer{})

	var outcomes []models.TestOutcome
	var failures []models.FailureRecord
	names := []string{"e", "a", "c", "b", "d"}
	for _, n := range names {
		outcomes = append(outcomes, models.TestOutcome{Name: n, Status: models.StatusFailed})
		failures = append(failures, models.FailureRecord{TestName: n, Status: models.StatusFailed, ErrorMessage: "x"})
	}

	result, err := p.Run(context.Background(), outcomes, failures, 10)
	require.NoError(t, err)

	require.Len(t, result.Records, 5)
	for i, n := range names {
		assert.Equal(t, n, result.Records[i].TestName)
	}
}

func TestRun_AnalyzerCalledOncePerFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	p, _, _ := testPipeline(t, analyzer)

	var outcomes []models.TestOutcome
	var failures []models.FailureRecord
	for i := 0; i < 7; i++ {
		name := string(rune('a' + i))
		outcomes = append(outcomes, models.TestOutcome{Name: name, Status: models.StatusFailed})
		failures = append(failures, models.FailureRecord{TestName: name, Status: models.StatusFailed, ErrorMessage: "x"})
	}

	_, err := p.Run(context.Background(), outcomes, failures, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, analyzer.calls)
}

func TestRun_HistoryAppendedForEveryOutcome(t *testing.T) {
	p, _, _ := testPipeline(t, nil)
	ctx := context.Background()

	outcomes := []models.TestOutcome{
		{Name: "a", Status: models.StatusPassed},
		{Name: "b", Status: models.StatusSkipped},
		{Name: "c", Status: models.StatusFailed},
	}

	_, err := p.Run(ctx, outcomes, nil, 3)
	require.NoError(t, err)

	snap, err := p.Ledger.Load(ctx, "DEFAULT")
	require.NoError(t, err)
	assert.Len(t, snap, 3)
	assert.Equal(t, []models.TestStatus{models.StatusSkipped}, snap["b"])
}

func TestRun_DeliveryGetsTrendStrings(t *testing.T) {
	p, _, deliverer := testPipeline(t, nil)
	ctx := context.Background()

	outcome := []models.TestOutcome{{Name: "flappy", Status: models.StatusFailed}}
	failure := []models.FailureRecord{{TestName: "flappy", Status: models.StatusFailed, ErrorMessage: "x"}}

	_, err := p.Run(ctx, outcome, failure, 1)
	require.NoError(t, err)
	_, err = p.Run(ctx, outcome, failure, 1)
	require.NoError(t, err)

	require.Len(t, deliverer.trends, 1)
	assert.Equal(t, "DEFAULT → flappy → Persistent Failure", deliverer.trends[0])
}
