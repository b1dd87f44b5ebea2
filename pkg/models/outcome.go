package models

// TestStatus represents the final status of a test case, mirroring the
// Playwright status vocabulary.
type TestStatus string

const (
	StatusPassed      TestStatus = "passed"
	StatusFailed      TestStatus = "failed"
	StatusTimedOut    TestStatus = "timedOut"
	StatusSkipped     TestStatus = "skipped"
	StatusInterrupted TestStatus = "interrupted"
)

// NoErrorMessage is recorded when a failing test carried no error text.
const NoErrorMessage = "No error message"

// TestOutcome is a single executed test within one run. Name is the stable
// identity used as the history key across runs.
type TestOutcome struct {
	Name         string     `json:"name"`
	Status       TestStatus `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// IsFailure reports whether the outcome counts toward the run's failures.
// Passed and skipped tests never do.
func (o TestOutcome) IsFailure() bool {
	return o.Status != StatusPassed && o.Status != StatusSkipped
}

// FailureRecord is the failure-side projection of a TestOutcome. It is
// immutable once created and consumed exactly once by the classifier.
type FailureRecord struct {
	TestName     string     `json:"testName"`
	Status       TestStatus `json:"status"`
	ErrorMessage string     `json:"errorMessage"`
}

// NewFailureRecord derives a FailureRecord from a non-passing outcome,
// substituting a sentinel when no error text was captured.
func NewFailureRecord(o TestOutcome) FailureRecord {
	msg := o.ErrorMessage
	if msg == "" {
		msg = NoErrorMessage
	}
	return FailureRecord{
		TestName:     o.Name,
		Status:       o.Status,
		ErrorMessage: msg,
	}
}

// AnalysisRecord is a FailureRecord enriched with free-text diagnosis from
// the analysis service. Time is the ISO-8601 timestamp of when the analysis
// for this entry completed. AIAnalysis is empty when no service is
// configured; the pipeline works either way.
type AnalysisRecord struct {
	TestName     string     `json:"testName"`
	Status       TestStatus `json:"status"`
	ErrorMessage string     `json:"errorMessage"`
	AIAnalysis   string     `json:"aiAnalysis"`
	Time         string     `json:"time"`
}
