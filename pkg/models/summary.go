package models

// RiskLevel is the coarse release-safety classification for a run.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Decision is the release recommendation paired with a RiskLevel.
type Decision string

const (
	DecisionProceed Decision = "PROCEED"
	DecisionReview  Decision = "REVIEW"
	DecisionBlock   Decision = "BLOCK RELEASE"
)

// RiskSummary is the run-level verdict. The four category counts always sum
// to TotalFailures; TimeoutFailures is an orthogonal flag and may overlap
// any category. RiskLevel and Decision move together:
// LOW/PROCEED, MEDIUM/REVIEW, HIGH/BLOCK RELEASE.
type RiskSummary struct {
	TotalTests        int       `json:"totalTests"`
	TotalFailures     int       `json:"totalFailures"`
	FailureRate       string    `json:"failureRate"`
	LocatorIssues     int       `json:"locatorIssues"`
	ApplicationIssues int       `json:"applicationIssues"`
	EnvironmentIssues int       `json:"environmentIssues"`
	TestIssues        int       `json:"testIssues"`
	TimeoutFailures   int       `json:"timeoutFailures"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	Decision          Decision  `json:"decision"`
	Reason            string    `json:"reason"`
}

// TrendKind classifies a test's recent outcome window.
type TrendKind string

const (
	// TrendPersistentFailure means every outcome in the recent window was
	// non-passing.
	TrendPersistentFailure TrendKind = "Persistent Failure"
	// TrendFlaky means the recent window mixes passing and non-passing
	// outcomes.
	TrendFlaky TrendKind = "Flaky"
)

// TrendFlag marks a test whose history warrants attention. Derived from the
// ledger on every run, never persisted.
type TrendFlag struct {
	Partition string    `json:"partition"`
	TestName  string    `json:"testName"`
	Kind      TrendKind `json:"kind"`
}

// String renders the flag in the form used by the trend artifact and the
// notification payload.
func (f TrendFlag) String() string {
	return f.Partition + " → " + f.TestName + " → " + string(f.Kind)
}
