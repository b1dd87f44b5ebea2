package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/fring/pkg/models"
)

func TestPlaywrightParser_ParseBytes(t *testing.T) {
	jsonData := []byte(`{
		"suites": [{
			"title": "Checkout Suite",
			"file": "checkout.spec.ts",
			"specs": [{
				"title": "should pass",
				"tests": [{
					"status": "expected",
					"results": [{"status": "passed"}]
				}]
			}, {
				"title": "should fail",
				"tests": [{
					"status": "unexpected",
					"results": [{
						"status": "failed",
						"errors": [{"message": "Expected true to be false"}]
					}]
				}]
			}]
		}],
		"stats": {"expected": 1, "unexpected": 1, "flaky": 0, "skipped": 0}
	}`)

	p := &PlaywrightParser{}
	report, err := p.ParseBytes(jsonData)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalTests)
	require.Len(t, report.Outcomes, 2)

	assert.Equal(t, "should pass", report.Outcomes[0].Name)
	assert.Equal(t, models.StatusPassed, report.Outcomes[0].Status)

	assert.Equal(t, "should fail", report.Outcomes[1].Name)
	assert.Equal(t, models.StatusFailed, report.Outcomes[1].Status)
	assert.Equal(t, "Expected true to be false", report.Outcomes[1].ErrorMessage)
}

func TestPlaywrightParser_StatusFidelity(t *testing.T) {
	jsonData := []byte(`{
		"suites": [{
			"specs": [
				{"title": "a", "tests": [{"results": [{"status": "timedOut", "errors": [{"message": "Test timeout of 30000ms exceeded"}]}]}]},
				{"title": "b", "tests": [{"results": [{"status": "skipped"}]}]},
				{"title": "c", "tests": [{"results": [{"status": "interrupted"}]}]}
			]
		}],
		"stats": {}
	}`)

	p := &PlaywrightParser{}
	report, err := p.ParseBytes(jsonData)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, models.StatusTimedOut, report.Outcomes[0].Status)
	assert.Equal(t, models.StatusSkipped, report.Outcomes[1].Status)
	assert.Equal(t, models.StatusInterrupted, report.Outcomes[2].Status)
	assert.Equal(t, 3, report.TotalTests)
}

func TestPlaywrightParser_RetriesUseFinalResult(t *testing.T) {
	jsonData := []byte(`{
		"suites": [{
			"specs": [{
				"title": "flaky one",
				"tests": [{
					"results": [
						{"status": "failed", "errors": [{"message": "first try"}]},
						{"status": "passed"}
					]
				}]
			}]
		}],
		"stats": {"expected": 1}
	}`)

	p := &PlaywrightParser{}
	report, err := p.ParseBytes(jsonData)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.StatusPassed, report.Outcomes[0].Status)
	assert.Empty(t, report.Outcomes[0].ErrorMessage)
}

func TestPlaywrightParser_NestedSuites(t *testing.T) {
	jsonData := []byte(`{
		"suites": [{
			"title": "outer",
			"suites": [{
				"title": "inner",
				"specs": [{
					"title": "deep test",
					"tests": [{"results": [{"status": "passed"}]}]
				}]
			}]
		}],
		"stats": {"expected": 1}
	}`)

	p := &PlaywrightParser{}
	report, err := p.ParseBytes(jsonData)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "deep test", report.Outcomes[0].Name)
}

func TestPlaywrightParser_BlobTotal(t *testing.T) {
	jsonData := []byte(`{"suites": [], "stats": {"total": 12}}`)

	p := &PlaywrightParser{}
	report, err := p.ParseBytes(jsonData)
	require.NoError(t, err)

	assert.Equal(t, 12, report.TotalTests)
	assert.Empty(t, report.Outcomes)
}

func TestPlaywrightParser_InvalidJSON(t *testing.T) {
	p := &PlaywrightParser{}
	_, err := p.ParseBytes([]byte("{nope"))
	assert.Error(t, err)
}

func TestPlaywrightParser_SpecWithoutResults(t *testing.T) {
	jsonData := []byte(`{
		"suites": [{
			"specs": [{"title": "no results", "tests": [{"results": []}]}]
		}],
		"stats": {}
	}`)

	p := &PlaywrightParser{}
	report, err := p.ParseBytes(jsonData)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
}
