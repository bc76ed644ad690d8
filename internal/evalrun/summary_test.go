package evalrun_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgateway/chateval/internal/evalrun"
	"github.com/agentgateway/chateval/internal/judge"
)

func sampleResults() []evalrun.Result {
	return []evalrun.Result{
		{
			ItemID:   "a",
			Category: "it",
			Status:   "success",
			Latency:  1.0,
			Evaluations: map[string]judge.Verdict{
				"routing": {Score: 1.0},
				"quality": {Score: 0.8},
			},
			OverallScore: 0.9,
		},
		{
			ItemID:   "b",
			Category: "billing",
			Status:   "success",
			Latency:  3.0,
			Evaluations: map[string]judge.Verdict{
				"quality":    {Score: 0.6},
				"factuality": {Score: 0.4},
			},
			OverallScore: 0.5,
		},
		{
			ItemID:   "c",
			Category: "it",
			Status:   "error",
			Error:    "gateway timed out",
		},
	}
}

func TestSummarize(t *testing.T) {
	stats := evalrun.Summarize(sampleResults())

	assert.Equal(t, 3, stats.Total, "total covers errored items")
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 0.7, stats.AverageOverallScore, 1e-9)
	assert.InDelta(t, 2.0, stats.AverageLatency, 1e-9)

	assert.Equal(t, 1, stats.Routing.Count)
	assert.InDelta(t, 1.0, stats.Routing.Value, 1e-9)
	assert.Equal(t, 2, stats.Quality.Count)
	assert.InDelta(t, 0.7, stats.Quality.Value, 1e-9)
	assert.Equal(t, 1, stats.Factuality.Count)
	assert.InDelta(t, 0.4, stats.Factuality.Value, 1e-9)

	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, "billing", stats.ByCategory[0].Category)
	assert.InDelta(t, 0.5, stats.ByCategory[0].Value, 1e-9)
	assert.Equal(t, "it", stats.ByCategory[1].Category)
	assert.InDelta(t, 0.9, stats.ByCategory[1].Value, 1e-9)
	assert.Equal(t, 1, stats.ByCategory[1].Count, "errored items do not join category means")
}

func TestSummarize_Empty(t *testing.T) {
	stats := evalrun.Summarize(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.AverageOverallScore)
}

func TestSummarize_AllErrors(t *testing.T) {
	stats := evalrun.Summarize([]evalrun.Result{
		{ItemID: "a", Status: "error", Error: "x"},
		{ItemID: "b", Status: "error", Error: "y"},
	})
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 0, stats.Successful)
	assert.Equal(t, 2, stats.Failed)
	assert.Zero(t, stats.AverageOverallScore)
}

func TestWriteOutput_RoundTrips(t *testing.T) {
	results := sampleResults()
	stats := evalrun.Summarize(results)
	now := time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC)
	out := evalrun.NewOutput("eval-test", "http://gw.local", "helpdesk-eval", results, stats.Summary, now)

	path := filepath.Join(t.TempDir(), "results-eval-test.json")
	require.NoError(t, evalrun.WriteOutput(path, out))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded evalrun.Output
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "eval-test", decoded.RunName)
	assert.Equal(t, "2025-11-04T12:00:00Z", decoded.Timestamp)
	assert.Equal(t, "helpdesk-eval", decoded.Dataset)
	assert.Len(t, decoded.Results, 3)
	assert.Equal(t, 3, decoded.Summary.Total)
	assert.Equal(t, "gateway timed out", decoded.Results[2].Error)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	evalrun.PrintSummary(&buf, "eval-test", "https://cloud.langfuse.com", evalrun.Summarize(sampleResults()))

	text := buf.String()
	assert.Contains(t, text, "EVALUATION SUMMARY")
	assert.Contains(t, text, "Total Items: 3")
	assert.Contains(t, text, "Successful: 2")
	assert.Contains(t, text, "Failed: 1")
	assert.Contains(t, text, "Overall:    70.00%")
	assert.Contains(t, text, "billing: 50.00% (1 items)")
	assert.Contains(t, text, "View results in Langfuse: https://cloud.langfuse.com\n  Filter by tag: eval-test")
}

func TestPrintSummary_NoSuccessesOmitsAverages(t *testing.T) {
	var buf bytes.Buffer
	evalrun.PrintSummary(&buf, "eval-test", "https://cloud.langfuse.com", evalrun.Summarize([]evalrun.Result{
		{ItemID: "a", Status: "error", Error: "x"},
	}))

	assert.NotContains(t, buf.String(), "Average Scores")
}
