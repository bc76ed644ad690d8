package evalrun

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Summary is the aggregate block written to the results file.
type Summary struct {
	Total               int     `json:"total"`
	Successful          int     `json:"successful"`
	Failed              int     `json:"failed"`
	AverageOverallScore float64 `json:"average_overall_score"`
}

// Mean is a mean over however many results carried the dimension.
type Mean struct {
	Value float64
	Count int
}

// CategoryMean is the mean overall score for one dataset category.
type CategoryMean struct {
	Category string
	Mean
}

// Stats extends Summary with the console-report aggregates.
type Stats struct {
	Summary
	AverageLatency float64
	Routing        Mean
	Quality        Mean
	Factuality     Mean
	ByCategory     []CategoryMean
}

// Summarize aggregates a run's results. The summary's total always
// equals the number of results, errored items included.
func Summarize(results []Result) Stats {
	stats := Stats{}
	stats.Total = len(results)

	var latencySum float64
	categories := map[string]*Mean{}

	for _, res := range results {
		if res.Status != "success" {
			stats.Failed++
			continue
		}
		stats.Successful++
		stats.AverageOverallScore += res.OverallScore
		latencySum += res.Latency

		if v, ok := res.Evaluations["routing"]; ok {
			stats.Routing.Value += v.Score
			stats.Routing.Count++
		}
		if v, ok := res.Evaluations["quality"]; ok {
			stats.Quality.Value += v.Score
			stats.Quality.Count++
		}
		if v, ok := res.Evaluations["factuality"]; ok {
			stats.Factuality.Value += v.Score
			stats.Factuality.Count++
		}

		cat, ok := categories[res.Category]
		if !ok {
			cat = &Mean{}
			categories[res.Category] = cat
		}
		cat.Value += res.OverallScore
		cat.Count++
	}

	if stats.Successful > 0 {
		stats.AverageOverallScore /= float64(stats.Successful)
		stats.AverageLatency = latencySum / float64(stats.Successful)
	}
	stats.Routing.finalize()
	stats.Quality.finalize()
	stats.Factuality.finalize()

	for name, m := range categories {
		m.finalize()
		stats.ByCategory = append(stats.ByCategory, CategoryMean{Category: name, Mean: *m})
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})

	return stats
}

func (m *Mean) finalize() {
	if m.Count > 0 {
		m.Value /= float64(m.Count)
	}
}

// Output is the results file written once at the end of a run.
type Output struct {
	RunName    string   `json:"run_name"`
	Timestamp  string   `json:"timestamp"`
	GatewayURL string   `json:"gateway_url"`
	Dataset    string   `json:"dataset"`
	Results    []Result `json:"results"`
	Summary    Summary  `json:"summary"`
}

// NewOutput assembles the results file payload.
func NewOutput(runName, gatewayURL, datasetName string, results []Result, summary Summary, now time.Time) Output {
	return Output{
		RunName:    runName,
		Timestamp:  now.Format(time.RFC3339),
		GatewayURL: gatewayURL,
		Dataset:    datasetName,
		Results:    results,
		Summary:    summary,
	}
}

// WriteOutput writes the results file as indented JSON.
func WriteOutput(path string, out Output) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PrintSummary renders the run summary for the console.
func PrintSummary(w io.Writer, runName, langfuseHost string, stats Stats) {
	line := "============================================================"
	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintln(w, "  EVALUATION SUMMARY")
	fmt.Fprintln(w, line)

	fmt.Fprintf(w, "\n  Total Items: %d\n", stats.Total)
	fmt.Fprintf(w, "  Successful: %d\n", stats.Successful)
	fmt.Fprintf(w, "  Failed: %d\n", stats.Failed)

	if stats.Successful > 0 {
		fmt.Fprintln(w, "\n  Average Scores:")
		fmt.Fprintf(w, "    Overall:    %.2f%%\n", stats.AverageOverallScore*100)
		if stats.Routing.Count > 0 {
			fmt.Fprintf(w, "    Routing:    %.2f%%\n", stats.Routing.Value*100)
		}
		if stats.Quality.Count > 0 {
			fmt.Fprintf(w, "    Quality:    %.2f%%\n", stats.Quality.Value*100)
		}
		if stats.Factuality.Count > 0 {
			fmt.Fprintf(w, "    Factuality: %.2f%%\n", stats.Factuality.Value*100)
		}
		fmt.Fprintf(w, "\n  Average Latency: %.2fs\n", stats.AverageLatency)

		if len(stats.ByCategory) > 0 {
			fmt.Fprintln(w, "\n  By Category:")
			for _, cat := range stats.ByCategory {
				fmt.Fprintf(w, "    %s: %.2f%% (%d items)\n", cat.Category, cat.Value*100, cat.Count)
			}
		}
	}

	fmt.Fprintf(w, "\n  View results in Langfuse: %s\n", langfuseHost)
	fmt.Fprintf(w, "  Filter by tag: %s\n", runName)
	fmt.Fprintf(w, "%s\n", line)
}
