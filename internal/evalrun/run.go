package evalrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/agentgateway/chateval/internal/dataset"
	"github.com/agentgateway/chateval/internal/gateway"
	"github.com/agentgateway/chateval/internal/judge"
	"github.com/agentgateway/chateval/internal/langfuse"
)

// Gateway asks the orchestrator one question at a time.
type Gateway interface {
	Ask(ctx context.Context, message string) (*gateway.AskResponse, error)
}

// Judge scores a gateway response along one dimension per call.
type Judge interface {
	EvaluateRouting(ctx context.Context, item dataset.Item, result *gateway.AskResponse) (judge.Verdict, error)
	EvaluateQuality(ctx context.Context, item dataset.Item, result *gateway.AskResponse) (judge.Verdict, error)
	EvaluateFactuality(ctx context.Context, item dataset.Item, result *gateway.AskResponse) (judge.Verdict, error)
}

// Tracer pushes traces, spans and scores to the analytics backend.
type Tracer interface {
	Trace(t langfuse.Trace) string
	Span(s langfuse.Span)
	Score(s langfuse.Score)
	Flush(ctx context.Context) error
}

// Runner executes an evaluation run: one gateway query plus up to
// three judge calls per dataset item, strictly sequential.
type Runner struct {
	Gateway Gateway
	Judge   Judge
	Tracer  Tracer
	Logger  *zap.Logger
	Out     io.Writer

	RunName string
}

// Result is the per-item outcome, success or error. Errors are local
// to their item; the run always covers every item.
type Result struct {
	ItemID          string                   `json:"item_id"`
	Category        string                   `json:"category"`
	Input           string                   `json:"input"`
	ActualAgent     string                   `json:"actual_agent,omitempty"`
	ExpectedAgent   string                   `json:"expected_agent,omitempty"`
	ResponsePreview string                   `json:"response_preview,omitempty"`
	Latency         float64                  `json:"latency,omitempty"`
	Evaluations     map[string]judge.Verdict `json:"evaluations,omitempty"`
	OverallScore    float64                  `json:"overall_score"`
	TraceID         string                   `json:"trace_id,omitempty"`
	Status          string                   `json:"status"`
	Error           string                   `json:"error,omitempty"`
}

const previewLen = 200

// Run processes every dataset item in order and returns one Result per
// item. Item failures are recorded and skipped over, never fatal.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset) []Result {
	results := make([]Result, 0, len(ds.Items))

	for i, item := range ds.Items {
		r.printf("[%d/%d] Testing: %s\n", i+1, len(ds.Items), item.ID)
		r.printf("    Query: %.50s...\n", item.Input)

		traceID := r.Tracer.Trace(langfuse.Trace{
			Name: "evaluation-run",
			Metadata: map[string]any{
				"run_name":       r.RunName,
				"item_id":        item.ID,
				"category":       item.Category,
				"expected_agent": item.ExpectedAgent,
			},
			Tags: []string{"evaluation", item.Category, r.RunName},
		})

		result, err := r.runItem(ctx, item, traceID)
		if err != nil {
			r.printf("    ERROR: %v\n", err)
			r.Logger.Warn("item failed",
				zap.String("item_id", item.ID),
				zap.Error(err))
			result = Result{
				ItemID:   item.ID,
				Category: item.Category,
				Input:    item.Input,
				Status:   "error",
				Error:    err.Error(),
			}
		}
		results = append(results, result)

		// Push this item's events before moving on.
		if err := r.Tracer.Flush(ctx); err != nil {
			r.Logger.Warn("langfuse flush failed",
				zap.String("item_id", item.ID),
				zap.Error(err))
		}
		r.printf("\n")
	}

	return results
}

func (r *Runner) runItem(ctx context.Context, item dataset.Item, traceID string) (Result, error) {
	start := time.Now()
	demoResult, err := r.Gateway.Ask(ctx, item.Input)
	if err != nil {
		return Result{}, err
	}
	latency := time.Since(start).Seconds()

	actualAgent := demoResult.Agent()
	r.printf("    Routed to: %s (%.2fs)\n", actualAgent, latency)

	var spanOutput any = demoResult
	if len(demoResult.Raw) > 0 {
		spanOutput = json.RawMessage(demoResult.Raw)
	}
	r.Tracer.Span(langfuse.Span{
		TraceID:  traceID,
		Name:     "demo-api-call",
		Input:    map[string]any{"message": item.Input},
		Output:   spanOutput,
		Metadata: map[string]any{"latency_seconds": latency},
	})

	evaluations := map[string]judge.Verdict{}

	if item.ExpectedAgent != "" && item.ExpectedAgent != "any" {
		routing, err := r.Judge.EvaluateRouting(ctx, item, demoResult)
		if err != nil {
			return Result{}, err
		}
		evaluations["routing"] = routing
		r.Tracer.Score(langfuse.Score{
			TraceID: traceID,
			Name:    "routing-accuracy",
			Value:   routing.Score,
			Comment: routing.Reasoning,
		})
		r.printf("    Routing Score: %.2f\n", routing.Score)
	}

	quality, err := r.Judge.EvaluateQuality(ctx, item, demoResult)
	if err != nil {
		return Result{}, err
	}
	evaluations["quality"] = quality
	r.Tracer.Score(langfuse.Score{
		TraceID: traceID,
		Name:    "response-quality",
		Value:   quality.Score,
		Comment: quality.Reasoning,
	})
	r.printf("    Quality Score: %.2f\n", quality.Score)

	if len(item.ExpectedAnswerContains) > 0 {
		factuality, err := r.Judge.EvaluateFactuality(ctx, item, demoResult)
		if err != nil {
			return Result{}, err
		}
		evaluations["factuality"] = factuality
		r.Tracer.Score(langfuse.Score{
			TraceID: traceID,
			Name:    "factuality",
			Value:   factuality.Score,
			Comment: factuality.Reasoning,
		})
		r.printf("    Factuality Score: %.2f\n", factuality.Score)
	}

	overall := 0.0
	for _, v := range evaluations {
		overall += v.Score
	}
	if len(evaluations) > 0 {
		overall /= float64(len(evaluations))
	}
	r.Tracer.Score(langfuse.Score{
		TraceID: traceID,
		Name:    "overall",
		Value:   overall,
		Comment: "Average of all evaluation dimensions",
	})

	return Result{
		ItemID:          item.ID,
		Category:        item.Category,
		Input:           item.Input,
		ActualAgent:     actualAgent,
		ExpectedAgent:   item.ExpectedAgent,
		ResponsePreview: truncate(demoResult.Response, previewLen),
		Latency:         latency,
		Evaluations:     evaluations,
		OverallScore:    overall,
		TraceID:         traceID,
		Status:          "success",
	}, nil
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, format, args...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
