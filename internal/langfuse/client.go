package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a minimal Langfuse ingestion client. Traces, spans and
// scores are buffered in process and posted as one batch on Flush.
// The client is used by a single sequential loop and is not safe for
// concurrent use.
type Client struct {
	host       string
	publicKey  string
	secretKey  string
	httpClient *http.Client

	pending []event
	now     func() time.Time
}

// Config holds the Langfuse connection settings.
type Config struct {
	Host      string
	PublicKey string
	SecretKey string
	Timeout   time.Duration
}

// Trace describes one evaluation run for a single item.
type Trace struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
}

// Span describes one sub-operation within a trace.
type Span struct {
	TraceID  string         `json:"traceId"`
	Name     string         `json:"name"`
	Input    any            `json:"input,omitempty"`
	Output   any            `json:"output,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Score attaches a numeric metric to a trace.
type Score struct {
	TraceID string  `json:"traceId"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

type event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

// New creates a Langfuse client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		publicKey:  cfg.PublicKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Trace buffers a trace-create event and returns the new trace id.
func (c *Client) Trace(t Trace) string {
	id := uuid.NewString()
	body := map[string]any{
		"id":        id,
		"name":      t.Name,
		"timestamp": c.now().UTC().Format(time.RFC3339Nano),
	}
	if t.Metadata != nil {
		body["metadata"] = t.Metadata
	}
	if t.Tags != nil {
		body["tags"] = t.Tags
	}
	c.enqueue("trace-create", body)
	return id
}

// Span buffers a span-create event under the span's trace.
func (c *Client) Span(s Span) {
	ts := c.now().UTC().Format(time.RFC3339Nano)
	body := map[string]any{
		"id":        uuid.NewString(),
		"traceId":   s.TraceID,
		"name":      s.Name,
		"startTime": ts,
		"endTime":   ts,
	}
	if s.Input != nil {
		body["input"] = s.Input
	}
	if s.Output != nil {
		body["output"] = s.Output
	}
	if s.Metadata != nil {
		body["metadata"] = s.Metadata
	}
	c.enqueue("span-create", body)
}

// Score buffers a score-create event under the score's trace.
func (c *Client) Score(s Score) {
	c.enqueue("score-create", map[string]any{
		"id":      uuid.NewString(),
		"traceId": s.TraceID,
		"name":    s.Name,
		"value":   s.Value,
		"comment": s.Comment,
	})
}

func (c *Client) enqueue(eventType string, body any) {
	c.pending = append(c.pending, event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	})
}

// Flush posts all buffered events and clears the buffer. The buffer is
// cleared even on failure so one bad item cannot poison later ones.
func (c *Client) Flush(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	batch := c.pending
	c.pending = nil

	return c.post(ctx, "/api/public/ingestion", map[string]any{"batch": batch})
}

// Pending reports how many events are waiting for the next Flush.
func (c *Client) Pending() int {
	return len(c.pending)
}

// DatasetItem is one item uploaded to a Langfuse dataset.
type DatasetItem struct {
	DatasetName    string         `json:"datasetName"`
	Input          any            `json:"input"`
	ExpectedOutput any            `json:"expectedOutput,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// CreateDataset creates (or upserts) a named dataset.
func (c *Client) CreateDataset(ctx context.Context, name, description string, metadata map[string]any) error {
	return c.post(ctx, "/api/public/v2/datasets", map[string]any{
		"name":        name,
		"description": description,
		"metadata":    metadata,
	})
}

// CreateDatasetItem adds one item to a dataset.
func (c *Client) CreateDatasetItem(ctx context.Context, item DatasetItem) error {
	return c.post(ctx, "/api/public/dataset-items", item)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("langfuse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("langfuse %s returned %d: %s", path, resp.StatusCode, string(body))
	}
	return nil
}
