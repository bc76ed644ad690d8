package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AskResponse is the gateway's answer to one query.
type AskResponse struct {
	Response string          `json:"response"`
	RoutedTo RoutedTo        `json:"routed_to"`
	Raw      json.RawMessage `json:"-"`
}

// RoutedTo identifies the agent the gateway picked.
type RoutedTo struct {
	Agent string `json:"agent"`
}

// Agent returns the routed agent label, or "unknown" when the gateway
// did not report one.
func (r AskResponse) Agent() string {
	if r.RoutedTo.Agent == "" {
		return "unknown"
	}
	return r.RoutedTo.Agent
}

// Client talks to the demo ask endpoint of the gateway orchestrator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client with a fixed per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ask sends one user message and returns the routed response. A single
// attempt, no retries.
func (c *Client) Ask(ctx context.Context, message string) (*AskResponse, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/demo/ask", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var out AskResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	out.Raw = data
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
