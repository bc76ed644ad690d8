package chatui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrBackendUnreachable marks failures to reach the backend
// orchestrator, including upstream error statuses. The ask route maps
// these to 502.
var ErrBackendUnreachable = errors.New("backend unreachable")

// ErrInvalidBackendJSON marks backend bodies that do not decode as
// JSON. The ask route maps these to 400, the agents route to 500.
var ErrInvalidBackendJSON = errors.New("invalid backend JSON")

// Backend forwards requests to the orchestrator. One attempt per call,
// no retries.
type Backend struct {
	baseURL      string
	agentsClient *http.Client
	askClient    *http.Client
}

// NewBackend creates a backend proxy client. The agents listing uses a
// short timeout; ask calls wait much longer because the orchestrator
// runs a full agent conversation.
func NewBackend(baseURL string, agentsTimeout, askTimeout time.Duration) *Backend {
	return &Backend{
		baseURL:      strings.TrimRight(baseURL, "/"),
		agentsClient: &http.Client{Timeout: agentsTimeout},
		askClient:    &http.Client{Timeout: askTimeout},
	}
}

// Agents fetches the backend's agent listing and returns the raw JSON
// body.
func (b *Backend) Agents(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/agents", nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.agentsClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: backend returned %d", ErrBackendUnreachable, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidBackendJSON
	}
	return body, nil
}

// Ask forwards one user message to the backend and returns the raw
// JSON result so the caller can relay it untouched.
func (b *Backend) Ask(ctx context.Context, message string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.askClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: backend returned %d", ErrBackendUnreachable, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidBackendJSON
	}
	return body, nil
}
