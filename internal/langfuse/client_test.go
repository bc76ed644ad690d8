package langfuse_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgateway/chateval/internal/langfuse"
)

type ingestionBody struct {
	Batch []struct {
		ID        string         `json:"id"`
		Type      string         `json:"type"`
		Timestamp string         `json:"timestamp"`
		Body      map[string]any `json:"body"`
	} `json:"batch"`
}

func newClient(ts *httptest.Server) *langfuse.Client {
	return langfuse.New(langfuse.Config{
		Host:      ts.URL,
		PublicKey: "pk-lf-test",
		SecretKey: "sk-lf-test",
	})
}

func TestFlush_PostsBufferedEventsWithBasicAuth(t *testing.T) {
	var gotPath string
	var gotBody ingestionBody
	var gotUser, gotPass string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer ts.Close()

	client := newClient(ts)
	traceID := client.Trace(langfuse.Trace{
		Name:     "evaluation-run",
		Metadata: map[string]any{"item_id": "password-reset"},
		Tags:     []string{"evaluation", "it", "eval-test"},
	})
	require.NotEmpty(t, traceID)

	client.Span(langfuse.Span{
		TraceID:  traceID,
		Name:     "demo-api-call",
		Input:    map[string]any{"message": "reset my password"},
		Metadata: map[string]any{"latency_seconds": 1.5},
	})
	client.Score(langfuse.Score{TraceID: traceID, Name: "overall", Value: 0.8, Comment: "avg"})
	require.Equal(t, 3, client.Pending())

	require.NoError(t, client.Flush(context.Background()))
	require.Equal(t, 0, client.Pending())

	assert.Equal(t, "/api/public/ingestion", gotPath)
	assert.Equal(t, "pk-lf-test", gotUser)
	assert.Equal(t, "sk-lf-test", gotPass)

	require.Len(t, gotBody.Batch, 3)
	assert.Equal(t, "trace-create", gotBody.Batch[0].Type)
	assert.Equal(t, "span-create", gotBody.Batch[1].Type)
	assert.Equal(t, "score-create", gotBody.Batch[2].Type)
	assert.Equal(t, traceID, gotBody.Batch[0].Body["id"])
	assert.Equal(t, traceID, gotBody.Batch[1].Body["traceId"])
	assert.Equal(t, "overall", gotBody.Batch[2].Body["name"])
	assert.Equal(t, 0.8, gotBody.Batch[2].Body["value"])
}

func TestFlush_EmptyBufferIsNoop(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer ts.Close()

	require.NoError(t, newClient(ts).Flush(context.Background()))
	assert.Zero(t, hits)
}

func TestFlush_ErrorStillClearsBuffer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := newClient(ts)
	client.Trace(langfuse.Trace{Name: "evaluation-run"})

	err := client.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 0, client.Pending())
}

func TestCreateDatasetAndItem(t *testing.T) {
	var paths []string
	var bodies []map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
	}))
	defer ts.Close()

	client := newClient(ts)
	ctx := context.Background()

	require.NoError(t, client.CreateDataset(ctx, "helpdesk-eval", "scenarios", map[string]any{"source": "dataset.json"}))
	require.NoError(t, client.CreateDatasetItem(ctx, langfuse.DatasetItem{
		DatasetName: "helpdesk-eval",
		Input:       map[string]any{"message": "reset my password"},
		Metadata:    map[string]any{"id": "password-reset"},
	}))

	require.Equal(t, []string{"/api/public/v2/datasets", "/api/public/dataset-items"}, paths)
	assert.Equal(t, "helpdesk-eval", bodies[0]["name"])
	assert.Equal(t, "helpdesk-eval", bodies[1]["datasetName"])
}
