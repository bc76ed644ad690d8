package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgateway/chateval/internal/config"
)

func TestLoadChatUI_Defaults(t *testing.T) {
	cfg := config.LoadChatUI()
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "./static", cfg.StaticDir)
	assert.Equal(t, 30*time.Second, cfg.AgentsTimeout)
	assert.Equal(t, 120*time.Second, cfg.AskTimeout)
}

func TestLoadChatUI_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEMO_ENDPOINT", "http://orchestrator:8000")
	t.Setenv("ASK_PROXY_TIMEOUT", "10s")

	cfg := config.LoadChatUI()
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "http://orchestrator:8000", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.AskTimeout)
}

func TestEvalValidate(t *testing.T) {
	cfg := config.Eval{}
	require.Error(t, cfg.Validate(), "gateway URL required")

	cfg.GatewayURL = "http://gw.local"
	require.Error(t, cfg.Validate(), "judge credentials required")

	cfg.Judge.Endpoint = "https://example.openai.azure.com"
	cfg.Judge.APIKey = "key"
	require.Error(t, cfg.Validate(), "langfuse credentials required")

	cfg.Langfuse.PublicKey = "pk"
	cfg.Langfuse.SecretKey = "sk"
	require.NoError(t, cfg.Validate())
}

func TestEvalValidate_BaseURLSkipsAzureCheck(t *testing.T) {
	cfg := config.Eval{
		GatewayURL: "http://gw.local",
		Judge:      config.Judge{BaseURL: "http://localhost:1234/v1"},
		Langfuse:   config.Langfuse{PublicKey: "pk", SecretKey: "sk"},
	}
	require.NoError(t, cfg.Validate())
}

func TestDefaultRunName(t *testing.T) {
	now := time.Date(2025, 11, 4, 9, 30, 15, 0, time.UTC)
	assert.Equal(t, "eval-20251104-093015", config.DefaultRunName(now))
}
