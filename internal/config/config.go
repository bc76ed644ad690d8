package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file if one is present. Missing files are fine;
// real environments set variables directly.
func LoadEnv() {
	_ = godotenv.Load(".env")
}

// ChatUI holds the proxy/static server configuration.
type ChatUI struct {
	Host          string
	Port          string
	BackendURL    string
	StaticDir     string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	AgentsTimeout time.Duration
	AskTimeout    time.Duration
}

// LoadChatUI reads the chat UI server configuration from the environment.
func LoadChatUI() ChatUI {
	return ChatUI{
		Host:          getEnv("HOST", "0.0.0.0"),
		Port:          getEnv("PORT", "8080"),
		BackendURL:    getEnv("DEMO_ENDPOINT", "http://demo-orchestrator.ai-agents.svc.cluster.local"),
		StaticDir:     getEnv("STATIC_DIR", "./static"),
		ReadTimeout:   getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:  getEnvDuration("SERVER_WRITE_TIMEOUT", 150*time.Second),
		AgentsTimeout: getEnvDuration("AGENTS_PROXY_TIMEOUT", 30*time.Second),
		AskTimeout:    getEnvDuration("ASK_PROXY_TIMEOUT", 120*time.Second),
	}
}

// Addr returns the listen address.
func (c ChatUI) Addr() string {
	return c.Host + ":" + c.Port
}

// Judge holds the Azure OpenAI settings for LLM-as-a-judge calls.
type Judge struct {
	Endpoint   string
	APIKey     string
	Deployment string
	Timeout    time.Duration
	MaxTokens  int

	// BaseURL overrides the Azure endpoint with a plain OpenAI-style
	// base URL. Used by tests to point at a local server.
	BaseURL string
}

// Langfuse holds the analytics backend credentials.
type Langfuse struct {
	Host      string
	PublicKey string
	SecretKey string
}

// Eval holds the evaluation runner configuration.
type Eval struct {
	GatewayURL  string
	DatasetPath string
	RunName     string
	OutputDir   string
	AskTimeout  time.Duration
	Judge       Judge
	Langfuse    Langfuse
}

// LoadEval reads the evaluation runner configuration from the
// environment. Flag values override fields after loading.
func LoadEval() Eval {
	return Eval{
		DatasetPath: getEnv("EVAL_DATASET", "evaluation/dataset.json"),
		OutputDir:   getEnv("EVAL_OUTPUT_DIR", "evaluation"),
		AskTimeout:  getEnvDuration("GATEWAY_ASK_TIMEOUT", 120*time.Second),
		Judge: Judge{
			Endpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
			Deployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o"),
			Timeout:    getEnvDuration("JUDGE_TIMEOUT", 60*time.Second),
			MaxTokens:  getEnvInt("JUDGE_MAX_TOKENS", 500),
		},
		Langfuse: Langfuse{
			Host:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
			PublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
			SecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
		},
	}
}

// Validate checks that everything a full evaluation run needs is set.
func (c Eval) Validate() error {
	if c.GatewayURL == "" {
		return errors.New("gateway URL is required")
	}
	if c.Judge.BaseURL == "" {
		if c.Judge.Endpoint == "" || c.Judge.APIKey == "" {
			return errors.New("AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY must be set")
		}
	}
	return c.Langfuse.Validate()
}

// Validate checks the Langfuse credentials.
func (c Langfuse) Validate() error {
	if c.PublicKey == "" || c.SecretKey == "" {
		return errors.New("LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY must be set")
	}
	return nil
}

// DefaultRunName builds an eval-<timestamp> run name.
func DefaultRunName(now time.Time) string {
	return fmt.Sprintf("eval-%s", now.Format("20060102-150405"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
