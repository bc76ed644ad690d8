package judge

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agentgateway/chateval/internal/dataset"
	"github.com/agentgateway/chateval/internal/gateway"
)

// Config configures the judge client. Endpoint, APIKey and Deployment
// target an Azure OpenAI resource; BaseURL switches to a plain
// OpenAI-compatible endpoint instead (tests use this).
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	Timeout    time.Duration
	MaxTokens  int
	BaseURL    string
}

// Client runs judge prompts against a chat completion API.
type Client struct {
	client     *openai.Client
	deployment string
	timeout    time.Duration
	maxTokens  int
}

// NewClient builds a judge client from the config.
func NewClient(cfg Config) *Client {
	var clientCfg openai.ClientConfig
	if cfg.BaseURL != "" {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = cfg.BaseURL
	} else {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		deployment: cfg.Deployment,
		timeout:    timeout,
		maxTokens:  maxTokens,
	}
}

// EvaluateRouting scores whether the query reached the expected agent.
func (c *Client) EvaluateRouting(ctx context.Context, item dataset.Item, result *gateway.AskResponse) (Verdict, error) {
	prompt := fmt.Sprintf(routingPrompt, item.Input, item.ExpectedAgent, result.Agent())
	return c.judge(ctx, prompt)
}

// EvaluateQuality scores the response against the item's quality
// criteria and expected content.
func (c *Client) EvaluateQuality(ctx context.Context, item dataset.Item, result *gateway.AskResponse) (Verdict, error) {
	criteria := item.QualityCriteria
	if criteria == "" {
		criteria = "Provide helpful response"
	}
	expected := "N/A"
	if len(item.ExpectedAnswerContains) > 0 {
		expected = item.ExpectedAnswerContains.Join()
	}
	response := result.Response
	if response == "" {
		response = "No response"
	}
	prompt := fmt.Sprintf(qualityPrompt, item.Input, response, criteria, expected)
	return c.judge(ctx, prompt)
}

// EvaluateFactuality checks that the response contains the item's
// expected content. Callers skip this judge when no expected content
// is specified.
func (c *Client) EvaluateFactuality(ctx context.Context, item dataset.Item, result *gateway.AskResponse) (Verdict, error) {
	response := result.Response
	if response == "" {
		response = "No response"
	}
	prompt := fmt.Sprintf(factualityPrompt, item.Input, response, item.ExpectedAnswerContains.Join())
	return c.judge(ctx, prompt)
}

func (c *Client) judge(ctx context.Context, prompt string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("judge returned no choices")
	}
	return ParseVerdict(resp.Choices[0].Message.Content), nil
}
