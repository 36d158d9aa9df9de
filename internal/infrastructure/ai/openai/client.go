// Package openai talks to OpenAI-compatible chat completion APIs (Groq by default)
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pantrysense/v2/internal/domain/ai"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "mixtral-8x7b-32768"

	// maxErrorBody bounds how much of a failed response ends up in the error
	maxErrorBody = 512
)

// Config holds the connection settings
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client implements outbound.AIService over the chat completions endpoint
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a new chat completions client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = ai.DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	named := logger.Named("openai-client")
	if cfg.APIKey == "" {
		named.Warn("No API key configured, every request will fail and fall back")
	}
	named.Info("Chat completions client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
	)

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: named,
	}
}

// ChatCompletionRequest is the request body of /chat/completions
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the response body of /chat/completions
type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateRecipes asks the model for a recipe batch and parses its JSON answer
func (c *Client) GenerateRecipes(ctx context.Context, req ai.RecipeRequest) ([]recipe.Recipe, error) {
	content, err := c.complete(ctx, ai.RecipeSystemPrompt, req.UserPrompt(), ai.RecipeMaxTokens)
	if err != nil {
		return nil, err
	}

	recipes, err := ai.ParseRecipes(content)
	if err != nil {
		c.logger.Error("Failed to parse recipe completion", zap.Error(err))
		return nil, err
	}
	return recipes, nil
}

// Suggest asks the model for a single dish idea
func (c *Client) Suggest(ctx context.Context, req ai.SuggestionRequest) (string, error) {
	return c.complete(ctx, ai.SuggestionSystemPrompt, req.UserPrompt(), ai.SuggestionMaxTokens)
}

// HealthCheck lists the models to verify the key and endpoint
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat completions health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat completions health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "openai"
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("chat completions API key not configured")
	}

	reqBody := ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Info("Chat completion successful",
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
	)

	return chatResp.Choices[0].Message.Content, nil
}

var _ outbound.AIService = (*Client)(nil)
