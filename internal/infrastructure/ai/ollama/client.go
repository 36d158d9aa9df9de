// Package ollama provides Ollama integration for local AI inference
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2:3b"
)

// Config holds the connection settings
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements outbound.AIService using the Ollama chat API
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	named := logger.Named("ollama-client")
	named.Info("Ollama client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: named,
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ChatResponse struct {
	Model        string      `json:"model"`
	Message      ChatMessage `json:"message"`
	Done         bool        `json:"done"`
	EvalCount    int         `json:"eval_count,omitempty"`
	EvalDuration int64       `json:"eval_duration,omitempty"`
}

// HealthCheck verifies the Ollama service is available
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// GenerateRecipes generates a recipe batch
func (c *Client) GenerateRecipes(ctx context.Context, req ai.RecipeRequest) ([]recipe.Recipe, error) {
	content, err := c.chat(ctx, ai.RecipeSystemPrompt, req.UserPrompt(), ai.RecipeMaxTokens)
	if err != nil {
		return nil, err
	}
	return ai.ParseRecipes(content)
}

// Suggest generates a single dish idea
func (c *Client) Suggest(ctx context.Context, req ai.SuggestionRequest) (string, error) {
	return c.chat(ctx, ai.SuggestionSystemPrompt, req.UserPrompt(), ai.SuggestionMaxTokens)
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "ollama"
}

func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Options: map[string]interface{}{
			"temperature": ai.DefaultTemperature,
			"num_predict": maxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !chatResp.Done {
		return "", fmt.Errorf("incomplete response from Ollama")
	}

	c.logger.Debug("Ollama chat completion successful",
		zap.String("model", chatResp.Model),
		zap.Int64("eval_duration", chatResp.EvalDuration),
		zap.Int("eval_count", chatResp.EvalCount))

	return chatResp.Message.Content, nil
}

var _ outbound.AIService = (*Client)(nil)
