// Package ollama provides a local Ollama text generator
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

	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/ai"
)

const defaultBaseURL = "http://localhost:11434"

// Config holds the Ollama connection settings
type Config struct {
	BaseURL     string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Client implements outbound.TextGenerator using the Ollama chat API
type Client struct {
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger.Info("Ollama client initialized", zap.String("base_url", baseURL))

	return &Client{
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      httpClient,
		logger:      logger.Named("ollama-client"),
	}
}

// Ollama API structures
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

// Provider identifies the backend
func (c *Client) Provider() ai.ProviderType {
	return ai.ProviderTypeOllama
}

// HealthCheck verifies the Ollama service is reachable
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

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}

	c.logger.Debug("Ollama health check passed")
	return nil
}

// Generate sends prompt to model and returns the reply text
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	options := map[string]interface{}{}
	if c.temperature > 0 {
		options["temperature"] = c.temperature
	}
	if c.maxTokens > 0 {
		options["num_predict"] = c.maxTokens
	}

	reqBody := ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "user", Content: prompt},
		},
		Stream:  false,
		Format:  "json",
		Options: options,
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
		return "", &ai.ProviderError{
			Provider:   ai.ProviderTypeOllama,
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !chatResp.Done {
		return "", fmt.Errorf("incomplete response from Ollama")
	}

	text := strings.TrimSpace(chatResp.Message.Content)
	if text == "" {
		return "", ai.ErrEmptyReply
	}

	c.logger.Debug("Ollama chat completion successful",
		zap.String("model", chatResp.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int64("eval_duration", chatResp.EvalDuration),
		zap.Int("eval_count", chatResp.EvalCount))

	return text, nil
}
