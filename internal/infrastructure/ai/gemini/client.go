// Package gemini provides the Gemini text generator backed by the genai SDK
package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/recipebox/recipebox/internal/domain/ai"
)

// Config holds the Gemini connection settings
type Config struct {
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Client implements outbound.TextGenerator. The SDK client is created on the
// first call so the service can start without a credential.
type Client struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	client *genai.Client
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger.Named("gemini-client"),
	}
}

// Provider identifies the backend
func (c *Client) Provider() ai.ProviderType {
	return ai.ProviderTypeGemini
}

// Generate sends prompt to model and returns the reply text
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if c.cfg.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(c.cfg.Temperature))
	}
	if c.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", providerError(model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ai.ErrEmptyReply
	}

	if usage := resp.UsageMetadata; usage != nil {
		c.logger.Debug("Gemini call completed",
			zap.String("model", model),
			zap.Int32("prompt_tokens", usage.PromptTokenCount),
			zap.Int32("candidate_tokens", usage.CandidatesTokenCount),
			zap.Int32("total_tokens", usage.TotalTokenCount),
		)
	}

	return text, nil
}

func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	cc := &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.cfg.HTTPClient,
	}
	if c.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c.logger.Info("Gemini client initialized")
	c.client = client
	return client, nil
}

// providerError maps SDK API errors onto ai.ProviderError so the candidate
// loop can label rate-limit and unavailable replies.
func providerError(model string, err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return &ai.ProviderError{Provider: ai.ProviderTypeGemini, Model: model, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) {
		return &ai.ProviderError{Provider: ai.ProviderTypeGemini, Model: model, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
