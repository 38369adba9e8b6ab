// Package ai wires the configured generative model backend
package ai

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/infrastructure/ai/gemini"
	"github.com/recipebox/recipebox/internal/infrastructure/ai/ollama"
	"github.com/recipebox/recipebox/internal/infrastructure/ai/openai"
	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/ports/outbound"
)

// NewTextGenerator selects the backend named by cfg.Provider. Model calls
// carry no client-side deadline; they are bounded by the request context.
func NewTextGenerator(cfg config.AIConfig, logger *zap.Logger) (outbound.TextGenerator, error) {
	namedLogger := logger.Named("ai-provider")
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	var generator outbound.TextGenerator
	switch cfg.Provider {
	case "gemini":
		generator = gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			HTTPClient:  httpClient,
		}, logger)
	case "openai":
		generator = openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			HTTPClient:  httpClient,
		}, logger)
	case "ollama":
		generator = ollama.NewClient(ollama.Config{
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			HTTPClient:  httpClient,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	namedLogger.Info("AI provider initialized",
		zap.String("provider", cfg.Provider),
		zap.Strings("models", cfg.Models),
		zap.Bool("credential_present", cfg.APIKey != ""),
	)

	return generator, nil
}
