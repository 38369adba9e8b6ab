package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/pkg/errors"
	"github.com/recipebox/recipebox/pkg/healthcheck"
)

func TestNewTextGenerator(t *testing.T) {
	for _, provider := range []string{"gemini", "openai", "ollama"} {
		t.Run(provider, func(t *testing.T) {
			gen, err := NewTextGenerator(config.AIConfig{Provider: provider}, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, provider, string(gen.Provider()))
		})
	}

	_, err := NewTextGenerator(config.AIConfig{Provider: "palm"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AIConfig
		ok   bool
	}{
		{name: "gemini with key", cfg: config.AIConfig{Provider: "gemini", APIKey: "k"}, ok: true},
		{name: "gemini without key", cfg: config.AIConfig{Provider: "gemini"}, ok: false},
		{name: "openai without key", cfg: config.AIConfig{Provider: "openai"}, ok: false},
		{name: "ollama needs no key", cfg: config.AIConfig{Provider: "ollama"}, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(tt.cfg, nil, zaptest.NewLogger(t))
			err := h.Ready()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errors.CodeConfiguration, appErr.Code)
			assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
		})
	}
}

func TestCheckHealth_PingsOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := config.AIConfig{Provider: "ollama", BaseURL: server.URL}
	gen, err := NewTextGenerator(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	status := NewHealthChecker(cfg, gen, zaptest.NewLogger(t)).CheckHealth(context.Background())

	assert.True(t, status.Configured)
	require.NotNil(t, status.Reachable)
	assert.False(t, *status.Reachable)
	assert.False(t, status.Healthy())
}

func TestCheckHealth_HostedProviderIsNotCalled(t *testing.T) {
	cfg := config.AIConfig{Provider: "gemini", APIKey: "k"}
	gen, err := NewTextGenerator(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	status := NewHealthChecker(cfg, gen, zaptest.NewLogger(t)).CheckHealth(context.Background())

	assert.Nil(t, status.Reachable)
	assert.True(t, status.Healthy())
}

func TestCheck_MissingKeyDegrades(t *testing.T) {
	cfg := config.AIConfig{Provider: "gemini"}
	gen, err := NewTextGenerator(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	check := NewHealthChecker(cfg, gen, zaptest.NewLogger(t)).Check(context.Background())

	assert.Equal(t, "ai", check.Name)
	assert.Equal(t, healthcheck.StatusDegraded, check.Status)
	assert.Equal(t, "credential missing", check.Message)
}
