package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipebox/recipebox/internal/domain/ai"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2:3b", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, "json", req.Format)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "normalize", req.Messages[0].Content)
		}
		assert.EqualValues(t, 256, req.Options["num_predict"])

		_ = json.NewEncoder(w).Encode(ChatResponse{
			Model:   req.Model,
			Message: ChatMessage{Role: "assistant", Content: ` {"title":"Soup"} `},
			Done:    true,
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, MaxTokens: 256}, zaptest.NewLogger(t))

	text, err := client.Generate(context.Background(), "llama3.2:3b", "normalize")

	require.NoError(t, err)
	assert.Equal(t, `{"title":"Soup"}`, text)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
		empty     bool
	}{
		{name: "service unavailable", status: http.StatusServiceUnavailable, body: "loading model", transient: true},
		{name: "model missing", status: http.StatusNotFound, body: `{"error":"model not found"}`},
		{name: "empty content", status: http.StatusOK, body: `{"message":{"role":"assistant","content":""},"done":true}`, empty: true},
		{name: "incomplete", status: http.StatusOK, body: `{"message":{"role":"assistant","content":"{}"},"done":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL}, zaptest.NewLogger(t))

			_, err := client.Generate(context.Background(), "llama3.2:3b", "normalize")

			require.Error(t, err)
			assert.Equal(t, tt.transient, ai.IsTransient(err))
			if tt.empty {
				assert.ErrorIs(t, err, ai.ErrEmptyReply)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zaptest.NewLogger(t))
	assert.NoError(t, client.HealthCheck(context.Background()))

	server.Close()
	assert.Error(t, client.HealthCheck(context.Background()))
}
