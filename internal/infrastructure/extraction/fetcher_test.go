package extraction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipebox/recipebox/pkg/errors"
)

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "navigate", r.Header.Get("Sec-Fetch-Mode"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{}, zaptest.NewLogger(t))

	body, err := f.Fetch(context.Background(), server.URL, BrowserHeaders(""))

	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{}, zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), server.URL, BrowserHeaders(""))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeFetchFailed))
	assert.Contains(t, err.Error(), "403")
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{Timeout: 50 * time.Millisecond}, zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), server.URL, VideoPageHeaders(""))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeFetchFailed))
}

func TestFetch_BodyIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{MaxBodyBytes: 100}, zaptest.NewLogger(t))

	body, err := f.Fetch(context.Background(), server.URL, VideoPageHeaders("custom-agent"))

	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewFetcher(FetcherConfig{}, zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), "http://[::1", nil)

	assert.True(t, errors.Is(err, errors.CodeFetchFailed))
}
