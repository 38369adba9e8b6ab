package video

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipebox/recipebox/internal/infrastructure/extraction"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

const videoID = "dQw4w9WgXcQ"

const initialDataBlob = `{"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[
{"videoPrimaryInfoRenderer":{"title":{"runs":[{"text":"Dal"}]}}},
{"videoSecondaryInfoRenderer":{"attributedDescription":{"content":"Ingredients: 1 cup lentils; 3 cups water. Boil for 20 minutes."}}}
]}}}}}`

func watchPage(description, captions string) string {
	return fmt.Sprintf(`<!doctype html><html><head>
<meta property="og:title" content="Easy Dal Recipe">
<meta property="og:description" content="Short teaser description">
</head><body>
<script>var ytInitialData = %s;</script>
<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s}}};</script>
</body></html>`, description, captions)
}

func newVideoServer(t *testing.T, page string, timedText string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, videoID, r.URL.Query().Get("v"))
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if timedText == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(timedText))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestExtractor(t *testing.T, server *httptest.Server) *Extractor {
	logger := zaptest.NewLogger(t)
	fetcher := extraction.NewFetcher(extraction.FetcherConfig{Timeout: 2 * time.Second}, logger)
	transcripts := NewTranscriptClient(fetcher, server.URL, "", "en", logger)
	return NewExtractor(fetcher, transcripts, Config{BaseURL: server.URL}, logger)
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		url string
		id  string
		ok  bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", videoID, true},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", videoID, true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", videoID, true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "", false},
		{"https://www.youtube.com/watch?v=short", "", false},
		{"https://example.com/recipe", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := VideoID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestExtract_NotAVideo(t *testing.T) {
	e := NewExtractor(nil, nil, Config{}, zaptest.NewLogger(t))

	content, ok, err := e.Extract(context.Background(), "https://example.com/soup")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, content)
}

func TestExtract_DescriptionAndTranscript(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	captions := fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?v=%s&lang=de","languageCode":"de"},{"baseUrl":"/api/timedtext?v=%s&lang=en","languageCode":"en","kind":"asr"}]`,
		server.URL, videoID, videoID)
	page := watchPage(initialDataBlob, captions)
	var watchFetches atomic.Int32
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		watchFetches.Add(1)
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">Today we make dal</text>
<text start="2.6" dur="1.9">rinse the lentils &amp;amp; soak</text>
<text start="4.5" dur="1.0">   </text>
</transcript>`))
	})

	e := newTestExtractor(t, server)

	content, ok, err := e.Extract(context.Background(), "https://youtu.be/"+videoID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Video Title: Easy Dal Recipe\n\n"+
		"Description:\nIngredients: 1 cup lentils; 3 cups water. Boil for 20 minutes.\n\n"+
		"Transcript:\nToday we make dal rinse the lentils & soak", content)
	assert.EqualValues(t, 1, watchFetches.Load(), "watch page is fetched once per extraction")
}

func TestTranscriptClient_FetchesWatchPageWhenNotGiven(t *testing.T) {
	captions := fmt.Sprintf(`[{"baseUrl":"/api/timedtext?v=%s&lang=en","languageCode":"en"}]`, videoID)
	server := newVideoServer(t, watchPage(`{}`, captions),
		`<transcript><text start="0" dur="1">Stir well</text></transcript>`)
	logger := zaptest.NewLogger(t)
	fetcher := extraction.NewFetcher(extraction.FetcherConfig{Timeout: 2 * time.Second}, logger)
	client := NewTranscriptClient(fetcher, server.URL, "", "en", logger)

	segments, err := client.FetchTranscript(context.Background(), videoID, nil)

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Stir well", segments[0].Text)
}

func TestExtract_MetaDescriptionFallbackWithoutTranscript(t *testing.T) {
	server := newVideoServer(t, watchPage(`{"contents":{}}`, `[]`), "")
	e := newTestExtractor(t, server)

	content, ok, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v="+videoID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Video Title: Easy Dal Recipe\n\nDescription:\nShort teaser description\n\nTranscript:\n", content)
}

func TestExtract_NothingUsable(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Vlog"></head><body></body></html>`
	server := newVideoServer(t, page, "")
	e := newTestExtractor(t, server)

	_, ok, err := e.Extract(context.Background(), "https://www.youtube.com/embed/"+videoID)

	assert.True(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtractionFailed))
}

func TestExtract_PageUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	e := newTestExtractor(t, server)

	_, ok, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v="+videoID)

	assert.True(t, ok)
	assert.True(t, errors.Is(err, errors.CodeExtractionFailed))
}

// failingTranscripts always errors
type failingTranscripts struct{}

func (failingTranscripts) FetchTranscript(context.Context, string, []byte) ([]outbound.TranscriptSegment, error) {
	return nil, stderrors.New("captions disabled")
}

func TestExtract_TranscriptFailureIsNotFatal(t *testing.T) {
	server := newVideoServer(t, watchPage(initialDataBlob, `[]`), "")
	logger := zaptest.NewLogger(t)
	fetcher := extraction.NewFetcher(extraction.FetcherConfig{Timeout: 2 * time.Second}, logger)
	e := NewExtractor(fetcher, failingTranscripts{}, Config{BaseURL: server.URL}, logger)

	content, ok, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v="+videoID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, content, "Boil for 20 minutes.")
	assert.Contains(t, content, "Transcript:\n")
}
