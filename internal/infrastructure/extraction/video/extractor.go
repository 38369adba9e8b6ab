// Package video extracts recipe content from video links: page title,
// long-form description and, when available, the spoken transcript.
// The watch page layout is an undocumented contract; everything that
// depends on it lives in this package.
package video

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/infrastructure/extraction"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]{11})`)

// VideoID returns the 11-character identifier of a watch, short or embed link.
func VideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Config locates the watch pages.
type Config struct {
	BaseURL   string
	UserAgent string
}

// Extractor implements the video content extractor.
type Extractor struct {
	fetcher     outbound.PageFetcher
	transcripts outbound.TranscriptService
	cfg         Config
	logger      *zap.Logger
}

// NewExtractor creates a video extractor.
func NewExtractor(fetcher outbound.PageFetcher, transcripts outbound.TranscriptService, cfg Config, logger *zap.Logger) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.youtube.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Extractor{
		fetcher:     fetcher,
		transcripts: transcripts,
		cfg:         cfg,
		logger:      logger.Named("video-extractor"),
	}
}

// Extract returns ok=false for links that are not video links.
func (e *Extractor) Extract(ctx context.Context, url string) (string, bool, error) {
	videoID, ok := VideoID(url)
	if !ok {
		return "", false, nil
	}

	page, err := e.fetcher.Fetch(ctx, e.cfg.BaseURL+"/watch?v="+videoID, extraction.VideoPageHeaders(e.cfg.UserAgent))
	if err != nil {
		return "", true, errors.NewExtractionError("Failed to fetch video page", err)
	}

	meta := ParseWatchPage(page)
	transcript := e.transcript(ctx, videoID, page)

	if meta.Description == "" && transcript == "" {
		e.logger.Warn("Video has neither description nor transcript", zap.String("video_id", videoID))
		return "", true, errors.NewExtractionError("No description or transcript found for this video", nil)
	}

	e.logger.Info("Video content extracted",
		zap.String("video_id", videoID),
		zap.Int("description_length", len(meta.Description)),
		zap.Int("transcript_length", len(transcript)),
	)
	return Compose(meta.Title, meta.Description, transcript), true, nil
}

// transcript is best-effort: every failure means "no transcript".
func (e *Extractor) transcript(ctx context.Context, videoID string, page []byte) string {
	if e.transcripts == nil {
		return ""
	}

	segments, err := e.transcripts.FetchTranscript(ctx, videoID, page)
	if err != nil {
		e.logger.Warn("Transcript unavailable", zap.String("video_id", videoID), zap.Error(err))
		return ""
	}

	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}

// Compose renders the extracted content blob.
func Compose(title, description, transcript string) string {
	return fmt.Sprintf("Video Title: %s\n\nDescription:\n%s\n\nTranscript:\n%s", title, description, transcript)
}
