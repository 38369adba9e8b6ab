package video

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/infrastructure/extraction"
	"github.com/recipebox/recipebox/internal/ports/outbound"
)

var (
	ErrNoCaptions   = errors.New("video has no caption tracks")
	ErrEmptyCaption = errors.New("caption track is empty")
)

var captionTracksMarker = []byte(`"captionTracks":`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptClient reads caption tracks published on the watch page.
type TranscriptClient struct {
	fetcher   outbound.PageFetcher
	baseURL   string
	userAgent string
	language  string
	logger    *zap.Logger
}

// NewTranscriptClient creates a transcript client. language is the preferred
// caption language; "en" when empty.
func NewTranscriptClient(fetcher outbound.PageFetcher, baseURL, userAgent, language string, logger *zap.Logger) *TranscriptClient {
	if language == "" {
		language = "en"
	}
	return &TranscriptClient{
		fetcher:   fetcher,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		language:  language,
		logger:    logger.Named("transcript"),
	}
}

// FetchTranscript returns the ordered caption cues of videoID. The watch page
// is fetched only when page is nil.
func (c *TranscriptClient) FetchTranscript(ctx context.Context, videoID string, page []byte) ([]outbound.TranscriptSegment, error) {
	if page == nil {
		var err error
		page, err = c.fetcher.Fetch(ctx, c.baseURL+"/watch?v="+videoID, extraction.VideoPageHeaders(c.userAgent))
		if err != nil {
			return nil, fmt.Errorf("fetch watch page: %w", err)
		}
	}

	tracks, err := CaptionTracks(page)
	if err != nil {
		return nil, err
	}
	track := c.pickTrack(tracks)

	trackURL := track.BaseURL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.baseURL + trackURL
	}

	body, err := c.fetcher.Fetch(ctx, trackURL, extraction.VideoPageHeaders(c.userAgent))
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}

	segments, err := ParseTimedText(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Transcript fetched",
		zap.String("video_id", videoID),
		zap.String("language", track.LanguageCode),
		zap.Int("segments", len(segments)),
	)
	return segments, nil
}

// pickTrack prefers an exact language match, then a regional variant, then
// the first track.
func (c *TranscriptClient) pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == c.language {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, c.language+"-") {
			return t
		}
	}
	return tracks[0]
}

// CaptionTracks decodes the caption track list embedded in a watch page.
func CaptionTracks(page []byte) ([]captionTrack, error) {
	idx := bytes.Index(page, captionTracksMarker)
	if idx < 0 {
		return nil, ErrNoCaptions
	}

	var tracks []captionTrack
	dec := json.NewDecoder(bytes.NewReader(page[idx+len(captionTracksMarker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}

	usable := tracks[:0]
	for _, t := range tracks {
		if t.BaseURL != "" {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoCaptions
	}
	return usable, nil
}

// ParseTimedText decodes a timed-text caption document. Cue text is
// entity-unescaped and whitespace-collapsed; empty cues are dropped.
func ParseTimedText(body []byte) ([]outbound.TranscriptSegment, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode timed text: %w", err)
	}

	segments := make([]outbound.TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.Join(strings.Fields(html.UnescapeString(t.Body)), " ")
		if text == "" {
			continue
		}
		segments = append(segments, outbound.TranscriptSegment{
			Text:     text,
			Start:    t.Start,
			Duration: t.Duration,
		})
	}
	if len(segments) == 0 {
		return nil, ErrEmptyCaption
	}
	return segments, nil
}
