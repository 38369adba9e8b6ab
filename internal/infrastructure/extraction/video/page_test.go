package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionFromInitialData(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected string
	}{
		{
			name:     "var assignment",
			page:     `<script>var ytInitialData = ` + initialDataBlob + `;</script>`,
			expected: "Ingredients: 1 cup lentils; 3 cups water. Boil for 20 minutes.",
		},
		{
			name:     "window assignment",
			page:     `<script>window["ytInitialData"] = ` + initialDataBlob + `;</script>`,
			expected: "Ingredients: 1 cup lentils; 3 cups water. Boil for 20 minutes.",
		},
		{
			name:     "trailing script does not confuse the decoder",
			page:     `<script>var ytInitialData = {"contents":{}}; var other = {"a":"};"};</script>`,
			expected: "",
		},
		{
			name:     "malformed blob",
			page:     `<script>var ytInitialData = {"contents": [;</script>`,
			expected: "",
		},
		{
			name:     "wrong shape",
			page:     `<script>var ytInitialData = {"contents":{"twoColumnWatchNextResults":"nope"}};</script>`,
			expected: "",
		},
		{
			name:     "absent",
			page:     `<html></html>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescriptionFromInitialData([]byte(tt.page)))
		})
	}
}

func TestParseWatchPage_EntityDecoding(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Mac &amp; Cheese"></head></html>`

	meta := ParseWatchPage([]byte(page))

	assert.Equal(t, "Mac & Cheese", meta.Title)
	assert.Empty(t, meta.Description)
}

func TestCaptionTracks(t *testing.T) {
	tracks, err := CaptionTracks([]byte(`{"captionTracks":[{"baseUrl":"https://x/t?a=1&b=2","languageCode":"en"},{"languageCode":"fr"}],"other":1}`))

	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "https://x/t?a=1&b=2", tracks[0].BaseURL)

	_, err = CaptionTracks([]byte(`no captions here`))
	assert.ErrorIs(t, err, ErrNoCaptions)

	_, err = CaptionTracks([]byte(`"captionTracks":[]`))
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestParseTimedText(t *testing.T) {
	segments, err := ParseTimedText([]byte(`<transcript><text start="1.25" dur="2">it&amp;#39;s
ready</text></transcript>`))

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "it's ready", segments[0].Text)
	assert.Equal(t, 1.25, segments[0].Start)
	assert.Equal(t, 2.0, segments[0].Duration)

	_, err = ParseTimedText([]byte(`<transcript></transcript>`))
	assert.ErrorIs(t, err, ErrEmptyCaption)

	_, err = ParseTimedText([]byte(`not xml <`))
	assert.Error(t, err)
}
