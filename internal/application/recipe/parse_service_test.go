package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	aiapp "github.com/recipebox/recipebox/internal/application/ai"
	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/pkg/errors"
)

type parseFixture struct {
	service    *ParseService
	video      *MockVideoExtractor
	web        *MockWebExtractor
	normalizer *MockNormalizer
}

func newParseFixture(t *testing.T, ready ReadinessCheck) parseFixture {
	f := parseFixture{
		video:      &MockVideoExtractor{},
		web:        &MockWebExtractor{},
		normalizer: &MockNormalizer{},
	}
	f.service = NewParseService(f.video, f.web, f.normalizer, ready, zaptest.NewLogger(t))
	return f
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/recipe"))
	assert.True(t, IsURL("  http://youtu.be/abcdefghijk "))
	assert.False(t, IsURL("ftp://example.com"))
	assert.False(t, IsURL("https://example.com and some text"))
	assert.False(t, IsURL("2 cups flour"))
}

func TestParse_RawText(t *testing.T) {
	f := newParseFixture(t, nil)
	text := "Pancakes: 1 cup flour, 1 egg. Mix and fry."
	f.normalizer.On("Normalize", mock.Anything, aiapp.NormalizeRequest{Content: text}).
		Return(&recipe.Record{Title: "Pancakes"}, nil).Once()

	record, err := f.service.Parse(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, "Pancakes", record.Title)
	f.video.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	f.web.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestParse_VideoURL(t *testing.T) {
	f := newParseFixture(t, nil)
	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	f.video.On("Extract", mock.Anything, url).Return("Video Title: Curry", true, nil).Once()
	f.normalizer.On("Normalize", mock.Anything, aiapp.NormalizeRequest{Content: "Video Title: Curry", SourceURL: url}).
		Return(&recipe.Record{Title: "Curry"}, nil).Once()

	record, err := f.service.Parse(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, "Curry", record.Title)
	f.web.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestParse_WebURLAfterVideoDeclines(t *testing.T) {
	f := newParseFixture(t, nil)
	url := "https://example.com/soup"
	f.video.On("Extract", mock.Anything, url).Return("", false, nil).Once()
	f.web.On("Extract", mock.Anything, url).Return(`{"@type":"Recipe","name":"Soup"}`, nil).Once()
	f.normalizer.On("Normalize", mock.Anything, mock.MatchedBy(func(req aiapp.NormalizeRequest) bool {
		return req.SourceURL == url && req.Content == `{"@type":"Recipe","name":"Soup"}`
	})).Return(&recipe.Record{Title: "Soup"}, nil).Once()

	_, err := f.service.Parse(context.Background(), url)

	require.NoError(t, err)
	f.normalizer.AssertExpectations(t)
}

func TestParse_ExtractionErrorStopsPipeline(t *testing.T) {
	f := newParseFixture(t, nil)
	url := "https://example.com/blocked"
	f.video.On("Extract", mock.Anything, url).Return("", false, nil).Once()
	f.web.On("Extract", mock.Anything, url).Return("", errors.NewFetchError(url, 403, nil)).Once()

	_, err := f.service.Parse(context.Background(), url)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeFetchFailed))
	f.normalizer.AssertNotCalled(t, "Normalize", mock.Anything, mock.Anything)
}

func TestParse_MissingCredential(t *testing.T) {
	f := newParseFixture(t, func() error {
		return errors.NewConfigurationError("model credential is not set")
	})

	_, err := f.service.Parse(context.Background(), "https://example.com/soup")

	assert.True(t, errors.Is(err, errors.CodeConfiguration))
	f.video.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestParse_EmptyInput(t *testing.T) {
	f := newParseFixture(t, nil)

	_, err := f.service.Parse(context.Background(), "   ")

	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}
