package recipe

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	aiapp "github.com/recipebox/recipebox/internal/application/ai"
	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

var urlInput = regexp.MustCompile(`^https?://\S+$`)

// IsURL reports whether input is a single http(s) URL.
func IsURL(input string) bool {
	return urlInput.MatchString(strings.TrimSpace(input))
}

// Normalizer is the part of the normalization engine the parse flow needs.
type Normalizer interface {
	Normalize(ctx context.Context, req aiapp.NormalizeRequest) (*recipe.Record, error)
}

// ReadinessCheck reports a configuration error when the model backend cannot
// be called, for example because its credential is missing.
type ReadinessCheck func() error

// ParseService runs the full pipeline: extraction for URLs, then normalization.
type ParseService struct {
	video      outbound.VideoExtractor
	web        outbound.WebExtractor
	normalizer Normalizer
	ready      ReadinessCheck
	logger     *zap.Logger
}

// NewParseService creates a parse service. A nil ready check always passes.
func NewParseService(
	video outbound.VideoExtractor,
	web outbound.WebExtractor,
	normalizer Normalizer,
	ready ReadinessCheck,
	logger *zap.Logger,
) *ParseService {
	if ready == nil {
		ready = func() error { return nil }
	}
	return &ParseService{
		video:      video,
		web:        web,
		normalizer: normalizer,
		ready:      ready,
		logger:     logger.Named("parse-service"),
	}
}

// Parse turns a URL or pasted recipe text into a normalized record.
func (s *ParseService) Parse(ctx context.Context, input string) (*recipe.Record, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.NewBadRequestError("Invalid input. Please provide a URL or recipe text.")
	}

	if err := s.ready(); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("github.com/recipebox/recipebox/internal/application/recipe").Start(ctx, "parse.Parse")
	defer span.End()

	req := aiapp.NormalizeRequest{Content: input}
	if IsURL(input) {
		span.SetAttributes(attribute.String("source_url", input))
		content, err := s.ExtractContent(ctx, input)
		if err != nil {
			return nil, err
		}
		req = aiapp.NormalizeRequest{Content: content, SourceURL: input}
	}

	record, err := s.normalizer.Normalize(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recipe parsed",
		zap.String("title", record.Title),
		zap.String("category", string(record.Category)),
		zap.Bool("from_url", req.SourceURL != ""),
	)
	return record, nil
}

// ExtractContent tries the video extractor first and treats unrecognised
// links as generic web pages.
func (s *ParseService) ExtractContent(ctx context.Context, url string) (string, error) {
	content, ok, err := s.video.Extract(ctx, url)
	if err != nil {
		s.logger.Warn("Video extraction failed", zap.String("url", url), zap.Error(err))
		return "", err
	}
	if ok {
		return content, nil
	}

	content, err = s.web.Extract(ctx, url)
	if err != nil {
		s.logger.Warn("Web extraction failed", zap.String("url", url), zap.Error(err))
		return "", err
	}
	return content, nil
}
