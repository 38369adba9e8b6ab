// Package ai provides the normalization engine: it turns extracted content
// into a recipe record by prompting a generative model, falling back across
// an ordered list of candidate models.
package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

// DefaultModels is the candidate list used when none is configured.
var DefaultModels = []string{"gemini-2.0-flash", "gemini-flash-latest"}

// NormalizeRequest is the input to one normalization.
type NormalizeRequest struct {
	Content   string
	SourceURL string
}

// Normalizer drives the candidate model loop.
type Normalizer struct {
	generator outbound.TextGenerator
	recorder  outbound.AttemptRecorder
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.RWMutex
	models []string
}

// NewNormalizer creates a normalizer. An empty models list selects DefaultModels.
func NewNormalizer(generator outbound.TextGenerator, recorder outbound.AttemptRecorder, models []string, logger *zap.Logger) *Normalizer {
	n := &Normalizer{
		generator: generator,
		recorder:  recorder,
		tracer:    otel.Tracer("github.com/recipebox/recipebox/internal/application/ai"),
		logger:    logger.Named("normalizer"),
		now:       time.Now,
	}
	n.SetModels(models)
	return n
}

// SetModels replaces the candidate list. Safe to call while requests are in flight.
func (n *Normalizer) SetModels(models []string) {
	cleaned := make([]string, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultModels...)
	}

	n.mu.Lock()
	n.models = cleaned
	n.mu.Unlock()

	n.logger.Info("Candidate models set", zap.Strings("models", cleaned))
}

// Models returns a copy of the current candidate list.
func (n *Normalizer) Models() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.models...)
}

// Normalize prompts the candidate models in order and decodes the first reply.
func (n *Normalizer) Normalize(ctx context.Context, req NormalizeRequest) (*recipe.Record, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.NewValidationError("content to normalize is empty")
	}

	ctx, span := n.tracer.Start(ctx, "normalizer.Normalize")
	defer span.End()

	prompt := BuildNormalizationPrompt(req.Content, req.SourceURL)
	result := n.generate(ctx, prompt)
	if !result.OK {
		span.SetStatus(codes.Error, "all candidate models failed")
		n.logger.Error("All candidate models failed",
			zap.String("last_model", result.Model),
			zap.Error(result.Err),
		)
		return nil, errors.NewModelError(result.Err)
	}

	record, err := DecodeReply(result.Text)
	if err != nil {
		span.SetStatus(codes.Error, "reply decode failed")
		n.logger.Warn("Model reply could not be decoded",
			zap.String("model", result.Model),
			zap.Int("reply_length", len(result.Text)),
			zap.Error(err),
		)
		return nil, err
	}

	if record.SourceURL == nil && req.SourceURL != "" {
		source := req.SourceURL
		record.SourceURL = &source
	}

	return record, nil
}

// generate walks the candidates strictly in order and returns the first
// success, or the failure of the last candidate tried.
func (n *Normalizer) generate(ctx context.Context, prompt string) ai.CandidateResult {
	models := n.Models()

	result := ai.Failed("", ai.ErrNoCandidate)
	for i, model := range models {
		result = n.attempt(ctx, i, model, prompt)
		if result.OK {
			return result
		}
	}
	return result
}

// attempt runs one candidate and emits exactly one attempt record for it.
func (n *Normalizer) attempt(ctx context.Context, index int, model, prompt string) ai.CandidateResult {
	ctx, span := n.tracer.Start(ctx, "normalizer.attempt", trace.WithAttributes(
		attribute.String("model", model),
		attribute.Int("candidate_index", index),
	))
	defer span.End()

	attempt, text, err := n.call(ctx, index, model, prompt)
	n.recorder.Record(attempt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.logger.Warn("Candidate model failed",
			zap.String("model", model),
			zap.Int("candidate_index", index),
			zap.Bool("fallback", attempt.Fallback),
			zap.Bool("transient", ai.IsTransient(err)),
			zap.Duration("latency", attempt.Latency),
			zap.Error(err),
		)
		return ai.Failed(model, err)
	}

	n.logger.Info("Candidate model succeeded",
		zap.String("model", model),
		zap.Int("candidate_index", index),
		zap.Bool("fallback", attempt.Fallback),
		zap.Duration("latency", attempt.Latency),
	)
	return ai.Succeeded(model, text)
}

// call sends prompt to one model and closes the attempt. A blank reply is a failure.
func (n *Normalizer) call(ctx context.Context, index int, model, prompt string) (ai.ModelAttempt, string, error) {
	start := n.now()
	attempt := ai.NewModelAttempt(n.generator.Provider(), model, index, start)

	text, err := n.generator.Generate(ctx, model, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ai.ErrEmptyReply
	}
	latency := n.now().Sub(start)

	if err != nil {
		return attempt.Failed(latency, err), "", err
	}
	return attempt.Succeeded(latency), text, nil
}

// CheckPrompt is the short prompt used to check that a model answers.
const CheckPrompt = "Say hello"

// CheckModels sends CheckPrompt to each of models, or to the candidate list when
// models is empty, and returns one attempt per model in order. Every model is
// tried regardless of earlier outcomes. Checks are not recorded as telemetry.
func (n *Normalizer) CheckModels(ctx context.Context, models []string) []ai.ModelAttempt {
	if len(models) == 0 {
		models = n.Models()
	}

	attempts := make([]ai.ModelAttempt, 0, len(models))
	for i, model := range models {
		attempt, _, err := n.call(ctx, i, model, CheckPrompt)
		if err != nil {
			n.logger.Warn("Model check failed", zap.String("model", model), zap.Error(err))
		}
		attempts = append(attempts, attempt)
	}
	return attempts
}
