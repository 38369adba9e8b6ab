// Package ai defines the domain types for generative model calls.
package ai

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType identifies the backend that serves model calls.
type ProviderType string

const (
	ProviderTypeGemini ProviderType = "gemini"
	ProviderTypeOpenAI ProviderType = "openai"
	ProviderTypeOllama ProviderType = "ollama"
)

// Outcome is the result of one model attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ModelAttempt records one try of one candidate model against one prompt.
// Attempts are telemetry only; they never feed back into control flow.
type ModelAttempt struct {
	ID             uuid.UUID
	Provider       ProviderType
	Model          string
	CandidateIndex int
	Fallback       bool
	Outcome        Outcome
	Latency        time.Duration
	Error          string
	StartedAt      time.Time
}

// NewModelAttempt starts an attempt for the candidate at index.
func NewModelAttempt(provider ProviderType, model string, index int, startedAt time.Time) ModelAttempt {
	return ModelAttempt{
		ID:             uuid.New(),
		Provider:       provider,
		Model:          model,
		CandidateIndex: index,
		Fallback:       index > 0,
		StartedAt:      startedAt,
	}
}

// Succeeded closes the attempt as a success.
func (a ModelAttempt) Succeeded(latency time.Duration) ModelAttempt {
	a.Outcome = OutcomeSuccess
	a.Latency = latency
	a.Error = ""
	return a
}

// Failed closes the attempt as a failure carrying err's text.
func (a ModelAttempt) Failed(latency time.Duration, err error) ModelAttempt {
	a.Outcome = OutcomeFailure
	a.Latency = latency
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

// Success reports whether the attempt produced a reply.
func (a ModelAttempt) Success() bool {
	return a.Outcome == OutcomeSuccess
}

// CandidateResult is the tagged outcome of the candidate loop: exactly one of
// Text or Err is meaningful, selected by OK.
type CandidateResult struct {
	OK    bool
	Model string
	Text  string
	Err   error
}

// Succeeded builds the success variant.
func Succeeded(model, text string) CandidateResult {
	return CandidateResult{OK: true, Model: model, Text: text}
}

// Failed builds the failure variant carrying the last error seen.
func Failed(model string, err error) CandidateResult {
	return CandidateResult{Model: model, Err: err}
}
