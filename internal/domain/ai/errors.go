package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyReply  = errors.New("model returned an empty reply")
	ErrNoCandidate = errors.New("no candidate models configured")
)

// ProviderError is returned by model clients when the remote service answers
// with an error status.
type ProviderError struct {
	Provider   ProviderType
	Model      string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s model %s returned status %d: %s", e.Provider, e.Model, e.StatusCode, e.Message)
}

// Transient reports rate-limit and unavailable replies. The candidate loop
// falls through on every error; this only labels the log line.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// IsTransient reports whether err carries a transient ProviderError.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient()
}
