// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/domain/recipe"
)

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	Create(ctx context.Context, r *recipe.Recipe) error
	Update(ctx context.Context, r *recipe.Recipe) error

	// Queries return the page plus the total row count
	FindPublished(ctx context.Context, offset, limit int) ([]*recipe.Recipe, int64, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error)

	// AssignOwner claims every unowned recipe for ownerID and returns how many changed
	AssignOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// TextGenerator is a generative model backend. Generate returns the raw
// reply text for prompt, or an error for any failure including empty replies.
type TextGenerator interface {
	Provider() ai.ProviderType
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// AttemptRecorder accepts model attempts without blocking the caller.
type AttemptRecorder interface {
	Record(attempt ai.ModelAttempt)
}

// AttemptSink durably writes one attempt. Sinks may block; they are only
// ever called off the request path.
type AttemptSink interface {
	Name() string
	Write(ctx context.Context, attempt ai.ModelAttempt) error
}

// PageFetcher retrieves a page body with the given request headers.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error)
}

// TranscriptSegment is one caption cue. Start and Duration are in seconds.
type TranscriptSegment struct {
	Text     string
	Start    float64
	Duration float64
}

// TranscriptService fetches the spoken-word transcript of a video.
// watchPage is the already-fetched watch page, or nil to fetch it.
type TranscriptService interface {
	FetchTranscript(ctx context.Context, videoID string, watchPage []byte) ([]TranscriptSegment, error)
}

// WebExtractor turns a generic web page into extracted content.
type WebExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// VideoExtractor turns a video link into extracted content. ok is false when
// url is not a recognised video link, which is not an error.
type VideoExtractor interface {
	Extract(ctx context.Context, url string) (content string, ok bool, err error)
}
