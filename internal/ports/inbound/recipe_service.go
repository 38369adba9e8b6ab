// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/domain/recipe"
)

// RecipeParser turns a URL or pasted text into a normalized record.
type RecipeParser interface {
	Parse(ctx context.Context, input string) (*recipe.Record, error)
}

// ContentExtractor runs extraction only, without normalization.
type ContentExtractor interface {
	ExtractContent(ctx context.Context, url string) (string, error)
}

// RecipeService defines the use cases for the stored collection
type RecipeService interface {
	// Commands
	Create(ctx context.Context, cmd SaveRecipeCommand) (*RecipeDTO, error)
	Update(ctx context.Context, recipeID uuid.UUID, cmd SaveRecipeCommand) (*RecipeDTO, error)
	SetPublished(ctx context.Context, recipeID, userID uuid.UUID, published bool) (*RecipeDTO, error)
	FixOwners(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Queries
	Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*RecipeDTO, error)
	ListPublished(ctx context.Context, params PaginationParams) (*RecipeList, error)
	ListMine(ctx context.Context, ownerID uuid.UUID, params PaginationParams) (*RecipeList, error)
}

// SaveRecipeCommand carries a full replacement record and the acting user
type SaveRecipeCommand struct {
	Record recipe.Record
	UserID uuid.UUID
}

// PaginationParams selects a page of results
type PaginationParams struct {
	Page  int
	Limit int
}

// Normalize clamps the params to sane bounds.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the row offset of the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// RecipeDTO is the API view of a stored recipe. The record fields are
// flattened into the same object; Display is recomputed on every read.
type RecipeDTO struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	Published bool       `json:"published"`
	recipe.Record
	Display   *recipe.Display `json:"display,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RecipeList is one page of recipes
type RecipeList struct {
	Recipes []RecipeDTO `json:"recipes"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}
