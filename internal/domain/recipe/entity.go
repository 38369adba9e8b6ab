// Package recipe contains the core domain model for collected recipes.
// A Record is the normalized shape produced from extracted content; a Recipe
// is that record once stored, with identity, ownership and visibility.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is one value of the closed category vocabulary.
type Category string

const (
	CategoryBreakfast Category = "Breakfast"
	CategoryLunch     Category = "Lunch"
	CategoryDinner    Category = "Dinner"
	CategoryDessert   Category = "Dessert"
	CategorySnack     Category = "Snack"
	CategoryAppetizer Category = "Appetizer"
	CategoryMain      Category = "Main"
	CategorySide      Category = "Side"
	CategoryCake      Category = "Cake"
	CategoryCurry     Category = "Curry"
	CategoryPudding   Category = "Pudding"
	CategoryOther     Category = "Other"
)

// Categories lists the vocabulary in the order it is presented to the model.
var Categories = []Category{
	CategoryBreakfast,
	CategoryLunch,
	CategoryDinner,
	CategoryDessert,
	CategorySnack,
	CategoryAppetizer,
	CategoryMain,
	CategorySide,
	CategoryCake,
	CategoryCurry,
	CategoryPudding,
	CategoryOther,
}

// ParseCategory maps free text onto the vocabulary, case-insensitively.
// Anything unrecognised becomes CategoryOther.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CategoryOther
}

// Record is the normalized recipe schema. Pointer fields are optional and
// are omitted from JSON when absent.
type Record struct {
	Title            string   `json:"title"`
	Category         Category `json:"category"`
	Cuisine          *string  `json:"cuisine,omitempty"`
	Servings         *string  `json:"servings,omitempty"`
	PrepTimeMinutes  *int     `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes  *int     `json:"cook_time_minutes,omitempty"`
	TotalTimeMinutes *int     `json:"total_time_minutes,omitempty"`
	Ingredients      string   `json:"ingredients"`
	Steps            string   `json:"steps"`
	SourceURL        *string  `json:"source_url,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

// ComputeTotalTime derives TotalTimeMinutes from prep and cook time.
// Presence decides, not value: 0 prep plus 30 cook is 30.
func (r *Record) ComputeTotalTime() {
	if r.PrepTimeMinutes == nil || r.CookTimeMinutes == nil {
		r.TotalTimeMinutes = nil
		return
	}
	total := *r.PrepTimeMinutes + *r.CookTimeMinutes
	r.TotalTimeMinutes = &total
}

// Validate checks the invariants a record must satisfy before it is stored.
func (r *Record) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	for _, minutes := range []*int{r.PrepTimeMinutes, r.CookTimeMinutes} {
		if minutes == nil {
			continue
		}
		if *minutes < 0 {
			return ErrNegativeDuration
		}
		if *minutes > MaxDurationMinutes {
			return ErrDurationTooLong
		}
	}
	return nil
}

const (
	// MaxTitleLength bounds stored titles.
	MaxTitleLength = 200
	// MaxDurationMinutes bounds prep and cook time so their sum cannot overflow.
	MaxDurationMinutes = 100000
)

// Recipe is a stored Record.
type Recipe struct {
	ID        uuid.UUID
	OwnerID   *uuid.UUID
	Published bool
	Record    Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecipe validates the record and wraps it for storage.
func NewRecipe(record Record, owner *uuid.UUID) (*Recipe, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	record.Category = ParseCategory(string(record.Category))
	record.ComputeTotalTime()

	now := time.Now().UTC()
	return &Recipe{
		ID:        uuid.New(),
		OwnerID:   owner,
		Record:    record,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOwnedBy reports whether user owns the recipe. Unowned recipes belong to nobody.
func (r *Recipe) IsOwnedBy(user uuid.UUID) bool {
	return r.OwnerID != nil && *r.OwnerID == user
}

// CanView reports whether viewer may read the recipe. Published recipes are
// public; drafts are visible to their owner only.
func (r *Recipe) CanView(viewer *uuid.UUID) bool {
	if r.Published {
		return true
	}
	return viewer != nil && r.IsOwnedBy(*viewer)
}

// Replace swaps in a re-normalized record. Edits never patch fields in place.
func (r *Recipe) Replace(record Record, editor uuid.UUID) error {
	if !r.IsOwnedBy(editor) {
		return ErrNotRecipeOwner
	}
	if err := record.Validate(); err != nil {
		return err
	}
	record.Category = ParseCategory(string(record.Category))
	record.ComputeTotalTime()

	r.Record = record
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPublished flips the visibility flag.
func (r *Recipe) SetPublished(published bool, editor uuid.UUID) error {
	if !r.IsOwnedBy(editor) {
		return ErrNotRecipeOwner
	}
	r.Published = published
	r.UpdatedAt = time.Now().UTC()
	return nil
}
