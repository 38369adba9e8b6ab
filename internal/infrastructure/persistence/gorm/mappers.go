package gorm

import (
	"time"

	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/domain/recipe"
)

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	rec := r.Record
	return &RecipeModel{
		ID:               r.ID,
		OwnerID:          r.OwnerID,
		Published:        r.Published,
		Title:            rec.Title,
		Category:         string(rec.Category),
		Cuisine:          rec.Cuisine,
		Servings:         rec.Servings,
		PrepTimeMinutes:  rec.PrepTimeMinutes,
		CookTimeMinutes:  rec.CookTimeMinutes,
		TotalTimeMinutes: rec.TotalTimeMinutes,
		Ingredients:      rec.Ingredients,
		Steps:            rec.Steps,
		SourceURL:        rec.SourceURL,
		Notes:            rec.Notes,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) *recipe.Recipe {
	return &recipe.Recipe{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Published: m.Published,
		Record: recipe.Record{
			Title:            m.Title,
			Category:         recipe.ParseCategory(m.Category),
			Cuisine:          m.Cuisine,
			Servings:         m.Servings,
			PrepTimeMinutes:  m.PrepTimeMinutes,
			CookTimeMinutes:  m.CookTimeMinutes,
			TotalTimeMinutes: m.TotalTimeMinutes,
			Ingredients:      m.Ingredients,
			Steps:            m.Steps,
			SourceURL:        m.SourceURL,
			Notes:            m.Notes,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// AttemptToModel converts a model attempt to a GORM model
func AttemptToModel(a ai.ModelAttempt) *ModelAttemptModel {
	return &ModelAttemptModel{
		ID:             a.ID,
		Provider:       string(a.Provider),
		Model:          a.Model,
		CandidateIndex: a.CandidateIndex,
		Fallback:       a.Fallback,
		Outcome:        string(a.Outcome),
		LatencyMS:      a.Latency.Milliseconds(),
		ErrorMessage:   a.Error,
		StartedAt:      a.StartedAt,
	}
}

// ModelToAttempt converts a GORM model to a model attempt
func ModelToAttempt(m *ModelAttemptModel) ai.ModelAttempt {
	return ai.ModelAttempt{
		ID:             m.ID,
		Provider:       ai.ProviderType(m.Provider),
		Model:          m.Model,
		CandidateIndex: m.CandidateIndex,
		Fallback:       m.Fallback,
		Outcome:        ai.Outcome(m.Outcome),
		Latency:        time.Duration(m.LatencyMS) * time.Millisecond,
		Error:          m.ErrorMessage,
		StartedAt:      m.StartedAt,
	}
}
