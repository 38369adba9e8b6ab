package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/recipebox/recipebox/internal/domain/ai"
)

// AttemptRepository stores model attempts. It is the "database" telemetry sink.
type AttemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Name identifies the sink
func (r *AttemptRepository) Name() string {
	return "database"
}

// Write inserts one attempt row
func (r *AttemptRepository) Write(ctx context.Context, attempt ai.ModelAttempt) error {
	if err := r.db.WithContext(ctx).Create(AttemptToModel(attempt)).Error; err != nil {
		return fmt.Errorf("insert model attempt: %w", err)
	}
	return nil
}

// Recent returns the latest attempts, newest first
func (r *AttemptRepository) Recent(ctx context.Context, limit int) ([]ai.ModelAttempt, error) {
	var models []ModelAttemptModel
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list model attempts: %w", err)
	}

	attempts := make([]ai.ModelAttempt, len(models))
	for i := range models {
		attempts[i] = ModelToAttempt(&models[i])
	}
	return attempts, nil
}
