// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey"`
	OwnerID   *uuid.UUID `gorm:"type:char(36);index"`
	Published bool       `gorm:"default:false;index"`

	Title            string  `gorm:"type:varchar(255);not null;index"`
	Category         string  `gorm:"type:varchar(32);not null;default:'Other';index"`
	Cuisine          *string `gorm:"type:varchar(100)"`
	Servings         *string `gorm:"type:varchar(100)"`
	PrepTimeMinutes  *int
	CookTimeMinutes  *int
	TotalTimeMinutes *int
	Ingredients      string  `gorm:"type:text;not null"`
	Steps            string  `gorm:"type:text;not null"`
	SourceURL        *string `gorm:"type:text"`
	Notes            string  `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName pins the table name
func (RecipeModel) TableName() string {
	return "recipes"
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ModelAttemptModel is one model candidate attempt
type ModelAttemptModel struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey"`
	Provider       string    `gorm:"type:varchar(50);not null"`
	Model          string    `gorm:"type:varchar(100);not null;index"`
	CandidateIndex int       `gorm:"not null"`
	Fallback       bool      `gorm:"not null;index"`
	Outcome        string    `gorm:"type:varchar(20);not null;index"`
	LatencyMS      int64     `gorm:"column:latency_ms"`
	ErrorMessage   string    `gorm:"type:text"`
	StartedAt      time.Time `gorm:"index"`
	CreatedAt      time.Time
}

// TableName pins the table name
func (ModelAttemptModel) TableName() string {
	return "model_attempts"
}

// BeforeCreate hook for ModelAttemptModel
func (a *ModelAttemptModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
