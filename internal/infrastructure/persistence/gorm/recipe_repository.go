package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, entity *recipe.Recipe) error {
	model := RecipeToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}

	entity.ID = model.ID
	entity.CreatedAt = model.CreatedAt
	entity.UpdatedAt = model.UpdatedAt
	return nil
}

// Update replaces every column of an existing recipe
func (r *RecipeRepository) Update(ctx context.Context, entity *recipe.Recipe) error {
	model := RecipeToModel(entity)

	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("update recipe: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}

	return nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", result.Error)
	}

	return ModelToRecipe(&model), nil
}

// FindPublished returns published recipes, newest first
func (r *RecipeRepository) FindPublished(ctx context.Context, offset, limit int) ([]*recipe.Recipe, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Where("published = ?", true), offset, limit)
}

// FindByOwner returns the owner's recipes, drafts included, newest first
func (r *RecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Where("owner_id = ?", ownerID), offset, limit)
}

// AssignOwner claims every unowned recipe for ownerID
func (r *RecipeRepository) AssignOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("owner_id IS NULL").
		Update("owner_id", ownerID)
	if result.Error != nil {
		return 0, fmt.Errorf("assign owner: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *RecipeRepository) page(ctx context.Context, query *gorm.DB, offset, limit int) ([]*recipe.Recipe, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Model(&RecipeModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var models []RecipeModel
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}

	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}

	return recipes, total, nil
}
