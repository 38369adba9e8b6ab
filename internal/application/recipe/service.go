// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/internal/ports/inbound"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo outbound.RecipeRepository
	logger     *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(recipeRepo outbound.RecipeRepository, logger *zap.Logger) inbound.RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		logger:     logger.Named("recipe-service"),
	}
}

// Create stores a new recipe owned by the acting user
func (s *RecipeService) Create(ctx context.Context, cmd inbound.SaveRecipeCommand) (*inbound.RecipeDTO, error) {
	owner := cmd.UserID
	entity, err := recipe.NewRecipe(cmd.Record, &owner)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.recipeRepo.Create(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("Recipe created",
		zap.String("recipe_id", entity.ID.String()),
		zap.String("owner_id", owner.String()),
	)

	return toDTO(entity, false), nil
}

// Update replaces the stored record. Only the owner may do this.
func (s *RecipeService) Update(ctx context.Context, recipeID uuid.UUID, cmd inbound.SaveRecipeCommand) (*inbound.RecipeDTO, error) {
	entity, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := entity.Replace(cmd.Record, cmd.UserID); err != nil {
		return nil, s.mapDomainError(err, "update this recipe")
	}

	if err := s.recipeRepo.Update(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update recipe", err)
	}

	s.logger.Info("Recipe updated", zap.String("recipe_id", recipeID.String()))
	return toDTO(entity, false), nil
}

// SetPublished flips the published flag. Only the owner may do this.
func (s *RecipeService) SetPublished(ctx context.Context, recipeID, userID uuid.UUID, published bool) (*inbound.RecipeDTO, error) {
	entity, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := entity.SetPublished(published, userID); err != nil {
		return nil, s.mapDomainError(err, "change visibility of this recipe")
	}

	if err := s.recipeRepo.Update(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update recipe", err)
	}

	s.logger.Info("Recipe visibility changed",
		zap.String("recipe_id", recipeID.String()),
		zap.Bool("published", published),
	)
	return toDTO(entity, false), nil
}

// FixOwners assigns every unowned recipe to ownerID
func (s *RecipeService) FixOwners(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if ownerID == uuid.Nil {
		return 0, errors.NewValidationError("owner id is required")
	}

	count, err := s.recipeRepo.AssignOwner(ctx, ownerID)
	if err != nil {
		return 0, errors.NewDatabaseError("assign recipe owners", err)
	}

	s.logger.Info("Unowned recipes assigned",
		zap.String("owner_id", ownerID.String()),
		zap.Int64("count", count),
	)
	return count, nil
}

// Get returns one recipe with its display tables. Drafts are reported as
// missing to anyone but their owner.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*inbound.RecipeDTO, error) {
	entity, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if !entity.CanView(viewerID) {
		return nil, errors.NewRecipeNotFoundError(recipeID.String())
	}

	return toDTO(entity, true), nil
}

// ListPublished returns one page of published recipes
func (s *RecipeService) ListPublished(ctx context.Context, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	params = params.Normalize()

	recipes, total, err := s.recipeRepo.FindPublished(ctx, params.Offset(), params.Limit)
	if err != nil {
		return nil, errors.NewDatabaseError("list published recipes", err)
	}

	return toList(recipes, total, params), nil
}

// ListMine returns one page of the caller's recipes, drafts included
func (s *RecipeService) ListMine(ctx context.Context, ownerID uuid.UUID, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	params = params.Normalize()

	recipes, total, err := s.recipeRepo.FindByOwner(ctx, ownerID, params.Offset(), params.Limit)
	if err != nil {
		return nil, errors.NewDatabaseError("list owner recipes", err)
	}

	return toList(recipes, total, params), nil
}

func (s *RecipeService) find(ctx context.Context, recipeID uuid.UUID) (*recipe.Recipe, error) {
	entity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID.String())
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	return entity, nil
}

func (s *RecipeService) mapDomainError(err error, action string) error {
	switch {
	case stderrors.Is(err, recipe.ErrNotRecipeOwner):
		return errors.NewInsufficientPermissionsError(action)
	case stderrors.Is(err, recipe.ErrTitleRequired),
		stderrors.Is(err, recipe.ErrTitleTooLong),
		stderrors.Is(err, recipe.ErrNegativeDuration),
		stderrors.Is(err, recipe.ErrDurationTooLong):
		return errors.NewValidationError(err.Error())
	default:
		return errors.Wrap(err, "recipe operation failed")
	}
}

func toDTO(entity *recipe.Recipe, withDisplay bool) *inbound.RecipeDTO {
	dto := &inbound.RecipeDTO{
		ID:        entity.ID,
		OwnerID:   entity.OwnerID,
		Published: entity.Published,
		Record:    entity.Record,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
	if withDisplay {
		display := recipe.Reconstruct(entity.Record)
		dto.Display = &display
	}
	return dto
}

func toList(recipes []*recipe.Recipe, total int64, params inbound.PaginationParams) *inbound.RecipeList {
	list := &inbound.RecipeList{
		Recipes: make([]inbound.RecipeDTO, 0, len(recipes)),
		Total:   total,
		Page:    params.Page,
		Limit:   params.Limit,
	}
	for _, entity := range recipes {
		list.Recipes = append(list.Recipes, *toDTO(entity, false))
	}
	return list
}
