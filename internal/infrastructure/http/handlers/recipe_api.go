package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/internal/infrastructure/http/middleware"
	"github.com/recipebox/recipebox/internal/ports/inbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

// RecipeMetrics counts stored recipes
type RecipeMetrics interface {
	RecipeCreated()
}

// RecipeAPIHandlers handles REST API requests for the stored collection
type RecipeAPIHandlers struct {
	recipeService inbound.RecipeService
	metrics       RecipeMetrics
	logger        *zap.Logger
}

// NewRecipeAPIHandlers creates a new API handlers instance
func NewRecipeAPIHandlers(
	recipeService inbound.RecipeService,
	metrics RecipeMetrics,
	logger *zap.Logger,
) *RecipeAPIHandlers {
	return &RecipeAPIHandlers{
		recipeService: recipeService,
		metrics:       metrics,
		logger:        logger.Named("recipe-api"),
	}
}

// SaveRecipeRequest is the body of create and update. Update replaces the
// whole record.
type SaveRecipeRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Category        string  `json:"category"`
	Cuisine         *string `json:"cuisine"`
	Servings        *string `json:"servings"`
	PrepTimeMinutes *int    `json:"prep_time_minutes" validate:"omitempty,min=0,max=100000"`
	CookTimeMinutes *int    `json:"cook_time_minutes" validate:"omitempty,min=0,max=100000"`
	Ingredients     string  `json:"ingredients"`
	Steps           string  `json:"steps"`
	SourceURL       *string `json:"source_url" validate:"omitempty,url"`
	Notes           string  `json:"notes"`
}

// Record converts the request into a domain record
func (r SaveRecipeRequest) Record() recipe.Record {
	return recipe.Record{
		Title:           r.Title,
		Category:        recipe.Category(r.Category),
		Cuisine:         r.Cuisine,
		Servings:        r.Servings,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Ingredients:     r.Ingredients,
		Steps:           r.Steps,
		SourceURL:       r.SourceURL,
		Notes:           r.Notes,
	}
}

// ListRecipes handles GET /api/recipes
func (h *RecipeAPIHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := h.recipeService.ListPublished(r.Context(), pagination(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// ListMyRecipes handles GET /api/recipes/mine
func (h *RecipeAPIHandlers) ListMyRecipes(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	list, err := h.recipeService.ListMine(r.Context(), userID, pagination(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// GetRecipe handles GET /api/recipes/{id}
func (h *RecipeAPIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	var viewer *uuid.UUID
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		viewer = &userID
	}

	dto, err := h.recipeService.Get(r.Context(), recipeID, viewer)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto)
}

// CreateRecipe handles POST /api/recipes
func (h *RecipeAPIHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req SaveRecipeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, errors.NewValidationError(err.Error()))
		return
	}

	dto, err := h.recipeService.Create(r.Context(), inbound.SaveRecipeCommand{Record: req.Record(), UserID: userID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.metrics.RecipeCreated()
	writeJSON(w, h.logger, http.StatusCreated, dto)
}

// UpdateRecipe handles PUT /api/recipes/{id}
func (h *RecipeAPIHandlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := h.recipeID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req SaveRecipeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, errors.NewValidationError(err.Error()))
		return
	}

	dto, err := h.recipeService.Update(r.Context(), recipeID, inbound.SaveRecipeCommand{Record: req.Record(), UserID: userID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto)
}

// PublishRecipe handles POST /api/recipes/{id}/publish
func (h *RecipeAPIHandlers) PublishRecipe(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// UnpublishRecipe handles POST /api/recipes/{id}/unpublish
func (h *RecipeAPIHandlers) UnpublishRecipe(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *RecipeAPIHandlers) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	recipeID, ok := h.recipeID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())

	dto, err := h.recipeService.SetPublished(r.Context(), recipeID, userID, published)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto)
}

func (h *RecipeAPIHandlers) recipeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, errors.NewBadRequestError("Invalid recipe id"))
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) inbound.PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return inbound.PaginationParams{Page: page, Limit: limit}.Normalize()
}
