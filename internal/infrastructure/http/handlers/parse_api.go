package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	recipeapp "github.com/recipebox/recipebox/internal/application/recipe"
	"github.com/recipebox/recipebox/internal/ports/inbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

const invalidInputMessage = "Invalid input. Please provide a URL or recipe text."

// ParseMetrics counts parse requests by input kind and result
type ParseMetrics interface {
	ParseRequest(input, result string)
}

// ParseAPIHandlers serves the parse endpoint
type ParseAPIHandlers struct {
	parser  inbound.RecipeParser
	metrics ParseMetrics
	logger  *zap.Logger
}

// NewParseAPIHandlers creates the parse handlers
func NewParseAPIHandlers(parser inbound.RecipeParser, metrics ParseMetrics, logger *zap.Logger) *ParseAPIHandlers {
	return &ParseAPIHandlers{
		parser:  parser,
		metrics: metrics,
		logger:  logger.Named("parse-api"),
	}
}

// ParseRecipeRequest is the parse request body. Input is a pointer so that
// a missing field and a non-string value are both rejected.
type ParseRecipeRequest struct {
	Input *string `json:"input" validate:"required"`
}

// ParseRecipeResponse wraps the normalized record
type ParseRecipeResponse struct {
	Recipe interface{} `json:"recipe"`
}

// ParseRecipe handles POST /api/parse-recipe
func (h *ParseAPIHandlers) ParseRecipe(w http.ResponseWriter, r *http.Request) {
	var req ParseRecipeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.metrics.ParseRequest("invalid", string(errors.CodeBadRequest))
		writeError(w, h.logger, errors.NewBadRequestError(invalidInputMessage))
		return
	}

	kind := "text"
	if recipeapp.IsURL(*req.Input) {
		kind = "url"
	}

	record, err := h.parser.Parse(r.Context(), strings.TrimSpace(*req.Input))
	if err != nil {
		h.metrics.ParseRequest(kind, string(errors.GetCode(err)))
		writeError(w, h.logger, err)
		return
	}

	h.metrics.ParseRequest(kind, "success")
	writeJSON(w, h.logger, http.StatusOK, ParseRecipeResponse{Recipe: record})
}
