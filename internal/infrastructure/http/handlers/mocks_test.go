package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/internal/ports/inbound"
)

type mockParser struct {
	mock.Mock
}

func (m *mockParser) Parse(ctx context.Context, input string) (*recipe.Record, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.Record), args.Error(1)
}

type mockRecipeService struct {
	mock.Mock
}

func (m *mockRecipeService) Create(ctx context.Context, cmd inbound.SaveRecipeCommand) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, cmd)
	return dto(args.Get(0)), args.Error(1)
}

func (m *mockRecipeService) Update(ctx context.Context, recipeID uuid.UUID, cmd inbound.SaveRecipeCommand) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, recipeID, cmd)
	return dto(args.Get(0)), args.Error(1)
}

func (m *mockRecipeService) SetPublished(ctx context.Context, recipeID, userID uuid.UUID, published bool) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, recipeID, userID, published)
	return dto(args.Get(0)), args.Error(1)
}

func (m *mockRecipeService) FixOwners(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, recipeID, viewerID)
	return dto(args.Get(0)), args.Error(1)
}

func (m *mockRecipeService) ListPublished(ctx context.Context, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.RecipeList), args.Error(1)
}

func (m *mockRecipeService) ListMine(ctx context.Context, ownerID uuid.UUID, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.RecipeList), args.Error(1)
}

func dto(v interface{}) *inbound.RecipeDTO {
	if v == nil {
		return nil
	}
	return v.(*inbound.RecipeDTO)
}

type countingMetrics struct {
	parses  map[string]int
	created int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{parses: make(map[string]int)}
}

func (c *countingMetrics) ParseRequest(input, result string) {
	c.parses[input+"/"+result]++
}

func (c *countingMetrics) RecipeCreated() {
	c.created++
}
