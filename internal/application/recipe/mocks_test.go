package recipe

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	aiapp "github.com/recipebox/recipebox/internal/application/ai"
	"github.com/recipebox/recipebox/internal/domain/recipe"
)

// MockRecipeRepository is a mock implementation of the recipe repository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipeRepository) FindPublished(ctx context.Context, offset, limit int) ([]*recipe.Recipe, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]*recipe.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int64, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	return args.Get(0).([]*recipe.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) AssignOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockVideoExtractor is a mock implementation of the video extractor
type MockVideoExtractor struct {
	mock.Mock
}

func (m *MockVideoExtractor) Extract(ctx context.Context, url string) (string, bool, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Bool(1), args.Error(2)
}

// MockWebExtractor is a mock implementation of the web extractor
type MockWebExtractor struct {
	mock.Mock
}

func (m *MockWebExtractor) Extract(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

// MockNormalizer is a mock implementation of the normalization engine
type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(ctx context.Context, req aiapp.NormalizeRequest) (*recipe.Record, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*recipe.Record), args.Error(1)
	}
	return nil, args.Error(1)
}
