package ai

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/pantrysense/v2/internal/domain/ai"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var req = ai.RecipeRequest{Ingredients: []string{"Rice"}}

func TestGenerateRecipes_Primary(t *testing.T) {
	primary := &testutils.MockAIService{Name: "openai"}
	secondary := &testutils.MockAIService{Name: "ollama"}
	primary.On("GenerateRecipes", mock.Anything, req).Return(recipe.FallbackRecipes(), nil)

	svc := NewAIService(Config{}, primary, secondary, zaptest.NewLogger(t))
	recipes, err := svc.GenerateRecipes(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, recipes, 3)
	assert.Equal(t, "openai", svc.Provider())
	secondary.AssertNotCalled(t, "GenerateRecipes", mock.Anything, mock.Anything)
}

func TestGenerateRecipes_FallsThroughToSecondary(t *testing.T) {
	primary := &testutils.MockAIService{Name: "openai"}
	secondary := &testutils.MockAIService{Name: "ollama"}
	primary.On("GenerateRecipes", mock.Anything, req).Return(nil, stderrors.New("429"))
	secondary.On("GenerateRecipes", mock.Anything, req).Return(recipe.FallbackRecipes()[:1], nil)

	svc := NewAIService(Config{}, primary, secondary, zaptest.NewLogger(t))
	recipes, err := svc.GenerateRecipes(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, recipes, 1)
}

func TestGenerateRecipes_AllFail(t *testing.T) {
	primaryErr := stderrors.New("primary down")
	secondaryErr := stderrors.New("secondary down")
	primary := &testutils.MockAIService{}
	secondary := &testutils.MockAIService{}
	primary.On("GenerateRecipes", mock.Anything, req).Return(nil, primaryErr)
	secondary.On("GenerateRecipes", mock.Anything, req).Return(nil, secondaryErr)

	svc := NewAIService(Config{}, primary, secondary, zaptest.NewLogger(t))
	_, err := svc.GenerateRecipes(context.Background(), req)

	assert.ErrorIs(t, err, primaryErr)
	assert.ErrorIs(t, err, secondaryErr)
}

func TestGenerateRecipes_NoSecondary(t *testing.T) {
	cause := stderrors.New("bad key")
	primary := &testutils.MockAIService{}
	primary.On("GenerateRecipes", mock.Anything, req).Return(nil, cause)

	svc := NewAIService(Config{}, primary, nil, zaptest.NewLogger(t))
	_, err := svc.GenerateRecipes(context.Background(), req)
	assert.Equal(t, cause, err)
}

func TestSuggest(t *testing.T) {
	sreq := ai.SuggestionRequest{Ingredients: []string{"Rice"}}
	primary := &testutils.MockAIService{}
	secondary := &testutils.MockAIService{}
	primary.On("Suggest", mock.Anything, sreq).Return("", stderrors.New("timeout"))
	secondary.On("Suggest", mock.Anything, sreq).Return("Khichdi", nil)

	svc := NewAIService(Config{}, primary, secondary, zaptest.NewLogger(t))
	text, err := svc.Suggest(context.Background(), sreq)
	require.NoError(t, err)
	assert.Equal(t, "Khichdi", text)
}

func TestQuota(t *testing.T) {
	primary := &testutils.MockAIService{}
	primary.On("GenerateRecipes", mock.Anything, req).Return(recipe.FallbackRecipes(), nil)

	svc := NewAIService(Config{RequestsPerMinute: 1, Burst: 1}, primary, nil, zaptest.NewLogger(t))

	_, err := svc.GenerateRecipes(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.GenerateRecipes(context.Background(), req)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	primary.AssertNumberOfCalls(t, "GenerateRecipes", 1)
}

func TestHealthCheck(t *testing.T) {
	down := stderrors.New("down")

	primary := &testutils.MockAIService{}
	secondary := &testutils.MockAIService{}
	primary.On("HealthCheck", mock.Anything).Return(down)
	secondary.On("HealthCheck", mock.Anything).Return(nil)
	assert.NoError(t, NewAIService(Config{}, primary, secondary, zaptest.NewLogger(t)).HealthCheck(context.Background()))

	only := &testutils.MockAIService{}
	only.On("HealthCheck", mock.Anything).Return(down)
	assert.ErrorIs(t, NewAIService(Config{}, only, nil, zaptest.NewLogger(t)).HealthCheck(context.Background()), down)
}
