// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/pantrysense/v2/internal/domain/recipe"
)

// RecipeService defines the recipe use cases.
// session scopes the "latest batch" so two users never see each other's results.
type RecipeService interface {
	Generate(ctx context.Context, session string, cmd GenerateRecipesCommand) (*recipe.Batch, error)
	List(ctx context.Context, session string, query RecipeQuery) (*RecipeList, error)
	Get(ctx context.Context, session, id string) (*recipe.Recipe, error)
	Suggest(ctx context.Context, cmd SuggestCommand) (*Suggestion, error)
}

// GenerateRecipesCommand requests a fresh batch
type GenerateRecipesCommand struct {
	Mood string `json:"mood"`
}

// SuggestCommand requests a single dish idea
type SuggestCommand struct {
	Mood string `json:"mood"`
}

// RecipeQuery filters the latest batch
type RecipeQuery struct {
	Search string
	Mood   string
}

// RecipeList is the filtered batch split into tiers
type RecipeList struct {
	Tiers  recipe.Tiers  `json:"tiers"`
	Total  int           `json:"total"`
	Source recipe.Source `json:"source"`
	Moods  []recipe.Mood `json:"moods"`
}

// Suggestion is a free-text dish idea
type Suggestion struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}
