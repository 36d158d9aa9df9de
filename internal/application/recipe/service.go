// Package recipe provides the application layer for recipe generation
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/pantrysense/v2/internal/domain/ai"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/shared"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const batchKeyPrefix = "recipes:latest:"

// InventoryNames is the part of the inventory service recipes depend on
type InventoryNames interface {
	Names() []string
}

// Config tunes batch storage
type Config struct {
	BatchTTL time.Duration
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	aiService outbound.AIService
	inventory InventoryNames
	cache     outbound.CacheRepository
	events    shared.EventDispatcher
	batchTTL  time.Duration
	fallbacks metric.Int64Counter
	logger    *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(
	cfg Config,
	aiService outbound.AIService,
	inventory InventoryNames,
	cache outbound.CacheRepository,
	events shared.EventDispatcher,
	meter metric.Meter,
	logger *zap.Logger,
) *RecipeService {
	if meter == nil {
		meter = otel.Meter("pantrysense/recipe")
	}
	fallbacks, err := meter.Int64Counter("recipe.fallbacks",
		metric.WithDescription("Recipe and suggestion requests served from built-in content"),
	)
	if err != nil {
		logger.Warn("Failed to create fallback counter", zap.Error(err))
	}
	if cfg.BatchTTL <= 0 {
		cfg.BatchTTL = 24 * time.Hour
	}

	return &RecipeService{
		aiService: aiService,
		inventory: inventory,
		cache:     cache,
		events:    events,
		batchTTL:  cfg.BatchTTL,
		fallbacks: fallbacks,
		logger:    logger.Named("recipe-service"),
	}
}

// Generate asks the provider for a fresh batch. Any provider failure is
// answered with the built-in recipes; the caller never sees an error for it.
func (s *RecipeService) Generate(ctx context.Context, session string, cmd inbound.GenerateRecipesCommand) (*recipe.Batch, error) {
	mood, err := parseMood(cmd.Mood)
	if err != nil {
		return nil, err
	}

	names := s.inventory.Names()
	req := ai.RecipeRequest{Ingredients: names}
	if mood != recipe.MoodAll {
		req.Mood = string(mood)
	}

	source := recipe.SourceGenerated
	recipes, err := s.aiService.GenerateRecipes(ctx, req)
	if err == nil && len(recipes) == 0 {
		err = recipe.ErrEmptyBatch
	}
	if err != nil {
		s.logger.Warn("Recipe generation failed, serving fallback recipes",
			zap.String("provider", s.aiService.Provider()),
			zap.Error(err),
		)
		s.countFallback(ctx, "recipes")
		recipes = recipe.FallbackRecipes()
		source = recipe.SourceFallback
	}

	for i := range recipes {
		if recipes[i].ImageURL == "" {
			recipes[i].ImageURL = imageFor(recipes[i])
		}
	}

	batch := recipe.NewBatch(recipes, names, source, mood)
	s.store(ctx, session, batch)

	if s.events != nil {
		s.events.Dispatch(ctx, recipe.NewBatchGeneratedEvent(session, batch))
	}

	s.logger.Info("Recipe batch ready",
		zap.String("session", session),
		zap.String("source", string(batch.Source)),
		zap.Int("count", len(batch.Recipes)),
	)
	return &batch, nil
}

// List filters the session's latest batch and splits it into tiers
func (s *RecipeService) List(ctx context.Context, session string, query inbound.RecipeQuery) (*inbound.RecipeList, error) {
	mood, err := parseMood(query.Mood)
	if err != nil {
		return nil, err
	}

	batch, err := s.latestOrGenerate(ctx, session)
	if err != nil {
		return nil, err
	}

	tiers := batch.Tiers(recipe.Filter{Search: strings.TrimSpace(query.Search), Mood: mood})
	return &inbound.RecipeList{
		Tiers:  tiers,
		Total:  tiers.Len(),
		Source: batch.Source,
		Moods:  recipe.Moods(),
	}, nil
}

// Get finds a recipe in the session's latest batch
func (s *RecipeService) Get(ctx context.Context, session, id string) (*recipe.Recipe, error) {
	batch, err := s.latestOrGenerate(ctx, session)
	if err != nil {
		return nil, err
	}

	r, err := batch.Find(id)
	if err != nil {
		return nil, errors.NewNotFoundError(errors.CodeRecipeNotFound, "Recipe not found", id).WithCause(err)
	}
	return &r, nil
}

// Suggest returns one free-text dish idea, or the fixed fallback sentence
func (s *RecipeService) Suggest(ctx context.Context, cmd inbound.SuggestCommand) (*inbound.Suggestion, error) {
	req := ai.SuggestionRequest{
		Ingredients: s.inventory.Names(),
		Mood:        strings.TrimSpace(cmd.Mood),
	}

	text, err := s.aiService.Suggest(ctx, req)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		if err != nil {
			s.logger.Warn("Suggestion failed, serving fallback", zap.Error(err))
		}
		s.countFallback(ctx, "suggestion")
		return &inbound.Suggestion{Text: recipe.FallbackSuggestion, Fallback: true}, nil
	}

	return &inbound.Suggestion{Text: text}, nil
}

func (s *RecipeService) latestOrGenerate(ctx context.Context, session string) (*recipe.Batch, error) {
	batch, err := s.latest(ctx, session)
	if err == nil {
		return batch, nil
	}
	if !stderrors.Is(err, outbound.ErrCacheMiss) {
		s.logger.Warn("Failed to load latest batch, regenerating",
			zap.String("session", session),
			zap.Error(err),
		)
	}
	return s.Generate(ctx, session, inbound.GenerateRecipesCommand{})
}

func (s *RecipeService) latest(ctx context.Context, session string) (*recipe.Batch, error) {
	data, err := s.cache.Get(ctx, batchKeyPrefix+session)
	if err != nil {
		return nil, err
	}

	var batch recipe.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// store overwrites the session's slot, so the last batch to resolve wins
func (s *RecipeService) store(ctx context.Context, session string, batch recipe.Batch) {
	data, err := json.Marshal(batch)
	if err != nil {
		s.logger.Error("Failed to encode recipe batch", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, batchKeyPrefix+session, data, s.batchTTL); err != nil {
		s.logger.Warn("Failed to store recipe batch",
			zap.String("session", session),
			zap.Error(err),
		)
	}
}

func (s *RecipeService) countFallback(ctx context.Context, kind string) {
	if s.fallbacks == nil {
		return
	}
	s.fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("provider", s.aiService.Provider()),
	))
}

func parseMood(raw string) (recipe.Mood, error) {
	mood, err := recipe.ParseMood(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.NewValidationErrors([]errors.ValidationError{{
			Field:   "mood",
			Value:   raw,
			Tag:     "oneof",
			Message: err.Error(),
		}})
	}
	return mood, nil
}

// imageFor picks the picture of the first ingredient with a known image,
// then tries the dish name itself.
func imageFor(r recipe.Recipe) string {
	for _, ing := range r.Ingredients {
		if url := inventory.ImageFor(ing.Name); url != inventory.DefaultFoodImage {
			return url
		}
	}
	return inventory.ImageFor(r.Name)
}

var _ inbound.RecipeService = (*RecipeService)(nil)
