// Package ai provides the application layer for AI operations
package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pantrysense/v2/internal/domain/ai"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrQuotaExceeded is returned when the outbound request budget is used up
var ErrQuotaExceeded = stderrors.New("ai request quota exceeded")

// Config bounds outbound model calls. RequestsPerMinute <= 0 disables the limit.
type Config struct {
	RequestsPerMinute int
	Burst             int
}

// AIService tries the primary provider and then the secondary one. It never
// invents content: when every provider fails the error is returned and the
// recipe service decides what to serve instead.
type AIService struct {
	primary   outbound.AIService
	secondary outbound.AIService
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewAIService creates a provider chain. secondary may be nil.
func NewAIService(cfg Config, primary, secondary outbound.AIService, logger *zap.Logger) *AIService {
	namedLogger := logger.Named("ai-service")

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), burst)
	}

	fields := []zap.Field{zap.String("primary_provider", primary.Provider())}
	if secondary != nil {
		fields = append(fields, zap.String("secondary_provider", secondary.Provider()))
	}
	namedLogger.Info("AI service initialized", fields...)

	return &AIService{
		primary:   primary,
		secondary: secondary,
		limiter:   limiter,
		logger:    namedLogger,
	}
}

// GenerateRecipes generates a batch with the first provider that succeeds
func (s *AIService) GenerateRecipes(ctx context.Context, req ai.RecipeRequest) ([]recipe.Recipe, error) {
	if err := s.allow(); err != nil {
		return nil, err
	}

	recipes, err := s.primary.GenerateRecipes(ctx, req)
	if err == nil {
		return recipes, nil
	}
	if s.secondary == nil {
		return nil, err
	}

	s.logger.Warn("Primary AI provider failed, trying secondary",
		zap.String("primary_provider", s.primary.Provider()),
		zap.Error(err),
	)
	recipes, secondaryErr := s.secondary.GenerateRecipes(ctx, req)
	if secondaryErr != nil {
		return nil, fmt.Errorf("all providers failed: %w", stderrors.Join(err, secondaryErr))
	}
	return recipes, nil
}

// Suggest returns a dish idea from the first provider that succeeds
func (s *AIService) Suggest(ctx context.Context, req ai.SuggestionRequest) (string, error) {
	if err := s.allow(); err != nil {
		return "", err
	}

	text, err := s.primary.Suggest(ctx, req)
	if err == nil {
		return text, nil
	}
	if s.secondary == nil {
		return "", err
	}

	s.logger.Warn("Primary AI provider failed for suggestion, trying secondary", zap.Error(err))
	text, secondaryErr := s.secondary.Suggest(ctx, req)
	if secondaryErr != nil {
		return "", fmt.Errorf("all providers failed: %w", stderrors.Join(err, secondaryErr))
	}
	return text, nil
}

// HealthCheck reports healthy when at least one provider answers
func (s *AIService) HealthCheck(ctx context.Context) error {
	err := s.primary.HealthCheck(ctx)
	if err == nil || s.secondary == nil {
		return err
	}
	if secondaryErr := s.secondary.HealthCheck(ctx); secondaryErr != nil {
		return stderrors.Join(err, secondaryErr)
	}
	return nil
}

// Provider returns the primary provider name
func (s *AIService) Provider() string {
	return s.primary.Provider()
}

func (s *AIService) allow() error {
	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn("AI request quota exceeded")
		return ErrQuotaExceeded
	}
	return nil
}

var _ outbound.AIService = (*AIService)(nil)
