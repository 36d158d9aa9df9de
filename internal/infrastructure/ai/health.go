// Package ai wires text-generation providers into health reporting
package ai

import (
	"context"
	"fmt"

	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/healthcheck"
	"go.uber.org/zap"
)

// HealthCheck reports provider reachability. Recipes fall back to built-in content
// while the provider is down, so it is registered as an optional dependency.
func HealthCheck(service outbound.AIService, logger *zap.Logger) healthcheck.CheckFunc {
	logger = logger.Named("ai-health")
	return func(ctx context.Context) error {
		if err := service.HealthCheck(ctx); err != nil {
			logger.Debug("AI provider health check failed",
				zap.String("provider", service.Provider()),
				zap.Error(err),
			)
			return fmt.Errorf("%s unavailable, serving fallback recipes", service.Provider())
		}
		return nil
	}
}
