package user

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

const preferencesKeyPrefix = "prefs:"

// PreferencesService stores per-user overrides of the configured defaults
type PreferencesService struct {
	cache    outbound.CacheRepository
	defaults user.Preferences
	logger   *zap.Logger
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(defaults user.Preferences, cache outbound.CacheRepository, logger *zap.Logger) *PreferencesService {
	if defaults.Validate() != nil {
		defaults = user.DefaultPreferences()
	}
	return &PreferencesService{
		cache:    cache,
		defaults: defaults,
		logger:   logger.Named("preferences-service"),
	}
}

// Get returns the user's preferences, or the defaults when none were saved
func (s *PreferencesService) Get(ctx context.Context, uid string) (*user.Preferences, error) {
	data, err := s.cache.Get(ctx, preferencesKeyPrefix+uid)
	if stderrors.Is(err, outbound.ErrCacheMiss) {
		prefs := s.defaults
		return &prefs, nil
	}
	if err != nil {
		return nil, errors.NewExternalServiceError("preferences store", err)
	}

	prefs := s.defaults
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warn("Discarding unreadable preferences", zap.String("uid", uid), zap.Error(err))
		prefs = s.defaults
	}
	return &prefs, nil
}

// Update replaces the user's preferences
func (s *PreferencesService) Update(ctx context.Context, uid string, prefs user.Preferences) (*user.Preferences, error) {
	if err := prefs.Validate(); err != nil {
		return nil, errors.NewValidationErrors([]errors.ValidationError{{
			Field:   "defaultGrocery",
			Value:   prefs.DefaultGrocery,
			Tag:     "oneof",
			Message: err.Error(),
		}})
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, errors.NewInternalError("Failed to encode preferences").WithCause(err)
	}
	if err := s.cache.Set(ctx, preferencesKeyPrefix+uid, data, 0); err != nil {
		return nil, errors.NewExternalServiceError("preferences store", err)
	}

	s.logger.Info("Preferences updated", zap.String("uid", uid))
	return &prefs, nil
}

var _ inbound.PreferencesService = (*PreferencesService)(nil)
