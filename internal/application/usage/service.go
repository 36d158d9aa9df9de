// Package usage projects depletion for inventory items
package usage

import (
	"context"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/usage"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

// History sources
const (
	SourceMock     = "mock"
	SourceRecorded = "recorded"
)

// Config selects where the weight series comes from
type Config struct {
	HistorySource string
	HistoryLimit  int
}

// ItemLookup is the part of the inventory service usage reads
type ItemLookup interface {
	Item(id string) (inventory.Item, error)
}

// Service implements inbound.UsageService
type Service struct {
	cfg      Config
	items    ItemLookup
	readings outbound.ReadingRepository
	logger   *zap.Logger
}

// NewService creates a new usage service. readings may be nil, in which case
// only the mock history is used.
func NewService(cfg Config, items ItemLookup, readings outbound.ReadingRepository, logger *zap.Logger) *Service {
	if cfg.HistorySource == "" {
		cfg.HistorySource = SourceMock
	}
	if cfg.HistoryLimit < 2 {
		cfg.HistoryLimit = len(usage.MockHistory(0))
	}
	return &Service{
		cfg:      cfg,
		items:    items,
		readings: readings,
		logger:   logger.Named("usage-service"),
	}
}

// Estimate projects how many days an item has left
func (s *Service) Estimate(ctx context.Context, itemID string) (*inbound.UsageReport, error) {
	item, err := s.items.Item(itemID)
	if err != nil {
		return nil, err
	}

	if projection, ok := s.recorded(ctx, item); ok {
		return &inbound.UsageReport{Item: item, Projection: projection, Source: SourceRecorded}, nil
	}

	projection, err := usage.Estimate(usage.MockHistory(item.Weight))
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}
	return &inbound.UsageReport{Item: item, Projection: projection, Source: SourceMock}, nil
}

// recorded projects from stored readings, scaling the rate by the time the
// readings span. It reports false when the mock series should be used.
func (s *Service) recorded(ctx context.Context, item inventory.Item) (usage.Projection, bool) {
	if s.cfg.HistorySource != SourceRecorded || s.readings == nil {
		return usage.Projection{}, false
	}

	recent, err := s.readings.Recent(ctx, item.ID, s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Warn("Failed to load reading history, using mock series",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		return usage.Projection{}, false
	}

	samples := make([]usage.Sample, 0, len(recent))
	for _, r := range recent {
		samples = append(samples, usage.Sample{Weight: r.Weight, At: r.ObservedAt()})
	}
	projection, err := usage.EstimateSamples(samples)
	if err != nil {
		s.logger.Debug("Reading history not usable, using mock series",
			zap.String("item_id", item.ID),
			zap.Int("readings", len(recent)),
			zap.Error(err),
		)
		return usage.Projection{}, false
	}
	return projection, true
}

var _ inbound.UsageService = (*Service)(nil)
