package gorm

import (
	"context"
	"time"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"gorm.io/gorm"
)

// ReadingRepository implements outbound.ReadingRepository using GORM
type ReadingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReadingRepository creates a new reading repository
func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db, now: time.Now}
}

// Record appends a reading for itemID
func (r *ReadingRepository) Record(ctx context.Context, itemID string, reading inventory.SensorReading) error {
	return r.db.WithContext(ctx).Create(ReadingToModel(itemID, reading, r.now())).Error
}

// Recent returns up to limit readings for itemID, oldest first
func (r *ReadingRepository) Recent(ctx context.Context, itemID string, limit int) ([]inventory.SensorReading, error) {
	var models []ReadingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("recorded_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	readings := make([]inventory.SensorReading, len(models))
	for i := range models {
		readings[len(models)-1-i] = ModelToReading(&models[i])
	}
	return readings, nil
}

var _ outbound.ReadingRepository = (*ReadingRepository)(nil)
