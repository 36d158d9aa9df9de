package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"gorm.io/gorm"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys
const uniqueViolation = "23505"

// CaptureRepository implements outbound.CaptureRepository using GORM
type CaptureRepository struct {
	db *gorm.DB
}

// NewCaptureRepository creates a new capture repository
func NewCaptureRepository(db *gorm.DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

// Save inserts capture metadata
func (r *CaptureRepository) Save(ctx context.Context, c *capture.Capture) error {
	if err := r.db.WithContext(ctx).Create(CaptureToModel(c)).Error; err != nil {
		if isDuplicate(err) {
			return capture.ErrDuplicateCapture
		}
		return err
	}
	return nil
}

// FindByID finds a capture by ID
func (r *CaptureRepository) FindByID(ctx context.Context, id string) (*capture.Capture, error) {
	var model CaptureModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, capture.ErrCaptureNotFound
	}
	if err != nil {
		return nil, err
	}
	return ModelToCapture(&model), nil
}

// List returns captures newest first
func (r *CaptureRepository) List(ctx context.Context, limit int) ([]*capture.Capture, error) {
	var models []CaptureModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	captures := make([]*capture.Capture, 0, len(models))
	for i := range models {
		captures = append(captures, ModelToCapture(&models[i]))
	}
	return captures, nil
}

// Delete deletes a capture by ID
func (r *CaptureRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&CaptureModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return capture.ErrCaptureNotFound
	}
	return nil
}

// isDuplicate recognises unique violations from both supported drivers
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ outbound.CaptureRepository = (*CaptureRepository)(nil)
