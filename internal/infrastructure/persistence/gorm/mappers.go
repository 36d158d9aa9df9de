package gorm

import (
	"time"

	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/inventory"
)

// ReadingToModel converts a sensor reading to its row
func ReadingToModel(itemID string, r inventory.SensorReading, recordedAt time.Time) *ReadingModel {
	return &ReadingModel{
		ItemID:     itemID,
		Distance:   r.Distance,
		Weight:     r.Weight,
		FoodLevel:  r.FoodLevel,
		Timestamp:  r.Timestamp,
		Interval:   r.Interval,
		RecordedAt: recordedAt.UTC(),
	}
}

// ModelToReading converts a row back to a sensor reading
func ModelToReading(m *ReadingModel) inventory.SensorReading {
	return inventory.SensorReading{
		Distance:  m.Distance,
		Weight:    m.Weight,
		FoodLevel: m.FoodLevel,
		Timestamp: m.Timestamp,
		Interval:  m.Interval,
	}
}

// CaptureToModel converts capture metadata to its row
func CaptureToModel(c *capture.Capture) *CaptureModel {
	return &CaptureModel{
		ID:          c.ID,
		Filename:    c.Filename,
		ObjectKey:   c.ObjectKey,
		URL:         c.URL,
		ContentType: c.ContentType,
		Size:        c.Size,
		CreatedAt:   c.CreatedAt.UTC(),
	}
}

// ModelToCapture converts a row back to capture metadata
func ModelToCapture(m *CaptureModel) *capture.Capture {
	return &capture.Capture{
		ID:          m.ID,
		Filename:    m.Filename,
		ObjectKey:   m.ObjectKey,
		URL:         m.URL,
		ContentType: m.ContentType,
		Size:        m.Size,
		CreatedAt:   m.CreatedAt,
	}
}
