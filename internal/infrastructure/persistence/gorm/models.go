// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"time"
)

// ReadingModel is one live sensor payload recorded for an item
type ReadingModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	ItemID     string    `gorm:"type:varchar(64);not null;index:idx_sensor_readings_item_recorded,priority:1"`
	Distance   float64   `gorm:"not null"`
	Weight     float64   `gorm:"not null"`
	FoodLevel  float64   `gorm:"not null"`
	Timestamp  int64     `gorm:"not null"`
	Interval   int64     `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null;index:idx_sensor_readings_item_recorded,priority:2"`
}

// TableName specifies the table name
func (ReadingModel) TableName() string {
	return "sensor_readings"
}

// CaptureModel is the metadata of one stored camera image
type CaptureModel struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Filename    string    `gorm:"type:varchar(255);not null"`
	ObjectKey   string    `gorm:"type:varchar(512);not null;uniqueIndex"`
	URL         string    `gorm:"type:text;not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	Size        int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName specifies the table name
func (CaptureModel) TableName() string {
	return "captures"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{&ReadingModel{}, &CaptureModel{}}
}
