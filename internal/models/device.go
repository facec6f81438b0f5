package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Device struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:120;not null" json:"name"`
	Description string          `json:"description,omitempty"`
	Metadata    datatypes.JSON  `gorm:"type:jsonb" json:"metadata,omitempty"`
	Readings    []SensorReading `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rules       []ThresholdRule `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SensorReading is append-only: once stored it is never updated or deleted
// by anything in this service.
type SensorReading struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID     uuid.UUID `gorm:"type:uuid;not null;index:idx_readings_device_metric_time,priority:1" json:"device_id"`
	Metric       Metric    `gorm:"not null;index:idx_readings_device_metric_time,priority:2" json:"metric"`
	Value        float64   `gorm:"not null" json:"value"`
	TimestampUTC time.Time `gorm:"not null;index:idx_readings_device_metric_time,priority:3,sort:desc" json:"timestamp_utc"`
}
