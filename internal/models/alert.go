package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert is produced only by the threshold evaluator. Severity and Message
// are copied from the rule version that triggered it. Acknowledged is the
// single mutable field and is monotonic: once set it stays set.
type Alert struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"device_id"`
	ReadingID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"reading_id"`
	Metric         Metric     `gorm:"not null" json:"metric"`
	Value          float64    `gorm:"not null" json:"value"`
	Message        string     `gorm:"not null" json:"message"`
	Severity       int        `gorm:"not null" json:"severity"`
	Acknowledged   bool       `gorm:"default:false;index" json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedUTC     time.Time  `gorm:"not null;index" json:"created_utc"`
}
