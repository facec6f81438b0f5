package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator selects the trigger predicate a threshold rule applies to a
// reading value. GreaterThan and GreaterThanOrEqual compare against
// MaxValue, LessThan and LessThanOrEqual against MinValue, Between against
// both (inclusive).
type Operator int

const (
	OpGreaterThan Operator = iota + 1
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpBetween
)

func (o Operator) Valid() bool {
	return o >= OpGreaterThan && o <= OpBetween
}

func (o Operator) String() string {
	switch o {
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpBetween:
		return "between"
	default:
		return "unknown"
	}
}

// ThresholdRule is owned by rule management; the evaluator only ever reads
// it. An absent bound on the side an operator compares against means the
// rule can never trigger (the bound defaults to the numeric extreme).
type ThresholdRule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID  uuid.UUID `gorm:"type:uuid;not null;index:idx_rules_device_metric,priority:1" json:"device_id"`
	Metric    Metric    `gorm:"not null;index:idx_rules_device_metric,priority:2" json:"metric"`
	Operator  Operator  `gorm:"not null" json:"operator"`
	MinValue  *float64  `json:"min_value,omitempty"`
	MaxValue  *float64  `json:"max_value,omitempty"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	Severity  int       `gorm:"default:1" json:"severity"` // 1-5
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
