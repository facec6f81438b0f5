package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/google/uuid"
)

// RuleSource returns the currently enabled threshold rules for one
// device/metric pair. It must reflect the latest committed state at call
// time; no staleness bound beyond that.
type RuleSource interface {
	FindEnabledRules(ctx context.Context, deviceID uuid.UUID, metric models.Metric) ([]models.ThresholdRule, error)
}

// Evaluator turns a stored sensor reading into zero or more alerts. The
// rule fetch is the only impure step; the comparison logic itself lives in
// EvaluateSnapshot so it can be tested against a fixed rule set.
type Evaluator struct {
	rules RuleSource
}

func NewEvaluator(rules RuleSource) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate loads the enabled rules for the reading's device and metric and
// applies them. A failed rule lookup fails the whole pass; no partial
// result is returned.
func (e *Evaluator) Evaluate(ctx context.Context, reading models.SensorReading) ([]models.Alert, error) {
	rules, err := e.rules.FindEnabledRules(ctx, reading.DeviceID, reading.Metric)
	if err != nil {
		return nil, fmt.Errorf("load threshold rules: %w", err)
	}
	return EvaluateSnapshot(reading, rules), nil
}

// EvaluateSnapshot applies every enabled rule in the snapshot to the
// reading and returns one alert per triggered rule, in rule order.
// Overlapping rules intentionally produce one alert each.
func EvaluateSnapshot(reading models.SensorReading, rules []models.ThresholdRule) []models.Alert {
	var alerts []models.Alert
	for _, rule := range rules {
		if !rule.Enabled || !triggered(rule, reading.Value) {
			continue
		}
		alerts = append(alerts, models.Alert{
			ID:         uuid.New(),
			DeviceID:   reading.DeviceID,
			ReadingID:  reading.ID,
			Metric:     reading.Metric,
			Value:      reading.Value,
			Message:    alertMessage(rule, reading.Value),
			Severity:   rule.Severity,
			CreatedUTC: time.Now().UTC(),
		})
	}
	return alerts
}

// triggered applies the rule's predicate. An absent bound defaults to the
// numeric extreme, so a rule missing the bound its operator compares
// against can never fire. An unknown operator never fires either.
func triggered(rule models.ThresholdRule, value float64) bool {
	min := -math.MaxFloat64
	if rule.MinValue != nil {
		min = *rule.MinValue
	}
	max := math.MaxFloat64
	if rule.MaxValue != nil {
		max = *rule.MaxValue
	}

	switch rule.Operator {
	case models.OpGreaterThan:
		return value > max
	case models.OpGreaterThanOrEqual:
		return value >= max
	case models.OpLessThan:
		return value < min
	case models.OpLessThanOrEqual:
		return value <= min
	case models.OpBetween:
		return value >= min && value <= max
	default:
		return false
	}
}

func alertMessage(rule models.ThresholdRule, value float64) string {
	v := formatValue(value)
	switch rule.Operator {
	case models.OpGreaterThan:
		return fmt.Sprintf("%s value %s > %s", rule.Metric, v, boundText(rule.MaxValue))
	case models.OpGreaterThanOrEqual:
		return fmt.Sprintf("%s value %s >= %s", rule.Metric, v, boundText(rule.MaxValue))
	case models.OpLessThan:
		return fmt.Sprintf("%s value %s < %s", rule.Metric, v, boundText(rule.MinValue))
	case models.OpLessThanOrEqual:
		return fmt.Sprintf("%s value %s <= %s", rule.Metric, v, boundText(rule.MinValue))
	case models.OpBetween:
		return fmt.Sprintf("%s value %s between %s and %s", rule.Metric, v, boundText(rule.MinValue), boundText(rule.MaxValue))
	default:
		return fmt.Sprintf("%s value %s triggered", rule.Metric, v)
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func boundText(b *float64) string {
	if b == nil {
		return "unbounded"
	}
	return formatValue(*b)
}
