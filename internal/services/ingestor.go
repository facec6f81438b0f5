package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/metrics"
	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/google/uuid"
)

// ReadingStore appends one sensor reading to the durable log.
type ReadingStore interface {
	AppendReading(ctx context.Context, reading *models.SensorReading) error
}

// AlertStore appends a batch of alerts; either the whole batch is recorded
// or the call fails.
type AlertStore interface {
	AppendAlerts(ctx context.Context, alerts []models.Alert) error
}

// AlertPublisher fans newly created alerts out to live subscribers. It must
// not block; delivery is best effort.
type AlertPublisher interface {
	Publish(alerts []models.Alert)
}

type IngestResult struct {
	ReadingID  uuid.UUID `json:"reading_id"`
	AlertCount int       `json:"alerts"`
}

// EvaluationError reports that a reading was durably stored but rule
// evaluation or alert persistence failed afterwards. The reading is not
// rolled back and there is no automatic retry; the caller is told so it
// does not mistake the failure for "zero alerts".
type EvaluationError struct {
	ReadingID uuid.UUID
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("reading %s stored, alert evaluation failed: %v", e.ReadingID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Ingestor runs the store → evaluate → store alerts → broadcast sequence
// for one reading. Concurrent calls share no state; all coordination is
// through the stores.
type Ingestor struct {
	readings  ReadingStore
	alerts    AlertStore
	evaluator *Evaluator
	publisher AlertPublisher
}

func NewIngestor(readings ReadingStore, alerts AlertStore, evaluator *Evaluator, publisher AlertPublisher) *Ingestor {
	return &Ingestor{
		readings:  readings,
		alerts:    alerts,
		evaluator: evaluator,
		publisher: publisher,
	}
}

// Ingest stamps, persists and evaluates one reading. An explicit id or
// timestamp on the incoming reading is kept as-is; only missing ones are
// filled in.
func (in *Ingestor) Ingest(ctx context.Context, reading models.SensorReading) (IngestResult, error) {
	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if reading.TimestampUTC.IsZero() {
		reading.TimestampUTC = time.Now().UTC()
	}

	if err := in.readings.AppendReading(ctx, &reading); err != nil {
		return IngestResult{}, fmt.Errorf("store reading: %w", err)
	}

	alerts, err := in.evaluator.Evaluate(ctx, reading)
	if err != nil {
		metrics.EvaluationFailures.Inc()
		return IngestResult{ReadingID: reading.ID}, &EvaluationError{ReadingID: reading.ID, Err: err}
	}

	if len(alerts) > 0 {
		if err := in.alerts.AppendAlerts(ctx, alerts); err != nil {
			metrics.EvaluationFailures.Inc()
			return IngestResult{ReadingID: reading.ID}, &EvaluationError{
				ReadingID: reading.ID,
				Err:       fmt.Errorf("store alerts: %w", err),
			}
		}
		for _, a := range alerts {
			metrics.AlertsRaised.WithLabelValues(strconv.Itoa(a.Severity)).Inc()
		}
		if in.publisher != nil {
			in.publisher.Publish(alerts)
		}
	}

	return IngestResult{ReadingID: reading.ID, AlertCount: len(alerts)}, nil
}
