package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/Diker777/predictive-maintenance-system/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMessage struct {
	payload []byte
}

func (m *stubMessage) Duplicate() bool   { return false }
func (m *stubMessage) Qos() byte         { return 1 }
func (m *stubMessage) Retained() bool    { return false }
func (m *stubMessage) Topic() string     { return "devices/test/readings" }
func (m *stubMessage) MessageID() uint16 { return 1 }
func (m *stubMessage) Payload() []byte   { return m.payload }
func (m *stubMessage) Ack()              {}

type memReadingStore struct {
	mu       sync.Mutex
	readings []models.SensorReading
	err      error
}

func (s *memReadingStore) AppendReading(_ context.Context, reading *models.SensorReading) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, *reading)
	return nil
}

type memAlertStore struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func (s *memAlertStore) AppendAlerts(_ context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alerts...)
	return nil
}

type stubRuleSource struct {
	rules []models.ThresholdRule
}

func (s *stubRuleSource) FindEnabledRules(_ context.Context, _ uuid.UUID, _ models.Metric) ([]models.ThresholdRule, error) {
	return s.rules, nil
}

func newSource(readings *memReadingStore, alerts *memAlertStore, rules []models.ThresholdRule) *Source {
	evaluator := services.NewEvaluator(&stubRuleSource{rules: rules})
	ingestor := services.NewIngestor(readings, alerts, evaluator, nil)
	return &Source{topic: "devices/+/readings", ingestor: ingestor}
}

func TestHandleMessage_GarbageJSONRejected(t *testing.T) {
	readings := &memReadingStore{}
	source := newSource(readings, &memAlertStore{}, nil)

	assert.NotPanics(t, func() {
		source.handleMessage(nil, &stubMessage{payload: []byte("{not json")})
	})
	assert.Empty(t, readings.readings)
}

func TestHandleMessage_MissingDeviceIDRejected(t *testing.T) {
	readings := &memReadingStore{}
	source := newSource(readings, &memAlertStore{}, nil)

	payload, err := json.Marshal(map[string]any{
		"metric": int(models.MetricSpeed),
		"value":  1200.0,
	})
	require.NoError(t, err)

	source.handleMessage(nil, &stubMessage{payload: payload})
	assert.Empty(t, readings.readings)
}

func TestHandleMessage_UnknownMetricRejected(t *testing.T) {
	readings := &memReadingStore{}
	source := newSource(readings, &memAlertStore{}, nil)

	payload, err := json.Marshal(map[string]any{
		"device_id": uuid.NewString(),
		"metric":    99,
		"value":     1200.0,
	})
	require.NoError(t, err)

	source.handleMessage(nil, &stubMessage{payload: payload})
	assert.Empty(t, readings.readings)
}

func TestHandleMessage_ValidPayloadIngested(t *testing.T) {
	deviceID := uuid.New()
	max := 1000.0
	rules := []models.ThresholdRule{{
		ID:       uuid.New(),
		DeviceID: deviceID,
		Metric:   models.MetricSpeed,
		Operator: models.OpGreaterThan,
		MaxValue: &max,
		Enabled:  true,
		Severity: 3,
	}}

	readings := &memReadingStore{}
	alerts := &memAlertStore{}
	source := newSource(readings, alerts, rules)

	payload, err := json.Marshal(map[string]any{
		"device_id":     deviceID.String(),
		"metric":        int(models.MetricSpeed),
		"value":         1200.0,
		"timestamp_utc": time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	source.handleMessage(nil, &stubMessage{payload: payload})

	require.Len(t, readings.readings, 1)
	assert.Equal(t, deviceID, readings.readings[0].DeviceID)
	assert.Equal(t, 1200.0, readings.readings[0].Value)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, models.MetricSpeed, alerts.alerts[0].Metric)
}

func TestHandleMessage_IngestFailureDoesNotPanic(t *testing.T) {
	readings := &memReadingStore{err: errors.New("disk full")}
	source := newSource(readings, &memAlertStore{}, nil)

	payload, err := json.Marshal(map[string]any{
		"device_id": uuid.NewString(),
		"metric":    int(models.MetricSpeed),
		"value":     1200.0,
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		source.handleMessage(nil, &stubMessage{payload: payload})
	})
	assert.Empty(t, readings.readings)
}
