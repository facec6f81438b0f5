package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/Diker777/predictive-maintenance-system/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRuleSource struct {
	rules []models.ThresholdRule
	err   error
}

func (s *stubRuleSource) FindEnabledRules(_ context.Context, _ uuid.UUID, _ models.Metric) ([]models.ThresholdRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

type stubReadingStore struct {
	mu       sync.Mutex
	readings []models.SensorReading
	err      error
}

func (s *stubReadingStore) AppendReading(_ context.Context, reading *models.SensorReading) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, *reading)
	return nil
}

type stubAlertStore struct {
	alerts []models.Alert
}

func (s *stubAlertStore) AppendAlerts(_ context.Context, alerts []models.Alert) error {
	s.alerts = append(s.alerts, alerts...)
	return nil
}

func f(v float64) *float64 { return &v }

func newIngestApp(readings *stubReadingStore, rules *stubRuleSource) *fiber.App {
	evaluator := services.NewEvaluator(rules)
	ingestor := services.NewIngestor(readings, &stubAlertStore{}, evaluator, nil)

	app := fiber.New()
	handler := NewReadingHandler(nil, ingestor)
	app.Post("/api/readings", handler.Ingest)
	return app
}

func postReading(t *testing.T, app *fiber.App, body any) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/readings", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return resp.StatusCode, decoded
}

func TestIngestEndpoint_TriggeringReading(t *testing.T) {
	rule := models.ThresholdRule{
		ID:       uuid.New(),
		Metric:   models.MetricCylinderStrokeTime,
		Operator: models.OpGreaterThan,
		MaxValue: f(1.2),
		Severity: 2,
		Enabled:  true,
	}
	readings := &stubReadingStore{}
	app := newIngestApp(readings, &stubRuleSource{rules: []models.ThresholdRule{rule}})

	status, body := postReading(t, app, fiber.Map{
		"device_id": uuid.New(),
		"metric":    int(models.MetricCylinderStrokeTime),
		"value":     1.3,
	})

	assert.Equal(t, fiber.StatusAccepted, status)
	assert.Equal(t, float64(1), body["alerts"])
	assert.NotEmpty(t, body["reading_id"])
	assert.Len(t, readings.readings, 1)
}

func TestIngestEndpoint_NonTriggeringReading(t *testing.T) {
	rule := models.ThresholdRule{
		ID:       uuid.New(),
		Metric:   models.MetricCylinderStrokeTime,
		Operator: models.OpGreaterThan,
		MaxValue: f(1.2),
		Severity: 2,
		Enabled:  true,
	}
	app := newIngestApp(&stubReadingStore{}, &stubRuleSource{rules: []models.ThresholdRule{rule}})

	status, body := postReading(t, app, fiber.Map{
		"device_id": uuid.New(),
		"metric":    int(models.MetricCylinderStrokeTime),
		"value":     1.1,
	})

	assert.Equal(t, fiber.StatusAccepted, status)
	assert.Equal(t, float64(0), body["alerts"])
}

func TestIngestEndpoint_UnknownMetricRejected(t *testing.T) {
	app := newIngestApp(&stubReadingStore{}, &stubRuleSource{})

	status, body := postReading(t, app, fiber.Map{
		"device_id": uuid.New(),
		"metric":    42,
		"value":     1.3,
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Unknown metric", body["message"])
}

func TestIngestEndpoint_MissingDeviceRejected(t *testing.T) {
	app := newIngestApp(&stubReadingStore{}, &stubRuleSource{})

	status, _ := postReading(t, app, fiber.Map{
		"metric": int(models.MetricSpeed),
		"value":  550,
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestIngestEndpoint_ReadingStoreFailure(t *testing.T) {
	readings := &stubReadingStore{err: errors.New("store unavailable")}
	app := newIngestApp(readings, &stubRuleSource{})

	status, body := postReading(t, app, fiber.Map{
		"device_id": uuid.New(),
		"metric":    int(models.MetricSpeed),
		"value":     550,
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Failed to store reading", body["message"])
	assert.NotContains(t, body, "reading_id")
}

func TestIngestEndpoint_EvaluationFailureReportsReadingID(t *testing.T) {
	readings := &stubReadingStore{}
	app := newIngestApp(readings, &stubRuleSource{err: errors.New("connection refused")})

	status, body := postReading(t, app, fiber.Map{
		"device_id": uuid.New(),
		"metric":    int(models.MetricSpeed),
		"value":     550,
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Reading stored, alert evaluation failed", body["message"])

	// The reading was stored and its id reported so the caller can tell
	// this apart from a rejected reading.
	require.Len(t, readings.readings, 1)
	assert.Equal(t, readings.readings[0].ID.String(), body["reading_id"])
}

func newQueryApp() *fiber.App {
	app := fiber.New()
	handler := NewReadingHandler(nil, nil)
	app.Get("/api/readings", handler.Query)
	return app
}

func getReadings(t *testing.T, app *fiber.App, query string) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/readings?"+query, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return resp.StatusCode, decoded
}

func TestQueryEndpoint_InvalidFiltersRejected(t *testing.T) {
	app := newQueryApp()
	deviceID := uuid.NewString()

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"missing device id", "", "Invalid device ID"},
		{"malformed device id", "device_id=not-a-uuid", "Invalid device ID"},
		{"non-numeric metric", "device_id=" + deviceID + "&metric=abc", "Unknown metric"},
		{"out-of-range metric", "device_id=" + deviceID + "&metric=42", "Unknown metric"},
		{"negative metric", "device_id=" + deviceID + "&metric=-1", "Unknown metric"},
		{"malformed from_utc", "device_id=" + deviceID + "&from_utc=yesterday", "Invalid from_utc, expected RFC 3339"},
		{"malformed to_utc", "device_id=" + deviceID + "&to_utc=tomorrow", "Invalid to_utc, expected RFC 3339"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getReadings(t, app, tt.query)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}
