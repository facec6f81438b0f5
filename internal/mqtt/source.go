package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/config"
	"github.com/Diker777/predictive-maintenance-system/internal/metrics"
	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/Diker777/predictive-maintenance-system/internal/services"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const ingestTimeout = 10 * time.Second

type readingPayload struct {
	DeviceID     uuid.UUID     `json:"device_id"`
	Metric       models.Metric `json:"metric"`
	Value        float64       `json:"value"`
	TimestampUTC time.Time     `json:"timestamp_utc"`
}

// Source subscribes to the device reading topic and feeds every payload
// into the same ingestion pipeline the HTTP endpoint uses. Malformed or
// failing messages are logged and counted, never fatal.
type Source struct {
	client   paho.Client
	topic    string
	ingestor *services.Ingestor
}

func NewSource(cfg *config.Config, ingestor *services.Ingestor) (*Source, error) {
	s := &Source{topic: cfg.MQTTTopic, ingestor: ingestor}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		slog.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(client paho.Client) {
		// Re-subscribe after every (re)connect
		if token := client.Subscribe(s.topic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
			slog.Error("MQTT subscribe failed", "topic", s.topic, "error", token.Error())
		}
	})

	s.client = paho.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}

	slog.Info("MQTT ingest source started", "broker", cfg.MQTTBrokerURL, "topic", s.topic)
	return s, nil
}

func (s *Source) handleMessage(_ paho.Client, msg paho.Message) {
	var payload readingPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		metrics.ReadingsIngested.WithLabelValues("mqtt", "rejected").Inc()
		slog.Warn("MQTT reading decode failed", "topic", msg.Topic(), "error", err)
		return
	}
	if payload.DeviceID == uuid.Nil || !payload.Metric.Valid() {
		metrics.ReadingsIngested.WithLabelValues("mqtt", "rejected").Inc()
		slog.Warn("MQTT reading rejected", "topic", msg.Topic(), "device_id", payload.DeviceID, "metric", int(payload.Metric))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	result, err := s.ingestor.Ingest(ctx, models.SensorReading{
		DeviceID:     payload.DeviceID,
		Metric:       payload.Metric,
		Value:        payload.Value,
		TimestampUTC: payload.TimestampUTC,
	})
	if err != nil {
		metrics.ReadingsIngested.WithLabelValues("mqtt", "failed").Inc()
		slog.Error("MQTT reading ingest failed", "device_id", payload.DeviceID, "error", err)
		return
	}

	metrics.ReadingsIngested.WithLabelValues("mqtt", "accepted").Inc()
	if result.AlertCount > 0 {
		slog.Info("Reading raised alerts", "source", "mqtt", "device_id", payload.DeviceID, "alerts", result.AlertCount)
	}
}

func (s *Source) Close() {
	s.client.Disconnect(250)
	slog.Info("MQTT ingest source stopped")
}
