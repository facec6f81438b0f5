package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_readings_ingested_total",
			Help: "Total number of sensor readings received",
		},
		[]string{"source", "status"}, // source: http, mqtt; status: accepted, rejected, failed
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pm_ingest_duration_seconds",
			Help:    "Time taken to store, evaluate and broadcast one reading",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_alerts_raised_total",
			Help: "Total number of threshold alerts raised",
		},
		[]string{"severity"},
	)

	EvaluationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pm_evaluation_failures_total",
			Help: "Total number of ingestions where the reading was stored but rule evaluation or alert persistence failed",
		},
	)

	SubscribersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pm_alert_subscribers_connected",
			Help: "Currently connected real-time alert subscribers",
		},
	)

	BroadcastsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pm_alert_broadcasts_dropped_total",
			Help: "Total number of subscribers dropped because their send buffer was full",
		},
	)
)
