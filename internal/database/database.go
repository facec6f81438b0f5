package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/config"
	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	slog.Info("Database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return nil
}

func Migrate() error {
	return DB.AutoMigrate(
		&models.Device{},
		&models.SensorReading{},
		&models.ThresholdRule{},
		&models.Alert{},
	)
}

// Seed populates an empty database with two demo devices, their threshold
// rules and a little reading history. It is a no-op when any device exists.
func Seed() error {
	var count int64
	if err := DB.Model(&models.Device{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cnc := models.Device{ID: uuid.New(), Name: "CNC-01", Description: "CNC Line 1"}
	press := models.Device{ID: uuid.New(), Name: "Press-02", Description: "Press Line 2"}

	rules := []models.ThresholdRule{
		{ID: uuid.New(), DeviceID: cnc.ID, Metric: models.MetricCylinderStrokeTime, Operator: models.OpGreaterThan, MaxValue: ptr(1.2), Severity: 2, Enabled: true},
		{ID: uuid.New(), DeviceID: cnc.ID, Metric: models.MetricShaftTorque, Operator: models.OpBetween, MinValue: ptr(10.0), MaxValue: ptr(80.0), Severity: 3, Enabled: true},
		{ID: uuid.New(), DeviceID: cnc.ID, Metric: models.MetricSpeed, Operator: models.OpLessThan, MinValue: ptr(500.0), Severity: 1, Enabled: true},
		{ID: uuid.New(), DeviceID: press.ID, Metric: models.MetricCylinderStrokeTime, Operator: models.OpGreaterThanOrEqual, MaxValue: ptr(1.5), Severity: 4, Enabled: true},
		{ID: uuid.New(), DeviceID: press.ID, Metric: models.MetricShaftTorque, Operator: models.OpGreaterThan, MaxValue: ptr(120.0), Severity: 5, Enabled: true},
	}

	now := time.Now().UTC()
	var readings []models.SensorReading
	for i := 0; i < 30; i++ {
		ts := now.Add(-time.Duration(i) * time.Minute)
		readings = append(readings,
			models.SensorReading{ID: uuid.New(), DeviceID: cnc.ID, Metric: models.MetricCylinderStrokeTime, Value: 1.0 + float64(i%5)*0.05, TimestampUTC: ts},
			models.SensorReading{ID: uuid.New(), DeviceID: cnc.ID, Metric: models.MetricShaftTorque, Value: 20 + float64(i%10)*5, TimestampUTC: ts},
			models.SensorReading{ID: uuid.New(), DeviceID: cnc.ID, Metric: models.MetricSpeed, Value: 600 - float64(i%20)*5, TimestampUTC: ts},
		)
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&[]models.Device{cnc, press}).Error; err != nil {
			return err
		}
		if err := tx.Create(&rules).Error; err != nil {
			return err
		}
		return tx.Create(&readings).Error
	})
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	slog.Info("Seeded demo data", "devices", 2, "rules", len(rules), "readings", len(readings))
	return nil
}

func ptr(v float64) *float64 { return &v }
