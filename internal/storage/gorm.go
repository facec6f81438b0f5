package storage

import (
	"context"
	"errors"

	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAlertNotFound = errors.New("alert not found")

// Store adapts the gorm handle to the lookup/append operations the
// ingestion pipeline works against.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindEnabledRules returns the enabled rules for one device/metric pair in
// creation order. Reads are not isolated from concurrent rule edits; a rule
// edited mid-flight may or may not be observed.
func (s *Store) FindEnabledRules(ctx context.Context, deviceID uuid.UUID, metric models.Metric) ([]models.ThresholdRule, error) {
	var rules []models.ThresholdRule
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND metric = ? AND enabled = ?", deviceID, metric, true).
		Order("created_at").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *Store) AppendReading(ctx context.Context, reading *models.SensorReading) error {
	return s.db.WithContext(ctx).Create(reading).Error
}

func (s *Store) AppendAlerts(ctx context.Context, alerts []models.Alert) error {
	return s.db.WithContext(ctx).Create(&alerts).Error
}

func (s *Store) GetAlert(ctx context.Context, id uuid.UUID) (models.Alert, error) {
	var alert models.Alert
	if err := s.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Alert{}, ErrAlertNotFound
		}
		return models.Alert{}, err
	}
	return alert, nil
}

func (s *Store) SaveAlert(ctx context.Context, alert *models.Alert) error {
	return s.db.WithContext(ctx).Save(alert).Error
}
