package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// AnalyticsRecord is an append-only detection row. Timestamp is stored as
// TEXT in the fixed YYYY-MM-DD_HH:MM:SS format so string range comparisons
// follow calendar order.
type AnalyticsRecord struct {
	ID           int64             `gorm:"primaryKey"`
	CameraID     int               `gorm:"not null"`
	Gate         datatypes.JSONMap `gorm:"type:jsonb"`
	Vehicle      string            `gorm:"not null"`
	PlateType    string
	LicensePlate string
	PlateImg     string
	Timestamp    string `gorm:"column:timestamp;not null"`
	CreatedAt    time.Time
}

// AlertRecord is an append-only alert row. AlertID is the caller-supplied
// identifier from the payload, distinct from the row's own primary key.
type AlertRecord struct {
	ID        int64 `gorm:"primaryKey"`
	AlertType string
	AlertID   string
	VehicleNo string
	CameraID  int
	AlertImg  string
	PlateImg  string
	Timestamp string `gorm:"column:timestamp;not null"`
	CreatedAt time.Time
}

func (AlertRecord) TableName() string { return "alerts" }

// VehicleCount is one grouped total per vehicle type.
type VehicleCount struct {
	Vehicle string
	Count   int64
}

// CrossingCount is one grouped total per (vehicle type, gate.type) pair.
type CrossingCount struct {
	Vehicle  string
	Crossing string
	Count    int64
}

func (r *AnalyticsRepository) InsertRecord(ctx context.Context, rec *AnalyticsRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AnalyticsRepository) InsertAlert(ctx context.Context, alert *AlertRecord) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// CountByVehicle groups record totals by vehicle type, restricted to the
// given vocabulary and, when from/to are non-nil, to the inclusive timestamp
// window.
func (r *AnalyticsRepository) CountByVehicle(ctx context.Context, vehicleTypes []string, from, to *string) ([]VehicleCount, error) {
	query := r.db.WithContext(ctx).
		Model(&AnalyticsRecord{}).
		Select("vehicle, count(*) as count").
		Where("vehicle IN ?", vehicleTypes).
		Group("vehicle")
	query = applyWindow(query, from, to)

	var counts []VehicleCount
	err := query.Scan(&counts).Error
	return counts, err
}

// CountByCrossing groups record totals by vehicle type and the record's
// gate.type classification in a single two-key pass.
func (r *AnalyticsRepository) CountByCrossing(ctx context.Context, vehicleTypes []string, from, to *string) ([]CrossingCount, error) {
	query := r.db.WithContext(ctx).
		Model(&AnalyticsRecord{}).
		Select("vehicle, gate->>'type' as crossing, count(*) as count").
		Where("vehicle IN ?", vehicleTypes).
		Group("vehicle").
		Group("gate->>'type'")
	query = applyWindow(query, from, to)

	var counts []CrossingCount
	err := query.Scan(&counts).Error
	return counts, err
}

// ListRecords returns a page of records in insertion order.
func (r *AnalyticsRepository) ListRecords(ctx context.Context, offset, limit int) ([]AnalyticsRecord, error) {
	var records []AnalyticsRecord
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *AnalyticsRepository) ListAlerts(ctx context.Context, offset, limit int) ([]AlertRecord, error) {
	var alerts []AlertRecord
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// ListRecordsInWindow returns every record inside the inclusive timestamp
// window, projected to the fields the today-report consumes.
func (r *AnalyticsRepository) ListRecordsInWindow(ctx context.Context, from, to string) ([]AnalyticsRecord, error) {
	var records []AnalyticsRecord
	err := r.db.WithContext(ctx).
		Select("vehicle", "gate", "timestamp").
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("id").
		Find(&records).Error
	return records, err
}

func applyWindow(query *gorm.DB, from, to *string) *gorm.DB {
	if from != nil {
		query = query.Where("timestamp >= ?", *from)
	}
	if to != nil {
		query = query.Where("timestamp <= ?", *to)
	}
	return query
}
