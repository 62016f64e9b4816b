package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"alpr-service/internal/domain/analytics"
	"alpr-service/internal/repository"
)

const defaultPerPage = 10

// AnalyticsStore is the persistence surface the analytics service needs.
type AnalyticsStore interface {
	InsertRecord(ctx context.Context, rec *repository.AnalyticsRecord) error
	InsertAlert(ctx context.Context, alert *repository.AlertRecord) error
	CountByVehicle(ctx context.Context, vehicleTypes []string, from, to *string) ([]repository.VehicleCount, error)
	CountByCrossing(ctx context.Context, vehicleTypes []string, from, to *string) ([]repository.CrossingCount, error)
	ListRecords(ctx context.Context, offset, limit int) ([]repository.AnalyticsRecord, error)
	ListAlerts(ctx context.Context, offset, limit int) ([]repository.AlertRecord, error)
	ListRecordsInWindow(ctx context.Context, from, to string) ([]repository.AnalyticsRecord, error)
}

type AnalyticsService struct {
	store AnalyticsStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewAnalyticsService(store AnalyticsStore, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// RecordInfo is a stored detection row with its identifier.
type RecordInfo struct {
	ID int64 `json:"id"`
	analytics.Record
}

// AlertInfo is a stored alert row. RowID is the storage identifier; the
// embedded alert keeps its own caller-supplied "id" field on the wire.
type AlertInfo struct {
	RowID int64 `json:"row_id"`
	analytics.Alert
}

// RecordDetection appends a detection unconditionally. Duplicate submissions
// produce duplicate rows; idempotency is the caller's concern.
func (s *AnalyticsService) RecordDetection(ctx context.Context, rec analytics.Record) (int64, error) {
	dbRec := repository.AnalyticsRecord{
		CameraID:     rec.CameraID,
		Gate:         rec.Gate,
		Vehicle:      rec.Vehicle,
		PlateType:    rec.PlateType,
		LicensePlate: rec.LicensePlate,
		PlateImg:     rec.PlateImg,
		Timestamp:    rec.Timestamp,
		CreatedAt:    s.now(),
	}
	if err := s.store.InsertRecord(ctx, &dbRec); err != nil {
		s.log.Error().
			Err(err).
			Int("camera_id", rec.CameraID).
			Str("vehicle", rec.Vehicle).
			Msg("failed to store detection")
		return 0, fmt.Errorf("failed to store detection: %w", err)
	}

	s.log.Info().
		Int64("record_id", dbRec.ID).
		Int("camera_id", rec.CameraID).
		Str("vehicle", rec.Vehicle).
		Str("license_plate", rec.LicensePlate).
		Str("timestamp", rec.Timestamp).
		Msg("stored detection")

	return dbRec.ID, nil
}

// RecordAlert appends an alert, assigning the current wall-clock timestamp
// when the payload carries none.
func (s *AnalyticsService) RecordAlert(ctx context.Context, alert analytics.Alert) (int64, error) {
	if alert.Timestamp == "" {
		alert.Timestamp = analytics.FormatTimestamp(s.now())
	}

	dbAlert := repository.AlertRecord{
		AlertType: alert.AlertType,
		AlertID:   alert.ID,
		VehicleNo: alert.VehicleNo,
		CameraID:  alert.CameraID,
		AlertImg:  alert.AlertImg,
		PlateImg:  alert.PlateImg,
		Timestamp: alert.Timestamp,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertAlert(ctx, &dbAlert); err != nil {
		s.log.Error().
			Err(err).
			Int("camera_id", alert.CameraID).
			Str("alert_type", alert.AlertType).
			Msg("failed to store alert")
		return 0, fmt.Errorf("failed to store alert: %w", err)
	}

	s.log.Info().
		Int64("alert_row_id", dbAlert.ID).
		Str("alert_id", alert.ID).
		Str("alert_type", alert.AlertType).
		Int("camera_id", alert.CameraID).
		Msg("stored alert")

	return dbAlert.ID, nil
}

// CountAll reports per-vehicle-type totals with entry/exit sub-counts over
// all history, followed by vocabulary-wide entry_count and exit_count rows.
func (s *AnalyticsService) CountAll(ctx context.Context) ([]analytics.CountRow, error) {
	return s.countWindow(ctx, nil, nil, false)
}

// CountToday is CountAll restricted to the current calendar day, with an
// extra vocabulary-wide N/A row for NotApplicable crossings.
func (s *AnalyticsService) CountToday(ctx context.Context) ([]analytics.CountRow, error) {
	from, to := analytics.DayWindow(s.now())
	return s.countWindow(ctx, &from, &to, true)
}

func (s *AnalyticsService) countWindow(ctx context.Context, from, to *string, withNA bool) ([]analytics.CountRow, error) {
	totals, err := s.store.CountByVehicle(ctx, analytics.VehicleTypes, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}
	crossings, err := s.store.CountByCrossing(ctx, analytics.VehicleTypes, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count crossings: %w", err)
	}

	totalByVehicle := make(map[string]int64, len(totals))
	for _, t := range totals {
		totalByVehicle[t.Vehicle] = t.Count
	}

	entryByVehicle := make(map[string]int64)
	exitByVehicle := make(map[string]int64)
	var naTotal int64
	for _, c := range crossings {
		switch c.Crossing {
		case analytics.CrossingEntry:
			entryByVehicle[c.Vehicle] = c.Count
		case analytics.CrossingExit:
			exitByVehicle[c.Vehicle] = c.Count
		case analytics.CrossingNotApplicable:
			naTotal += c.Count
		}
	}

	rows := make([]analytics.CountRow, 0, len(analytics.VehicleTypes)+3)
	var entryTotal, exitTotal int64
	for _, vehicle := range analytics.VehicleTypes {
		entry := entryByVehicle[vehicle]
		exit := exitByVehicle[vehicle]
		entryTotal += entry
		exitTotal += exit
		rows = append(rows, analytics.CountRow{
			Type:       vehicle,
			Count:      totalByVehicle[vehicle],
			EntryCount: &entry,
			ExitCount:  &exit,
		})
	}
	rows = append(rows,
		analytics.CountRow{Type: "entry_count", Count: entryTotal},
		analytics.CountRow{Type: "exit_count", Count: exitTotal},
	)
	if withNA {
		rows = append(rows, analytics.CountRow{Type: "N/A", Count: naTotal})
	}

	return rows, nil
}

// ListRecords returns one page of detections in insertion order. Pages
// beyond the data yield an empty slice.
func (s *AnalyticsService) ListRecords(ctx context.Context, page, perPage int) ([]RecordInfo, error) {
	offset, limit := pageBounds(page, perPage)
	records, err := s.store.ListRecords(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	result := make([]RecordInfo, 0, len(records))
	for _, r := range records {
		result = append(result, RecordInfo{
			ID: r.ID,
			Record: analytics.Record{
				CameraID:     r.CameraID,
				Gate:         r.Gate,
				Vehicle:      r.Vehicle,
				PlateType:    r.PlateType,
				LicensePlate: r.LicensePlate,
				PlateImg:     r.PlateImg,
				Timestamp:    r.Timestamp,
			},
		})
	}
	return result, nil
}

func (s *AnalyticsService) ListAlerts(ctx context.Context, page, perPage int) ([]AlertInfo, error) {
	offset, limit := pageBounds(page, perPage)
	alerts, err := s.store.ListAlerts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	result := make([]AlertInfo, 0, len(alerts))
	for _, a := range alerts {
		result = append(result, AlertInfo{
			RowID: a.ID,
			Alert: analytics.Alert{
				AlertType: a.AlertType,
				ID:        a.AlertID,
				VehicleNo: a.VehicleNo,
				CameraID:  a.CameraID,
				AlertImg:  a.AlertImg,
				PlateImg:  a.PlateImg,
				Timestamp: a.Timestamp,
			},
		})
	}
	return result, nil
}

// ListToday returns every detection from the current calendar day projected
// to vehicle, gate and timestamp, unpaginated.
func (s *AnalyticsService) ListToday(ctx context.Context) ([]analytics.TodayRecord, error) {
	from, to := analytics.DayWindow(s.now())
	records, err := s.store.ListRecordsInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list today records: %w", err)
	}

	result := make([]analytics.TodayRecord, 0, len(records))
	for _, r := range records {
		result = append(result, analytics.TodayRecord{
			Vehicle:   r.Vehicle,
			Gate:      r.Gate,
			Timestamp: r.Timestamp,
		})
	}
	return result, nil
}

func pageBounds(page, perPage int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return (page - 1) * perPage, perPage
}
