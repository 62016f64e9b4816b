package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"alpr-service/internal/domain/analytics"
	"alpr-service/internal/repository"
)

type fakeAnalyticsStore struct {
	records []repository.AnalyticsRecord
	alerts  []repository.AlertRecord
}

func (f *fakeAnalyticsStore) InsertRecord(ctx context.Context, rec *repository.AnalyticsRecord) error {
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeAnalyticsStore) InsertAlert(ctx context.Context, alert *repository.AlertRecord) error {
	alert.ID = int64(len(f.alerts) + 1)
	f.alerts = append(f.alerts, *alert)
	return nil
}

func inWindow(ts string, from, to *string) bool {
	if from != nil && ts < *from {
		return false
	}
	if to != nil && ts > *to {
		return false
	}
	return true
}

func inVocabulary(vehicle string, vehicleTypes []string) bool {
	for _, v := range vehicleTypes {
		if v == vehicle {
			return true
		}
	}
	return false
}

func (f *fakeAnalyticsStore) CountByVehicle(ctx context.Context, vehicleTypes []string, from, to *string) ([]repository.VehicleCount, error) {
	totals := map[string]int64{}
	for _, r := range f.records {
		if inVocabulary(r.Vehicle, vehicleTypes) && inWindow(r.Timestamp, from, to) {
			totals[r.Vehicle]++
		}
	}
	var counts []repository.VehicleCount
	for vehicle, count := range totals {
		counts = append(counts, repository.VehicleCount{Vehicle: vehicle, Count: count})
	}
	return counts, nil
}

func (f *fakeAnalyticsStore) CountByCrossing(ctx context.Context, vehicleTypes []string, from, to *string) ([]repository.CrossingCount, error) {
	type key struct{ vehicle, crossing string }
	totals := map[key]int64{}
	for _, r := range f.records {
		if !inVocabulary(r.Vehicle, vehicleTypes) || !inWindow(r.Timestamp, from, to) {
			continue
		}
		crossing, _ := r.Gate["type"].(string)
		totals[key{r.Vehicle, crossing}]++
	}
	var counts []repository.CrossingCount
	for k, count := range totals {
		counts = append(counts, repository.CrossingCount{Vehicle: k.vehicle, Crossing: k.crossing, Count: count})
	}
	return counts, nil
}

func (f *fakeAnalyticsStore) ListRecords(ctx context.Context, offset, limit int) ([]repository.AnalyticsRecord, error) {
	if offset >= len(f.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return append([]repository.AnalyticsRecord{}, f.records[offset:end]...), nil
}

func (f *fakeAnalyticsStore) ListAlerts(ctx context.Context, offset, limit int) ([]repository.AlertRecord, error) {
	if offset >= len(f.alerts) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.alerts) {
		end = len(f.alerts)
	}
	return append([]repository.AlertRecord{}, f.alerts[offset:end]...), nil
}

func (f *fakeAnalyticsStore) ListRecordsInWindow(ctx context.Context, from, to string) ([]repository.AnalyticsRecord, error) {
	var records []repository.AnalyticsRecord
	for _, r := range f.records {
		if inWindow(r.Timestamp, &from, &to) {
			records = append(records, r)
		}
	}
	return records, nil
}

var fixedNow = time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

func newAnalyticsService(store *fakeAnalyticsStore) *AnalyticsService {
	svc := NewAnalyticsService(store, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func detection(vehicle, crossing, timestamp string) analytics.Record {
	return analytics.Record{
		CameraID:     1,
		Gate:         map[string]interface{}{"type": crossing, "id": "g1"},
		Vehicle:      vehicle,
		PlateType:    "private",
		LicensePlate: "KA01AB1234",
		Timestamp:    timestamp,
	}
}

func rowByType(t *testing.T, rows []analytics.CountRow, rowType string) analytics.CountRow {
	t.Helper()
	for _, row := range rows {
		if row.Type == rowType {
			return row
		}
	}
	t.Fatalf("no row of type %q in %+v", rowType, rows)
	return analytics.CountRow{}
}

func TestCountAll(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newAnalyticsService(store)
	ctx := context.Background()

	fixture := []analytics.Record{
		detection("car", "Entry", "2024-03-01_08:00:00"),
		detection("car", "Entry", "2024-03-02_08:00:00"),
		detection("car", "Entry", "2024-03-03_08:00:00"),
		detection("car", "Exit", "2024-03-04_08:00:00"),
		detection("car", "Exit", "2024-03-05_08:00:00"),
		detection("car", "Loitering", "2024-03-06_08:00:00"), // unknown crossing: total only
		detection("truck", "Entry", "2024-03-01_09:00:00"),
		detection("truck", "Entry", "2024-03-02_09:00:00"),
		detection("bicycle", "NotApplicable", "2024-03-01_10:00:00"),
		detection("bus", "Entry", "2024-03-01_11:00:00"), // outside vocabulary: no row at all
	}
	for _, rec := range fixture {
		if _, err := svc.RecordDetection(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := svc.CountAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(analytics.VehicleTypes)+2 {
		t.Fatalf("row count = %d, want %d", len(rows), len(analytics.VehicleTypes)+2)
	}

	car := rowByType(t, rows, "car")
	if car.Count != 6 || *car.EntryCount != 3 || *car.ExitCount != 2 {
		t.Errorf("car row = %+v", car)
	}
	truck := rowByType(t, rows, "truck")
	if truck.Count != 2 || *truck.EntryCount != 2 || *truck.ExitCount != 0 {
		t.Errorf("truck row = %+v", truck)
	}
	bicycle := rowByType(t, rows, "bicycle")
	if bicycle.Count != 1 || *bicycle.EntryCount != 0 || *bicycle.ExitCount != 0 {
		t.Errorf("bicycle row = %+v", bicycle)
	}
	for _, absent := range []string{"motorcycle", "autorickshaw"} {
		row := rowByType(t, rows, absent)
		if row.Count != 0 {
			t.Errorf("%s row should be zero: %+v", absent, row)
		}
	}

	entry := rowByType(t, rows, "entry_count")
	if entry.Count != 5 || entry.EntryCount != nil || entry.ExitCount != nil {
		t.Errorf("entry summary row = %+v", entry)
	}
	exit := rowByType(t, rows, "exit_count")
	if exit.Count != 2 {
		t.Errorf("exit summary row = %+v", exit)
	}
	for _, row := range rows {
		if row.Type == "bus" {
			t.Errorf("vehicle outside vocabulary produced a row: %+v", row)
		}
	}
}

func TestCountTodayBoundaries(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newAnalyticsService(store)
	ctx := context.Background()

	fixture := []analytics.Record{
		detection("car", "Entry", "2024-03-06_23:59:59"),          // yesterday
		detection("car", "Entry", "2024-03-07_00:00:00"),          // today, lower bound
		detection("truck", "Exit", "2024-03-07_23:59:59"),         // today, upper bound
		detection("motorcycle", "NotApplicable", "2024-03-07_12:30:00"),
		detection("car", "Entry", "2024-03-08_00:00:00"),          // tomorrow
	}
	for _, rec := range fixture {
		if _, err := svc.RecordDetection(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := svc.CountToday(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(analytics.VehicleTypes)+3 {
		t.Fatalf("row count = %d, want %d", len(rows), len(analytics.VehicleTypes)+3)
	}

	car := rowByType(t, rows, "car")
	if car.Count != 1 || *car.EntryCount != 1 {
		t.Errorf("car row = %+v (yesterday/tomorrow must be excluded, bounds included)", car)
	}
	truck := rowByType(t, rows, "truck")
	if truck.Count != 1 || *truck.ExitCount != 1 {
		t.Errorf("truck row = %+v", truck)
	}
	na := rowByType(t, rows, "N/A")
	if na.Count != 1 {
		t.Errorf("N/A summary row = %+v", na)
	}
	if rowByType(t, rows, "entry_count").Count != 1 {
		t.Errorf("entry summary wrong: %+v", rows)
	}
}

func TestListRecordsPagination(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newAnalyticsService(store)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := svc.RecordDetection(ctx, detection("car", "Entry", "2024-03-07_08:00:00")); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.ListRecords(ctx, 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 5 {
		t.Fatalf("page length = %d, want 5", len(page))
	}
	for i, rec := range page {
		if want := int64(6 + i); rec.ID != want {
			t.Errorf("page[%d].ID = %d, want %d", i, rec.ID, want)
		}
	}

	last, err := svc.ListRecords(ctx, 3, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 2 {
		t.Errorf("last page length = %d, want 2", len(last))
	}

	empty, err := svc.ListRecords(ctx, 4, 5)
	if err != nil {
		t.Fatalf("out-of-range page must not error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range page returned %d records", len(empty))
	}
}

func TestRecordAlertFillsTimestamp(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newAnalyticsService(store)
	ctx := context.Background()

	id, err := svc.RecordAlert(ctx, analytics.Alert{
		AlertType: "wrong_parking",
		ID:        "alert-1",
		VehicleNo: "KA01AB1234",
		CameraID:  3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("alert row id = %d", id)
	}

	stored := store.alerts[0]
	if stored.Timestamp != "2024-03-07_12:00:00" {
		t.Errorf("server-assigned timestamp = %q", stored.Timestamp)
	}
	if stored.AlertID != "alert-1" || stored.VehicleNo != "KA01AB1234" {
		t.Errorf("stored alert = %+v", stored)
	}

	if _, err := svc.RecordAlert(ctx, analytics.Alert{ID: "alert-2", Timestamp: "2024-01-01_00:00:01"}); err != nil {
		t.Fatal(err)
	}
	if got := store.alerts[1].Timestamp; got != "2024-01-01_00:00:01" {
		t.Errorf("caller-supplied timestamp overwritten: %q", got)
	}
}

func TestListAlertsPagination(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newAnalyticsService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordAlert(ctx, analytics.Alert{ID: "a", Timestamp: "2024-03-07_08:00:00"}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.ListAlerts(ctx, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].RowID != 3 {
		t.Errorf("page = %+v", page)
	}
}

func TestListTodayProjection(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newAnalyticsService(store)
	ctx := context.Background()

	if _, err := svc.RecordDetection(ctx, detection("car", "Entry", "2024-03-07_09:00:00")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordDetection(ctx, detection("car", "Entry", "2024-03-06_09:00:00")); err != nil {
		t.Fatal(err)
	}

	records, err := svc.ListToday(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Vehicle != "car" || rec.Timestamp != "2024-03-07_09:00:00" {
		t.Errorf("projected record = %+v", rec)
	}
	if crossing, _ := rec.Gate["type"].(string); crossing != "Entry" {
		t.Errorf("gate mapping lost: %+v", rec.Gate)
	}
}
