package analytics

import (
	"time"
)

// TimeLayout is the fixed-width timestamp format used on every analytics and
// alert record. It sorts lexicographically in calendar order, which is what
// makes string-range day queries valid.
const TimeLayout = "2006-01-02_15:04:05"

// Crossing classifications assigned by the detection pipeline.
const (
	CrossingEntry         = "Entry"
	CrossingExit          = "Exit"
	CrossingNotApplicable = "NotApplicable"
)

// VehicleTypes is the fixed vocabulary the aggregator reports on. Records
// with a vehicle outside this set are stored but excluded from all counts.
var VehicleTypes = []string{"car", "truck", "bicycle", "motorcycle", "autorickshaw"}

// Record is a single vehicle detection submitted by a worker. Gate is an
// open mapping; the aggregator only reads its "type" key, everything else is
// stored as-is for forward compatibility.
type Record struct {
	CameraID     int                    `json:"camera_id"`
	Gate         map[string]interface{} `json:"gate"`
	Vehicle      string                 `json:"vehicle"`
	PlateType    string                 `json:"plate_type"`
	LicensePlate string                 `json:"license_plate"`
	PlateImg     string                 `json:"plate_img"`
	Timestamp    string                 `json:"timestamp"`
}

// Alert is a violation event. The "vechile_no" JSON tag is the wire contract
// the workers already speak; do not fix the spelling.
type Alert struct {
	AlertType string `json:"alert_type"`
	ID        string `json:"id"`
	VehicleNo string `json:"vechile_no"`
	CameraID  int    `json:"camera_id"`
	AlertImg  string `json:"alert_img"`
	PlateImg  string `json:"plate_img"`
	Timestamp string `json:"timestamp"`
}

// CountRow is one row of a vehicle-count report. Per-vehicle rows carry
// entry/exit sub-counts; summary rows ("entry_count", "exit_count", "N/A")
// carry only a total.
type CountRow struct {
	Type       string `json:"type"`
	Count      int64  `json:"count"`
	EntryCount *int64 `json:"entry_count,omitempty"`
	ExitCount  *int64 `json:"exit_count,omitempty"`
}

// TodayRecord is the projected view returned by the records-today listing.
type TodayRecord struct {
	Vehicle   string                 `json:"vehicle"`
	Gate      map[string]interface{} `json:"gate"`
	Timestamp string                 `json:"timestamp"`
}

// FormatTimestamp renders t in the fixed record format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// DayWindow returns the inclusive timestamp-string bounds of the calendar day
// containing t.
func DayWindow(t time.Time) (start, end string) {
	day := t.Format("2006-01-02")
	return day + "_00:00:00", day + "_23:59:59"
}
