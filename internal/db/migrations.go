package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS cameras (
		id              UUID PRIMARY KEY,
		camera_id       TEXT NOT NULL,
		rtsp_url        TEXT,
		algorithm       TEXT,
		gate            JSONB NOT NULL DEFAULT '[]',
		wrong_parking   JSONB NOT NULL DEFAULT '[]',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_cameras_camera_id ON cameras(camera_id);`,
	`CREATE TABLE IF NOT EXISTS analytics_records (
		id              BIGSERIAL PRIMARY KEY,
		camera_id       INT NOT NULL,
		gate            JSONB,
		vehicle         TEXT NOT NULL,
		plate_type      TEXT,
		license_plate   TEXT,
		plate_img       TEXT,
		"timestamp"     TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_records_timestamp ON analytics_records("timestamp");`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_records_vehicle ON analytics_records(vehicle);`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id              BIGSERIAL PRIMARY KEY,
		alert_type      TEXT,
		alert_id        TEXT,
		vehicle_no      TEXT,
		camera_id       INT,
		alert_img       TEXT,
		plate_img       TEXT,
		"timestamp"     TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts("timestamp");`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
