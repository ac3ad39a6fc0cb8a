package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"temp_monitor/internal/models"
)

// SensorStateSQLite keeps one row per sensor with its latest read outcome.
type SensorStateSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSensorStateSQLite(db *sql.DB) *SensorStateSQLite {
	return &SensorStateSQLite{db: db, now: time.Now}
}

var _ SensorStateRepo = (*SensorStateSQLite)(nil)

const (
	upsertReadingSQL = `
		INSERT INTO sensor_state (sensor_id, temp_c, read_at, last_error, updated_at)
		VALUES (?, ?, ?, '', ?)
		ON CONFLICT(sensor_id) DO UPDATE SET
			temp_c=excluded.temp_c,
			read_at=excluded.read_at,
			last_error='',
			updated_at=excluded.updated_at
	`

	// a fault keeps the last good temperature and read time
	upsertFaultSQL = `
		INSERT INTO sensor_state (sensor_id, temp_c, read_at, last_error, updated_at)
		VALUES (?, 0, NULL, ?, ?)
		ON CONFLICT(sensor_id) DO UPDATE SET
			last_error=excluded.last_error,
			updated_at=excluded.updated_at
	`

	selectSensorStatesSQL = `
		SELECT sensor_id, temp_c, read_at, last_error, updated_at
		FROM sensor_state ORDER BY sensor_id ASC
	`

	stateTimeLayout = time.RFC3339
)

// SaveReading records a successful read.
func (r *SensorStateSQLite) SaveReading(ctx context.Context, rd models.Reading) error {
	_, err := r.db.ExecContext(ctx, upsertReadingSQL,
		rd.SensorID,
		rd.Celsius,
		rd.Timestamp.UTC().Format(stateTimeLayout),
		r.now().UTC().Format(stateTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert reading for %s: %w", rd.SensorID, err)
	}
	return nil
}

// SaveFault records a failed read without touching the last good value.
func (r *SensorStateSQLite) SaveFault(ctx context.Context, sensorID string, readErr error, at time.Time) error {
	msg := "unknown error"
	if readErr != nil {
		msg = readErr.Error()
	}
	if at.IsZero() {
		at = r.now()
	}
	_, err := r.db.ExecContext(ctx, upsertFaultSQL,
		sensorID,
		msg,
		at.UTC().Format(stateTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert fault for %s: %w", sensorID, err)
	}
	return nil
}

// List returns all known sensors ordered by id.
func (r *SensorStateSQLite) List(ctx context.Context) ([]models.SensorState, error) {
	rows, err := r.db.QueryContext(ctx, selectSensorStatesSQL)
	if err != nil {
		return nil, fmt.Errorf("query sensor state: %w", err)
	}
	defer rows.Close()

	var out []models.SensorState
	for rows.Next() {
		var (
			s         models.SensorState
			readAt    sql.NullString
			updatedAt string
		)
		if err := rows.Scan(&s.SensorID, &s.Celsius, &readAt, &s.LastError, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan sensor state: %w", err)
		}
		if readAt.Valid && readAt.String != "" {
			if s.ReadAt, err = time.Parse(stateTimeLayout, readAt.String); err != nil {
				return nil, fmt.Errorf("parse read_at %q: %w", readAt.String, err)
			}
		}
		if s.UpdatedAt, err = time.Parse(stateTimeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensor state: %w", err)
	}
	return out, nil
}
