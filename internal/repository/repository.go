package repository

import (
	"context"
	"database/sql"
	"iter"
	"time"

	"temp_monitor/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// TimeSeriesLog is the durable append-only record of readings.
type TimeSeriesLog interface {
	Ensure() error
	Append(ctx context.Context, readings []models.Reading) error
	Replay(ctx context.Context) iter.Seq2[models.LogRow, error]
	Clear(ctx context.Context) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.MonitorEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.MonitorEvent, error)
}

type SensorStateRepo interface {
	SaveReading(ctx context.Context, r models.Reading) error
	SaveFault(ctx context.Context, sensorID string, readErr error, at time.Time) error
	List(ctx context.Context) ([]models.SensorState, error)
}

type Repository struct {
	TempLog     TimeSeriesLog
	EventRepo   EventRepo
	SensorState SensorStateRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB, logPath string) *Repository {
	return &Repository{
		TempLog:     NewTempLog(logPath),
		EventRepo:   NewEventSQLite(db),
		SensorState: NewSensorStateSQLite(db),
		Auth:        NewOperatorRepository(db),
	}
}
