package service

import (
	"context"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/sensor"
	"temp_monitor/internal/telemetry"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control changes how and what the monitor samples.
type Control interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Rebuild(ctx context.Context) error
	SetUnits(ctx context.Context, u models.Units) error
	SetFrequencyUnit(ctx context.Context, f models.FrequencyUnit) error
	SetLogInterval(ctx context.Context, n int) error
	AssignRoles(ctx context.Context, a models.RoleAssignment) error
	ClearLog(ctx context.Context) error
	SaveSettings(ctx context.Context) error
	Settings(ctx context.Context) SettingsView
}

// Monitoring exposes read-only chart and probe state.
type Monitoring interface {
	Chart(ctx context.Context) (models.ChartSnapshot, error)
	Sensors(ctx context.Context) (SensorsView, error)
}

// EventLog exposes the journal with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.MonitorEvent, error)
}

// Live runs the current-value poller until ctx is canceled.
type Live interface {
	Run(ctx context.Context, every time.Duration)
}

// Deps are the collaborators built outside the service layer.
type Deps struct {
	Settings SettingsStore
	Bus      sensor.Bus
	Sink     telemetry.Sink
	Sampler  SamplerConfig
	Auth     AuthConfig
	Log      *logger.Logger

	SchedulerOptions []SchedulerOption
}

// Service aggregates all sub-services.
type Service struct {
	Control
	Monitoring
	EventLog
	Live
	Authorization

	Engine    *Engine
	Scheduler *Scheduler
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	engine := NewEngine(repos.TempLog, deps.Log)
	sampler := NewSampler(deps.Bus, engine, deps.Settings, repos.EventRepo, repos.SensorState, deps.Sink, deps.Sampler, deps.Log)
	scheduler := NewScheduler(sampler.Tick, deps.Log, deps.SchedulerOptions...)
	live := NewLiveService(deps.Bus, engine, deps.Sampler.ReadTimeout, deps.Log)

	return &Service{
		Control:       NewControlService(deps.Settings, engine, scheduler, repos.EventRepo, deps.Log),
		Monitoring:    NewMonitoringService(engine, live, deps.Bus, repos.SensorState),
		EventLog:      NewJournalService(repos.EventRepo),
		Live:          live,
		Authorization: NewAuthService(repos.Auth, deps.Auth),
		Engine:        engine,
		Scheduler:     scheduler,
	}
}
