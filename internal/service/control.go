package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"temp_monitor/internal/config"
	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidUnits         = errors.New("invalid units: must be C or F")
	ErrInvalidFrequencyUnit = errors.New("invalid frequency unit: must be sec or min")
	ErrUnknownRole          = errors.New("unknown role")
)

// SettingsStore is the persisted settings document.
type SettingsStore interface {
	Units() models.Units
	FrequencyUnit() models.FrequencyUnit
	LogInterval() int
	Roles() models.RoleAssignment
	Set(key string, value any)
	SetRoles(a models.RoleAssignment)
	Save() error
}

// ControlService applies settings changes to the scheduler and the engine.
type ControlService struct {
	mu sync.Mutex // one settings change at a time

	settings  SettingsStore
	engine    *Engine
	scheduler *Scheduler
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewControlService(settings SettingsStore, engine *Engine, scheduler *Scheduler, eventRepo repository.EventRepo, log *logger.Logger) *ControlService {
	return &ControlService{
		settings:  settings,
		engine:    engine,
		scheduler: scheduler,
		eventRepo: eventRepo,
		log:       log.Component("control"),
	}
}

// Start rebuilds from the log and begins sampling. ctx bounds the whole
// sampling run, not just this call.
func (s *ControlService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rebuildLocked(ctx); err != nil {
		return err
	}
	interval, freq := s.settings.LogInterval(), s.settings.FrequencyUnit()
	if err := s.scheduler.Start(ctx, interval, freq); err != nil {
		return err
	}
	s.appendEvent(ctx, models.EventStart, "Sampling started", map[string]any{
		"log_interval":   interval,
		"frequency_unit": freq,
	})
	return nil
}

// Stop halts sampling. An in-flight tick completes first.
func (s *ControlService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler.State() != StateScheduled {
		return nil
	}
	s.scheduler.Stop()
	s.appendEvent(ctx, models.EventStop, "Sampling stopped", nil)
	return nil
}

// Rebuild recomputes the chart from the log with the current settings.
func (s *ControlService) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx)
}

func (s *ControlService) rebuildLocked(ctx context.Context) error {
	return s.engine.Rebuild(ctx, s.settings.Roles(), s.settings.Units(), s.settings.FrequencyUnit())
}

func (s *ControlService) SetUnits(ctx context.Context, u models.Units) error {
	if !u.Valid() {
		return ErrInvalidUnits
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.settings.Units()
	s.settings.Set(config.KeyUnits, string(u))
	if err := s.rebuildLocked(ctx); err != nil {
		return err
	}
	s.appendEvent(ctx, models.EventUnitsChange, "Units changed to "+string(u), map[string]any{
		"from": from,
		"to":   u,
	})
	return nil
}

// SetFrequencyUnit changes both the tick period and the X axis unit.
func (s *ControlService) SetFrequencyUnit(ctx context.Context, f models.FrequencyUnit) error {
	if !f.Valid() {
		return ErrInvalidFrequencyUnit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Set(config.KeyFrequencyUnit, string(f))
	if err := s.rescheduleLocked(); err != nil {
		return err
	}
	if err := s.rebuildLocked(ctx); err != nil {
		return err
	}
	s.appendEvent(ctx, models.EventReschedule, "Frequency unit changed to "+string(f), s.cadence())
	return nil
}

// SetLogInterval changes the tick period. Existing points keep their X values.
func (s *ControlService) SetLogInterval(ctx context.Context, n int) error {
	if n <= 0 {
		return ErrInvalidInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Set(config.KeyLogInterval, n)
	if err := s.rescheduleLocked(); err != nil {
		return err
	}
	s.appendEvent(ctx, models.EventReschedule, fmt.Sprintf("Log interval changed to %d", n), s.cadence())
	return nil
}

func (s *ControlService) rescheduleLocked() error {
	err := s.scheduler.Reschedule(s.settings.LogInterval(), s.settings.FrequencyUnit())
	if errors.Is(err, ErrSchedulerNotRunning) {
		return nil
	}
	return err
}

func (s *ControlService) cadence() map[string]any {
	return map[string]any{
		"log_interval":   s.settings.LogInterval(),
		"frequency_unit": s.settings.FrequencyUnit(),
	}
}

// AssignRoles replaces the role assignment, persists it and rebuilds.
func (s *ControlService) AssignRoles(ctx context.Context, a models.RoleAssignment) error {
	for r := range a {
		if !r.Known() {
			return fmt.Errorf("%w: %q", ErrUnknownRole, r)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clean := models.RoleAssignment{}
	for r, id := range a {
		if id != "" {
			clean[r] = id
		}
	}
	s.settings.SetRoles(clean)
	if err := s.settings.Save(); err != nil {
		s.log.Warnw("settings_save_failed", "err", err)
	}
	if err := s.rebuildLocked(ctx); err != nil {
		return err
	}

	meta := make(map[string]any, len(clean))
	for r, id := range clean {
		meta[string(r)] = id
	}
	s.appendEvent(ctx, models.EventRoleChange, "Sensor roles reassigned", meta)
	return nil
}

// ClearLog truncates the log and empties the chart.
func (s *ControlService) ClearLog(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.Clear(ctx); err != nil {
		return err
	}
	s.appendEvent(ctx, models.EventLogClear, "Temperature log cleared", nil)
	return nil
}

func (s *ControlService) SaveSettings(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Save()
}

func (s *ControlService) Settings(_ context.Context) SettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := SettingsView{
		Units:         s.settings.Units(),
		FrequencyUnit: s.settings.FrequencyUnit(),
		LogInterval:   s.settings.LogInterval(),
		Roles:         s.settings.Roles(),
		Scheduler:     s.scheduler.State().String(),
	}
	if p, err := s.scheduler.PeriodFor(view.LogInterval, view.FrequencyUnit); err == nil {
		view.Period = p.String()
	}
	return view
}

// appendEvent journals a control action. Journal failures are logged only;
// the action itself already took effect.
func (s *ControlService) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	ev := models.MonitorEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Warnw("journal_append_failed", "type", typ, "err", err)
	}
	s.log.Infow("control_applied", "type", typ)
}
