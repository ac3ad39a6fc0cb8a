package service

import (
	"context"
	"fmt"

	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/sensor"
)

// MonitoringService serves read-only views of the chart and the probes.
type MonitoringService struct {
	engine *Engine
	live   *LiveService
	bus    sensor.Bus
	states repository.SensorStateRepo
}

func NewMonitoringService(engine *Engine, live *LiveService, bus sensor.Bus, states repository.SensorStateRepo) *MonitoringService {
	return &MonitoringService{engine: engine, live: live, bus: bus, states: states}
}

// Chart returns the current chart with live values filled in.
func (s *MonitoringService) Chart(_ context.Context) (models.ChartSnapshot, error) {
	snap := s.engine.Snapshot()
	if s.live != nil {
		snap.Current = s.live.CurrentText(snap.Roles, snap.Units)
	}
	return snap, nil
}

// Sensors lists probes on the bus and the last stored outcome per probe.
func (s *MonitoringService) Sensors(ctx context.Context) (SensorsView, error) {
	ids, err := s.bus.ListAvailable(ctx)
	if err != nil {
		return SensorsView{}, fmt.Errorf("list sensors: %w", err)
	}
	states, err := s.states.List(ctx)
	if err != nil {
		return SensorsView{}, err
	}
	if ids == nil {
		ids = []string{}
	}
	if states == nil {
		states = []models.SensorState{}
	}
	return SensorsView{Available: ids, States: states}, nil
}
