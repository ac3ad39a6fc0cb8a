package service

import (
	"context"
	"sync"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/sensor"
)

const defaultLiveRefresh = 2 * time.Second

// LiveService polls the assigned probes for the current-value display.
// These readings are never logged.
type LiveService struct {
	bus     sensor.Bus
	engine  *Engine
	timeout time.Duration
	log     *logger.Logger

	mu      sync.RWMutex
	current map[string]float64 // sensor id -> °C
}

func NewLiveService(bus sensor.Bus, engine *Engine, timeout time.Duration, log *logger.Logger) *LiveService {
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	return &LiveService{
		bus:     bus,
		engine:  engine,
		timeout: timeout,
		log:     log.Component("live"),
		current: make(map[string]float64),
	}
}

// Run polls every interval until ctx is canceled.
func (s *LiveService) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = defaultLiveRefresh
	}
	s.PollOnce(ctx)

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.PollOnce(ctx)
		}
	}
}

// PollOnce reads each assigned probe once. A failed read keeps the previous
// value.
func (s *LiveService) PollOnce(ctx context.Context) {
	seen := map[string]bool{}
	for _, id := range s.engine.Roles() {
		if seen[id] {
			continue
		}
		seen[id] = true

		v, err := sensor.ReadWithTimeout(ctx, s.bus, id, s.timeout)
		if err != nil {
			s.log.Debugw("live_read_failed", "sensor_id", id, "err", err)
			continue
		}
		s.mu.Lock()
		s.current[id] = v
		s.mu.Unlock()
	}
}

// Current returns the last live °C value of sensorID.
func (s *LiveService) Current(sensorID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.current[sensorID]
	return v, ok
}

// CurrentText renders the current value of each role in units.
func (s *LiveService) CurrentText(roles models.RoleAssignment, units models.Units) map[models.Role]string {
	out := make(map[models.Role]string, len(models.Roles))
	for _, r := range models.Roles {
		var shown *float64
		if id := roles[r]; id != "" {
			if c, ok := s.Current(id); ok {
				v := units.Convert(c)
				shown = &v
			}
		}
		out[r] = models.ValueText(shown)
	}
	return out
}
