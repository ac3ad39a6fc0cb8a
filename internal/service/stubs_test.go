package service

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
)

// eventRepoStub records journal appends.
type eventRepoStub struct {
	mu      sync.Mutex
	appends []models.MonitorEvent
	listErr error
	listed  struct {
		from, to time.Time
		typ      string
	}
}

func (e *eventRepoStub) Append(_ context.Context, ev models.MonitorEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.appends = append(e.appends, ev)
	return nil
}

func (e *eventRepoStub) List(_ context.Context, from, to time.Time, typ string) ([]models.MonitorEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listed.from, e.listed.to, e.listed.typ = from, to, typ
	if e.listErr != nil {
		return nil, e.listErr
	}
	return append([]models.MonitorEvent(nil), e.appends...), nil
}

func (e *eventRepoStub) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.appends))
	for _, ev := range e.appends {
		out = append(out, ev.Type)
	}
	return out
}

// sensorStateStub records the latest-state upserts.
type sensorStateStub struct {
	mu       sync.Mutex
	readings []models.Reading
	faults   []string
}

func (s *sensorStateStub) SaveReading(_ context.Context, r models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
	return nil
}

func (s *sensorStateStub) SaveFault(_ context.Context, id string, _ error, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, id)
	return nil
}

func (s *sensorStateStub) List(context.Context) ([]models.SensorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SensorState, 0, len(s.readings))
	for _, r := range s.readings {
		out = append(out, models.SensorState{SensorID: r.SensorID, Celsius: r.Celsius, ReadAt: r.Timestamp})
	}
	return out, nil
}

var errDiskFull = errors.New("disk full")

// failingLog is a TimeSeriesLog whose appends always fail.
type failingLog struct {
	repository.TimeSeriesLog
}

func (failingLog) Append(context.Context, []models.Reading) error { return errDiskFull }

// countingLog counts appends on top of a real log.
type countingLog struct {
	repository.TimeSeriesLog
	mu      sync.Mutex
	appends int
}

func (c *countingLog) Append(ctx context.Context, rs []models.Reading) error {
	c.mu.Lock()
	c.appends++
	c.mu.Unlock()
	return c.TimeSeriesLog.Append(ctx, rs)
}

func (c *countingLog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appends
}

// rowsLog replays a fixed set of raw rows.
type rowsLog struct {
	repository.TimeSeriesLog
	rows []models.LogRow
}

func (l rowsLog) Replay(context.Context) iter.Seq2[models.LogRow, error] {
	return func(yield func(models.LogRow, error) bool) {
		for _, r := range l.rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// scriptedBus returns fixed values per sensor id.
type scriptedBus struct {
	mu      sync.Mutex
	ids     []string
	values  map[string]float64
	errs    map[string]error
	listErr error
	reads   int
}

func (b *scriptedBus) ListAvailable(context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]string(nil), b.ids...), nil
}

func (b *scriptedBus) Read(_ context.Context, id string) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if err := b.errs[id]; err != nil {
		return 0, err
	}
	return b.values[id], nil
}

func (b *scriptedBus) set(id string, v float64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.values == nil {
		b.values = map[string]float64{}
	}
	if b.errs == nil {
		b.errs = map[string]error{}
	}
	b.values[id] = v
	b.errs[id] = err
}
