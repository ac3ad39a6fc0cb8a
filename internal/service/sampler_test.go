package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/sensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedInterval int

func (f fixedInterval) LogInterval() int { return int(f) }

type recordingSink struct {
	batches [][]models.Reading
	err     error
}

func (s *recordingSink) Publish(_ context.Context, rs []models.Reading) error {
	s.batches = append(s.batches, rs)
	return s.err
}
func (s *recordingSink) Close() error { return nil }

// slowBus blocks reads of one id until the read context ends.
type slowBus struct {
	*scriptedBus
	slowID string
}

func (b slowBus) Read(ctx context.Context, id string) (float64, error) {
	if id == b.slowID {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return b.scriptedBus.Read(ctx, id)
}

type samplerFixture struct {
	store  repository.TimeSeriesLog
	engine *Engine
	bus    *scriptedBus
	events *eventRepoStub
	states *sensorStateStub
	sink   *recordingSink
}

func newSamplerFixture(t *testing.T, store repository.TimeSeriesLog) *samplerFixture {
	t.Helper()
	if store == nil {
		store = newTestLog(t)
	}
	f := &samplerFixture{
		store:  store,
		engine: NewEngine(store, logger.Nop()),
		bus:    &scriptedBus{ids: []string{prodID, ambID}},
		events: &eventRepoStub{},
		states: &sensorStateStub{},
		sink:   &recordingSink{},
	}
	f.bus.set(prodID, 24, nil)
	f.bus.set(ambID, 22, nil)
	require.NoError(t, f.engine.Rebuild(context.Background(), testRoles, models.Celsius, models.Minutes))
	return f
}

func (f *samplerFixture) sampler(bus sensor.Bus, timeout time.Duration) *Sampler {
	return NewSampler(bus, f.engine, fixedInterval(5), f.events, f.states, f.sink,
		SamplerConfig{ReadTimeout: timeout, Parallelism: 2}, logger.Nop())
}

func logRows(t *testing.T, store repository.TimeSeriesLog) []models.LogRow {
	t.Helper()
	var rows []models.LogRow
	for r, err := range store.Replay(context.Background()) {
		require.NoError(t, err)
		rows = append(rows, r)
	}
	return rows
}

func TestSampler_TickRecordsBatch(t *testing.T) {
	f := newSamplerFixture(t, nil)
	s := f.sampler(f.bus, time.Second)
	now := time.Date(2024, 3, 1, 8, 30, 15, 500, time.Local)

	require.NoError(t, s.Tick(context.Background(), now))
	require.NoError(t, s.Tick(context.Background(), now.Add(5*time.Minute)))

	rows := logRows(t, f.store)
	require.Len(t, rows, 4)
	assert.Equal(t, models.LogRow{Timestamp: "2024-03-01 08:30:15", SensorID: prodID, Value: "24"}, rows[0])
	assert.Equal(t, ambID, rows[1].SensorID)

	snap := f.engine.Snapshot()
	assert.Equal(t, models.Series{{X: 0, Y: 24}, {X: 5, Y: 24}}, snap.Series[models.RoleProduct])

	assert.Len(t, f.states.readings, 4)
	assert.Len(t, f.sink.batches, 2)
	assert.Empty(t, f.events.types())
}

func TestSampler_FailedSensorIsOmitted(t *testing.T) {
	f := newSamplerFixture(t, nil)
	f.bus.set(ambID, 0, sensor.ErrNotReady)
	s := f.sampler(f.bus, time.Second)

	require.NoError(t, s.Tick(context.Background(), time.Now()))

	rows := logRows(t, f.store)
	require.Len(t, rows, 1)
	assert.Equal(t, prodID, rows[0].SensorID)
	assert.Equal(t, []string{models.EventSensorFault}, f.events.types())
	assert.Equal(t, []string{ambID}, f.states.faults)
	assert.Empty(t, f.engine.Snapshot().Series[models.RoleAmbient])
}

func TestSampler_HangingSensorTimesOut(t *testing.T) {
	f := newSamplerFixture(t, nil)
	s := f.sampler(slowBus{scriptedBus: f.bus, slowID: ambID}, 20*time.Millisecond)

	start := time.Now()
	require.NoError(t, s.Tick(context.Background(), time.Now()))
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, logRows(t, f.store), 1)
	assert.Equal(t, []string{ambID}, f.states.faults)
}

func TestSampler_AllSensorsFail(t *testing.T) {
	f := newSamplerFixture(t, nil)
	f.bus.set(prodID, 0, errors.New("crc"))
	f.bus.set(ambID, 0, errors.New("crc"))
	s := f.sampler(f.bus, time.Second)

	require.NoError(t, s.Tick(context.Background(), time.Now()))
	assert.Empty(t, logRows(t, f.store))
	assert.Empty(t, f.sink.batches)
	assert.Len(t, f.events.types(), 2)
}

func TestSampler_LogWriteFailure(t *testing.T) {
	f := newSamplerFixture(t, failingLog{TimeSeriesLog: newTestLog(t)})
	s := f.sampler(f.bus, time.Second)

	err := s.Tick(context.Background(), time.Now())

	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, []string{models.EventLogWriteFailed}, f.events.types())
	assert.Empty(t, f.sink.batches, "nothing is mirrored when the log append failed")
	assert.Len(t, f.engine.Snapshot().Series[models.RoleProduct], 1)
}

func TestSampler_CancelledTickWritesNothing(t *testing.T) {
	f := newSamplerFixture(t, nil)
	s := f.sampler(f.bus, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Tick(ctx, time.Now()))
	assert.Empty(t, logRows(t, f.store))
}

func TestSampler_SinkFailureIsNotFatal(t *testing.T) {
	f := newSamplerFixture(t, nil)
	f.sink.err = errors.New("broker down")
	s := f.sampler(f.bus, time.Second)

	require.NoError(t, s.Tick(context.Background(), time.Now()))
	assert.Len(t, logRows(t, f.store), 2)
}

func TestSampler_ListError(t *testing.T) {
	f := newSamplerFixture(t, nil)
	f.bus.listErr = errors.New("no w1 master")
	s := f.sampler(f.bus, time.Second)

	assert.Error(t, s.Tick(context.Background(), time.Now()))
}
