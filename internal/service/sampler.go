package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/sensor"
	"temp_monitor/internal/telemetry"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultReadTimeout = 3 * time.Second
	defaultParallelism = 4
)

// IntervalSource supplies the current log interval.
type IntervalSource interface {
	LogInterval() int
}

// SamplerConfig tunes how a tick reads the bus.
type SamplerConfig struct {
	ReadTimeout time.Duration
	Parallelism int
}

// Sampler performs one tick: read every probe, commit the batch, notify.
type Sampler struct {
	bus      sensor.Bus
	engine   *Engine
	interval IntervalSource
	events   repository.EventRepo
	states   repository.SensorStateRepo
	sink     telemetry.Sink
	cfg      SamplerConfig
	log      *logger.Logger
}

func NewSampler(
	bus sensor.Bus,
	engine *Engine,
	interval IntervalSource,
	events repository.EventRepo,
	states repository.SensorStateRepo,
	sink telemetry.Sink,
	cfg SamplerConfig,
	log *logger.Logger,
) *Sampler {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Sampler{
		bus:      bus,
		engine:   engine,
		interval: interval,
		events:   events,
		states:   states,
		sink:     sink,
		cfg:      cfg,
		log:      log.Component("sampler"),
	}
}

type sensorFault struct {
	id  string
	err error
}

// Tick reads all probes and records the successful readings as one batch
// stamped with now. Failed probes are left out of the batch.
func (s *Sampler) Tick(ctx context.Context, now time.Time) error {
	ids, err := s.bus.ListAvailable(ctx)
	if err != nil {
		return fmt.Errorf("list sensors: %w", err)
	}

	batch, faults := s.readAll(ctx, ids, now)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, f := range faults {
		s.log.Warnw("sensor_read_failed", "sensor_id", f.id, "err", f.err)
		s.journal(ctx, models.EventSensorFault, "Sensor read failed: "+f.id, map[string]any{
			"sensor_id": f.id,
			"error":     f.err.Error(),
		})
		if err := s.states.SaveFault(ctx, f.id, f.err, now); err != nil {
			s.log.Warnw("sensor_state_save_failed", "sensor_id", f.id, "err", err)
		}
	}

	if len(batch) == 0 {
		return nil
	}

	if err := s.engine.Record(ctx, batch, float64(s.interval.LogInterval())); err != nil {
		s.log.Errorw("log_write_failed", "rows", len(batch), "err", err)
		s.journal(ctx, models.EventLogWriteFailed, "Temperature log append failed", map[string]any{
			"rows":  len(batch),
			"error": err.Error(),
		})
		return err
	}

	for _, r := range batch {
		if err := s.states.SaveReading(ctx, r); err != nil {
			s.log.Warnw("sensor_state_save_failed", "sensor_id", r.SensorID, "err", err)
		}
	}
	if err := s.sink.Publish(ctx, batch); err != nil {
		s.log.Warnw("telemetry_publish_failed", "err", err)
	}
	return nil
}

// readAll reads ids in parallel, each bounded by the read timeout. The batch
// keeps the order of ids.
func (s *Sampler) readAll(ctx context.Context, ids []string, now time.Time) ([]models.Reading, []sensorFault) {
	type result struct {
		idx int
		v   float64
		err error
	}

	var (
		mu      sync.Mutex
		results = make([]result, 0, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i, id := range ids {
		g.Go(func() error {
			v, err := sensor.ReadWithTimeout(gctx, s.bus, id, s.cfg.ReadTimeout)
			mu.Lock()
			results = append(results, result{idx: i, v: v, err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].idx < results[b].idx })

	stamp := now.Truncate(time.Second)
	var (
		batch  []models.Reading
		faults []sensorFault
	)
	for _, r := range results {
		id := ids[r.idx]
		if r.err != nil {
			faults = append(faults, sensorFault{id: id, err: r.err})
			continue
		}
		batch = append(batch, models.Reading{Timestamp: stamp, SensorID: id, Celsius: r.v})
	}
	return batch, faults
}

func (s *Sampler) journal(ctx context.Context, typ, desc string, meta map[string]any) {
	err := s.events.Append(ctx, models.MonitorEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Warnw("journal_append_failed", "type", typ, "err", err)
	}
}
