package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
)

// Engine owns the plotted series, the per-role ranges and the axis window.
// Log commits and rebuilds share one mutex so a replay never sees half a tick
// and a tick never lands in the middle of a replay.
type Engine struct {
	mu sync.Mutex

	store repository.TimeSeriesLog
	log   *logger.Logger

	roles  models.RoleAssignment
	units  models.Units
	freq   models.FrequencyUnit
	series map[models.Role]models.Series
	ranges map[models.Role]models.RangeTracker
	axis   *AxisPlanner

	version uint64
}

func NewEngine(store repository.TimeSeriesLog, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		log:    log.Component("engine"),
		roles:  models.RoleAssignment{},
		units:  models.Celsius,
		freq:   models.Minutes,
		series: emptySeries(),
		ranges: emptyRanges(),
		axis:   NewAxisPlanner(),
	}
}

func emptySeries() map[models.Role]models.Series {
	out := make(map[models.Role]models.Series, len(models.Roles))
	for _, r := range models.Roles {
		out[r] = models.Series{}
	}
	return out
}

func emptyRanges() map[models.Role]models.RangeTracker {
	out := make(map[models.Role]models.RangeTracker, len(models.Roles))
	for _, r := range models.Roles {
		out[r] = models.RangeTracker{}
	}
	return out
}

// Rebuild replays the whole log and replaces all derived state. X values are
// elapsed time since the first valid row of the log, in units of freq. Rows
// whose timestamp goes backwards are skipped. On a replay error the previous
// state is kept.
func (e *Engine) Rebuild(ctx context.Context, roles models.RoleAssignment, units models.Units, freq models.FrequencyUnit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	series := emptySeries()
	ranges := emptyRanges()
	factor := freq.TimeFactor()

	var (
		start, prev time.Time
		rows, skip  int
	)
	for row, err := range e.store.Replay(ctx) {
		if err != nil {
			return fmt.Errorf("replay log: %w", err)
		}
		rd, err := row.Reading()
		if err != nil {
			skip++
			continue
		}
		if start.IsZero() {
			start, prev = rd.Timestamp, rd.Timestamp
		}
		if rd.Timestamp.Before(prev) {
			skip++
			continue
		}
		prev = rd.Timestamp
		rows++

		role, ok := roles.RoleFor(rd.SensorID)
		if !ok {
			continue
		}
		v := units.Convert(rd.Celsius)
		series[role] = append(series[role], models.Point{
			X: rd.Timestamp.Sub(start).Seconds() / factor,
			Y: v,
		})
		rt := ranges[role]
		rt.Observe(v)
		ranges[role] = rt
	}

	e.roles = roles.Clone()
	e.units = units
	e.freq = freq
	e.series = series
	e.ranges = ranges

	all := make([]models.Series, 0, len(models.Roles))
	for _, r := range models.Roles {
		all = append(all, series[r])
	}
	e.axis.Fit(all...)
	e.version++

	e.log.Debugw("rebuild_done", "rows", rows, "skipped", skip, "units", units, "frequency_unit", freq)
	return nil
}

// Apply adds one committed tick to the series at X = cursor.
func (e *Engine) Apply(batch []models.Reading, cursor float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(batch, cursor)
}

func (e *Engine) applyLocked(batch []models.Reading, cursor float64) {
	added := make([]models.Point, 0, len(batch))
	for _, rd := range batch {
		role, ok := e.roles.RoleFor(rd.SensorID)
		if !ok {
			continue
		}
		pt := models.Point{X: cursor, Y: e.units.Convert(rd.Celsius)}
		e.series[role] = append(e.series[role], pt)
		rt := e.ranges[role]
		rt.Observe(pt.Y)
		e.ranges[role] = rt
		added = append(added, pt)
	}
	if len(added) == 0 {
		return
	}
	e.axis.Observe(added...)
	e.version++
}

// Cursor returns the X value for the next tick: the furthest last point over
// all roles plus interval, or 0 when nothing is plotted.
func (e *Engine) Cursor(interval float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursorLocked(interval)
}

func (e *Engine) cursorLocked(interval float64) float64 {
	found := false
	var last float64
	for _, r := range models.Roles {
		if pt, ok := e.series[r].Last(); ok {
			if !found || pt.X > last {
				last = pt.X
			}
			found = true
		}
	}
	if !found {
		return 0
	}
	return last + interval
}

// Record commits one tick to the log and then applies it. The series are
// updated even when the append fails; the next Rebuild brings them back in
// line with the file. Nothing is written once ctx is done.
func (e *Engine) Record(ctx context.Context, batch []models.Reading, interval float64) error {
	if len(batch) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	cursor := e.cursorLocked(interval)
	appendErr := e.store.Append(ctx, batch)
	e.applyLocked(batch, cursor)
	if appendErr != nil {
		return fmt.Errorf("append tick: %w", appendErr)
	}
	return nil
}

// Clear truncates the log and empties every series and range.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear log: %w", err)
	}
	e.series = emptySeries()
	e.ranges = emptyRanges()
	e.axis.Reset()
	e.version++
	return nil
}

// Roles returns a copy of the active role assignment.
func (e *Engine) Roles() models.RoleAssignment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roles.Clone()
}

// Snapshot copies the derived state for a renderer. Current is left for the
// caller to fill from live readings.
func (e *Engine) Snapshot() models.ChartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := models.ChartSnapshot{
		Units:         e.units,
		FrequencyUnit: e.freq,
		XLabel:        fmt.Sprintf("Time (%s)", e.freq),
		Roles:         e.roles.Clone(),
		Bounds:        e.axis.Bounds(),
		Series:        make(map[models.Role]models.Series, len(models.Roles)),
		Ranges:        make(map[models.Role]models.RangeTracker, len(models.Roles)),
		RangeText:     make(map[models.Role]string, len(models.Roles)),
		Current:       make(map[models.Role]string, len(models.Roles)),
		Version:       e.version,
	}
	for _, r := range models.Roles {
		s := e.series[r]
		cp := make(models.Series, len(s))
		copy(cp, s)
		snap.Series[r] = cp

		rt := e.ranges[r]
		snap.Ranges[r] = copyRange(rt)
		snap.RangeText[r] = rt.Text()
		snap.Current[r] = models.ValueText(nil)
	}
	return snap
}

func copyRange(rt models.RangeTracker) models.RangeTracker {
	var out models.RangeTracker
	if rt.Min != nil {
		v := *rt.Min
		out.Min = &v
	}
	if rt.Max != nil {
		v := *rt.Max
		out.Max = &v
	}
	return out
}
