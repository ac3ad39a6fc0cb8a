package service

import (
	"math"

	"temp_monitor/internal/models"
)

// Axis planning constants.
const (
	axisDivisions = 6

	defaultXMax = 100.0
	defaultYMin = 0.0
	defaultYMax = 40.0

	fitXPad   = 10.0 // right padding after a full fit
	growXPad  = 20.0 // right padding when a live point runs off the chart
	yHeadroom = 5.0
)

// AxisPlanner keeps chart bounds around the plotted series.
// It is not safe for concurrent use; Engine guards it.
type AxisPlanner struct {
	b      models.AxisBounds
	seeded bool // false until the first point after a reset
}

func NewAxisPlanner() *AxisPlanner {
	p := &AxisPlanner{}
	p.Reset()
	return p
}

// DefaultBounds is the empty-chart window.
func DefaultBounds() models.AxisBounds {
	return models.AxisBounds{
		XMin:  0,
		XMax:  defaultXMax,
		XTick: xTick(defaultXMax),
		YMin:  defaultYMin,
		YMax:  defaultYMax,
		YTick: (defaultYMax - defaultYMin) / axisDivisions,
	}
}

// Bounds returns the current window.
func (p *AxisPlanner) Bounds() models.AxisBounds { return p.b }

// Reset returns to the empty-chart window.
func (p *AxisPlanner) Reset() {
	p.b = DefaultBounds()
	p.seeded = false
}

// Fit recomputes the window from scratch over all points. With no points it
// behaves like Reset.
func (p *AxisPlanner) Fit(series ...models.Series) {
	var (
		n                int
		maxX, minY, maxY float64
	)
	for _, s := range series {
		for _, pt := range s {
			if n == 0 {
				maxX, minY, maxY = pt.X, pt.Y, pt.Y
			} else {
				maxX = math.Max(maxX, pt.X)
				minY = math.Min(minY, pt.Y)
				maxY = math.Max(maxY, pt.Y)
			}
			n++
		}
	}
	if n == 0 {
		p.Reset()
		return
	}

	p.b.XMin = 0
	p.b.XMax = math.Max(defaultXMax, maxX+fitXPad)
	p.b.XTick = xTick(p.b.XMax)
	p.b.YMax = maxY + yHeadroom
	p.b.YMin = math.Max(0, minY-yHeadroom)
	p.b.YTick = (p.b.YMax - p.b.YMin) / axisDivisions
	p.seeded = true
}

// Observe adjusts the window for the points of one tick and reports whether
// anything changed. Bounds only ever grow here; shrinking needs Fit or Reset.
func (p *AxisPlanner) Observe(points ...models.Point) bool {
	if len(points) == 0 {
		return false
	}

	changed := false
	for _, pt := range points {
		if pt.X > p.b.XMax {
			p.b.XMax = pt.X + growXPad
			p.b.XTick = xTick(p.b.XMax)
			changed = true
		}
	}

	yChanged := false
	if !p.seeded {
		// first tick after an empty chart: take the top from the data and
		// keep the floor at zero
		maxY := points[0].Y
		for _, pt := range points[1:] {
			maxY = math.Max(maxY, pt.Y)
		}
		p.b.YMax = maxY + yHeadroom
		p.b.YMin = defaultYMin
		p.seeded = true
		yChanged = true
	} else {
		for _, pt := range points {
			if pt.Y+yHeadroom > p.b.YMax {
				p.b.YMax = pt.Y + yHeadroom
				yChanged = true
			}
			if lo := math.Max(0, pt.Y-yHeadroom); lo < p.b.YMin {
				p.b.YMin = lo
				yChanged = true
			}
		}
	}
	if yChanged {
		p.b.YTick = (p.b.YMax - p.b.YMin) / axisDivisions
	}
	return changed || yChanged
}

func xTick(xMax float64) float64 {
	return math.Floor(xMax / axisDivisions)
}
