package service

import (
	"testing"

	"temp_monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAxisPlanner_Defaults(t *testing.T) {
	p := NewAxisPlanner()
	b := p.Bounds()

	assert.Equal(t, 0.0, b.XMin)
	assert.Equal(t, 100.0, b.XMax)
	assert.Equal(t, 16.0, b.XTick)
	assert.Equal(t, 0.0, b.YMin)
	assert.Equal(t, 40.0, b.YMax)
	assert.InDelta(t, 40.0/6, b.YTick, 1e-9)
}

func TestAxisPlanner_Fit(t *testing.T) {
	tests := []struct {
		name   string
		series []models.Series
		want   models.AxisBounds
	}{
		{
			name:   "empty resets",
			series: []models.Series{{}, nil},
			want:   DefaultBounds(),
		},
		{
			name: "short history keeps x at 100",
			series: []models.Series{
				{{X: 0, Y: 24}, {X: 5, Y: 26}},
				{{X: 0, Y: 22}},
			},
			want: models.AxisBounds{XMax: 100, XTick: 16, YMin: 17, YMax: 31, YTick: 14.0 / 6},
		},
		{
			name: "long history pads x",
			series: []models.Series{
				{{X: 0, Y: 3}, {X: 200, Y: 10}},
			},
			want: models.AxisBounds{XMax: 210, XTick: 35, YMin: 0, YMax: 15, YTick: 15.0 / 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewAxisPlanner()
			p.Fit(tt.series...)
			got := p.Bounds()

			assert.Equal(t, tt.want.XMin, got.XMin)
			assert.Equal(t, tt.want.XMax, got.XMax)
			assert.Equal(t, tt.want.XTick, got.XTick)
			assert.InDelta(t, tt.want.YMin, got.YMin, 1e-9)
			assert.InDelta(t, tt.want.YMax, got.YMax, 1e-9)
			assert.InDelta(t, tt.want.YTick, got.YTick, 1e-9)
		})
	}
}

func TestAxisPlanner_ObserveFirstTick(t *testing.T) {
	p := NewAxisPlanner()

	changed := p.Observe(models.Point{X: 0, Y: 24}, models.Point{X: 0, Y: 22})
	b := p.Bounds()

	assert.True(t, changed)
	assert.Equal(t, 100.0, b.XMax)
	assert.Equal(t, 29.0, b.YMax)
	assert.Equal(t, 0.0, b.YMin)
	assert.InDelta(t, 29.0/6, b.YTick, 1e-9)
}

func TestAxisPlanner_ObserveGrowsOnly(t *testing.T) {
	p := NewAxisPlanner()
	p.Fit(models.Series{{X: 0, Y: 20}, {X: 10, Y: 30}})
	before := p.Bounds() // y [15, 35]

	assert.False(t, p.Observe(models.Point{X: 15, Y: 25}), "point well inside the window")
	assert.Equal(t, before, p.Bounds())

	assert.True(t, p.Observe(models.Point{X: 20, Y: 31}))
	assert.Equal(t, 36.0, p.Bounds().YMax)
	assert.InDelta(t, (36.0-15.0)/6, p.Bounds().YTick, 1e-9)

	assert.True(t, p.Observe(models.Point{X: 25, Y: 12}))
	assert.Equal(t, 7.0, p.Bounds().YMin)

	assert.True(t, p.Observe(models.Point{X: 30, Y: 2}))
	assert.Equal(t, 0.0, p.Bounds().YMin, "floor clamps at zero")

	assert.True(t, p.Observe(models.Point{X: 101, Y: 20}))
	assert.Equal(t, 121.0, p.Bounds().XMax)
	assert.Equal(t, 20.0, p.Bounds().XTick)
}

func TestAxisPlanner_HeadroomHolds(t *testing.T) {
	p := NewAxisPlanner()
	values := []float64{21, 24.5, 19, 30, 29.9, 8, 45, 44}

	maxSeen, minSeen := values[0], values[0]
	for i, v := range values {
		p.Observe(models.Point{X: float64(i * 5), Y: v})
		maxSeen = max(maxSeen, v)
		minSeen = min(minSeen, v)

		b := p.Bounds()
		assert.GreaterOrEqual(t, b.YMax, maxSeen+5)
		assert.True(t, b.YMin == 0 || b.YMin <= minSeen-5, "y_min %v, min seen %v", b.YMin, minSeen)
	}
}

func TestAxisPlanner_ResetAfterData(t *testing.T) {
	p := NewAxisPlanner()
	p.Fit(models.Series{{X: 500, Y: 90}})
	p.Reset()
	assert.Equal(t, DefaultBounds(), p.Bounds())

	// the next tick seeds the window again
	p.Observe(models.Point{X: 0, Y: 10})
	assert.Equal(t, 15.0, p.Bounds().YMax)
}
