package models

// AxisBounds tells a renderer which window and tick spacing to draw.
type AxisBounds struct {
	XMin  float64 `json:"x_min"`
	XMax  float64 `json:"x_max"`
	XTick float64 `json:"x_tick"`
	YMin  float64 `json:"y_min"`
	YMax  float64 `json:"y_max"`
	YTick float64 `json:"y_tick"`
}

// ChartSnapshot is everything a renderer needs for one redraw.
type ChartSnapshot struct {
	Units         Units                 `json:"units"`
	FrequencyUnit FrequencyUnit         `json:"frequency_unit"`
	XLabel        string                `json:"x_label"`
	Roles         RoleAssignment        `json:"roles"`
	Bounds        AxisBounds            `json:"bounds"`
	Series        map[Role]Series       `json:"series"`
	Ranges        map[Role]RangeTracker `json:"ranges"`
	RangeText     map[Role]string       `json:"range_text"`
	Current       map[Role]string       `json:"current"`
	Version       uint64                `json:"version"`
}
