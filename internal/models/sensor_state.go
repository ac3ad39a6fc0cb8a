package models

import "time"

// SensorState is the latest known outcome of reading one sensor.
type SensorState struct {
	SensorID  string    `json:"sensor_id"`
	Celsius   float64   `json:"celsius"`
	ReadAt    time.Time `json:"read_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Healthy reports whether the last read attempt succeeded.
func (s SensorState) Healthy() bool {
	return s.LastError == "" && !s.ReadAt.IsZero()
}
