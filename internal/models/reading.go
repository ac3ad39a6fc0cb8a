package models

import (
	"fmt"
	"strconv"
	"time"
)

// Log file layout. Timestamps are local wall-clock time without zone.
const (
	TimestampLayout = "2006-01-02 15:04:05"

	LogColumns = 3
)

// LogHeader is the fixed first row of the temperature log.
var LogHeader = []string{"timestamp", "sensor_id", "temperature"}

// Reading is one sensor sample. Celsius is always stored in °C.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	SensorID  string    `json:"sensor_id"`
	Celsius   float64   `json:"celsius"`
}

// Row renders the reading as log columns.
func (r Reading) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.SensorID,
		strconv.FormatFloat(r.Celsius, 'f', -1, 64),
	}
}

// LogRow is a raw row as found in the log file.
type LogRow struct {
	Timestamp string
	SensorID  string
	Value     string
}

// Reading parses the raw columns. Any unparsable column makes the row malformed.
func (r LogRow) Reading() (Reading, error) {
	ts, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return Reading{}, fmt.Errorf("parse timestamp %q: %w", r.Timestamp, err)
	}
	v, err := strconv.ParseFloat(r.Value, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("parse temperature %q: %w", r.Value, err)
	}
	return Reading{Timestamp: ts, SensorID: r.SensorID, Celsius: v}, nil
}
