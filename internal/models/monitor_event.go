package models

import "time"

// Journal event types.
const (
	EventStart          = "START"
	EventStop           = "STOP"
	EventReschedule     = "RESCHEDULE"
	EventUnitsChange    = "UNITS_CHANGE"
	EventRoleChange     = "ROLE_CHANGE"
	EventLogClear       = "LOG_CLEAR"
	EventSensorFault    = "SENSOR_FAULT"
	EventLogWriteFailed = "LOG_WRITE_FAILED"
)

// EventTypes lists every type the journal records.
var EventTypes = []string{
	EventStart,
	EventStop,
	EventReschedule,
	EventUnitsChange,
	EventRoleChange,
	EventLogClear,
	EventSensorFault,
	EventLogWriteFailed,
}

// KnownEventType reports whether typ is one of EventTypes.
func KnownEventType(typ string) bool {
	for _, t := range EventTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// MonitorEvent is a single journal entry.
type MonitorEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | RESCHEDULE | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
