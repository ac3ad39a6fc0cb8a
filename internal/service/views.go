package service

import (
	"time"

	"temp_monitor/internal/models"
)

// LogFilter narrows journal listings by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "STOP", "RESCHEDULE", "SENSOR_FAULT", ...
}

// SettingsView is the effective settings as the monitor uses them.
type SettingsView struct {
	Units         models.Units          `json:"units"`
	FrequencyUnit models.FrequencyUnit  `json:"frequency_unit"`
	LogInterval   int                   `json:"log_interval"`
	Roles         models.RoleAssignment `json:"sensor_map"`
	Period        string                `json:"period"`
	Scheduler     string                `json:"scheduler"`
}

// SensorsView lists the probes on the bus next to their last known state.
type SensorsView struct {
	Available []string             `json:"available"`
	States    []models.SensorState `json:"states"`
}
