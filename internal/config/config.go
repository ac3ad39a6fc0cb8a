package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// File names inside the data directory.
const (
	SettingsFileName = "tempmonitor_settings.json"
	LogFileName      = "templog.csv"
	DBFileName       = "monitor.db"
)

// Process config defaults. Keys mirror configs/config.yml.
var processDefaults = map[string]any{
	"port":                 "8080",
	"data_dir":             "data",
	"db.path":              "",
	"log.level":            "info",
	"auth.signing_key":     "change-me",
	"auth.token_ttl":       time.Hour,
	"sensors.driver":       "mock",
	"sensors.w1_dir":       "/sys/bus/w1/devices",
	"sensors.read_timeout": 3 * time.Second,
	"sensors.parallelism":  4,
	"display.refresh":      2 * time.Second,
	"mqtt.enabled":         false,
	"mqtt.broker":          "tcp://localhost:1883",
	"mqtt.client_id":       "temp-monitor",
	"mqtt.username":        "",
	"mqtt.password":        "",
	"mqtt.qos":             1,
	"influxdb.enabled":     false,
	"influxdb.url":         "http://localhost:8086",
	"influxdb.token":       "",
	"influxdb.org":         "",
	"influxdb.bucket":      "temperature",
}

// Load reads the process config into the global viper. An empty path looks
// for configs/config.yml. A missing file leaves the defaults in place.
func Load(path string) error {
	for k, v := range processDefaults {
		viper.SetDefault(k, v)
	}

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("configs")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// SettingsPath is where the settings document lives for a data directory.
func SettingsPath(dataDir string) string {
	return filepath.Join(dataDir, SettingsFileName)
}

// LogPath is where the temperature log lives for a data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, LogFileName)
}

// DBPath is the configured database path, or monitor.db inside the data
// directory when none is configured.
func DBPath(dataDir, configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(dataDir, DBFileName)
}
