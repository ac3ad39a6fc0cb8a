package commands

import (
	"context"
	"database/sql"
	"strings"

	"temp_monitor/internal/config"
	"temp_monitor/internal/logger"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/repository/db"
	"temp_monitor/internal/sensor"
	"temp_monitor/internal/telemetry"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/viper"
)

func newLogger() *logger.Logger {
	return logger.Get(viper.GetString("log.level"))
}

func currentDataDir() string {
	return viper.GetString("data_dir")
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	path := config.DBPath(currentDataDir(), viper.GetString("db.path"))
	log.Debugw("opening_db", "path", path)
	return db.InitDB(path)
}

// openSettings loads the settings document of the data directory. ensure
// creates the temperature log when settings are saved.
func openSettings(log *logger.Logger, ensure func() error) *config.Store {
	st := config.NewStore(config.SettingsPath(currentDataDir()), log, config.WithLogFile(ensure))
	st.Load()
	return st
}

func openBus() (sensor.Bus, error) {
	return sensor.New(viper.GetString("sensors.driver"), viper.GetString("sensors.w1_dir"))
}

// openSinks connects the enabled reading sinks. A sink that cannot connect
// is skipped so that sampling still runs.
func openSinks(ctx context.Context, log *logger.Logger) telemetry.Fanout {
	var sinks telemetry.Fanout

	if viper.GetBool("mqtt.enabled") {
		s, err := telemetry.ConnectMQTT(telemetry.MQTTConfig{
			Broker:   viper.GetString("mqtt.broker"),
			ClientID: viper.GetString("mqtt.client_id"),
			Username: viper.GetString("mqtt.username"),
			Password: viper.GetString("mqtt.password"),
			QoS:      byte(viper.GetInt("mqtt.qos")),
		})
		if err != nil {
			log.Warnw("mqtt_sink_disabled", "broker", viper.GetString("mqtt.broker"), "err", err)
		} else {
			log.Infow("mqtt_sink_connected", "broker", viper.GetString("mqtt.broker"))
			sinks = append(sinks, s)
		}
	}

	if viper.GetBool("influxdb.enabled") {
		s, err := telemetry.ConnectInflux(ctx, telemetry.InfluxConfig{
			URL:    viper.GetString("influxdb.url"),
			Token:  viper.GetString("influxdb.token"),
			Org:    viper.GetString("influxdb.org"),
			Bucket: viper.GetString("influxdb.bucket"),
		}, func(err error) {
			log.Warnw("influx_write_failed", "err", err)
		})
		if err != nil {
			log.Warnw("influx_sink_disabled", "url", viper.GetString("influxdb.url"), "err", err)
		} else {
			log.Infow("influx_sink_connected", "url", viper.GetString("influxdb.url"))
			sinks = append(sinks, s)
		}
	}

	return sinks
}

// newTempLog is the log of the current data directory.
func newTempLog() *repository.TempLog {
	return repository.NewTempLog(config.LogPath(currentDataDir()))
}

// row renders cells left-aligned to the given display widths.
func row(widths []int, cells ...string) string {
	var b strings.Builder
	for i, c := range cells {
		if i < len(widths) && i < len(cells)-1 {
			c = runewidth.FillRight(c, widths[i])
		}
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}
