package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"temp_monitor/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	influxMeasurement = "temperature"
	influxPingTimeout = 5 * time.Second
)

var ErrInfluxConnect = errors.New("influxdb connect failed")

// InfluxConfig holds the influxdb.* config keys.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

type pointWriter interface {
	WritePoint(p *write.Point)
	Flush()
}

// InfluxSink writes each reading as a point through the non-blocking write
// API. Write errors arrive asynchronously and go to the onError callback.
type InfluxSink struct {
	w     pointWriter
	close func()
}

// ConnectInflux pings the server and returns a sink writing to org/bucket.
func ConnectInflux(ctx context.Context, cfg InfluxConfig, onError func(error)) (*InfluxSink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, influxPingTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrInfluxConnect, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrInfluxConnect)
	}

	wapi := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range wapi.Errors() {
			if onError != nil {
				onError(err)
			}
		}
	}()

	s := newInfluxSink(wapi)
	s.close = client.Close
	return s, nil
}

func newInfluxSink(w pointWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

// ReadingPoint builds the point stored for r.
func ReadingPoint(r models.Reading) *write.Point {
	return write.NewPoint(
		influxMeasurement,
		map[string]string{"sensor_id": r.SensorID},
		map[string]interface{}{"celsius": r.Celsius},
		r.Timestamp,
	)
}

func (s *InfluxSink) Publish(ctx context.Context, readings []models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range readings {
		s.w.WritePoint(ReadingPoint(r))
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.w.Flush()
	if s.close != nil {
		s.close()
	}
	return nil
}
