package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"temp_monitor/internal/models"

	"github.com/bytedance/sonic"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	readingTopicPrefix = "tempmonitor/readings/"

	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttDisconnectMs   = 250
)

var (
	ErrMQTTConnect = errors.New("mqtt connect failed")
	ErrMQTTPublish = errors.New("mqtt publish failed")
)

// MQTTConfig holds broker settings from the mqtt.* config keys.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// ReadingTopic is the topic a sensor's readings are published on.
func ReadingTopic(sensorID string) string {
	return readingTopicPrefix + sensorID
}

type readingPayload struct {
	SensorID  string  `json:"sensor_id"`
	Celsius   float64 `json:"celsius"`
	Timestamp string  `json:"timestamp"`
}

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTSink publishes one message per reading. Messages are not retained.
type MQTTSink struct {
	pub        mqttPublisher
	qos        byte
	disconnect func()
}

// ConnectMQTT dials the broker and returns a sink on the new connection.
func ConnectMQTT(cfg MQTTConfig) (*MQTTSink, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrMQTTConnect, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMQTTConnect, err)
	}

	s := newMQTTSink(client, cfg.QoS)
	s.disconnect = func() { client.Disconnect(mqttDisconnectMs) }
	return s, nil
}

func newMQTTSink(pub mqttPublisher, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, qos: qos}
}

func (s *MQTTSink) Publish(ctx context.Context, readings []models.Reading) error {
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := sonic.Marshal(readingPayload{
			SensorID:  r.SensorID,
			Celsius:   r.Celsius,
			Timestamp: r.Timestamp.Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("encode reading %s: %w", r.SensorID, err)
		}

		token := s.pub.Publish(ReadingTopic(r.SensorID), s.qos, false, payload)
		if !token.WaitTimeout(mqttPublishTimeout) {
			return fmt.Errorf("%w: %s: timeout after %v", ErrMQTTPublish, r.SensorID, mqttPublishTimeout)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMQTTPublish, r.SensorID, err)
		}
	}
	return nil
}

func (s *MQTTSink) Close() error {
	if s.disconnect != nil {
		s.disconnect()
	}
	return nil
}
