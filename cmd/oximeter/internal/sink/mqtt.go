package sink

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/pkg/config"
	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

// MQTTSink publishes to a plain MQTT 3.1.1 broker. The protocol has no
// message properties, so content type and encoding are not transmitted.
type MQTTSink struct {
	client  MQTTClient
	prefix  string
	qos     byte
	timeout time.Duration
}

func NewMQTTSink(client MQTTClient, cfg config.MQTTConfig) *MQTTSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MQTTSink{
		client:  client,
		prefix:  cfg.TopicPrefix,
		qos:     byte(cfg.QoS),
		timeout: timeout,
	}
}

// DialMQTT connects a paho client and blocks until the broker accepts it.
func DialMQTT(logger *zap.Logger, cfg config.MQTTConfig, clientID string) (pahomqtt.Client, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetOnConnectHandler(func(pahomqtt.Client) {
			logger.Info("MQTT connected", zap.String("broker", cfg.Broker))
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logger.Warn("MQTT connection lost", zap.Error(err))
		})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := pahomqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out after %s", cfg.Broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, err)
	}
	return c, nil
}

func (s *MQTTSink) Send(ctx context.Context, output string, msg models.Message) error {
	topic := s.prefix + output
	token := s.client.Publish(topic, s.qos, false, msg.Payload)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish to %s: timed out after %s", topic, s.timeout)
	}
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
