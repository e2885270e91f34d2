// Package sink adapts external messaging clients to the publisher's output
// channel contract. The clients own connection management, delivery
// guarantees and retries; nothing here retries a failed send.
package sink

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/pkg/config"
	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

const defaultTimeout = 10 * time.Second

type Sink interface {
	Send(ctx context.Context, output string, msg models.Message) error
	Close() error
}

// New builds and connects the sink selected by cfg.Sink.Kind.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Sink, error) {
	logger = logger.With(zap.String("sink", cfg.Sink.Kind))

	switch cfg.Sink.Kind {
	case config.SinkEdge:
		s, err := DialEdge(logger, cfg.Edge, cfg.Sensor.DeviceID)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.SinkMQTT:
		client, err := DialMQTT(logger, cfg.MQTT, cfg.Sensor.DeviceID)
		if err != nil {
			return nil, err
		}
		return NewMQTTSink(client, cfg.MQTT), nil

	case config.SinkKafka:
		if cfg.Kafka.CreateTopic {
			dialer := &RealKafkaDialer{Dialer: &kafka.Dialer{Timeout: defaultTimeout}}
			NewTopicCreator(logger, dialer, realClock{}).Create(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		}
		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			// One blocking write per reading; no batching across ticks
			BatchSize: 1,
			Async:     false,
		}
		return NewKafkaSink(writer, cfg.Sensor.DeviceID), nil

	case config.SinkRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedisSink(rdb, cfg.Redis.ChannelPrefix), nil

	case config.SinkLog:
		return NewLogSink(logger), nil
	}

	return nil, fmt.Errorf("unknown sink kind %q", cfg.Sink.Kind)
}

var (
	_ Sink = (*EdgeSink)(nil)
	_ Sink = (*MQTTSink)(nil)
	_ Sink = (*KafkaSink)(nil)
	_ Sink = (*RedisSink)(nil)
	_ Sink = (*LogSink)(nil)

	_ MQTTClient = (pahomqtt.Client)(nil)
)
