package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SinkEdge  = "edge"
	SinkMQTT  = "mqtt"
	SinkKafka = "kafka"
	SinkRedis = "redis"
	SinkLog   = "log"
)

// Config holds all configuration for the module
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Sensor SensorConfig `mapstructure:"sensor"`
	Sink   SinkConfig   `mapstructure:"sink"`
	Edge   EdgeConfig   `mapstructure:"edge"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type AppConfig struct {
	Env         string `mapstructure:"env"` // e.g., "local", "prod"
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"` // empty disables /metrics and /healthz
}

type SensorConfig struct {
	DeviceID     string        `mapstructure:"device_id"`
	InitialValue float64       `mapstructure:"initial_value"`
	Interval     time.Duration `mapstructure:"interval"`
	Output       string        `mapstructure:"output"`
}

type SinkConfig struct {
	Kind string `mapstructure:"kind"`
}

// EdgeConfig only covers topic routing; the connection itself is configured
// by the edge runtime through the AIO_* environment variables.
type EdgeConfig struct {
	TopicPattern string        `mapstructure:"topic_pattern"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type MQTTConfig struct {
	Broker      string        `mapstructure:"broker"`
	TopicPrefix string        `mapstructure:"topic_prefix"`
	QoS         int           `mapstructure:"qos"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	CreateTopic bool     `mapstructure:"create_topic"`
}

type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env into the process environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	v := viper.New()
	setDefaults(v)

	// "sensor.interval" -> "SENSOR_INTERVAL"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not populate nested structs on Unmarshal
	bindEnv(v, "app.env", "app.log_level", "app.metrics_addr")
	bindEnv(v, "sensor.device_id", "sensor.initial_value", "sensor.interval", "sensor.output")
	bindEnv(v, "sink.kind")
	bindEnv(v, "edge.topic_pattern", "edge.timeout")
	bindEnv(v, "mqtt.broker", "mqtt.topic_prefix", "mqtt.qos", "mqtt.timeout")
	bindEnv(v, "kafka.brokers", "kafka.topic", "kafka.create_topic")
	bindEnv(v, "redis.addr", "redis.password", "redis.db", "redis.channel_prefix")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.Sensor.DeviceID == "" {
		cfg.Sensor.DeviceID = "oximeter-" + uuid.NewString()[:8]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "local")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.metrics_addr", ":9090")

	v.SetDefault("sensor.device_id", "")
	v.SetDefault("sensor.initial_value", 97.0)
	v.SetDefault("sensor.interval", 30*time.Second)
	v.SetDefault("sensor.output", "output1")

	v.SetDefault("sink.kind", SinkEdge)

	v.SetDefault("edge.topic_pattern", "sensors/{deviceId}/{output}")
	v.SetDefault("edge.timeout", 10*time.Second)

	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "sensors/")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.timeout", 10*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "spo2_readings")
	v.SetDefault("kafka.create_topic", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel_prefix", "spo2.")
}

// Validate rejects configurations the publisher cannot run with.
func (c *Config) Validate() error {
	if c.Sensor.Output == "" {
		return fmt.Errorf("sensor output cannot be empty")
	}
	if c.Sensor.Interval <= 0 {
		return fmt.Errorf("sensor interval must be positive, got %s", c.Sensor.Interval)
	}
	if c.Sensor.InitialValue < 0 || c.Sensor.InitialValue > 100 {
		return fmt.Errorf("sensor initial value %.1f outside [0, 100]", c.Sensor.InitialValue)
	}

	switch c.Sink.Kind {
	case SinkEdge:
		if c.Edge.TopicPattern == "" {
			return fmt.Errorf("edge topic pattern cannot be empty")
		}
	case SinkMQTT:
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers cannot be empty")
		}
	case SinkRedis, SinkLog:
	default:
		return fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
