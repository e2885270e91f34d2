package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Sensor.Output != "output1" {
		t.Errorf("Expected output1, got %s", cfg.Sensor.Output)
	}
	if cfg.Sensor.Interval != 30*time.Second {
		t.Errorf("Expected 30s interval, got %s", cfg.Sensor.Interval)
	}
	if cfg.Sensor.InitialValue != 97.0 {
		t.Errorf("Expected initial value 97.0, got %v", cfg.Sensor.InitialValue)
	}
	if cfg.Sink.Kind != SinkEdge {
		t.Errorf("Expected edge sink, got %s", cfg.Sink.Kind)
	}
	if !strings.HasPrefix(cfg.Sensor.DeviceID, "oximeter-") {
		t.Errorf("Expected generated device id, got %q", cfg.Sensor.DeviceID)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SENSOR_INTERVAL", "5s")
	t.Setenv("SENSOR_DEVICE_ID", "bed-12")
	t.Setenv("SINK_KIND", "redis")
	t.Setenv("REDIS_CHANNEL_PREFIX", "ward.")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Sensor.Interval != 5*time.Second {
		t.Errorf("Expected 5s interval, got %s", cfg.Sensor.Interval)
	}
	if cfg.Sensor.DeviceID != "bed-12" {
		t.Errorf("Expected bed-12, got %s", cfg.Sensor.DeviceID)
	}
	if cfg.Sink.Kind != SinkRedis {
		t.Errorf("Expected redis sink, got %s", cfg.Sink.Kind)
	}
	if cfg.Redis.ChannelPrefix != "ward." {
		t.Errorf("Expected ward. prefix, got %s", cfg.Redis.ChannelPrefix)
	}
}

func TestLoadConfig_RejectsUnknownSink(t *testing.T) {
	t.Setenv("SINK_KIND", "carrier-pigeon")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected error for unknown sink kind")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Sensor: SensorConfig{InitialValue: 97, Interval: time.Second, Output: "output1"},
			Sink:   SinkConfig{Kind: SinkLog},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty output", func(c *Config) { c.Sensor.Output = "" }},
		{"zero interval", func(c *Config) { c.Sensor.Interval = 0 }},
		{"initial above range", func(c *Config) { c.Sensor.InitialValue = 100.1 }},
		{"initial below range", func(c *Config) { c.Sensor.InitialValue = -1 }},
		{"bad qos", func(c *Config) { c.Sink.Kind = SinkMQTT; c.MQTT.QoS = 3 }},
		{"no brokers", func(c *Config) { c.Sink.Kind = SinkKafka }},
		{"no topic pattern", func(c *Config) { c.Sink.Kind = SinkEdge }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("Expected base config to be valid, got %v", err)
	}

	for _, tt := range tests {
		cfg := valid()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		expect zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"debug", zap.DebugLevel},
		{" WARN ", zap.WarnLevel},
		{"error", zap.ErrorLevel},
		{"verbose", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in).Level(); got != tt.expect {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.expect)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(AppConfig{Env: "prod", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level to be enabled")
	}

	Slog(logger).Info("bridged")
	_ = logger.Sync()
}
