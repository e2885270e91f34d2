package tests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/generator"
	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/observability"
	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/sink"
	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/testutils"
	"github.com/shubham-shewale/oximeter-sim/pkg/config"
	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

func TestOximeter_RedisWiring(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer subscriber.Close()
	sub := subscriber.Subscribe(ctx, "spo2.output1")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cfg := &config.Config{
		Sink:  config.SinkConfig{Kind: config.SinkRedis},
		Redis: config.RedisConfig{Addr: mr.Addr(), ChannelPrefix: "spo2."},
	}
	out, err := sink.New(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("sink.New: %v", err)
	}
	defer out.Close()

	// Real randomness, virtual time: the loop runs as fast as Redis accepts
	pub := generator.NewPublisher(
		zap.NewNop(),
		out,
		generator.NewRealRand(),
		&testutils.MockClock{CurrentTime: time.Now()},
		observability.NewMetrics(),
		generator.Settings{Output: "output1", Interval: 30 * time.Second, InitialValue: generator.InitialSpO2},
	)

	done := make(chan error, 1)
	go func() { done <- pub.Run(ctx) }()

	previous := generator.InitialSpO2
	for i := 0; i < 3; i++ {
		select {
		case msg := <-sub.Channel():
			var r models.Reading
			if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
				t.Fatalf("invalid payload %q: %v", msg.Payload, err)
			}
			if diff := r.SpO2 - previous; diff < -0.5001 || diff > 0.5001 {
				t.Errorf("reading %d moved %v from %v", i, diff, previous)
			}
			if r.Timestamp.Location() != time.UTC {
				t.Errorf("expected UTC timestamp, got %v", r.Timestamp)
			}
			previous = r.SpO2
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %d readings", i)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestOximeter_KafkaFailureStopsLoop(t *testing.T) {
	writer := &testutils.MockKafkaWriter{ShouldFail: true}
	metrics := observability.NewMetrics()

	pub := generator.NewPublisher(
		zap.NewNop(),
		sink.NewKafkaSink(writer, "bed-12"),
		&testutils.MockRand{ValInt: 5},
		&testutils.MockClock{},
		metrics,
		generator.Settings{Output: "output1", Interval: 30 * time.Second, InitialValue: 97},
	)

	if err := pub.Run(context.Background()); err == nil {
		t.Fatal("expected kafka failure to be terminal")
	}

	if got := testutil.ToFloat64(metrics.SendErrors); got != 1 {
		t.Errorf("SendErrors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ReadingsSent); got != 0 {
		t.Errorf("ReadingsSent = %v, want 0", got)
	}
	if s := metrics.Status(); s.Status != "failing" {
		t.Errorf("expected failing status, got %+v", s)
	}
}
