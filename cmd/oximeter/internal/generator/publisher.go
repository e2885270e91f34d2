package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

type Settings struct {
	Output       string
	Interval     time.Duration
	InitialValue float64
}

// Publisher emits one simulated reading per interval until cancelled.
type Publisher struct {
	logger   *zap.Logger
	sink     Sink
	rand     Rand
	clock    Clock
	recorder Recorder
	settings Settings
	value    float64
}

func NewPublisher(
	logger *zap.Logger,
	sink Sink,
	rnd Rand,
	clock Clock,
	recorder Recorder,
	settings Settings,
) *Publisher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Publisher{
		logger:   logger,
		sink:     sink,
		rand:     rnd,
		clock:    clock,
		recorder: recorder,
		settings: settings,
		value:    settings.InitialValue,
	}
}

// Value returns the last generated reading.
func (p *Publisher) Value() float64 { return p.value }

// Run returns nil once ctx is cancelled. Any delivery failure is returned
// as is; the loop neither retries nor buffers.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("Publisher Started",
		zap.String("output", p.settings.Output),
		zap.Duration("interval", p.settings.Interval),
		zap.Float64("initial_value", p.value),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := p.publish(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Debug("Send interrupted by shutdown", zap.Error(err))
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-p.clock.After(p.settings.Interval):
		}
	}
}

func (p *Publisher) publish(ctx context.Context) error {
	p.value = Next(p.value, p.rand)
	reading := models.NewReading(p.value, p.clock.Now())

	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}

	start := time.Now()
	err = p.sink.Send(ctx, p.settings.Output, models.Message{
		Payload:         payload,
		ContentType:     models.ContentTypeJSON,
		ContentEncoding: models.EncodingUTF8,
	})
	p.recorder.ObserveSend(p.value, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("send reading to %s: %w", p.settings.Output, err)
	}

	p.logger.Info("Sent simulated SpO2", zap.ByteString("payload", payload))
	return nil
}
