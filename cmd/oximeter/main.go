package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/generator"
	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/observability"
	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/sink"
	"github.com/shubham-shewale/oximeter-sim/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// 2. Initialize Zap Logger
	logger, err := config.NewLogger(cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger = logger.With(zap.String("device_id", cfg.Sensor.DeviceID))
	logger.Info("Simulated Sensor Module: SpO2", zap.String("sink", cfg.Sink.Kind))

	// 3. Shutdown Hook: the edge runtime stops modules with SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Connect the output sink
	out, err := sink.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize output sink", zap.Error(err))
		return 1
	}
	defer func() {
		logger.Info("Shutting down output sink...")
		if err := out.Close(); err != nil {
			logger.Error("Error closing output sink", zap.Error(err))
		}
	}()

	// 5. Metrics & health
	metrics := observability.NewMetrics()
	if cfg.App.MetricsAddr != "" {
		go func() {
			if err := observability.Serve(ctx, cfg.App.MetricsAddr, metrics, logger); err != nil {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	// 6. Main Publisher Loop
	pub := generator.NewPublisher(
		logger,
		out,
		generator.NewRealRand(),
		generator.RealClock{},
		metrics,
		generator.Settings{
			Output:       cfg.Sensor.Output,
			Interval:     cfg.Sensor.Interval,
			InitialValue: cfg.Sensor.InitialValue,
		},
	)

	if err := pub.Run(ctx); err != nil {
		logger.Error("Unhandled error in publisher loop", zap.Error(err))
		return 1
	}

	logger.Info("Shutdown signal received, publisher stopped")
	return 0
}
