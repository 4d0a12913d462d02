package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	csvadapter "github.com/couchcryptid/climate-index-etl/internal/adapter/csv"
	"github.com/couchcryptid/climate-index-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/climate-index-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-index-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/climate-index-etl/internal/config"
	"github.com/couchcryptid/climate-index-etl/internal/observability"
	"github.com/couchcryptid/climate-index-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)
	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment", "error", envErr)
	}
	metrics := observability.NewMetrics()

	loaders := []pipeline.Loader{csvadapter.NewWriter(cfg.OutputPath, logger)}
	if cfg.XLSXPath != "" {
		loaders = append(loaders, xlsx.NewWriter(cfg.XLSXPath, logger))
	}

	// Kafka publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, runID, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(
		file.NewReader(cfg.InputPath, logger),
		pipeline.NewTransformer(cfg.Cutoff, logger),
		logger,
		metrics,
		clockwork.NewRealClock(),
		loaders...,
	).WithSampleRows(cfg.SampleRows)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, runErr := p.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics export failed", "error", err)
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}
