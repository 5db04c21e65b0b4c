package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkspot/pkg/config"
	"parkspot/pkg/kafka"
	kafkaconfig "parkspot/pkg/kafka/config"
	kafkamiddleware "parkspot/pkg/kafka/middleware"
)

const (
	ServiceName     = "booking-events"
	metricsLogEvery = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaBookingsTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaBookingsDLQ,
		kafka.NewBookingAuditHandler(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	consumer.Use(metrics.ConsumerMiddleware())
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logMetrics(ctx, cfg, metrics)

	cfg.Log.Info("Booking events consumer started", "topic", cfg.KafkaBookingsTopic, "group", cfg.KafkaConsumerGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Booking events consumer stopped", metrics.Snapshot().LogAttrs()...)
}

func logMetrics(ctx context.Context, cfg *config.Config, metrics *kafkamiddleware.Metrics) {
	ticker := time.NewTicker(metricsLogEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg.Log.Info("Booking events consumer metrics", metrics.Snapshot().LogAttrs()...)
		}
	}
}
