package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slotter/internal/notifications"
	usersrepo "slotter/internal/users/repository"
	"slotter/pkg/config"
	"slotter/pkg/kafka"
	kafka_middleware "slotter/pkg/kafka/middleware"
	"syscall"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.Kafka.Enabled() {
		cfg.Log.Fatal("KAFKA_BROKERS must be set for the notifications worker")
	}
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	handler := notifications.NewHandler(
		usersrepo.NewMongoUserRepository(cfg),
		notifications.NewLogNotifier(cfg.Log),
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Log, handler.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifications worker",
		"topic", cfg.Kafka.EventsTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifications worker stopped")
}
