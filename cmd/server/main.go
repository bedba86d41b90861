package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-live/internal/adapters/kafka"
	"classroom-live/internal/api/routes"
	"classroom-live/internal/config"
	"classroom-live/internal/database"
	"classroom-live/internal/realtime"
	"classroom-live/internal/repositories/postgres"
	"classroom-live/internal/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting classroom live server")

	redisClient, err := database.NewRedisConnection(cfg.Redis.URI)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	redisService := services.NewRedisService(redisClient)
	messageRepo := postgres.NewMessageRepository(db)

	registry := realtime.NewRegistry(messageRepo, redisService)

	producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers)
	if err != nil {
		slog.Error("Failed to connect to Kafka", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	publisher := kafka.NewNotificationPublisher(producer, cfg.Kafka.NotificationTopic)

	consumer, err := kafka.NewNotificationConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.ConsumerGroup,
		cfg.Kafka.NotificationTopic,
		registry.Notifier(),
	)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Run(consumerCtx); err != nil && err != context.Canceled {
			slog.Error("Notification consumer stopped", "error", err)
		}
	}()

	router := routes.NewRouter(registry, redisService, publisher, db, cfg.JWT.Secret)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	stopConsumer()
	if err := consumer.Close(); err != nil {
		slog.Error("Failed to close Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
