package main

import (
	"context"
	"errors"

	bookingserrors "parkspot/internal/bookings/errors"
	"parkspot/internal/bookings/handler"
	"parkspot/internal/bookings/repository"
	"parkspot/internal/bookings/service"
	"parkspot/internal/bookings/validator"
	"parkspot/pkg/app"
	"parkspot/pkg/config"
	"parkspot/pkg/kafka"
	kafkaconfig "parkspot/pkg/kafka/config"
	kafkamiddleware "parkspot/pkg/kafka/middleware"
	"parkspot/pkg/locker"
	"parkspot/pkg/middleware"
	"parkspot/pkg/model"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.RequireAuth(); err != nil {
		cfg.Log.Fatal("Invalid authentication configuration", "error", err)
	}

	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	users := repository.NewMongoUserRepository(cfg)
	bookingService := initServices(cfg, serverApp, users)

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTCookieName, roleResolver(users), cfg.Log)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log, auth.Authenticate, serverApp.Idempotency()))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application, users repository.UserRepository) service.BookingService {
	opts := []service.Option{}
	if publisher := initEventPublisher(cfg); publisher != nil {
		opts = append(opts, service.WithEventPublisher(publisher))
		serverApp.OnShutdown("kafka-producer", func(context.Context) error { return publisher.Close() })
	}

	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewMongoSpotRepository(cfg),
		users,
		initLocker(cfg),
		validator.NewBookingValidator(cfg.Log),
		cfg,
		opts...,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName, "lock_backend", cfg.LockBackend)
	return bookingService
}

func initLocker(cfg *config.Config) locker.Locker {
	opts := locker.Options{
		TTL:           cfg.LockTTL,
		Wait:          cfg.LockWait,
		RetryInterval: cfg.LockRetryInterval,
	}

	switch cfg.LockBackend {
	case config.LockBackendRedis:
		return locker.NewStoreLocker(locker.NewRedisStore(cfg.Client.Redis, ""), opts)
	case config.LockBackendLocal:
		cfg.Log.Warn("Using in-process spot locks; run a single instance only")
		return locker.NewLocalLocker(opts)
	default:
		return locker.NewStoreLocker(repository.NewBookingLockRepository(cfg), opts)
	}
}

func initEventPublisher(cfg *config.Config) *kafka.BookingEventPublisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return nil
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	return kafka.NewBookingEventPublisher(producer, ServiceName, middleware.RequestIDFromContext)
}

// roleResolver looks the caller up when the token carries no role.
func roleResolver(users repository.UserRepository) middleware.RoleResolver {
	return func(ctx context.Context, userID string) (model.Role, error) {
		user, err := users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrUserNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
				return "", middleware.ErrUnknownUser
			}
			return "", err
		}
		return user.Role, nil
	}
}
