package main

import (
	bookingshandler "slotter/internal/bookings/handler"
	bookingsrepo "slotter/internal/bookings/repository"
	bookingsservice "slotter/internal/bookings/service"
	bookingsvalidator "slotter/internal/bookings/validator"
	"slotter/internal/events"
	slotshandler "slotter/internal/slots/handler"
	slotsrepo "slotter/internal/slots/repository"
	slotsservice "slotter/internal/slots/service"
	slotsvalidator "slotter/internal/slots/validator"
	usershandler "slotter/internal/users/handler"
	usersrepo "slotter/internal/users/repository"
	usersservice "slotter/internal/users/service"
	usersvalidator "slotter/internal/users/validator"
	"slotter/pkg/app"
	"slotter/pkg/calendar"
	"slotter/pkg/config"
	"slotter/pkg/contracts"
	"slotter/pkg/kafka"
	kafka_middleware "slotter/pkg/kafka/middleware"
)

const ServiceName = "calendar"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Calendar service")

	publisher, closePublisher := initPublisher(cfg)

	slotRepo := slotsrepo.NewMongoSlotRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	userRepo := usersrepo.NewMongoUserRepository(cfg)
	tokenRepo := usersrepo.NewMongoTokenRepository(cfg)

	slotService := slotsservice.NewSlotService(
		slotRepo,
		bookingRepo,
		userRepo,
		slotsvalidator.NewSlotValidator(cfg.Log),
		publisher,
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		slotRepo,
		userRepo,
		calendar.NewGoogleLinkBuilder(),
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	userService, err := usersservice.NewUserService(
		userRepo,
		tokenRepo,
		usersvalidator.NewUserValidator(cfg.Log),
		cfg,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize user service", "error", err)
	}
	cfg.Log.Info("Calendar services initialized", "database", cfg.MongoDatabaseName)

	handlers := contracts.Handlers{
		slotshandler.NewSlotHandler(slotService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers, userService)
	serverApp.OnShutdown(closePublisher)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

// initPublisher returns the Kafka event publisher, or a no-op one when no brokers
// are configured.
func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.Kafka.Enabled() {
		cfg.Log.Info("Kafka not configured, domain events disabled")
		return events.NoopPublisher{}, func() {}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	cfg.Log.Info("Kafka producer initialized", "topic", cfg.Kafka.EventsTopic)

	closeFn := func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Kafka.PublishTimeout, cfg.Log), closeFn
}
