package main

import (
	"innkeeper/internal/bookings/handler"
	"innkeeper/internal/bookings/repository"
	"innkeeper/internal/bookings/service"
	"innkeeper/internal/bookings/validator"
	dealsrepository "innkeeper/internal/deals/repository"
	dealsservice "innkeeper/internal/deals/service"
	dealsvalidator "innkeeper/internal/deals/validator"
	roomsrepository "innkeeper/internal/rooms/repository"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
	"innkeeper/pkg/kafka"
	kafka_config "innkeeper/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	confirmedPub, err := kafka.NewProducer(kafkaCfg, kafka.TopicBookingConfirmed, kafka.TopicBookingConfirmedDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking.confirmed producer", "error", err)
	}
	defer confirmedPub.Close()

	cancelledPub, err := kafka.NewProducer(kafkaCfg, kafka.TopicBookingCancelled, kafka.TopicBookingCancelledDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking.cancelled producer", "error", err)
	}
	defer cancelledPub.Close()

	cfg.Log.Info("Starting Bookings service")
	bookingService := initServices(cfg, confirmedPub, cancelledPub)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, confirmedPub, cancelledPub service.EventPublisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator()
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	roomRepo := roomsrepository.NewMongoRoomRepository(cfg)

	dealRepo := dealsrepository.NewMongoDealRepository(cfg)
	dealService := dealsservice.NewDealService(
		dealRepo,
		dealsvalidator.NewDealValidator(),
		cfg,
	)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		roomRepo,
		dealService,
		bookingValidator,
		confirmedPub,
		cancelledPub,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
