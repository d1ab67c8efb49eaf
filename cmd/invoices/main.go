package main

import (
	bookingsrepository "innkeeper/internal/bookings/repository"
	bookingsservice "innkeeper/internal/bookings/service"
	bookingsvalidator "innkeeper/internal/bookings/validator"
	dealsrepository "innkeeper/internal/deals/repository"
	dealsservice "innkeeper/internal/deals/service"
	dealsvalidator "innkeeper/internal/deals/validator"
	"innkeeper/internal/invoices/handler"
	"innkeeper/internal/invoices/repository"
	"innkeeper/internal/invoices/service"
	roomsrepository "innkeeper/internal/rooms/repository"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
	"innkeeper/pkg/kafka"
	kafka_config "innkeeper/pkg/kafka/config"
)

const ServiceName = "invoices"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	issuedPub, err := kafka.NewProducer(kafkaCfg, kafka.TopicInvoiceIssued, kafka.TopicInvoiceIssuedDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create invoice.issued producer", "error", err)
	}
	defer issuedPub.Close()

	cfg.Log.Info("Starting Invoices service")
	invoiceService := initServices(cfg, issuedPub)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewInvoiceHandler(invoiceService, cfg.Log))
	serverApp.Run()
}

// initServices wires a read-only booking service so invoices can pull the
// stored snapshot and bill text. It publishes no booking events.
func initServices(cfg *config.Config, issuedPub service.EventPublisher) service.InvoiceService {
	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepository.NewBookingLockRepository(cfg)
	roomRepo := roomsrepository.NewMongoRoomRepository(cfg)
	dealService := dealsservice.NewDealService(
		dealsrepository.NewMongoDealRepository(cfg),
		dealsvalidator.NewDealValidator(),
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		roomRepo,
		dealService,
		bookingsvalidator.NewBookingValidator(),
		nil,
		nil,
		cfg,
	)

	invoiceRepo := repository.NewMongoInvoiceRepository(cfg)
	invoiceService := service.NewInvoiceService(
		invoiceRepo,
		bookingService,
		issuedPub,
		cfg,
	)

	cfg.Log.Info("Invoice service initialized", "database", cfg.MongoDatabaseName)
	return invoiceService
}
