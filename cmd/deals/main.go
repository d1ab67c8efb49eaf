package main

import (
	"innkeeper/internal/deals/handler"
	"innkeeper/internal/deals/repository"
	"innkeeper/internal/deals/service"
	"innkeeper/internal/deals/validator"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
)

const ServiceName = "deals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Deals service")
	dealService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewDealHandler(dealService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.DealService {
	dealValidator := validator.NewDealValidator()
	dealRepo := repository.NewMongoDealRepository(cfg)
	dealService := service.NewDealService(
		dealRepo,
		dealValidator,
		cfg,
	)

	cfg.Log.Info("Deal service initialized", "database", cfg.MongoDatabaseName)
	return dealService
}
