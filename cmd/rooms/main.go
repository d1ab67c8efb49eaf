package main

import (
	"innkeeper/internal/rooms/handler"
	"innkeeper/internal/rooms/repository"
	"innkeeper/internal/rooms/service"
	"innkeeper/internal/rooms/validator"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
)

const ServiceName = "rooms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Rooms service")
	roomService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoomHandler(roomService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RoomService {
	roomValidator := validator.NewRoomValidator()
	roomRepo := repository.NewMongoRoomRepository(cfg)
	roomService := service.NewRoomService(
		roomRepo,
		roomValidator,
		cfg,
	)

	cfg.Log.Info("Room service initialized", "database", cfg.MongoDatabaseName)
	return roomService
}
