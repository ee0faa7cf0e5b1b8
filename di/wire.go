//go:build wireinject
// +build wireinject

package di

import (
	"hotelops/config"
	"hotelops/infras/jwt"
	"hotelops/infras/kafka"
	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	"hotelops/infras/redis"
	"hotelops/infras/s3"
	"hotelops/permissions"
	"hotelops/shared/cache"
	"hotelops/shared/event"
	"hotelops/shared/lock"
	"hotelops/transport/consumer"
	"hotelops/transport/http"
	"hotelops/transport/http/middleware"
	"hotelops/transport/http/router"

	availabilityRepository "hotelops/internal/domains/availability/repository"
	availabilityService "hotelops/internal/domains/availability/service"
	bookingRepository "hotelops/internal/domains/booking/repository"
	bookingService "hotelops/internal/domains/booking/service"
	guestRepository "hotelops/internal/domains/guest/repository"
	guestService "hotelops/internal/domains/guest/service"
	inventoryRepository "hotelops/internal/domains/inventory/repository"
	inventoryService "hotelops/internal/domains/inventory/service"
	resourceRepository "hotelops/internal/domains/resource/repository"
	resourceService "hotelops/internal/domains/resource/service"
	taskRepository "hotelops/internal/domains/task/repository"
	taskService "hotelops/internal/domains/task/service"

	bookingHandler "hotelops/internal/handlers/booking"
	guestHandler "hotelops/internal/handlers/guest"
	healthHandler "hotelops/internal/handlers/health"
	inventoryHandler "hotelops/internal/handlers/inventory"
	maintenanceHandler "hotelops/internal/handlers/maintenance"
	resourceHandler "hotelops/internal/handlers/resource"
	taskHandler "hotelops/internal/handlers/task"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.New,
	event.New,
)

var guestDomain = wire.NewSet(
	guestRepository.New,
	guestService.New,
)

var resourceDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
	resourceRepository.New,
	resourceService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var inventoryDomain = wire.NewSet(
	inventoryRepository.NewItem,
	inventoryRepository.NewRequest,
	inventoryService.New,
)

var taskDomain = wire.NewSet(
	taskRepository.New,
	taskService.New,
)

var domains = wire.NewSet(
	guestDomain,
	resourceDomain,
	bookingDomain,
	inventoryDomain,
	taskDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	guestHandler.New,
	resourceHandler.New,
	bookingHandler.New,
	inventoryHandler.New,
	taskHandler.New,
	maintenanceHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *consumer.Consumer {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		domains,
		consumer.New,
	)

	return &consumer.Consumer{}
}

func InitializeRepair() bookingService.Booking {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		domains,
	)

	return nil
}
