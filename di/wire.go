//go:build wireinject
// +build wireinject

package di

import (
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/kafka"
	"roombook/infras/metrics"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/infras/redis"
	"roombook/infras/s3"
	"roombook/permissions"
	"roombook/shared/cache"
	"roombook/shared/imageproc"
	"roombook/transport/http"
	"roombook/transport/http/middleware"
	"roombook/transport/http/router"
	"roombook/transport/ws"

	"github.com/google/wire"

	adminRepository "roombook/internal/domains/admin/repository"
	adminService "roombook/internal/domains/admin/service"
	authService "roombook/internal/domains/auth/service"
	bookingEvent "roombook/internal/domains/booking/event"
	bookingRepository "roombook/internal/domains/booking/repository"
	bookingService "roombook/internal/domains/booking/service"
	bookingValidation "roombook/internal/domains/booking/validation"
	roomRepository "roombook/internal/domains/room/repository"
	roomService "roombook/internal/domains/room/service"
	adminHandler "roombook/internal/handlers/admin"
	authHandler "roombook/internal/handlers/auth"
	bookingHandler "roombook/internal/handlers/booking"
	"roombook/internal/handlers/health"
	liveHandler "roombook/internal/handlers/live"
	roomHandler "roombook/internal/handlers/room"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.New,
	imageproc.New,
)

var live = wire.NewSet(
	ws.NewHub,
	wire.Bind(new(bookingEvent.Broadcaster), new(*ws.Hub)),
)

var authDomain = wire.NewSet(
	adminRepository.New,
	adminService.New,
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingValidation.FromConfig,
	bookingEvent.New,
	bookingService.New,
)

var domains = wire.NewSet(
	authDomain,
	roomDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	health.NewStatus,
	provideHealthHandler,
	authHandler.New,
	adminHandler.New,
	roomHandler.New,
	bookingHandler.New,
	liveHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		live,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
