package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/metrics"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/event"
	"roombook/internal/handlers/health"
	"roombook/shared/constant"
	"roombook/transport/http/middleware"
	"roombook/transport/http/router"
	"roombook/transport/ws"
	"syscall"
	"time"

	_ "roombook/docs"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

const readHeaderTimeout = 10 * time.Second

type HTTP struct {
	Config  *config.Config
	Router  router.Router
	Status  *health.Status
	app     middleware.AppMiddleware
	metrics *metrics.Metrics
	hub     *ws.Hub
	kafka   kafka.Client
	db      *postgres.Connection
	otel    otel.Otel
	mux     *chi.Mux
}

func New(
	cfg *config.Config,
	r router.Router,
	status *health.Status,
	app middleware.AppMiddleware,
	metrics *metrics.Metrics,
	hub *ws.Hub,
	kafka kafka.Client,
	db *postgres.Connection,
	otel otel.Otel,
) *HTTP {
	return &HTTP{
		Config:  cfg,
		Router:  r,
		Status:  status,
		app:     app,
		metrics: metrics,
		hub:     hub,
		kafka:   kafka,
		db:      db,
		otel:    otel,
	}
}

// Serve listens until SIGINT or SIGTERM, then drains in two phases: a grace period in which
// readiness fails so load balancers stop routing, and a cleanup period bounding in-flight requests.
func (h *HTTP) Serve() {
	h.setup()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	if h.Config.Kafka.Enable && h.kafka != nil {
		go h.kafka.Consume(consumerCtx, event.Relay(h.hub))
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	<-signals

	h.shutdown(server, stopConsumer)
}

// ServeHTTP serves a single request, for serverless entry points.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.mux == nil {
		h.setup()
	}

	h.mux.ServeHTTP(w, r)
}

func (h *HTTP) setup() {
	h.mux = chi.NewRouter()

	h.mux.Use(
		chiMiddleware.RequestID,
		chiMiddleware.Recoverer,
		h.app.Tracing,
		h.app.Language,
	)

	if h.Config.App.CORS.Enable {
		h.mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.Config.App.CORS.AllowedOrigins,
			AllowedMethods:   h.Config.App.CORS.AllowedMethods,
			AllowedHeaders:   h.Config.App.CORS.AllowedHeaders,
			AllowCredentials: h.Config.App.CORS.AllowCredentials,
			MaxAge:           h.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	if h.Config.Metrics.Enable {
		h.mux.Use(h.app.Metrics)
		h.mux.Method(http.MethodGet, h.Config.Metrics.Path, h.metrics.Handler())
	}

	h.mux.Use(h.app.RateLimit())

	if h.Config.Server.Env != constant.ServerEnvProduction {
		h.mux.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	h.Router.SetupRoutes(h.mux)
	h.Status.Set(health.ServerStateReady)
}

func (h *HTTP) shutdown(server *http.Server, stopConsumer context.CancelFunc) {
	shutdownConfig := h.Config.Server.Shutdown

	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")

		shutdownConfig.GracePeriodSeconds = 0
	} else {
		log.Info().Msg("Received SIGTERM.")
	}

	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")
	h.Status.Set(health.ServerStateInGracePeriod)

	time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")
	h.Status.Set(health.ServerStateInCleanupPeriod)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownConfig.CleanupPeriodSeconds)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server did not drain in time")
	}

	stopConsumer()
	h.hub.Close()

	if h.kafka != nil {
		if err := h.kafka.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}

	if err := h.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	if err := h.otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}
