package health

import (
	"context"
	"net/http"
	"roombook/shared/constant"
	"roombook/transport/http/response"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

type ServerState int32

const (
	ServerStateStarting ServerState = iota
	ServerStateReady
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

// Status is the lifecycle state shared by the server and the probes.
type Status struct {
	state atomic.Int32
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) Set(state ServerState) {
	s.state.Store(int32(state))
}

func (s *Status) Get() ServerState {
	return ServerState(s.state.Load())
}

// Pinger is a dependency the instance cannot serve without.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	status *Status
	deps   []Pinger
}

func New(status *Status, deps ...Pinger) Handler {
	return Handler{
		status: status,
		deps:   deps,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/health", func(r chi.Router) {
		r.Get("/live", handler.Live)
		r.Get("/ready", handler.Ready)
	})
}

// Live answers as long as the process is up.
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Router /health/live [get]
func (handler *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusOK, "OK")
}

// Ready fails while the instance starts or shuts down, or when a dependency is unreachable.
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Failure 503 {object} response.Message
// @Router /health/ready [get]
func (handler *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	switch handler.status.Get() {
	case ServerStateReady:
	case ServerStateInGracePeriod, ServerStateInCleanupPeriod:
		response.WithPreparingShutdown(w)

		return
	default:
		response.WithUnhealthy(w)

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	for _, dep := range handler.deps {
		if err := dep.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("readiness check failed")
			response.WithUnhealthy(w)

			return
		}
	}

	response.WithMessage(w, http.StatusOK, constant.ResponseReady)
}
