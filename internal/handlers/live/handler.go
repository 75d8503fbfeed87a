package live

import (
	"net/http"
	"roombook/transport/ws"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	hub *ws.Hub
}

func New(hub *ws.Hub) Handler {
	return Handler{hub: hub}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/live/bookings", handler.Bookings)
}

// Bookings streams booking events to a dashboard.
// @Summary Live booking feed
// @Description Websocket that pushes booking.created and booking.status_changed events.
// @Tags Live
// @Param room_id query string false "Only events of this room"
// @Success 101
// @Router /v1/live/bookings [get]
func (handler *Handler) Bookings(w http.ResponseWriter, r *http.Request) {
	handler.hub.ServeHTTP(w, r)
}
