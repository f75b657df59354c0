package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo
// instance.  This endpoint can be used by load balancers or monitoring
// systems to verify that the service is up and running.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterReservation registers the event and seat-lease endpoints under
// /v1.  There is no authentication layer: callers identify themselves by
// the opaque user id in the request body and the ledger enforces
// ownership on every mutating operation.
func RegisterReservation(e *echo.Echo, ev *handler.EventHandler, st *handler.SeatHandler) {
    g := e.Group("/v1")
    // Event registry: create once, read forever.
    g.POST("/events", ev.CreateEvent)
    g.GET("/events/:id", ev.GetEvent)
    // Seat ledger: hold (or refresh via the refresh flag), reserve,
    // availability and owner lookup.
    g.POST("/events/:id/hold", st.HoldSeat)
    g.POST("/events/:id/reserve", st.ReserveSeat)
    g.GET("/events/:id/seats", st.ListAvailableSeats)
    g.GET("/events/:id/seats/:number", st.GetEventSeat)
}
