package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/utils"
)

// EventHandler exposes event creation and lookup.  Request validation —
// field presence, ranges, id shape — lives here at the boundary; the
// repositories below assume well-typed, in-range arguments.
type EventHandler struct {
    Events *repository.EventRepo
}

// NewEventHandler constructs an EventHandler.  The repository must be
// non-nil.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
    if events == nil {
        panic("nil repository passed to NewEventHandler")
    }
    return &EventHandler{Events: events}
}

// CreateEvent handles POST /v1/events.  The body must carry a display
// name (1–100 characters) and a total seat count within [10, 1000].
// Responds 201 with the generated event id.
func (h *EventHandler) CreateEvent(c echo.Context) error {
    var body struct {
        Name       string `json:"name"`
        TotalSeats int    `json:"totalSeats"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.Name) < 1 || len(body.Name) > model.MaxNameLen {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-100 characters"})
    }
    if body.TotalSeats < model.MinTotalSeats || body.TotalSeats > model.MaxTotalSeats {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "totalSeats must be between 10 and 1000"})
    }
    ev, err := h.Events.Create(c.Request().Context(), body.TotalSeats, body.Name)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"eventId": ev.ID})
}

// GetEvent handles GET /v1/events/:id.  Responds with the event's
// capacity and name, or 404 when no such event exists.
func (h *EventHandler) GetEvent(c echo.Context) error {
    eventID := c.Param("id")
    if !utils.IsEventID(eventID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ev, err := h.Events.Get(c.Request().Context(), eventID)
    if err != nil {
        if errors.Is(err, repository.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "totalSeats": ev.TotalSeats,
        "name":       ev.Name,
    })
}
