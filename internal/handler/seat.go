package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/queue"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/utils"
)

// ReservationPublisher emits seat.reserved events.  Implemented by
// queue.Publisher; nil disables publishing.
type ReservationPublisher interface {
    PublishSeatReserved(ctx context.Context, ev queue.SeatReservedEvent) error
}

// SeatHandler exposes the seat-lease operations: hold, refresh, reserve,
// availability and owner lookup.  TTL bounds are injected from config;
// the handler clamps nothing — out-of-bound requests are rejected so the
// caller learns about them.
type SeatHandler struct {
    Seats      *repository.SeatLeaseRepo
    Publisher  ReservationPublisher // optional
    HoldTTL    time.Duration        // applied when the body omits ttlSeconds
    HoldTTLMax time.Duration
}

// NewSeatHandler constructs a SeatHandler.  The repository must be
// non-nil; the publisher may be nil.
func NewSeatHandler(seats *repository.SeatLeaseRepo, pub ReservationPublisher, holdTTL, holdTTLMax time.Duration) *SeatHandler {
    if seats == nil {
        panic("nil repository passed to NewSeatHandler")
    }
    return &SeatHandler{Seats: seats, Publisher: pub, HoldTTL: holdTTL, HoldTTLMax: holdTTLMax}
}

// seatLeaseBody is the request body shared by hold and refresh.
type seatLeaseBody struct {
    SeatNumber int    `json:"seatNumber"`
    UserID     string `json:"userId"`
    TTLSeconds int    `json:"ttlSeconds,omitempty"`
    Refresh    bool   `json:"refresh,omitempty"`
}

// HoldSeat handles POST /v1/events/:id/hold.  The body carries the seat
// number, the acting user and an optional ttl in seconds; with
// refresh=true the existing hold is extended instead of acquired.
// Responds 200 with the hold expiry on success.
func (h *SeatHandler) HoldSeat(c echo.Context) error {
    eventID := c.Param("id")
    if !utils.IsEventID(eventID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body seatLeaseBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if !utils.IsUserID(body.UserID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    if body.SeatNumber < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatNumber must be positive"})
    }
    ttl := h.HoldTTL
    if body.TTLSeconds != 0 {
        ttl = time.Duration(body.TTLSeconds) * time.Second
        if ttl < time.Second || ttl > h.HoldTTLMax {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "ttlSeconds out of range"})
        }
    }

    ctx := c.Request().Context()
    if body.Refresh {
        l, err := h.Seats.Refresh(ctx, eventID, body.UserID, body.SeatNumber, ttl)
        if err != nil {
            return seatError(c, err)
        }
        return c.JSON(http.StatusOK, echo.Map{
            "success":       true,
            "holdExpiresAt": l.ExpiresAt.Format(time.RFC3339),
        })
    }
    l, err := h.Seats.Hold(ctx, eventID, body.UserID, body.SeatNumber, ttl)
    if err != nil {
        return seatError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":       true,
        "holdExpiresAt": l.ExpiresAt.Format(time.RFC3339),
    })
}

// ReserveSeat handles POST /v1/events/:id/reserve.  Promotes the caller's
// hold into a permanent reservation and, on success, publishes a
// seat.reserved event.  Publish failures are logged and swallowed; the
// reservation already happened and the store is the source of truth.
func (h *SeatHandler) ReserveSeat(c echo.Context) error {
    eventID := c.Param("id")
    if !utils.IsEventID(eventID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body seatLeaseBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if !utils.IsUserID(body.UserID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    if body.SeatNumber < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatNumber must be positive"})
    }

    ctx := c.Request().Context()
    if err := h.Seats.Reserve(ctx, eventID, body.UserID, body.SeatNumber); err != nil {
        return seatError(c, err)
    }
    if h.Publisher != nil {
        ev := queue.SeatReservedEvent{
            EventID:    eventID,
            SeatNumber: body.SeatNumber,
            UserID:     body.UserID,
            ReservedAt: time.Now().UTC().Format(time.RFC3339),
        }
        if err := h.Publisher.PublishSeatReserved(ctx, ev); err != nil {
            c.Logger().Warnf("seat.reserved publish failed: %v", err)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListAvailableSeats handles GET /v1/events/:id/seats.  Responds with the
// ascending seat numbers that currently carry no lease.
func (h *SeatHandler) ListAvailableSeats(c echo.Context) error {
    eventID := c.Param("id")
    if !utils.IsEventID(eventID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    seats, err := h.Seats.AvailableSeats(c.Request().Context(), eventID)
    if err != nil {
        return seatError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"availableSeats": seats})
}

// GetEventSeat handles GET /v1/events/:id/seats/:number.  Responds with
// the current owner of the seat, held or reserved, or 404 when the seat
// carries no lease.
func (h *SeatHandler) GetEventSeat(c echo.Context) error {
    eventID := c.Param("id")
    if !utils.IsEventID(eventID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    seat, err := strconv.Atoi(c.Param("number"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat number"})
    }
    owner, held, err := h.Seats.GetSeat(c.Request().Context(), eventID, seat)
    if err != nil {
        return seatError(c, err)
    }
    if !held {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "seat has no lease"})
    }
    return c.JSON(http.StatusOK, echo.Map{"userId": owner})
}

// seatError translates the ledger's error kinds into transport responses.
func seatError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrEventNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    case errors.Is(err, repository.ErrSeatOutOfRange):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat number out of range"})
    case errors.Is(err, repository.ErrQuotaExceeded):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "user seat quota exceeded"})
    case errors.Is(err, repository.ErrSeatAlreadyHeld):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat already held"})
    case errors.Is(err, repository.ErrSeatNotHeldByUser):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat not held by user"})
    case errors.Is(err, repository.ErrSeatAlreadyReserved):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat already reserved"})
    case errors.Is(err, repository.ErrRefreshRejected):
        return c.JSON(http.StatusConflict, echo.Map{"error": "refresh rejected"})
    default:
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
    }
}
