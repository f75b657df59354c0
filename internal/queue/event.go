// Package queue defines the seat.reserved event and the RabbitMQ
// publisher and consumer around it.  The queue is an audit side channel:
// publishing is best-effort and never blocks or fails a reservation.
package queue

// SeatReservedQueueName is the durable queue carrying reservation
// confirmations.
const SeatReservedQueueName = "seat.reserved"

// SeatReservedEvent is emitted when a hold is promoted to a reservation.
// ReservedAt is RFC 3339 in UTC.
type SeatReservedEvent struct {
    EventID    string `json:"event_id"`
    SeatNumber int    `json:"seat_number"`
    UserID     string `json:"user_id"`
    ReservedAt string `json:"reserved_at"`
}
