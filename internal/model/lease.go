package model

import "time"

// SeatLease is a user's claim on one seat of an event.  A lease starts as
// a hold with a finite expiry and either vanishes when the expiry elapses
// or is promoted to a reservation, which never expires for the remaining
// lifetime of the event.  At most one lease exists per seat at any
// instant, and its owner never changes while the lease is alive.
//
// Fields:
//  EventID    – event the seat belongs to.
//  SeatNumber – seat number in [1, event.TotalSeats].
//  UserID     – owner of the lease ("USR-" prefixed).
//  ExpiresAt  – when the hold lapses; far-future for reservations.
type SeatLease struct {
    EventID    string
    SeatNumber int
    UserID     string
    ExpiresAt  time.Time
}
