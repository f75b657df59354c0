// Package repository implements the reservation core against the lease
// store: the event registry and the seat ledger.  This file defines the
// sentinel error kinds shared by both so that handlers can translate
// outcomes into transport responses with errors.Is.  Every kind is
// terminal to the single operation that raised it; nothing is retried
// internally and a failed operation leaves no partial state behind.
package repository

import "errors"

// ErrEventNotFound is returned when no metadata exists for an event id.
var ErrEventNotFound = errors.New("event not found")

// ErrSeatOutOfRange is returned when a seat number falls outside
// [1, totalSeats] for the target event.
var ErrSeatOutOfRange = errors.New("seat number out of range")

// ErrSeatAlreadyHeld is returned when a hold loses the atomic acquire
// because the seat is already held or reserved by someone (possibly the
// same user).
var ErrSeatAlreadyHeld = errors.New("seat already held")

// ErrSeatNotHeldByUser is returned when an operation requires the caller
// to own a live lease on the seat and they do not.  It deliberately does
// not distinguish never-held, expired and held-by-someone-else.
var ErrSeatNotHeldByUser = errors.New("seat not held by user")

// ErrSeatAlreadyReserved is returned when refreshing a seat that has been
// promoted to a reservation; a reservation's expiry can never be extended.
var ErrSeatAlreadyReserved = errors.New("seat already reserved")

// ErrRefreshRejected is returned when the store refuses to extend a hold
// because the requested expiry is not later than the current one, or the
// hold lapsed while the refresh was in flight.
var ErrRefreshRejected = errors.New("refresh rejected")

// ErrQuotaExceeded is returned when a hold would push the user past the
// configured maximum number of seats for the event.
var ErrQuotaExceeded = errors.New("user seat quota exceeded")
