package model

// Event describes a bookable event with a fixed, numbered seat inventory.
// Capacity and name are set once at creation and never mutated; seats are
// numbered 1..TotalSeats.
//
// Fields:
//  ID         – opaque identifier with the "EVT-" prefix.
//  TotalSeats – immutable seat capacity.
//  Name       – display name.
type Event struct {
    ID         string // event:{id} hash key
    TotalSeats int    // field "totalSeats"
    Name       string // field "name"
}

// Event capacity and name bounds enforced at creation.
const (
    MinTotalSeats = 10
    MaxTotalSeats = 1000
    MaxNameLen    = 100
)
