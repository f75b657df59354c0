package repository

import (
    "context"
    "fmt"
    "strconv"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/store"
    "github.com/iliyamo/event-seat-reservation/internal/utils"
)

// Store field names for event metadata.  Values are round-tripped as raw
// strings at the store boundary; parsing back into typed values happens
// here and nowhere else.
const (
    fieldTotalSeats = "totalSeats"
    fieldName       = "name"
)

// eventKey returns the hash key holding an event's metadata.
func eventKey(eventID string) string { return "event:" + eventID }

// EventRepo provides access to event metadata in the lease store.  Events
// are created once and never mutated or deleted; their lifetime is
// whatever the store retains.
type EventRepo struct {
    store store.LeaseStore
}

// NewEventRepo returns a new EventRepo bound to the provided store.
func NewEventRepo(st store.LeaseStore) *EventRepo {
    if st == nil {
        panic("nil store passed to NewEventRepo")
    }
    return &EventRepo{store: st}
}

// Create generates a fresh event id and persists the event's capacity and
// display name.  Identifier collisions are made negligible by the width of
// the random suffix, not checked explicitly.
func (r *EventRepo) Create(ctx context.Context, totalSeats int, name string) (model.Event, error) {
    ev := model.Event{
        ID:         utils.NewEventID(),
        TotalSeats: totalSeats,
        Name:       name,
    }
    err := r.store.SetFields(ctx, eventKey(ev.ID), map[string]string{
        fieldTotalSeats: strconv.Itoa(ev.TotalSeats),
        fieldName:       ev.Name,
    })
    if err != nil {
        return model.Event{}, fmt.Errorf("create event: %w", err)
    }
    return ev, nil
}

// Get reads an event's metadata.  Returns ErrEventNotFound when no
// metadata exists for the id.
func (r *EventRepo) Get(ctx context.Context, eventID string) (model.Event, error) {
    fields, err := r.store.GetAllFields(ctx, eventKey(eventID))
    if err != nil {
        return model.Event{}, fmt.Errorf("get event: %w", err)
    }
    total, err := strconv.Atoi(fields[fieldTotalSeats])
    if err != nil || total <= 0 {
        return model.Event{}, ErrEventNotFound
    }
    return model.Event{ID: eventID, TotalSeats: total, Name: fields[fieldName]}, nil
}

// TotalSeats reads only an event's capacity.  Returns ErrEventNotFound
// when the capacity cannot be read.
func (r *EventRepo) TotalSeats(ctx context.Context, eventID string) (int, error) {
    v, ok, err := r.store.GetField(ctx, eventKey(eventID), fieldTotalSeats)
    if err != nil {
        return 0, fmt.Errorf("get event capacity: %w", err)
    }
    if !ok {
        return 0, ErrEventNotFound
    }
    total, err := strconv.Atoi(v)
    if err != nil || total <= 0 {
        return 0, ErrEventNotFound
    }
    return total, nil
}
