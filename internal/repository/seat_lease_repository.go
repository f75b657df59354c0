package repository

import (
    "context"
    "fmt"
    "strconv"
    "time"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/store"
)

// reservedTTL is the effectively-infinite expiry applied when a hold is
// promoted to a reservation.  A reservation is a very large finite ttl
// rather than a truly unexpiring field: HEXPIRE GT against this value can
// never succeed, which is exactly what makes a reservation immune to
// refresh, whereas a persisted field has no expiry for GT to compare
// against and would change refresh semantics.
const reservedTTL = 100 * 365 * 24 * time.Hour

// reservedThreshold separates a promoted lease from any refreshable hold
// when inspecting remaining ttl.  No legal hold ttl comes anywhere near
// half a century.
const reservedThreshold = reservedTTL / 2

// seatsKey returns the hash key holding an event's seat leases.  Each
// field is a decimal seat number, its value the owning user id, its
// field-level expiry the lease lifetime.  The store removes expired
// fields on its own, which is how holds lapse.
func seatsKey(eventID string) string { return "seats:" + eventID }

// seatField converts a seat number to its store field name.
func seatField(seat int) string { return strconv.Itoa(seat) }

// SeatLeaseRepo is the seat ledger: it arbitrates contested seat holds,
// extends them, promotes them to reservations and derives availability.
// It keeps no state of its own — every process runs against the same
// store and all serialization comes from the store's atomic primitives.
type SeatLeaseRepo struct {
    store        store.LeaseStore
    events       *EventRepo
    userMaxSeats int // 0 disables the per-user quota

    now func() time.Time // injectable for tests
}

// NewSeatLeaseRepo returns a ledger bound to the given store and event
// registry.  userMaxSeats caps how many seats (held or reserved) one user
// may occupy within one event; zero means unlimited.
func NewSeatLeaseRepo(st store.LeaseStore, events *EventRepo, userMaxSeats int) *SeatLeaseRepo {
    if st == nil || events == nil {
        panic("nil dependency passed to NewSeatLeaseRepo")
    }
    return &SeatLeaseRepo{
        store:        st,
        events:       events,
        userMaxSeats: userMaxSeats,
        now:          time.Now,
    }
}

// occupancy counts the live leases (held or reserved alike) owned by
// userID within the event.  Expired holds are already gone from the store
// and therefore never counted.
func (r *SeatLeaseRepo) occupancy(ctx context.Context, eventID, userID string) (int, error) {
    fields, err := r.store.GetAllFields(ctx, seatsKey(eventID))
    if err != nil {
        return 0, fmt.Errorf("count user seats: %w", err)
    }
    n := 0
    for _, owner := range fields {
        if owner == userID {
            n++
        }
    }
    return n, nil
}

// Hold attempts to claim a free seat for userID with the given ttl.
//
// The quota check is a snapshot read that is intentionally not serialized
// with the acquire below: under adversarial concurrent timing a user can
// end up one seat over quota.  Serializing it would mean locking the whole
// per-event seat collection for every hold; the window is accepted.
//
// The acquire itself is a single atomic store operation — set the owner
// only if the seat is free AND attach the expiry only if none exists.  Of
// any number of concurrent competitors for one seat exactly one wins; the
// rest fail with ErrSeatAlreadyHeld and leave no trace.
func (r *SeatLeaseRepo) Hold(ctx context.Context, eventID, userID string, seat int, ttl time.Duration) (model.SeatLease, error) {
    total, err := r.events.TotalSeats(ctx, eventID)
    if err != nil {
        return model.SeatLease{}, err
    }
    if seat < 1 || seat > total {
        return model.SeatLease{}, ErrSeatOutOfRange
    }

    if r.userMaxSeats > 0 {
        n, err := r.occupancy(ctx, eventID, userID)
        if err != nil {
            return model.SeatLease{}, err
        }
        if n >= r.userMaxSeats {
            return model.SeatLease{}, ErrQuotaExceeded
        }
    }

    ok, err := r.store.AcquireField(ctx, seatsKey(eventID), seatField(seat), userID, ttl)
    if err != nil {
        return model.SeatLease{}, fmt.Errorf("hold seat: %w", err)
    }
    if !ok {
        return model.SeatLease{}, ErrSeatAlreadyHeld
    }
    return model.SeatLease{
        EventID:    eventID,
        SeatNumber: seat,
        UserID:     userID,
        ExpiresAt:  r.now().UTC().Add(ttl),
    }, nil
}

// Refresh extends a hold owned by userID.  The store only applies the new
// expiry when it is strictly later than the current one, so a refresh can
// never shorten a hold.  A refresh racing the exact expiry instant may
// lose and report ErrRefreshRejected even though the caller "should" still
// own the seat; that boundary is accepted, not compensated.
func (r *SeatLeaseRepo) Refresh(ctx context.Context, eventID, userID string, seat int, ttl time.Duration) (model.SeatLease, error) {
    key, field := seatsKey(eventID), seatField(seat)

    owner, ok, err := r.store.GetField(ctx, key, field)
    if err != nil {
        return model.SeatLease{}, fmt.Errorf("refresh seat: %w", err)
    }
    if !ok || owner != userID {
        return model.SeatLease{}, ErrSeatNotHeldByUser
    }

    applied, err := r.store.ExpireField(ctx, key, field, ttl, store.IfGreater)
    if err != nil {
        return model.SeatLease{}, fmt.Errorf("refresh seat: %w", err)
    }
    if !applied {
        // The extend was refused.  A remaining ttl beyond any legal hold
        // can only mean the lease was promoted; otherwise the requested
        // expiry simply was not later than the current one (or the hold
        // lapsed while we were looking).
        if rem, exists, err := r.store.FieldTTL(ctx, key, field); err == nil && exists && rem > reservedThreshold {
            return model.SeatLease{}, ErrSeatAlreadyReserved
        }
        return model.SeatLease{}, ErrRefreshRejected
    }
    return model.SeatLease{
        EventID:    eventID,
        SeatNumber: seat,
        UserID:     userID,
        ExpiresAt:  r.now().UTC().Add(ttl),
    }, nil
}

// Reserve promotes a hold owned by userID into a reservation by swapping
// its finite expiry for reservedTTL, conditioned on the lease still being
// present.  If the hold expires between the ownership read and the swap,
// the conditional write refuses and the call fails; nothing is rolled
// back because nothing was written.
func (r *SeatLeaseRepo) Reserve(ctx context.Context, eventID, userID string, seat int) error {
    key, field := seatsKey(eventID), seatField(seat)

    owner, ok, err := r.store.GetField(ctx, key, field)
    if err != nil {
        return fmt.Errorf("reserve seat: %w", err)
    }
    if !ok || owner != userID {
        return ErrSeatNotHeldByUser
    }

    applied, err := r.store.ExpireField(ctx, key, field, reservedTTL, store.IfFieldExists)
    if err != nil {
        return fmt.Errorf("reserve seat: %w", err)
    }
    if !applied {
        return ErrSeatNotHeldByUser
    }
    return nil
}

// GetSeat reads the current owner of a seat, held or reserved.  The seat
// number is not range-checked; an out-of-range seat simply has no owner.
func (r *SeatLeaseRepo) GetSeat(ctx context.Context, eventID string, seat int) (string, bool, error) {
    owner, ok, err := r.store.GetField(ctx, seatsKey(eventID), seatField(seat))
    if err != nil {
        return "", false, fmt.Errorf("get seat: %w", err)
    }
    return owner, ok, nil
}

// AvailableSeats returns the ascending seat numbers of the event that
// currently carry no lease.  The full complement is recomputed on every
// call — O(totalSeats) with capacity bounded at 1000 — by diffing the
// capacity against the live lease fields; expired holds have already been
// removed by the store.
func (r *SeatLeaseRepo) AvailableSeats(ctx context.Context, eventID string) ([]int, error) {
    total, err := r.events.TotalSeats(ctx, eventID)
    if err != nil {
        return nil, err
    }
    names, err := r.store.ListFields(ctx, seatsKey(eventID))
    if err != nil {
        return nil, fmt.Errorf("list seats: %w", err)
    }
    leased := make(map[int]struct{}, len(names))
    for _, name := range names {
        if n, err := strconv.Atoi(name); err == nil {
            leased[n] = struct{}{}
        }
    }
    available := make([]int, 0, total-len(leased))
    for seat := 1; seat <= total; seat++ {
        if _, ok := leased[seat]; !ok {
            available = append(available, seat)
        }
    }
    return available, nil
}
