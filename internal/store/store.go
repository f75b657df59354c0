// Package store defines the contract the reservation core requires from
// the key-value store that arbitrates seat leases.  The store is the only
// shared mutable resource in the system: every process talks to the same
// store and all serialization comes from the store's conditional
// primitives, never from in-process locks.
//
// Seat leases live as fields of a hash keyed per event.  A field carries
// its own expiry; once the expiry elapses the store removes the field on
// its own and it stops appearing in enumeration results.
package store

import (
    "context"
    "time"
)

// ExpiryMode selects the condition under which ExpireField applies a new
// time-to-live to a hash field.
type ExpiryMode int

const (
    // IfNoExpiry sets the ttl only when the field has no expiry yet.
    IfNoExpiry ExpiryMode = iota
    // IfFieldExists sets the ttl whenever the field is present,
    // replacing any previous expiry.
    IfFieldExists
    // IfGreater sets the ttl only when the new expiry is strictly later
    // than the field's current one.
    IfGreater
)

// LeaseStore is the set of primitives the reservation core needs.  Every
// method is a single round trip; AcquireField is the only multi-command
// operation and the implementation must guarantee it executes atomically
// with respect to concurrent callers.
type LeaseStore interface {
    // SetFieldIfAbsent writes value under field only when the field does
    // not exist.  Reports whether the write took effect.
    SetFieldIfAbsent(ctx context.Context, key, field, value string) (bool, error)

    // ExpireField applies ttl to field subject to mode.  Returns false
    // (without error) when the condition is not met or the field is gone.
    ExpireField(ctx context.Context, key, field string, ttl time.Duration, mode ExpiryMode) (bool, error)

    // AcquireField atomically sets value under field if absent AND applies
    // ttl if the field has no expiry.  Either both take effect or neither
    // leaves any trace; true only when both did.
    AcquireField(ctx context.Context, key, field, value string, ttl time.Duration) (bool, error)

    // GetField reads a single field.  The bool reports presence.
    GetField(ctx context.Context, key, field string) (string, bool, error)

    // GetAllFields reads every live (non-expired) field of the hash.
    GetAllFields(ctx context.Context, key string) (map[string]string, error)

    // ListFields enumerates the names of every live field of the hash.
    ListFields(ctx context.Context, key string) ([]string, error)

    // FieldTTL reports the remaining time-to-live of a field.  The bool is
    // false when the field does not exist; a present field with no expiry
    // reports a zero duration.
    FieldTTL(ctx context.Context, key, field string) (time.Duration, bool, error)

    // SetFields writes the given fields unconditionally (used for event
    // metadata, which is immutable after creation).
    SetFields(ctx context.Context, key string, fields map[string]string) error
}
