package utils

import "testing"

func TestIdentifiers(t *testing.T) {
    t.Parallel()

    t.Run("carry their kind prefix", func(t *testing.T) {
        if id := NewEventID(); !IsEventID(id) || IsUserID(id) {
            t.Fatalf("event id %q", id)
        }
        if id := NewUserID(); !IsUserID(id) || IsEventID(id) {
            t.Fatalf("user id %q", id)
        }
    })

    t.Run("have a fixed width", func(t *testing.T) {
        want := len(EventIDPrefix) + 2*idSuffixBytes
        if id := NewEventID(); len(id) != want {
            t.Fatalf("len(%q) = %d, want %d", id, len(id), want)
        }
    })

    t.Run("do not repeat", func(t *testing.T) {
        seen := make(map[string]bool)
        for i := 0; i < 1000; i++ {
            id := NewUserID()
            if seen[id] {
                t.Fatalf("duplicate id %q", id)
            }
            seen[id] = true
        }
    })

    t.Run("validation is prefix-only", func(t *testing.T) {
        // Deliberately shallow: any suffix passes.
        if !IsEventID("EVT-") || !IsEventID("EVT-anything") {
            t.Fatal("prefix check rejected a prefixed string")
        }
        if IsEventID("USR-123") || IsEventID("evt-123") || IsEventID("") {
            t.Fatal("prefix check accepted a non-event id")
        }
    })
}
