// Package utils holds small helpers with no dependencies on the rest of
// the application.
package utils

import (
    "crypto/rand"
    "encoding/hex"
    "strings"
)

// Identifier prefixes.  An id's kind is structurally verifiable from its
// prefix and nothing else; uniqueness is probabilistic, guaranteed by the
// width of the random suffix rather than by any global check.
const (
    EventIDPrefix = "EVT-"
    UserIDPrefix  = "USR-"
)

// idSuffixBytes is the entropy of the random suffix (32 hex characters).
const idSuffixBytes = 16

// newID returns prefix followed by a cryptographically random hex suffix.
// crypto/rand.Read never fails on supported platforms; if it ever does
// there is no sane way to continue issuing identifiers.
func newID(prefix string) string {
    b := make([]byte, idSuffixBytes)
    if _, err := rand.Read(b); err != nil {
        panic("utils: crypto/rand failed: " + err.Error())
    }
    return prefix + hex.EncodeToString(b)
}

// NewEventID returns a fresh event identifier.
func NewEventID() string { return newID(EventIDPrefix) }

// NewUserID returns a fresh user identifier.
func NewUserID() string { return newID(UserIDPrefix) }

// IsEventID reports whether s carries the event id prefix.  The check is
// deliberately shallow.
func IsEventID(s string) bool { return strings.HasPrefix(s, EventIDPrefix) }

// IsUserID reports whether s carries the user id prefix.
func IsUserID(s string) bool { return strings.HasPrefix(s, UserIDPrefix) }
