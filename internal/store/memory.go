package store

import (
    "context"
    "sort"
    "sync"
    "time"
)

// Memory is an in-process LeaseStore with the same conditional-write and
// field-expiry semantics as the Redis implementation.  It exists for
// tests and for running the service locally without a Redis server; it
// offers no durability and no cross-process sharing.
//
// Expired fields are pruned lazily on access, mirroring how they simply
// stop being observable in Redis.
type Memory struct {
    mu   sync.Mutex
    data map[string]map[string]memField
    now  func() time.Time
}

type memField struct {
    value     string
    expiresAt time.Time // zero means no expiry
}

// NewMemory returns an empty store using the wall clock.
func NewMemory() *Memory {
    return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock returns an empty store that reads time from now.
// Tests inject an advanceable clock to exercise expiry without sleeping.
func NewMemoryWithClock(now func() time.Time) *Memory {
    return &Memory{data: make(map[string]map[string]memField), now: now}
}

// prune drops expired fields of key.  Caller must hold mu.
func (s *Memory) prune(key string) map[string]memField {
    fields := s.data[key]
    t := s.now()
    for name, f := range fields {
        if !f.expiresAt.IsZero() && !f.expiresAt.After(t) {
            delete(fields, name)
        }
    }
    return fields
}

func (s *Memory) SetFieldIfAbsent(_ context.Context, key, field, value string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.setIfAbsent(key, field, value), nil
}

func (s *Memory) setIfAbsent(key, field, value string) bool {
    fields := s.prune(key)
    if fields == nil {
        fields = make(map[string]memField)
        s.data[key] = fields
    }
    if _, ok := fields[field]; ok {
        return false
    }
    fields[field] = memField{value: value}
    return true
}

func (s *Memory) ExpireField(_ context.Context, key, field string, ttl time.Duration, mode ExpiryMode) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.expire(key, field, ttl, mode), nil
}

func (s *Memory) expire(key, field string, ttl time.Duration, mode ExpiryMode) bool {
    fields := s.prune(key)
    f, ok := fields[field]
    if !ok {
        return false
    }
    next := s.now().Add(ttl)
    switch mode {
    case IfNoExpiry:
        if !f.expiresAt.IsZero() {
            return false
        }
    case IfGreater:
        if !f.expiresAt.IsZero() && !next.After(f.expiresAt) {
            return false
        }
    }
    f.expiresAt = next
    fields[field] = f
    return true
}

func (s *Memory) AcquireField(_ context.Context, key, field, value string, ttl time.Duration) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    set := s.setIfAbsent(key, field, value)
    applied := s.expire(key, field, ttl, IfNoExpiry)
    return set && applied, nil
}

func (s *Memory) GetField(_ context.Context, key, field string) (string, bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    f, ok := s.prune(key)[field]
    if !ok {
        return "", false, nil
    }
    return f.value, true, nil
}

func (s *Memory) GetAllFields(_ context.Context, key string) (map[string]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make(map[string]string)
    for name, f := range s.prune(key) {
        out[name] = f.value
    }
    return out, nil
}

func (s *Memory) ListFields(_ context.Context, key string) ([]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var names []string
    for name := range s.prune(key) {
        names = append(names, name)
    }
    sort.Strings(names)
    return names, nil
}

func (s *Memory) FieldTTL(_ context.Context, key, field string) (time.Duration, bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    f, ok := s.prune(key)[field]
    if !ok {
        return 0, false, nil
    }
    if f.expiresAt.IsZero() {
        return 0, true, nil
    }
    return f.expiresAt.Sub(s.now()), true, nil
}

func (s *Memory) SetFields(_ context.Context, key string, values map[string]string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    fields := s.prune(key)
    if fields == nil {
        fields = make(map[string]memField)
        s.data[key] = fields
    }
    for name, v := range values {
        f := fields[name]
        f.value = v
        fields[name] = f
    }
    return nil
}
