package store

import (
    "context"
    "strconv"
    "sync"
    "testing"
    "time"
)

// testClock is an advanceable clock so expiry can be exercised without
// sleeping.
type testClock struct {
    mu sync.Mutex
    t  time.Time
}

func newTestClock() *testClock {
    return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *testClock) Advance(d time.Duration) {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.t = c.t.Add(d)
}

func TestMemorySetFieldIfAbsent(t *testing.T) {
    t.Parallel()
    ctx := context.Background()
    s := NewMemory()

    ok, err := s.SetFieldIfAbsent(ctx, "h", "f", "a")
    if err != nil || !ok {
        t.Fatalf("first set: ok=%v err=%v", ok, err)
    }
    ok, err = s.SetFieldIfAbsent(ctx, "h", "f", "b")
    if err != nil || ok {
        t.Fatalf("second set should be refused: ok=%v err=%v", ok, err)
    }
    v, present, err := s.GetField(ctx, "h", "f")
    if err != nil || !present || v != "a" {
        t.Fatalf("value overwritten: v=%q present=%v err=%v", v, present, err)
    }
}

func TestMemoryExpireFieldModes(t *testing.T) {
    t.Parallel()
    ctx := context.Background()

    t.Run("IfNoExpiry only fires once", func(t *testing.T) {
        s := NewMemoryWithClock(newTestClock().Now)
        s.SetFieldIfAbsent(ctx, "h", "f", "a")

        if ok, _ := s.ExpireField(ctx, "h", "f", time.Minute, IfNoExpiry); !ok {
            t.Fatal("first NX expire should apply")
        }
        if ok, _ := s.ExpireField(ctx, "h", "f", time.Hour, IfNoExpiry); ok {
            t.Fatal("second NX expire should be refused")
        }
    })

    t.Run("IfGreater requires a strictly later expiry", func(t *testing.T) {
        s := NewMemoryWithClock(newTestClock().Now)
        s.SetFieldIfAbsent(ctx, "h", "f", "a")
        s.ExpireField(ctx, "h", "f", time.Minute, IfNoExpiry)

        if ok, _ := s.ExpireField(ctx, "h", "f", 30*time.Second, IfGreater); ok {
            t.Fatal("shorter expiry must not apply under GT")
        }
        if ok, _ := s.ExpireField(ctx, "h", "f", time.Minute, IfGreater); ok {
            t.Fatal("equal expiry must not apply under GT")
        }
        if ok, _ := s.ExpireField(ctx, "h", "f", 2*time.Minute, IfGreater); !ok {
            t.Fatal("later expiry should apply under GT")
        }
    })

    t.Run("IfFieldExists replaces any expiry", func(t *testing.T) {
        s := NewMemoryWithClock(newTestClock().Now)
        s.SetFieldIfAbsent(ctx, "h", "f", "a")
        s.ExpireField(ctx, "h", "f", time.Hour, IfNoExpiry)

        if ok, _ := s.ExpireField(ctx, "h", "f", time.Second, IfFieldExists); !ok {
            t.Fatal("XX expire should apply to an existing field")
        }
        if ok, _ := s.ExpireField(ctx, "h", "missing", time.Second, IfFieldExists); ok {
            t.Fatal("XX expire must not apply to a missing field")
        }
    })
}

func TestMemoryFieldExpiry(t *testing.T) {
    t.Parallel()
    ctx := context.Background()
    clk := newTestClock()
    s := NewMemoryWithClock(clk.Now)

    s.SetFieldIfAbsent(ctx, "h", "f", "a")
    s.ExpireField(ctx, "h", "f", time.Minute, IfNoExpiry)

    rem, present, _ := s.FieldTTL(ctx, "h", "f")
    if !present || rem != time.Minute {
        t.Fatalf("ttl = %v present=%v, want 1m", rem, present)
    }

    clk.Advance(59 * time.Second)
    if _, present, _ := s.GetField(ctx, "h", "f"); !present {
        t.Fatal("field vanished before its expiry")
    }

    clk.Advance(2 * time.Second)
    if _, present, _ := s.GetField(ctx, "h", "f"); present {
        t.Fatal("field survived its expiry")
    }
    if names, _ := s.ListFields(ctx, "h"); len(names) != 0 {
        t.Fatalf("expired field still enumerated: %v", names)
    }
    if _, present, _ := s.FieldTTL(ctx, "h", "f"); present {
        t.Fatal("expired field still reports a ttl")
    }
}

func TestMemoryAcquireField(t *testing.T) {
    t.Parallel()
    ctx := context.Background()

    t.Run("acquires a free field with its expiry", func(t *testing.T) {
        clk := newTestClock()
        s := NewMemoryWithClock(clk.Now)
        ok, err := s.AcquireField(ctx, "h", "1", "USR-a", time.Minute)
        if err != nil || !ok {
            t.Fatalf("acquire: ok=%v err=%v", ok, err)
        }
        rem, present, _ := s.FieldTTL(ctx, "h", "1")
        if !present || rem != time.Minute {
            t.Fatalf("acquired field ttl = %v present=%v", rem, present)
        }
    })

    t.Run("refuses an occupied field and leaves no trace", func(t *testing.T) {
        clk := newTestClock()
        s := NewMemoryWithClock(clk.Now)
        s.AcquireField(ctx, "h", "1", "USR-a", time.Minute)

        ok, err := s.AcquireField(ctx, "h", "1", "USR-b", time.Hour)
        if err != nil || ok {
            t.Fatalf("second acquire should lose: ok=%v err=%v", ok, err)
        }
        // Neither the owner nor the expiry may have been touched.
        v, _, _ := s.GetField(ctx, "h", "1")
        if v != "USR-a" {
            t.Fatalf("owner changed to %q", v)
        }
        rem, _, _ := s.FieldTTL(ctx, "h", "1")
        if rem != time.Minute {
            t.Fatalf("expiry changed to %v", rem)
        }
    })

    t.Run("exactly one concurrent acquire wins", func(t *testing.T) {
        s := NewMemory()
        const n = 32
        wins := make(chan bool, n)
        var wg sync.WaitGroup
        for i := 0; i < n; i++ {
            wg.Add(1)
            go func(i int) {
                defer wg.Done()
                ok, err := s.AcquireField(ctx, "h", "1", "USR-"+strconv.Itoa(i), time.Minute)
                if err != nil {
                    t.Errorf("acquire error: %v", err)
                }
                wins <- ok
            }(i)
        }
        wg.Wait()
        close(wins)
        won := 0
        for ok := range wins {
            if ok {
                won++
            }
        }
        if won != 1 {
            t.Fatalf("want exactly 1 winner, got %d", won)
        }
    })
}

func TestMemorySetFieldsAndListing(t *testing.T) {
    t.Parallel()
    ctx := context.Background()
    s := NewMemory()

    err := s.SetFields(ctx, "event:EVT-x", map[string]string{"totalSeats": "10", "name": "Ibiza Beach Party"})
    if err != nil {
        t.Fatalf("SetFields: %v", err)
    }
    fields, err := s.GetAllFields(ctx, "event:EVT-x")
    if err != nil || len(fields) != 2 || fields["totalSeats"] != "10" {
        t.Fatalf("GetAllFields = %v err=%v", fields, err)
    }
    names, _ := s.ListFields(ctx, "event:EVT-x")
    if len(names) != 2 || names[0] != "name" || names[1] != "totalSeats" {
        t.Fatalf("ListFields not sorted: %v", names)
    }
}
