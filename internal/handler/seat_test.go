package handler_test

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/handler"
    "github.com/iliyamo/event-seat-reservation/internal/queue"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/router"
    "github.com/iliyamo/event-seat-reservation/internal/store"
)

// capturePublisher records seat.reserved events instead of talking to a
// broker.
type capturePublisher struct {
    events []queue.SeatReservedEvent
}

func (p *capturePublisher) PublishSeatReserved(_ context.Context, ev queue.SeatReservedEvent) error {
    p.events = append(p.events, ev)
    return nil
}

// newAPI wires the full route table over a fresh memory store.
func newAPI(t *testing.T, userMaxSeats int) (*echo.Echo, *capturePublisher) {
    t.Helper()
    st := store.NewMemory()
    events := repository.NewEventRepo(st)
    seats := repository.NewSeatLeaseRepo(st, events, userMaxSeats)
    pub := &capturePublisher{}

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterReservation(e,
        handler.NewEventHandler(events),
        handler.NewSeatHandler(seats, pub, time.Minute, 15*time.Minute),
    )
    return e, pub
}

// do issues a request against the in-memory API and decodes the JSON
// response body into a generic map.
func do(t *testing.T, e *echo.Echo, method, path, body string) (int, map[string]any) {
    t.Helper()
    var reader *strings.Reader
    if body == "" {
        reader = strings.NewReader("")
    } else {
        reader = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, path, reader)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    out := map[string]any{}
    if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
            t.Fatalf("decode %s %s response: %v (%s)", method, path, err, rec.Body.String())
        }
    }
    return rec.Code, out
}

func createEvent(t *testing.T, e *echo.Echo) string {
    t.Helper()
    code, body := do(t, e, http.MethodPost, "/v1/events", `{"name":"Ibiza Beach Party","totalSeats":10}`)
    if code != http.StatusCreated {
        t.Fatalf("create event: status %d body %v", code, body)
    }
    id, _ := body["eventId"].(string)
    if !strings.HasPrefix(id, "EVT-") {
        t.Fatalf("eventId = %q", id)
    }
    return id
}

func availableSeats(t *testing.T, e *echo.Echo, eventID string) []int {
    t.Helper()
    code, body := do(t, e, http.MethodGet, "/v1/events/"+eventID+"/seats", "")
    if code != http.StatusOK {
        t.Fatalf("list seats: status %d body %v", code, body)
    }
    raw, _ := body["availableSeats"].([]any)
    out := make([]int, 0, len(raw))
    for _, v := range raw {
        out = append(out, int(v.(float64)))
    }
    return out
}

func TestHealth(t *testing.T) {
    t.Parallel()
    e, _ := newAPI(t, 0)
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
        t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
    }
}

func TestCreateEventValidation(t *testing.T) {
    t.Parallel()
    e, _ := newAPI(t, 0)

    cases := []struct {
        name string
        body string
    }{
        {"missing name", `{"totalSeats":10}`},
        {"name too long", `{"name":"` + strings.Repeat("x", 101) + `","totalSeats":10}`},
        {"too few seats", `{"name":"x","totalSeats":9}`},
        {"too many seats", `{"name":"x","totalSeats":1001}`},
        {"malformed json", `{"name":`},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            code, _ := do(t, e, http.MethodPost, "/v1/events", tc.body)
            if code != http.StatusBadRequest {
                t.Fatalf("status = %d, want 400", code)
            }
        })
    }
}

func TestGetEvent(t *testing.T) {
    t.Parallel()
    e, _ := newAPI(t, 0)
    eventID := createEvent(t, e)

    code, body := do(t, e, http.MethodGet, "/v1/events/"+eventID, "")
    if code != http.StatusOK {
        t.Fatalf("status = %d", code)
    }
    if body["totalSeats"].(float64) != 10 || body["name"].(string) != "Ibiza Beach Party" {
        t.Fatalf("body = %v", body)
    }

    if code, _ := do(t, e, http.MethodGet, "/v1/events/EVT-missing", ""); code != http.StatusNotFound {
        t.Fatalf("unknown event: status = %d, want 404", code)
    }
    if code, _ := do(t, e, http.MethodGet, "/v1/events/bogus", ""); code != http.StatusBadRequest {
        t.Fatalf("malformed id: status = %d, want 400", code)
    }
}

func TestHoldSeatEndpoint(t *testing.T) {
    t.Parallel()
    e, _ := newAPI(t, 0)
    eventID := createEvent(t, e)

    t.Run("hold succeeds and reports expiry", func(t *testing.T) {
        code, body := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
            `{"seatNumber":1,"userId":"USR-a"}`)
        if code != http.StatusOK || body["success"] != true {
            t.Fatalf("status=%d body=%v", code, body)
        }
        if _, err := time.Parse(time.RFC3339, body["holdExpiresAt"].(string)); err != nil {
            t.Fatalf("holdExpiresAt: %v", err)
        }
    })

    t.Run("conflicting hold is a 409", func(t *testing.T) {
        code, _ := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
            `{"seatNumber":1,"userId":"USR-b"}`)
        if code != http.StatusConflict {
            t.Fatalf("status = %d, want 409", code)
        }
    })

    t.Run("refresh flag extends the hold", func(t *testing.T) {
        code, body := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
            `{"seatNumber":1,"userId":"USR-a","ttlSeconds":300,"refresh":true}`)
        if code != http.StatusOK || body["success"] != true {
            t.Fatalf("status=%d body=%v", code, body)
        }
    })

    t.Run("refresh of a foreign hold is a 409", func(t *testing.T) {
        code, body := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
            `{"seatNumber":1,"userId":"USR-b","refresh":true}`)
        if code != http.StatusConflict || body["error"] != "seat not held by user" {
            t.Fatalf("status=%d body=%v", code, body)
        }
    })

    t.Run("validation failures are 400s", func(t *testing.T) {
        for name, body := range map[string]string{
            "bad user id":      `{"seatNumber":1,"userId":"abc"}`,
            "zero seat":        `{"seatNumber":0,"userId":"USR-a"}`,
            "ttl out of range": `{"seatNumber":2,"userId":"USR-a","ttlSeconds":99999}`,
        } {
            if code, _ := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold", body); code != http.StatusBadRequest {
                t.Fatalf("%s: status = %d, want 400", name, code)
            }
        }
    })

    t.Run("out-of-range seat is a 400", func(t *testing.T) {
        code, _ := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
            `{"seatNumber":11,"userId":"USR-a"}`)
        if code != http.StatusBadRequest {
            t.Fatalf("status = %d, want 400", code)
        }
    })

    t.Run("unknown event is a 404", func(t *testing.T) {
        code, _ := do(t, e, http.MethodPost, "/v1/events/EVT-missing/hold",
            `{"seatNumber":1,"userId":"USR-a"}`)
        if code != http.StatusNotFound {
            t.Fatalf("status = %d, want 404", code)
        }
    })
}

func TestQuotaEndpoint(t *testing.T) {
    t.Parallel()
    e, _ := newAPI(t, 1)
    eventID := createEvent(t, e)

    if code, _ := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
        `{"seatNumber":1,"userId":"USR-a"}`); code != http.StatusOK {
        t.Fatalf("first hold: status = %d", code)
    }
    code, body := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
        `{"seatNumber":2,"userId":"USR-a"}`)
    if code != http.StatusUnprocessableEntity {
        t.Fatalf("second hold: status = %d body=%v, want 422", code, body)
    }
    // The blocked seat remains free for everyone else.
    if got := availableSeats(t, e, eventID); len(got) != 9 || got[0] != 2 {
        t.Fatalf("available = %v, want 2..10", got)
    }
}

func TestReserveEndpoint(t *testing.T) {
    t.Parallel()
    e, pub := newAPI(t, 0)
    eventID := createEvent(t, e)

    do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold", `{"seatNumber":1,"userId":"USR-a"}`)

    t.Run("reserve publishes the audit event", func(t *testing.T) {
        code, body := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/reserve",
            `{"seatNumber":1,"userId":"USR-a"}`)
        if code != http.StatusOK || body["success"] != true {
            t.Fatalf("status=%d body=%v", code, body)
        }
        if len(pub.events) != 1 {
            t.Fatalf("published %d events, want 1", len(pub.events))
        }
        ev := pub.events[0]
        if ev.EventID != eventID || ev.SeatNumber != 1 || ev.UserID != "USR-a" {
            t.Fatalf("published event = %+v", ev)
        }
    })

    t.Run("reserving an unheld seat is a 409", func(t *testing.T) {
        code, _ := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/reserve",
            `{"seatNumber":2,"userId":"USR-a"}`)
        if code != http.StatusConflict {
            t.Fatalf("status = %d, want 409", code)
        }
    })

    t.Run("refreshing a reserved seat is a 409", func(t *testing.T) {
        code, body := do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold",
            `{"seatNumber":1,"userId":"USR-a","refresh":true}`)
        if code != http.StatusConflict || body["error"] != "seat already reserved" {
            t.Fatalf("status=%d body=%v", code, body)
        }
    })
}

func TestSeatLookupEndpoint(t *testing.T) {
    t.Parallel()
    e, _ := newAPI(t, 0)
    eventID := createEvent(t, e)

    do(t, e, http.MethodPost, "/v1/events/"+eventID+"/hold", `{"seatNumber":7,"userId":"USR-a"}`)

    code, body := do(t, e, http.MethodGet, "/v1/events/"+eventID+"/seats/7", "")
    if code != http.StatusOK || body["userId"] != "USR-a" {
        t.Fatalf("status=%d body=%v", code, body)
    }
    if code, _ := do(t, e, http.MethodGet, "/v1/events/"+eventID+"/seats/8", ""); code != http.StatusNotFound {
        t.Fatalf("free seat: status = %d, want 404", code)
    }
    if code, _ := do(t, e, http.MethodGet, "/v1/events/"+eventID+"/seats/abc", ""); code != http.StatusBadRequest {
        t.Fatalf("bad number: status = %d, want 400", code)
    }

    got := availableSeats(t, e, eventID)
    want := []int{1, 2, 3, 4, 5, 6, 8, 9, 10}
    if len(got) != len(want) {
        t.Fatalf("available = %v, want %v", got, want)
    }
    for i := range want {
        if got[i] != want[i] {
            t.Fatalf("available = %v, want %v", got, want)
        }
    }
}
