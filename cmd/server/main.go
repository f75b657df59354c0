package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/config"
    "github.com/iliyamo/event-seat-reservation/internal/database"
    "github.com/iliyamo/event-seat-reservation/internal/handler"
    appmw "github.com/iliyamo/event-seat-reservation/internal/middleware"
    "github.com/iliyamo/event-seat-reservation/internal/queue"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/router"
    "github.com/iliyamo/event-seat-reservation/internal/store"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win

    cfg := config.Load()

    // Redis is the lease store and the arbiter of every seat lease.
    // Without it there is nothing to serve, so fail hard — unlike the
    // rate limiter, which merely degrades.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Fatal("cannot connect to redis; the lease store is required")
    }
    leaseStore := store.NewRedis(rdb)

    eventRepo := repository.NewEventRepo(leaseStore)
    seatRepo := repository.NewSeatLeaseRepo(leaseStore, eventRepo, cfg.UserMaxSeats)

    // seat.reserved audit trail: publisher on the API side, consumer
    // archiving into MySQL.  Both optional.
    var pub handler.ReservationPublisher
    if cfg.RabbitURL != "" {
        pub = queue.NewPublisher(cfg.RabbitURL)
        if cfg.DBHost != "" {
            db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
            if err != nil {
                log.Printf("audit archive disabled: %v", err)
            } else {
                audit := repository.NewAuditRepo(db)
                if err := audit.EnsureSchema(context.Background()); err != nil {
                    log.Printf("audit archive disabled: %v", err)
                } else {
                    go func() {
                        if err := queue.StartSeatReservedConsumer(cfg.RabbitURL, audit); err != nil {
                            log.Printf("seat-reserved consumer stopped: %v", err)
                        }
                    }()
                }
            }
        }
    }

    e := echo.New()
    e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    router.RegisterRoutes(e)
    router.RegisterReservation(e,
        handler.NewEventHandler(eventRepo),
        handler.NewSeatHandler(seatRepo, pub, cfg.HoldTTL, cfg.HoldTTLMax),
    )

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
