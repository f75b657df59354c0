package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Archiver persists one confirmed reservation.  Implemented by
// repository.AuditRepo.
type Archiver interface {
    Insert(ctx context.Context, eventID string, seatNumber int, userID string, reservedAt time.Time) error
}

// StartSeatReservedConsumer connects to RabbitMQ, declares the durable
// seat.reserved queue and archives every message through the provided
// Archiver.  It runs a reconnect loop with exponential backoff and never
// returns under normal operation; processing errors are logged and the
// offending message is rejected without requeue so the loop keeps moving.
func StartSeatReservedConsumer(url string, archive Archiver) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("seat-reserved-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, archive); err != nil {
            log.Printf("seat-reserved-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection, archive Archiver) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("seat-reserved-consumer: set QoS failed: %v", err)
    }

    if _, err = ch.QueueDeclare(SeatReservedQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(SeatReservedQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body, archive); err != nil {
            log.Printf("seat-reserved-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, archive Archiver) error {
    var ev SeatReservedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    reservedAt, err := time.Parse(time.RFC3339, ev.ReservedAt)
    if err != nil {
        reservedAt = time.Now().UTC()
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := archive.Insert(ctx, ev.EventID, ev.SeatNumber, ev.UserID, reservedAt); err != nil {
        return fmt.Errorf("archive insert: %w", err)
    }
    return nil
}
