package queue

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits seat.reserved events to RabbitMQ.  A connection is
// dialed per publish: reservations are low-frequency compared to holds
// and a standing connection would need its own supervision.  Any error is
// logged and returned so the caller can choose to ignore it — publishing
// never blocks a reservation.
type Publisher struct {
    url string
}

// NewPublisher returns a publisher targeting the given AMQP URL.
func NewPublisher(url string) *Publisher {
    return &Publisher{url: url}
}

// PublishSeatReserved declares the durable seat.reserved queue
// (idempotent) and publishes the event as a persistent JSON message.
func (p *Publisher) PublishSeatReserved(ctx context.Context, event SeatReservedEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        SeatReservedQueueName, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", SeatReservedQueueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
