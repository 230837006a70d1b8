package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/line-monitor/internal/queue"
)

// EventPublisher delivers report events to the broker.  Failures are
// returned, not logged; callers treat them as non-fatal because the store
// change has already committed.
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, ev q.ReportEvent) error
}

// NewEventPublisher returns an AMQP publisher for url, or a NopPublisher
// when url is empty.
func NewEventPublisher(url string) EventPublisher {
	if url == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{url: url, queue: q.ReportEventsQueue}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishReportEvent(context.Context, q.ReportEvent) error { return nil }

// AMQPPublisher opens a short-lived connection per event, declares the
// durable queue and publishes a persistent JSON message on the default
// exchange.
type AMQPPublisher struct {
	url   string
	queue string
}

func (p *AMQPPublisher) PublishReportEvent(ctx context.Context, ev q.ReportEvent) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         "report." + ev.Action,
		Body:         body,
	})
}
