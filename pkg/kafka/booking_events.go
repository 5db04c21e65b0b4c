package kafka

import (
	"context"
	"fmt"

	"parkspot/pkg/logger"
	"parkspot/pkg/model"
)

const BookingEventSchemaVersion = "1"

// BookingEventPublisher publishes booking lifecycle events keyed by spot, so
// every event of one spot lands on the same partition in order.
type BookingEventPublisher struct {
	producer    *Producer
	source      string
	correlation func(context.Context) string
}

// NewBookingEventPublisher builds a publisher. correlation, when non-nil,
// extracts the request id carried by ctx.
func NewBookingEventPublisher(producer *Producer, source string, correlation func(context.Context) string) *BookingEventPublisher {
	return &BookingEventPublisher{
		producer:    producer,
		source:      source,
		correlation: correlation,
	}
}

func (p *BookingEventPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	builder := NewMessage().
		WithKey(event.SpotID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(BookingEventSchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt)
	if p.correlation != nil {
		builder.WithCorrelationID(p.correlation(ctx))
	}

	msg, err := builder.Build()
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *BookingEventPublisher) Close() error {
	return p.producer.Close()
}

// NewBookingAuditHandler writes every booking event to the audit log.
// Payloads that cannot be decoded are permanent failures.
func NewBookingAuditHandler(log *logger.Logger) MessageHandler {
	return func(_ context.Context, msg Message) error {
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return NewPermanentError("decode booking event", err)
		}

		switch event.Type {
		case model.EventBookingCreated, model.EventBookingCancelled:
		default:
			return NewPermanentError(fmt.Sprintf("unknown booking event type %q", event.Type), nil)
		}
		if event.BookingID == "" {
			return NewPermanentError("booking event without booking id", nil)
		}

		log.Info("Booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"spot_id", event.SpotID,
			"driver_id", event.DriverID,
			"host_id", event.HostID,
			"start_time", event.StartTime,
			"end_time", event.EndTime,
			"total_cost", event.TotalCost,
			"status", event.Status,
			"occurred_at", event.OccurredAt,
			"event_id", msg.EventID(),
			"correlation_id", msg.CorrelationID(),
		)
		return nil
	}
}
