package service

import (
	"context"

	"parkspot/pkg/model"
)

// EventPublisher delivers booking lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

// NoopPublisher drops every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.BookingEvent) error {
	return nil
}
