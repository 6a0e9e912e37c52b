package events

import (
	"context"
	"time"

	"visitly/pkg/kafka"
	"visitly/pkg/logger"
	"visitly/pkg/middleware"
	"visitly/pkg/model"

	"github.com/google/uuid"
)

type EventType string

const (
	BookingCreated         EventType = "booking.created"
	BookingConfirmed       EventType = "booking.confirmed"
	BookingCancelled       EventType = "booking.cancelled"
	BookingCompleted       EventType = "booking.completed"
	BookingStaffAssigned   EventType = "booking.staff_assigned"
	BookingStaffUnassigned EventType = "booking.staff_unassigned"
)

const Source = "visitly-scheduler"

// Event is the payload written to the booking events topic.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	TenantID   model.TenantID `json:"tenant_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Booking    *model.Booking `json:"booking"`
}

// Publisher is told about every committed booking state change. It never
// fails the caller: the booking is already persisted.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, booking *model.Booking)
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
	log      *logger.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer MessagePublisher, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
		now:      time.Now,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType EventType, booking *model.Booking) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TenantID:   booking.TenantID,
		OccurredAt: p.now().UTC(),
		Booking:    booking,
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(eventType)).
		WithTenantID(booking.TenantID.String()).
		WithSource(Source).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event",
			logger.TENANT, booking.TenantID,
			"booking_id", booking.ID,
			"event_type", eventType,
			"error", err,
		)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			logger.TENANT, booking.TenantID,
			"booking_id", booking.ID,
			"event_type", eventType,
			"error_type", kafka.ClassifyError(err).String(),
			"error", err,
		)
	}
}

// NopPublisher drops events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EventType, *model.Booking) {}
