package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

// EventPublisher publishes gateway domain events. Publishing is
// fire-and-forget from the caller's point of view: a broker failure is
// logged, never propagated, so a flaky topic cannot fail an admin save or
// a checkout.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer, logger: util.GetLogger()}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, event interface{}) {
	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		ep.logger.Error("Failed to publish event", zap.String("key", key), zap.Error(err))
	}
}

// EntityCreated publishes an entity-created event after an admin create.
func (ep *EventPublisher) EntityCreated(ctx context.Context, collection, id string) {
	ep.publish(ctx, collection+"-"+id, &models.EntityCreatedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeEntityCreated),
		Collection: collection,
		EntityID:   id,
	})
}

// EntityUpdated publishes an entity-updated event after an admin update.
func (ep *EventPublisher) EntityUpdated(ctx context.Context, collection, id string) {
	ep.publish(ctx, collection+"-"+id, &models.EntityUpdatedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeEntityUpdated),
		Collection: collection,
		EntityID:   id,
	})
}

// EntityDeleted publishes the ids that were actually deleted from a batch.
func (ep *EventPublisher) EntityDeleted(ctx context.Context, collection string, ids []string) {
	ep.publish(ctx, collection, &models.EntityDeletedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeEntityDeleted),
		Collection: collection,
		EntityIDs:  ids,
	})
}

// OrderStatusChanged publishes a status or payment-status quick update.
func (ep *EventPublisher) OrderStatusChanged(ctx context.Context, orderID, status, paymentStatus string) {
	ep.publish(ctx, "order-"+orderID, &models.OrderStatusChangedEvent{
		BaseEvent:     newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:       orderID,
		Status:        status,
		PaymentStatus: paymentStatus,
	})
}

// OrderPlaced publishes a storefront checkout.
func (ep *EventPublisher) OrderPlaced(ctx context.Context, orderID, sessionID string, totalAmount float64) {
	ep.publish(ctx, "order-"+orderID, &models.OrderPlacedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:     orderID,
		SessionID:   sessionID,
		TotalAmount: totalAmount,
	})
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	logger *zap.Logger

	onOrderPlaced func(context.Context, *models.OrderPlacedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderPlaced registers a handler for order-placed events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal order-placed event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
