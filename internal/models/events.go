package models

import "time"

// Event types published on the gateway event topic.
const (
	EventTypeEntityCreated      = "ENTITY_CREATED"
	EventTypeEntityUpdated      = "ENTITY_UPDATED"
	EventTypeEntityDeleted      = "ENTITY_DELETED"
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// EntityCreatedEvent published after a successful admin create.
type EntityCreatedEvent struct {
	BaseEvent
	Collection string `json:"collection"`
	EntityID   string `json:"entity_id"`
}

// EntityUpdatedEvent published after a successful admin update.
type EntityUpdatedEvent struct {
	BaseEvent
	Collection string `json:"collection"`
	EntityID   string `json:"entity_id"`
}

// EntityDeletedEvent published after a delete batch settles. IDs lists
// only the deletions that succeeded.
type EntityDeletedEvent struct {
	BaseEvent
	Collection string   `json:"collection"`
	EntityIDs  []string `json:"entity_ids"`
}

// OrderPlacedEvent published when a storefront checkout creates an order.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     string  `json:"order_id"`
	SessionID   string  `json:"session_id"`
	TotalAmount float64 `json:"total_amount"`
}

// OrderStatusChangedEvent published after a status or payment-status
// quick update.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID       string `json:"order_id"`
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}
