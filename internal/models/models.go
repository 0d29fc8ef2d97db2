package models

import (
	"encoding/json"
	"time"
)

// Order statuses. Transitions are not constrained in this layer; any value
// may be set through the dedicated status endpoint (the upstream backend
// owns whatever transition rules exist).
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment methods, fixed at order creation.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodInstapay     = "instapay"
	PaymentMethodVodafoneCash = "vodafonecash"
)

// OrderStatuses returns the valid order status values.
func OrderStatuses() []string {
	return []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}
}

// PaymentStatuses returns the valid payment status values.
func PaymentStatuses() []string {
	return []string{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed}
}

// PaymentMethods returns the accepted payment methods.
func PaymentMethods() []string {
	return []string{PaymentMethodCash, PaymentMethodInstapay, PaymentMethodVodafoneCash}
}

// OrderLine is a single line item. Lines are immutable after creation; the
// admin edit form only touches order metadata.
type OrderLine struct {
	ProductID   string  `json:"productId"`
	ProductType string  `json:"productType"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is a customer order as served by the upstream API. TotalAmount and
// OrderNumber are backend-computed and treated as read-only here.
type Order struct {
	ID            string      `json:"id,omitempty"`
	OrderNumber   string      `json:"orderNumber,omitempty"`
	Name          string      `json:"name"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email,omitempty"`
	Address       string      `json:"address"`
	Notes         string      `json:"notes,omitempty"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	PaymentMethod string      `json:"paymentMethod"`
	Items         []OrderLine `json:"items"`
	TotalAmount   float64     `json:"totalAmount,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
}

// EntityID implements the entity-control contract.
func (o Order) EntityID() string { return o.ID }

func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	var w struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Order(w.alias)
	if o.ID == "" {
		o.ID = w.MongoID
	}
	return nil
}

// User roles visible to the back-office (customers are excluded).
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is a back-office account. Password is write-only: it is sent on
// create or through the dedicated password endpoint and never round-trips.
type User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive,omitempty"`
	Password string `json:"password,omitempty"`
}

// EntityID implements the entity-control contract.
func (u User) EntityID() string { return u.ID }

// Active defaults to true when the backend omits the flag.
func (u User) Active() bool { return u.IsActive == nil || *u.IsActive }

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var w struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = User(w.alias)
	if u.ID == "" {
		u.ID = w.MongoID
	}
	return nil
}

// GalleryItem is a single-image media entry.
type GalleryItem struct {
	ID          string `json:"id,omitempty"`
	Image       string `json:"image"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// EntityID implements the entity-control contract.
func (g GalleryItem) EntityID() string { return g.ID }

// Cart is an anonymous storefront cart keyed by a client-generated session
// id. It is created lazily on first use and persists until checkout or an
// explicit clear.
type Cart struct {
	ID         string     `db:"id" json:"id"`
	SessionID  string     `db:"session_id" json:"sessionId"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	Items      []CartItem `db:"-" json:"items"`
	TotalPrice float64    `db:"-" json:"totalPrice"`
}

// CartItem is one product entry in a cart. Price is the effective unit
// price snapshotted when the item was added.
type CartItem struct {
	ID          int64   `db:"id" json:"id"`
	CartID      string  `db:"cart_id" json:"-"`
	ProductID   string  `db:"product_id" json:"productId"`
	ProductType string  `db:"product_type" json:"productType"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
}
