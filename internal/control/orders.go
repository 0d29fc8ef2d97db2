package control

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// OrderEventSink receives order lifecycle notifications in addition to the
// generic entity events.
type OrderEventSink interface {
	EventSink
	OrderStatusChanged(ctx context.Context, orderID, status, paymentStatus string)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// OrderConfig declares the orders admin screen. Line items, totals and the
// order number belong to the storefront checkout, so an edit submit carries
// them over from the loaded row untouched.
func OrderConfig() Config[models.Order] {
	return Config[models.Order]{
		Collection: "orders",
		Search: func(o models.Order) []string {
			return []string{o.Name, o.Phone, o.OrderNumber, o.Address}
		},
		Facets: []Facet[models.Order]{
			{Key: "status", Value: func(o models.Order) string { return o.Status }},
			{Key: "paymentStatus", Value: func(o models.Order) string { return o.PaymentStatus }},
			{Key: "paymentMethod", Value: func(o models.Order) string { return o.PaymentMethod }},
		},
		Rules: []Rule[models.Order]{
			{
				Valid:   func(o models.Order) bool { return strings.TrimSpace(o.Name) != "" },
				Message: "اسم العميل مطلوب",
			},
			{
				Valid:   func(o models.Order) bool { return strings.TrimSpace(o.Phone) != "" },
				Message: "رقم الهاتف مطلوب",
			},
			{
				Valid:   func(o models.Order) bool { return strings.TrimSpace(o.Address) != "" },
				Message: "العنوان مطلوب",
			},
			{
				Valid: func(o models.Order) bool {
					return o.Email == "" || emailPattern.MatchString(o.Email)
				},
				Message: "البريد الإلكتروني غير صالح",
			},
			{
				Valid: func(o models.Order) bool {
					return o.PaymentMethod == "" || contains(models.PaymentMethods(), o.PaymentMethod)
				},
				Message: "طريقة الدفع غير صالحة",
			},
		},
		BeforeUpdate: func(old, draft models.Order) models.Order {
			draft.Items = old.Items
			draft.TotalAmount = old.TotalAmount
			draft.OrderNumber = old.OrderNumber
			draft.CreatedAt = old.CreatedAt
			return draft
		},
	}
}

// OrderController adds the status transition operations on top of the
// generic engine.
type OrderController struct {
	*Controller[models.Order]
	orders *backend.OrdersClient
	events OrderEventSink
	logger *zap.Logger
}

func NewOrderController(orders *backend.OrdersClient, events OrderEventSink) *OrderController {
	return &OrderController{
		Controller: New[models.Order](OrderConfig(), orders, events),
		orders:     orders,
		events:     events,
		logger:     util.GetLogger(),
	}
}

// UpdateStatus moves one order to a new fulfillment status and reloads the
// list so the row reflects what the platform actually stored.
func (c *OrderController) UpdateStatus(ctx context.Context, id, status string) error {
	if !contains(models.OrderStatuses(), status) {
		return &ValidationError{Message: "حالة الطلب غير صالحة"}
	}
	if err := c.orders.UpdateStatus(ctx, id, status); err != nil {
		c.logger.Error("Failed to update order status",
			zap.String("order_id", id),
			zap.Error(err))
		c.fail(fallbackMessage(err, msgSaveFailed))
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if c.events != nil {
		c.events.OrderStatusChanged(ctx, id, status, "")
	}
	// Only toast when the reload succeeded; a failed reload leaves its
	// own message on screen.
	if err := c.Load(ctx); err != nil {
		return err
	}
	c.toast(msgStatusUpdated)
	return nil
}

// UpdatePaymentStatus mirrors UpdateStatus for the payment field.
func (c *OrderController) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error {
	if !contains(models.PaymentStatuses(), paymentStatus) {
		return &ValidationError{Message: "حالة الدفع غير صالحة"}
	}
	if err := c.orders.UpdatePaymentStatus(ctx, id, paymentStatus); err != nil {
		c.logger.Error("Failed to update order payment status",
			zap.String("order_id", id),
			zap.Error(err))
		c.fail(fallbackMessage(err, msgSaveFailed))
		return fmt.Errorf("failed to update order payment status: %w", err)
	}
	if c.events != nil {
		c.events.OrderStatusChanged(ctx, id, "", paymentStatus)
	}
	if err := c.Load(ctx); err != nil {
		return err
	}
	c.toast(msgPaymentStatusUpdated)
	return nil
}
