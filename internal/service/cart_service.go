package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
	"github.com/mmhmddd/PowerEV-sub000/internal/control"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/store"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

// ProductLookup fetches one catalog product by category and id. The cart
// snapshots the effective price at add time, so the lookup happens once.
type ProductLookup interface {
	Product(ctx context.Context, category models.Category, id string) (models.Product, error)
}

// OrderPlacer creates orders on the upstream platform.
type OrderPlacer interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
}

// EventSink publishes the order-placed event after checkout.
type EventSink interface {
	OrderPlaced(ctx context.Context, orderID, sessionID string, totalAmount float64)
}

// CartService handles the storefront session cart and checkout
type CartService struct {
	store  *store.Store
	lookup ProductLookup
	orders OrderPlacer
	events EventSink
	logger *zap.Logger
}

// NewCartService creates a new cart service. events may be nil.
func NewCartService(store *store.Store, lookup ProductLookup, orders OrderPlacer, events EventSink) *CartService {
	return &CartService{
		store:  store,
		lookup: lookup,
		orders: orders,
		events: events,
		logger: util.GetLogger(),
	}
}

// CheckoutInfo is the buyer-entered checkout form.
type CheckoutInfo struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address" binding:"required"`
	Notes         string `json:"notes,omitempty"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// Get returns the session's cart with items and the computed total. A
// session that never added anything gets an empty cart, not an error.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Get")
	defer span.End()

	cart, err := s.store.GetCartBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.Cart{SessionID: sessionID, Items: []models.CartItem{}}, nil
	}

	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	cart.TotalPrice = totalPrice(items)
	return cart, nil
}

// AddItem looks the product up, snapshots its effective price and adds it
// to the session's cart, creating the cart on first use.
func (s *CartService) AddItem(ctx context.Context, sessionID string, category models.Category, productID string, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.lookup.Product(ctx, category, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	cart, err := s.ensureCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:      cart.ID,
		ProductID:   productID,
		ProductType: category.Collection(),
		Quantity:    quantity,
		Price:       product.EffectivePrice(),
	}
	if err := s.store.UpsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if err := s.store.TouchCart(ctx, cart.ID); err != nil {
		s.logger.Warn("Failed to touch cart", zap.String("cart_id", cart.ID), zap.Error(err))
	}

	s.logger.Info("Cart item added",
		zap.String("session_id", sessionID),
		zap.String("product_id", productID),
		zap.String("product_type", item.ProductType),
		zap.Int("quantity", item.Quantity))

	return s.Get(ctx, sessionID)
}

// UpdateQuantity sets the absolute quantity of one item. A quantity at or
// below zero removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	cart, err := s.store.GetCartBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart not found for session")
	}

	if quantity <= 0 {
		err = s.store.RemoveItem(ctx, cart.ID, itemID)
	} else {
		err = s.store.UpdateItemQuantity(ctx, cart.ID, itemID, quantity)
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.TouchCart(ctx, cart.ID); err != nil {
		s.logger.Warn("Failed to touch cart", zap.String("cart_id", cart.ID), zap.Error(err))
	}
	return s.Get(ctx, sessionID)
}

// RemoveItem deletes one item from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, itemID int64) (*models.Cart, error) {
	return s.UpdateQuantity(ctx, sessionID, itemID, 0)
}

// Clear drops the session's cart entirely.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	ctx, span := util.StartSpan(ctx, "CartService.Clear")
	defer span.End()

	if err := s.store.ClearBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	util.CartsClearedTotal.Inc()
	s.logger.Info("Cart cleared", zap.String("session_id", sessionID))
	return nil
}

// PlaceOrder turns the session's cart into an upstream order. The order is
// created first; the cart is cleared only after the platform accepted it,
// so a failed checkout keeps the cart intact.
func (s *CartService) PlaceOrder(ctx context.Context, sessionID string, info CheckoutInfo) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CartService.PlaceOrder")
	defer span.End()

	if err := validateCheckout(info); err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, &control.ValidationError{Message: "السلة فارغة"}
	}

	lines := make([]models.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, models.OrderLine{
			ProductID:   item.ProductID,
			ProductType: item.ProductType,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	order := models.Order{
		Name:          info.Name,
		Phone:         info.Phone,
		Email:         info.Email,
		Address:       info.Address,
		Notes:         info.Notes,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: info.PaymentMethod,
		Items:         lines,
		TotalAmount:   cart.TotalPrice,
	}

	placed, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID),
		zap.String("session_id", sessionID),
		zap.Float64("total_amount", placed.TotalAmount))

	if s.events != nil {
		s.events.OrderPlaced(ctx, placed.ID, sessionID, cart.TotalPrice)
	}

	// The worker also clears on the placed event; clearing here keeps the
	// UX immediate when the event path lags.
	if err := s.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	return &placed, nil
}

func (s *CartService) ensureCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.store.GetCartBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{ID: uuid.New().String(), SessionID: sessionID}
	if err := s.store.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func validateCheckout(info CheckoutInfo) error {
	if strings.TrimSpace(info.Name) == "" {
		return &control.ValidationError{Message: "الاسم مطلوب"}
	}
	if strings.TrimSpace(info.Phone) == "" {
		return &control.ValidationError{Message: "رقم الهاتف مطلوب"}
	}
	if strings.TrimSpace(info.Address) == "" {
		return &control.ValidationError{Message: "العنوان مطلوب"}
	}
	valid := false
	for _, m := range models.PaymentMethods() {
		if m == info.PaymentMethod {
			valid = true
			break
		}
	}
	if !valid {
		return &control.ValidationError{Message: "طريقة الدفع غير صالحة"}
	}
	return nil
}

func totalPrice(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// backendLookup adapts the upstream client to the ProductLookup interface.
type backendLookup struct {
	client *backend.Client
}

// NewBackendLookup wires product lookups through the upstream API client.
func NewBackendLookup(client *backend.Client) ProductLookup {
	return &backendLookup{client: client}
}

func (b *backendLookup) Product(ctx context.Context, category models.Category, id string) (models.Product, error) {
	return b.client.Products(category).Get(ctx, id)
}
