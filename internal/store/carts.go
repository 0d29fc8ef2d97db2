package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// CreateCart inserts a new cart for the session
func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	query := `
		INSERT INTO carts (id, session_id)
		VALUES ($1, $2)
		RETURNING id, session_id, created_at, updated_at`

	return s.db.GetContext(ctx, cart, query, cart.ID, cart.SessionID)
}

// GetCartBySession retrieves the cart for a session, or nil when the
// session has never put anything in a cart.
func (s *Store) GetCartBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart, "SELECT * FROM carts WHERE session_id = $1", sessionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// GetCartItems retrieves all items in a cart
func (s *Store) GetCartItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY id", cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return items, nil
}

// UpsertItem adds a product to the cart, accumulating quantity when the
// same product is added again. Price is written on first insert and kept
// on conflict, so the unit price stays what it was when first added.
func (s *Store) UpsertItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, product_type, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id, product_type)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, product_type, quantity, price`

	return s.db.GetContext(ctx, item, query,
		item.CartID, item.ProductID, item.ProductType, item.Quantity, item.Price)
}

// UpdateItemQuantity sets the absolute quantity of one cart item
func (s *Store) UpdateItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2 AND cart_id = $3",
		quantity, itemID, cartID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("cart item not found: %d", itemID)
	}
	return nil
}

// RemoveItem deletes one item from the cart
func (s *Store) RemoveItem(ctx context.Context, cartID string, itemID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND cart_id = $2", itemID, cartID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearBySession removes the session's cart and all of its items
func (s *Store) ClearBySession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cartID string
	err = tx.GetContext(ctx, &cartID, "SELECT id FROM carts WHERE session_id = $1", sessionID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM carts WHERE id = $1", cartID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return tx.Commit()
}

// TouchCart bumps the cart's updated_at after an item mutation
func (s *Store) TouchCart(ctx context.Context, cartID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID)
	return err
}
