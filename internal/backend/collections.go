package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// decodeList adapts the collection envelopes the upstream API serves:
// {success, count?, <plural>: [...]} for most collections and {data: [...]}
// for the rest. As a last resort the first array-valued key wins.
func decodeList[T any](raw json.RawMessage, plural string) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Some endpoints return the bare array.
		var direct []T
		if arrErr := json.Unmarshal(raw, &direct); arrErr == nil {
			return direct, nil
		}
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}

	for _, key := range []string{"data", plural} {
		if body, ok := envelope[key]; ok {
			var items []T
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, fmt.Errorf("failed to decode %q list: %w", key, err)
			}
			return items, nil
		}
	}
	for key, body := range envelope {
		if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
			var items []T
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, fmt.Errorf("failed to decode %q list: %w", key, err)
			}
			return items, nil
		}
	}
	return []T{}, nil
}

// decodeOne adapts the single-entity envelopes: {data: {...}},
// {<singular>: {...}} or the bare entity object.
func decodeOne[T any](raw json.RawMessage, singular string) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return out, fmt.Errorf("failed to decode entity envelope: %w", err)
	}
	for _, key := range []string{"data", singular} {
		if body, ok := envelope[key]; ok && strings.HasPrefix(strings.TrimSpace(string(body)), "{") {
			err := json.Unmarshal(body, &out)
			return out, err
		}
	}
	err := json.Unmarshal(raw, &out)
	return out, err
}

// EntityClient is the typed CRUD surface over one upstream collection.
type EntityClient[T any] struct {
	c        *Client
	plural   string
	singular string
}

// NewEntityClient wires a CRUD client for the named collection.
func NewEntityClient[T any](c *Client, plural, singular string) *EntityClient[T] {
	return &EntityClient[T]{c: c, plural: plural, singular: singular}
}

// Collection returns the collection name the client serves.
func (ec *EntityClient[T]) Collection() string { return ec.plural }

// List fetches the full collection. No pagination, no server-side
// filtering.
func (ec *EntityClient[T]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := ec.c.do(ctx, http.MethodGet, "/"+ec.plural, ec.plural, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw, ec.plural)
}

// Get fetches a single entity by id.
func (ec *EntityClient[T]) Get(ctx context.Context, id string) (T, error) {
	var raw json.RawMessage
	var zero T
	if err := ec.c.do(ctx, http.MethodGet, "/"+ec.plural+"/"+url.PathEscape(id), ec.plural, nil, &raw); err != nil {
		return zero, err
	}
	return decodeOne[T](raw, ec.singular)
}

// Create posts a new entity and returns the backend's view of it.
func (ec *EntityClient[T]) Create(ctx context.Context, entity T) (T, error) {
	var raw json.RawMessage
	if err := ec.c.do(ctx, http.MethodPost, "/"+ec.plural, ec.plural, entity, &raw); err != nil {
		var zero T
		return zero, err
	}
	if len(raw) == 0 {
		return entity, nil
	}
	return decodeOne[T](raw, ec.singular)
}

// Update replaces the full entity keyed by id.
func (ec *EntityClient[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	var raw json.RawMessage
	if err := ec.c.do(ctx, http.MethodPut, "/"+ec.plural+"/"+url.PathEscape(id), ec.plural, entity, &raw); err != nil {
		var zero T
		return zero, err
	}
	if len(raw) == 0 {
		return entity, nil
	}
	return decodeOne[T](raw, ec.singular)
}

// Delete removes an entity by id.
func (ec *EntityClient[T]) Delete(ctx context.Context, id string) error {
	return ec.c.do(ctx, http.MethodDelete, "/"+ec.plural+"/"+url.PathEscape(id), ec.plural, nil, nil)
}

// ProductsClient serves one catalog category and stamps the category onto
// every product it returns.
type ProductsClient struct {
	*EntityClient[models.Product]
	category models.Category
}

// Products returns the client for one product category.
func (c *Client) Products(category models.Category) *ProductsClient {
	return &ProductsClient{
		EntityClient: NewEntityClient[models.Product](c, category.Collection(), string(category)),
		category:     category,
	}
}

func (pc *ProductsClient) List(ctx context.Context) ([]models.Product, error) {
	products, err := pc.EntityClient.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Category = pc.category
	}
	return products, nil
}

func (pc *ProductsClient) Get(ctx context.Context, id string) (models.Product, error) {
	product, err := pc.EntityClient.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	product.Category = pc.category
	return product, nil
}

// OrdersClient adds the order quick-update endpoints to the CRUD surface.
type OrdersClient struct {
	*EntityClient[models.Order]
}

// Orders returns the orders client.
func (c *Client) Orders() *OrdersClient {
	return &OrdersClient{NewEntityClient[models.Order](c, "orders", "order")}
}

// UpdateStatus sets the order status. No transition graph is enforced
// here; any known value is accepted.
func (oc *OrdersClient) UpdateStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return oc.c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", "orders", body, nil)
}

// UpdatePaymentStatus sets the payment status.
func (oc *OrdersClient) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error {
	body := map[string]string{"paymentStatus": paymentStatus}
	return oc.c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/payment-status", "orders", body, nil)
}

// UsersClient adds the password endpoint to the CRUD surface.
type UsersClient struct {
	*EntityClient[models.User]
}

// Users returns the back-office users client.
func (c *Client) Users() *UsersClient {
	return &UsersClient{NewEntityClient[models.User](c, "users", "user")}
}

// UpdatePassword replaces a user's password through the dedicated
// endpoint. Passwords never travel on the regular update path.
func (uc *UsersClient) UpdatePassword(ctx context.Context, id, password string) error {
	body := map[string]string{"password": password}
	return uc.c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/password", "users", body, nil)
}

// Gallery returns the media gallery client.
func (c *Client) Gallery() *EntityClient[models.GalleryItem] {
	return NewEntityClient[models.GalleryItem](c, "gallery", "item")
}
