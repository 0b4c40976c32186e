package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nvoloshin/storefront/internal/storefront/domain"
	"github.com/nvoloshin/storefront/pkg/httpjson"
)

// OrderRepo speaks the order endpoints of the storefront API. It holds no
// order state: ResolveCurrent is issued fresh before every mutation.
type OrderRepo struct {
	client *httpjson.Client
}

func NewOrderRepo(client *httpjson.Client) *OrderRepo {
	return &OrderRepo{client: client}
}

type orderPayload struct {
	ID         ident              `json:"id"`
	OrderItems []orderItemPayload `json:"order_items"`
}

type orderItemPayload struct {
	ID       ident `json:"id"`
	ItemID   ident `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// ResolveCurrent fetches or creates the pending order for the session.
// The server may answer 200 with a detail message and no id when the cart
// is empty; that decodes to an absent Order, not an error.
func (r *OrderRepo) ResolveCurrent(ctx context.Context) (domain.Order, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "orders/current/", nil)
	if err != nil {
		return domain.Order{}, err
	}

	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Order{}, fmt.Errorf("decode current order: %w", err)
	}

	order := domain.Order{ID: string(payload.ID)}
	for _, it := range payload.OrderItems {
		order.Items = append(order.Items, domain.OrderItem{
			ID:       string(it.ID),
			ItemID:   string(it.ItemID),
			Quantity: it.Quantity,
		})
	}
	return order, nil
}

func (r *OrderRepo) AddItem(ctx context.Context, orderID, itemID string, quantity int) error {
	body := struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}{ItemID: itemID, Quantity: quantity}

	_, err := r.client.Request(ctx, http.MethodPost, fmt.Sprintf("orders/%s/add_item/", orderID), body)
	return err
}

func (r *OrderRepo) RemoveItem(ctx context.Context, orderID, itemID string) error {
	_, err := r.client.Request(ctx, http.MethodDelete, fmt.Sprintf("orders/%s/remove_item/%s/", orderID, itemID), nil)
	return err
}

// Checkout starts the payment handoff. The return URLs must be absolute:
// the provider redirects the browser back from its own origin.
func (r *OrderRepo) Checkout(ctx context.Context, orderID, successURL, cancelURL string) (string, error) {
	body := struct {
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}{SuccessURL: successURL, CancelURL: cancelURL}

	raw, err := r.client.Request(ctx, http.MethodPost, fmt.Sprintf("orders/%s/checkout/", orderID), body)
	if err != nil {
		return "", err
	}

	var payload struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	return payload.CheckoutURL, nil
}
