package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nvoloshin/storefront/internal/storefront/domain"
	"github.com/nvoloshin/storefront/pkg/httpjson"
)

// CatalogRepo reads the product list. Fetch-and-render only; the catalog
// is never mutated from the client.
type CatalogRepo struct {
	client *httpjson.Client
}

func NewCatalogRepo(client *httpjson.Client) *CatalogRepo {
	return &CatalogRepo{client: client}
}

type productPayload struct {
	ID          ident           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

func (r *CatalogRepo) List(ctx context.Context) ([]domain.Product, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "items/", nil)
	if err != nil {
		return nil, err
	}

	var payload []productPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, domain.Product{
			ID:          string(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Currency:    p.Currency,
		})
	}
	return products, nil
}
