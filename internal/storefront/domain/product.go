package domain

import "github.com/shopspring/decimal"

// Product is immutable from the client's perspective: it is rendered into
// the grid and referenced by id when adding to the cart.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
}
