package app

import (
	"context"
	"time"

	"github.com/nvoloshin/storefront/internal/storefront/domain"
)

// OrderRepository is the client's view of the order API. ResolveCurrent
// must be called before every mutation; implementations never cache the
// result, the server is the sole arbiter of the current order.
type OrderRepository interface {
	ResolveCurrent(ctx context.Context) (domain.Order, error)
	AddItem(ctx context.Context, orderID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, orderID, itemID string) error
	Checkout(ctx context.Context, orderID, successURL, cancelURL string) (checkoutURL string, err error)
}

type Catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// Control is the affordance of a single triggering element: either idle
// with its own label, or busy with a placeholder. SetBusy saves the label;
// Restore re-enables with the saved one. While busy, a control does not
// emit further actions, which is the only serialization this client has.
type Control interface {
	SetBusy(label string)
	Restore()
}

// Page is the rendered surface the controller mutates: the product grid,
// the cart rows, the count label, and navigation.
type Page interface {
	RenderProducts(products []domain.Product)
	SetCartCount(n int)
	RemoveCartRow(itemID string)
	CartRowCount() int
	Origin() string
	Navigate(url string)
	Reload()
}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier is the ephemeral feedback channel. Notify must not block and
// must not fail; display lifecycle is the implementation's business.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Scheduler defers work without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}
