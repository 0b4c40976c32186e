package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	busyAdding     = "Adding..."
	busyRemoving   = "Removing..."
	busyProcessing = "Processing..."

	successPath = "/order/success/"
	cancelPath  = "/cart/"

	// Grace period between emptying the cart and reloading the page, so
	// the removal toast is visible before navigation.
	reloadGrace = time.Second
)

// CartController turns user actions into sequences of order-API calls and
// keeps the page consistent with the server-side cart. Every public method
// is a terminal error boundary: failures become error toasts and are never
// rethrown to the event layer.
type CartController struct {
	orders  OrderRepository
	catalog Catalog
	page    Page
	notify  Notifier
	sched   Scheduler
	log     *slog.Logger
}

func NewCartController(orders OrderRepository, catalog Catalog, page Page, notify Notifier, sched Scheduler, log *slog.Logger) *CartController {
	return &CartController{
		orders:  orders,
		catalog: catalog,
		page:    page,
		notify:  notify,
		sched:   sched,
		log:     log,
	}
}

// LoadCatalog fetches the product list and renders it into the grid.
// Read-only; a failure is surfaced as a toast and the grid is left as is.
func (c *CartController) LoadCatalog(ctx context.Context) {
	defer c.recoverToToast("load catalog", "Failed to load products")

	products, err := c.catalog.List(ctx)
	if err != nil {
		c.fail("load catalog", "Failed to load products", err)
		return
	}
	c.page.RenderProducts(products)
}

// AddToCart resolves the current order and adds one unit of the product to
// it. Repeated invocations accumulate server-side; the client never sends
// a running total. When no current order resolves, the operation silently
// no-ops: that is a defined empty state, not an error.
//
// ctl stays busy for the whole two-call sequence and is restored on every
// exit path, including the no-op and panic paths.
func (c *CartController) AddToCart(ctx context.Context, productID string, ctl Control) {
	defer c.recoverToToast("add to cart", "Error adding item")
	ctl.SetBusy(busyAdding)
	defer ctl.Restore()

	order, err := c.orders.ResolveCurrent(ctx)
	if err != nil {
		c.fail("add to cart", "Error adding item", err)
		return
	}
	if order.Absent() {
		return
	}

	if err := c.orders.AddItem(ctx, order.ID, productID, 1); err != nil {
		c.fail("add to cart", "Error adding item", err)
		return
	}

	c.notify.Notify("Item added to cart", SeveritySuccess)
	c.RefreshCount(ctx)
}

// RemoveItem resolves the current order and deletes the given order line.
// Success removes the row from the page, so there is no affordance left to
// restore; only the failure and no-op paths restore ctl. When the last row
// goes, a full reload is scheduled after a grace period and the server
// re-renders the empty-cart view.
func (c *CartController) RemoveItem(ctx context.Context, itemID string, ctl Control) {
	ctl.SetBusy(busyRemoving)

	fail := func(err error) {
		c.fail("remove item", "Error removing item", err)
		ctl.Restore()
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("unexpected: %v", r))
		}
	}()

	order, err := c.orders.ResolveCurrent(ctx)
	if err != nil {
		fail(err)
		return
	}
	if order.Absent() {
		ctl.Restore()
		return
	}

	if err := c.orders.RemoveItem(ctx, order.ID, itemID); err != nil {
		fail(err)
		return
	}

	c.page.RemoveCartRow(itemID)
	c.RefreshCount(ctx)
	c.notify.Notify("Item removed from cart", SeveritySuccess)

	if c.page.CartRowCount() == 0 {
		c.sched.AfterFunc(reloadGrace, c.page.Reload)
	}
}

// Checkout resolves the current order and hands it off to the payment
// provider. The return URLs must be absolute since the provider lives on
// another origin. Success navigates away; restoring ctl afterwards is moot
// but harmless.
func (c *CartController) Checkout(ctx context.Context, ctl Control) {
	defer c.recoverToToast("checkout", "Error during checkout")
	ctl.SetBusy(busyProcessing)
	defer ctl.Restore()

	order, err := c.orders.ResolveCurrent(ctx)
	if err != nil {
		c.fail("checkout", "Error during checkout", err)
		return
	}
	if order.Absent() {
		return
	}

	origin := c.page.Origin()
	checkoutURL, err := c.orders.Checkout(ctx, order.ID, origin+successPath, origin+cancelPath)
	if err != nil {
		c.fail("checkout", "Error during checkout", err)
		return
	}

	if checkoutURL != "" {
		c.page.Navigate(checkoutURL)
	}
}

// RefreshCount recomputes the cart-count display from a fresh order fetch.
// Best effort: a missing order or a failed fetch leaves the display alone,
// with no toast. The count is stale only until the next triggering action.
func (c *CartController) RefreshCount(ctx context.Context) {
	order, err := c.orders.ResolveCurrent(ctx)
	if err != nil {
		c.log.Debug("cart count refresh failed", slog.Any("err", err))
		return
	}
	if order.Absent() {
		return
	}
	c.page.SetCartCount(order.ItemCount())
}

func (c *CartController) fail(op, message string, err error) {
	c.log.Error(op, slog.Any("err", err))
	c.notify.Notify(message, SeverityError)
}

// recoverToToast is the last line of the error boundary: anything thrown
// past the explicit error handling still ends as a toast, never in the
// event layer.
func (c *CartController) recoverToToast(op, message string) {
	if r := recover(); r != nil {
		c.fail(op, message, fmt.Errorf("unexpected: %v", r))
	}
}
