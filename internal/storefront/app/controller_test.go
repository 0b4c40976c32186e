package app_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nvoloshin/storefront/internal/storefront/app"
	"github.com/nvoloshin/storefront/internal/storefront/domain"
	"github.com/nvoloshin/storefront/pkg/httpjson"
)

type fakeOrders struct {
	mu sync.Mutex

	current    domain.Order
	resolveErr error
	addErr     error
	removeErr  error

	checkoutURL string
	checkoutErr error

	resolves  int
	adds      []addCall
	removes   []removeCall
	checkouts []checkoutCall
}

type addCall struct {
	orderID, itemID string
	quantity        int
}

type removeCall struct {
	orderID, itemID string
}

type checkoutCall struct {
	orderID, successURL, cancelURL string
}

func (f *fakeOrders) ResolveCurrent(ctx context.Context) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.resolveErr != nil {
		return domain.Order{}, f.resolveErr
	}
	return f.current, nil
}

func (f *fakeOrders) AddItem(ctx context.Context, orderID, itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.adds = append(f.adds, addCall{orderID, itemID, quantity})
	return nil
}

func (f *fakeOrders) RemoveItem(ctx context.Context, orderID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removes = append(f.removes, removeCall{orderID, itemID})
	return nil
}

func (f *fakeOrders) Checkout(ctx context.Context, orderID, successURL, cancelURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, checkoutCall{orderID, successURL, cancelURL})
	return f.checkoutURL, f.checkoutErr
}

type fakeCatalog struct {
	products []domain.Product
	err      error
}

func (f *fakeCatalog) List(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

type fakePage struct {
	mu sync.Mutex

	rendered  []domain.Product
	count     int
	countSet  int
	rows      map[string]bool
	origin    string
	navigated []string
	reloads   int
}

func newFakePage(rows ...string) *fakePage {
	p := &fakePage{origin: "http://shop.local", rows: map[string]bool{}}
	for _, r := range rows {
		p.rows[r] = true
	}
	return p
}

func (p *fakePage) RenderProducts(products []domain.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rendered = products
}

func (p *fakePage) SetCartCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = n
	p.countSet++
}

func (p *fakePage) RemoveCartRow(itemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.rows, itemID)
}

func (p *fakePage) CartRowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rows)
}

func (p *fakePage) Origin() string { return p.origin }

func (p *fakePage) Navigate(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
}

func (p *fakePage) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++
}

type toast struct {
	message  string
	severity app.Severity
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (n *fakeNotifier) Notify(message string, severity app.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{message, severity})
}

type fakeControl struct {
	mu       sync.Mutex
	label    string
	saved    string
	busy     bool
	busySets int
	restores int
}

func newFakeControl(label string) *fakeControl {
	return &fakeControl{label: label}
}

func (c *fakeControl) SetBusy(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = c.label
	c.label = label
	c.busy = true
	c.busySets++
}

func (c *fakeControl) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = c.saved
	c.busy = false
	c.restores++
}

type scheduled struct {
	d  time.Duration
	fn func()
}

type fakeScheduler struct {
	mu    sync.Mutex
	queue []scheduled
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, scheduled{d, fn})
}

func (s *fakeScheduler) fire() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, item := range queue {
		item.fn()
	}
}

type fixture struct {
	orders  *fakeOrders
	catalog *fakeCatalog
	page    *fakePage
	notify  *fakeNotifier
	sched   *fakeScheduler
	ctrl    *app.CartController
}

func newFixture(orders *fakeOrders, rows ...string) *fixture {
	f := &fixture{
		orders:  orders,
		catalog: &fakeCatalog{},
		page:    newFakePage(rows...),
		notify:  &fakeNotifier{},
		sched:   &fakeScheduler{},
	}
	f.ctrl = app.NewCartController(f.orders, f.catalog, f.page, f.notify, f.sched, slog.Default())
	return f
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("success -> add, toast, one refresh, control restored", func(t *testing.T) {
		orders := &fakeOrders{current: domain.Order{
			ID:    "7",
			Items: []domain.OrderItem{{ID: "1", ItemID: "p1", Quantity: 2}},
		}}
		f := newFixture(orders)
		ctl := newFakeControl("Add to Cart")

		f.ctrl.AddToCart(ctx, "p3", ctl)

		require.Len(t, orders.adds, 1)
		assert.Equal(t, addCall{orderID: "7", itemID: "p3", quantity: 1}, orders.adds[0])
		assert.Equal(t, []toast{{"Item added to cart", app.SeveritySuccess}}, f.notify.toasts)
		// One resolve for the add itself, one for the count refresh.
		assert.Equal(t, 2, orders.resolves)
		assert.Equal(t, 1, f.page.countSet)
		assert.Equal(t, 2, f.page.count)

		assert.False(t, ctl.busy)
		assert.Equal(t, "Add to Cart", ctl.label)
	})

	t.Run("no current order -> silent no-op", func(t *testing.T) {
		orders := &fakeOrders{}
		f := newFixture(orders)
		ctl := newFakeControl("Add to Cart")

		f.ctrl.AddToCart(ctx, "p3", ctl)

		assert.Empty(t, orders.adds)
		assert.Empty(t, f.notify.toasts)
		assert.False(t, ctl.busy)
		assert.Equal(t, "Add to Cart", ctl.label)
	})

	t.Run("resolve fails -> error toast, no add, control restored", func(t *testing.T) {
		orders := &fakeOrders{resolveErr: &httpjson.RequestError{Message: "Forbidden", Status: 403}}
		f := newFixture(orders)
		ctl := newFakeControl("Add to Cart")

		f.ctrl.AddToCart(ctx, "p3", ctl)

		assert.Empty(t, orders.adds)
		assert.Equal(t, []toast{{"Error adding item", app.SeverityError}}, f.notify.toasts)
		assert.False(t, ctl.busy)
		assert.Equal(t, "Add to Cart", ctl.label)
	})

	t.Run("add fails -> error toast, no success toast, no refresh", func(t *testing.T) {
		orders := &fakeOrders{
			current: domain.Order{ID: "7"},
			addErr:  &httpjson.RequestError{Message: "request failed: 500", Status: 500},
		}
		f := newFixture(orders)
		ctl := newFakeControl("Add to Cart")

		f.ctrl.AddToCart(ctx, "p3", ctl)

		assert.Equal(t, []toast{{"Error adding item", app.SeverityError}}, f.notify.toasts)
		assert.Equal(t, 1, orders.resolves)
		assert.Zero(t, f.page.countSet)
		assert.False(t, ctl.busy)
	})

	t.Run("control busy during sequence", func(t *testing.T) {
		orders := &fakeOrders{current: domain.Order{ID: "7"}}
		f := newFixture(orders)
		ctl := newFakeControl("Add to Cart")

		var labelDuringAdd string
		var busyDuringAdd bool
		// Observe the control from inside the second call.
		probe := &probeOrders{fakeOrders: orders, onAdd: func() {
			ctl.mu.Lock()
			labelDuringAdd = ctl.label
			busyDuringAdd = ctl.busy
			ctl.mu.Unlock()
		}}
		f.ctrl = app.NewCartController(probe, f.catalog, f.page, f.notify, f.sched, slog.Default())

		f.ctrl.AddToCart(ctx, "p3", ctl)

		assert.True(t, busyDuringAdd)
		assert.Equal(t, "Adding...", labelDuringAdd)
		assert.False(t, ctl.busy)
	})
}

type probeOrders struct {
	*fakeOrders
	onAdd func()
}

func (p *probeOrders) AddItem(ctx context.Context, orderID, itemID string, quantity int) error {
	if p.onAdd != nil {
		p.onAdd()
	}
	return p.fakeOrders.AddItem(ctx, orderID, itemID, quantity)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success with rows left -> row gone, no reload", func(t *testing.T) {
		orders := &fakeOrders{current: domain.Order{
			ID: "7",
			Items: []domain.OrderItem{
				{ID: "11", ItemID: "p1", Quantity: 1},
				{ID: "12", ItemID: "p2", Quantity: 1},
			},
		}}
		f := newFixture(orders, "11", "12")
		ctl := newFakeControl("Remove")

		f.ctrl.RemoveItem(ctx, "11", ctl)

		require.Len(t, orders.removes, 1)
		assert.Equal(t, removeCall{orderID: "7", itemID: "11"}, orders.removes[0])
		assert.Equal(t, 1, f.page.CartRowCount())
		assert.Empty(t, f.sched.queue)
		assert.Equal(t, []toast{{"Item removed from cart", app.SeveritySuccess}}, f.notify.toasts)
		// Success removes the element; nothing restores the control.
		assert.Zero(t, ctl.restores)
	})

	t.Run("last row removed -> reload after grace delay", func(t *testing.T) {
		orders := &fakeOrders{current: domain.Order{
			ID:    "7",
			Items: []domain.OrderItem{{ID: "11", ItemID: "p1", Quantity: 1}},
		}}
		f := newFixture(orders, "11")
		ctl := newFakeControl("Remove")

		f.ctrl.RemoveItem(ctx, "11", ctl)

		assert.Zero(t, f.page.CartRowCount())
		require.Len(t, f.sched.queue, 1)
		assert.Equal(t, time.Second, f.sched.queue[0].d)
		assert.Zero(t, f.page.reloads)

		f.sched.fire()
		assert.Equal(t, 1, f.page.reloads)
	})

	t.Run("remove fails -> error toast, row kept, control restored", func(t *testing.T) {
		orders := &fakeOrders{
			current:   domain.Order{ID: "7"},
			removeErr: &httpjson.RequestError{Message: "Not found", Status: 404},
		}
		f := newFixture(orders, "11")
		ctl := newFakeControl("Remove")

		f.ctrl.RemoveItem(ctx, "11", ctl)

		assert.Equal(t, 1, f.page.CartRowCount())
		assert.Equal(t, []toast{{"Error removing item", app.SeverityError}}, f.notify.toasts)
		assert.False(t, ctl.busy)
		assert.Equal(t, "Remove", ctl.label)
		assert.Empty(t, f.sched.queue)
	})

	t.Run("no current order -> silent no-op, control restored", func(t *testing.T) {
		orders := &fakeOrders{}
		f := newFixture(orders, "11")
		ctl := newFakeControl("Remove")

		f.ctrl.RemoveItem(ctx, "11", ctl)

		assert.Empty(t, orders.removes)
		assert.Empty(t, f.notify.toasts)
		assert.False(t, ctl.busy)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("success -> navigate to checkout URL, absolute return URLs", func(t *testing.T) {
		orders := &fakeOrders{
			current:     domain.Order{ID: "7"},
			checkoutURL: "https://pay.example/x",
		}
		f := newFixture(orders)
		ctl := newFakeControl("Checkout")

		f.ctrl.Checkout(ctx, ctl)

		require.Len(t, orders.checkouts, 1)
		assert.Equal(t, checkoutCall{
			orderID:    "7",
			successURL: "http://shop.local/order/success/",
			cancelURL:  "http://shop.local/cart/",
		}, orders.checkouts[0])
		assert.Equal(t, []string{"https://pay.example/x"}, f.page.navigated)
		assert.Empty(t, f.notify.toasts)
	})

	t.Run("checkout fails -> error toast, no navigation, control restored", func(t *testing.T) {
		orders := &fakeOrders{
			current:     domain.Order{ID: "7"},
			checkoutErr: &httpjson.RequestError{Message: "request failed: 502", Status: 502},
		}
		f := newFixture(orders)
		ctl := newFakeControl("Checkout")

		f.ctrl.Checkout(ctx, ctl)

		assert.Empty(t, f.page.navigated)
		assert.Equal(t, []toast{{"Error during checkout", app.SeverityError}}, f.notify.toasts)
		assert.False(t, ctl.busy)
		assert.Equal(t, "Checkout", ctl.label)
	})

	t.Run("empty checkout URL -> no navigation", func(t *testing.T) {
		orders := &fakeOrders{current: domain.Order{ID: "7"}}
		f := newFixture(orders)
		ctl := newFakeControl("Checkout")

		f.ctrl.Checkout(ctx, ctl)

		assert.Empty(t, f.page.navigated)
		assert.False(t, ctl.busy)
	})

	t.Run("no current order -> silent no-op", func(t *testing.T) {
		orders := &fakeOrders{}
		f := newFixture(orders)
		ctl := newFakeControl("Checkout")

		f.ctrl.Checkout(ctx, ctl)

		assert.Empty(t, orders.checkouts)
		assert.Empty(t, f.notify.toasts)
		assert.False(t, ctl.busy)
	})
}

func TestRefreshCount(t *testing.T) {
	ctx := context.Background()

	t.Run("sums quantities across lines", func(t *testing.T) {
		orders := &fakeOrders{current: domain.Order{
			ID: "7",
			Items: []domain.OrderItem{
				{ID: "1", ItemID: "p1", Quantity: 2},
				{ID: "2", ItemID: "p2", Quantity: 1},
			},
		}}
		f := newFixture(orders)

		f.ctrl.RefreshCount(ctx)

		assert.Equal(t, 3, f.page.count)
	})

	t.Run("no order -> display untouched, no toast", func(t *testing.T) {
		orders := &fakeOrders{}
		f := newFixture(orders)

		f.ctrl.RefreshCount(ctx)

		assert.Zero(t, f.page.countSet)
		assert.Empty(t, f.notify.toasts)
	})

	t.Run("fetch fails -> display untouched, no toast", func(t *testing.T) {
		orders := &fakeOrders{resolveErr: &httpjson.RequestError{Message: "request failed: 500", Status: 500}}
		f := newFixture(orders)

		f.ctrl.RefreshCount(ctx)

		assert.Zero(t, f.page.countSet)
		assert.Empty(t, f.notify.toasts)
	})
}

func TestLoadCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("renders fetched products", func(t *testing.T) {
		orders := &fakeOrders{}
		f := newFixture(orders)
		f.catalog.products = []domain.Product{{ID: "p1", Name: "Mug"}}

		f.ctrl.LoadCatalog(ctx)

		require.Len(t, f.page.rendered, 1)
		assert.Equal(t, "Mug", f.page.rendered[0].Name)
	})

	t.Run("fetch fails -> error toast", func(t *testing.T) {
		orders := &fakeOrders{}
		f := newFixture(orders)
		f.catalog.err = &httpjson.RequestError{Message: "request failed: 503", Status: 503}

		f.ctrl.LoadCatalog(ctx)

		assert.Equal(t, []toast{{"Failed to load products", app.SeverityError}}, f.notify.toasts)
	})
}

// Two distinct controls may run concurrently; the only serialization is
// the per-control busy state. The display ends at whichever refresh
// completed last, which is accepted.
func TestConcurrentAddsOnDistinctControls(t *testing.T) {
	ctx := context.Background()
	orders := &fakeOrders{current: domain.Order{
		ID:    "7",
		Items: []domain.OrderItem{{ID: "1", ItemID: "p1", Quantity: 1}},
	}}
	f := newFixture(orders)

	ctlA := newFakeControl("Add to Cart")
	ctlB := newFakeControl("Add to Cart")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { f.ctrl.AddToCart(ctx, "p1", ctlA); return nil })
	g.Go(func() error { f.ctrl.AddToCart(ctx, "p2", ctlB); return nil })
	require.NoError(t, g.Wait())

	assert.Len(t, orders.adds, 2)
	assert.False(t, ctlA.busy)
	assert.False(t, ctlB.busy)
	assert.Equal(t, "Add to Cart", ctlA.label)
	assert.Equal(t, "Add to Cart", ctlB.label)
}
