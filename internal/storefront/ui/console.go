package ui

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/nvoloshin/storefront/internal/storefront/app"
	"github.com/nvoloshin/storefront/internal/storefront/domain"
)

// ConsolePage is the terminal rendition of the storefront page surface:
// product grid, cart rows keyed by order-item id, a cart-count label, and
// per-control affordances. It implements app.Page and ToastSink.
type ConsolePage struct {
	mu sync.Mutex

	out    io.Writer
	origin string

	products []domain.Product
	rows     map[string]string // item id -> product reference
	count    int

	controls map[string]*Control

	// OnNavigate and OnReload are the bootstrap's hooks for leaving the
	// page and for the empty-cart reset.
	OnNavigate func(url string)
	OnReload   func()
}

func NewConsolePage(out io.Writer, origin string) *ConsolePage {
	return &ConsolePage{
		out:      out,
		origin:   origin,
		rows:     map[string]string{},
		controls: map[string]*Control{},
	}
}

func (p *ConsolePage) RenderProducts(products []domain.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products = products

	fmt.Fprintln(p.out, "--- products ---")
	for _, prod := range products {
		fmt.Fprintf(p.out, "[%s] %s  %s %s\n", prod.ID, prod.Name, prod.Price.StringFixed(2), prod.Currency)
		if prod.Description != "" {
			fmt.Fprintf(p.out, "     %s\n", prod.Description)
		}
	}
}

func (p *ConsolePage) SetCartCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = n
	fmt.Fprintf(p.out, "cart: %d\n", n)
}

// SetCartRows replaces the rendered cart rows; the bootstrap calls this
// after each order fetch so removals have rows to act on.
func (p *ConsolePage) SetCartRows(items []domain.OrderItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = map[string]string{}
	for _, it := range items {
		p.rows[it.ID] = it.ItemID
	}
}

func (p *ConsolePage) RemoveCartRow(itemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.rows, itemID)
}

func (p *ConsolePage) CartRowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rows)
}

// CartRows lists row ids in stable order, for display.
func (p *ConsolePage) CartRows() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.rows))
	for id := range p.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *ConsolePage) Origin() string { return p.origin }

func (p *ConsolePage) Navigate(url string) {
	p.mu.Lock()
	nav := p.OnNavigate
	p.mu.Unlock()

	fmt.Fprintf(p.out, "redirecting to %s\n", url)
	if nav != nil {
		nav(url)
	}
}

func (p *ConsolePage) Reload() {
	p.mu.Lock()
	reload := p.OnReload
	p.mu.Unlock()

	fmt.Fprintln(p.out, "reloading page")
	if reload != nil {
		reload()
	}
}

// ControlFor returns the named control, creating an idle one on first use.
func (p *ConsolePage) ControlFor(name, label string) *Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctl, ok := p.controls[name]; ok {
		return ctl
	}
	ctl := &Control{label: label}
	p.controls[name] = ctl
	return ctl
}

func (p *ConsolePage) Show(t Toast) {}

func (p *ConsolePage) SetVisible(t Toast, visible bool) {
	if !visible {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	marker := "ok"
	if t.Severity == app.SeverityError {
		marker = "error"
	}
	fmt.Fprintf(p.out, "[%s] %s\n", marker, t.Message)
}

func (p *ConsolePage) Remove(t Toast) {}

// Control is a single button's affordance: idle with its own label, or
// busy with a placeholder and the original label saved for restoration.
type Control struct {
	mu    sync.Mutex
	label string
	saved string
	busy  bool
}

func (c *Control) SetBusy(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.busy {
		c.saved = c.label
	}
	c.label = label
	c.busy = true
}

func (c *Control) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.busy {
		return
	}
	c.label = c.saved
	c.busy = false
}

// Busy reports whether the control is mid-operation; a busy control emits
// no further actions, which is the client's only serialization.
func (c *Control) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Control) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}
