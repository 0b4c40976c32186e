package dispatch

import (
	"context"
	"log/slog"

	"github.com/nvoloshin/storefront/internal/storefront/app"
)

// Kind discriminates user actions. The original page dispatched on element
// class from one delegated listener; this table is that mechanism with the
// UI event system factored out.
type Kind string

const (
	KindAddToCart    Kind = "add-to-cart"
	KindRemoveItem   Kind = "remove-item"
	KindCheckout     Kind = "checkout"
	KindRefreshCount Kind = "refresh-count"
)

// Action is one discrete user intent. ProductID is set for add-to-cart,
// ItemID for remove-item; Control is the triggering element's affordance
// handle where one exists.
type Action struct {
	Kind      Kind
	ProductID string
	ItemID    string
	Control   app.Control
}

type Handler func(ctx context.Context, act Action)

// Table routes actions to handlers. Unknown kinds are dropped with a debug
// line, never an error: stray events must not disturb the page.
type Table struct {
	handlers map[Kind]Handler
	log      *slog.Logger
}

func NewTable(log *slog.Logger) *Table {
	return &Table{
		handlers: map[Kind]Handler{},
		log:      log,
	}
}

func (t *Table) Register(kind Kind, h Handler) {
	t.handlers[kind] = h
}

func (t *Table) Dispatch(ctx context.Context, act Action) {
	h, ok := t.handlers[act.Kind]
	if !ok {
		t.log.Debug("unhandled action", slog.String("kind", string(act.Kind)))
		return
	}
	h(ctx, act)
}
