package domain

// OrderItem is a line entry within the current order. ID keys removal on
// the server; ItemID references the product it was added from.
type OrderItem struct {
	ID       string
	ItemID   string
	Quantity int
}

// Order is the server-owned cart. The client never caches one across
// operations: every operation re-resolves the current order, because the
// server may create, reuse, or expire it between interactions. An Order
// with an empty ID is the defined "no current order" state, not an error.
type Order struct {
	ID    string
	Items []OrderItem
}

func (o Order) Absent() bool { return o.ID == "" }

// ItemCount sums quantities across all lines; the cart-count display is
// always recomputed from this, never mutated incrementally.
func (o Order) ItemCount() int {
	total := 0
	for _, it := range o.Items {
		total += it.Quantity
	}
	return total
}
