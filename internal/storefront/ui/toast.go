package ui

import (
	"sync"
	"time"

	"github.com/nvoloshin/storefront/internal/storefront/app"
)

// Toast display timings, matching the page stylesheet's transitions.
const (
	appearDelay = 10 * time.Millisecond
	visibleFor  = 3 * time.Second
	fadeOut     = 300 * time.Millisecond
)

// Toast is one ephemeral notification moving through appearing -> visible
// -> removed. It carries no state between notifications.
type Toast struct {
	ID       int
	Message  string
	Severity app.Severity
}

// ToastSink receives display transitions: Show when the toast enters the
// surface (not yet visible), SetVisible for the fade in/out, Remove when
// it leaves for good.
type ToastSink interface {
	Show(t Toast)
	SetVisible(t Toast, visible bool)
	Remove(t Toast)
}

// ToastNotifier implements app.Notifier as a timed state machine over a
// Scheduler. Notify never blocks; each toast runs its own lifecycle and
// overlapping toasts are independent.
type ToastNotifier struct {
	sched app.Scheduler
	sink  ToastSink

	mu  sync.Mutex
	seq int
}

func NewToastNotifier(sched app.Scheduler, sink ToastSink) *ToastNotifier {
	return &ToastNotifier{sched: sched, sink: sink}
}

func (n *ToastNotifier) Notify(message string, severity app.Severity) {
	n.mu.Lock()
	n.seq++
	t := Toast{ID: n.seq, Message: message, Severity: severity}
	n.mu.Unlock()

	n.sink.Show(t)
	n.sched.AfterFunc(appearDelay, func() {
		n.sink.SetVisible(t, true)
		n.sched.AfterFunc(visibleFor, func() {
			n.sink.SetVisible(t, false)
			n.sched.AfterFunc(fadeOut, func() {
				n.sink.Remove(t)
			})
		})
	})
}
