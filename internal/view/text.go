package view

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"checkout-service/internal/checkout"
	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// RenderText writes the page as a plain-text table
func (p Page) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", p.Title); err != nil {
		return err
	}

	if p.Loading {
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	}
	if p.Error != "" {
		_, err := fmt.Fprintln(w, p.Error)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Product ID\tProduct Name\t# Available\tPrice\tQuantity\tTotal\t\t")
	for _, r := range p.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Name, r.AvailableCount, r.Price, r.Quantity, r.Total,
			control("+", r.IncreaseDisabled), control("-", r.DecreaseDisabled))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if p.Summary == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nOrder summary\n"); err != nil {
		return err
	}
	if p.Summary.DiscountText != "" {
		if _, err := fmt.Fprintln(w, p.Summary.DiscountText); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total: %s\n", p.Summary.Total)
	return err
}

func control(label string, disabled bool) string {
	if disabled {
		return "(" + label + ")"
	}
	return "[" + label + "]"
}

// Live re-renders a store's page to w after every accepted change
type Live struct {
	store       *checkout.Store
	w           io.Writer
	mu          sync.Mutex
	unsubscribe func()
	logger      *zap.Logger
}

// NewLive renders the current page and subscribes to store
func NewLive(store *checkout.Store, w io.Writer) *Live {
	l := &Live{
		store:  store,
		w:      w,
		logger: util.GetLogger(),
	}
	l.unsubscribe = store.Subscribe(func(c checkout.Change) {
		l.draw(c.State)
	})
	l.drawLatest()
	return l
}

// Page renders the latest state
func (l *Live) Page() Page {
	return Render(l.store.Snapshot(), l.store)
}

// Stop ends the subscription
func (l *Live) Stop() {
	l.unsubscribe()
}

func (l *Live) draw(state checkout.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(state)
}

// drawLatest renders the current snapshot. Taking it under mu means any
// change it misses is still pending delivery and will be drawn after it.
func (l *Live) drawLatest() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(l.store.Snapshot())
}

func (l *Live) write(state checkout.State) {
	if err := Render(state, l.store).RenderText(l.w); err != nil {
		l.logger.Warn("Failed to render checkout", zap.Error(err))
	}
}
