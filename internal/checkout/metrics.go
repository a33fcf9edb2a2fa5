package checkout

import (
	"checkout-service/internal/util"
)

// MetricsObserver records session activity in Prometheus
type MetricsObserver struct{}

func (MetricsObserver) SessionStarted(sessionID string) {
	util.CheckoutSessionsStarted.Inc()
	util.CheckoutSessionsActive.Inc()
}

func (MetricsObserver) StateChanged(sessionID string, change Change) {
	if _, ok := change.Action.(SetQuantity); ok {
		util.QuantityChangesTotal.Inc()
	}
}

func (MetricsObserver) SessionClosed(sessionID string, final State) {
	util.CheckoutSessionsActive.Dec()
	if final.Ready() && final.Totals().Discount.IsPositive() {
		util.DiscountedCheckoutsTotal.Inc()
	}
}
