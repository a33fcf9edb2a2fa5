// Package checkout holds the order state of a checkout session and the
// registry that owns the open sessions.
package checkout

import (
	"context"
	"sync"

	"checkout-service/internal/catalog"
	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// Change is delivered to subscribers after an accepted action
type Change struct {
	Action Action
	State  State
}

// Subscriber observes accepted changes. It must not dispatch to the same store.
type Subscriber func(Change)

type subscription struct {
	id int
	fn Subscriber
}

// Store owns the state of one checkout. Actions are serialized; subscribers
// are notified in dispatch order, outside the state lock.
type Store struct {
	mu          sync.Mutex
	state       State
	closed      bool
	subscribers []subscription
	nextSubID   int
	cancelLoad  context.CancelFunc
	settled     chan struct{}

	notifyMu sync.Mutex
	logger   *zap.Logger
}

// NewStore creates a store in the Loading state
func NewStore() *Store {
	return &Store{
		state:   initialState(),
		settled: make(chan struct{}),
		logger:  util.GetLogger(),
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Settled is closed once the store leaves Loading or is closed
func (s *Store) Settled() <-chan struct{} {
	return s.settled
}

// Alive reports whether the store is still attached
func (s *Store) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Subscribe registers fn and returns a function that removes it.
// Subscribers are called in the order they subscribed.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Dispatch applies action and reports whether the state changed.
// Rejected actions, and any action on a closed store, are no-ops.
func (s *Store) Dispatch(action Action) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	action = resolve(s.state, action)
	next, reason := reduce(s.state, action)
	if reason != "" {
		s.mu.Unlock()
		if _, ok := action.(SetQuantity); ok {
			util.QuantityChangesRejected.WithLabelValues(reason).Inc()
		}
		s.logger.Debug("Action rejected",
			zap.String("action", actionName(action)),
			zap.String("reason", reason))
		return false
	}

	wasLoading := s.state.Loading()
	s.state = next
	if wasLoading && !next.Loading() {
		close(s.settled)
	}

	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub.fn)
	}
	change := Change{Action: action, State: next.clone()}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
	return true
}

// SetQuantity dispatches a SetQuantity action
func (s *Store) SetQuantity(productID int64, quantity int) bool {
	return s.Dispatch(SetQuantity{ProductID: productID, Quantity: quantity})
}

// Increase adds one unit of a product
func (s *Store) Increase(productID int64) bool {
	return s.Dispatch(Adjust{ProductID: productID, Delta: 1})
}

// Decrease removes one unit of a product
func (s *Store) Decrease(productID int64) bool {
	return s.Dispatch(Adjust{ProductID: productID, Delta: -1})
}

// Load fetches the catalog in the background. The completion is dropped
// if the store was closed in the meantime. Load only acts once.
func (s *Store) Load(ctx context.Context, source catalog.Source) {
	s.mu.Lock()
	if s.closed || s.cancelLoad != nil || !s.state.Loading() {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()

		products, err := source.Fetch(ctx)
		if !s.Alive() {
			s.logger.Debug("Store closed before catalog arrived, dropping result")
			return
		}
		if err != nil {
			s.logger.Warn("Catalog load failed", zap.Error(err))
			s.Dispatch(LoadFailed{Err: err})
			return
		}
		s.Dispatch(ProductsLoaded{Products: products})
	}()
}

// Close detaches the store: the pending fetch is cancelled, subscribers
// are released and later dispatches are ignored. It returns the final state.
func (s *Store) Close() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state.clone()
	}
	s.closed = true
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	if s.state.Loading() {
		close(s.settled)
	}
	s.subscribers = nil
	return s.state.clone()
}

func actionName(action Action) string {
	switch action.(type) {
	case ProductsLoaded:
		return "products_loaded"
	case LoadFailed:
		return "load_failed"
	case SetQuantity:
		return "set_quantity"
	case Adjust:
		return "adjust"
	default:
		return "unknown"
	}
}
