package checkout

import (
	"context"
	"errors"
	"sync"

	"checkout-service/internal/catalog"
	"checkout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or closed session ids
var ErrSessionNotFound = errors.New("checkout session not found")

// Observer follows every session owned by a Registry
type Observer interface {
	SessionStarted(sessionID string)
	StateChanged(sessionID string, change Change)
	SessionClosed(sessionID string, final State)
}

// Registry owns the open checkout sessions
type Registry struct {
	ctx       context.Context
	source    catalog.Source
	observers []Observer
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Store
}

// NewRegistry creates a registry. Catalog fetches run under ctx, which
// should live as long as the process.
func NewRegistry(ctx context.Context, source catalog.Source, observers ...Observer) *Registry {
	return &Registry{
		ctx:       ctx,
		source:    source,
		observers: observers,
		logger:    util.GetLogger(),
		sessions:  make(map[string]*Store),
	}
}

// Start opens a session and begins loading its catalog
func (r *Registry) Start() (string, *Store) {
	id := uuid.New().String()
	store := NewStore()

	store.Subscribe(func(change Change) {
		for _, o := range r.observers {
			o.StateChanged(id, change)
		}
	})

	r.mu.Lock()
	r.sessions[id] = store
	r.mu.Unlock()

	for _, o := range r.observers {
		o.SessionStarted(id)
	}
	r.logger.Info("Checkout session started", zap.String("session_id", id))

	store.Load(r.ctx, r.source)
	return id, store
}

// Get returns an open session
func (r *Registry) Get(id string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return store, nil
}

// Close discards a session
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	store, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	final := store.Close()
	for _, o := range r.observers {
		o.SessionClosed(id, final)
	}
	r.logger.Info("Checkout session closed",
		zap.String("session_id", id),
		zap.String("status", final.Status))
	return nil
}

// CloseAll discards every open session
func (r *Registry) CloseAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Close(id)
	}
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
