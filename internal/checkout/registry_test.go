package checkout

import (
	"context"
	"sync"
	"testing"

	"checkout-service/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	started []string
	changes map[string][]Change
	closed  map[string]State
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		changes: make(map[string][]Change),
		closed:  make(map[string]State),
	}
}

func (r *recordingObserver) SessionStarted(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, id)
}

func (r *recordingObserver) StateChanged(id string, change Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[id] = append(r.changes[id], change)
}

func (r *recordingObserver) SessionClosed(id string, final State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed[id] = final
}

func (r *recordingObserver) changesFor(id string) []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes[id]...)
}

func TestRegistryLifecycle(t *testing.T) {
	obs := newRecordingObserver()
	reg := NewRegistry(context.Background(), catalog.NewStaticSource(testProducts()), obs, MetricsObserver{})

	id, store := reg.Start()
	waitSettled(t, store)

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.Equal(t, 1, reg.Len())

	require.True(t, store.SetQuantity(2, 6))

	changes := obs.changesFor(id)
	require.Len(t, changes, 2)
	assert.IsType(t, ProductsLoaded{}, changes[0].Action)
	assert.Equal(t, SetQuantity{ProductID: 2, Quantity: 6}, changes[1].Action)

	require.NoError(t, reg.Close(id))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, []string{id}, obs.started)
	assert.Equal(t, 6, obs.closed[id].Quantity(2))

	_, err = reg.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, reg.Close(id), ErrSessionNotFound)
}

func TestRegistrySessionsAreIndependent(t *testing.T) {
	reg := NewRegistry(context.Background(), catalog.NewStaticSource(testProducts()))

	idA, a := reg.Start()
	idB, b := reg.Start()
	waitSettled(t, a)
	waitSettled(t, b)

	assert.NotEqual(t, idA, idB)
	require.True(t, a.SetQuantity(1, 4))
	assert.Equal(t, 0, b.Snapshot().Quantity(1))
}

func TestRegistryCloseAll(t *testing.T) {
	obs := newRecordingObserver()
	reg := NewRegistry(context.Background(), catalog.NewStaticSource(testProducts()), obs)

	for i := 0; i < 3; i++ {
		reg.Start()
	}
	reg.CloseAll()

	assert.Equal(t, 0, reg.Len())
	assert.Len(t, obs.closed, 3)
}
