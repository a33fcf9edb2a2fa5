package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"checkout-service/internal/catalog"
	"checkout-service/internal/models"
	"checkout-service/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Keyboard", AvailableCount: 5, Price: decimal.NewFromInt(100)},
		{ID: 2, Name: "Chair", AvailableCount: 10, Price: decimal.NewFromInt(200)},
		{ID: 3, Name: "Lamp", AvailableCount: 0, Price: decimal.RequireFromString("24.99")},
	}
}

// blockingSource returns once release is closed
type blockingSource struct {
	release chan struct{}
	started chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{release: make(chan struct{}), started: make(chan struct{})}
}

func (b *blockingSource) Fetch(ctx context.Context) ([]models.Product, error) {
	close(b.started)
	<-b.release
	return testProducts(), nil
}

func waitSettled(t *testing.T, s *Store) {
	t.Helper()
	select {
	case <-s.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("store did not settle")
	}
}

func readyStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Load(context.Background(), catalog.NewStaticSource(testProducts()))
	waitSettled(t, s)
	require.True(t, s.Snapshot().Ready())
	return s
}

func TestStoreStartsLoading(t *testing.T) {
	s := NewStore()

	state := s.Snapshot()
	assert.True(t, state.Loading())
	assert.Empty(t, state.Products)
	assert.Empty(t, state.Order)
}

func TestStoreLoadsCatalog(t *testing.T) {
	s := readyStore(t)

	state := s.Snapshot()
	assert.Equal(t, models.StatusReady, state.Status)
	assert.Len(t, state.Products, 3)
	assert.NoError(t, state.Err)
}

func TestStoreLoadFailureSurfacesError(t *testing.T) {
	boom := errors.New("service unavailable")
	s := NewStore()
	s.Load(context.Background(), catalog.NewStaticSource(nil, catalog.WithError(boom)))
	waitSettled(t, s)

	state := s.Snapshot()
	assert.Equal(t, models.StatusFailed, state.Status)
	assert.ErrorIs(t, state.Err, boom)
	assert.False(t, s.SetQuantity(1, 1))
}

func TestReadyIsTerminal(t *testing.T) {
	s := readyStore(t)

	assert.False(t, s.Dispatch(ProductsLoaded{Products: nil}))
	assert.False(t, s.Dispatch(LoadFailed{Err: errors.New("late")}))
	assert.True(t, s.Snapshot().Ready())
	assert.Len(t, s.Snapshot().Products, 3)
}

func TestSetQuantityWithinBounds(t *testing.T) {
	s := readyStore(t)

	assert.True(t, s.SetQuantity(1, 3))
	assert.Equal(t, 3, s.Snapshot().Quantity(1))

	assert.True(t, s.SetQuantity(1, 5))
	assert.Equal(t, 5, s.Snapshot().Quantity(1))

	assert.True(t, s.SetQuantity(1, 0))
	_, present := s.Snapshot().Order[1]
	assert.False(t, present)
}

func TestSetQuantityRejectsInvalidInput(t *testing.T) {
	s := readyStore(t)
	require.True(t, s.SetQuantity(1, 2))

	tests := []struct {
		name      string
		productID int64
		quantity  int
	}{
		{"negative", 1, -1},
		{"above available", 1, 6},
		{"unavailable product", 3, 1},
		{"unknown product", 42, 1},
		{"unchanged", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, s.SetQuantity(tt.productID, tt.quantity))
			assert.Equal(t, models.Quantities{1: 2}, s.Snapshot().Order)
		})
	}
}

func TestSetQuantityBeforeReadyIsNoop(t *testing.T) {
	s := NewStore()

	assert.False(t, s.SetQuantity(1, 1))
	assert.Empty(t, s.Snapshot().Order)
}

func TestDecreaseAtZeroIsNoop(t *testing.T) {
	s := readyStore(t)

	assert.False(t, s.Decrease(1))
	assert.Equal(t, 0, s.Snapshot().Quantity(1))
}

func TestIncreaseAtAvailableIsNoop(t *testing.T) {
	s := readyStore(t)
	require.True(t, s.SetQuantity(1, 5))

	assert.False(t, s.Increase(1))
	assert.Equal(t, 5, s.Snapshot().Quantity(1))
}

func TestConcurrentIncreasesNeverExceedAvailability(t *testing.T) {
	s := readyStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Increase(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, s.Snapshot().Quantity(1))
}

func TestTotalsDerivedFromOrder(t *testing.T) {
	s := readyStore(t)
	require.True(t, s.SetQuantity(2, 6))

	totals := s.Snapshot().Totals()
	assert.Equal(t, "$ 1200.00", pricing.Format(totals.OrderTotal))
	assert.Equal(t, "$ 120.00", pricing.Format(totals.Discount))
	assert.Equal(t, "$ 1080.00", pricing.Format(totals.PayableTotal))

	require.True(t, s.Decrease(2))
	totals = s.Snapshot().Totals()
	assert.True(t, totals.Discount.IsZero())
	assert.Equal(t, "$ 1000.00", pricing.Format(totals.PayableTotal))
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := readyStore(t)
	require.True(t, s.SetQuantity(1, 1))

	snap := s.Snapshot()
	snap.Order[1] = 99
	snap.Products[0].AvailableCount = 0

	assert.Equal(t, 1, s.Snapshot().Quantity(1))
	assert.Equal(t, 5, s.Snapshot().Products[0].AvailableCount)
}

func TestSubscribersSeeAcceptedChangesInOrder(t *testing.T) {
	s := readyStore(t)

	var seen []int
	unsubscribe := s.Subscribe(func(c Change) {
		seen = append(seen, c.State.Quantity(1))
	})

	s.Increase(1)
	s.Increase(1)
	s.Decrease(1)
	s.SetQuantity(1, 10) // rejected

	assert.Equal(t, []int{1, 2, 1}, seen)

	unsubscribe()
	s.Increase(1)
	assert.Len(t, seen, 3)
}

func TestSubscribersCalledInSubscriptionOrder(t *testing.T) {
	s := readyStore(t)

	var order []int
	for i := 0; i < 8; i++ {
		i := i
		s.Subscribe(func(Change) { order = append(order, i) })
	}
	unsubscribe := s.Subscribe(func(Change) { order = append(order, 99) })
	s.Subscribe(func(Change) { order = append(order, 8) })
	unsubscribe()

	require.True(t, s.Increase(1))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, order)

	order = nil
	require.True(t, s.Increase(1))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, order)
}

func TestAdjustIsReportedAsSetQuantity(t *testing.T) {
	s := readyStore(t)

	var got Action
	s.Subscribe(func(c Change) { got = c.Action })
	s.Increase(2)

	assert.Equal(t, SetQuantity{ProductID: 2, Quantity: 1}, got)
}

func TestCloseBeforeFetchResolvesDropsResult(t *testing.T) {
	src := newBlockingSource()
	s := NewStore()

	notified := false
	s.Subscribe(func(Change) { notified = true })

	s.Load(context.Background(), src)
	<-src.started

	final := s.Close()
	assert.True(t, final.Loading())
	assert.False(t, s.Alive())

	close(src.release)
	waitSettled(t, s)

	time.Sleep(20 * time.Millisecond)
	assert.True(t, s.Snapshot().Loading())
	assert.False(t, notified)
}

func TestLoadRunsOnce(t *testing.T) {
	s := readyStore(t)

	s.Load(context.Background(), catalog.NewStaticSource(nil, catalog.WithError(errors.New("second"))))
	time.Sleep(20 * time.Millisecond)

	assert.True(t, s.Snapshot().Ready())
}

func TestClosedStoreIgnoresDispatch(t *testing.T) {
	s := readyStore(t)
	s.Close()

	assert.False(t, s.Increase(1))
	assert.Equal(t, 0, s.Snapshot().Quantity(1))
}
