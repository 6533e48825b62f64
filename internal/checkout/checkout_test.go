package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/checkout/internal/catalog"
	"github.com/fairyhunter13/checkout/internal/events"
	"github.com/fairyhunter13/checkout/internal/model"
)

type recorder struct {
	mu  sync.Mutex
	evs []events.Event
}

func (r *recorder) Publish(ev events.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return true
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, 0, len(r.evs))
	for _, ev := range r.evs {
		out = append(out, ev.Kind)
	}
	return out
}

func fixture() catalog.Static {
	return catalog.Static{
		{ID: "a", Name: "Laptop", AvailableCount: 2, Price: decimal.NewFromInt(600)},
		{ID: "b", Name: "Tablet", AvailableCount: 3, Price: decimal.NewFromInt(500)},
	}
}

func loaded(t *testing.T, pub events.Publisher) *Checkout {
	t.Helper()
	c := New("s1", pub)
	require.NoError(t, c.Load(context.Background(), fixture()))
	return c
}

func TestLoad_Success(t *testing.T) {
	rec := &recorder{}
	c := New("s1", rec)
	assert.Equal(t, StatusPending, c.Snapshot().Status)

	require.NoError(t, c.Load(context.Background(), fixture()))
	st := c.Snapshot()
	assert.Equal(t, StatusLoaded, st.Status)
	assert.Len(t, st.Products, 2)
	assert.NoError(t, st.Err)
	assert.Equal(t, []events.Kind{events.KindLoadStarted, events.KindLoadSucceeded}, rec.kinds())
}

func TestLoad_FailureIsDistinctFromEmpty(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	failed := New("s1", rec)
	err := failed.Load(context.Background(), catalog.SourceFunc(func(context.Context) ([]model.Product, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)
	fs := failed.Snapshot()
	assert.Equal(t, StatusFailed, fs.Status)
	assert.ErrorIs(t, fs.Err, boom)
	assert.Empty(t, fs.Products)
	assert.Contains(t, rec.kinds(), events.KindLoadFailed)

	empty := New("s2", nil)
	require.NoError(t, empty.Load(context.Background(), catalog.Static{}))
	es := empty.Snapshot()
	assert.Equal(t, StatusLoaded, es.Status)
	assert.Empty(t, es.Products)
	assert.NotEqual(t, fs.Status, es.Status)
}

func TestLoad_OnlyOnce(t *testing.T) {
	c := loaded(t, nil)
	assert.ErrorIs(t, c.Load(context.Background(), fixture()), ErrAlreadyStarted)
	assert.ErrorIs(t, c.Start(context.Background(), fixture()), ErrAlreadyStarted)
}

func TestLoad_RejectsInvalidProducts(t *testing.T) {
	c := New("s1", nil)
	err := c.Load(context.Background(), catalog.Static{{ID: "a", AvailableCount: 1, OrderedQuantity: 5}})
	assert.ErrorIs(t, err, model.ErrInvalidProduct)
	assert.Equal(t, StatusFailed, c.Snapshot().Status)
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	c := New("s1", nil)
	err := c.Load(context.Background(), catalog.Static{
		{ID: "a", Name: "Laptop", AvailableCount: 1, Price: decimal.NewFromInt(600)},
		{ID: "a", Name: "Tablet", AvailableCount: 3, Price: decimal.NewFromInt(500)},
	})
	assert.ErrorIs(t, err, model.ErrInvalidProduct)
	assert.Equal(t, StatusFailed, c.Snapshot().Status)
	_, err = c.Increment("a")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestStart_PendingUntilResolved(t *testing.T) {
	release := make(chan struct{})
	src := catalog.SourceFunc(func(ctx context.Context) ([]model.Product, error) {
		<-release
		return fixture().Fetch(ctx)
	})
	c := New("s1", nil)
	require.NoError(t, c.Start(context.Background(), src))
	assert.Equal(t, StatusPending, c.Snapshot().Status)
	_, err := c.Increment("a")
	assert.ErrorIs(t, err, ErrNotLoaded)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
	assert.Equal(t, StatusLoaded, c.Snapshot().Status)
}

func TestClose_CancelsPendingFetch(t *testing.T) {
	src := catalog.SourceFunc(func(ctx context.Context) ([]model.Product, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := New("s1", nil)
	require.NoError(t, c.Start(context.Background(), src))
	c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
	st := c.Snapshot()
	assert.Equal(t, StatusFailed, st.Status)
	assert.ErrorIs(t, st.Err, context.Canceled)
	assert.ErrorIs(t, c.Start(context.Background(), fixture()), ErrClosed)
}

func TestIncrementDecrement_StepsByOneAndIsolatesProducts(t *testing.T) {
	c := loaded(t, nil)
	p, err := c.Increment("a")
	require.NoError(t, err)
	assert.Equal(t, 1, p.OrderedQuantity)
	p, err = c.Increment("a")
	require.NoError(t, err)
	assert.Equal(t, 2, p.OrderedQuantity)
	p, err = c.Decrement("a")
	require.NoError(t, err)
	assert.Equal(t, 1, p.OrderedQuantity)

	st := c.Snapshot()
	assert.Equal(t, 1, st.Products[0].OrderedQuantity)
	assert.Equal(t, 0, st.Products[1].OrderedQuantity)
}

func TestBoundsAreEnforced(t *testing.T) {
	rec := &recorder{}
	c := loaded(t, rec)

	_, err := c.Decrement("a")
	assert.ErrorIs(t, err, ErrBelowZero)

	for i := 0; i < 2; i++ {
		_, err = c.Increment("a")
		require.NoError(t, err)
	}
	p, err := c.Increment("a")
	assert.ErrorIs(t, err, ErrAboveAvailable)
	assert.Equal(t, 2, p.OrderedQuantity)
	assert.Equal(t, 2, c.Snapshot().Products[0].OrderedQuantity)
	assert.Contains(t, rec.kinds(), events.KindQuantityRejected)
}

func TestUnknownProductLeavesStateUnchanged(t *testing.T) {
	c := loaded(t, nil)
	before := c.Snapshot()
	_, err := c.Increment("zzz")
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Equal(t, before, c.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	c := loaded(t, nil)
	st := c.Snapshot()
	st.Products[0].OrderedQuantity = 99
	assert.Equal(t, 0, c.Snapshot().Products[0].OrderedQuantity)
}

func TestTotalAndSummary(t *testing.T) {
	c := loaded(t, nil)
	_, _ = c.Increment("a")
	assert.Equal(t, "600", c.Total().String())
	assert.False(t, c.Summary().DiscountApplied)

	_, _ = c.Increment("b")
	s := c.Summary()
	assert.True(t, s.DiscountApplied)
	assert.Equal(t, "110.00", s.Discount.StringFixed(2))
	assert.Equal(t, "990.00", s.Payable.StringFixed(2))
}

func TestConcurrentClicksStayInBounds(t *testing.T) {
	c := loaded(t, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _, _ = c.Increment("b") }()
		go func() { defer wg.Done(); _, _ = c.Decrement("b") }()
	}
	wg.Wait()
	q := c.Snapshot().Products[1].OrderedQuantity
	assert.GreaterOrEqual(t, q, 0)
	assert.LessOrEqual(t, q, 3)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
