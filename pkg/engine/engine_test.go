package engine

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rooklift/disorderbook/pkg/book"
	"github.com/rooklift/disorderbook/pkg/util"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	clock := util.NewManualClock(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(ctx, book.New("TESTEX", "FOOBAR", clock), zap.NewNop().Sugar())
}

func TestPlaceStatusCancelRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	placed, err := e.Place(book.OrderSpec{
		Account: "A", AccountID: 0, Side: book.Sell, Type: book.Limit, Price: 50, Qty: 100,
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, placed.ID)
	require.True(t, placed.Open)

	owner, err := e.AccountOf(placed.ID)
	require.NoError(t, err)
	require.Equal(t, "A", owner)

	got, err := e.Status(placed.ID)
	require.NoError(t, err)
	require.Equal(t, placed, got)

	cancelled, err := e.Cancel(placed.ID)
	require.NoError(t, err)
	require.False(t, cancelled.Open)

	again, err := e.Cancel(placed.ID)
	require.NoError(t, err)
	require.Equal(t, cancelled, again)
}

func TestUnknownOrderErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Status(42)
	require.ErrorIs(t, err, book.ErrNoSuchOrder)
	_, err = e.Cancel(42)
	require.ErrorIs(t, err, book.ErrNoSuchOrder)
	_, err = e.AccountOf(42)
	require.ErrorIs(t, err, book.ErrNoSuchOrder)
}

// TestFaultConfinement feeds the engine a command the front end should have
// rejected. The book panics; the engine must turn that into an error on this
// command and keep serving the next one.
func TestFaultConfinement(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Place(book.OrderSpec{Account: "A", Side: book.Buy, Type: book.Limit, Price: 10, Qty: 0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "engine fault")

	snap, err := e.Place(book.OrderSpec{Account: "A", Side: book.Buy, Type: book.Limit, Price: 10, Qty: 5})
	require.NoError(t, err)
	require.True(t, snap.Open)
}

// TestSerialization runs many concurrent placers against one engine and
// checks every reply carries a unique id and the arena ends up dense.
func TestSerialization(t *testing.T) {
	e := newTestEngine(t)

	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	ids := make([]int32, 0, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			side := book.Buy
			if w%2 == 0 {
				side = book.Sell
			}
			for i := 0; i < perWorker; i++ {
				snap, err := e.Place(book.OrderSpec{
					Account:   "A",
					AccountID: 0,
					Side:      side,
					Type:      book.Limit,
					Price:     int32(50 + w),
					Qty:       10,
				})
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				ids = append(ids, snap.ID)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	require.Len(t, ids, workers*perWorker)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		require.EqualValues(t, i, id, "ids must be dense and unique")
	}
}

func TestQuoteAndDepthThroughEngine(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Place(book.OrderSpec{Account: "A", Side: book.Sell, Type: book.Limit, Price: 52, Qty: 7})
	require.NoError(t, err)
	_, err = e.Place(book.OrderSpec{Account: "B", AccountID: 1, Side: book.Buy, Type: book.Limit, Price: 49, Qty: 3})
	require.NoError(t, err)

	q, err := e.Quote()
	require.NoError(t, err)
	require.NotNil(t, q.Bid)
	require.EqualValues(t, 49, *q.Bid)
	require.NotNil(t, q.Ask)
	require.EqualValues(t, 52, *q.Ask)
	require.Nil(t, q.Last)

	d, err := e.Depth()
	require.NoError(t, err)
	require.Len(t, d.Bids, 1)
	require.Len(t, d.Asks, 1)

	orders, err := e.StatusAll(1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "B", orders[0].Account)

	pos, err := e.Positions()
	require.NoError(t, err)
	require.Empty(t, pos)

	stats, err := e.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.Orders)
}
