package book

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rooklift/disorderbook/pkg/util"
)

// MaxOrders stops id assignment short of 2^31 so downstream arithmetic on
// ids stays comfortably inside int32.
const MaxOrders = 2_000_000_000

var (
	ErrNoSuchOrder   = errors.New("no such order id")
	ErrTooManyOrders = errors.New("order id space exhausted")
)

// Book is one (venue, symbol) matching context. It is not safe for
// concurrent use: the engine serializes all access on a single goroutine.
//
// Orders live in a dense arena indexed by id and are never deleted;
// closing an order removes it from its price level only.
type Book struct {
	venue  string
	symbol string

	bids *bookSide
	asks *bookSide

	orders    []*Order
	positions map[int]*PositionSnapshot

	lastPrice  int32
	lastSize   int32
	lastTrade  time.Time
	haveTrade  bool
	tradeCount int64

	clock util.Clock
}

func New(venue, symbol string, clock util.Clock) *Book {
	return &Book{
		venue:     venue,
		symbol:    symbol,
		bids:      newBookSide(true),
		asks:      newBookSide(false),
		positions: make(map[int]*PositionSnapshot),
		clock:     clock,
	}
}

func (b *Book) Venue() string  { return b.venue }
func (b *Book) Symbol() string { return b.symbol }

// Place accepts a validated order, matches it against the opposing side and
// either rests the remainder (LIMIT) or discards it (MARKET, IOC, and FOK
// that failed its all-or-nothing precheck). Field ranges are asserted, not
// checked: validation is the front end's job.
func (b *Book) Place(spec OrderSpec) (*OrderSnapshot, error) {
	if spec.Price < 0 {
		panic(fmt.Sprintf("book: negative price %d", spec.Price))
	}
	if spec.Qty < 1 {
		panic(fmt.Sprintf("book: non-positive qty %d", spec.Qty))
	}
	if spec.Side != Buy && spec.Side != Sell {
		panic(fmt.Sprintf("book: bad side %d", spec.Side))
	}
	switch spec.Type {
	case Limit, Market, FOK, IOC:
	default:
		panic(fmt.Sprintf("book: bad order type %d", spec.Type))
	}

	if len(b.orders) >= MaxOrders {
		return nil, ErrTooManyOrders
	}

	o := &Order{
		ID:          int32(len(b.orders)),
		Account:     spec.Account,
		AccountID:   spec.AccountID,
		Side:        spec.Side,
		Type:        spec.Type,
		Price:       spec.Price,
		OriginalQty: spec.Qty,
		QtyOpen:     spec.Qty,
		Open:        true,
		Created:     b.clock.Now(),
	}
	b.orders = append(b.orders, o)

	b.execute(o)

	if o.QtyOpen > 0 {
		if o.Type == Limit {
			b.sideFor(o.Side).getOrCreate(o.Price).push(o)
		} else {
			// MARKET/IOC remainder is discarded; FOK reaching here had
			// zero fills by construction.
			o.QtyOpen = 0
			o.Open = false
		}
	} else {
		o.Open = false
	}

	// Market orders report price 0 regardless of what they crossed at.
	if o.Type == Market {
		o.Price = 0
	}

	return b.snapshot(o), nil
}

// execute walks the opposing side best-price-first. The resting side sets
// the trade price.
func (b *Book) execute(o *Order) {
	if o.Type == FOK && !b.fillable(o) {
		return
	}

	opp := b.sideFor(o.Side.opposite())
	for o.QtyOpen > 0 {
		lv, ok := opp.best()
		if !ok || !crosses(o, lv.price) {
			return
		}
		r := lv.front()
		b.cross(r, o, lv)
		if r.QtyOpen == 0 {
			r.Open = false
			lv.popFront()
			if lv.isEmpty() {
				opp.removeLevel(lv.price)
			}
		}
	}
}

// fillable is the FOK precheck: is there enough crossable quantity on the
// opposing side to fill o completely? Works by subtraction so a huge order
// quantity cannot overflow an accumulator.
func (b *Book) fillable(o *Order) bool {
	remaining := int64(o.QtyOpen)
	opp := b.sideFor(o.Side.opposite())
	opp.each(func(lv *level) bool {
		if !crosses(o, lv.price) {
			return false
		}
		remaining -= lv.totalQty
		return remaining > 0
	})
	return remaining <= 0
}

func crosses(o *Order, levelPrice int32) bool {
	if o.Type == Market {
		return true
	}
	if o.Side == Buy {
		return levelPrice <= o.Price
	}
	return levelPrice >= o.Price
}

// cross fills min(open, open) between a resting and an incoming order,
// attaching the identical fill to both and settling both accounts.
func (b *Book) cross(resting, incoming *Order, lv *level) {
	q := resting.QtyOpen
	if incoming.QtyOpen < q {
		q = incoming.QtyOpen
	}
	price := resting.Price
	ts := b.clock.Now()
	f := Fill{Price: price, Qty: q, TS: ts}

	resting.QtyOpen -= q
	resting.TotalFilled += q
	resting.Fills = append(resting.Fills, f)
	resting.LastFill = ts

	incoming.QtyOpen -= q
	incoming.TotalFilled += q
	incoming.Fills = append(incoming.Fills, f)
	incoming.LastFill = ts

	lv.reduce(q)

	b.lastPrice = price
	b.lastSize = q
	b.lastTrade = ts
	b.haveTrade = true
	b.tradeCount++

	buyer, seller := incoming, resting
	if incoming.Side == Sell {
		buyer, seller = resting, incoming
	}
	notional := int64(price) * int64(q)
	bp := b.position(buyer)
	bp.Cash -= notional
	bp.Shares += int64(q)
	sp := b.position(seller)
	sp.Cash += notional
	sp.Shares -= int64(q)
}

func (b *Book) position(o *Order) *PositionSnapshot {
	p, ok := b.positions[o.AccountID]
	if !ok {
		p = &PositionSnapshot{Account: o.Account}
		b.positions[o.AccountID] = p
	}
	return p
}

func (s Side) opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (b *Book) sideFor(s Side) *bookSide {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// Cancel closes the order and removes it from its level if it still rests.
// Idempotent: cancelling a closed order returns the current snapshot.
// Fills already recorded are preserved.
func (b *Book) Cancel(id int32) (*OrderSnapshot, error) {
	o, err := b.order(id)
	if err != nil {
		return nil, err
	}
	if o.Open {
		side := b.sideFor(o.Side)
		if lv, ok := side.get(o.Price); ok && lv.remove(id) {
			if lv.isEmpty() {
				side.removeLevel(lv.price)
			}
		}
		o.Open = false
	}
	return b.snapshot(o), nil
}

// Status is a pure read.
func (b *Book) Status(id int32) (*OrderSnapshot, error) {
	o, err := b.order(id)
	if err != nil {
		return nil, err
	}
	return b.snapshot(o), nil
}

// AccountOf reports the owning account, used by the front end to authorize
// status and cancel requests.
func (b *Book) AccountOf(id int32) (string, error) {
	o, err := b.order(id)
	if err != nil {
		return "", err
	}
	return o.Account, nil
}

// StatusAll snapshots every order the account has placed on this book.
func (b *Book) StatusAll(accountID int) []OrderSnapshot {
	out := []OrderSnapshot{}
	for _, o := range b.orders {
		if o.AccountID == accountID {
			out = append(out, *b.snapshot(o))
		}
	}
	return out
}

func (b *Book) order(id int32) (*Order, error) {
	if id < 0 || int(id) >= len(b.orders) {
		return nil, ErrNoSuchOrder
	}
	return b.orders[id], nil
}

// Depth returns both sides as (price, aggregate qty) rows, best-first.
func (b *Book) Depth() *DepthSnapshot {
	snap := &DepthSnapshot{
		OK:     true,
		Venue:  b.venue,
		Symbol: b.symbol,
		TS:     stamp(b.clock.Now()),
		Bids:   []DepthLevel{},
		Asks:   []DepthLevel{},
	}
	b.bids.each(func(lv *level) bool {
		snap.Bids = append(snap.Bids, DepthLevel{Price: lv.price, Qty: lv.totalQty, IsBuy: true})
		return true
	})
	b.asks.each(func(lv *level) bool {
		snap.Asks = append(snap.Asks, DepthLevel{Price: lv.price, Qty: lv.totalQty, IsBuy: false})
		return true
	})
	return snap
}

// Quote returns the top of book and last-trade summary.
func (b *Book) Quote() *QuoteSnapshot {
	q := &QuoteSnapshot{
		OK:        true,
		Venue:     b.venue,
		Symbol:    b.symbol,
		QuoteTime: stamp(b.clock.Now()),
	}
	if lv, ok := b.bids.best(); ok {
		p := lv.price
		q.Bid = &p
		q.BidSize = lv.totalQty
		q.BidDepth = b.bids.depth()
	}
	if lv, ok := b.asks.best(); ok {
		p := lv.price
		q.Ask = &p
		q.AskSize = lv.totalQty
		q.AskDepth = b.asks.depth()
	}
	if b.haveTrade {
		lp, ls := b.lastPrice, b.lastSize
		q.Last = &lp
		q.LastSize = &ls
		q.LastTrade = stamp(b.lastTrade)
	}
	return q
}

// Positions reports every account's running cash delta and share count,
// sorted by account name.
func (b *Book) Positions() []PositionSnapshot {
	out := make([]PositionSnapshot, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}

// Stats returns diagnostics about arena and book sizes.
func (b *Book) Stats() *Stats {
	s := &Stats{
		Orders:    len(b.orders),
		Trades:    b.tradeCount,
		BidLevels: b.bids.levels(),
		AskLevels: b.asks.levels(),
		Accounts:  len(b.positions),
	}
	for _, o := range b.orders {
		if o.Open {
			s.OpenOrders++
		}
		s.Fills += len(o.Fills)
	}
	return s
}

func (b *Book) snapshot(o *Order) *OrderSnapshot {
	fills := make([]FillSnapshot, 0, len(o.Fills))
	for _, f := range o.Fills {
		fills = append(fills, FillSnapshot{Price: f.Price, Qty: f.Qty, TS: stamp(f.TS)})
	}
	return &OrderSnapshot{
		OK:          true,
		Venue:       b.venue,
		Symbol:      b.symbol,
		Direction:   o.Side.String(),
		OriginalQty: o.OriginalQty,
		Qty:         o.QtyOpen,
		Price:       o.Price,
		OrderType:   o.Type.String(),
		ID:          o.ID,
		Account:     o.Account,
		TS:          stamp(o.Created),
		TotalFilled: o.TotalFilled,
		Open:        o.Open,
		Fills:       fills,
	}
}
