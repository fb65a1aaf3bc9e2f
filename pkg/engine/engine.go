// Package engine runs one order book per goroutine. All access to a book
// flows through its engine's request channel, so the book itself needs no
// locking: command n's reply is fully written before command n+1 starts.
package engine

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"github.com/rooklift/disorderbook/pkg/book"
)

type opKind int

const (
	opPlace opKind = iota
	opCancel
	opStatus
	opAccountOf
	opStatusAll
	opDepth
	opQuote
	opPositions
	opStats
)

type request struct {
	kind      opKind
	spec      book.OrderSpec
	id        int32
	accountID int
	reply     chan response
}

type response struct {
	order     *book.OrderSnapshot
	orders    []book.OrderSnapshot
	depth     *book.DepthSnapshot
	quote     *book.QuoteSnapshot
	positions []book.PositionSnapshot
	stats     *book.Stats
	account   string
	err       error
}

// Engine owns exactly one Book. Requests are processed strictly in arrival
// order; a panic inside the book is confined to the offending command and
// surfaced as its error.
type Engine struct {
	b      *book.Book
	reqs   chan request
	log    *zap.SugaredLogger
	orders *metrics.Counter
	trades *metrics.Counter
}

// New starts the engine goroutine. It runs until ctx is cancelled, which in
// practice means for the life of the process: books are never destroyed.
func New(ctx context.Context, b *book.Book, log *zap.SugaredLogger) *Engine {
	e := &Engine{
		b:    b,
		reqs: make(chan request),
		log:  log,
		orders: metrics.GetOrCreateCounter(
			fmt.Sprintf(`book_orders_total{venue=%q,symbol=%q}`, b.Venue(), b.Symbol())),
		trades: metrics.GetOrCreateCounter(
			fmt.Sprintf(`book_trades_total{venue=%q,symbol=%q}`, b.Venue(), b.Symbol())),
	}
	go e.loop(ctx)
	return e
}

func (e *Engine) Venue() string  { return e.b.Venue() }
func (e *Engine) Symbol() string { return e.b.Symbol() }

func (e *Engine) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.reqs:
			req.reply <- e.handle(req)
		}
	}
}

func (e *Engine) handle(req request) (resp response) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorw("engine_fault",
				"venue", e.b.Venue(), "symbol", e.b.Symbol(), "panic", r)
			resp = response{err: fmt.Errorf("engine fault: %v", r)}
		}
	}()

	switch req.kind {
	case opPlace:
		snap, err := e.b.Place(req.spec)
		if err == nil {
			e.orders.Inc()
			if snap.TotalFilled > 0 {
				e.trades.Inc()
			}
		}
		return response{order: snap, err: err}
	case opCancel:
		snap, err := e.b.Cancel(req.id)
		return response{order: snap, err: err}
	case opStatus:
		snap, err := e.b.Status(req.id)
		return response{order: snap, err: err}
	case opAccountOf:
		acc, err := e.b.AccountOf(req.id)
		return response{account: acc, err: err}
	case opStatusAll:
		return response{orders: e.b.StatusAll(req.accountID)}
	case opDepth:
		return response{depth: e.b.Depth()}
	case opQuote:
		return response{quote: e.b.Quote()}
	case opPositions:
		return response{positions: e.b.Positions()}
	case opStats:
		return response{stats: e.b.Stats()}
	}
	return response{err: fmt.Errorf("engine: unknown op %d", req.kind)}
}

func (e *Engine) send(req request) response {
	req.reply = make(chan response, 1)
	e.reqs <- req
	return <-req.reply
}

func (e *Engine) Place(spec book.OrderSpec) (*book.OrderSnapshot, error) {
	resp := e.send(request{kind: opPlace, spec: spec})
	return resp.order, resp.err
}

func (e *Engine) Cancel(id int32) (*book.OrderSnapshot, error) {
	resp := e.send(request{kind: opCancel, id: id})
	return resp.order, resp.err
}

func (e *Engine) Status(id int32) (*book.OrderSnapshot, error) {
	resp := e.send(request{kind: opStatus, id: id})
	return resp.order, resp.err
}

func (e *Engine) AccountOf(id int32) (string, error) {
	resp := e.send(request{kind: opAccountOf, id: id})
	return resp.account, resp.err
}

func (e *Engine) StatusAll(accountID int) ([]book.OrderSnapshot, error) {
	resp := e.send(request{kind: opStatusAll, accountID: accountID})
	return resp.orders, resp.err
}

func (e *Engine) Depth() (*book.DepthSnapshot, error) {
	resp := e.send(request{kind: opDepth})
	return resp.depth, resp.err
}

func (e *Engine) Quote() (*book.QuoteSnapshot, error) {
	resp := e.send(request{kind: opQuote})
	return resp.quote, resp.err
}

func (e *Engine) Positions() ([]book.PositionSnapshot, error) {
	resp := e.send(request{kind: opPositions})
	return resp.positions, resp.err
}

func (e *Engine) Stats() (*book.Stats, error) {
	resp := e.send(request{kind: opStats})
	return resp.stats, resp.err
}
