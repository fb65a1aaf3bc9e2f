// Package exchange holds the process-wide state shared by all HTTP handlers:
// the book registry, the account-id intern table and the API keyring.
package exchange

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rooklift/disorderbook/pkg/book"
	"github.com/rooklift/disorderbook/pkg/engine"
	"github.com/rooklift/disorderbook/pkg/util"
)

var ErrTooManyBooks = errors.New("book limit reached")

// Registry maps (venue, symbol) to a running engine. Books are created
// lazily on first use, capped at a configured total, and never destroyed
// while the process lives.
type Registry struct {
	mu    sync.RWMutex
	books map[string]map[string]*engine.Engine
	count int
	max   int

	ctx   context.Context
	clock util.Clock
	log   *zap.SugaredLogger
}

func NewRegistry(ctx context.Context, max int, clock util.Clock, log *zap.SugaredLogger) *Registry {
	return &Registry{
		books: make(map[string]map[string]*engine.Engine),
		max:   max,
		ctx:   ctx,
		clock: clock,
		log:   log,
	}
}

// GetOrCreate returns the engine for (venue, symbol), spawning one if the
// book does not exist yet and the cap allows it. The check-and-insert is
// atomic under the registry lock.
func (r *Registry) GetOrCreate(venue, symbol string) (*engine.Engine, error) {
	r.mu.RLock()
	if e, ok := r.books[venue][symbol]; ok {
		r.mu.RUnlock()
		return e, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.books[venue][symbol]; ok {
		return e, nil
	}
	if r.count >= r.max {
		return nil, ErrTooManyBooks
	}

	if r.books[venue] == nil {
		r.books[venue] = make(map[string]*engine.Engine)
	}
	e := engine.New(r.ctx, book.New(venue, symbol, r.clock), r.log)
	r.books[venue][symbol] = e
	r.count++
	r.log.Infow("book_created", "venue", venue, "symbol", symbol, "books", r.count)
	return e, nil
}

// Lookup never creates a book.
func (r *Registry) Lookup(venue, symbol string) (*engine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.books[venue][symbol]
	return e, ok
}

func (r *Registry) HasVenue(venue string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.books[venue] != nil
}

// Venues lists known venues, sorted.
func (r *Registry) Venues() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.books))
	for v := range r.books {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Symbols lists a venue's symbols, sorted. The second return is false when
// the venue is unknown.
func (r *Registry) Symbols(venue string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.books[venue]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
