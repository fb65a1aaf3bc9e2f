package exchange

import (
	"errors"
	"sync"
)

// MaxAccounts bounds the process-wide account intern table. The small
// integer ids give books compact account indexing.
const MaxAccounts = 2048

var ErrTooManyAccounts = errors.New("account limit reached")

// Accounts interns account names to small integers, first come first
// served. The mapping is process-wide and never shrinks.
type Accounts struct {
	mu  sync.Mutex
	ids map[string]int
}

func NewAccounts() *Accounts {
	return &Accounts{ids: make(map[string]int)}
}

// ID returns the account's small-int id, assigning the next one on first
// sight.
func (a *Accounts) ID(name string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.ids[name]; ok {
		return id, nil
	}
	if len(a.ids) >= MaxAccounts {
		return 0, ErrTooManyAccounts
	}
	id := len(a.ids)
	a.ids[name] = id
	return id, nil
}

// Known reports whether the account has been seen, without assigning an id.
func (a *Accounts) Known(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ids[name]
	return ok
}

func (a *Accounts) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ids)
}
