// Package session keeps one checkout per browser session in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/checkout/internal/checkout"
	"github.com/fairyhunter13/checkout/internal/obs"
)

type entry struct {
	co       *checkout.Checkout
	lastSeen time.Time
}

// Store maps session ids to their checkouts and remembers when each was last used.
type Store struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{m: make(map[string]entry), now: time.Now}
}

// Get returns the checkout for id and marks the session as seen.
func (s *Store) Get(id string) (*checkout.Checkout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	s.m[id] = e
	return e.co, true
}

// Put stores co under id. A checkout already held under id is closed.
func (s *Store) Put(id string, co *checkout.Checkout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.m[id]; ok && old.co != co {
		old.co.Close()
	}
	s.m[id] = entry{co: co, lastSeen: s.now()}
}

// Delete closes and forgets the checkout under id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[id]; ok {
		e.co.Close()
		delete(s.m, id)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Sweep closes and removes sessions not seen for longer than maxIdle. It returns how many it removed.
func (s *Store) Sweep(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.m {
		if now.Sub(e.lastSeen) > maxIdle {
			e.co.Close()
			delete(s.m, id)
			n++
		}
	}
	return n
}

// CloseAll closes every checkout and empties the store.
func (s *Store) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.m {
		e.co.Close()
		delete(s.m, id)
	}
}

// RunSweeper sweeps every interval until ctx is done. onSweep, when set, receives the
// session count after each sweep.
func (s *Store) RunSweeper(ctx context.Context, interval, maxIdle time.Duration, onSweep func(active int)) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now, maxIdle); n > 0 {
				obs.Logger.Info("sessions_swept", "removed", n)
			}
			if onSweep != nil {
				onSweep(s.Len())
			}
		}
	}
}
