// FILE: lixenwraith/layerconf/signal.go
package layerconf

import (
	"fmt"
	"log/slog"
	"sync"
)

// Signal is a broadcast change notification. Providers fire it after their data changes
// and the Root uses one to fan in every provider's signal.
// The zero value is ready to use.
type Signal struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]func()
	order  []int64 // subscription order, notification follows it

	// Logger receives recovered subscriber panics. Nil discards them.
	Logger *slog.Logger
}

// Subscribe registers fn and returns a function removing it.
// Cancel is idempotent and safe to call from inside fn.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int64]func())
	}
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify invokes every current subscriber in subscription order.
// No lock is held during the calls, so a subscriber may subscribe, cancel or trigger
// another Notify. A panicking subscriber is recovered and the rest are still called.
func (s *Signal) Notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	logger := s.Logger
	s.mu.Unlock()

	for _, fn := range fns {
		invoke(fn, logger)
	}
}

// Len returns the number of active subscribers
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func invoke(fn func(), logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("reload subscriber panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
