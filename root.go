// FILE: lixenwraith/layerconf/root.go
package layerconf

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Root is the resolved view over an ordered provider list.
// The list is fixed at build time; values are never cached, so every read reflects
// the providers' current data. Reads are safe for concurrent use.
type Root struct {
	providers []Provider
	reload    *Signal
	logger    *slog.Logger

	closeOnce   sync.Once
	cancels     []func()
	watchers    atomic.Int64
	maxWatchers atomic.Int64
}

func newRoot(providers []Provider, logger *slog.Logger) *Root {
	r := &Root{
		providers: providers,
		reload:    &Signal{Logger: logger},
		logger:    logger,
	}
	r.maxWatchers.Store(DefaultMaxWatchers)

	r.cancels = make([]func(), 0, len(providers))
	for _, p := range providers {
		r.cancels = append(r.cancels, p.OnReload(r.reload.Notify))
	}
	return r
}

// Get resolves key against the providers, last-added first.
// The second result is false when no provider has the key.
func (r *Root) Get(key string) (string, bool) {
	for i := len(r.providers) - 1; i >= 0; i-- {
		if v, ok := r.providers[i].TryGet(key); ok {
			return v, true
		}
	}
	return "", false
}

// Value is Get without the presence flag
func (r *Root) Value(key string) string {
	v, _ := r.Get(key)
	return v
}

// Set writes value under key into every provider that accepts writes
func (r *Root) Set(key, value string) {
	for _, p := range r.providers {
		if s, ok := p.(Setter); ok {
			s.Set(key, value)
		}
	}
}

// ChildKeys returns the union of every provider's children under prefix.
// Duplicates are removed case-insensitively; the first provider (in registration
// order) to report a segment fixes its position and spelling. Empty segments are skipped.
func (r *Root) ChildKeys(prefix string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, p := range r.providers {
		for _, k := range p.ChildKeys(prefix) {
			n := normalizeKey(k)
			if _, dup := seen[n]; dup || k == "" {
				continue
			}
			seen[n] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// Section returns the section at key. It never returns nil; use Exists to test for data.
func (r *Root) Section(key string) *Section {
	return &Section{root: r, path: key}
}

// Children returns the top-level sections
func (r *Root) Children() []*Section {
	return r.childrenOf("")
}

func (r *Root) childrenOf(path string) []*Section {
	keys := r.ChildKeys(path)
	sections := make([]*Section, 0, len(keys))
	for _, k := range keys {
		sections = append(sections, r.Section(Combine(path, k)))
	}
	return sections
}

// Providers returns the providers in registration order
func (r *Root) Providers() iter.Seq[Provider] {
	return slices.Values(r.providers)
}

// OnReload registers fn to run whenever any provider reloads
func (r *Root) OnReload(fn func()) (cancel func()) {
	return r.reload.Subscribe(fn)
}

// Reload calls Load on every provider in order and then fires the reload
// notification once. Failures are joined; providers after a failure still load.
func (r *Root) Reload() error {
	var errs []error
	for i, p := range r.providers {
		if err := p.Load(); err != nil {
			errs = append(errs, fmt.Errorf("provider %d (%T): %w", i, p, err))
		}
	}

	if len(errs) > 0 && r.logger != nil {
		r.logger.Warn("reload finished with errors", "failed", len(errs), "providers", len(r.providers))
	}

	r.reload.Notify()
	return errors.Join(errs...)
}

// Close detaches the root from its providers' reload signals.
// The root remains readable.
func (r *Root) Close() {
	r.closeOnce.Do(func() {
		for _, cancel := range r.cancels {
			cancel()
		}
		r.cancels = nil
	})
}
