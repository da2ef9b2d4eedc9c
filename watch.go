// FILE: lixenwraith/layerconf/watch.go
package layerconf

import (
	"context"
	"slices"
	"sync"
)

const (
	DefaultWatchBuffer = 10  // Pending key notifications per channel
	DefaultMaxWatchers = 100 // Open channels per root, see SetMaxWatchers
)

// WatchOptions configures a key change channel
type WatchOptions struct {
	// BufferSize of the channel. Notifications that do not fit are dropped.
	BufferSize int
}

// DefaultWatchOptions returns sensible defaults for watch channels
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		BufferSize: DefaultWatchBuffer,
	}
}

// keyWatcher turns reload notifications into changed key names
type keyWatcher struct {
	mu     sync.Mutex
	ch     chan string
	last   map[string]entry
	closed bool
}

// Watch returns a channel receiving the keys whose resolved value changed,
// appeared or disappeared after a reload. The channel closes when ctx is done.
func (r *Root) Watch(ctx context.Context) <-chan string {
	return r.WatchWithOptions(ctx, DefaultWatchOptions())
}

// WatchWithOptions is Watch with explicit options. When the root already has
// its maximum of open channels (see SetMaxWatchers), a closed channel is returned.
func (r *Root) WatchWithOptions(ctx context.Context, opts WatchOptions) <-chan string {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultWatchBuffer
	}

	for {
		n := r.watchers.Load()
		if n >= r.maxWatchers.Load() {
			ch := make(chan string)
			close(ch)
			return ch
		}
		if r.watchers.CompareAndSwap(n, n+1) {
			break
		}
	}

	w := &keyWatcher{
		ch:   make(chan string, opts.BufferSize),
		last: r.resolved(""),
	}
	cancel := r.OnReload(func() { w.check(r) })

	go func() {
		<-ctx.Done()
		cancel()
		w.mu.Lock()
		w.closed = true
		close(w.ch)
		w.mu.Unlock()
		r.watchers.Add(-1)
	}()

	return w.ch
}

// check diffs the resolved view against the last one and reports changed keys
func (w *keyWatcher) check(r *Root) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	next := r.resolved("")
	var changed []string
	for n, e := range next {
		if old, ok := w.last[n]; !ok || old.value != e.value {
			changed = append(changed, e.key)
		}
	}
	for n, old := range w.last {
		if _, ok := next[n]; !ok {
			changed = append(changed, old.key)
		}
	}
	w.last = next

	slices.Sort(changed)
	for _, key := range changed {
		select {
		case w.ch <- key:
		default:
			// Channel full, drop
		}
	}
}

// SetMaxWatchers sets the number of watch channels the root keeps open at once.
// n <= 0 restores DefaultMaxWatchers. Channels already open are not affected.
func (r *Root) SetMaxWatchers(n int) {
	if n <= 0 {
		n = DefaultMaxWatchers
	}
	r.maxWatchers.Store(int64(n))
}

// WatcherCount returns the number of open watch channels
func (r *Root) WatcherCount() int {
	return int(r.watchers.Load())
}
