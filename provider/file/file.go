// FILE: lixenwraith/layerconf/provider/file/file.go

// Package file provides a configuration provider backed by a TOML, JSON or YAML file,
// with optional reloading when the file changes on disk.
package file

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lixenwraith/layerconf"
)

var (
	// ErrFileNotFound is returned by Load for a missing, non-optional file
	ErrFileNotFound = errors.New("config file not found")
	// ErrFileTooLarge is returned when the file exceeds Options.MaxFileSize
	ErrFileTooLarge = errors.New("config file exceeds maximum size")
	// ErrUnknownFormat is returned when the format cannot be determined
	ErrUnknownFormat = errors.New("unknown config format")
)

// BasePathProperty is the builder property AddFile resolves relative paths against
const BasePathProperty = "FileBasePath"

// Options configures a file provider
type Options struct {
	// Format is one of FormatTOML, FormatJSON, FormatYAML or FormatAuto ("" = auto).
	// Auto uses the extension, then falls back to content detection.
	Format string

	// Optional makes a missing file load as empty instead of failing
	Optional bool

	// MaxFileSize limits the bytes read (0 = unlimited)
	MaxFileSize int64

	// Watch reloads the file when it changes on disk
	Watch bool

	// Debounce coalesces rapid file events into one reload
	Debounce time.Duration

	// Logger receives reload failures. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns options for a required, unwatched file with auto-detected format
func DefaultOptions() Options {
	return Options{
		Format:      FormatAuto,
		MaxFileSize: DefaultMaxFileSize,
		Debounce:    DefaultDebounce,
	}
}

// Provider loads flattened keys from a single file
type Provider struct {
	*layerconf.Store

	path string
	opts Options

	mu               sync.Mutex
	watcher          *fsnotify.Watcher
	debounceTimer    *time.Timer
	stopCh           chan struct{}
	done             chan struct{}
	reloadInProgress atomic.Bool
	closed           bool
}

// New creates a provider for path. Nothing is read until Load.
func New(path string, opts Options) *Provider {
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}
	return &Provider{
		Store: layerconf.NewStore(nil),
		path:  path,
		opts:  opts,
	}
}

// AddFile registers a file provider with b. A relative path is joined to the
// builder's BasePathProperty when that property is set.
func AddFile(b *layerconf.Builder, path string, opts Options) *layerconf.Builder {
	if !filepath.IsAbs(path) {
		var base string
		if err := b.DecodeProperty(BasePathProperty, &base); err == nil && base != "" {
			path = filepath.Join(base, path)
		}
	}
	return b.Add(New(path, opts))
}

// Path returns the file path the provider reads
func (p *Provider) Path() string {
	return p.path
}

// Load reads and parses the file, replacing the provider's data.
// With Options.Watch set, the first successful Load starts watching.
func (p *Provider) Load() error {
	data, err := p.read()
	if err != nil {
		return err
	}
	p.Store.Replace(data, false)

	if p.opts.Watch {
		if err := p.startWatch(); err != nil {
			return err
		}
	}
	return nil
}

// read loads and flattens the file without touching the store
func (p *Provider) read() (map[string]string, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if p.opts.Optional {
				return map[string]string{}, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p.path)
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", p.path, err)
	}

	if p.opts.MaxFileSize > 0 && info.Size() > p.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: '%s' is %d bytes, limit %d", ErrFileTooLarge, p.path, info.Size(), p.opts.MaxFileSize)
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", p.path, err)
	}
	defer f.Close()

	raw, err := readLimited(f, p.opts.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", p.path, err)
	}

	format := p.opts.Format
	if format == "" || format == FormatAuto {
		format = detectFileFormat(p.path)
		if format == "" {
			format = detectFormatFromContent(raw)
		}
		if format == "" {
			return nil, fmt.Errorf("%w: unable to determine format of '%s'", ErrUnknownFormat, p.path)
		}
	}

	doc, err := parse(format, raw)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", p.path, err)
	}
	return layerconf.Flatten(doc), nil
}

// readLimited reads r to the end, failing with ErrFileTooLarge past limit bytes (0 = unlimited).
// The size checked before opening can be stale when the file is being written.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: limit %d", ErrFileTooLarge, limit)
	}
	return raw, nil
}

// startWatch watches the file's directory so that atomic rename-style saves are seen
func (p *Provider) startWatch() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher != nil || p.closed {
		return nil
	}

	absPath, err := filepath.Abs(p.path)
	if err != nil {
		return fmt.Errorf("failed to resolve path '%s': %w", p.path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch '%s': %w", p.path, err)
	}

	p.watcher = w
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	go p.watchLoop(w, absPath, p.stopCh, p.done)
	return nil
}

// watchLoop is the main file watching loop
func (p *Provider) watchLoop(w *fsnotify.Watcher, absPath string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				p.scheduleReload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.logWarn("file watcher error", err)
		}
	}
}

// scheduleReload debounces rapid changes
func (p *Provider) scheduleReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
	}
	p.debounceTimer = time.AfterFunc(p.opts.Debounce, p.performReload)
}

// performReload re-reads the file. On failure the previous data is kept.
func (p *Provider) performReload() {
	// Prevent concurrent reloads
	if !p.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer p.reloadInProgress.Store(false)

	data, err := p.read()
	if err != nil {
		p.logWarn("config reload failed, keeping previous values", err)
		return
	}
	p.Store.Replace(data, true)
}

func (p *Provider) logWarn(msg string, err error) {
	if p.opts.Logger != nil {
		p.opts.Logger.Warn(msg, "path", p.path, "error", err)
	}
}

// IsWatching reports whether the provider is watching its file
func (p *Provider) IsWatching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watcher != nil
}

// Close stops watching. The provider keeps serving its last data.
func (p *Provider) Close() error {
	p.mu.Lock()
	p.closed = true
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
		p.debounceTimer = nil
	}
	w, stop, done := p.watcher, p.stopCh, p.done
	p.watcher = nil
	p.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stop)
	err := w.Close()
	<-done
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
