// FILE: lixenwraith/layerconf/provider/koanfadapter/koanfadapter.go

// Package koanfadapter exposes any koanf provider/parser pair as a layerconf provider.
package koanfadapter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/knadh/koanf/v2"
	"github.com/lixenwraith/layerconf"
)

// watcher is implemented by koanf providers that can report changes (file.File does)
type watcher interface {
	Watch(cb func(event any, err error)) error
}

type unwatcher interface {
	Unwatch() error
}

// Options configures the adapter
type Options struct {
	// Watch subscribes to the koanf provider's change callback when it has one
	Watch bool

	// Logger receives reload failures. Nil discards them.
	Logger *slog.Logger
}

// Provider loads a koanf source and serves its keys
type Provider struct {
	*layerconf.Store

	src    koanf.Provider
	parser koanf.Parser
	opts   Options

	watchOnce sync.Once
	watching  bool
}

// New wraps src and parser. Parser may be nil for providers returning maps (env, confmap).
func New(src koanf.Provider, parser koanf.Parser, opts Options) *Provider {
	return &Provider{
		Store:  layerconf.NewStore(nil),
		src:    src,
		parser: parser,
		opts:   opts,
	}
}

// Load reads the source through a fresh koanf instance
func (p *Provider) Load() error {
	data, err := p.read()
	if err != nil {
		return err
	}
	p.Store.Replace(data, false)

	if p.opts.Watch {
		return p.watch()
	}
	return nil
}

func (p *Provider) read() (map[string]string, error) {
	k := koanf.New(".")
	if err := k.Load(p.src, p.parser); err != nil {
		return nil, fmt.Errorf("koanf load failed: %w", err)
	}
	return layerconf.Flatten(k.Raw()), nil
}

func (p *Provider) watch() error {
	w, ok := p.src.(watcher)
	if !ok {
		return nil
	}

	var err error
	p.watchOnce.Do(func() {
		err = w.Watch(func(_ any, werr error) {
			if werr != nil {
				p.logWarn("koanf watch error", werr)
				return
			}
			data, rerr := p.read()
			if rerr != nil {
				p.logWarn("config reload failed, keeping previous values", rerr)
				return
			}
			p.Store.Replace(data, true)
		})
		p.watching = err == nil
	})
	if err != nil {
		return fmt.Errorf("koanf watch failed: %w", err)
	}
	return nil
}

func (p *Provider) logWarn(msg string, err error) {
	if p.opts.Logger != nil {
		p.opts.Logger.Warn(msg, "error", err)
	}
}

// Close stops watching when the koanf provider supports it
func (p *Provider) Close() error {
	if u, ok := p.src.(unwatcher); ok && p.watching {
		return u.Unwatch()
	}
	return nil
}
