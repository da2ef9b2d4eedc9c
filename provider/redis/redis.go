// FILE: lixenwraith/layerconf/provider/redis/redis.go

// Package redis provides a remote configuration provider backed by a Redis hash.
// Each hash field is a configuration key ("server:port"). Publishing any message on
// the configured channel makes the provider re-read the hash.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lixenwraith/layerconf"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultTimeout bounds each round trip to Redis
const DefaultTimeout = 5 * time.Second

// ErrNoKey is returned when Options.Key is empty
var ErrNoKey = errors.New("redis hash key is required")

// Options configures a Redis provider
type Options struct {
	// Key is the hash holding the configuration
	Key string

	// Channel, when set, is subscribed to; every message triggers a reload
	Channel string

	// Timeout bounds each Redis call (0 = DefaultTimeout)
	Timeout time.Duration

	// Logger receives reload failures. Nil discards them.
	Logger *slog.Logger
}

// Provider serves the fields of a Redis hash
type Provider struct {
	*layerconf.Store

	client goredis.UniversalClient
	opts   Options

	mu     sync.Mutex
	pubsub *goredis.PubSub
	done   chan struct{}
}

// New creates a provider reading opts.Key through client. Nothing is read until Load.
func New(client goredis.UniversalClient, opts Options) *Provider {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Provider{
		Store:  layerconf.NewStore(nil),
		client: client,
		opts:   opts,
	}
}

// Add registers a Redis provider with b
func Add(b *layerconf.Builder, client goredis.UniversalClient, opts Options) *layerconf.Builder {
	return b.Add(New(client, opts))
}

// Load reads the hash and, when a channel is configured, subscribes to it once
func (p *Provider) Load() error {
	if p.opts.Key == "" {
		return ErrNoKey
	}

	data, err := p.fetch()
	if err != nil {
		return err
	}
	p.Store.Replace(data, false)

	if p.opts.Channel != "" {
		return p.subscribe()
	}
	return nil
}

func (p *Provider) fetch() (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.Timeout)
	defer cancel()

	data, err := p.client.HGetAll(ctx, p.opts.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis hash '%s': %w", p.opts.Key, err)
	}
	return data, nil
}

func (p *Provider) subscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pubsub != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.Timeout)
	defer cancel()

	ps := p.client.Subscribe(ctx, p.opts.Channel)
	// Wait for the subscription to be confirmed so no notice published after Load is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("failed to subscribe to '%s': %w", p.opts.Channel, err)
	}

	p.pubsub = ps
	p.done = make(chan struct{})
	go p.listen(ps.Channel(), p.done)
	return nil
}

// listen reloads on every message until the subscription closes
func (p *Provider) listen(msgs <-chan *goredis.Message, done chan<- struct{}) {
	defer close(done)
	for range msgs {
		p.reload()
	}
}

// reload re-reads the hash. On failure the previous data is kept.
func (p *Provider) reload() {
	data, err := p.fetch()
	if err != nil {
		if p.opts.Logger != nil {
			p.opts.Logger.Warn("config reload failed, keeping previous values", "key", p.opts.Key, "error", err)
		}
		return
	}
	p.Store.Replace(data, true)
}

// Close ends the subscription. The client is left open.
func (p *Provider) Close() error {
	p.mu.Lock()
	ps, done := p.pubsub, p.done
	p.pubsub = nil
	p.mu.Unlock()

	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	if err != nil {
		return fmt.Errorf("failed to close subscription: %w", err)
	}
	return nil
}
