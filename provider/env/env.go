// FILE: lixenwraith/layerconf/provider/env/env.go

// Package env provides a configuration provider over environment variables and dotenv files.
package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lixenwraith/layerconf"
)

// DefaultSeparator marks a hierarchy level inside a variable name:
// MYAPP_SERVER__PORT becomes server:port under prefix "MYAPP_".
const DefaultSeparator = "__"

// Options configures an environment provider
type Options struct {
	// Prefix selects variables and is stripped from their names. Matching ignores case.
	Prefix string

	// Separator is replaced by layerconf.KeyDelimiter ("" = DefaultSeparator)
	Separator string

	// DotenvFiles are read before the process environment, which overrides them.
	// Missing files are an error.
	DotenvFiles []string

	// Environ lists variables as KEY=VALUE (nil = os.Environ)
	Environ func() []string
}

// Provider holds environment variables captured at Load time
type Provider struct {
	*layerconf.Store
	opts Options
}

// New creates an environment provider. Nothing is read until Load.
func New(opts Options) *Provider {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	return &Provider{
		Store: layerconf.NewStore(nil),
		opts:  opts,
	}
}

// Add registers an environment provider with b
func Add(b *layerconf.Builder, opts Options) *layerconf.Builder {
	return b.Add(New(opts))
}

// Load captures the dotenv files and the current environment
func (p *Provider) Load() error {
	data := make(map[string]string)

	for _, path := range p.opts.DotenvFiles {
		vars, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("failed to read dotenv file '%s': %w", path, err)
		}
		for name, value := range vars {
			p.apply(data, name, value)
		}
	}

	for _, kv := range p.opts.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		p.apply(data, name, value)
	}

	p.Store.Replace(data, false)
	return nil
}

// apply maps one variable into data when it carries the prefix
func (p *Provider) apply(data map[string]string, name, value string) {
	key, ok := p.KeyFor(name)
	if !ok {
		return
	}
	data[key] = value
}

// KeyFor converts a variable name into a configuration key.
// Empty segments collapse, so __X__ and X both map to "X".
// It reports false if the name lacks the prefix or nothing remains after it.
func (p *Provider) KeyFor(name string) (string, bool) {
	prefix := p.opts.Prefix
	if len(name) < len(prefix) || !strings.EqualFold(name[:len(prefix)], prefix) {
		return "", false
	}
	key := layerconf.Combine(strings.Split(name[len(prefix):], p.opts.Separator)...)
	if key == "" {
		return "", false
	}
	return key, true
}
