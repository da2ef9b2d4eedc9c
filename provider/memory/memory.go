// FILE: lixenwraith/layerconf/provider/memory/memory.go

// Package memory provides an in-memory configuration provider.
package memory

import (
	"maps"

	"github.com/lixenwraith/layerconf"
)

// Provider serves a fixed map of keys. Load is a no-op; values change only
// through Set (via Root.Set) or Replace.
type Provider struct {
	*layerconf.Store
}

// New creates a provider holding a copy of data. A nil map yields an empty provider.
func New(data map[string]string) *Provider {
	return &Provider{Store: layerconf.NewStore(maps.Clone(data))}
}

// Load does nothing; the data was supplied at construction
func (p *Provider) Load() error {
	return nil
}

// Add registers a memory provider holding data with b
func Add(b *layerconf.Builder, data map[string]string) *layerconf.Builder {
	return b.Add(New(data))
}
