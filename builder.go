// File: lixenwraith/layerconf/builder.go
package layerconf

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// Builder accumulates providers in registration order and produces Roots.
// It is not safe for concurrent use.
type Builder struct {
	providers  []Provider
	properties map[string]any
	logger     *slog.Logger
	err        error
}

// NewBuilder creates a builder and adds each source in order, loading it.
// Load failures are available from Err and Build.
func NewBuilder(sources ...Provider) *Builder {
	b := &Builder{
		properties: make(map[string]any),
	}
	for _, p := range sources {
		b.Add(p)
	}
	return b
}

// Add loads p and appends it. See AddWithLoad.
func (b *Builder) Add(p Provider) *Builder {
	return b.AddWithLoad(p, true)
}

// AddWithLoad appends p, calling p.Load first when load is true.
// If Load fails, p is not appended and a *ProviderLoadError is recorded
// for Err and Build. Use TryAdd to handle the failure without recording it.
func (b *Builder) AddWithLoad(p Provider, load bool) *Builder {
	if err := b.TryAdd(p, load); err != nil {
		b.err = errors.Join(b.err, err)
	}
	return b
}

// TryAdd appends p like AddWithLoad but returns the failure instead of recording it.
// On error the builder is unchanged.
func (b *Builder) TryAdd(p Provider, load bool) error {
	if p == nil {
		return ErrNilProvider
	}

	if load {
		if err := p.Load(); err != nil {
			return &ProviderLoadError{
				Index:    len(b.providers),
				Provider: p,
				Err:      err,
			}
		}
	}

	b.providers = append(b.providers, p)
	return nil
}

// Err returns every failure recorded by Add, joined, or nil
func (b *Builder) Err() error {
	return b.err
}

// Len returns the number of registered providers
func (b *Builder) Len() int {
	return len(b.providers)
}

// Sources returns the providers registered so far, in order.
// The sequence is a snapshot: later Add calls are not observed by it.
func (b *Builder) Sources() iter.Seq[Provider] {
	return slices.Values(b.providers[:len(b.providers):len(b.providers)])
}

// Properties returns the builder's live property bag.
// The core never reads it; it carries settings such as base paths to provider factories.
func (b *Builder) Properties() map[string]any {
	return b.properties
}

// SetProperty stores a property value
func (b *Builder) SetProperty(name string, value any) *Builder {
	b.properties[name] = value
	return b
}

// Property returns a property value
func (b *Builder) Property(name string) (any, bool) {
	v, ok := b.properties[name]
	return v, ok
}

// DecodeProperty decodes a property into target, which must be a non-nil pointer.
// Conversions are weakly typed ("30s" into time.Duration, "8080" into int, and so on).
func (b *Builder) DecodeProperty(name string, target any) error {
	v, ok := b.properties[name]
	if !ok {
		return fmt.Errorf("property %q: %w", name, ErrKeyNotFound)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode property %q: %w", name, err)
	}
	return nil
}

// WithLogger sets the logger handed to built Roots
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build freezes the current provider list into a new Root.
// It fails if any Add failed.
func (b *Builder) Build() (*Root, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newRoot(slices.Clone(b.providers), b.logger), nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Root {
	root, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("layerconf build failed: %v", err))
	}
	return root
}
