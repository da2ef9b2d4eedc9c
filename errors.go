// FILE: lixenwraith/layerconf/errors.go
package layerconf

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderLoad matches every *ProviderLoadError via errors.Is
	ErrProviderLoad = errors.New("provider load failed")

	// ErrNilProvider is recorded when a nil provider is added to a Builder
	ErrNilProvider = errors.New("provider is nil")

	// ErrKeyNotFound is returned by typed accessors when no provider has the key.
	// Get and Value report absence without an error.
	ErrKeyNotFound = errors.New("key not found")
)

// ProviderLoadError reports a provider whose Load failed while being added to a Builder.
// The provider was not registered.
type ProviderLoadError struct {
	Index    int // position the provider would have taken
	Provider Provider
	Err      error
}

func (e *ProviderLoadError) Error() string {
	return fmt.Sprintf("%v: provider %d (%T): %v", ErrProviderLoad, e.Index, e.Provider, e.Err)
}

// Unwrap returns the provider's own error
func (e *ProviderLoadError) Unwrap() error {
	return e.Err
}

// Is reports ErrProviderLoad as a match
func (e *ProviderLoadError) Is(target error) bool {
	return target == ErrProviderLoad
}
