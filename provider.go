// FILE: lixenwraith/layerconf/provider.go
package layerconf

// Provider is a single configuration source. Implementations own their data;
// the Root only ever talks to them through this contract.
type Provider interface {
	// Load populates the provider. Builder.Add calls it before registration and
	// Root.Reload calls it again on demand.
	Load() error

	// TryGet looks key up in this provider only, case-insensitively.
	TryGet(key string) (string, bool)

	// ChildKeys lists the segments directly under parentPath in this provider only.
	// An empty parentPath lists top-level segments.
	ChildKeys(parentPath string) []string

	// OnReload registers fn to run whenever the provider's data changes.
	OnReload(fn func()) (cancel func())
}

// Setter is implemented by providers accepting writes through Root.Set
type Setter interface {
	Set(key, value string)
}
