// File: lixenwraith/layerconf/convenience.go
package layerconf

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Snapshot returns every resolved key with a value, spelled as first seen
func (r *Root) Snapshot() map[string]string {
	out := make(map[string]string)
	for _, e := range r.resolved("") {
		out[e.key] = e.value
	}
	return out
}

// resolved walks the tree under path and returns its valued keys by normalized
// key. Entry keys are relative to path.
func (r *Root) resolved(path string) map[string]entry {
	out := make(map[string]entry)
	var walk func(abs, rel string)
	walk = func(abs, rel string) {
		for _, k := range r.ChildKeys(abs) {
			childAbs, childRel := Combine(abs, k), Combine(rel, k)
			if v, ok := r.Get(childAbs); ok {
				out[normalizeKey(childRel)] = entry{key: childRel, value: v}
			}
			walk(childAbs, childRel)
		}
	}
	walk(path, "")
	return out
}

// Origin returns the provider that currently supplies key and its registration index
func (r *Root) Origin(key string) (Provider, int, bool) {
	for i := len(r.providers) - 1; i >= 0; i-- {
		if _, ok := r.providers[i].TryGet(key); ok {
			return r.providers[i], i, true
		}
	}
	return nil, -1, false
}

// Validate checks that every required key resolves to a value
func (r *Root) Validate(required ...string) error {
	var missing []string
	for _, key := range required {
		if _, ok := r.Get(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required configuration: %s", ErrKeyNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a listing of every resolved key, its value and the provider supplying it
func (r *Root) Debug() string {
	snap := r.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return strings.Compare(normalizeKey(a), normalizeKey(b))
	})

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	fmt.Fprintf(&b, "Providers (lowest precedence first): %d\n", len(r.providers))
	for i, p := range r.providers {
		fmt.Fprintf(&b, "  [%d] %T\n", i, p)
	}
	b.WriteString("Resolved values:\n")
	for _, k := range keys {
		_, idx, _ := r.Origin(k)
		fmt.Fprintf(&b, "  %s = %q (from [%d])\n", k, snap[k], idx)
	}
	return b.String()
}

// Dump writes the resolved configuration to w in TOML format.
// A key holding both a value and children is written as a table; its own value is omitted.
func (r *Root) Dump(w io.Writer) error {
	tree := expand(r.resolved(""))
	if err := toml.NewEncoder(w).Encode(tree); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return nil
}
