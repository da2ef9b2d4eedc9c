// File: lixenwraith/layerconf/doc.go

// Package layerconf composes configuration providers into a single hierarchical,
// case-insensitive key/value view with last-added-wins precedence.
//
// Features:
//   - Ordered provider composition through a fluent Builder
//   - Fail-fast loading: a provider whose Load fails is never registered
//   - Immutable Roots: each Build snapshots the provider list
//   - Live reads: values are resolved on every lookup, never cached
//   - Section navigation with children merged across all providers
//   - Composite reload notification fanned in from every provider
//   - Embeddable Store with lock-free reads for provider implementations
//   - Struct binding with mapstructure (durations, slices, IPs, URLs)
//   - Per-key change channels and TOML dumps of the resolved view
//
// Quick Start:
//
//	b := layerconf.NewBuilder().
//	    Add(memory.New(map[string]string{"server:port": "8080"})).
//	    Add(env.New(env.Options{Prefix: "MYAPP_"}))
//
//	root, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := root.Int64("server:port")
//	for _, s := range root.Section("server").Children() {
//	    fmt.Println(s.Path())
//	}
//
// Precedence:
// Providers are searched from the most recently added to the first added; the first
// one holding the key wins. Child enumeration instead unions every provider, so a
// low-precedence provider can contribute children under a key whose own value comes
// from a higher one.
//
// Keys:
// Segments are joined with KeyDelimiter (":") and compared case-insensitively.
//
// Providers:
// Reference providers live under provider/: memory, file (TOML, JSON, YAML with
// fsnotify watching), env (with dotenv files), cli (arguments and pflag sets),
// redis (a remote hash) and koanfadapter (any koanf provider and parser).
//
// Binding:
// Bind decodes a section into a struct using `toml` tags. Index segments ("0", "1")
// bind to slices:
//
//	var srv ServerConfig
//	if err := root.Bind("server", &srv); err != nil {
//	    return err
//	}
//
// Watching:
// Watch turns the composite reload notification into a channel of changed keys.
// Delivery is best effort: a full channel drops keys rather than block a reload.
//
// Thread Safety:
// A Builder is single-writer. A Root is safe for concurrent reads; providers keep
// their own reads consistent across reloads, as Store does with an atomic swap.
package layerconf
