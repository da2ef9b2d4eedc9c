// FILE: lixenwraith/layerconf/decode.go
package layerconf

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// BindTagName is the struct tag Bind reads field names from. Untagged fields
// match keys by name, ignoring case.
const BindTagName = "toml"

// Bind decodes the keys under key into target, a non-nil pointer to a struct or map.
// An empty key binds the whole configuration. Missing keys leave target fields untouched.
func (r *Root) Bind(key string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("bind target must be non-nil pointer, got %T", target)
	}

	tree := arrayify(expand(r.resolved(key)))

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          BindTagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(tree); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", key, err)
	}
	return nil
}

// Bind decodes the section's keys into target. See Root.Bind.
func (s *Section) Bind(target any) error {
	return s.root.Bind(s.path, target)
}

// decodeHook returns the composite decode hook for string-valued configuration
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}
		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}

// expand rebuilds a nested document from flat entries. Where a key has both a
// value and children the children win. Nested tables whose keys are exactly
// 0..n-1 become slices; the top level always stays a table.
func expand(flat map[string]entry) map[string]any {
	// Shorter keys first, so a parent's leaf is always replaced by its children
	entries := make([]entry, 0, len(flat))
	for _, e := range flat {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Count(a.key, KeyDelimiter) - strings.Count(b.key, KeyDelimiter)
	})

	root := make(map[string]any)
	for _, e := range entries {
		setNested(root, strings.Split(e.key, KeyDelimiter), e.value)
	}
	for k, sub := range root {
		root[k] = arrayify(sub)
	}
	return root
}

func setNested(m map[string]any, segments []string, value string) {
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = value
}

// arrayify converts index-keyed tables into slices, depth first
func arrayify(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, sub := range m {
		m[k] = arrayify(sub)
	}
	if len(m) == 0 {
		return m
	}

	list := make([]any, len(m))
	for k, sub := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(m) || strconv.Itoa(i) != k {
			return m
		}
		list[i] = sub
	}
	return list
}
