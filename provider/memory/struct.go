// FILE: lixenwraith/layerconf/provider/memory/struct.go
package memory

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/layerconf"
)

// StructTagName is the tag FromStruct reads keys from, matching layerconf.BindTagName
const StructTagName = layerconf.BindTagName

// FromStruct creates a provider holding the field values of defaults, typically
// the lowest layer of a stack. Keys come from `toml` tags or field names; nested
// structs become sections, nil pointers and `toml:"-"` fields are skipped.
// Slices and maps are flattened with index or map-key segments.
func FromStruct(prefix string, defaults any) (*Provider, error) {
	v := reflect.ValueOf(defaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("FromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("FromStruct requires a struct or struct pointer, got %T", defaults)
	}

	doc := make(map[string]any)
	structFields(v, doc)

	nested := doc
	if prefix != "" {
		// Wrap in one table per prefix segment, innermost first
		segments := strings.Split(prefix, layerconf.KeyDelimiter)
		for i := len(segments) - 1; i >= 0; i-- {
			nested = map[string]any{segments[i]: nested}
		}
	}
	return &Provider{Store: layerconf.NewStore(layerconf.Flatten(nested))}, nil
}

// AddStruct registers a FromStruct provider with b
func AddStruct(b *layerconf.Builder, prefix string, defaults any) *layerconf.Builder {
	p, err := FromStruct(prefix, defaults)
	if err != nil {
		return b.AddWithLoad(failed{err}, true)
	}
	return b.Add(p)
}

// structFields collects exported fields into doc, recursing into nested structs
func structFields(v reflect.Value, doc map[string]any) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)
		if !field.IsExported() {
			continue
		}

		// Get tag value or use field name
		tag := field.Tag.Get(StructTagName)
		if tag == "-" {
			continue
		}
		key := field.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		// Check for pointer to struct as well
		if fieldValue.Kind() == reflect.Ptr {
			if fieldValue.IsNil() {
				continue
			}
			fieldValue = fieldValue.Elem()
		}

		if fieldValue.Kind() == reflect.Struct && !isScalarStruct(fieldValue.Type()) {
			nested := make(map[string]any)
			structFields(fieldValue, nested)
			doc[key] = nested
			continue
		}

		doc[key] = plain(fieldValue)
	}
}

// isScalarStruct reports struct types that render as a single value (time.Time)
func isScalarStruct(t reflect.Type) bool {
	return t.Implements(reflect.TypeFor[fmt.Stringer]()) ||
		reflect.PointerTo(t).Implements(reflect.TypeFor[fmt.Stringer]())
}

// plain converts slices and maps into the generic shapes Flatten walks
func plain(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface() // []byte and net.IP stay scalar
		}
		list := make([]any, v.Len())
		for i := range list {
			list[i] = plain(v.Index(i))
		}
		return list
	case reflect.Map:
		m := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = plain(iter.Value())
		}
		return m
	case reflect.Struct:
		if isScalarStruct(v.Type()) {
			return v.Interface()
		}
		nested := make(map[string]any)
		structFields(v, nested)
		return nested
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return plain(v.Elem())
	default:
		return v.Interface()
	}
}

// failed reports a construction error through the builder's load path
type failed struct{ err error }

func (f failed) Load() error { return f.err }

func (failed) TryGet(string) (string, bool) { return "", false }

func (failed) ChildKeys(string) []string { return nil }

func (failed) OnReload(func()) (cancel func()) { return func() {} }
