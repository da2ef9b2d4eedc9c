// File: lixenwraith/layerconf/helper.go
package layerconf

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// KeyDelimiter separates the segments of a hierarchical key
const KeyDelimiter = ":"

// Combine joins path segments with KeyDelimiter, skipping empty segments.
func Combine(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, KeyDelimiter)
}

// SectionKey returns the last segment of path ("a:b:c" -> "c")
func SectionKey(path string) string {
	if i := strings.LastIndex(path, KeyDelimiter); i >= 0 {
		return path[i+len(KeyDelimiter):]
	}
	return path
}

// ParentPath returns path without its last segment, or "" for a top-level key
func ParentPath(path string) string {
	if i := strings.LastIndex(path, KeyDelimiter); i >= 0 {
		return path[:i]
	}
	return ""
}

// normalizeKey is the case-insensitive comparison form of a key
func normalizeKey(key string) string {
	return strings.ToLower(key)
}

// childSegment returns the segment directly under parent in key.
// An empty parent selects top-level segments. Comparison is case-insensitive.
// An empty segment ("a::b", ":x") is not a child, so tree walks always descend.
func childSegment(key, parent string) (string, bool) {
	rest := key
	if parent != "" {
		if len(key) <= len(parent)+len(KeyDelimiter) ||
			!strings.EqualFold(key[:len(parent)], parent) ||
			key[len(parent):len(parent)+len(KeyDelimiter)] != KeyDelimiter {
			return "", false
		}
		rest = key[len(parent)+len(KeyDelimiter):]
	}
	if i := strings.Index(rest, KeyDelimiter); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// Flatten converts a nested document (as decoded from TOML, YAML or JSON) into
// delimiter-joined keys with string values. Slices contribute index segments ("0", "1", ...).
// Empty maps and slices produce no keys.
func Flatten(nested map[string]any) map[string]string {
	flat := make(map[string]string)
	flattenInto(flat, "", nested)
	return flat
}

func flattenInto(flat map[string]string, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for key, sub := range v {
			flattenInto(flat, Combine(prefix, key), sub)
		}
	case map[any]any:
		for key, sub := range v {
			flattenInto(flat, Combine(prefix, fmt.Sprint(key)), sub)
		}
	case []map[string]any:
		// TOML arrays of tables
		for i, sub := range v {
			flattenInto(flat, Combine(prefix, strconv.Itoa(i)), sub)
		}
	case []any:
		for i, sub := range v {
			flattenInto(flat, Combine(prefix, strconv.Itoa(i)), sub)
		}
	default:
		if prefix != "" {
			flat[prefix] = stringify(value)
		}
	}
}

// stringify renders a decoded scalar the way it would appear in a config file
func stringify(val any) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case time.Duration:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case error:
		return v.Error()
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
