// File: lixenwraith/layerconf/type.go
package layerconf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// getter is satisfied by both Root and Section
type getter interface {
	Get(key string) (string, bool)
}

func lookup(g getter, key string) (string, error) {
	val, found := g.Get(key)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, nil
}

func getInt64(g getter, key string) (int64, error) {
	s, err := lookup(g, key)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)

	// Base 0 for auto-detection (e.g., "0xFF")
	i, err := strconv.ParseInt(s, 0, 64)
	if err == nil {
		return i, nil
	}
	if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return int64(f), nil // Truncate
	}
	return 0, fmt.Errorf("cannot convert %q to int64 for key %s: %w", s, key, err)
}

func getBool(g getter, key string) (bool, error) {
	s, err := lookup(g, key)
	if err != nil {
		return false, err
	}
	s = strings.TrimSpace(s)

	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	// Numeric interpretation: 0 is false, non-zero is true
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0, nil
	}
	return false, fmt.Errorf("cannot convert %q to bool for key %s", s, key)
}

func getFloat64(g getter, key string) (float64, error) {
	s, err := lookup(g, key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %q to float64 for key %s: %w", s, key, err)
	}
	return f, nil
}

func getDuration(g getter, key string) (time.Duration, error) {
	s, err := lookup(g, key)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}
	// Bare integers are nanoseconds, as time.Duration prints them
	if n, nerr := strconv.ParseInt(s, 10, 64); nerr == nil {
		return time.Duration(n), nil
	}
	return 0, fmt.Errorf("cannot convert %q to duration for key %s: %w", s, key, err)
}

// String returns the resolved value for key or ErrKeyNotFound
func (r *Root) String(key string) (string, error) { return lookup(r, key) }

// Int64 parses the resolved value as an integer. Floats are truncated.
func (r *Root) Int64(key string) (int64, error) { return getInt64(r, key) }

// Bool parses the resolved value as a boolean; numbers are false only when zero
func (r *Root) Bool(key string) (bool, error) { return getBool(r, key) }

// Float64 parses the resolved value as a float
func (r *Root) Float64(key string) (float64, error) { return getFloat64(r, key) }

// Duration parses the resolved value with time.ParseDuration
func (r *Root) Duration(key string) (time.Duration, error) { return getDuration(r, key) }

// String returns the value for a key relative to the section
func (s *Section) String(key string) (string, error) { return lookup(s, key) }

// Int64 is Root.Int64 relative to the section
func (s *Section) Int64(key string) (int64, error) { return getInt64(s, key) }

// Bool is Root.Bool relative to the section
func (s *Section) Bool(key string) (bool, error) { return getBool(s, key) }

// Float64 is Root.Float64 relative to the section
func (s *Section) Float64(key string) (float64, error) { return getFloat64(s, key) }

// Duration is Root.Duration relative to the section
func (s *Section) Duration(key string) (time.Duration, error) { return getDuration(s, key) }
