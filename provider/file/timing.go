// FILE: lixenwraith/layerconf/provider/file/timing.go
package file

import "time"

const (
	// DefaultDebounce coalesces bursts of file events into one reload
	DefaultDebounce = 200 * time.Millisecond
	// DefaultMaxFileSize caps the bytes read from a config file
	DefaultMaxFileSize int64 = 10 << 20
	// MinDebounce is the floor applied to Options.Debounce when watching
	MinDebounce = 10 * time.Millisecond
)
