// FILE: lixenwraith/layerconf/provider/cli/flags.go
package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lixenwraith/layerconf"
	"github.com/spf13/pflag"
)

// GenerateFlags creates a string flag for every key root currently resolves,
// defaulting to the resolved value. Delimiters in keys are written as separator
// ("" keeps them). Pair it with FromFlagSet using the same separator so that
// flags given on the command line become the top layer.
func GenerateFlags(root *layerconf.Root, separator string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)

	snap := root.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		name := key
		if separator != "" {
			name = strings.ReplaceAll(key, layerconf.KeyDelimiter, separator)
		}
		if fs.Lookup(name) != nil {
			continue
		}
		fs.String(name, snap[key], fmt.Sprintf("Config: %s", key))
	}
	return fs
}
