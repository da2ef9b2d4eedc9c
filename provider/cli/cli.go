// FILE: lixenwraith/layerconf/provider/cli/cli.go

// Package cli provides configuration providers over command-line arguments and pflag sets.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/layerconf"
	"github.com/spf13/pflag"
)

// ErrCLIParse wraps every argument parsing failure
var ErrCLIParse = errors.New("failed to parse command-line arguments")

// Options configures argument parsing
type Options struct {
	// SwitchMappings maps a switch as written ("-p", "--port") to a configuration key.
	// Single-dash switches must be mapped.
	SwitchMappings map[string]string

	// Separator, when set, is also accepted as a key delimiter ("." turns
	// --server.port into server:port).
	Separator string
}

// Provider parses a fixed argument list on Load
type Provider struct {
	*layerconf.Store
	args []string
	opts Options
}

// New creates a provider for args (typically os.Args[1:])
func New(args []string, opts Options) *Provider {
	return &Provider{
		Store: layerconf.NewStore(nil),
		args:  args,
		opts:  opts,
	}
}

// Add registers an argument provider with b
func Add(b *layerconf.Builder, args []string, opts Options) *layerconf.Builder {
	return b.Add(New(args, opts))
}

// Load parses the arguments
func (p *Provider) Load() error {
	data, err := parseArgs(p.args, p.opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}
	p.Store.Replace(data, false)
	return nil
}

// parseArgs processes arguments of the forms "--key=value", "--key value",
// "-k value" (mapped) and a bare "--flag" (true).
// Arguments not starting with "-" are skipped, "--" ends parsing.
func parseArgs(args []string, opts Options) (map[string]string, error) {
	result := make(map[string]string)
	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" {
			break
		}

		var dash string
		switch {
		case strings.HasPrefix(arg, "--"):
			dash = "--"
		case strings.HasPrefix(arg, "-"):
			dash = "-"
		default:
			// Skip non-flag arguments
			i++
			continue
		}

		name, valueStr, hasValue := strings.Cut(arg[len(dash):], "=")
		if name == "" {
			return nil, fmt.Errorf("invalid argument %q", arg)
		}

		key, mapped := opts.SwitchMappings[dash+name]
		if !mapped {
			if dash == "-" {
				return nil, fmt.Errorf("short switch %q has no mapping", dash+name)
			}
			key = name
		}

		if !hasValue {
			// Boolean flag if the next argument is another switch or absent
			if i+1 >= len(args) || isSwitch(args[i+1]) {
				valueStr = "true"
			} else {
				valueStr = args[i+1]
				i++
			}
		}
		i++

		if opts.Separator != "" {
			key = strings.ReplaceAll(key, opts.Separator, layerconf.KeyDelimiter)
		}
		if err := validateKey(key); err != nil {
			return nil, err
		}
		result[key] = valueStr
	}
	return result, nil
}

func isSwitch(arg string) bool {
	return strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumber(arg)
}

// isNumber keeps negative numbers usable as values ("--offset -5")
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// validateKey rejects keys with empty segments
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	for _, segment := range strings.Split(key, layerconf.KeyDelimiter) {
		if segment == "" {
			return fmt.Errorf("invalid key %q: empty segment", key)
		}
	}
	return nil
}

// FlagSetProvider exposes the flags of a pflag.FlagSet that were set explicitly.
// Unchanged flags are absent, so defaults from lower providers still apply.
type FlagSetProvider struct {
	*layerconf.Store
	fs        *pflag.FlagSet
	separator string
}

// FromFlagSet creates a provider over fs. Flag names have separator replaced by
// layerconf.KeyDelimiter ("" keeps names as they are).
func FromFlagSet(fs *pflag.FlagSet, separator string) *FlagSetProvider {
	return &FlagSetProvider{
		Store:     layerconf.NewStore(nil),
		fs:        fs,
		separator: separator,
	}
}

// Load captures the flags changed on the command line. Call it after fs.Parse.
func (p *FlagSetProvider) Load() error {
	data := make(map[string]string)
	p.fs.Visit(func(f *pflag.Flag) {
		key := f.Name
		if p.separator != "" {
			key = strings.ReplaceAll(key, p.separator, layerconf.KeyDelimiter)
		}
		// Slice flags contribute one key per element
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			for i, v := range sv.GetSlice() {
				data[layerconf.Combine(key, strconv.Itoa(i))] = v
			}
			return
		}
		data[key] = f.Value.String()
	})
	p.Store.Replace(data, false)
	return nil
}
