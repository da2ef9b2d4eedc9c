// FILE: lixenwraith/layerconf/provider/file/discovery.go
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lixenwraith/layerconf"
)

// DiscoveryOptions configures config file discovery
type DiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths, searched before the defaults
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// CLI flag holding an explicit path (e.g., "--config")
	CLIFlag string

	// Args are searched for CLIFlag (typically os.Args[1:])
	Args []string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns options searching for appName.{toml,yaml,yml,json}
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// Discover locates a config file. An explicit path from the CLI flag or the
// environment variable is returned without checking that it exists; otherwise
// the search paths are probed in order. It reports false if nothing was found.
func Discover(opts DiscoveryOptions) (string, bool) {
	// Check CLI args first (highest priority)
	if opts.CLIFlag != "" {
		for i, arg := range opts.Args {
			if arg == opts.CLIFlag && i+1 < len(opts.Args) {
				return opts.Args[i+1], true
			}
			if path, ok := strings.CutPrefix(arg, opts.CLIFlag+"="); ok {
				return path, true
			}
		}
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}

	for _, dir := range searchPaths(opts) {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}

	// No file found is not an error, the app can run on other layers
	return "", false
}

// AddDiscovered registers the discovered file with b. When no file is found nothing
// is added. An explicit path that does not exist fails the add.
func AddDiscovered(b *layerconf.Builder, discovery DiscoveryOptions, opts Options) *layerconf.Builder {
	path, ok := Discover(discovery)
	if !ok {
		return b
	}
	return AddFile(b, path, opts)
}

func searchPaths(opts DiscoveryOptions) []string {
	var paths []string
	paths = append(paths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			paths = append(paths, cwd)
		}
	}
	if opts.UseXDG {
		paths = append(paths, xdgConfigPaths(opts.Name)...)
	}
	return paths
}

// xdgConfigPaths returns XDG-compliant config search paths
func xdgConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}
	return paths
}
