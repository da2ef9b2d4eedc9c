// FILE: lixenwraith/layerconf/provider/file/file_test.go
package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lixenwraith/layerconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "TOML",
			file: "app.toml",
			content: `
[server]
host = "localhost"
port = 8080

[[backends]]
name = "primary"
`,
		},
		{
			name: "JSON",
			file: "app.json",
			content: `{
  "server": {"host": "localhost", "port": 8080},
  "backends": [{"name": "primary"}]
}`,
		},
		{
			name: "YAML",
			file: "app.yaml",
			content: `
server:
  host: localhost
  port: 8080
backends:
  - name: primary
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			p := New(path, DefaultOptions())
			require.NoError(t, p.Load())

			v, _ := p.TryGet("server:host")
			assert.Equal(t, "localhost", v)
			v, _ = p.TryGet("server:port")
			assert.Equal(t, "8080", v)
			v, _ = p.TryGet("backends:0:name")
			assert.Equal(t, "primary", v)
			assert.Equal(t, []string{"host", "port"}, p.ChildKeys("server"))
		})
	}
}

func TestFileFormatDetection(t *testing.T) {
	assert.Equal(t, FormatTOML, detectFileFormat("a.TOML"))
	assert.Equal(t, FormatYAML, detectFileFormat("a.yml"))
	assert.Equal(t, FormatJSON, detectFileFormat("/etc/x.json"))
	assert.Equal(t, "", detectFileFormat("config"))

	assert.Equal(t, FormatJSON, detectFormatFromContent([]byte(`{"a": 1}`)))
	assert.Equal(t, FormatTOML, detectFormatFromContent([]byte("a = 1\n[b]\nc = 2\n")))
	assert.Equal(t, FormatYAML, detectFormatFromContent([]byte("a:\n  b: 1\n")))

	t.Run("ExtensionlessFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config")
		writeFile(t, path, "level = \"debug\"\n")

		p := New(path, DefaultOptions())
		require.NoError(t, p.Load())
		v, _ := p.TryGet("level")
		assert.Equal(t, "debug", v)
	})

	t.Run("ExplicitFormatWins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.conf")
		writeFile(t, path, "a: 1\n")

		opts := DefaultOptions()
		opts.Format = FormatYAML
		p := New(path, opts)
		require.NoError(t, p.Load())
		v, _ := p.TryGet("a")
		assert.Equal(t, "1", v)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := parse("ini", nil)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing", func(t *testing.T) {
		err := New(filepath.Join(dir, "missing.toml"), DefaultOptions()).Load()
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("MissingOptional", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Optional = true
		p := New(filepath.Join(dir, "missing.toml"), opts)
		require.NoError(t, p.Load())
		assert.Equal(t, 0, p.Len())
	})

	t.Run("TooLarge", func(t *testing.T) {
		path := filepath.Join(dir, "big.toml")
		writeFile(t, path, "key = \"0123456789\"\n")

		opts := DefaultOptions()
		opts.MaxFileSize = 4
		assert.ErrorIs(t, New(path, opts).Load(), ErrFileTooLarge)
	})

	t.Run("GrowsWhileReading", func(t *testing.T) {
		_, err := readLimited(strings.NewReader("key = 1\n"), 4)
		assert.ErrorIs(t, err, ErrFileTooLarge)

		raw, err := readLimited(strings.NewReader("ab"), 2)
		require.NoError(t, err)
		assert.Equal(t, "ab", string(raw))

		raw, err = readLimited(strings.NewReader("unbounded"), 0)
		require.NoError(t, err)
		assert.Equal(t, "unbounded", string(raw))
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		writeFile(t, path, "{not json")
		assert.Error(t, New(path, DefaultOptions()).Load())
	})

	t.Run("FailedAddIsRolledBack", func(t *testing.T) {
		b := layerconf.NewBuilder()
		AddFile(b, filepath.Join(dir, "missing.yaml"), DefaultOptions())

		assert.ErrorIs(t, b.Err(), layerconf.ErrProviderLoad)
		assert.ErrorIs(t, b.Err(), ErrFileNotFound)
		assert.Equal(t, 0, b.Len())
	})
}

func TestAddFileBasePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.toml"), "name = \"base\"\n")
	writeFile(t, filepath.Join(dir, "local.toml"), "name = \"local\"\n")

	b := layerconf.NewBuilder().SetProperty(BasePathProperty, dir)
	AddFile(b, "base.toml", DefaultOptions())
	AddFile(b, "local.toml", DefaultOptions())

	root, err := b.Build()
	require.NoError(t, err)
	defer root.Close()

	assert.Equal(t, "local", root.Value("name"))
	for p := range root.Providers() {
		assert.Equal(t, dir, filepath.Dir(p.(*Provider).Path()))
	}
}

func TestFileWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.toml")
	writeFile(t, path, "[server]\nport = 8080\n")

	opts := DefaultOptions()
	opts.Watch = true
	opts.Debounce = 50 * time.Millisecond
	p := New(path, opts)

	b := layerconf.NewBuilder().Add(p)
	root, err := b.Build()
	require.NoError(t, err)
	defer root.Close()
	defer p.Close()

	require.True(t, p.IsWatching())

	var reloads atomic.Int32
	root.OnReload(func() { reloads.Add(1) })

	t.Run("ReloadOnChange", func(t *testing.T) {
		writeFile(t, path, "[server]\nport = 9090\n")

		assert.Eventually(t, func() bool {
			return root.Value("server:port") == "9090"
		}, 3*time.Second, 20*time.Millisecond)
		assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("BadContentKeepsPreviousData", func(t *testing.T) {
		before := reloads.Load()
		writeFile(t, path, "[server\nport = ")

		// Give the debounced reload time to run and fail
		time.Sleep(300 * time.Millisecond)
		assert.Equal(t, "9090", root.Value("server:port"))
		assert.Equal(t, before, reloads.Load())
	})

	t.Run("CloseStopsWatching", func(t *testing.T) {
		require.NoError(t, p.Close())
		assert.False(t, p.IsWatching())

		writeFile(t, path, "[server]\nport = 1\n")
		time.Sleep(200 * time.Millisecond)
		assert.Equal(t, "9090", root.Value("server:port"))

		// Load after Close refreshes data without restarting the watcher
		require.NoError(t, p.Load())
		assert.Equal(t, "1", root.Value("server:port"))
		assert.False(t, p.IsWatching())
	})
}
