// FILE: lixenwraith/layerconf/cmd/layerconf/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.yaml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nhost = \"localhost\"\nport = 80\n"), 0644))
	require.NoError(t, os.WriteFile(local, []byte("server:\n  port: 8080\n"), 0644))

	common := []string{"--no-env", "--log-level", "error", "--base-path", dir, "-f", "base.toml", "-f", "local.yaml"}

	t.Run("Get", func(t *testing.T) {
		out, err := run(t, append(common, "get", "server.port")...)
		require.NoError(t, err)
		assert.Equal(t, "8080\n", out)
	})

	t.Run("SetWins", func(t *testing.T) {
		out, err := run(t, append(common, "--set", "server.port=1", "get", "server:port")...)
		require.NoError(t, err)
		assert.Equal(t, "1\n", out)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := run(t, append(common, "get", "nope")...)
		assert.Error(t, err)
	})

	t.Run("Tree", func(t *testing.T) {
		out, err := run(t, append(common, "tree", "server")...)
		require.NoError(t, err)
		assert.Equal(t, "server:host = localhost\nserver:port = 8080\n", out)
	})

	t.Run("Dump", func(t *testing.T) {
		out, err := run(t, append(common, "dump")...)
		require.NoError(t, err)
		assert.Contains(t, out, "[server]")
		assert.Contains(t, out, `port = "8080"`)
	})

	t.Run("Debug", func(t *testing.T) {
		out, err := run(t, append(common, "debug")...)
		require.NoError(t, err)
		assert.Contains(t, out, `server:port = "8080" (from [1])`)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := run(t, "--no-env", "-f", filepath.Join(dir, "absent.toml"), "get", "x")
		assert.Error(t, err)
	})
}
