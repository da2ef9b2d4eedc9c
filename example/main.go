// FILE: lixenwraith/layerconf/example/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/lixenwraith/layerconf"
	"github.com/lixenwraith/layerconf/provider/cli"
	"github.com/lixenwraith/layerconf/provider/env"
	"github.com/lixenwraith/layerconf/provider/file"
	"github.com/lixenwraith/layerconf/provider/memory"
)

// AppConfig represents our application configuration
type AppConfig struct {
	Server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"server"`

	Database struct {
		URL         string        `toml:"url"`
		MaxConns    int           `toml:"max_conns"`
		IdleTimeout time.Duration `toml:"idle_timeout"`
	} `toml:"database"`

	Features struct {
		RateLimit bool `toml:"rate_limit"`
		Caching   bool `toml:"caching"`
	} `toml:"features"`
}

const initialConfig = `
[server]
port = 8080

[database]
url = "postgres://localhost/app"

[features]
caching = true
`

func main() {
	logger := slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true}))

	dir, err := os.MkdirTemp("", "layerconf-example")
	if err != nil {
		log.Fatal("Failed to create temp dir:", err)
	}
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte(initialConfig), 0644); err != nil {
		log.Fatal("Failed to write config:", err)
	}

	// Create configuration with defaults
	defaults := &AppConfig{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 3000
	defaults.Database.MaxConns = 10
	defaults.Database.IdleTimeout = 30 * time.Second

	fileOpts := file.DefaultOptions()
	fileOpts.Watch = true
	fileOpts.Logger = logger

	// Lowest precedence first: defaults < file < MYAPP_ env < command line
	b := layerconf.NewBuilder().WithLogger(logger)
	memory.AddStruct(b, "", defaults)
	file.AddFile(b, configPath, fileOpts)
	env.Add(b, env.Options{Prefix: "MYAPP_"})
	cli.Add(b, os.Args[1:], cli.Options{Separator: "."})

	cfg, err := b.Build()
	if err != nil {
		log.Fatal("Failed to build config:", err)
	}
	defer cfg.Close()
	for p := range cfg.Providers() {
		if fp, ok := p.(*file.Provider); ok {
			defer fp.Close()
		}
	}

	var app AppConfig
	if err := cfg.Bind("", &app); err != nil {
		log.Fatal("Failed to bind config:", err)
	}
	logger.Info("configuration loaded",
		"host", app.Server.Host,
		"port", app.Server.Port,
		"max_conns", app.Database.MaxConns,
		"caching", app.Features.Caching)

	if err := cfg.Validate("server:port", "database:url"); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("edit the file to see changes", "path", configPath)
	for key := range cfg.Watch(ctx) {
		value, _ := cfg.Get(key)
		logger.Info("configuration changed", "key", key, "value", value)
	}
}
