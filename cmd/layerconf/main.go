// FILE: lixenwraith/layerconf/cmd/layerconf/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/lixenwraith/layerconf"
	"github.com/lixenwraith/layerconf/provider/cli"
	"github.com/lixenwraith/layerconf/provider/env"
	"github.com/lixenwraith/layerconf/provider/file"
	"github.com/lixenwraith/layerconf/provider/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// flags shared by every subcommand, in precedence order (lowest first)
type stackFlags struct {
	discover     string
	files        []string
	basePath     string
	dotenv       []string
	envPrefix    string
	noEnv        bool
	redisAddr    string
	redisKey     string
	redisChannel string
	sets         []string
	watch        bool
	logLevel     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f stackFlags

	root := &cobra.Command{
		Use:           "layerconf",
		Short:         "Inspect a layered configuration stack",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.discover, "discover", "", "application name whose config file is searched for (NAME_CONFIG, ./NAME.toml, XDG dirs)")
	pf.StringSliceVarP(&f.files, "file", "f", nil, "config file (TOML, JSON, YAML); repeatable, later files win")
	pf.StringVar(&f.basePath, "base-path", "", "directory relative --file paths are resolved against")
	pf.StringSliceVar(&f.dotenv, "dotenv", nil, "dotenv file read by the environment layer")
	pf.StringVar(&f.envPrefix, "env-prefix", "", "environment variable prefix (MYAPP_ maps MYAPP_A__B to a:b)")
	pf.BoolVar(&f.noEnv, "no-env", false, "skip the environment layer")
	pf.StringVar(&f.redisAddr, "redis-addr", "", "redis address for a remote layer")
	pf.StringVar(&f.redisKey, "redis-key", "config", "redis hash holding the remote layer")
	pf.StringVar(&f.redisChannel, "redis-channel", "", "redis channel announcing remote changes")
	pf.StringSliceVar(&f.sets, "set", nil, "override as key=value (dots or colons as delimiters); highest precedence")
	pf.BoolVar(&f.watch, "watch", false, "reload files when they change")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newGetCmd(&f),
		newTreeCmd(&f),
		newDumpCmd(&f),
		newDebugCmd(&f),
		newWatchCmd(&f),
	)
	return root
}

func newLogger(level string) *slog.Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	return slog.New(handler)
}

// buildStack assembles the providers described by the flags
func buildStack(f *stackFlags, logger *slog.Logger) (*layerconf.Root, func(), error) {
	b := layerconf.NewBuilder().WithLogger(logger)
	if f.basePath != "" {
		b.SetProperty(file.BasePathProperty, f.basePath)
	}

	var closers []func() error

	fileOpts := file.DefaultOptions()
	fileOpts.Watch = f.watch
	fileOpts.Logger = logger

	if f.discover != "" {
		file.AddDiscovered(b, file.DefaultDiscoveryOptions(f.discover), fileOpts)
	}
	for _, path := range f.files {
		file.AddFile(b, path, fileOpts)
	}
	for p := range b.Sources() {
		if fp, ok := p.(*file.Provider); ok {
			closers = append(closers, fp.Close)
		}
	}

	if !f.noEnv {
		env.Add(b, env.Options{Prefix: f.envPrefix, DotenvFiles: f.dotenv})
	}

	if f.redisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: f.redisAddr})
		rp := redis.New(client, redis.Options{Key: f.redisKey, Channel: f.redisChannel, Logger: logger})
		b.Add(rp)
		closers = append(closers, rp.Close, client.Close)
	}

	if len(f.sets) > 0 {
		args := make([]string, 0, len(f.sets))
		for _, kv := range f.sets {
			args = append(args, "--"+kv)
		}
		cli.Add(b, args, cli.Options{Separator: "."})
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	}

	root, err := b.Build()
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	logger.Debug("configuration stack built", "providers", b.Len())

	return root, func() {
		root.Close()
		closeAll()
	}, nil
}

func normalizeArg(key string) string {
	return strings.ReplaceAll(key, ".", layerconf.KeyDelimiter)
}

func newGetCmd(f *stackFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the resolved value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, closeFn, err := buildStack(f, newLogger(f.logLevel))
			if err != nil {
				return err
			}
			defer closeFn()

			val, ok := root.Get(normalizeArg(args[0]))
			if !ok {
				return fmt.Errorf("%w: %s", layerconf.ErrKeyNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

func newTreeCmd(f *stackFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [prefix]",
		Short: "Print every resolved key under a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, closeFn, err := buildStack(f, newLogger(f.logLevel))
			if err != nil {
				return err
			}
			defer closeFn()

			var start *layerconf.Section
			if len(args) == 1 {
				start = root.Section(normalizeArg(args[0]))
			}
			printTree(cmd, root, start)
			return nil
		},
	}
}

func printTree(cmd *cobra.Command, root *layerconf.Root, start *layerconf.Section) {
	var walk func(sections []*layerconf.Section)
	walk = func(sections []*layerconf.Section) {
		for _, s := range sections {
			if v, ok := s.Value(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", s.Path(), v)
			}
			walk(s.Children())
		}
	}

	if start == nil {
		walk(root.Children())
		return
	}
	walk([]*layerconf.Section{start})
}

func newDumpCmd(f *stackFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the resolved configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, closeFn, err := buildStack(f, newLogger(f.logLevel))
			if err != nil {
				return err
			}
			defer closeFn()
			return root.Dump(cmd.OutOrStdout())
		},
	}
}

func newDebugCmd(f *stackFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Show every resolved key with the layer supplying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, closeFn, err := buildStack(f, newLogger(f.logLevel))
			if err != nil {
				return err
			}
			defer closeFn()
			fmt.Fprint(cmd.OutOrStdout(), root.Debug())
			return nil
		},
	}
}

func newWatchCmd(f *stackFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [key...]",
		Short: "Print keys as their resolved values change",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.watch = true
			logger := newLogger(f.logLevel)
			root, closeFn, err := buildStack(f, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			filter := make(map[string]bool, len(args))
			for _, k := range args {
				filter[strings.ToLower(normalizeArg(k))] = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("watching for changes", "keys", len(root.Snapshot()))
			for key := range root.Watch(ctx) {
				if len(filter) > 0 && !filter[strings.ToLower(key)] {
					continue
				}
				v, ok := root.Get(key)
				if !ok {
					v = "<absent>"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, v)
			}
			return nil
		},
	}
}
