package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmcdole/tabstash/internal/adapter"
	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/relay"
	"github.com/mmcdole/tabstash/internal/store"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile string
	backend    string
	dbPath     string
	relayURL   string

	// Set up by PersistentPreRunE for every command except help
	current *app
)

// app holds the services shared by commands
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	storage  domain.Storage
	channel  domain.Channel
	launcher *adapter.Launcher
	registry *divider.Registry
}

var rootCmd = &cobra.Command{
	Use:   "tabstash",
	Short: "Stash browser tabs into named collections",
	Long: `tabstash keeps saved tabs in named collections ("dividers"), each a
tree of sections and items, and keeps every open view of a collection in
sync through a relay.

Collections are referred to by id, exact name, or a name prefix.
Routes address items as "<section path>:<index>", e.g. "0.2:3" is item 3
of the third subsection of the first section; ":1" or "1" is the second
top-level item.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Annotations["standalone"] == "true" {
			return nil
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ~/.config/tabstash/config.yaml)")
	flags.StringVar(&backend, "backend", "", "storage backend: bolt, sqlite or memory")
	flags.StringVar(&dbPath, "db", "", "database file")
	flags.StringVar(&relayURL, "relay", "", "relay address to share events, e.g. ws://127.0.0.1:7465/")
}

func loadConfig() (*adapter.Config, error) {
	cfg, err := adapter.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if relayURL != "" {
		cfg.Relay.URL = relayURL
	}
	return cfg, nil
}

func setupLogger(cfg *adapter.Config) *slog.Logger {
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)
	return logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg)
	logger.Info("starting tabstash", "version", Version, "backend", cfg.Storage.Backend)

	storage, err := store.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	var channel domain.Channel
	if cfg.Relay.URL != "" {
		settings := relay.DefaultSettings()
		if cfg.Relay.WriteTimeout > 0 {
			settings.WriteTimeout = cfg.Relay.WriteTimeout
		}
		client, err := relay.Dial(ctx, cfg.Relay.URL, settings, logger)
		if err != nil {
			storage.Close()
			return nil, err
		}
		channel = client
	}

	launcher := adapter.NewLauncher(cfg.Browser.Command, cfg.Browser.Args, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		storage:  storage,
		channel:  channel,
		launcher: launcher,
		registry: divider.NewRegistry(storage, channel, launcher, logger),
	}, nil
}

func (a *app) Close() error {
	var errs []error
	if a.channel != nil {
		errs = append(errs, a.channel.Close())
	}
	errs = append(errs, a.storage.Close())
	return errors.Join(errs...)
}

// resolve finds a collection by id, exact name, or name prefix
func (a *app) resolve(ctx context.Context, ref string) (*divider.Divider, error) {
	if d, err := a.registry.Load(ctx, ref); err != nil || d != nil {
		return d, err
	}

	ids, err := a.registry.All(ctx)
	if err != nil {
		return nil, err
	}
	names, err := a.registry.Names(ctx)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if name == ref {
			return a.registry.Load(ctx, ids[i])
		}
	}

	d, err := a.registry.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, ref)
	}
	return d, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		if cerr := current.Close(); cerr != nil {
			current.logger.Warn("shutdown", "error", cerr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
