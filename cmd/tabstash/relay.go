package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/tabstash/internal/adapter"
	"github.com/mmcdole/tabstash/internal/relay"
	"github.com/spf13/cobra"
)

var relayListen string

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the relay that shares collection events between surfaces",
	Long: `Run a websocket relay. Every surface started with --relay (or relay.url
in the config) sends the events it fires here and hears the events fired by
the others. Combine with the sqlite backend so surfaces in separate
processes also share storage.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := setupLogger(cfg)

		addr := cfg.Relay.Listen
		if relayListen != "" {
			addr = relayListen
		}
		settings := relay.DefaultSettings()
		if cfg.Relay.WriteTimeout > 0 {
			settings.WriteTimeout = cfg.Relay.WriteTimeout
		}

		server := relay.NewServer(settings, logger)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server,
			ReadHeaderTimeout: settings.HandshakeTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()
		fmt.Printf("Relay listening on ws://%s/\n", addr)
		logger.Info("relay started", "addr", addr)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("relay shutdown", "error", err)
		}
		logger.Info("relay stopped")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the default configuration file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := adapter.SaveConfig(adapter.DefaultConfig(), configFile)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("storage.backend: %s\n", cfg.Storage.Backend)
		fmt.Printf("storage.path: %s\n", cfg.Storage.Path)
		fmt.Printf("relay.url: %s\n", cfg.Relay.URL)
		fmt.Printf("relay.listen: %s\n", cfg.Relay.Listen)
		fmt.Printf("relay.write_timeout: %s\n", cfg.Relay.WriteTimeout)
		fmt.Printf("browser.command: %s %v\n", cfg.Browser.Command, cfg.Browser.Args)
		fmt.Printf("filter.default_tag: %s\n", cfg.Filter.DefaultTag)
		fmt.Printf("logging.file: %s\n", cfg.Logging.File)
		fmt.Printf("logging.level: %s\n", cfg.Logging.Level)
		return nil
	},
}

func init() {
	relayCmd.Flags().StringVar(&relayListen, "listen", "", "address to listen on (default from config)")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(relayCmd, configCmd)
}
