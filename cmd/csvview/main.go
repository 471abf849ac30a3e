package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"csvview/internal/config"
	"csvview/internal/source"
	"csvview/internal/state"
	"csvview/internal/terminal"
	"csvview/internal/view"
	"csvview/internal/web"
)

// version is set at build time via -ldflags "-X main.version=v1.0.0"
var version = "dev"

var appState *state.AppState

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:          "csvview",
		Short:        "View a CSV file as a sortable, searchable table",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(config.KeyLogLevel, "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().Int(config.KeyMaxLogs, 500, "number of log entries kept for /api/logs")
	root.PersistentFlags().String(config.KeyUserAgent, "csvview", "User-Agent sent when fetching over HTTP")
	bindFlags(v, root.PersistentFlags().Lookup, config.KeyLogLevel, config.KeyMaxLogs, config.KeyUserAgent)

	serve := &cobra.Command{
		Use:   "serve <address>",
		Short: "Serve the viewer over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v, args[0])
		},
	}
	serve.Flags().StringP(config.KeyWebPort, "p", "8080", "port for the web UI")
	serve.Flags().String(config.KeyAdminUsername, "admin", "web UI login username")
	serve.Flags().String(config.KeyAdminPassword, "", "web UI login password; empty disables login")
	bindFlags(v, serve.Flags().Lookup, config.KeyWebPort, config.KeyAdminUsername, config.KeyAdminPassword)

	viewCmd := &cobra.Command{
		Use:   "view <address>",
		Short: "Open the viewer in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(v, args[0])
		},
	}
	viewCmd.Flags().String(config.KeyLogFile, "", "write logs to this file; empty discards them")
	bindFlags(v, viewCmd.Flags().Lookup, config.KeyLogFile)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(serve, viewCmd, versionCmd)
	return root
}

func runServe(ctx context.Context, v *viper.Viper, address string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if !source.IsCSVAddress(address) {
		return errors.Wrap(source.ErrNotActivated, address)
	}

	appState = state.New(cfg.MaxLogs, address, version)
	setupLogging(os.Stdout, cfg.LogLevel, appState)

	logInfo("Starting csvview", "version", version, "address", address)
	if cfg.AuthEnabled() {
		logInfo("Web UI login enabled", "username", cfg.AdminUsername)
	}

	server := web.New(appState, web.Options{
		Port:          cfg.WebPort,
		Version:       version,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	})
	server.Start()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := source.NewHTTPFetcher(cfg.UserAgent)
	go func() {
		page, err := source.Load(ctx, address, fetcher)
		if err != nil {
			logError("Failed to load CSV", "address", address, "error", err)
			appState.SetLoadFailed(source.ErrorMessage(err))
			return
		}
		appState.SetPage(page)
		logDebug("Viewer ready", "rows", len(page.Table.Rows))
	}()

	<-ctx.Done()
	logInfo("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Wrap(server.Shutdown(shutdownCtx), "shutdown web server")
}

func runView(v *viper.Viper, address string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if !source.IsCSVAddress(address) {
		return errors.Wrap(source.ErrNotActivated, address)
	}

	// The alt screen owns stdout, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "open log file %s", cfg.LogFile)
		}
		defer f.Close()
		out = f
	}

	appState = state.New(cfg.MaxLogs, address, version)
	setupLogging(out, cfg.LogLevel, appState)
	logInfo("Starting csvview terminal viewer", "version", version, "address", address)

	fetcher := source.NewHTTPFetcher(cfg.UserAgent)
	load := func(ctx context.Context) (view.Page, error) {
		return source.Load(ctx, address, fetcher)
	}

	model := terminal.New(appState, load, terminal.SystemClipboard{})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return errors.Wrap(err, "run terminal viewer")
	}
	return nil
}

func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys ...string) {
	for _, k := range keys {
		if err := v.BindPFlag(k, lookup(k)); err != nil {
			panic(err)
		}
	}
}
