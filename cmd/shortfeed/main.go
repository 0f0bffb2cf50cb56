// Command shortfeed is a terminal client for a short-form video feed.
//
// Usage:
//
//	shortfeed                   Start the feed
//	shortfeed --base-url URL    Point at another server
//	shortfeed config show       Print the effective configuration
//	shortfeed config init       Write the default config file
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abelbrown/shortfeed/internal/api"
	"github.com/abelbrown/shortfeed/internal/config"
	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/abelbrown/shortfeed/internal/logging"
	"github.com/abelbrown/shortfeed/internal/otel"
	"github.com/abelbrown/shortfeed/internal/ui"
	"github.com/abelbrown/shortfeed/internal/work"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const (
	ringSize     = 512 // recent events kept for the debug overlay
	likeWorkers  = 4
	drainTimeout = 2 * time.Second
)

type flags struct {
	configPath string
	baseURL    string
	logLevel   string
	theme      string
	noMouse    bool
	trace      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "shortfeed",
		Short: "Scroll a short-form video feed in the terminal",
		Long: `shortfeed shows a vertically scrolling feed of posts from a feed server.

Scroll with j/k or the mouse wheel. Tap a video to pause it, double tap to
like, hold to play at 2x. Press ? for the debug overlay and q to quit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f.trace)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", config.Path(), "path to config file")
	pf.StringVar(&f.baseURL, "base-url", "", "feed server URL (overrides config)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.Flags().StringVar(&f.theme, "theme", "", "color theme: dark or light")
	root.Flags().BoolVar(&f.noMouse, "no-mouse", false, "disable mouse input")
	root.Flags().BoolVar(&f.trace, "trace", false, "record every key and mouse event")

	root.AddCommand(newConfigCmd(&f))
	return root
}

func newConfigCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, *f)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), string(out))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if _, err := os.Stat(f.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", f.configPath)
			}
			if err := config.DefaultConfig().Save(f.configPath); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "wrote %s\n", f.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

// loadConfig reads the config file and environment, then applies any flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("base-url") {
		cfg.Server.BaseURL = f.baseURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if cmd.Flags().Changed("theme") {
		cfg.UI.Theme = f.theme
	}
	if f.noMouse {
		cfg.UI.Mouse = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, trace bool) error {
	if err := logging.Init(cfg.Log.Dir, logging.ParseLevel(cfg.Log.Level)); err != nil {
		return err
	}
	defer logging.Close()

	if trace {
		otel.SetTraceEnabled(true)
	}

	if err := os.MkdirAll(config.Dir(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	eventPath := filepath.Join(config.Dir(), "shortfeed.events.jsonl")
	eventFile, err := os.OpenFile(eventPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer eventFile.Close()

	events := otel.NewLogger(eventFile)
	defer events.Close()
	ring := otel.NewRingBuffer(ringSize)
	events.SetRingBuffer(ring)

	events.Info(otel.KindStartup, "main", "shortfeed starting")
	logging.Info("starting", "base_url", cfg.Server.BaseURL, "session", events.SessionID())

	client := api.NewClient(cfg.Server.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithRateLimit(cfg.RateLimit(), 4),
	)

	likes := work.NewRunner(likeWorkers)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		_ = likes.Stop(ctx)
	}()

	app := ui.New(ui.Options{
		Source:      client,
		Liker:       client,
		Social:      client,
		Feed:        cfg.ControllerConfig(),
		CardRows:    cfg.UI.CardRows,
		MobileWidth: cfg.UI.MobileWidth,
		Theme:       cfg.UI.Theme,
		Events:      events,
		Ring:        ring,
		FeedOptions: []feed.Option{feed.WithSpawner(likes.Go)},
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	_, err = tea.NewProgram(app, opts...).Run()
	events.Info(otel.KindShutdown, "main", "shortfeed exiting")
	if err != nil {
		logging.Error("program exited with error", "err", err)
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
