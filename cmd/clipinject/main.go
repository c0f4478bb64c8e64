package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/clipinject/internal/bus"
	"github.com/leonardotrapani/clipinject/internal/config"
	"github.com/leonardotrapani/clipinject/internal/daemon"
	"github.com/leonardotrapani/clipinject/internal/deps"
	"github.com/leonardotrapani/clipinject/internal/fetch"
	"github.com/leonardotrapani/clipinject/internal/logging"
	"github.com/leonardotrapani/clipinject/internal/pipeline"
	"github.com/leonardotrapani/clipinject/internal/service"
	"github.com/leonardotrapani/clipinject/internal/session"
	"github.com/leonardotrapani/clipinject/internal/tui"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	logFormat  string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "clipinject",
	Short:         "Paste clipboard content into the window you came from (X11 and Wayland)",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			p, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			configPath = p
		}
		logging.Setup(logging.ParseFormat(logFormat), logging.ParseLevel(logLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/clipinject/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "log format: auto, text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")

	rootCmd.AddCommand(
		serveCmd(),
		saveFocusCmd(),
		pasteCmd(),
		pasteURLCmd(),
		pasteFileCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		sessionCmd(),
		doctorCmd(),
		configureCmd(),
		cacheCmd(),
		serviceCmd(),
	)
}

// loadConfig reads the config file and applies it to logging unless
// --log-level overrides it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyLogging(cfg)
	return cfg, nil
}

func applyLogging(cfg *config.Config) {
	format := logFormat
	if format == "" || format == "auto" {
		format = cfg.Logging.Format
	}
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logging.Setup(logging.ParseFormat(format), logging.ParseLevel(level))
}

func newDaemon() (*daemon.Daemon, error) {
	mgr, err := config.NewManagerAt(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := mgr.GetConfig()
	applyLogging(cfg)

	pruneCache(cfg)

	p := pipeline.FromConfig(cfg, session.Default().Type())
	return daemon.New(p, mgr), nil
}

func daemonFactory() (service.Runner, error) {
	d, err := newDaemon()
	if err != nil {
		return nil, err
	}
	return d, nil
}

func pruneCache(cfg *config.Config) {
	f := fetch.New(cfg.ToFetchConfig())
	n, err := f.Prune(cfg.Fetch.MaxAge)
	if err != nil {
		slog.Warn("cache prune failed", "component", "cli", "dir", f.Dir(), "err", err)
		return
	}
	if n > 0 {
		slog.Info("pruned download cache", "component", "cli", "removed", n)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !service.Interactive() {
				return service.Run(daemonFactory)
			}
			d, err := newDaemon()
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

// send forwards req to the daemon and prints the reply. ERR replies become
// a non-zero exit.
func send(req bus.Request, what string) error {
	resp, err := bus.SendRequest(req)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	fmt.Print(resp)
	return replyError(resp)
}

func replyError(resp string) error {
	if rest, ok := strings.CutPrefix(resp, "ERR "); ok {
		return errors.New(strings.TrimSpace(rest))
	}
	return nil
}

func simpleCmd(use, short string, cmd byte, what string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return send(bus.Request{Cmd: cmd}, what)
		},
	}
}

func saveFocusCmd() *cobra.Command {
	return simpleCmd("save-focus", "Remember the focused window before showing the history overlay", bus.CmdSaveFocus, "save focus")
}

func pasteCmd() *cobra.Command {
	return simpleCmd("paste", "Refocus the saved window and paste the current clipboard", bus.CmdPaste, "paste")
}

func statusCmd() *cobra.Command {
	return simpleCmd("status", "Show session, saved window and keystroke strategies", bus.CmdStatus, "get status")
}

func stopCmd() *cobra.Command {
	return simpleCmd("stop", "Stop the daemon", bus.CmdQuit, "stop daemon")
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client version and daemon protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("clipinject %s (protocol %s)\n", version, bus.ProtoVer)
			resp, err := bus.SendCommand(bus.CmdVersion)
			if err != nil {
				fmt.Println("daemon: not running")
				return nil
			}
			fmt.Print(resp)
			return nil
		},
	}
}

// runDirect runs one paste in this process. There is no saved window, so
// the keystroke goes to whatever has focus.
func runDirect(fn func(ctx context.Context, p *pipeline.Pipeline) (string, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.FromConfig(cfg, session.Default().Type())
	out, err := fn(ctx, p)
	if out != "" {
		fmt.Println(out)
	}
	return err
}

func pasteURLCmd() *cobra.Command {
	var direct bool
	cmd := &cobra.Command{
		Use:   "paste-url <url>",
		Short: "Download url, put it on the clipboard as a file and paste it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if direct {
				return runDirect(func(ctx context.Context, p *pipeline.Pipeline) (string, error) {
					res, err := p.PasteURL(ctx, args[0])
					return res.Value, err
				})
			}
			return send(bus.Request{Cmd: bus.CmdPasteURL, Arg: args[0]}, "paste url")
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "run without the daemon")
	return cmd
}

func pasteFileCmd() *cobra.Command {
	var direct bool
	cmd := &cobra.Command{
		Use:   "paste-file <path>",
		Short: "Put a local file on the clipboard and paste it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the daemon runs in another working directory
			path, err := absExisting(args[0])
			if err != nil {
				return err
			}
			if direct {
				return runDirect(func(ctx context.Context, p *pipeline.Pipeline) (string, error) {
					res, err := p.PasteFile(ctx, path)
					return res.Value, err
				})
			}
			return send(bus.Request{Cmd: bus.CmdPasteFile, Arg: path}, "paste file")
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "run without the daemon")
	return cmd
}

func absExisting(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}
	return abs, nil
}

// parseAge accepts Go durations plus a whole number of days ("7d").
func parseAge(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}

func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the detected display server",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := session.Default()
			source := d.Source()
			if source == "" {
				source = "no session variables set"
			}
			fmt.Printf("%s (%s)\n", d.Type(), source)
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check helpers, devices and environment needed for pasting",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := session.Default()
			report := deps.DefaultProbe().Run(d.Type(), d.Source())
			fmt.Print(report.Render())
			if !report.Healthy() {
				return errors.New("required dependencies missing")
			}
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			result, err := tui.Run(cfg)
			if err != nil {
				return fmt.Errorf("configuration wizard error: %w", err)
			}
			if result.Cancelled {
				fmt.Println("Configuration cancelled.")
				return nil
			}

			if err := config.SaveTo(configPath, result.Config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Println()
			fmt.Println("Configuration saved to", configPath)
			fmt.Println("A running daemon picks up the changes automatically.")
			return nil
		},
	}
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the download cache",
	}

	var maxAge string
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached downloads older than fetch.max_age",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if maxAge != "" {
				d, err := parseAge(maxAge)
				if err != nil {
					return err
				}
				cfg.Fetch.MaxAge = d
			}
			f := fetch.New(cfg.ToFetchConfig())
			n, err := f.Prune(cfg.Fetch.MaxAge)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d file(s) from %s\n", n, f.Dir())
			return nil
		},
	}
	prune.Flags().StringVar(&maxAge, "older-than", "", "override fetch.max_age, e.g. 24h")

	dir := &cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(fetch.New(cfg.ToFetchConfig()).Dir())
			return nil
		},
	}

	cmd.AddCommand(prune, dir)
	return cmd
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service <install|uninstall|start|stop|restart|status>",
		Short:     "Manage the per-user background service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "restart", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := service.New(daemonFactory)
			if err != nil {
				return err
			}
			if args[0] == "status" {
				st, err := service.Status(s)
				if err != nil {
					return err
				}
				fmt.Println(st)
				return nil
			}
			if err := service.Control(s, args[0]); err != nil {
				return err
			}
			fmt.Printf("service %s: ok\n", args[0])
			return nil
		},
	}
	return cmd
}
