package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/clipinject/internal/config"
	"github.com/leonardotrapani/clipinject/internal/focus"
	"github.com/leonardotrapani/clipinject/internal/injection"
)

var strategyDescriptions = map[string]string{
	injection.NameXTest:   "xtest - X11 XTEST extension, no helper needed",
	injection.NameXdotool: "xdotool - X11, targets the focused window",
	injection.NameRobotgo: "robotgo - cross-platform input library",
	injection.NameUinput:  "uinput - kernel virtual keyboard, works on Wayland",
}

func editInjection(cfg *config.Config) error {
	enabled := enabledStrategies(cfg.Injection.Disabled)

	var options []huh.Option[string]
	for _, n := range injection.Names {
		options = append(options, huh.NewOption(strategyDescriptions[n], n).Selected(containsFold(enabled, n)))
	}

	delay := cfg.Injection.PrePasteDelay.String()
	xdotoolTimeout := cfg.Injection.XdotoolTimeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Keystroke strategies").
				Description("Tried in this order until one succeeds. X11-only strategies are skipped on Wayland.").
				Options(options...).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errNoStrategy
					}
					return nil
				}).
				Value(&enabled),
			huh.NewInput().
				Title("Pre-paste delay").
				Description("Wait before the first keystroke").
				Validate(validateDuration(0)).
				Value(&delay),
			huh.NewInput().
				Title("xdotool timeout").
				Validate(validateDuration(time.Millisecond)).
				Value(&xdotoolTimeout),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Injection.Disabled = disabledStrategies(enabled)
	cfg.Injection.PrePasteDelay = parseDurationOr(delay, cfg.Injection.PrePasteDelay)
	cfg.Injection.XdotoolTimeout = parseDurationOr(xdotoolTimeout, cfg.Injection.XdotoolTimeout)
	return nil
}

var errNoStrategy = errors.New("select at least one strategy")

func editTiming(cfg *config.Config) error {
	settle := cfg.Focus.Settle.String()
	waylandSettle := cfg.Clipboard.WaylandSettle.String()
	helperTimeout := cfg.Clipboard.HelperTimeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Focus settle").
				Description("Pause after refocusing a window (X11)").
				Validate(validateDuration(focus.MinSettle)).
				Value(&settle),
			huh.NewInput().
				Title("Wayland clipboard settle").
				Description("How long wl-copy gets to take ownership").
				Validate(validateDuration(time.Millisecond)).
				Value(&waylandSettle),
			huh.NewInput().
				Title("Clipboard helper timeout").
				Validate(validateDuration(time.Millisecond)).
				Value(&helperTimeout),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Focus.Settle = parseDurationOr(settle, cfg.Focus.Settle)
	cfg.Clipboard.WaylandSettle = parseDurationOr(waylandSettle, cfg.Clipboard.WaylandSettle)
	cfg.Clipboard.HelperTimeout = parseDurationOr(helperTimeout, cfg.Clipboard.HelperTimeout)
	return nil
}

func editFetch(cfg *config.Config) error {
	timeout := cfg.Fetch.Timeout.String()
	maxAge := cfg.Fetch.MaxAge.String()
	cacheDir := cfg.Fetch.CacheDir
	suffix := cfg.Fetch.Suffix

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Download timeout").
				Validate(validateDuration(time.Second)).
				Value(&timeout),
			huh.NewInput().
				Title("Cache directory").
				Description("Empty uses the default under your user cache").
				Value(&cacheDir),
			huh.NewInput().
				Title("Cached file suffix").
				Validate(func(s string) error {
					if strings.ContainsAny(s, `/\`) {
						return errors.New("must not contain a path separator")
					}
					return nil
				}).
				Value(&suffix),
			huh.NewInput().
				Title("Prune files older than").
				Validate(validateDuration(time.Hour)).
				Value(&maxAge),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Fetch.Timeout = parseDurationOr(timeout, cfg.Fetch.Timeout)
	cfg.Fetch.MaxAge = parseDurationOr(maxAge, cfg.Fetch.MaxAge)
	cfg.Fetch.CacheDir = strings.TrimSpace(cacheDir)
	cfg.Fetch.Suffix = strings.TrimSpace(suffix)
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Shown when a paste has to be finished by hand").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}

func editLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	format := cfg.Logging.Format

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&level),
			huh.NewSelect[string]().
				Title("Log format").
				Description("auto picks colored text on a terminal and JSON otherwise").
				Options(huh.NewOptions("auto", "text", "json")...).
				Value(&format),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Logging.Level = level
	cfg.Logging.Format = format
	return nil
}
