package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/clipinject/internal/config"
	"github.com/leonardotrapani/clipinject/internal/injection"
)

func formatInjectionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Injection (%s)", strings.Join(enabledStrategies(cfg.Injection.Disabled), ", "))
}

func formatFetchLabel(cfg *config.Config) string {
	dir := cfg.Fetch.CacheDir
	if dir == "" {
		dir = "default cache"
	}
	return fmt.Sprintf("Downloads (%s)", dir)
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (off)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func formatLoggingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Logging (%s, %s)", cfg.Logging.Level, cfg.Logging.Format)
}

// enabledStrategies is the complement of disabled, in attempt order.
func enabledStrategies(disabled []string) []string {
	var out []string
	for _, n := range injection.Names {
		if !containsFold(disabled, n) {
			out = append(out, n)
		}
	}
	return out
}

// disabledStrategies is the complement of enabled, in attempt order.
func disabledStrategies(enabled []string) []string {
	out := []string{}
	for _, n := range injection.Names {
		if !containsFold(enabled, n) {
			out = append(out, n)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), s)
	})
}

// validateDuration returns a huh validator accepting durations of at least
// min.
func validateDuration(min time.Duration) func(string) error {
	return func(s string) error {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not a duration, try 150ms or 2s")
		}
		if d < min {
			return fmt.Errorf("must be at least %v", min)
		}
		return nil
	}
}

// parseDurationOr parses s, keeping fallback when it does not parse.
func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return d
}

func summaryLines(cfg *config.Config) [][2]string {
	notifications := "disabled"
	if cfg.Notifications.Enabled {
		notifications = cfg.Notifications.Type
	}
	cacheDir := cfg.Fetch.CacheDir
	if cacheDir == "" {
		cacheDir = cfg.ToFetchConfig().CacheDir
	}
	return [][2]string{
		{"Strategies:", strings.Join(enabledStrategies(cfg.Injection.Disabled), " -> ")},
		{"Pre-paste delay:", cfg.Injection.PrePasteDelay.String()},
		{"Focus settle:", cfg.Focus.Settle.String()},
		{"Wayland settle:", cfg.Clipboard.WaylandSettle.String()},
		{"Helper timeout:", cfg.Clipboard.HelperTimeout.String()},
		{"Download cache:", fmt.Sprintf("%s (*%s, kept %v)", cacheDir, cfg.Fetch.Suffix, cfg.Fetch.MaxAge)},
		{"Notifications:", notifications},
		{"Logging:", cfg.Logging.Level + " / " + cfg.Logging.Format},
	}
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))

	for _, l := range summaryLines(cfg) {
		fmt.Printf("  %s %s\n", StyleLabel.Render(l[0]), l[1])
	}
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
