package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "clipinject")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads the user config, writing the defaults first if the file does
// not exist yet.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads path. Keys missing from the file keep their defaults.
func LoadFrom(configPath string) (*Config, error) {
	log := slog.With("component", "config")

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		log.Info("no config file found, creating with defaults", "path", configPath)
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Debug("loading configuration", "path", configPath)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn("unknown config key ignored", "key", key.String())
	}

	if config.Injection.Disabled == nil {
		config.Injection.Disabled = []string{}
	}
	return config, nil
}

// Save writes cfg to the user config path.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes cfg as a commented TOML file, replacing path atomically.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(render(cfg)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func render(c *Config) string {
	var b strings.Builder
	p := func(format string, args ...any) { fmt.Fprintf(&b, format, args...) }

	p("# clipinject configuration\n")
	p("# Changes are applied by the running daemon without a restart.\n\n")

	p("# Paste keystroke injection\n")
	p("[injection]\n")
	p("  pre_paste_delay = %s   # wait before the first strategy\n", dur(c.Injection.PrePasteDelay))
	p("  xdotool_timeout = %s   # bound for each xdotool call\n", dur(c.Injection.XdotoolTimeout))
	p("  disabled = %s          # any of: xtest, xdotool, robotgo, uinput\n\n", list(c.Injection.Disabled))

	p("# X11 focus restore\n")
	p("[focus]\n")
	p("  settle = %s            # wait after refocusing (minimum 10ms)\n\n", dur(c.Focus.Settle))

	p("# Clipboard helpers (wl-copy, xclip)\n")
	p("[clipboard]\n")
	p("  wayland_settle = %s    # wait before checking wl-copy is still alive\n", dur(c.Clipboard.WaylandSettle))
	p("  helper_timeout = %s    # upper bound for one helper attempt\n\n", dur(c.Clipboard.HelperTimeout))

	p("# Remote content cache\n")
	p("[fetch]\n")
	p("  timeout = %s           # download timeout\n", dur(c.Fetch.Timeout))
	p("  cache_dir = %s         # empty = user cache dir\n", strconv.Quote(c.Fetch.CacheDir))
	p("  suffix = %s\n", strconv.Quote(c.Fetch.Suffix))
	p("  max_age = %s           # entries older than this are removed by 'cache prune'\n\n", dur(c.Fetch.MaxAge))

	p("[notifications]\n")
	p("  enabled = %t\n", c.Notifications.Enabled)
	p("  type = %s              # \"desktop\", \"log\", \"none\"\n\n", strconv.Quote(c.Notifications.Type))

	p("[logging]\n")
	p("  level = %s             # debug, info, warn, error\n", strconv.Quote(c.Logging.Level))
	p("  format = %s            # auto, text, json\n", strconv.Quote(c.Logging.Format))

	return b.String()
}

func dur(d time.Duration) string {
	return strconv.Quote(d.String())
}

func list(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
