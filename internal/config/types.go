package config

import "time"

type Config struct {
	Injection     InjectionConfig     `toml:"injection"`
	Focus         FocusConfig         `toml:"focus"`
	Clipboard     ClipboardConfig     `toml:"clipboard"`
	Fetch         FetchConfig         `toml:"fetch"`
	Notifications NotificationsConfig `toml:"notifications"`
	Logging       LoggingConfig       `toml:"logging"`
}

type InjectionConfig struct {
	PrePasteDelay  time.Duration `toml:"pre_paste_delay"`
	XdotoolTimeout time.Duration `toml:"xdotool_timeout"`
	Disabled       []string      `toml:"disabled"` // strategy names to skip
}

type FocusConfig struct {
	Settle time.Duration `toml:"settle"`
}

type ClipboardConfig struct {
	WaylandSettle time.Duration `toml:"wayland_settle"`
	HelperTimeout time.Duration `toml:"helper_timeout"`
}

type FetchConfig struct {
	Timeout  time.Duration `toml:"timeout"`
	CacheDir string        `toml:"cache_dir"` // empty = user cache dir
	Suffix   string        `toml:"suffix"`
	MaxAge   time.Duration `toml:"max_age"` // used by cache prune
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "auto", "text", "json"
}
