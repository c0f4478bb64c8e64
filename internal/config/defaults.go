package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Injection: InjectionConfig{
			PrePasteDelay:  10 * time.Millisecond,
			XdotoolTimeout: 2 * time.Second,
			Disabled:       []string{},
		},
		Focus: FocusConfig{
			Settle: 10 * time.Millisecond,
		},
		Clipboard: ClipboardConfig{
			WaylandSettle: 150 * time.Millisecond,
			HelperTimeout: 2 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:  10 * time.Second,
			CacheDir: "",
			Suffix:   ".gif",
			MaxAge:   30 * 24 * time.Hour,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}
