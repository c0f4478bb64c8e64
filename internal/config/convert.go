package config

import (
	"github.com/leonardotrapani/clipinject/internal/fetch"
	"github.com/leonardotrapani/clipinject/internal/focus"
	"github.com/leonardotrapani/clipinject/internal/injection"
	"github.com/leonardotrapani/clipinject/internal/publish"
)

func (c *Config) ToInjectionConfig() injection.Config {
	cfg := injection.DefaultConfig()
	cfg.PrePasteDelay = c.Injection.PrePasteDelay
	cfg.XdotoolTimeout = c.Injection.XdotoolTimeout
	cfg.Disabled = append([]string(nil), c.Injection.Disabled...)
	return cfg
}

func (c *Config) ToFocusConfig() focus.Config {
	return focus.Config{Settle: c.Focus.Settle}
}

func (c *Config) ToPublishConfig() publish.Config {
	return publish.Config{
		WaylandSettle: c.Clipboard.WaylandSettle,
		HelperTimeout: c.Clipboard.HelperTimeout,
	}
}

// ToFetchConfig fills in the default cache dir when none is configured.
func (c *Config) ToFetchConfig() fetch.Config {
	cfg := fetch.DefaultConfig()
	cfg.Timeout = c.Fetch.Timeout
	cfg.Suffix = c.Fetch.Suffix
	if c.Fetch.CacheDir != "" {
		cfg.CacheDir = c.Fetch.CacheDir
	}
	return cfg
}
