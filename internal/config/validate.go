package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/leonardotrapani/clipinject/internal/focus"
	"github.com/leonardotrapani/clipinject/internal/injection"
)

func (c *Config) Validate() error {
	if c.Injection.PrePasteDelay < 0 {
		return fmt.Errorf("invalid injection.pre_paste_delay: %v", c.Injection.PrePasteDelay)
	}
	if c.Injection.XdotoolTimeout <= 0 {
		return fmt.Errorf("invalid injection.xdotool_timeout: %v", c.Injection.XdotoolTimeout)
	}
	valid := make(map[string]bool, len(injection.Names))
	for _, n := range injection.Names {
		valid[n] = true
	}
	for _, name := range c.Injection.Disabled {
		if !valid[strings.ToLower(strings.TrimSpace(name))] {
			return fmt.Errorf("invalid injection.disabled: unknown strategy %q (must be %s)", name, strings.Join(injection.Names, ", "))
		}
	}

	if c.Focus.Settle < focus.MinSettle {
		return fmt.Errorf("invalid focus.settle: %v (minimum %v)", c.Focus.Settle, focus.MinSettle)
	}

	if c.Clipboard.WaylandSettle <= 0 {
		return fmt.Errorf("invalid clipboard.wayland_settle: %v", c.Clipboard.WaylandSettle)
	}
	if c.Clipboard.HelperTimeout <= 0 {
		return fmt.Errorf("invalid clipboard.helper_timeout: %v", c.Clipboard.HelperTimeout)
	}
	if c.Clipboard.HelperTimeout < c.Clipboard.WaylandSettle {
		return fmt.Errorf("invalid clipboard.helper_timeout: %v (must not be shorter than clipboard.wayland_settle)", c.Clipboard.HelperTimeout)
	}

	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("invalid fetch.timeout: %v", c.Fetch.Timeout)
	}
	if strings.ContainsAny(c.Fetch.Suffix, `/\`) {
		return fmt.Errorf("invalid fetch.suffix: %q (must not contain a path separator)", c.Fetch.Suffix)
	}
	if c.Fetch.MaxAge < time.Hour {
		return fmt.Errorf("invalid fetch.max_age: %v (minimum 1h)", c.Fetch.MaxAge)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	validFormats := map[string]bool{"auto": true, "text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid logging.format: %s (must be auto, text, or json)", c.Logging.Format)
	}

	return nil
}
