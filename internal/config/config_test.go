package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	return &Config{
		Injection: InjectionConfig{
			PrePasteDelay:  10 * time.Millisecond,
			XdotoolTimeout: 2 * time.Second,
			Disabled:       []string{"robotgo"},
		},
		Focus: FocusConfig{Settle: 20 * time.Millisecond},
		Clipboard: ClipboardConfig{
			WaylandSettle: 150 * time.Millisecond,
			HelperTimeout: time.Second,
		},
		Fetch: FetchConfig{
			Timeout:  5 * time.Second,
			CacheDir: "/tmp/clipinject-test",
			Suffix:   ".gif",
			MaxAge:   48 * time.Hour,
		},
		Notifications: NotificationsConfig{Enabled: true, Type: "log"},
		Logging:       LoggingConfig{Level: "debug", Format: "json"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "defaults are valid", mutate: func(c *Config) { *c = *DefaultConfig() }},
		{
			name:    "negative pre paste delay",
			mutate:  func(c *Config) { c.Injection.PrePasteDelay = -time.Millisecond },
			wantErr: "invalid injection.pre_paste_delay",
		},
		{
			name:    "zero xdotool timeout",
			mutate:  func(c *Config) { c.Injection.XdotoolTimeout = 0 },
			wantErr: "invalid injection.xdotool_timeout",
		},
		{
			name:    "unknown disabled strategy",
			mutate:  func(c *Config) { c.Injection.Disabled = []string{"ydotool"} },
			wantErr: "invalid injection.disabled",
		},
		{
			name:   "disabled strategy case insensitive",
			mutate: func(c *Config) { c.Injection.Disabled = []string{"XTest", " uinput "} },
		},
		{
			name:    "focus settle below minimum",
			mutate:  func(c *Config) { c.Focus.Settle = 5 * time.Millisecond },
			wantErr: "invalid focus.settle",
		},
		{
			name:    "zero wayland settle",
			mutate:  func(c *Config) { c.Clipboard.WaylandSettle = 0 },
			wantErr: "invalid clipboard.wayland_settle",
		},
		{
			name:    "helper timeout shorter than settle",
			mutate:  func(c *Config) { c.Clipboard.HelperTimeout = 100 * time.Millisecond },
			wantErr: "invalid clipboard.helper_timeout",
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(c *Config) { c.Fetch.Timeout = 0 },
			wantErr: "invalid fetch.timeout",
		},
		{
			name:    "suffix with separator",
			mutate:  func(c *Config) { c.Fetch.Suffix = "../x" },
			wantErr: "invalid fetch.suffix",
		},
		{
			name:    "max age too short",
			mutate:  func(c *Config) { c.Fetch.MaxAge = time.Minute },
			wantErr: "invalid fetch.max_age",
		},
		{
			name:    "bad notification type",
			mutate:  func(c *Config) { c.Notifications.Type = "popup" },
			wantErr: "invalid notifications.type",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createTestConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := createTestConfig()

	if err := SaveTo(path, want); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("loaded %+v, want defaults", cfg)
	}

	data, _ := os.ReadFile(path)
	for _, section := range []string{"[injection]", "[focus]", "[clipboard]", "[fetch]", "[notifications]", "[logging]"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("default file missing %s", section)
		}
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[injection]
  disabled = ["xtest"]

[fetch]
  timeout = "3s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.Injection.Disabled, []string{"xtest"}) {
		t.Errorf("disabled = %v", cfg.Injection.Disabled)
	}
	if cfg.Fetch.Timeout != 3*time.Second {
		t.Errorf("fetch.timeout = %v, want 3s", cfg.Fetch.Timeout)
	}
	if cfg.Clipboard.WaylandSettle != 150*time.Millisecond {
		t.Errorf("clipboard.wayland_settle = %v, want default 150ms", cfg.Clipboard.WaylandSettle)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[injection\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should fail on malformed TOML")
	}
}

func TestGetConfigPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if want := filepath.Join(dir, "clipinject", "config.toml"); path != want {
		t.Errorf("GetConfigPath() = %q, want %q", path, want)
	}
}

func TestConverters(t *testing.T) {
	c := createTestConfig()

	inj := c.ToInjectionConfig()
	if inj.PrePasteDelay != c.Injection.PrePasteDelay || inj.XdotoolTimeout != c.Injection.XdotoolTimeout {
		t.Errorf("ToInjectionConfig() = %+v", inj)
	}
	if !reflect.DeepEqual(inj.Disabled, []string{"robotgo"}) || inj.UinputPath == "" {
		t.Errorf("ToInjectionConfig() = %+v", inj)
	}

	if got := c.ToFocusConfig().Settle; got != 20*time.Millisecond {
		t.Errorf("ToFocusConfig().Settle = %v", got)
	}

	pub := c.ToPublishConfig()
	if pub.WaylandSettle != 150*time.Millisecond || pub.HelperTimeout != time.Second {
		t.Errorf("ToPublishConfig() = %+v", pub)
	}

	f := c.ToFetchConfig()
	if f.CacheDir != "/tmp/clipinject-test" || f.Timeout != 5*time.Second || f.Suffix != ".gif" {
		t.Errorf("ToFetchConfig() = %+v", f)
	}

	c.Fetch.CacheDir = ""
	if f := c.ToFetchConfig(); !strings.HasSuffix(f.CacheDir, filepath.Join("clipinject", "gifs")) {
		t.Errorf("default cache dir = %q", f.CacheDir)
	}
}

func TestManagerReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	m, err := NewManagerAt(path)
	if err != nil {
		t.Fatalf("NewManagerAt() error = %v", err)
	}

	var got []*Config
	m.OnChange(func(c *Config) { got = append(got, c) })

	updated := DefaultConfig()
	updated.Injection.Disabled = []string{"uinput"}
	if err := SaveTo(path, updated); err != nil {
		t.Fatal(err)
	}

	if !m.Reload() {
		t.Fatal("Reload() = false")
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0].Injection.Disabled, []string{"uinput"}) {
		t.Errorf("listener got %+v", got)
	}

	// an invalid file keeps the previous config
	bad := DefaultConfig()
	bad.Notifications.Type = "popup"
	if err := SaveTo(path, bad); err != nil {
		t.Fatal(err)
	}
	if m.Reload() {
		t.Error("Reload() accepted an invalid config")
	}
	if m.GetConfig().Notifications.Type != "desktop" {
		t.Errorf("config replaced by invalid file")
	}
}

func TestManagerGetConfigIsCopy(t *testing.T) {
	m, err := NewManagerAt(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	c := m.GetConfig()
	c.Injection.Disabled = append(c.Injection.Disabled, "xtest")
	c.Notifications.Type = "none"

	fresh := m.GetConfig()
	if len(fresh.Injection.Disabled) != 0 || fresh.Notifications.Type != "desktop" {
		t.Errorf("mutating a copy changed the manager: %+v", fresh)
	}
}

func TestManagerWatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	m, err := NewManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Logf("fsnotify unavailable: %v", err)
		return
	}
	defer m.Stop()

	changed := make(chan *Config, 4)
	m.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	updated := DefaultConfig()
	updated.Logging.Level = "debug"
	if err := SaveTo(path, updated); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changed:
		if c.Logging.Level != "debug" {
			t.Errorf("reloaded level = %q", c.Logging.Level)
		}
	case <-time.After(3 * time.Second):
		t.Error("no reload within 3s of writing the file")
	}
}
