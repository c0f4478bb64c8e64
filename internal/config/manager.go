package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

type Manager struct {
	mu        sync.RWMutex
	path      string
	config    *Config
	listeners []func(*Config)
	watcher   *fsnotify.Watcher
	wg        sync.WaitGroup
	log       *slog.Logger
}

// NewManager loads the user config file.
func NewManager() (*Manager, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath)
}

// NewManagerAt loads the config file at path.
func NewManagerAt(path string) (*Manager, error) {
	log := slog.With("component", "config")

	config, err := LoadFrom(path)
	if err != nil {
		log.Error("failed to load initial configuration", "err", err)
		return nil, err
	}

	if err := config.Validate(); err != nil {
		log.Warn("validation warning", "err", err)
	}

	return &Manager{path: path, config: config, log: log}, nil
}

func (m *Manager) Path() string { return m.path }

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// copy so callers can't mutate shared state
	configCopy := *m.config
	configCopy.Injection.Disabled = append([]string(nil), m.config.Injection.Disabled...)
	return &configCopy
}

// OnChange registers fn to run with the new config after every successful
// reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	m.watcher = watcher

	// watch the directory: editors often replace the file instead of
	// writing it in place
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx)

	m.log.Info("watching config for changes", "path", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != configFileName {
				continue
			}

			// Write, Create and the Rename-into-place of an atomic save
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				m.log.Info("config change detected, reloading", "event", event.Op.String())
				m.Reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn("config watcher error", "err", err)

		case <-ctx.Done():
			return
		}
	}
}

// Reload re-reads the file. An unreadable or invalid file keeps the
// current config.
func (m *Manager) Reload() bool {
	newConfig, err := LoadFrom(m.path)
	if err != nil {
		m.log.Error("failed to reload config", "err", err)
		return false
	}

	if err := newConfig.Validate(); err != nil {
		m.log.Error("invalid config after reload", "err", err)
		return false
	}

	m.mu.Lock()
	m.config = newConfig
	listeners := append([]func(*Config){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(m.GetConfig())
	}

	m.log.Info("configuration reloaded")
	return true
}
