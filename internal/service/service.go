// Package service installs and runs the clipinject daemon as a per-user
// system service (a systemd user unit on Linux).
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/kardianos/service"
)

const Name = "clipinject"

// the daemon serves requests in flight before Run returns
const stopTimeout = 5 * time.Second

// sessionEnv is copied into the unit so helpers reach the display server.
var sessionEnv = []string{"DISPLAY", "WAYLAND_DISPLAY", "XDG_RUNTIME_DIR", "XDG_SESSION_TYPE", "XAUTHORITY"}

// Runner is a daemon that blocks in Run until Stop is called.
type Runner interface {
	Run() error
	Stop()
}

// Factory builds the daemon when the service manager starts it.
type Factory func() (Runner, error)

// Config describes the unit. getenv selects which session variables are
// captured at install time.
func Config(getenv func(string) string) *service.Config {
	env := map[string]string{}
	for _, k := range sessionEnv {
		if v := getenv(k); v != "" {
			env[k] = v
		}
	}
	return &service.Config{
		Name:        Name,
		DisplayName: "clipinject paste daemon",
		Description: "Pastes clipboard content into the previously focused window",
		Arguments:   []string{"serve"},
		EnvVars:     env,
		Option: service.KeyValue{
			"UserService": true,
			"Restart":     "on-failure",
		},
	}
}

type program struct {
	factory Factory
	log     *slog.Logger

	mu     sync.Mutex
	runner Runner
	done   chan error
}

func (p *program) Start(s service.Service) error {
	r, err := p.factory()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.runner = r
	p.done = make(chan error, 1)
	done := p.done
	p.mu.Unlock()

	go func() {
		err := r.Run()
		if err != nil {
			p.log.Error("daemon exited", "err", err)
		}
		done <- err
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.mu.Lock()
	r, done := p.runner, p.done
	p.mu.Unlock()
	if r == nil {
		return nil
	}

	r.Stop()
	select {
	case err := <-done:
		return err
	case <-time.After(stopTimeout):
		return errors.New("daemon did not stop in time")
	}
}

// New wraps the daemon built by f in a service.
func New(f Factory) (service.Service, error) {
	prg := &program{factory: f, log: slog.With("component", "service")}
	return service.New(prg, Config(os.Getenv))
}

// Control runs install, uninstall, start, stop or restart.
func Control(s service.Service, action string) error {
	if !slices.Contains(service.ControlAction[:], action) {
		return fmt.Errorf("unknown action %q (must be one of %v)", action, service.ControlAction)
	}
	return service.Control(s, action)
}

// Status returns a readable service state.
func Status(s service.Service) (string, error) {
	st, err := s.Status()
	if errors.Is(err, service.ErrNotInstalled) {
		return "not installed", nil
	}
	if err != nil {
		return "", err
	}
	switch st {
	case service.StatusRunning:
		return "running", nil
	case service.StatusStopped:
		return "stopped", nil
	default:
		return "unknown", nil
	}
}

// Interactive is false when the service manager started the process.
func Interactive() bool { return service.Interactive() }

// Run hands control to the service manager until it stops the daemon.
func Run(f Factory) error {
	s, err := New(f)
	if err != nil {
		return err
	}
	return s.Run()
}
