package publish

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestWlCopyRequiresEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "no display", env: map[string]string{"XDG_RUNTIME_DIR": "/run/user/1000"}},
		{name: "no runtime dir", env: map[string]string{"WAYLAND_DISPLAY": "wayland-0"}},
		{name: "empty display", env: map[string]string{"WAYLAND_DISPLAY": "", "XDG_RUNTIME_DIR": "/run/user/1000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWlCopy(envOf(tt.env), time.Millisecond)
			w.spawn = func(context.Context, Process) error {
				t.Fatal("spawn must not run without a wayland environment")
				return nil
			}
			err := w.Publish(context.Background(), "file:///tmp/a.gif")
			if pasteerr.KindOf(err) != pasteerr.EnvironmentUnavailable {
				t.Errorf("Publish() error = %v, want EnvironmentUnavailable", err)
			}
		})
	}
}

func TestWlCopyInvocation(t *testing.T) {
	var got Process
	w := NewWlCopy(envOf(map[string]string{
		"WAYLAND_DISPLAY": "wayland-1",
		"XDG_RUNTIME_DIR": "/run/user/1000",
	}), 150*time.Millisecond)
	w.spawn = func(_ context.Context, p Process) error {
		got = p
		return nil
	}

	if err := w.Publish(context.Background(), "file:///tmp/a.gif"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if got.Name != "wl-copy" || !reflect.DeepEqual(got.Args, []string{"--type", "text/uri-list"}) {
		t.Errorf("command = %s", got)
	}
	if got.Payload != "file:///tmp/a.gif\n" {
		t.Errorf("payload = %q", got.Payload)
	}
	if got.Settle != 150*time.Millisecond {
		t.Errorf("settle = %v, want 150ms", got.Settle)
	}

	// the explicit values come last so they win over inherited ones
	n := len(got.Env)
	if n < 2 || got.Env[n-2] != "WAYLAND_DISPLAY=wayland-1" || got.Env[n-1] != "XDG_RUNTIME_DIR=/run/user/1000" {
		t.Errorf("env tail = %v", got.Env[max(0, n-2):])
	}
}

func TestXclipInvocation(t *testing.T) {
	var got Process
	x := NewXclip(envOf(map[string]string{"DISPLAY": ":0"}))
	x.spawn = func(_ context.Context, p Process) error {
		got = p
		return nil
	}

	if err := x.Publish(context.Background(), "file:///tmp/a.gif"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := []string{"-selection", "clipboard", "-t", "text/uri-list", "-loops", "0"}
	if got.Name != "xclip" || !reflect.DeepEqual(got.Args, want) {
		t.Errorf("command = %s", got)
	}
	if got.Payload != "file:///tmp/a.gif" {
		t.Errorf("payload = %q", got.Payload)
	}
}

func TestXclipRequiresDisplay(t *testing.T) {
	x := NewXclip(envOf(nil))
	err := x.Publish(context.Background(), "file:///tmp/a.gif")
	if pasteerr.KindOf(err) != pasteerr.EnvironmentUnavailable {
		t.Errorf("Publish() error = %v, want EnvironmentUnavailable", err)
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestDetachStillRunningIsSuccess(t *testing.T) {
	requireShell(t)

	start := time.Now()
	err := Detach(context.Background(), Process{
		Name:    "sh",
		Args:    []string{"-c", "cat >/dev/null; sleep 2"},
		Payload: "file:///tmp/a.gif\n",
		Settle:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Detach waited %v for a long-running helper", elapsed)
	}
}

func TestDetachExitZeroIsSuccess(t *testing.T) {
	requireShell(t)

	err := Detach(context.Background(), Process{
		Name:    "sh",
		Args:    []string{"-c", "cat >/dev/null"},
		Payload: "x",
		Settle:  100 * time.Millisecond,
	})
	if err != nil {
		t.Errorf("Detach() error = %v", err)
	}
}

func TestDetachNonZeroExitCarriesStderr(t *testing.T) {
	requireShell(t)

	err := Detach(context.Background(), Process{
		Name:    "sh",
		Args:    []string{"-c", "cat >/dev/null; echo 'Failed to connect to a Wayland server' >&2; exit 1"},
		Payload: "x",
		Settle:  200 * time.Millisecond,
	})
	if pasteerr.KindOf(err) != pasteerr.SubprocessExitedWithError {
		t.Fatalf("Detach() error = %v, want SubprocessExitedWithError", err)
	}
	if !strings.Contains(err.Error(), "Failed to connect") {
		t.Errorf("error %q should include stderr", err)
	}
}

func TestDetachMissingBinary(t *testing.T) {
	err := Detach(context.Background(), Process{Name: "clipinject-no-such-helper", Payload: "x"})
	if pasteerr.KindOf(err) != pasteerr.EnvironmentUnavailable {
		t.Errorf("Detach() error = %v, want EnvironmentUnavailable", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("error should wrap exec.ErrNotFound")
	}
}
