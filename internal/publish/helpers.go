package publish

import (
	"context"
	"os"
	"time"

	"github.com/atotto/clipboard"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
	"github.com/leonardotrapani/clipinject/internal/session"
)

const uriListType = "text/uri-list"

// WlCopy publishes through wl-copy. The display and runtime dir are passed
// to the child explicitly so it reaches the compositor even when this
// process was started with an X11-oriented environment.
type WlCopy struct {
	lookup session.LookupFunc
	settle time.Duration
	spawn  SpawnFunc
}

func NewWlCopy(lookup session.LookupFunc, settle time.Duration) *WlCopy {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &WlCopy{lookup: lookup, settle: settle, spawn: Detach}
}

func (w *WlCopy) Name() string { return "wl-copy" }

func (w *WlCopy) Publish(ctx context.Context, uri string) error {
	display, ok := w.lookup("WAYLAND_DISPLAY")
	if !ok || display == "" {
		return pasteerr.Newf(pasteerr.EnvironmentUnavailable, "wl-copy", "WAYLAND_DISPLAY not set")
	}
	runtimeDir, ok := w.lookup("XDG_RUNTIME_DIR")
	if !ok || runtimeDir == "" {
		return pasteerr.Newf(pasteerr.EnvironmentUnavailable, "wl-copy", "XDG_RUNTIME_DIR not set")
	}

	env := append(os.Environ(),
		"WAYLAND_DISPLAY="+display,
		"XDG_RUNTIME_DIR="+runtimeDir,
	)

	return w.spawn(ctx, Process{
		Name:    "wl-copy",
		Args:    []string{"--type", uriListType},
		Env:     env,
		Payload: uri + "\n",
		Settle:  w.settle,
	})
}

// Xclip publishes through xclip, which forks and keeps serving the
// selection after we let go of it.
type Xclip struct {
	lookup session.LookupFunc
	spawn  SpawnFunc
}

func NewXclip(lookup session.LookupFunc) *Xclip {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Xclip{lookup: lookup, spawn: Detach}
}

func (x *Xclip) Name() string { return "xclip" }

func (x *Xclip) Publish(ctx context.Context, uri string) error {
	if display, ok := x.lookup("DISPLAY"); !ok || display == "" {
		return pasteerr.Newf(pasteerr.EnvironmentUnavailable, "xclip", "DISPLAY not set")
	}

	return x.spawn(ctx, Process{
		Name:    "xclip",
		Args:    []string{"-selection", "clipboard", "-t", uriListType, "-loops", "0"},
		Payload: uri,
	})
}

// SystemText writes through github.com/atotto/clipboard.
type SystemText struct{}

func (SystemText) WriteText(text string) error {
	if clipboard.Unsupported {
		return pasteerr.Newf(pasteerr.EnvironmentUnavailable, "text clipboard", "no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}
