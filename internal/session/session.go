// Package session detects whether the graphical session is driven by X11 or
// a Wayland compositor. Detection runs once per Detector and is cached for
// the Detector's lifetime.
package session

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Type int

const (
	Unknown Type = iota
	Wayland
	X11
)

func (t Type) String() string {
	switch t {
	case Wayland:
		return "wayland"
	case X11:
		return "x11"
	default:
		return "unknown"
	}
}

// LookupFunc reads an environment variable. It matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type Detector struct {
	lookup LookupFunc

	once   sync.Once
	typ    Type
	source string
}

// NewDetector returns a Detector reading the environment through lookup.
// A nil lookup uses os.LookupEnv.
func NewDetector(lookup LookupFunc) *Detector {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Detector{lookup: lookup}
}

var (
	defaultOnce     sync.Once
	defaultDetector *Detector
)

// Default returns the process-wide detector backed by the real environment.
func Default() *Detector {
	defaultOnce.Do(func() {
		defaultDetector = NewDetector(nil)
	})
	return defaultDetector
}

// Type returns the session type, evaluating the environment on first use.
func (d *Detector) Type() Type {
	d.once.Do(func() {
		d.typ, d.source = detect(d.lookup)
		slog.Debug("session detected", "component", "session", "type", d.typ.String(), "source", d.source)
	})
	return d.typ
}

// Source names the environment variable that decided the session type, or
// "" when none did.
func (d *Detector) Source() string {
	d.Type()
	return d.source
}

func (d *Detector) IsWayland() bool { return d.Type() == Wayland }
func (d *Detector) IsX11() bool     { return d.Type() == X11 }

func detect(lookup LookupFunc) (Type, string) {
	if v, ok := lookup("XDG_SESSION_TYPE"); ok {
		switch strings.ToLower(v) {
		case "wayland":
			return Wayland, "XDG_SESSION_TYPE"
		case "x11":
			return X11, "XDG_SESSION_TYPE"
		}
	}

	// presence alone counts, even when empty
	if _, ok := lookup("WAYLAND_DISPLAY"); ok {
		return Wayland, "WAYLAND_DISPLAY"
	}

	if _, ok := lookup("DISPLAY"); ok {
		return X11, "DISPLAY"
	}

	return Unknown, ""
}
