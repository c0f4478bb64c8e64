// Package deps reports which external helpers and devices the paste engine
// can use on this machine.
package deps

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/leonardotrapani/clipinject/internal/injection"
	"github.com/leonardotrapani/clipinject/internal/session"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Probe is the environment a Check inspects. Tests replace every field.
type Probe struct {
	LookPath  func(file string) (string, error)
	Version   func(path string, args ...string) string
	Writable  func(path string) error
	Getenv    func(key string) string
	UinputDev string
}

func DefaultProbe() Probe {
	return Probe{
		LookPath:  exec.LookPath,
		Version:   firstLine,
		Writable:  func(p string) error { return unix.Access(p, unix.W_OK) },
		Getenv:    os.Getenv,
		UinputDev: injection.DefaultUinputPath,
	}
}

func firstLine(path string, args ...string) string {
	out, err := exec.Command(path, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

func (p Probe) binary(name string, versionArgs ...string) Status {
	path, err := p.LookPath(name)
	if err != nil {
		return Status{Installed: false}
	}
	st := Status{Installed: true, Path: path}
	if len(versionArgs) > 0 {
		st.Version = p.Version(path, versionArgs...)
	}
	return st
}

// Check is one line of the doctor report.
type Check struct {
	Name     string
	Purpose  string
	OK       bool
	Required bool // false: only a fallback or a nicety is lost
	Detail   string
}

// Report is every check relevant to one session type.
type Report struct {
	Session session.Type
	Source  string
	Checks  []Check
}

// Healthy is true when no required check failed.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Required && !c.OK {
			return false
		}
	}
	return true
}

// Run inspects the machine for a session of type t.
func (p Probe) Run(t session.Type, source string) Report {
	r := Report{Session: t, Source: source}

	switch t {
	case session.X11:
		r.Checks = append(r.Checks,
			envCheck(p, "DISPLAY", "X server connection for focus and XTEST", true),
			binaryCheck(p.binary("xdotool", "--version"), "xdotool", "keystroke fallback", false),
			binaryCheck(p.binary("xclip", "-version"), "xclip", "file clipboard", true),
		)
	case session.Wayland:
		r.Checks = append(r.Checks,
			envCheck(p, "WAYLAND_DISPLAY", "compositor socket", true),
			envCheck(p, "XDG_RUNTIME_DIR", "wl-copy runtime dir", true),
			binaryCheck(p.binary("wl-copy", "--version"), "wl-copy", "file clipboard", true),
			binaryCheck(p.binary("xclip", "-version"), "xclip", "clipboard via XWayland", false),
		)
	default:
		r.Checks = append(r.Checks, Check{
			Name:     "session",
			Purpose:  "display server detection",
			Required: true,
			Detail:   "neither WAYLAND_DISPLAY nor DISPLAY points at a usable session",
		})
	}

	r.Checks = append(r.Checks,
		p.uinputCheck(t),
		binaryCheck(p.binary("notify-send", "--version"), "notify-send", "desktop notifications", false),
	)
	return r
}

func envCheck(p Probe, key, purpose string, required bool) Check {
	v := p.Getenv(key)
	c := Check{Name: "$" + key, Purpose: purpose, OK: v != "", Required: required, Detail: v}
	if v == "" {
		c.Detail = "not set"
	}
	return c
}

func binaryCheck(st Status, name, purpose string, required bool) Check {
	c := Check{Name: name, Purpose: purpose, OK: st.Installed, Required: required}
	switch {
	case !st.Installed:
		c.Detail = "not found in PATH"
	case st.Version != "":
		c.Detail = st.Version
	default:
		c.Detail = st.Path
	}
	return c
}

// /dev/uinput is the only keystroke path on Wayland, so it is required
// there.
func (p Probe) uinputCheck(t session.Type) Check {
	c := Check{
		Name:     p.UinputDev,
		Purpose:  "virtual keyboard",
		Required: t != session.X11,
	}
	err := p.Writable(p.UinputDev)
	switch {
	case err == nil:
		c.OK = true
		c.Detail = "writable"
	case errors.Is(err, unix.ENOENT):
		c.Detail = "missing (modprobe uinput)"
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		c.Detail = "not writable (add a udev rule or join the input group)"
	default:
		c.Detail = err.Error()
	}
	return c
}
