// Package focus remembers which window had input focus before the history
// overlay appeared and hands focus back to it before a paste keystroke is
// sent. Only X11 exposes this; other sessions get a no-op controller.
package focus

import (
	"time"

	"github.com/leonardotrapani/clipinject/internal/session"
)

// Handle is an X11 window id. Zero means no window has been saved.
type Handle uint32

const None Handle = 0

// MinSettle is the shortest wait after a focus change before synthetic keys
// may be sent. The window manager must have processed the change by then.
const MinSettle = 10 * time.Millisecond

// Controller saves and restores input focus around the overlay window.
type Controller interface {
	Save()
	Restore() error
	Query() (Handle, bool)
}

type Config struct {
	Settle time.Duration
}

func DefaultConfig() Config {
	return Config{Settle: MinSettle}
}

// New picks the controller for the session: the X11 tracker under X11 and
// Nop everywhere else.
func New(t session.Type, cfg Config) Controller {
	if t == session.X11 {
		return NewX11Tracker(DialX11, cfg)
	}
	return Nop{}
}

// Nop is the controller for sessions without focus control.
type Nop struct{}

func (Nop) Save()                 {}
func (Nop) Restore() error        { return nil }
func (Nop) Query() (Handle, bool) { return None, false }

// Reconfigure applies cfg to c if c supports it.
func Reconfigure(c Controller, cfg Config) {
	if t, ok := c.(*X11Tracker); ok {
		t.SetSettle(cfg.Settle)
	}
}
