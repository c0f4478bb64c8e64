package focus

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

// Revert is what the X server does with focus if the target window becomes
// unviewable.
type Revert byte

const (
	RevertToNone   Revert = Revert(xproto.InputFocusNone)
	RevertToRoot   Revert = Revert(xproto.InputFocusPointerRoot)
	RevertToParent Revert = Revert(xproto.InputFocusParent)
)

// Display is the slice of an X11 connection the tracker needs.
type Display interface {
	FocusedWindow() (Handle, error)
	SetFocus(h Handle, revert Revert) error
	Close()
}

// Dialer opens a Display.
type Dialer func() (Display, error)

type xgbDisplay struct {
	conn *xgb.Conn
}

// DialX11 connects to the display named by $DISPLAY.
func DialX11() (Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	return &xgbDisplay{conn: conn}, nil
}

func (d *xgbDisplay) FocusedWindow() (Handle, error) {
	reply, err := xproto.GetInputFocus(d.conn).Reply()
	if err != nil {
		return None, err
	}
	return Handle(reply.Focus), nil
}

// SetFocus uses CurrentTime so the server never rejects the request as
// older than the last focus change. The checked request forces a round trip,
// which also flushes it.
func (d *xgbDisplay) SetFocus(h Handle, revert Revert) error {
	return xproto.SetInputFocusChecked(d.conn, byte(revert), xproto.Window(h), xproto.TimeCurrentTime).Check()
}

func (d *xgbDisplay) Close() {
	d.conn.Close()
}

// X11Tracker keeps the saved window in a single atomic slot so the "overlay
// shown" and "paste" events may arrive on different goroutines.
type X11Tracker struct {
	dial   Dialer
	settle atomic.Int64 // time.Duration
	sleep  func(time.Duration)
	slot   atomic.Uint32
	log    *slog.Logger
}

func NewX11Tracker(dial Dialer, cfg Config) *X11Tracker {
	t := &X11Tracker{
		dial:  dial,
		sleep: time.Sleep,
		log:   slog.With("component", "focus"),
	}
	t.SetSettle(cfg.Settle)
	return t
}

// SetSettle changes the post-restore wait, clamped to MinSettle. The saved
// window is kept.
func (t *X11Tracker) SetSettle(d time.Duration) {
	if d < MinSettle {
		d = MinSettle
	}
	t.settle.Store(int64(d))
}

// Saved returns the handle currently held in the slot.
func (t *X11Tracker) Saved() Handle {
	return Handle(t.slot.Load())
}

// Save records the focused window. Failures leave the previous value.
func (t *X11Tracker) Save() {
	d, err := t.dial()
	if err != nil {
		t.log.Warn("save: connect failed", "err", err)
		return
	}
	defer d.Close()

	h, err := d.FocusedWindow()
	if err != nil {
		t.log.Warn("save: focus query failed", "err", err)
		return
	}

	t.slot.Store(uint32(h))
	t.log.Debug("saved focused window", "window", uint32(h))
}

// Restore gives focus back to the saved window and waits for the window
// manager to apply it. Without a saved window no connection is made.
func (t *X11Tracker) Restore() error {
	h := t.Saved()
	if h == None {
		t.log.Debug("restore: no previous window saved")
		return pasteerr.New(pasteerr.NoPreviousFocus, "focus restore", nil)
	}

	t.log.Debug("restoring focus", "window", uint32(h))

	d, err := t.dial()
	if err != nil {
		return pasteerr.New(pasteerr.ConnectionFailed, "focus restore", err)
	}
	defer d.Close()

	if err := d.SetFocus(h, RevertToParent); err != nil {
		return pasteerr.New(pasteerr.ConnectionFailed, "focus restore", fmt.Errorf("set input focus %d: %w", uint32(h), err))
	}

	t.sleep(time.Duration(t.settle.Load()))
	return nil
}

func (t *X11Tracker) Query() (Handle, bool) {
	d, err := t.dial()
	if err != nil {
		return None, false
	}
	defer d.Close()

	h, err := d.FocusedWindow()
	if err != nil {
		return None, false
	}
	return h, true
}
