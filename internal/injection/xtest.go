package injection

import (
	"context"
	"fmt"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

const (
	keysymControlL = 0xffe3
	keysymV        = 0x0076

	// evdev keycodes + 8, used when the keyboard mapping has no match
	fallbackCtrlKeycode = 37
	fallbackVKeycode    = 55
)

// Gaps between the four key events. Events with no spacing may be dropped
// by debounce logic in the server or the client toolkit.
var comboGaps = [3]time.Duration{
	10 * time.Millisecond,
	10 * time.Millisecond,
	5 * time.Millisecond,
}

// keyboard emits raw key events. Each call must reach the server before it
// returns.
type keyboard interface {
	KeyDown(keycode byte) error
	KeyUp(keycode byte) error
}

// sendCombo presses ctrl, presses key, releases key, releases ctrl.
func sendCombo(kb keyboard, ctrl, key byte, sleep func(time.Duration)) error {
	if err := kb.KeyDown(ctrl); err != nil {
		return fmt.Errorf("press ctrl: %w", err)
	}
	sleep(comboGaps[0])

	if err := kb.KeyDown(key); err != nil {
		return fmt.Errorf("press v: %w", err)
	}
	sleep(comboGaps[1])

	if err := kb.KeyUp(key); err != nil {
		return fmt.Errorf("release v: %w", err)
	}
	sleep(comboGaps[2])

	if err := kb.KeyUp(ctrl); err != nil {
		return fmt.Errorf("release ctrl: %w", err)
	}
	return nil
}

type xtestKeyboard struct {
	conn *xgb.Conn
	root xproto.Window
}

// KeyDown uses the checked request so the event is flushed and acknowledged
// before the caller sleeps.
func (k *xtestKeyboard) KeyDown(keycode byte) error {
	return xtest.FakeInputChecked(k.conn, xproto.KeyPress, keycode, 0, k.root, 0, 0, 0).Check()
}

func (k *xtestKeyboard) KeyUp(keycode byte) error {
	return xtest.FakeInputChecked(k.conn, xproto.KeyRelease, keycode, 0, k.root, 0, 0, 0).Check()
}

type xtestStrategy struct {
	sleep func(time.Duration)
}

// NewXTestStrategy synthesizes the keys through the XTEST extension in
// process, without spawning anything.
func NewXTestStrategy() Strategy {
	return &xtestStrategy{sleep: time.Sleep}
}

func (s *xtestStrategy) Name() string { return NameXTest }

func (s *xtestStrategy) Paste(ctx context.Context) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return pasteerr.New(pasteerr.ConnectionFailed, "xtest", err)
	}
	defer conn.Close()

	if err := xtest.Init(conn); err != nil {
		return pasteerr.New(pasteerr.ProtocolUnsupported, "xtest", err)
	}
	if _, err := xtest.GetVersion(conn, 2, 1).Reply(); err != nil {
		return pasteerr.New(pasteerr.ProtocolUnsupported, "xtest", fmt.Errorf("version query: %w", err))
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	ctrl, v := resolveKeycodes(conn, setup)

	if err := roundTrip(conn); err != nil {
		return pasteerr.New(pasteerr.ConnectionFailed, "xtest", fmt.Errorf("sync: %w", err))
	}

	kb := &xtestKeyboard{conn: conn, root: root}
	if err := sendCombo(kb, ctrl, v, s.sleep); err != nil {
		return pasteerr.New(pasteerr.ConnectionFailed, "xtest", err)
	}

	if err := roundTrip(conn); err != nil {
		return pasteerr.New(pasteerr.ConnectionFailed, "xtest", fmt.Errorf("sync: %w", err))
	}
	return nil
}

// roundTrip waits for a reply, which drains every request sent before it.
func roundTrip(conn *xgb.Conn) error {
	_, err := xproto.GetInputFocus(conn).Reply()
	return err
}

func resolveKeycodes(conn *xgb.Conn, setup *xproto.SetupInfo) (ctrl, v byte) {
	ctrl, v = fallbackCtrlKeycode, fallbackVKeycode

	first := setup.MinKeycode
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, first, count).Reply()
	if err != nil || reply.KeysymsPerKeycode == 0 {
		return ctrl, v
	}

	if kc, ok := findKeycode(reply.Keysyms, int(reply.KeysymsPerKeycode), byte(first), keysymControlL); ok {
		ctrl = kc
	}
	if kc, ok := findKeycode(reply.Keysyms, int(reply.KeysymsPerKeycode), byte(first), keysymV); ok {
		v = kc
	}
	return ctrl, v
}

// findKeycode scans a GetKeyboardMapping table for the first keycode whose
// group holds sym.
func findKeycode(syms []xproto.Keysym, perKeycode int, first byte, sym xproto.Keysym) (byte, bool) {
	for i, s := range syms {
		if s == sym {
			return first + byte(i/perKeycode), true
		}
	}
	return 0, false
}
