//go:build linux

package injection

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

const DefaultUinputPath = "/dev/uinput"

// linux/input-event-codes.h
const (
	evSyn       = 0x00
	evKey       = 0x01
	synReport   = 0x00
	keyLeftCtrl = 29
	keyV        = 47
	busUSB      = 0x03
)

// linux/uinput.h ioctl requests
const (
	uiSetEvBit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeyBit  = 0x40045565 // _IOW('U', 101, int)
	uiDevSetup   = 0x405c5503 // _IOW('U', 3, struct uinput_setup)
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)
)

const uinputDeviceName = "clipinject-paste-helper"

const (
	uinputSettle    = 50 * time.Millisecond
	uinputKeyGap    = 10 * time.Millisecond
	uinputTailDelay = 50 * time.Millisecond
)

// uinputSetup mirrors struct uinput_setup.
type uinputSetup struct {
	BusType      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	Name         [80]byte
	FFEffectsMax uint32
}

// timevalSize is sizeof(struct timeval) on the build target; input_event
// starts with one.
var timevalSize = int(unsafe.Sizeof(unix.Timeval{}))

// encodeEvent lays out a struct input_event in native byte order with a
// zero timestamp, which the kernel fills in.
func encodeEvent(typ, code uint16, value int32) []byte {
	buf := make([]byte, timevalSize+8)
	binary.NativeEndian.PutUint16(buf[timevalSize:], typ)
	binary.NativeEndian.PutUint16(buf[timevalSize+2:], code)
	binary.NativeEndian.PutUint32(buf[timevalSize+4:], uint32(value))
	return buf
}

type uinputStrategy struct {
	path  string
	sleep func(time.Duration)

	// device syscalls
	ioctl    func(fd int, req uint, value int) error
	devSetup func(fd int, setup *uinputSetup) error
	write    func(fd int, p []byte) (int, error)
}

// NewUinputStrategy injects the keystroke through a temporary kernel
// virtual keyboard. It works under any session type but needs write access
// to the uinput node.
func NewUinputStrategy(path string) Strategy {
	if path == "" {
		path = DefaultUinputPath
	}
	return &uinputStrategy{
		path:     path,
		sleep:    time.Sleep,
		ioctl:    unix.IoctlSetInt,
		devSetup: ioctlDevSetup,
		write:    unix.Write,
	}
}

func ioctlDevSetup(fd int, setup *uinputSetup) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uiDevSetup, uintptr(unsafe.Pointer(setup))); errno != 0 {
		return errno
	}
	return nil
}

func (s *uinputStrategy) Name() string { return NameUinput }

func (s *uinputStrategy) Paste(ctx context.Context) error {
	fd, err := unix.Open(s.path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return classifyOpenError(s.path, err)
	}
	defer unix.Close(fd)

	if err := s.setupDevice(fd); err != nil {
		return err
	}
	defer func() {
		_ = s.ioctl(fd, uiDevDestroy, 0)
	}()

	// give the input subsystem and compositor time to pick the device up
	s.sleep(uinputSettle)

	steps := []struct {
		code  uint16
		value int32
	}{
		{keyLeftCtrl, 1},
		{keyV, 1},
		{keyV, 0},
		{keyLeftCtrl, 0},
	}
	for _, st := range steps {
		if err := s.writeKey(fd, st.code, st.value); err != nil {
			return pasteerr.New(pasteerr.EnvironmentUnavailable, "uinput write", err)
		}
		s.sleep(uinputKeyGap)
	}

	s.sleep(uinputTailDelay)
	return nil
}

func classifyOpenError(path string, err error) error {
	op := "uinput open " + path
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return pasteerr.New(pasteerr.PermissionDenied, op, err)
	default:
		return pasteerr.New(pasteerr.EnvironmentUnavailable, op, err)
	}
}

func (s *uinputStrategy) setupDevice(fd int) error {
	if err := s.ioctl(fd, uiSetEvBit, evKey); err != nil {
		return pasteerr.New(pasteerr.EnvironmentUnavailable, "uinput", fmt.Errorf("UI_SET_EVBIT EV_KEY: %w", err))
	}
	for _, key := range []int{keyLeftCtrl, keyV} {
		if err := s.ioctl(fd, uiSetKeyBit, key); err != nil {
			return pasteerr.New(pasteerr.EnvironmentUnavailable, "uinput", fmt.Errorf("UI_SET_KEYBIT %d: %w", key, err))
		}
	}

	setup := uinputSetup{
		BusType: busUSB,
		Vendor:  0x1234,
		Product: 0x5678,
		Version: 1,
	}
	copy(setup.Name[:], uinputDeviceName)

	if err := s.devSetup(fd, &setup); err != nil {
		return pasteerr.New(pasteerr.EnvironmentUnavailable, "uinput", fmt.Errorf("UI_DEV_SETUP: %w", err))
	}
	if err := s.ioctl(fd, uiDevCreate, 0); err != nil {
		return pasteerr.New(pasteerr.EnvironmentUnavailable, "uinput", fmt.Errorf("UI_DEV_CREATE: %w", err))
	}
	return nil
}

// writeKey writes one key event followed by its SYN_REPORT.
func (s *uinputStrategy) writeKey(fd int, code uint16, value int32) error {
	ev := append(encodeEvent(evKey, code, value), encodeEvent(evSyn, synReport, 0)...)
	n, err := s.write(fd, ev)
	if err != nil {
		return err
	}
	if n != len(ev) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(ev))
	}
	return nil
}
