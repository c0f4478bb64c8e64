package injection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

// runFunc runs a command and returns its stdout. A non-zero exit must come
// back as an error carrying stderr.
type runFunc func(ctx context.Context, name string, args ...string) (string, error)

type xdotoolStrategy struct {
	timeout  time.Duration
	lookPath func(string) (string, error)
	run      runFunc
}

// NewXdotoolStrategy sends the keystroke to an explicit window id instead of
// "whoever has focus", which survives focus-stealing prevention better.
func NewXdotoolStrategy(timeout time.Duration) Strategy {
	return &xdotoolStrategy{
		timeout:  timeout,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func (s *xdotoolStrategy) Name() string { return NameXdotool }

func (s *xdotoolStrategy) Paste(ctx context.Context) error {
	if err := s.available(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, "xdotool", "getwindowfocus")
	if err != nil {
		return classifyRunError("xdotool getwindowfocus", err)
	}

	window := strings.TrimSpace(out)
	if window == "" {
		return pasteerr.Newf(pasteerr.SubprocessExitedWithError, "xdotool getwindowfocus", "empty window id")
	}

	if _, err := s.run(ctx, "xdotool", "key", "--window", window, "--clearmodifiers", "ctrl+v"); err != nil {
		return classifyRunError("xdotool key", err)
	}
	return nil
}

func (s *xdotoolStrategy) available() error {
	if _, err := s.lookPath("xdotool"); err != nil {
		return pasteerr.New(pasteerr.EnvironmentUnavailable, "xdotool", fmt.Errorf("xdotool not found: %w (install xdotool package)", err))
	}
	return nil
}

// exitError is returned by runCommand when the process ran and failed.
type exitError struct {
	err    error
	stderr string
}

func (e *exitError) Error() string {
	if e.stderr == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%v: %s", e.err, e.stderr)
}

func (e *exitError) Unwrap() error { return e.err }

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return "", &exitError{err: err, stderr: strings.TrimSpace(errb.String())}
		}
		return "", err
	}
	return out.String(), nil
}

func classifyRunError(op string, err error) error {
	var ee *exitError
	if errors.As(err, &ee) {
		return pasteerr.New(pasteerr.SubprocessExitedWithError, op, err)
	}
	return pasteerr.New(pasteerr.SubprocessSpawnFailed, op, err)
}
