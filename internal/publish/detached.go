package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

// Process describes a helper that reads its payload from stdin and is left
// running once it has it.
type Process struct {
	Name    string
	Args    []string
	Env     []string // nil inherits the current environment
	Payload string
	Settle  time.Duration
}

func (p Process) String() string {
	return strings.Join(append([]string{p.Name}, p.Args...), " ")
}

// SpawnFunc starts p and returns once its health is known.
type SpawnFunc func(ctx context.Context, p Process) error

// syncBuffer guards stderr, which exec copies from another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

// Detach starts p, writes the payload, closes stdin and waits Settle. It then
// checks once whether the process already exited: a non-zero exit is an
// error carrying stderr, anything else is success. The process is not
// awaited; a goroutine reaps it whenever it exits.
func Detach(ctx context.Context, p Process) error {
	op := p.String()

	cmd := exec.Command(p.Name, p.Args...)
	if p.Env != nil {
		cmd.Env = p.Env
	}
	stderr := &syncBuffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return pasteerr.New(pasteerr.SubprocessSpawnFailed, op, err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return pasteerr.New(pasteerr.EnvironmentUnavailable, op, err)
		}
		return pasteerr.New(pasteerr.SubprocessSpawnFailed, op, err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	_, werr := io.WriteString(stdin, p.Payload)
	cerr := stdin.Close()
	if werr != nil {
		// the helper may have died before reading; prefer its exit status
		if err := checkExit(exited, stderr, op); err != nil {
			return err
		}
		return pasteerr.New(pasteerr.SubprocessSpawnFailed, op, fmt.Errorf("write payload: %w", werr))
	}
	if cerr != nil && !errors.Is(cerr, io.ErrClosedPipe) {
		return pasteerr.New(pasteerr.SubprocessSpawnFailed, op, fmt.Errorf("close stdin: %w", cerr))
	}

	if p.Settle > 0 {
		t := time.NewTimer(p.Settle)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}

	return checkExit(exited, stderr, op)
}

// checkExit reports a non-zero exit without blocking.
func checkExit(exited <-chan error, stderr *syncBuffer, op string) error {
	select {
	case err := <-exited:
		if err == nil {
			return nil
		}
		if msg := stderr.String(); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return pasteerr.New(pasteerr.SubprocessExitedWithError, op, err)
	default:
		return nil
	}
}
