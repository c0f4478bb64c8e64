package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

const appName = "clipinject"

type Notifier interface {
	// PasteFailed tells the user the content is on the clipboard but the
	// keystroke could not be sent.
	PasteFailed(reason string)
	Published(value string)
	Error(msg string)
}

// New picks the notifier for the [notifications] config.
func New(enabled bool, typ string) Notifier {
	if !enabled {
		return Nop{}
	}
	switch strings.ToLower(typ) {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

type Desktop struct {
	// Run executes notify-send; nil uses os/exec.
	Run func(name string, args ...string) error
}

func (d Desktop) send(args ...string) {
	run := d.Run
	if run == nil {
		run = func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		}
	}
	if err := run("notify-send", append([]string{"-a", appName}, args...)...); err != nil {
		slog.Warn("failed to send notification", "component", "notify", "err", err)
	}
}

func (d Desktop) PasteFailed(reason string) {
	d.send("-u", "normal", "Paste manually",
		fmt.Sprintf("Copied to clipboard, press Ctrl+V to paste.\n%s", reason))
}

func (d Desktop) Published(value string) {
	d.send("-u", "low", "Copied to clipboard", truncate(value, 120))
}

func (d Desktop) Error(msg string) {
	d.send("-u", "critical", msg)
}

// Log reports through slog instead of the desktop.
type Log struct{}

func (Log) PasteFailed(reason string) {
	slog.Warn("paste manually: content is on the clipboard", "component", "notify", "reason", reason)
}

func (Log) Published(value string) {
	slog.Info("copied to clipboard", "component", "notify", "value", truncate(value, 120))
}

func (Log) Error(msg string) {
	slog.Error(msg, "component", "notify")
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) PasteFailed(string) {}
func (Nop) Published(string)   {}
func (Nop) Error(string)       {}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
