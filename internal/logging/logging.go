// Package logging configures the global slog logger for clipinject.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat returns FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// level is shared by every handler Setup installs so SetLevel can change it
// after a config reload.
var level slog.LevelVar

// NewHandler builds the handler Setup would install, writing to w.
func NewHandler(w io.Writer, format Format, lv slog.Leveler) slog.Handler {
	useTint := format == FormatText || (format == FormatAuto && IsTTY(w))
	if useTint {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      lv,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
}

// Setup configures the global slog logger on stderr. Call once after flag
// and config parsing.
func Setup(format Format, lv slog.Level) {
	level.Set(lv)
	slog.SetDefault(slog.New(NewHandler(os.Stderr, format, &level)))
}

// SetLevel changes the level of the logger installed by Setup.
func SetLevel(lv slog.Level) {
	if level.Level() != lv {
		slog.Info("log level changed", "from", level.Level(), "to", lv)
	}
	level.Set(lv)
}
