// Package publish puts content on the system clipboard using whichever
// helper fits the session, falling back to plain text when no rich-content
// helper works.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
	"github.com/leonardotrapani/clipinject/internal/session"
)

type ResultKind int

const (
	URI ResultKind = iota
	Text
)

func (k ResultKind) String() string {
	if k == Text {
		return "text"
	}
	return "uri"
}

// Result describes what ended up on the clipboard.
type Result struct {
	Value string
	Kind  ResultKind
	Via   string
}

// ClipboardPublisher publishes files and text to the clipboard.
type ClipboardPublisher interface {
	// SetBinaryContent publishes path as a file URI list. If no helper
	// accepts it, the URI itself is published as text.
	SetBinaryContent(ctx context.Context, path string, t session.Type) (Result, error)
	// PublishFile is SetBinaryContent with a caller-chosen text fallback.
	PublishFile(ctx context.Context, path string, t session.Type, fallback string) (Result, error)
	SetText(text string) (Result, error)
}

// FilePublisher hands a URI list to an external clipboard helper.
type FilePublisher interface {
	Name() string
	Publish(ctx context.Context, uri string) error
}

// TextPublisher writes plain text to the clipboard.
type TextPublisher interface {
	WriteText(text string) error
}

type Config struct {
	WaylandSettle time.Duration
	HelperTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WaylandSettle: 150 * time.Millisecond,
		HelperTimeout: 2 * time.Second,
	}
}

// Setter is the default ClipboardPublisher.
type Setter struct {
	WlCopy FilePublisher
	Xclip  FilePublisher
	Text   TextPublisher

	timeout time.Duration
	log     *slog.Logger
}

// NewSetter returns a Setter backed by wl-copy, xclip and the system text
// clipboard.
func NewSetter(cfg Config) *Setter {
	return &Setter{
		WlCopy:  NewWlCopy(nil, cfg.WaylandSettle),
		Xclip:   NewXclip(nil),
		Text:    SystemText{},
		timeout: cfg.HelperTimeout,
		log:     slog.With("component", "publish"),
	}
}

// helpersFor returns the helper order for the session hint. Under Wayland
// xclip still gets a turn since XWayland clients read the X selection.
func (s *Setter) helpersFor(t session.Type) []FilePublisher {
	var out []FilePublisher
	if t == session.Wayland && s.WlCopy != nil {
		out = append(out, s.WlCopy)
	}
	if s.Xclip != nil {
		out = append(out, s.Xclip)
	}
	return out
}

func (s *Setter) SetBinaryContent(ctx context.Context, path string, t session.Type) (Result, error) {
	return s.PublishFile(ctx, path, t, "")
}

func (s *Setter) PublishFile(ctx context.Context, path string, t session.Type, fallback string) (Result, error) {
	uri, err := FileURI(path)
	if err != nil {
		return Result{}, pasteerr.New(pasteerr.PublishFailed, "publish file", err)
	}

	var errs []error
	for _, h := range s.helpersFor(t) {
		err := s.runHelper(ctx, h, uri)
		if err == nil {
			s.log.Info("clipboard published", "via", h.Name(), "uri", uri)
			return Result{Value: uri, Kind: URI, Via: h.Name()}, nil
		}
		s.log.Warn("clipboard helper failed", "helper", h.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", h.Name(), err))
	}

	if fallback == "" {
		fallback = uri
	}
	res, err := s.SetText(fallback)
	if err != nil {
		return res, pasteerr.New(pasteerr.PublishFailed, "publish file", errors.Join(append(errs, err)...))
	}
	return res, nil
}

func (s *Setter) runHelper(ctx context.Context, h FilePublisher, uri string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return h.Publish(ctx, uri)
}

func (s *Setter) SetText(text string) (Result, error) {
	if s.Text == nil {
		return Result{}, pasteerr.Newf(pasteerr.PublishFailed, "publish text", "no text clipboard configured")
	}
	if err := s.Text.WriteText(text); err != nil {
		return Result{}, pasteerr.New(pasteerr.PublishFailed, "publish text", err)
	}
	s.log.Info("clipboard published as text", "len", len(text))
	return Result{Value: text, Kind: Text, Via: "text"}, nil
}

// FileURI returns the file:// URI for path, made absolute and escaped.
func FileURI(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
