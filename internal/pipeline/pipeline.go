// Package pipeline runs the paste flow: obtain content, publish it, hand
// focus back to the original window and send the paste keystroke.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/leonardotrapani/clipinject/internal/fetch"
	"github.com/leonardotrapani/clipinject/internal/focus"
	"github.com/leonardotrapani/clipinject/internal/injection"
	"github.com/leonardotrapani/clipinject/internal/notify"
	"github.com/leonardotrapani/clipinject/internal/pasteerr"
	"github.com/leonardotrapani/clipinject/internal/publish"
	"github.com/leonardotrapani/clipinject/internal/session"
)

type Status string

const (
	Idle       Status = "idle"
	Fetching   Status = "fetching"
	Publishing Status = "publishing"
	Restoring  Status = "restoring"
	Injecting  Status = "injecting"
)

// Components are the collaborators a Pipeline needs. Focus and Notifier
// default to no-ops; a nil Fetcher publishes remote content as its URL.
type Components struct {
	Session   session.Type
	Focus     focus.Controller
	Publisher publish.ClipboardPublisher
	Injector  injection.PasteInjector
	Fetcher   fetch.ContentFetcher
	Notifier  notify.Notifier
}

// Pipeline wires the engine components together. Pastes are serialized.
type Pipeline struct {
	Components

	mu     sync.Mutex   // held for a whole paste
	cmu    sync.RWMutex // guards Components outside of pastes
	stMu   sync.RWMutex
	status Status
	log    *slog.Logger
}

func New(c Components) *Pipeline {
	if c.Focus == nil {
		c.Focus = focus.Nop{}
	}
	if c.Notifier == nil {
		c.Notifier = notify.Nop{}
	}
	return &Pipeline{
		Components: c,
		status:     Idle,
		log:        slog.With("component", "pipeline"),
	}
}

func (p *Pipeline) Status() Status {
	p.stMu.RLock()
	defer p.stMu.RUnlock()
	return p.status
}

func (p *Pipeline) setStatus(s Status) {
	p.stMu.Lock()
	p.status = s
	p.stMu.Unlock()
}

// SaveFocus remembers the focused window. Call it just before the history
// overlay takes focus.
func (p *Pipeline) SaveFocus() {
	p.cmu.RLock()
	defer p.cmu.RUnlock()
	p.Focus.Save()
}

// Info is a diagnostic snapshot for status queries.
type Info struct {
	Session    session.Type
	Status     Status
	Window     focus.Handle
	HasWindow  bool
	Strategies []string
}

func (p *Pipeline) Info() Info {
	p.cmu.RLock()
	defer p.cmu.RUnlock()

	info := Info{Session: p.Session, Status: p.Status()}
	info.Window, info.HasWindow = p.Focus.Query()
	if n, ok := p.Injector.(interface{ Names() []string }); ok {
		info.Strategies = n.Names()
	}
	return info
}

// Paste refocuses the saved window and sends the keystroke for whatever is
// already on the clipboard.
func (p *Pipeline) Paste(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.setStatus(Idle)

	return p.restoreAndInject(ctx)
}

// PasteFile publishes path as a file and pastes it.
func (p *Pipeline) PasteFile(ctx context.Context, path string) (publish.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.setStatus(Idle)

	p.setStatus(Publishing)
	res, err := p.Publisher.SetBinaryContent(ctx, path, p.Session)
	if err != nil {
		p.Notifier.Error("Could not copy to clipboard")
		return res, err
	}
	p.announceFallback(res)

	return res, p.restoreAndInject(ctx)
}

// PasteURL fetches url into the cache, publishes the local copy and pastes
// it. If the download fails the URL itself is published as text.
func (p *Pipeline) PasteURL(ctx context.Context, url string) (publish.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.setStatus(Idle)

	res, err := p.publishRemote(ctx, url)
	if err != nil {
		p.Notifier.Error("Could not copy to clipboard")
		return res, err
	}
	p.announceFallback(res)

	return res, p.restoreAndInject(ctx)
}

// announceFallback tells the user when only plain text made it onto the
// clipboard.
func (p *Pipeline) announceFallback(res publish.Result) {
	if res.Kind == publish.Text {
		p.Notifier.Published(res.Value)
	}
}

func (p *Pipeline) publishRemote(ctx context.Context, url string) (publish.Result, error) {
	if p.Fetcher == nil {
		p.setStatus(Publishing)
		return p.Publisher.SetText(url)
	}

	p.setStatus(Fetching)
	path, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		p.log.Warn("fetch failed, publishing url as text", "url", url, "err", err)
		p.setStatus(Publishing)
		return p.Publisher.SetText(url)
	}

	p.setStatus(Publishing)
	return p.Publisher.PublishFile(ctx, path, p.Session, url)
}

func (p *Pipeline) restoreAndInject(ctx context.Context) error {
	p.setStatus(Restoring)
	if err := p.Focus.Restore(); err != nil {
		// the keystroke still goes to whatever has focus now
		if errors.Is(err, pasteerr.ErrNoPreviousFocus) {
			p.log.Debug("no saved focus to restore")
		} else {
			p.log.Warn("focus restore failed", "err", err)
		}
	}

	p.setStatus(Injecting)
	if err := p.Injector.SimulatePaste(ctx); err != nil {
		p.log.Error("paste keystroke failed", "err", err)
		p.Notifier.PasteFailed("Automatic paste is unavailable in this session.")
		return err
	}
	return nil
}
