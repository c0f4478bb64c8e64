package pipeline

import (
	"github.com/leonardotrapani/clipinject/internal/config"
	"github.com/leonardotrapani/clipinject/internal/fetch"
	"github.com/leonardotrapani/clipinject/internal/focus"
	"github.com/leonardotrapani/clipinject/internal/injection"
	"github.com/leonardotrapani/clipinject/internal/notify"
	"github.com/leonardotrapani/clipinject/internal/publish"
	"github.com/leonardotrapani/clipinject/internal/session"
)

// ComponentsFromConfig builds the OS-backed components for session t.
func ComponentsFromConfig(cfg *config.Config, t session.Type) Components {
	return Components{
		Session:   t,
		Focus:     focus.New(t, cfg.ToFocusConfig()),
		Publisher: publish.NewSetter(cfg.ToPublishConfig()),
		Injector:  injection.NewForSession(t, cfg.ToInjectionConfig()),
		Fetcher:   fetch.New(cfg.ToFetchConfig()),
		Notifier:  notify.New(cfg.Notifications.Enabled, cfg.Notifications.Type),
	}
}

func FromConfig(cfg *config.Config, t session.Type) *Pipeline {
	return New(ComponentsFromConfig(cfg, t))
}

// Reconfigure swaps in components built from cfg once any paste in flight
// has finished. The focus controller is kept so a saved window survives.
func (p *Pipeline) Reconfigure(cfg *config.Config) {
	next := ComponentsFromConfig(cfg, p.Session)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmu.Lock()
	defer p.cmu.Unlock()

	focus.Reconfigure(p.Focus, cfg.ToFocusConfig())
	next.Focus = p.Focus
	p.Components = next

	p.log.Info("pipeline reconfigured")
}
