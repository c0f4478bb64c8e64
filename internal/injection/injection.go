// Package injection sends a synthetic Ctrl+V to the focused window by
// walking an ordered chain of strategies until one of them succeeds.
package injection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
	"github.com/leonardotrapani/clipinject/internal/session"
)

// PasteInjector simulates the paste key combination.
type PasteInjector interface {
	SimulatePaste(ctx context.Context) error
}

// Strategy is one way of producing the paste keystroke.
type Strategy interface {
	Name() string
	Paste(ctx context.Context) error
}

type funcStrategy struct {
	name string
	fn   func(ctx context.Context) error
}

func (s funcStrategy) Name() string                    { return s.name }
func (s funcStrategy) Paste(ctx context.Context) error { return s.fn(ctx) }

// StrategyFunc wraps fn as a named Strategy.
func StrategyFunc(name string, fn func(ctx context.Context) error) Strategy {
	return funcStrategy{name: name, fn: fn}
}

// Strategy names, also used by the injection.disabled config key.
const (
	NameXTest   = "xtest"
	NameXdotool = "xdotool"
	NameRobotgo = "robotgo"
	NameUinput  = "uinput"
)

// Names lists every known strategy in X11 attempt order.
var Names = []string{NameXTest, NameXdotool, NameRobotgo, NameUinput}

type Config struct {
	PrePasteDelay  time.Duration // once, before the first strategy
	XdotoolTimeout time.Duration
	Disabled       []string
	UinputPath     string
}

func DefaultConfig() Config {
	return Config{
		PrePasteDelay:  10 * time.Millisecond,
		XdotoolTimeout: 2 * time.Second,
		UinputPath:     DefaultUinputPath,
	}
}

// Set holds one implementation per strategy slot. ForSession orders them.
type Set struct {
	XTest   Strategy
	Xdotool Strategy
	Library Strategy
	Uinput  Strategy
}

// DefaultSet returns the real OS-backed strategies.
func DefaultSet(cfg Config) Set {
	return Set{
		XTest:   NewXTestStrategy(),
		Xdotool: NewXdotoolStrategy(cfg.XdotoolTimeout),
		Library: NewRobotgoStrategy(),
		Uinput:  NewUinputStrategy(cfg.UinputPath),
	}
}

// ForSession returns the attempt order for t. X11 gets the two X-specific
// strategies first; every session then tries the synthetic-input library and
// finally the kernel virtual device. Wayland has no session-specific
// strategy. Disabled names are dropped without reordering the rest.
func (s Set) ForSession(t session.Type, disabled []string) []Strategy {
	var out []Strategy
	if t == session.X11 {
		out = append(out, s.XTest, s.Xdotool)
	}
	out = append(out, s.Library, s.Uinput)

	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[strings.ToLower(strings.TrimSpace(name))] = true
	}

	filtered := out[:0]
	for _, st := range out {
		if st == nil || skip[st.Name()] {
			continue
		}
		filtered = append(filtered, st)
	}
	return filtered
}

// Chain tries strategies in order and stops at the first success.
type Chain struct {
	strategies []Strategy
	delay      time.Duration
	sleep      func(time.Duration)
	log        *slog.Logger
}

func NewChain(delay time.Duration, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		delay:      delay,
		sleep:      time.Sleep,
		log:        slog.With("component", "injection"),
	}
}

// NewForSession builds the chain of real strategies for the session type.
func NewForSession(t session.Type, cfg Config) *Chain {
	return NewChain(cfg.PrePasteDelay, DefaultSet(cfg).ForSession(t, cfg.Disabled)...)
}

// Names returns the strategy names in attempt order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// SimulatePaste runs each strategy to completion before moving on. A
// strategy's failure is logged and never returned while another remains.
func (c *Chain) SimulatePaste(ctx context.Context) error {
	if c.delay > 0 {
		c.sleep(c.delay)
	}

	c.log.Debug("sending paste keystroke", "strategies", strings.Join(c.Names(), ","))

	var errs []error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		err := s.Paste(ctx)
		if err == nil {
			c.log.Info("paste keystroke sent", "strategy", s.Name())
			return nil
		}

		c.log.Warn("paste strategy failed", "strategy", s.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}

	return pasteerr.New(pasteerr.AllStrategiesExhausted, "simulate paste", errors.Join(errs...))
}
