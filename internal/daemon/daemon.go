package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/leonardotrapani/clipinject/internal/bus"
	"github.com/leonardotrapani/clipinject/internal/config"
	"github.com/leonardotrapani/clipinject/internal/logging"
	"github.com/leonardotrapani/clipinject/internal/pasteerr"
	"github.com/leonardotrapani/clipinject/internal/pipeline"
	"github.com/leonardotrapani/clipinject/internal/publish"
)

// requests that read nothing after the command byte must arrive quickly
const readTimeout = 5 * time.Second

type Daemon struct {
	pipeline *pipeline.Pipeline
	config   *config.Manager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *slog.Logger
}

// New returns a daemon serving p. m may be nil, in which case the
// configuration is never reloaded.
func New(p *pipeline.Pipeline, m *config.Manager) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		pipeline: p,
		config:   m,
		ctx:      ctx,
		cancel:   cancel,
		log:      slog.With("component", "daemon"),
	}
}

func (d *Daemon) Pipeline() *pipeline.Pipeline { return d.pipeline }

// Stop asks Run to return.
func (d *Daemon) Stop() { d.cancel() }

func (d *Daemon) Run() error {
	defer d.cancel()

	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if d.config != nil {
		d.config.OnChange(d.applyConfig)
		if err := d.config.StartWatching(d.ctx); err != nil {
			d.log.Warn("config hot reload disabled", "err", err)
		} else {
			defer d.config.Stop()
		}
	}

	d.log.Info("daemon started", "session", d.pipeline.Info().Session.String(), "pid", os.Getpid())
	return d.serve(ln)
}

// serve accepts connections on ln until the daemon is stopped or Accept
// fails. Either way the daemon context is cancelled on return.
func (d *Daemon) serve(ln net.Listener) error {
	defer d.cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.log.Info("received signal, shutting down", "signal", sig.String())
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				d.wg.Wait()
				d.log.Info("daemon stopped")
				return nil
			}
			d.log.Error("accept failed", "err", err)
			d.cancel()
			d.wg.Wait()
			return fmt.Errorf("accept failed: %w", err)
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handle(c)
		}()
	}
}

func (d *Daemon) applyConfig(cfg *config.Config) {
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	d.pipeline.Reconfigure(cfg)
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	_ = c.SetReadDeadline(time.Now().Add(readTimeout))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		d.log.Warn("client read error", "err", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	_ = c.SetReadDeadline(time.Time{})

	req, err := bus.ParseRequest(line)
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	fmt.Fprint(c, d.dispatch(req))
}

// dispatch runs one request and returns the reply line.
func (d *Daemon) dispatch(req bus.Request) string {
	log := d.log.With("cmd", string(req.Cmd))

	switch req.Cmd {
	case bus.CmdSaveFocus:
		d.pipeline.SaveFocus()
		return "OK focus_saved\n"

	case bus.CmdPaste:
		if err := d.pipeline.Paste(d.ctx); err != nil {
			log.Warn("paste failed", "err", err)
			return errReply(err)
		}
		return "OK pasted\n"

	case bus.CmdPasteURL, bus.CmdPasteFile:
		if req.Arg == "" {
			return "ERR missing_argument\n"
		}
		var (
			res publish.Result
			err error
		)
		if req.Cmd == bus.CmdPasteURL {
			res, err = d.pipeline.PasteURL(d.ctx, req.Arg)
		} else {
			res, err = d.pipeline.PasteFile(d.ctx, req.Arg)
		}
		if err != nil {
			log.Warn("paste failed", "arg", req.Arg, "err", err)
			if res.Value != "" {
				// the clipboard is set, only the keystroke failed
				return fmt.Sprintf("ERR kind=%s clipboard=%s\n", kindSlug(err), res.Kind)
			}
			return errReply(err)
		}
		return fmt.Sprintf("OK pasted %s=%s\n", res.Kind, res.Value)

	case bus.CmdStatus:
		return statusLine(d.pipeline.Info())

	case bus.CmdVersion:
		return fmt.Sprintf("STATUS proto=%s\n", bus.ProtoVer)

	case bus.CmdQuit:
		d.cancel()
		return "OK quitting\n"

	default:
		log.Warn("unknown command")
		return fmt.Sprintf("ERR unknown=%q\n", req.Cmd)
	}
}

func statusLine(info pipeline.Info) string {
	window := "none"
	if info.HasWindow {
		window = strconv.FormatUint(uint64(info.Window), 10)
	}
	strategies := strings.Join(info.Strategies, ",")
	if strategies == "" {
		strategies = "none"
	}
	return fmt.Sprintf("STATUS session=%s status=%s focus=%s strategies=%s\n",
		info.Session, info.Status, window, strategies)
}

func errReply(err error) string {
	if errors.Is(err, context.Canceled) {
		return "ERR canceled\n"
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	return fmt.Sprintf("ERR kind=%s %s\n", kindSlug(err), msg)
}

// "all strategies exhausted" -> "all_strategies_exhausted"
func kindSlug(err error) string {
	return strings.ReplaceAll(pasteerr.KindOf(err).String(), " ", "_")
}
