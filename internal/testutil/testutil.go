package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/clipinject/internal/config"
	"github.com/leonardotrapani/clipinject/internal/focus"
	"github.com/leonardotrapani/clipinject/internal/publish"
	"github.com/leonardotrapani/clipinject/internal/session"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Notifications.Type = "log"
	cfg.Logging.Level = "debug"
	return cfg
}

// CreateTempConfigFile writes content to config.toml in a temp dir and
// returns its path.
func CreateTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

// TestContext returns a context with a reasonable timeout for tests
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition polls condition until it holds or timeout expires.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// EventLog records the order in which fakes are called.
type EventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *EventLog) Add(e string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *EventLog) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// FakeFocus implements focus.Controller.
type FakeFocus struct {
	Events     *EventLog
	HasSaved   bool
	Current    focus.Handle
	RestoreErr error

	mu    sync.Mutex
	Saves int
}

func (f *FakeFocus) Save() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Saves++
	f.HasSaved = true
	f.Events.Add("save")
}

func (f *FakeFocus) Restore() error {
	f.Events.Add("restore")
	return f.RestoreErr
}

func (f *FakeFocus) Query() (focus.Handle, bool) {
	return f.Current, f.Current != focus.None
}

// FakePublisher implements publish.ClipboardPublisher without touching the
// clipboard. Files publish as file:// + path.
type FakePublisher struct {
	Events *EventLog
	Err    error

	mu           sync.Mutex
	LastSession  session.Type
	LastFallback string
	Texts        []string
}

func (f *FakePublisher) SetBinaryContent(ctx context.Context, path string, t session.Type) (publish.Result, error) {
	return f.publishFile("publish-file", path, t, "")
}

func (f *FakePublisher) PublishFile(ctx context.Context, path string, t session.Type, fallback string) (publish.Result, error) {
	return f.publishFile("publish-file", path, t, fallback)
}

func (f *FakePublisher) publishFile(event, path string, t session.Type, fallback string) (publish.Result, error) {
	f.Events.Add(event)
	f.mu.Lock()
	f.LastSession = t
	f.LastFallback = fallback
	f.mu.Unlock()
	if f.Err != nil {
		return publish.Result{}, f.Err
	}
	return publish.Result{Value: "file://" + path, Kind: publish.URI, Via: "fake"}, nil
}

func (f *FakePublisher) SetText(text string) (publish.Result, error) {
	f.Events.Add("publish-text")
	f.mu.Lock()
	f.Texts = append(f.Texts, text)
	f.mu.Unlock()
	if f.Err != nil {
		return publish.Result{}, f.Err
	}
	return publish.Result{Value: text, Kind: publish.Text, Via: "text"}, nil
}

// FakeInjector implements injection.PasteInjector.
type FakeInjector struct {
	Events        *EventLog
	Err           error
	Hook          func()
	StrategyNames []string

	mu    sync.Mutex
	Calls int
}

func (f *FakeInjector) SimulatePaste(ctx context.Context) error {
	f.Events.Add("inject")
	if f.Hook != nil {
		f.Hook()
	}
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	return f.Err
}

func (f *FakeInjector) Names() []string { return f.StrategyNames }

// FakeFetcher implements fetch.ContentFetcher.
type FakeFetcher struct {
	Events *EventLog
	Path   string
	Err    error
}

func (f *FakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.Events.Add("fetch")
	if f.Err != nil {
		return "", f.Err
	}
	return f.Path, nil
}

// FakeNotifier records every notification.
type FakeNotifier struct {
	mu       sync.Mutex
	Failures []string
	Texts    []string
	Errors   []string
}

func (n *FakeNotifier) PasteFailed(reason string) { n.record(&n.Failures, reason) }
func (n *FakeNotifier) Published(value string)    { n.record(&n.Texts, value) }
func (n *FakeNotifier) Error(msg string)          { n.record(&n.Errors, msg) }

func (n *FakeNotifier) record(dst *[]string, s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	*dst = append(*dst, s)
}
