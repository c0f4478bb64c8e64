package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
	"github.com/leonardotrapani/clipinject/internal/session"
)

type fakeHelper struct {
	name  string
	err   error
	calls *[]string
	uris  []string
}

func (f *fakeHelper) Name() string { return f.name }

func (f *fakeHelper) Publish(ctx context.Context, uri string) error {
	*f.calls = append(*f.calls, f.name)
	f.uris = append(f.uris, uri)
	return f.err
}

type fakeText struct {
	err     error
	written []string
	calls   *[]string
}

func (f *fakeText) WriteText(text string) error {
	*f.calls = append(*f.calls, "text")
	f.written = append(f.written, text)
	return f.err
}

type fixture struct {
	calls  []string
	wl     *fakeHelper
	xclip  *fakeHelper
	text   *fakeText
	setter *Setter
}

func newFixture(wlErr, xclipErr, textErr error) *fixture {
	f := &fixture{}
	f.wl = &fakeHelper{name: "wl-copy", err: wlErr, calls: &f.calls}
	f.xclip = &fakeHelper{name: "xclip", err: xclipErr, calls: &f.calls}
	f.text = &fakeText{err: textErr, calls: &f.calls}
	f.setter = NewSetter(DefaultConfig())
	f.setter.WlCopy = f.wl
	f.setter.Xclip = f.xclip
	f.setter.Text = f.text
	return f
}

func tempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var errHelper = pasteerr.Newf(pasteerr.EnvironmentUnavailable, "helper", "not available")

func TestWaylandPublishesViaWlCopy(t *testing.T) {
	f := newFixture(nil, nil, nil)
	path := tempFile(t, "cat.gif")

	res, err := f.setter.SetBinaryContent(context.Background(), path, session.Wayland)
	if err != nil {
		t.Fatalf("SetBinaryContent() error = %v", err)
	}

	if !strings.HasPrefix(res.Value, "file://") || !strings.HasSuffix(res.Value, "/cat.gif") {
		t.Errorf("Value = %q, want file:// URI ending in /cat.gif", res.Value)
	}
	if res.Kind != URI || res.Via != "wl-copy" {
		t.Errorf("Result = %+v, want URI via wl-copy", res)
	}
	if !reflect.DeepEqual(f.calls, []string{"wl-copy"}) {
		t.Errorf("calls = %v, want [wl-copy]", f.calls)
	}
}

func TestPublishFallthrough(t *testing.T) {
	tests := []struct {
		name      string
		session   session.Type
		wlErr     error
		xclipErr  error
		textErr   error
		fallback  string
		wantCalls []string
		wantKind  ResultKind
		wantVia   string
		wantErr   bool
	}{
		{
			name:      "wayland falls through to xclip",
			session:   session.Wayland,
			wlErr:     errHelper,
			wantCalls: []string{"wl-copy", "xclip"},
			wantKind:  URI,
			wantVia:   "xclip",
		},
		{
			name:      "wayland falls through to text",
			session:   session.Wayland,
			wlErr:     errHelper,
			xclipErr:  errHelper,
			wantCalls: []string{"wl-copy", "xclip", "text"},
			wantKind:  Text,
			wantVia:   "text",
		},
		{
			name:      "x11 never tries wl-copy",
			session:   session.X11,
			wantCalls: []string{"xclip"},
			wantKind:  URI,
			wantVia:   "xclip",
		},
		{
			name:      "unknown uses xclip then text",
			session:   session.Unknown,
			xclipErr:  errHelper,
			fallback:  "https://example.com/cat.gif",
			wantCalls: []string{"xclip", "text"},
			wantKind:  Text,
			wantVia:   "text",
		},
		{
			name:      "everything fails",
			session:   session.Wayland,
			wlErr:     errHelper,
			xclipErr:  errHelper,
			textErr:   errors.New("no clipboard"),
			wantCalls: []string{"wl-copy", "xclip", "text"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.wlErr, tt.xclipErr, tt.textErr)
			path := tempFile(t, "a.gif")

			res, err := f.setter.PublishFile(context.Background(), path, tt.session, tt.fallback)

			if !reflect.DeepEqual(f.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", f.calls, tt.wantCalls)
			}
			if tt.wantErr {
				if !errors.Is(err, pasteerr.ErrPublishFailed) {
					t.Errorf("error = %v, want PublishFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PublishFile() error = %v", err)
			}
			if res.Kind != tt.wantKind || res.Via != tt.wantVia {
				t.Errorf("Result = %+v, want kind %v via %s", res, tt.wantKind, tt.wantVia)
			}
		})
	}
}

func TestTextFallbackValue(t *testing.T) {
	f := newFixture(errHelper, errHelper, nil)
	path := tempFile(t, "b.gif")
	uri, _ := FileURI(path)

	res, err := f.setter.SetBinaryContent(context.Background(), path, session.Wayland)
	if err != nil {
		t.Fatalf("SetBinaryContent() error = %v", err)
	}
	if res.Value != uri || !reflect.DeepEqual(f.text.written, []string{uri}) {
		t.Errorf("text fallback wrote %v (result %q), want the file URI %q", f.text.written, res.Value, uri)
	}

	f = newFixture(errHelper, errHelper, nil)
	res, err = f.setter.PublishFile(context.Background(), path, session.Wayland, "https://example.com/b.gif")
	if err != nil {
		t.Fatalf("PublishFile() error = %v", err)
	}
	if res.Value != "https://example.com/b.gif" {
		t.Errorf("Value = %q, want the caller fallback", res.Value)
	}
}

func TestHelpersReceiveSameURI(t *testing.T) {
	f := newFixture(errHelper, nil, nil)
	path := tempFile(t, "c.gif")

	if _, err := f.setter.SetBinaryContent(context.Background(), path, session.Wayland); err != nil {
		t.Fatal(err)
	}
	if len(f.wl.uris) != 1 || len(f.xclip.uris) != 1 || f.wl.uris[0] != f.xclip.uris[0] {
		t.Errorf("wl-copy got %v, xclip got %v", f.wl.uris, f.xclip.uris)
	}
}

func TestFileURI(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/tmp/cat.gif", want: "file:///tmp/cat.gif"},
		{path: "/tmp/my cat.gif", want: "file:///tmp/my%20cat.gif"},
		{path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FileURI(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FileURI(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FileURI(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileURIMakesRelativeAbsolute(t *testing.T) {
	got, err := FileURI("relative.gif")
	if err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if !strings.HasPrefix(got, "file://"+filepath.ToSlash(wd)) {
		t.Errorf("FileURI(relative) = %q, want prefix file://%s", got, wd)
	}
}
