// Package fetch downloads remote content into a content-addressed cache so
// it can be published to the clipboard as a local file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

type Config struct {
	Timeout  time.Duration
	CacheDir string
	Suffix   string
}

// DefaultCacheDir returns <user cache dir>/clipinject/gifs.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("could not get user cache dir: %w", err)
	}
	return filepath.Join(base, "clipinject", "gifs"), nil
}

func DefaultConfig() Config {
	dir, err := DefaultCacheDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), "clipinject", "gifs")
	}
	return Config{
		Timeout:  10 * time.Second,
		CacheDir: dir,
		Suffix:   ".gif",
	}
}

// ContentFetcher resolves a URL to a local file path.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Fetcher struct {
	client *http.Client
	dir    string
	suffix string
	log    *slog.Logger
}

func New(cfg Config) *Fetcher {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewWithClient uses client as is; its timeout bounds each download.
func NewWithClient(cfg Config, client *http.Client) *Fetcher {
	suffix := cfg.Suffix
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return &Fetcher{
		client: client,
		dir:    cfg.CacheDir,
		suffix: suffix,
		log:    slog.With("component", "fetch"),
	}
}

func (f *Fetcher) Dir() string { return f.dir }

// Path returns where url is or would be cached.
func (f *Fetcher) Path(url string) string {
	return filepath.Join(f.dir, strconv.FormatUint(xxhash.Sum64String(url), 10)+f.suffix)
}

// Fetch returns the cached file for url, downloading it first on a miss.
// A cached entry is never rewritten.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	path := f.Path(url)
	if _, err := os.Stat(path); err == nil {
		f.log.Debug("cache hit", "url", url, "path", path)
		return path, nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", pasteerr.New(pasteerr.FetchFailed, "create cache dir", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", pasteerr.New(pasteerr.FetchFailed, "fetch "+url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", pasteerr.New(pasteerr.FetchFailed, "fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", pasteerr.Newf(pasteerr.FetchFailed, "fetch "+url, "unexpected status %s", resp.Status)
	}

	if err := f.store(path, resp.Body); err != nil {
		return "", pasteerr.New(pasteerr.FetchFailed, "fetch "+url, err)
	}

	f.log.Info("cached remote content", "url", url, "path", path)
	return path, nil
}

// store streams body into a temp file beside path and renames it into place.
func (f *Fetcher) store(path string, body io.Reader) error {
	tmp, err := os.CreateTemp(f.dir, ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("read body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	// another fetch of the same url may have finished first
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into cache: %w", err)
	}
	return nil
}

// Prune removes cache entries last modified more than maxAge ago and returns
// how many were removed. Temp files from interrupted downloads go too.
func (f *Fetcher) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	f.log.Info("pruned cache", "dir", f.dir, "removed", removed)
	return removed, errors.Join(errs...)
}
