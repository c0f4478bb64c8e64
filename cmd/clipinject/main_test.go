package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReplyError(t *testing.T) {
	tests := []struct {
		resp    string
		wantErr string
	}{
		{"OK pasted\n", ""},
		{"STATUS proto=1.0\n", ""},
		{"ERR kind=fetch_failed boom\n", "kind=fetch_failed boom"},
		{"ERR unknown='x'\n", "unknown='x'"},
	}
	for _, tt := range tests {
		err := replyError(tt.resp)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("replyError(%q) = %v, want nil", tt.resp, err)
			}
			continue
		}
		if err == nil || err.Error() != tt.wantErr {
			t.Errorf("replyError(%q) = %v, want %q", tt.resp, err, tt.wantErr)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"24h", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAge(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAge(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAge(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAbsExisting(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.gif")
	if err := os.WriteFile(file, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	got, err := absExisting("a.gif")
	if err != nil {
		t.Fatalf("absExisting() error = %v", err)
	}
	if got != file {
		t.Errorf("absExisting() = %q, want %q", got, file)
	}

	if _, err := absExisting("missing.gif"); err == nil {
		t.Error("absExisting() should fail for a missing file")
	}
	if _, err := absExisting(dir); err == nil {
		t.Error("absExisting() should refuse a directory")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "save-focus", "paste", "paste-url", "paste-file", "status", "version", "stop", "session", "doctor", "configure", "cache", "service"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
