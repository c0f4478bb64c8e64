package pasteerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := New(PermissionDenied, "uinput open", fs.ErrPermission)

	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected errors.Is(err, ErrPermissionDenied)")
	}
	if errors.Is(err, ErrConnectionFailed) {
		t.Errorf("kind mismatch should not match")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("wrapped cause should still match")
	}
}

func TestErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("restore focus: %w", New(NoPreviousFocus, "focus restore", nil))

	if !errors.Is(err, ErrNoPreviousFocus) {
		t.Errorf("expected wrapped error to match sentinel")
	}
	if KindOf(err) != NoPreviousFocus {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), NoPreviousFocus)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != Unknown {
		t.Errorf("KindOf() = %v, want %v", got, Unknown)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "op and cause",
			err:  New(FetchFailed, "fetch", errors.New("status 404")),
			want: "fetch: fetch failed: status 404",
		},
		{
			name: "kind only",
			err:  New(AllStrategiesExhausted, "", nil),
			want: "all strategies exhausted",
		},
		{
			name: "formatted cause",
			err:  Newf(SubprocessExitedWithError, "wl-copy", "exit %d: %s", 1, "no display"),
			want: "wl-copy: subprocess exited with error: exit 1: no display",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
