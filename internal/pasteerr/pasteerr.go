// Package pasteerr defines the error kinds shared by the focus, injection,
// publish and fetch packages.
package pasteerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	EnvironmentUnavailable
	ConnectionFailed
	ProtocolUnsupported
	PermissionDenied
	SubprocessSpawnFailed
	SubprocessExitedWithError
	NoPreviousFocus
	AllStrategiesExhausted
	FetchFailed
	PublishFailed
)

var kindNames = map[Kind]string{
	Unknown:                   "unknown",
	EnvironmentUnavailable:    "environment unavailable",
	ConnectionFailed:          "connection failed",
	ProtocolUnsupported:       "protocol unsupported",
	PermissionDenied:          "permission denied",
	SubprocessSpawnFailed:     "subprocess spawn failed",
	SubprocessExitedWithError: "subprocess exited with error",
	NoPreviousFocus:           "no previous focus",
	AllStrategiesExhausted:    "all strategies exhausted",
	FetchFailed:               "fetch failed",
	PublishFailed:             "publish failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrEnvironmentUnavailable    = &Error{Kind: EnvironmentUnavailable}
	ErrConnectionFailed          = &Error{Kind: ConnectionFailed}
	ErrProtocolUnsupported       = &Error{Kind: ProtocolUnsupported}
	ErrPermissionDenied          = &Error{Kind: PermissionDenied}
	ErrSubprocessSpawnFailed     = &Error{Kind: SubprocessSpawnFailed}
	ErrSubprocessExitedWithError = &Error{Kind: SubprocessExitedWithError}
	ErrNoPreviousFocus           = &Error{Kind: NoPreviousFocus}
	ErrAllStrategiesExhausted    = &Error{Kind: AllStrategiesExhausted}
	ErrFetchFailed               = &Error{Kind: FetchFailed}
	ErrPublishFailed             = &Error{Kind: PublishFailed}
)

// Error is a classified failure of a single OS interop step.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches a bare sentinel (no Op, no Err) by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	if t.Op == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Newf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
