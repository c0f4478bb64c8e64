//go:build !linux

package injection

import (
	"context"
	"errors"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

const DefaultUinputPath = "/dev/uinput"

type uinputStrategy struct{}

func NewUinputStrategy(string) Strategy { return uinputStrategy{} }

func (uinputStrategy) Name() string { return NameUinput }

func (uinputStrategy) Paste(context.Context) error {
	return pasteerr.New(pasteerr.EnvironmentUnavailable, "uinput", errors.New("uinput is linux only"))
}
