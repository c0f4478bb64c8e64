package injection

import (
	"context"

	"github.com/go-vgo/robotgo"

	"github.com/leonardotrapani/clipinject/internal/pasteerr"
)

type robotgoStrategy struct {
	keyTap func(key string, args ...interface{}) error
}

// NewRobotgoStrategy uses the robotgo synthetic input library.
func NewRobotgoStrategy() Strategy {
	return &robotgoStrategy{keyTap: robotgo.KeyTap}
}

func (s *robotgoStrategy) Name() string { return NameRobotgo }

func (s *robotgoStrategy) Paste(ctx context.Context) error {
	if err := s.keyTap("v", "ctrl"); err != nil {
		return pasteerr.New(pasteerr.EnvironmentUnavailable, "robotgo", err)
	}
	return nil
}
