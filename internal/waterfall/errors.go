package waterfall

import (
	"errors"
	"fmt"
)

var (
	ErrFrameSize      = errors.New("spectrum frame size does not match bin count")
	ErrNotStarted     = errors.New("driver not started")
	ErrAlreadyStarted = errors.New("driver already started")
	ErrClosed         = errors.New("waterfall closed")
)

// ConfigError reports an invalid configuration value. It is only returned
// while setting up, never from Tick.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
