//go:build !linux

package button

import "errors"

var ErrNotSupported = errors.New("gpio buttons not supported on this platform")

// Buttons is a stub for non-linux platforms.
type Buttons struct{}

// New returns an error on non-linux platforms.
func New(cfg Config, handlers Handlers) (*Buttons, error) {
	if cfg.WakePin == 0 && cfg.LinkPin == 0 {
		return nil, nil
	}
	return nil, ErrNotSupported
}

func (b *Buttons) Release() error { return nil }
