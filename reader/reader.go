package reader

import (
	"context"
	"fmt"

	"smartkiosk/swipe"
)

// KeyReader is the interface for all card reader front ends. Readers
// deliver key symbols one at a time; assembling them into a swipe is
// the capture session's job.
type KeyReader interface {
	// ReadKey blocks until a key is pressed or ctx is cancelled.
	ReadKey(ctx context.Context) (swipe.Key, error)

	// Close releases any resources held by the reader.
	Close() error
}

// Config holds common configuration for reader implementations.
type Config struct {
	Type   string `yaml:"type"`   // "keyboard", "serial", "none"
	Device string `yaml:"device"` // e.g., "/dev/input/event0", "/dev/ttyUSB0"
	Baud   int    `yaml:"baud"`   // baud rate for serial devices
}

// New creates a KeyReader based on the provided configuration.
func New(cfg Config) (KeyReader, error) {
	switch cfg.Type {
	case "keyboard", "evdev":
		return NewKeyboard(cfg.Device)
	case "serial":
		return NewSerial(cfg.Device, cfg.Baud)
	case "", "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}
}

// Noop never produces a key. Keys arrive only through the control API
// or the event pipe.
type Noop struct{}

func (Noop) ReadKey(ctx context.Context) (swipe.Key, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (Noop) Close() error { return nil }
