//go:build linux

package button

import (
	"fmt"
	"log"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Buttons owns the requested button lines.
type Buttons struct {
	lines []*gpiocdev.Line
}

// New requests the configured lines. Returns nil if no pin is wired.
func New(cfg Config, handlers Handlers) (*Buttons, error) {
	if cfg.WakePin == 0 && cfg.LinkPin == 0 {
		return nil, nil
	}
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}

	b := &Buttons{}
	wire := []struct {
		name string
		pin  int
		fn   func()
	}{
		{"wake", cfg.WakePin, handlers.OnWake},
		{"link", cfg.LinkPin, handlers.OnLink},
	}

	for _, w := range wire {
		if w.pin == 0 {
			continue
		}
		line, err := gpiocdev.RequestLine(cfg.Chip, w.pin,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithDebounce(2*time.Millisecond),
			gpiocdev.WithEventHandler(pressHandler(w.name, w.fn)))
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("request %s button line %d: %w", w.name, w.pin, err)
		}
		b.lines = append(b.lines, line)
	}

	return b, nil
}

func pressHandler(name string, fn func()) func(gpiocdev.LineEvent) {
	g := &gate{}
	return func(evt gpiocdev.LineEvent) {
		if evt.Type != gpiocdev.LineEventFallingEdge || fn == nil {
			return
		}
		if !g.accept(time.Now()) {
			return
		}
		log.Printf("Button %s pressed", name)
		fn()
	}
}

// Release releases GPIO resources.
func (b *Buttons) Release() error {
	if b == nil {
		return nil
	}
	for _, l := range b.lines {
		l.Close()
	}
	b.lines = nil
	return nil
}
