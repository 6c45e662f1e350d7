// Package button watches the kiosk's physical push buttons.
package button

import (
	"sync"
	"time"
)

// Config holds the GPIO wiring of the buttons. A zero pin is not wired.
type Config struct {
	Chip    string `yaml:"chip"`
	WakePin int    `yaml:"wake_pin"` // wakes the kiosk from the attract screen
	LinkPin int    `yaml:"link_pin"` // opens card-link mode for the signed-in user
}

// Handlers holds callback functions for button presses.
type Handlers struct {
	OnWake func()
	OnLink func()
}

// Holdoff is the minimum spacing between two accepted presses of the
// same button. Presses inside it are treated as bounce or impatience.
const Holdoff = 500 * time.Millisecond

// gate accepts a press when the previous accepted one is at least
// Holdoff old.
type gate struct {
	mu   sync.Mutex
	last time.Time
}

func (g *gate) accept(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() && now.Sub(g.last) < Holdoff {
		return false
	}
	g.last = now
	return true
}
