package indicator

import (
	"fmt"

	"smartkiosk/display"
)

// Indicator is the interface for status indicator implementations (LEDs, neopixels, screen).
type Indicator interface {
	// Idle shows the attract state while nobody is using the kiosk.
	Idle()

	// Ready shows that the card reader is armed.
	Ready()

	// Processing shows that a swipe is being checked with the backend.
	Processing(msg string)

	// Success shows a positive outcome. s may be nil.
	Success(s *Status)

	// Failure shows a negative outcome. s may be nil.
	Failure(s *Status)

	// ConnectionLost shows that the broker is unreachable.
	ConnectionLost()

	// Shutdown sets the indicator to shutdown state.
	Shutdown()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pins (nil = not configured)
	GreenPin  *uint8 `yaml:"green_pin"`
	YellowPin *uint8 `yaml:"yellow_pin"`
	RedPin    *uint8 `yaml:"red_pin"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`

	// Framebuffer status screen
	Screen display.Config `yaml:"screen"`
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if more than one is configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	if cfg.GreenPin != nil || cfg.YellowPin != nil || cfg.RedPin != nil {
		gpio, err := NewGPIO(cfg.GreenPin, cfg.YellowPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	if cfg.Screen.Enabled {
		if !display.ScreenSupported() {
			return nil, display.ErrScreenNotCompiled
		}
		scr, err := NewScreen(cfg.Screen)
		if err != nil {
			return nil, fmt.Errorf("open screen: %w", err)
		}
		indicators = append(indicators, scr)
	}

	return Combine(indicators...), nil
}

// Combine returns the single indicator, a Multi over several, or Noop.
func Combine(indicators ...Indicator) Indicator {
	switch len(indicators) {
	case 0:
		return &Noop{}
	case 1:
		return indicators[0]
	}
	return &Multi{indicators: indicators}
}
