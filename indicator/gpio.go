package indicator

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// GPIO implements Indicator using discrete GPIO LED pins: green for
// ready and success, yellow while processing, red for failures.
type GPIO struct {
	hw        govattu.Vattu
	greenPin  *uint8
	yellowPin *uint8
	redPin    *uint8
}

// NewGPIO creates a new GPIO-based indicator.
func NewGPIO(greenPin, yellowPin, redPin *uint8) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	g := &GPIO{
		hw:        hw,
		greenPin:  greenPin,
		yellowPin: yellowPin,
		redPin:    redPin,
	}

	for _, pin := range g.pins() {
		hw.PinMode(*pin, govattu.ALToutput)
		hw.PinClear(*pin)
	}

	return g, nil
}

// Idle implements Indicator.Idle.
func (g *GPIO) Idle() {
	g.allOff()
}

// Ready implements Indicator.Ready.
func (g *GPIO) Ready() {
	g.only(g.greenPin)
}

// Processing implements Indicator.Processing.
func (g *GPIO) Processing(string) {
	g.only(g.yellowPin)
}

// Success implements Indicator.Success.
func (g *GPIO) Success(*Status) {
	g.only(g.greenPin)
}

// Failure implements Indicator.Failure.
func (g *GPIO) Failure(*Status) {
	g.only(g.redPin)
}

// ConnectionLost implements Indicator.ConnectionLost.
func (g *GPIO) ConnectionLost() {
	g.allOff()
	// yellow and red together for connection lost
	if g.yellowPin != nil {
		g.hw.PinSet(*g.yellowPin)
	}
	if g.redPin != nil {
		g.hw.PinSet(*g.redPin)
	}
}

// Shutdown implements Indicator.Shutdown.
func (g *GPIO) Shutdown() {
	g.allOff()
}

// Release implements Indicator.Release.
func (g *GPIO) Release() error {
	g.allOff()
	return g.hw.Close()
}

func (g *GPIO) only(pin *uint8) {
	g.allOff()
	if pin != nil {
		g.hw.PinSet(*pin)
	}
}

func (g *GPIO) allOff() {
	for _, pin := range g.pins() {
		g.hw.PinClear(*pin)
	}
}

func (g *GPIO) pins() []*uint8 {
	var out []*uint8
	for _, pin := range []*uint8{g.greenPin, g.yellowPin, g.redPin} {
		if pin != nil {
			out = append(out, pin)
		}
	}
	return out
}
