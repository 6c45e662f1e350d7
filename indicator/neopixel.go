package indicator

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Neopixel command strings for the external neopixel tool.
const (
	neoConnectionLost = "@2 !150000 001010"
	neoAttract        = "@3 !250000 000040"
	neoReady          = "@3 !150000 400000"
	neoProcessing     = "@1 !20000 404000"
	neoSuccess        = "@1 !50000 8000"
	neoFailure        = "@2 !10000 ff"
	neoTerminated     = "@0 010101"
)

// Neopixel implements Indicator using an external neopixel tool via named pipe.
type Neopixel struct {
	mu        sync.Mutex
	pipe      *os.File
	connected bool
}

// NewNeopixel creates a new Neopixel indicator.
func NewNeopixel(pipePath string) (*Neopixel, error) {
	f, err := os.OpenFile(pipePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", pipePath, err)
	}
	return &Neopixel{pipe: f}, nil
}

// Idle implements Indicator.Idle.
func (n *Neopixel) Idle() {
	n.writeResting(neoAttract)
}

// Ready implements Indicator.Ready.
func (n *Neopixel) Ready() {
	n.writeResting(neoReady)
}

// Processing implements Indicator.Processing.
func (n *Neopixel) Processing(string) {
	n.write(neoProcessing)
}

// Success implements Indicator.Success.
func (n *Neopixel) Success(*Status) {
	n.write(neoSuccess)
}

// Failure implements Indicator.Failure.
func (n *Neopixel) Failure(*Status) {
	n.write(neoFailure)
}

// ConnectionLost implements Indicator.ConnectionLost.
func (n *Neopixel) ConnectionLost() {
	n.SetConnected(false)
	n.write(neoConnectionLost)
}

// Shutdown implements Indicator.Shutdown.
func (n *Neopixel) Shutdown() {
	n.write(neoTerminated)
}

// Release implements Indicator.Release.
func (n *Neopixel) Release() error {
	if n.pipe == nil {
		return nil
	}
	return n.pipe.Close()
}

// SetConnected lets resting states show normally. Until then they show
// the connection-lost pattern.
func (n *Neopixel) SetConnected(ok bool) {
	n.mu.Lock()
	n.connected = ok
	n.mu.Unlock()
}

func (n *Neopixel) writeResting(s string) {
	n.mu.Lock()
	ok := n.connected
	n.mu.Unlock()
	if !ok {
		s = neoConnectionLost
	}
	n.write(s)
}

func (n *Neopixel) write(s string) {
	if n.pipe == nil {
		return
	}
	if _, err := n.pipe.Write([]byte(s)); err != nil {
		log.Printf("Neopixel write: %v", err)
	}
}
