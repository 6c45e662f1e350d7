package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/tarm/serial"

	"smartkiosk/swipe"
)

// Serial implements KeyReader for serial magstripe readers that send
// ASCII track data terminated by CR or LF.
type Serial struct {
	port    *serial.Port
	device  string
	pending []swipe.Key
}

// NewSerial opens a serial magstripe reader. baud defaults to 9600.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = 9600
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	return &Serial{port: port, device: device}, nil
}

// ReadKey implements KeyReader.ReadKey.
func (s *Serial) ReadKey(ctx context.Context) (swipe.Key, error) {
	buff := make([]byte, 64)
	for len(s.pending) == 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := s.port.Read(buff)
		if err != nil || n == 0 {
			continue // timeout, try again
		}
		s.pending = RuneKeys(buff[:n])
	}

	k := s.pending[0]
	s.pending = s.pending[1:]
	return k, nil
}

// Close implements KeyReader.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
