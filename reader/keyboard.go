package reader

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/kenshaw/evdev"

	"smartkiosk/swipe"
)

// Keyboard implements KeyReader for USB keyboard-wedge magstripe readers
// exposed as Linux input devices.
type Keyboard struct {
	device *evdev.Evdev
	keymap Keymap

	once   sync.Once
	events <-chan *evdev.EventEnvelope
	cancel context.CancelFunc
}

// NewKeyboard opens the input device at path.
func NewKeyboard(device string) (*Keyboard, error) {
	dev, err := evdev.OpenFile(device)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", device, err)
	}

	log.Printf("Opened keyboard device: %s", dev.Name())
	log.Printf("Vendor: 0x%04x, Product: 0x%04x", dev.ID().Vendor, dev.ID().Product)

	return &Keyboard{device: dev}, nil
}

// poll starts the device event stream once. It outlives individual
// ReadKey calls so no events are lost between them.
func (k *Keyboard) poll() <-chan *evdev.EventEnvelope {
	k.once.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		k.cancel = cancel
		k.events = k.device.Poll(ctx)
	})
	return k.events
}

// ReadKey implements KeyReader.ReadKey.
func (k *Keyboard) ReadKey(ctx context.Context) (swipe.Key, error) {
	ch := k.poll()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event := <-ch:
			if event == nil {
				return "", fmt.Errorf("keyboard device closed")
			}

			switch event.Type.(type) {
			case evdev.KeyType:
				switch event.Value {
				case 0:
					k.keymap.Release(event.Code)
				case 1:
					if key, ok := k.keymap.Press(event.Code); ok {
						return key, nil
					}
				}
			}
		}
	}
}

// Close implements KeyReader.Close.
func (k *Keyboard) Close() error {
	if k.cancel != nil {
		k.cancel()
	}
	if k.device == nil {
		return nil
	}
	return k.device.Close()
}
