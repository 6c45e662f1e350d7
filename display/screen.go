//go:build screen

package display

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/d21d3q/framebuffer"
)

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return true
}

// Screen shows scenes on a 16 bpp framebuffer.
type Screen struct {
	mu              sync.Mutex
	renderer        *Renderer
	pixBuffer       []byte
	backBuffer      []byte
	lineLengthBytes int
	initialized     bool
}

// New opens the framebuffer named in cfg.
func New(cfg Config) (*Screen, error) {
	device := cfg.Device
	if device == "" {
		device = "/dev/fb0"
	}

	fbLowLevel, err := framebuffer.OpenFrameBuffer(device, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer: %w", err)
	}

	varInfo, err := fbLowLevel.VarScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("get variable screen info: %w", err)
	}
	fixedInfo, err := fbLowLevel.FixScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("get fixed screen info: %w", err)
	}
	if varInfo.BitsPerPixel != 16 {
		return nil, fmt.Errorf("framebuffer %s: %d bpp unsupported, need 16", device, varInfo.BitsPerPixel)
	}

	pix, err := fbLowLevel.Pixels()
	if err != nil {
		return nil, fmt.Errorf("get pixel data: %w", err)
	}

	width, height := int(varInfo.XRes), int(varInfo.YRes)
	s := &Screen{
		renderer:        NewRenderer(width, height, cfg),
		pixBuffer:       pix,
		lineLengthBytes: int(fixedInfo.LineLength),
		initialized:     true,
	}
	s.backBuffer = make([]byte, height*s.lineLengthBytes)

	log.Printf("Display: framebuffer %dx%d, %d bpp, stride %d bytes",
		width, height, varInfo.BitsPerPixel, s.lineLengthBytes)

	s.Show(Blank())
	return s, nil
}

// Show draws sc and flushes it to the framebuffer.
func (s *Screen) Show(sc Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.renderer.Draw(sc)
	s.renderer.RGB565(s.backBuffer, s.lineLengthBytes)
	copy(s.pixBuffer, s.backBuffer)
}

// Release blanks the screen.
func (s *Screen) Release() error {
	s.Show(Blank())
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()
	return nil
}
