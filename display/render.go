// Package display draws kiosk status scenes and pushes them to a 16-bit
// Linux framebuffer.
package display

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// Config holds status screen settings.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"` // default /dev/fb0
	Font    string `yaml:"font"`
	Logo    string `yaml:"logo"` // PNG or JPEG drawn on the attract scene
}

const defaultFont = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// Renderer draws scenes into an in-memory RGBA image.
type Renderer struct {
	dc     *gg.Context
	img    *image.RGBA
	width  int
	height int
	font   string
	logo   *image.RGBA
}

// NewRenderer creates a renderer for a width x height screen. A logo
// that fails to load is logged and skipped.
func NewRenderer(width, height int, cfg Config) *Renderer {
	r := &Renderer{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
		font:   cfg.Font,
	}
	if r.font == "" {
		r.font = defaultFont
	}
	r.dc = gg.NewContextForRGBA(r.img)

	if cfg.Logo != "" {
		logo, err := loadAndScaleImage(cfg.Logo, (3*width)/4, height/3)
		if err != nil {
			log.Printf("Display: logo %s: %v", cfg.Logo, err)
		} else {
			r.logo = logo
		}
	}
	return r
}

// Image returns the rendered frame.
func (r *Renderer) Image() *image.RGBA {
	return r.img
}

// Draw renders s over the whole frame.
func (r *Renderer) Draw(s Scene) {
	r.dc.SetColor(s.Background)
	r.dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	r.dc.Fill()

	y := float64(r.height / 2)
	if s.Logo && r.logo != nil {
		b := r.logo.Bounds()
		r.dc.DrawImageAnchored(r.logo, r.width/2, r.height/4, 0.5, 0.5)
		y = float64(r.height/4+b.Dy()/2) + 60
	}

	r.setFontSize(64)
	if s.Detail != "" {
		y -= 35
	}
	r.dc.SetColor(s.Foreground)
	r.dc.DrawStringAnchored(s.Title, float64(r.width/2), y, 0.5, 0.5)

	if s.Detail != "" {
		r.setFontSize(36)
		r.dc.DrawStringAnchored(s.Detail, float64(r.width/2), y+70, 0.5, 0.5)
	}
}

func (r *Renderer) setFontSize(size int) {
	if err := r.dc.LoadFontFace(r.font, float64(size)); err != nil {
		log.Printf("Display: failed to load font: %v", err)
	}
}

// RGB565 packs the frame into dst as little-endian 16-bit pixels with
// stride bytes per row.
func (r *Renderer) RGB565(dst []byte, stride int) {
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			off := r.img.PixOffset(x, y)
			p := r.img.Pix[off : off+4 : off+4]
			pixel16 := uint16(p[0]>>3)<<11 | uint16(p[1]>>2)<<5 | uint16(p[2]>>3)
			fbIdx := y*stride + x*2
			if fbIdx+1 < len(dst) {
				binary.LittleEndian.PutUint16(dst[fbIdx:], pixel16)
			}
		}
	}
}

func loadAndScaleImage(filePath string, maxW, maxH int) (*image.RGBA, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	original, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return scaleToFit(original, maxW, maxH), nil
}

// scaleToFit shrinks img to fit within maxW x maxH, keeping its aspect
// ratio. Zero bounds are unconstrained. Images are never enlarged.
func scaleToFit(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if hs := float64(maxH) / float64(h); hs < scale {
			scale = hs
		}
	}
	if scale >= 1.0 {
		return imageToRGBA(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func imageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
