package display

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawFillsBackground(t *testing.T) {
	r := NewRenderer(64, 32, Config{Font: "/nonexistent.ttf"})
	r.Draw(Failure("", ""))

	got := r.Image().RGBAAt(0, 0)
	if got != red {
		t.Errorf("Expected red corner, got %v", got)
	}
}

func TestRGB565(t *testing.T) {
	r := NewRenderer(2, 1, Config{Font: "/nonexistent.ttf"})
	r.Image().SetRGBA(0, 0, color.RGBA{0xff, 0, 0, 0xff})
	r.Image().SetRGBA(1, 0, color.RGBA{0, 0xff, 0xff, 0xff})

	dst := make([]byte, 8) // stride wider than the row
	r.RGB565(dst, 8)

	if dst[0] != 0x00 || dst[1] != 0xf8 {
		t.Errorf("Red = %02x%02x, want f800", dst[1], dst[0])
	}
	if dst[2] != 0xff || dst[3] != 0x07 {
		t.Errorf("Cyan = %02x%02x, want 07ff", dst[3], dst[2])
	}
	if dst[4] != 0 || dst[7] != 0 {
		t.Error("Padding overwritten")
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))

	got := scaleToFit(src, 100, 0)
	if b := got.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("Width bound: got %v", b)
	}

	got = scaleToFit(src, 300, 30)
	if b := got.Bounds(); b.Dx() != 60 || b.Dy() != 30 {
		t.Errorf("Height bound: got %v", b)
	}

	if got := scaleToFit(src, 800, 800); got != src {
		t.Error("Expected small image returned as is")
	}
}

func TestScenes(t *testing.T) {
	if Processing("").Title != "Verifying ID..." {
		t.Error("Unexpected default processing title")
	}
	if !Attract().Logo {
		t.Error("Attract should carry the logo")
	}
	if s := Success("Welcome, Sam!", ""); s.Background != bright {
		t.Errorf("Unexpected background %v", s.Background)
	}
}
