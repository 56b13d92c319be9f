package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestNormalizedTolerance(t *testing.T) {
	// Full 0-255 range maps onto the unit RGB cube: 255 -> 1.0, so
	// the maximum comparable distance √3 corresponds to 255√3 on
	// the CPU scale.
	if got := NormalizedTolerance(255); got != 1.0 {
		t.Errorf("NormalizedTolerance(255) = %v, want 1.0", got)
	}
	if got := NormalizedTolerance(51); got != 0.2 {
		t.Errorf("NormalizedTolerance(51) = %v, want 0.2", got)
	}
}

// premultiply converts an NRGBA pixel to premultiplied RGBA bytes,
// matching what ebiten.Image.ReadPixels returns.
func premultiply(c color.NRGBA) [4]uint8 {
	a := uint16(c.A)
	return [4]uint8{
		uint8(uint16(c.R) * a / 255),
		uint8(uint16(c.G) * a / 255),
		uint8(uint16(c.B) * a / 255),
		c.A,
	}
}

// TestCPUAndGPUPathsAgree renders the same test card through both
// chroma-key implementations and checks they agree within
// quantization error. Skipped when no graphics context is available.
func TestCPUAndGPUPathsAgree(t *testing.T) {
	p := NewChromaProcessor()
	if !p.Ready() {
		t.Skip("no graphics context; GPU path unavailable")
	}

	key := color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	pixels := []color.NRGBA{
		key,                             // exact background
		{R: 255, G: 40, B: 255, A: 255}, // inside tolerance
		{R: 255, G: 60, B: 255, A: 255}, // feather band
		{R: 200, G: 50, B: 200, A: 255}, // outside feather
		{R: 10, G: 200, B: 30, A: 255},  // sprite body
		{R: 0, G: 0, B: 0, A: 255},      // black
	}

	src := image.NewNRGBA(image.Rect(0, 0, len(pixels), 1))
	for i, c := range pixels {
		src.SetNRGBA(i, 0, c)
	}

	const tolerance = 50.0
	cpu := RemoveColor(src, key, tolerance)

	p.SetBackground(key)
	p.SetTolerance(tolerance)
	gpu := p.Process(ebiten.NewImageFromImage(src))

	got := make([]uint8, len(pixels)*4)
	gpu.ReadPixels(got)

	for i := range pixels {
		want := premultiply(cpu.NRGBAAt(i, 0))
		for ch := 0; ch < 4; ch++ {
			if !agreesWithin(got[i*4+ch], want[ch]) {
				t.Errorf("pixel %d channel %d: gpu=%d cpu=%d", i, ch, got[i*4+ch], want[ch])
			}
		}
	}
}

// TestProcessPassThrough checks the degraded path returns the source
// untouched when no shader is available.
func TestProcessPassThrough(t *testing.T) {
	p := &ChromaProcessor{tolerance: DefaultTolerance}
	src := ebiten.NewImage(4, 4)
	if out := p.Process(src); out != src {
		t.Error("pass-through processor should return the source image")
	}
	if p.Process(nil) != nil {
		t.Error("nil source should stay nil")
	}
}

// TestProcessReusesOffscreen checks the offscreen target is reused
// for same-size frames and replaced on a size change.
func TestProcessReusesOffscreen(t *testing.T) {
	p := NewChromaProcessor()
	if !p.Ready() {
		t.Skip("no graphics context; GPU path unavailable")
	}

	a := p.Process(ebiten.NewImage(8, 8))
	b := p.Process(ebiten.NewImage(8, 8))
	if a != b {
		t.Error("offscreen not reused for same-size frames")
	}
	c := p.Process(ebiten.NewImage(16, 8))
	if got := c.Bounds(); got.Dx() != 16 || got.Dy() != 8 {
		t.Errorf("offscreen size = %v after resize", got)
	}
}
