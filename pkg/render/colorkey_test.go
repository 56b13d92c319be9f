package render

import (
	"image"
	"image/color"
	"testing"
)

var magenta = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// keyedImage builds a small image with a magenta background and the
// given pixel set at (2, 2).
func keyedImage(center color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetNRGBA(x, y, magenta)
		}
	}
	img.SetNRGBA(2, 2, center)
	return img
}

func TestEstimateBackground(t *testing.T) {
	img := keyedImage(color.NRGBA{R: 10, G: 200, B: 30, A: 255})
	got := EstimateBackground(img)
	if got.R != 255 || got.G != 0 || got.B != 255 {
		t.Errorf("background = %+v, want magenta", got)
	}
}

// TestRemoveBackgroundBands checks the three alpha bands against a
// magenta background (255,0,255) with tolerance 50.
func TestRemoveBackgroundBands(t *testing.T) {
	cases := []struct {
		name  string
		pixel color.NRGBA
		check func(a uint8) bool
	}{
		// Exact background: distance 0 < 50, fully transparent.
		{"background", magenta, func(a uint8) bool { return a == 0 }},
		// Distance ≈ 91.2 >= 75 (1.5×50): alpha untouched.
		{"far", color.NRGBA{R: 200, G: 50, B: 200, A: 255}, func(a uint8) bool { return a == 255 }},
		// Distance 60 is inside [50, 75): feathered, strictly
		// between transparent and opaque.
		{"feathered", color.NRGBA{R: 255, G: 60, B: 255, A: 255}, func(a uint8) bool { return a > 0 && a < 255 }},
		// Distance 40 < 50: keyed out even though not exact.
		{"near", color.NRGBA{R: 255, G: 40, B: 255, A: 255}, func(a uint8) bool { return a == 0 }},
	}
	for _, c := range cases {
		out := RemoveBackground(keyedImage(c.pixel), 50)
		a := out.NRGBAAt(2, 2).A
		if !c.check(a) {
			t.Errorf("%s: alpha = %d", c.name, a)
		}
	}
}

// TestFeatherMonotonic checks alpha is non-decreasing in distance
// across the feather band.
func TestFeatherMonotonic(t *testing.T) {
	prev := uint8(0)
	for g := 50; g <= 80; g++ {
		pixel := color.NRGBA{R: 255, G: uint8(g), B: 255, A: 255}
		out := RemoveColor(keyedImage(pixel), magenta, 50)
		a := out.NRGBAAt(2, 2).A
		if a < prev {
			t.Fatalf("alpha decreased at distance %d: %d -> %d", g, prev, a)
		}
		prev = a
	}
}

// TestRemoveBackgroundPure ensures the input image is not mutated.
func TestRemoveBackgroundPure(t *testing.T) {
	img := keyedImage(color.NRGBA{R: 10, G: 200, B: 30, A: 255})
	before := *img
	beforePix := append([]uint8(nil), img.Pix...)

	RemoveBackground(img, 50)

	if img.Rect != before.Rect {
		t.Fatal("input bounds changed")
	}
	for i := range beforePix {
		if img.Pix[i] != beforePix[i] {
			t.Fatalf("input pixel data mutated at byte %d", i)
		}
	}
}

// TestRemoveColorRespectsSourceAlpha checks feathering scales the
// pixel's own alpha rather than replacing it.
func TestRemoveColorRespectsSourceAlpha(t *testing.T) {
	// Distance 60 with tolerance 50: factor (60-50)/25 = 0.4.
	pixel := color.NRGBA{R: 255, G: 60, B: 255, A: 100}
	out := RemoveColor(keyedImage(pixel), magenta, 50)
	if a := out.NRGBAAt(2, 2).A; a != 40 {
		t.Errorf("feathered alpha = %d, want 40", a)
	}
}
