// Package render implements the pixel-level rendering paths for
// creature sprites: chroma-key background removal (a CPU pixel loop
// for still images and a GPU shader for live clip frames, which must
// agree), and the segmented deformation renderer that fakes swimming
// motion from a single static sprite.
package render

import (
	"image"
	"image/color"
	"math"
)

// DefaultTolerance is the default chroma-key tolerance on the 0-255
// Euclidean RGB distance scale.
const DefaultTolerance = 50.0

// FeatherFactor extends the hard cutoff into a soft band: pixels
// between tolerance and FeatherFactor×tolerance get linearly
// interpolated alpha instead of a hard edge.
const FeatherFactor = 1.5

// EstimateBackground samples the four corner pixels of src and
// averages them. Creature art is generated centered against a solid
// background (commonly magenta), so the corners are a reliable
// estimate of the key color.
func EstimateBackground(src image.Image) color.NRGBA {
	b := src.Bounds()
	corners := []image.Point{
		{b.Min.X, b.Min.Y},
		{b.Max.X - 1, b.Min.Y},
		{b.Min.X, b.Max.Y - 1},
		{b.Max.X - 1, b.Max.Y - 1},
	}
	var r, g, bl int
	for _, p := range corners {
		c := color.NRGBAModel.Convert(src.At(p.X, p.Y)).(color.NRGBA)
		r += int(c.R)
		g += int(c.G)
		bl += int(c.B)
	}
	return color.NRGBA{
		R: uint8(r / 4),
		G: uint8(g / 4),
		B: uint8(bl / 4),
		A: 0xff,
	}
}

// RemoveBackground strips a solid background color from src and
// returns a new transparent raster. src is never mutated and the
// result is deterministic for a fixed tolerance.
//
// For every pixel the Euclidean RGB distance d to the estimated
// background color decides the output alpha:
//
//	d <  tolerance                    -> alpha 0
//	d in [tolerance, 1.5×tolerance)   -> alpha scaled linearly
//	d >= 1.5×tolerance                -> alpha unchanged
//
// The feather band avoids the hard fringing a binary cutoff produces
// around anti-aliased sprite edges.
func RemoveBackground(src image.Image, tolerance float64) *image.NRGBA {
	return RemoveColor(src, EstimateBackground(src), tolerance)
}

// RemoveColor is RemoveBackground with an explicitly chosen key color
// instead of the corner estimate.
func RemoveColor(src image.Image, key color.NRGBA, tolerance float64) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	feather := tolerance * FeatherFactor

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			d := rgbDistance(c, key)
			switch {
			case d < tolerance:
				c.A = 0
			case d < feather:
				f := (d - tolerance) / (feather - tolerance)
				c.A = uint8(math.Round(float64(c.A) * f))
			}
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}

// rgbDistance returns the Euclidean distance between two colors in
// 0-255 RGB space, ignoring alpha. Maximum is 255×√3.
func rgbDistance(a, b color.NRGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
