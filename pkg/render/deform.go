package render

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Deformation tuning constants. The phase length is fixed so the wave
// shape stays visually consistent no matter how many segments the LOD
// layer currently hands us; changing segment count changes sampling
// density, not the swim rhythm.
const (
	waveFrequency   = 6.0           // rad/s of the traveling wave
	wavePhaseLength = math.Pi * 1.5 // total phase spread tail to head
	waveRotation    = 0.35          // rotation magnitude relative to offset
	speedBoostMax   = 0.6           // intensity gain at full speed
	chompBulgeMax   = 0.4           // max horizontal stretch of head strips
	seamOverlap     = 0.15          // over-fetch fraction of strip width
)

// DeformOptions describes one deformed draw. X and Y are the top-left
// destination of the un-deformed sprite; Width and Height its
// destination size in pixels.
type DeformOptions struct {
	X, Y          float64
	Width, Height float64

	// Segments is the strip count from the LOD layer. Below 2 the
	// draw falls back to a single static blit.
	Segments int

	// Time is the animation clock in seconds.
	Time float64

	// Speed is the normalized movement speed; it boosts the wave
	// intensity by up to speedBoostMax at full speed.
	Speed float64

	// Amplitude is the peak vertical offset in destination pixels.
	// Zero means use a default proportional to Height.
	Amplitude float64

	// Intensity scales the whole wave; zero means 1.
	Intensity float64

	// ChompPhase is a transient bite envelope in [0, 1]; 0 is
	// inactive. At its peak, head-side strips widen by up to 40%.
	ChompPhase float64

	// FlipX mirrors the sprite horizontally (creature facing left).
	FlipX bool
}

// strip is the computed geometry for one vertical slice of the
// sprite, in normalized units. Kept separate from drawing so the wave
// math is testable without a graphics context.
type strip struct {
	srcX0, srcX1 float64 // source span in [0, 1], overlap included
	dstX         float64 // destination left edge in [0, 1], pre-overlap
	offsetY      float64 // vertical offset in destination pixels
	rotation     float64 // radians about the strip center
	widthScale   float64 // chomp bulge stretch, 1 = none
}

// waveSignal returns the raw sine for strip position t in [0, 1]
// (0 = tail). The phase offset is proportional to t over the fixed
// total phase length.
func waveSignal(t, clock float64) float64 {
	return math.Sin(clock*waveFrequency + t*wavePhaseLength)
}

// effectiveIntensity folds the speed boost into the base intensity.
func effectiveIntensity(intensity, speed float64) float64 {
	if intensity == 0 {
		intensity = 1
	}
	speed = clamp01(speed)
	return intensity * (1 + speedBoostMax*speed)
}

// chompScale returns the horizontal stretch for strip position t
// during a chomp. The bulge envelope follows sin(phase×π) so it grows
// and releases smoothly, and it is weighted toward the head.
func chompScale(t, phase float64) float64 {
	if phase <= 0 {
		return 1
	}
	envelope := math.Sin(clamp01(phase) * math.Pi)
	return 1 + chompBulgeMax*envelope*t
}

// computeStrips produces the per-strip geometry for the current
// frame. Strips are indexed tail to head; wave strength decreases
// linearly from 1 at the tail to 0 at the head. Source spans are
// over-fetched by seamOverlap of a strip width on shared edges so
// adjacent strips hide their seams.
func computeStrips(opts DeformOptions) []strip {
	n := opts.Segments
	strips := make([]strip, n)
	w := 1.0 / float64(n)
	intensity := effectiveIntensity(opts.Intensity, opts.Speed)
	amplitude := opts.Amplitude
	if amplitude == 0 {
		amplitude = opts.Height * 0.06
	}

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		strength := 1 - t
		sig := waveSignal(t, opts.Time)

		s := strip{
			srcX0:      float64(i) * w,
			srcX1:      float64(i+1) * w,
			dstX:       float64(i) * w,
			offsetY:    sig * amplitude * strength * intensity,
			rotation:   sig * waveRotation * amplitude * strength * intensity / math.Max(opts.Height, 1),
			widthScale: chompScale(t, opts.ChompPhase),
		}
		if i > 0 {
			s.srcX0 -= w * seamOverlap
		}
		if i < n-1 {
			s.srcX1 += w * seamOverlap
		}
		strips[i] = s
	}
	return strips
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Deformer draws a cached static sprite as a chain of overlapping
// vertical strips with a propagating sinusoidal wave, simulating a
// swimming body without per-creature skeletal data.
//
// The zero value is ready to use; a single Deformer can serve every
// creature in a session since it holds no per-entity state.
type Deformer struct {
	op ebiten.DrawImageOptions // reused across strips
}

// Draw renders sprite into dst according to opts. With fewer than two
// segments it degrades to DrawStatic, which is also the code path
// used by the static render mode.
func (d *Deformer) Draw(dst, sprite *ebiten.Image, opts DeformOptions) {
	if sprite == nil {
		return
	}
	if opts.Segments < 2 {
		d.DrawStatic(dst, sprite, opts)
		return
	}

	bounds := sprite.Bounds()
	srcW := float64(bounds.Dx())
	srcH := float64(bounds.Dy())
	if srcW == 0 || srcH == 0 {
		return
	}
	scaleX := opts.Width / srcW
	scaleY := opts.Height / srcH
	dstStripW := opts.Width / float64(opts.Segments)

	for _, s := range computeStrips(opts) {
		// Source rectangle, overlap included.
		sx0 := int(math.Floor(s.srcX0 * srcW))
		sx1 := int(math.Ceil(s.srcX1 * srcW))
		if sx0 < 0 {
			sx0 = 0
		}
		if sx1 > bounds.Dx() {
			sx1 = bounds.Dx()
		}
		rect := image.Rect(bounds.Min.X+sx0, bounds.Min.Y, bounds.Min.X+sx1, bounds.Max.Y)
		part := sprite.SubImage(rect).(*ebiten.Image)

		partW := float64(sx1 - sx0)
		partDstW := partW * scaleX * s.widthScale

		op := &d.op
		op.GeoM.Reset()
		op.GeoM.Scale(scaleX*s.widthScale, scaleY)
		if s.rotation != 0 {
			// Rotate about the strip center so the wave reads as a
			// bend, not a shear.
			op.GeoM.Translate(-partDstW/2, -opts.Height/2)
			op.GeoM.Rotate(s.rotation)
			op.GeoM.Translate(partDstW/2, opts.Height/2)
		}

		// Destination left edge, pulled back by the same overlap the
		// source was widened with, plus the bulge growing outward
		// from the strip center.
		dstX := opts.X + s.dstX*opts.Width - (s.dstX*srcW-float64(sx0))*scaleX
		dstX -= (s.widthScale - 1) * dstStripW / 2

		if opts.FlipX {
			// Mirror the strip and its position about the sprite's
			// vertical center line.
			op.GeoM.Scale(-1, 1)
			op.GeoM.Translate(partDstW, 0)
			dstX = 2*opts.X + opts.Width - dstX - partDstW
		}
		op.GeoM.Translate(dstX, opts.Y+s.offsetY)
		dst.DrawImage(part, op)
	}
}

// DrawStatic blits the sprite flat with no deformation. Shared by the
// static render mode and the below-two-segments fallback.
func (d *Deformer) DrawStatic(dst, sprite *ebiten.Image, opts DeformOptions) {
	if sprite == nil {
		return
	}
	bounds := sprite.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	op := &d.op
	op.GeoM.Reset()
	op.GeoM.Scale(opts.Width/float64(bounds.Dx()), opts.Height/float64(bounds.Dy()))
	if opts.FlipX {
		op.GeoM.Scale(-1, 1)
		op.GeoM.Translate(opts.Width, 0)
	}
	op.GeoM.Translate(opts.X, opts.Y)
	dst.DrawImage(sprite, op)
}
