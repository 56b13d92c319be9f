package render

import (
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// chromaShaderSrc is the GPU port of RemoveColor, used on live clip
// frames where a per-pixel CPU loop would blow the frame budget. The
// algorithm must stay in lockstep with the CPU path: alpha 0 below
// the tolerance, linear feather up to 1.5× tolerance, untouched
// beyond. Colors and tolerance arrive normalized to 0-1 per channel,
// so distances live on the 0..√3 RGB-cube diagonal instead of the
// CPU's 0..255√3.
//
// Shader colors are premultiplied alpha, so the feather scales the
// whole texel rather than just the alpha channel.
const chromaShaderSrc = `//kage:unit pixels

package main

var KeyColor vec3
var Tolerance float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0At(srcPos)
	d := distance(c.rgb, KeyColor)
	if d < Tolerance {
		return vec4(0)
	}
	feather := Tolerance * 1.5
	if d < feather {
		return c * ((d - Tolerance) / (feather - Tolerance))
	}
	return c
}
`

// NormalizedTolerance converts a tolerance on the 0-255 CPU distance
// scale to the shader's normalized scale. The CPU compares distances
// of at most 255×√3 against t; the shader compares distances of at
// most √3 against t/255, so both paths cut at the same relative
// distance and agree up to 8-bit quantization.
func NormalizedTolerance(tolerance float64) float64 {
	return tolerance / 255.0
}

// ChromaProcessor runs the GPU chroma-key path. One processor is
// shared per session; the offscreen target is reused across frames to
// avoid per-frame allocations.
//
// When the shader cannot be compiled (no graphics context, e.g. in a
// headless environment), Process degrades to returning the source
// unprocessed instead of failing the frame.
type ChromaProcessor struct {
	shader    *ebiten.Shader
	offscreen *ebiten.Image
	key       color.NRGBA
	tolerance float64
}

// NewChromaProcessor compiles the chroma-key shader with the default
// key color (magenta) and tolerance. Compilation failure is logged
// and leaves the processor in pass-through mode.
func NewChromaProcessor() *ChromaProcessor {
	p := &ChromaProcessor{
		key:       color.NRGBA{R: 255, G: 0, B: 255, A: 255},
		tolerance: DefaultTolerance,
	}
	shader, err := ebiten.NewShader([]byte(chromaShaderSrc))
	if err != nil {
		log.Printf("[ChromaProcessor] shader compile failed, falling back to pass-through: %v", err)
		return p
	}
	p.shader = shader
	return p
}

// Ready reports whether the GPU path is available. When false,
// Process passes frames through unprocessed.
func (p *ChromaProcessor) Ready() bool {
	return p.shader != nil
}

// SetBackground sets the key color the shader removes. Unlike the CPU
// path there is no corner sampling here; clip frames change every
// frame, so the caller estimates the key once (typically from the
// first frame, via EstimateBackground) and pins it.
func (p *ChromaProcessor) SetBackground(key color.NRGBA) {
	p.key = key
}

// SetTolerance sets the tolerance on the 0-255 scale used by the CPU
// path; the normalization to shader scale happens internally.
func (p *ChromaProcessor) SetTolerance(tolerance float64) {
	p.tolerance = tolerance
}

// Tolerance returns the current tolerance on the 0-255 scale.
func (p *ChromaProcessor) Tolerance() float64 {
	return p.tolerance
}

// Process runs the chroma-key shader over src and returns the
// processed surface. The returned image is owned by the processor and
// valid until the next Process call; callers draw it immediately.
// Returns src unchanged when the shader is unavailable.
func (p *ChromaProcessor) Process(src *ebiten.Image) *ebiten.Image {
	if src == nil {
		return nil
	}
	if p.shader == nil {
		return src
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if p.offscreen == nil || p.offscreen.Bounds().Dx() != w || p.offscreen.Bounds().Dy() != h {
		if p.offscreen != nil {
			p.offscreen.Deallocate()
		}
		p.offscreen = ebiten.NewImage(w, h)
	}
	p.offscreen.Clear()

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{
		"KeyColor": []float32{
			float32(p.key.R) / 255,
			float32(p.key.G) / 255,
			float32(p.key.B) / 255,
		},
		"Tolerance": float32(NormalizedTolerance(p.tolerance)),
	}
	p.offscreen.DrawRectShader(w, h, p.shader, op)
	return p.offscreen
}

// maxQuantizationError is the per-channel slack allowed when the CPU
// and GPU paths are compared, covering 8-bit rounding plus the
// premultiplied round trip.
const maxQuantizationError = 3

// agreesWithin reports whether two 8-bit channel values agree within
// quantization error. Used by tests comparing the two paths.
func agreesWithin(a, b uint8) bool {
	return math.Abs(float64(a)-float64(b)) <= maxQuantizationError
}
