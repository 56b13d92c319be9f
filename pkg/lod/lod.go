// Package lod maps on-screen pixel size to rendering fidelity: how
// many deformation segments to use, which sprite resolution variant
// to pick, and which render mode to drive a creature with. Every
// function here is pure and stateless; callers recompute the answers
// each frame from entitySize × cameraZoom.
package lod

import "math"

// Screen-size thresholds in pixels. The windows between them define
// the smoothstep interpolation ranges, so segment count (and with it
// the apparent detail) changes continuously rather than popping.
const (
	// StaticThreshold is the screen size below which a creature is
	// drawn as a flat static sprite with no animation.
	StaticThreshold = 24.0

	// FullDetailThreshold is the screen size at which the deformation
	// renderer uses its maximum segment count.
	FullDetailThreshold = 96.0

	// VideoDetailThreshold is the screen size above which gameplay
	// rendering prefers pre-rendered clips when the creature has them.
	VideoDetailThreshold = 180.0
)

// Segment count bounds for the deformation renderer.
const (
	MinSegments = 3
	MaxSegments = 12

	// PlayerSegmentMultiplier gives the player-controlled creature
	// extra segments for visual priority over AI creatures.
	PlayerSegmentMultiplier = 1.5
)

// Resolution tier breakpoints in screen pixels.
const (
	HighTierMinSize   = 100.0
	MediumTierMinSize = 40.0
)

// Tier selects among pre-generated sprite resolution variants, a
// mipmap-like policy: small on-screen creatures use low-resolution
// art to avoid aliasing and wasted bandwidth, large ones use
// high-resolution art to avoid visible blur.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// RenderContext tags what kind of surface the creature is being drawn
// into. Non-gameplay contexts always prefer the highest fidelity the
// creature's assets allow.
type RenderContext string

const (
	ContextGame      RenderContext = "game"
	ContextEdit      RenderContext = "edit"
	ContextSelect    RenderContext = "select"
	ContextCinematic RenderContext = "cinematic"
)

// Mode is the per-frame render mode decision.
type Mode string

const (
	ModeVideo       Mode = "video"
	ModeFrames      Mode = "frames"
	ModeDeformation Mode = "deformation"
	ModeStatic      Mode = "static"
)

// smoothstep is the classic Hermite interpolation clamped to [0, 1].
func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// SegmentCount returns the number of deformation segments to use for
// a creature occupying screenSize pixels. Below StaticThreshold it
// returns 0, meaning the caller should blit the static sprite.
// Between the static and full-detail thresholds the count follows a
// smoothstep curve from MinSegments to MaxSegments, so a continuous
// size sweep never jumps more than one step.
func SegmentCount(screenSize float64, player bool) int {
	if screenSize < StaticThreshold {
		return 0
	}
	t := smoothstep(StaticThreshold, FullDetailThreshold, screenSize)
	count := MinSegments + t*float64(MaxSegments-MinSegments)
	if player {
		count *= PlayerSegmentMultiplier
	}
	return int(math.Round(count))
}

// SpriteTier returns the resolution variant to use for a creature
// occupying screenSize pixels.
func SpriteTier(screenSize float64) Tier {
	switch {
	case screenSize >= HighTierMinSize:
		return TierHigh
	case screenSize >= MediumTierMinSize:
		return TierMedium
	default:
		return TierLow
	}
}

// TierScale returns the downscale factor applied when a creature has
// no pre-generated variant for the tier and the base sprite has to be
// resized instead.
func TierScale(t Tier) float64 {
	switch t {
	case TierMedium:
		return 0.5
	case TierLow:
		return 0.25
	default:
		return 1.0
	}
}

// ClipMode decides how a creature is rendered this frame.
//
// Non-gameplay contexts (edit, select, cinematic) force video when
// clips exist, regardless of size. During gameplay the decision walks
// down the fidelity ladder: video above VideoDetailThreshold when
// clips exist, extracted frames above FullDetailThreshold when those
// exist, procedural deformation down to StaticThreshold, and a flat
// static blit below it.
func ClipMode(screenSize float64, ctx RenderContext, hasClips, hasFrames bool) Mode {
	if ctx != ContextGame && hasClips {
		return ModeVideo
	}
	switch {
	case hasClips && screenSize >= VideoDetailThreshold:
		return ModeVideo
	case hasFrames && screenSize >= FullDetailThreshold:
		return ModeFrames
	case screenSize >= StaticThreshold:
		return ModeDeformation
	default:
		return ModeStatic
	}
}
