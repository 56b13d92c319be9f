package lod

import "testing"

// TestSegmentCountMonotonic sweeps screen sizes and checks the count
// never decreases and never jumps by more than one step.
func TestSegmentCountMonotonic(t *testing.T) {
	prev := 0
	for size := 0.0; size <= 300.0; size += 0.5 {
		got := SegmentCount(size, false)
		if got < prev {
			t.Fatalf("segment count decreased at size %.1f: %d -> %d", size, prev, got)
		}
		// The only discontinuity allowed is the static cutoff
		// jumping from 0 to MinSegments.
		if prev != 0 && got-prev > 1 {
			t.Fatalf("segment count jumped at size %.1f: %d -> %d", size, prev, got)
		}
		prev = got
	}
}

func TestSegmentCountBounds(t *testing.T) {
	if got := SegmentCount(StaticThreshold-1, false); got != 0 {
		t.Errorf("below static threshold: got %d, want 0", got)
	}
	if got := SegmentCount(StaticThreshold, false); got != MinSegments {
		t.Errorf("at static threshold: got %d, want %d", got, MinSegments)
	}
	if got := SegmentCount(FullDetailThreshold, false); got != MaxSegments {
		t.Errorf("at full detail: got %d, want %d", got, MaxSegments)
	}
	if got := SegmentCount(10000, false); got != MaxSegments {
		t.Errorf("huge size: got %d, want %d", got, MaxSegments)
	}
}

func TestPlayerSegmentMultiplier(t *testing.T) {
	ai := SegmentCount(FullDetailThreshold, false)
	player := SegmentCount(FullDetailThreshold, true)
	if player <= ai {
		t.Errorf("player segments %d not above AI segments %d", player, ai)
	}
}

func TestSpriteTier(t *testing.T) {
	cases := []struct {
		size float64
		want Tier
	}{
		{150, TierHigh},
		{100, TierHigh},
		{99.9, TierMedium},
		{40, TierMedium},
		{39.9, TierLow},
		{0, TierLow},
	}
	for _, c := range cases {
		if got := SpriteTier(c.size); got != c.want {
			t.Errorf("SpriteTier(%.1f) = %q, want %q", c.size, got, c.want)
		}
	}
}

func TestClipMode(t *testing.T) {
	cases := []struct {
		name      string
		size      float64
		ctx       RenderContext
		clips     bool
		frames    bool
		want      Mode
	}{
		{"tiny static", 10, ContextGame, true, true, ModeStatic},
		{"mid deformation", 50, ContextGame, true, true, ModeDeformation},
		{"full detail frames", 120, ContextGame, true, true, ModeFrames},
		{"full detail no frames", 120, ContextGame, true, false, ModeDeformation},
		{"video size", 200, ContextGame, true, true, ModeVideo},
		{"video size no clips", 200, ContextGame, false, true, ModeFrames},
		{"edit forces video", 10, ContextEdit, true, false, ModeVideo},
		{"select forces video", 10, ContextSelect, true, false, ModeVideo},
		{"cinematic without clips falls through", 10, ContextCinematic, false, false, ModeStatic},
	}
	for _, c := range cases {
		if got := ClipMode(c.size, c.ctx, c.clips, c.frames); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}
