package sprites

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/petridish/menagerie/pkg/anim"
	"github.com/petridish/menagerie/pkg/creature"
)

// encodeTestGIF builds a small three-frame animated GIF in memory.
func encodeTestGIF(t *testing.T) []byte {
	t.Helper()
	palette := []color.Color{
		color.RGBA{R: 255, B: 255, A: 255}, // magenta background
		color.RGBA{G: 255, A: 255},
	}
	g := &gif.GIF{Config: image.Config{Width: 4, Height: 4}}
	for i := 0; i < 3; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
		frame.SetColorIndex(i, 0, 1)
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10) // 0.1s per frame
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode test gif: %v", err)
	}
	return buf.Bytes()
}

func clipRecord() *creature.Record {
	return &creature.Record{
		ID:      "gulper",
		Actions: []string{"idle", "bite"},
		Clips: map[string]creature.Clip{
			"idle": {URL: "mem://idle.gif", Loop: true},
			"bite": {URL: "mem://bite.gif", Loop: false},
		},
	}
}

// newTestVideoSprite wires a VideoSprite to an in-memory fetch that
// counts how often it is called.
func newTestVideoSprite(t *testing.T, calls *int32) *VideoSprite {
	t.Helper()
	data := encodeTestGIF(t)
	v := NewVideoSprite("gulper", clipRecord(), nil)
	v.fetch = func(url string, bust bool) ([]byte, error) {
		atomic.AddInt32(calls, 1)
		return data, nil
	}
	return v
}

// waitLoaded advances the sprite until the action's clip is decoded.
func waitLoaded(t *testing.T, v *VideoSprite, action anim.Action) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v.Advance(0)
		if _, ok := v.clips[action]; ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("clip %s never finished decoding", action)
}

// TestLoadClipIdempotent checks a second LoadClip while the first is
// loading (or loaded) starts no second decode.
func TestLoadClipIdempotent(t *testing.T) {
	var calls int32
	v := newTestVideoSprite(t, &calls)

	v.LoadClip(anim.ActionIdle)
	v.LoadClip(anim.ActionIdle)
	if v.loadsStarted != 1 {
		t.Fatalf("loadsStarted = %d, want 1", v.loadsStarted)
	}

	waitLoaded(t, v, anim.ActionIdle)
	v.LoadClip(anim.ActionIdle)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	if len(v.clips) != 1 {
		t.Errorf("decoded %d clips, want 1", len(v.clips))
	}
}

// TestLoadClipUnknownAction checks actions without clip metadata are
// ignored.
func TestLoadClipUnknownAction(t *testing.T) {
	var calls int32
	v := newTestVideoSprite(t, &calls)
	v.LoadClip(anim.ActionDeath)
	if v.loadsStarted != 0 {
		t.Errorf("loadsStarted = %d for unknown action", v.loadsStarted)
	}
}

// TestPlayActionSwitches checks PlayAction pauses the previous clip,
// rewinds the target, and plays it.
func TestPlayActionSwitches(t *testing.T) {
	var calls int32
	v := newTestVideoSprite(t, &calls)

	v.PlayAction(anim.ActionIdle)
	waitLoaded(t, v, anim.ActionIdle)

	idle := v.clips[anim.ActionIdle]
	if !idle.playing {
		t.Fatal("idle clip should be playing once decoded")
	}
	v.Advance(0.15)
	if idle.frame != 1 {
		t.Fatalf("idle frame = %d after 0.15s, want 1", idle.frame)
	}

	v.PlayAction(anim.ActionBite)
	if idle.playing {
		t.Error("previous clip should be paused")
	}
	waitLoaded(t, v, anim.ActionBite)
	bite := v.clips[anim.ActionBite]
	if !bite.playing || bite.frame != 0 {
		t.Errorf("bite clip playing=%v frame=%d, want playing at frame 0", bite.playing, bite.frame)
	}
}

// TestOneShotClipCompletes checks a non-looping clip stops on its
// last frame and falls back to the default action.
func TestOneShotClipCompletes(t *testing.T) {
	var calls int32
	v := newTestVideoSprite(t, &calls)

	v.PlayAction(anim.ActionBite)
	waitLoaded(t, v, anim.ActionBite)

	// Three frames at 0.1s each: 0.35s finishes the clip.
	v.Advance(0.35)
	bite := v.clips[anim.ActionBite]
	if bite.playing {
		t.Error("one-shot clip should stop at its end")
	}
	if v.CurrentAction() != anim.ActionIdle {
		t.Errorf("current action = %q, want fallback to idle", v.CurrentAction())
	}
}

// TestLoopingClipWraps checks looping clips wrap instead of firing a
// completion.
func TestLoopingClipWraps(t *testing.T) {
	var calls int32
	v := newTestVideoSprite(t, &calls)

	v.PlayAction(anim.ActionIdle)
	waitLoaded(t, v, anim.ActionIdle)

	idle := v.clips[anim.ActionIdle]
	v.Advance(0.35)
	if !idle.playing {
		t.Error("looping clip should keep playing")
	}
	if idle.frame != 0 {
		t.Errorf("frame = %d after wrap, want 0", idle.frame)
	}
}

// encodeDisposalGIF builds a GIF whose frames each paint a single
// pixel at (i, 0), with the given disposal method on every frame.
func encodeDisposalGIF(t *testing.T, disposal byte) []byte {
	t.Helper()
	palette := []color.Color{color.RGBA{G: 255, A: 255}}
	g := &gif.GIF{Config: image.Config{Width: 4, Height: 1}}
	for i := 0; i < 2; i++ {
		frame := image.NewPaletted(image.Rect(i, 0, i+1, 1), palette)
		frame.SetColorIndex(i, 0, 0)
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
		g.Disposal = append(g.Disposal, disposal)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode disposal gif: %v", err)
	}
	return buf.Bytes()
}

// TestDecodeClipDisposal checks restore-to-background and
// restore-to-previous clips do not ghost earlier frames, while plain
// delta frames still accumulate.
func TestDecodeClipDisposal(t *testing.T) {
	alphaAt := func(f *ebiten.Image, x int) uint32 {
		_, _, _, a := f.At(x, 0).RGBA()
		return a
	}

	for _, disposal := range []byte{gif.DisposalBackground, gif.DisposalPrevious} {
		clip, err := decodeClip(encodeDisposalGIF(t, disposal), true)
		if err != nil {
			t.Fatalf("decodeClip: %v", err)
		}
		if a := alphaAt(clip.frames[1], 0); a != 0 {
			t.Errorf("disposal %d: frame 0 pixel ghosts into frame 1 (alpha %d)", disposal, a)
		}
		if a := alphaAt(clip.frames[1], 1); a == 0 {
			t.Errorf("disposal %d: frame 1 lost its own pixel", disposal)
		}
	}

	clip, err := decodeClip(encodeDisposalGIF(t, gif.DisposalNone), true)
	if err != nil {
		t.Fatalf("decodeClip: %v", err)
	}
	if alphaAt(clip.frames[1], 0) == 0 || alphaAt(clip.frames[1], 1) == 0 {
		t.Error("disposal none: frames should accumulate on the canvas")
	}
}

// TestDecodeClipComposites checks delta frames composite onto the
// accumulated canvas.
func TestDecodeClipComposites(t *testing.T) {
	clip, err := decodeClip(encodeTestGIF(t), true)
	if err != nil {
		t.Fatalf("decodeClip: %v", err)
	}
	if len(clip.frames) != 3 || len(clip.delays) != 3 {
		t.Fatalf("decoded %d frames / %d delays", len(clip.frames), len(clip.delays))
	}
	for i, d := range clip.delays {
		if d != 0.1 {
			t.Errorf("delay[%d] = %f, want 0.1", i, d)
		}
	}
}
