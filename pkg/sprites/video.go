package sprites

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/petridish/menagerie/pkg/anim"
	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/render"
)

// ClipResource is one decoded clip: the per-action analogue of a
// muted, inline-playback video element. Clips arrive as animated GIFs
// and are consumed frame by frame; per-frame delays come from the
// container, the loop flag from the creature record.
type ClipResource struct {
	frames  []*ebiten.Image
	delays  []float64 // seconds per frame
	loop    bool
	playing bool
	elapsed float64
	frame   int

	// onComplete fires once when a non-looping clip reaches its end.
	onComplete func()
}

// decodeClip decodes an animated GIF into a ClipResource, compositing
// partial frames onto the accumulated canvas so delta-encoded clips
// render correctly. Per-frame disposal methods are honored: after a
// frame is captured, its region is cleared (restore-to-background) or
// the canvas is rolled back (restore-to-previous) before the next
// frame composites.
func decodeClip(data []byte, loop bool) (*ClipResource, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode clip: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("clip has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(bounds)

	clip := &ClipResource{loop: loop}
	for i, frame := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var snapshot *image.NRGBA
		if disposal == gif.DisposalPrevious {
			snapshot = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		clip.frames = append(clip.frames, ebiten.NewImageFromImage(canvas))

		delay := float64(g.Delay[i]) / 100.0
		if delay <= 0 {
			delay = 1.0 / 30.0
		}
		clip.delays = append(clip.delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			// The GIF "background" is transparent once chroma keying
			// is in play.
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = snapshot
		}
	}
	return clip, nil
}

// cloneNRGBA copies a raster for disposal-previous restoration.
func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// Play rewinds the clip and starts it.
func (c *ClipResource) Play() {
	c.elapsed = 0
	c.frame = 0
	c.playing = true
}

// Pause stops playback without rewinding.
func (c *ClipResource) Pause() {
	c.playing = false
}

// Advance steps the clip clock. Looping clips wrap; one-shot clips
// stop on their last frame and fire the completion callback once.
func (c *ClipResource) Advance(dt float64) {
	if !c.playing || len(c.frames) == 0 {
		return
	}
	c.elapsed += dt
	for c.elapsed >= c.delays[c.frame] {
		c.elapsed -= c.delays[c.frame]
		if c.frame+1 < len(c.frames) {
			c.frame++
			continue
		}
		if c.loop {
			c.frame = 0
			continue
		}
		c.playing = false
		if c.onComplete != nil {
			done := c.onComplete
			c.onComplete = nil
			done()
		}
		return
	}
}

// Frame returns the raw (un-keyed) current frame.
func (c *ClipResource) Frame() *ebiten.Image {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[c.frame]
}

// dispose stops playback and releases decoded frames.
func (c *ClipResource) dispose() {
	c.playing = false
	for _, f := range c.frames {
		f.Deallocate()
	}
	c.frames = nil
	c.delays = nil
}

// clipResult carries a finished background clip decode.
type clipResult struct {
	action anim.Action
	clip   *ClipResource
	err    error
}

// VideoDrawOptions positions a processed clip frame in the caller's
// drawing context.
type VideoDrawOptions struct {
	X, Y          float64
	Width, Height float64
	FlipX         bool
	Rotation      float64 // radians about the frame center
}

// VideoSprite owns one entity's set of clip resources, one per
// available action. Clip decode is lazy and asynchronous; until a
// clip lands, CurrentFrame returns nil and the caller keeps drawing
// whatever it has.
type VideoSprite struct {
	entityID string
	rec      *creature.Record
	chroma   *render.ChromaProcessor

	clips     map[anim.Action]*ClipResource
	requested map[anim.Action]bool
	completed chan clipResult
	current   anim.Action

	// defaultAction is what one-shot clips fall back to when they
	// finish.
	defaultAction anim.Action

	fetch func(url string, bust bool) ([]byte, error)

	// loadsStarted counts decode goroutines ever launched, the
	// observable for LoadClip's idempotence contract.
	loadsStarted int
}

// NewVideoSprite creates the clip set owner for one entity. chroma is
// the session's shared GPU color-key processor.
func NewVideoSprite(entityID string, rec *creature.Record, chroma *render.ChromaProcessor) *VideoSprite {
	defaultAction := anim.ActionIdle
	if rec != nil && len(rec.Actions) > 0 {
		if _, ok := rec.Clips[string(anim.ActionIdle)]; !ok {
			defaultAction = anim.Action(rec.Actions[0])
		}
	}
	return &VideoSprite{
		entityID:      entityID,
		rec:           rec,
		chroma:        chroma,
		clips:         make(map[anim.Action]*ClipResource),
		requested:     make(map[anim.Action]bool),
		completed:     make(chan clipResult, 8),
		defaultAction: defaultAction,
		fetch:         fetchBytes,
	}
}

// LoadClip starts decoding the clip for an action. It is idempotent:
// a second call while the clip is loading or loaded is a no-op, so
// exactly one decoded resource ever exists per action.
func (v *VideoSprite) LoadClip(action anim.Action) {
	if v.rec == nil || v.requested[action] {
		return
	}
	meta, ok := v.rec.Clips[string(action)]
	if !ok || meta.URL == "" {
		return
	}
	v.requested[action] = true
	v.loadsStarted++

	fetch := v.fetch
	go func() {
		data, err := fetch(meta.URL, false)
		if err != nil {
			v.completed <- clipResult{action: action, err: err}
			return
		}
		clip, err := decodeClip(data, meta.Loop)
		v.completed <- clipResult{action: action, clip: clip, err: err}
	}()
}

// PlayAction pauses any currently playing clip, lazily loads the
// target if needed, rewinds it, and plays it.
func (v *VideoSprite) PlayAction(action anim.Action) {
	if cur, ok := v.clips[v.current]; ok && v.current != action {
		cur.Pause()
	}
	v.current = action
	if clip, ok := v.clips[action]; ok {
		clip.Play()
		return
	}
	// Not decoded yet; Advance picks it up and starts playback when
	// the decode lands.
	v.LoadClip(action)
}

// TriggerAction plays a one-shot clip once and automatically returns
// to the default action when it completes.
func (v *VideoSprite) TriggerAction(action anim.Action) {
	v.PlayAction(action)
	if clip, ok := v.clips[action]; ok {
		clip.onComplete = func() {
			v.PlayAction(v.defaultAction)
		}
	}
}

// Advance applies finished decodes and steps the current clip.
// Called once per frame from the game loop.
func (v *VideoSprite) Advance(dt float64) {
drain:
	for {
		select {
		case res := <-v.completed:
			v.applyClip(res)
		default:
			break drain
		}
	}
	if clip, ok := v.clips[v.current]; ok {
		clip.Advance(dt)
	}
}

func (v *VideoSprite) applyClip(res clipResult) {
	if res.err != nil {
		log.Printf("[VideoSprite] clip load failed for %s/%s: %v", v.entityID, res.action, res.err)
		// Allow a later retry rather than pinning the failure.
		delete(v.requested, res.action)
		return
	}
	v.clips[res.action] = res.clip
	if !res.clip.loop {
		res.clip.onComplete = func() {
			v.PlayAction(v.defaultAction)
		}
	}
	if v.current == res.action {
		res.clip.Play()
	}
}

// CurrentFrame runs the GPU color-key path on the live clip frame and
// returns a processed drawable surface, or nil when nothing is
// decoded yet.
func (v *VideoSprite) CurrentFrame() *ebiten.Image {
	clip, ok := v.clips[v.current]
	if !ok {
		return nil
	}
	frame := clip.Frame()
	if frame == nil {
		return nil
	}
	if v.chroma == nil {
		return frame
	}
	return v.chroma.Process(frame)
}

// DrawTo composes the processed current frame into dst with optional
// horizontal flip and rotation. A frame that is not ready draws
// nothing; the caller's fallback surface stays on screen.
func (v *VideoSprite) DrawTo(dst *ebiten.Image, opts VideoDrawOptions) {
	frame := v.CurrentFrame()
	if frame == nil {
		return
	}
	b := frame.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(opts.Width/float64(b.Dx()), opts.Height/float64(b.Dy()))
	if opts.FlipX {
		op.GeoM.Scale(-1, 1)
		op.GeoM.Translate(opts.Width, 0)
	}
	if opts.Rotation != 0 {
		op.GeoM.Translate(-opts.Width/2, -opts.Height/2)
		op.GeoM.Rotate(opts.Rotation)
		op.GeoM.Translate(opts.Width/2, opts.Height/2)
	}
	op.GeoM.Translate(opts.X, opts.Y)
	dst.DrawImage(frame, op)
}

// CurrentAction returns the action whose clip is selected.
func (v *VideoSprite) CurrentAction() anim.Action {
	return v.current
}

// dispose stops playback and releases every decoded clip.
func (v *VideoSprite) dispose() {
	for _, clip := range v.clips {
		clip.dispose()
	}
	v.clips = make(map[anim.Action]*ClipResource)
	v.requested = make(map[anim.Action]bool)
}
