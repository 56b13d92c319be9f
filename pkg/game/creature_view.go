package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/petridish/menagerie/pkg/anim"
	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/lod"
	"github.com/petridish/menagerie/pkg/render"
	"github.com/petridish/menagerie/pkg/sprites"
)

// chompDecayRate drains the bite bulge envelope per second.
const chompDecayRate = 3.0

// defaultOneShotDuration is how long a one-shot action plays when the
// creature record carries no clip duration for it.
const defaultOneShotDuration = 0.6

// CreatureView is the per-entity glue of the rendering core: it owns
// the entity's animation state machine, decides the render mode every
// frame from on-screen size and render context, and draws through
// whichever path the mode selects: processed clip frame, extracted
// frame sequence, deformed sprite, or flat static blit.
//
// The game loop feeds it screen-space size, speed, and combat events;
// everything else (caching, pooling, keying) happens through the
// session's shared managers.
type CreatureView struct {
	ID      string
	Record  *creature.Record
	Machine *anim.Machine

	// Player marks the player-controlled creature, which gets a
	// higher deformation segment budget.
	Player bool

	session *Session

	clock          float64
	speed          float64
	chompPhase     float64
	oneShotElapsed float64
	frameSets      map[anim.Action]*sprites.FrameSequence
	lastMode       lod.Mode
}

// NewCreatureView builds the view for one entity. rec may be nil;
// the view then renders nothing but stays safe to drive.
func NewCreatureView(session *Session, id string, rec *creature.Record, player bool) *CreatureView {
	actions := []anim.Action{anim.ActionIdle, anim.ActionSwim}
	if rec != nil && len(rec.Actions) > 0 {
		actions = actions[:0]
		for _, a := range rec.Actions {
			actions = append(actions, anim.Action(a))
		}
	}
	return &CreatureView{
		ID:        id,
		Record:    rec,
		Machine:   anim.NewMachine(actions),
		Player:    player,
		session:   session,
		frameSets: make(map[anim.Action]*sprites.FrameSequence),
	}
}

// ProcessEvent forwards an event to the state machine and reacts to
// the transition it produces: switching the active clip, resetting
// frame sequences, and kicking the chomp bulge on a bite.
func (cv *CreatureView) ProcessEvent(ev anim.Event) (anim.Action, bool) {
	action, ok := cv.Machine.ProcessEvent(ev)
	if ev.Kind == anim.EventSpeedChange {
		cv.speed = ev.Speed
	}
	if !ok {
		return "", false
	}

	if action == anim.ActionBite {
		cv.chompPhase = 1
	}
	if action.IsOneShot() {
		cv.oneShotElapsed = 0
	}
	if fs, exists := cv.frameSets[action]; exists {
		fs.Rewind()
	}
	// Keep the pooled clip set in sync when one exists; acquiring
	// here would churn the pool for creatures rendered without clips.
	if cv.session.Videos.Contains(cv.ID) {
		vs := cv.session.Videos.Acquire(cv.ID, cv.Record)
		if action.IsOneShot() {
			vs.TriggerAction(action)
		} else {
			vs.PlayAction(action)
		}
	}
	return action, true
}

// LastMode returns the render mode chosen by the most recent Update,
// for HUD and debug display.
func (cv *CreatureView) LastMode() lod.Mode {
	return cv.lastMode
}

// CurrentAction exposes the logical action for UI display and
// game-logic synchronization (e.g. gating damage windows to bite).
func (cv *CreatureView) CurrentAction() anim.Action {
	return cv.Machine.Current()
}

// Update advances per-entity animation clocks and makes sure the
// assets for the current mode are requested. screenSize is the
// entity's on-screen extent (entity size × camera zoom).
func (cv *CreatureView) Update(dt, screenSize float64, ctx lod.RenderContext) {
	cv.clock += dt
	if cv.chompPhase > 0 {
		cv.chompPhase -= dt * chompDecayRate
		if cv.chompPhase < 0 {
			cv.chompPhase = 0
		}
	}
	if cv.Record == nil {
		return
	}
	cv.advanceOneShot(dt)

	mode := cv.mode(screenSize, ctx)
	cv.lastMode = mode

	switch mode {
	case lod.ModeVideo:
		vs := cv.session.Videos.Acquire(cv.ID, cv.Record)
		action := cv.Machine.Current()
		if vs.CurrentAction() != action {
			if action.IsOneShot() {
				vs.TriggerAction(action)
			} else {
				vs.PlayAction(action)
			}
		}
	case lod.ModeFrames:
		fs := cv.ensureFrameSet(cv.Machine.Current())
		if fs != nil {
			fs.Advance(dt)
		}
	}

	// The deformation and static paths, and the fallback for a clip
	// that has not decoded yet, all want the cached raster.
	cv.session.Sprites.EnsureSprite(cv.ID, cv.Record, screenSize)
}

// advanceOneShot times the current one-shot action and feeds the
// completion event back into the machine when it has played out, so
// the creature returns to its speed band without external help.
// Death never completes; a dead creature holds its last frame until
// game logic removes it.
func (cv *CreatureView) advanceOneShot(dt float64) {
	current := cv.Machine.Current()
	if !current.IsOneShot() || current == anim.ActionDeath {
		return
	}
	cv.oneShotElapsed += dt
	if cv.oneShotElapsed < cv.oneShotDuration(current) {
		return
	}
	cv.ProcessEvent(anim.ActionComplete(current))
}

// oneShotDuration prefers the clip duration declared in the record.
func (cv *CreatureView) oneShotDuration(action anim.Action) float64 {
	if clip, ok := cv.Record.Clips[string(action)]; ok && clip.Duration > 0 {
		return clip.Duration
	}
	return defaultOneShotDuration
}

// mode computes the render mode for this frame.
func (cv *CreatureView) mode(screenSize float64, ctx lod.RenderContext) lod.Mode {
	return lod.ClipMode(screenSize, ctx, cv.Record.HasClips(), cv.Record.HasFrames())
}

// ensureFrameSet lazily starts loading the extracted frame sequence
// for an action, falling back to nil when the record has none.
func (cv *CreatureView) ensureFrameSet(action anim.Action) *sprites.FrameSequence {
	if fs, ok := cv.frameSets[action]; ok {
		return fs
	}
	urls, ok := cv.Record.FrameSets[string(action)]
	if !ok {
		return nil
	}
	fs := sprites.LoadFrameSequence(urls, cv.session.Settings.Settings().ChromaTolerance)
	cv.frameSets[action] = fs
	return fs
}

// Draw renders the creature into screen at the given destination
// rectangle. The mode decision is recomputed from the same inputs as
// Update, so the two always agree within a frame.
//
// Assets that have not landed yet degrade down the ladder instead of
// stalling: video falls back to the deformed cached sprite, frames
// fall back likewise, and a missing sprite draws nothing.
func (cv *CreatureView) Draw(screen *ebiten.Image, x, y, w, h float64, ctx lod.RenderContext, flipX bool) {
	if cv.Record == nil {
		return
	}
	screenSize := w
	if h > w {
		screenSize = h
	}
	mode := cv.mode(screenSize, ctx)

	if mode == lod.ModeVideo && cv.session.Videos.Contains(cv.ID) {
		vs := cv.session.Videos.Acquire(cv.ID, cv.Record)
		if vs.CurrentFrame() != nil {
			vs.DrawTo(screen, sprites.VideoDrawOptions{
				X: x, Y: y, Width: w, Height: h, FlipX: flipX,
			})
			return
		}
		// Clip not decoded yet; fall through to the sprite paths.
	}

	if mode == lod.ModeFrames {
		if fs := cv.frameSets[cv.Machine.Current()]; fs != nil && fs.Ready() {
			cv.drawStaticImage(screen, fs.Frame(), x, y, w, h, flipX)
			return
		}
	}

	sprite := cv.session.Sprites.Lookup(cv.ID)
	if sprite == nil {
		return
	}

	segments := 0
	if mode == lod.ModeDeformation || mode == lod.ModeFrames || mode == lod.ModeVideo {
		segments = lod.SegmentCount(screenSize, cv.Player)
	}
	cv.session.Deformer.Draw(screen, sprite, render.DeformOptions{
		X: x, Y: y, Width: w, Height: h,
		Segments:   segments,
		Time:       cv.clock,
		Speed:      cv.speed,
		ChompPhase: cv.chompPhase,
		FlipX:      flipX,
	})
}

// drawStaticImage blits one frame with the deformer's static path.
func (cv *CreatureView) drawStaticImage(screen, img *ebiten.Image, x, y, w, h float64, flipX bool) {
	cv.session.Deformer.DrawStatic(screen, img, render.DeformOptions{
		X: x, Y: y, Width: w, Height: h, FlipX: flipX,
	})
}

// Dispose releases per-entity resources: the pooled clip set, cached
// sprite surface, and loaded frame sequences.
func (cv *CreatureView) Dispose() {
	cv.session.Videos.Release(cv.ID)
	cv.session.Sprites.Clear(cv.ID)
	for _, fs := range cv.frameSets {
		fs.Dispose()
	}
	cv.frameSets = make(map[anim.Action]*sprites.FrameSequence)
}
