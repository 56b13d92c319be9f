// Package fx renders ephemeral combat overlay visuals: closing fangs
// on bite impacts, radiating impact lines on hits. Effects are keyed
// to combat events but live outside the action state machine; they
// decay linearly and remove themselves.
package fx

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Effect is one transient overlay visual. Life starts at 1 and
// decays to 0 over the effect's duration; expired effects are dropped
// by the system.
type Effect interface {
	// Update decays the effect and reports whether it is still
	// alive.
	Update(dt float64) bool

	// Draw renders the effect at its current life into screen,
	// offset by the camera position.
	Draw(screen *ebiten.Image, camX, camY float64)
}

// System manages the transient effect list for one session.
type System struct {
	effects []Effect
}

// NewSystem creates an empty effect system.
func NewSystem() *System {
	return &System{}
}

// Spawn adds an effect.
func (s *System) Spawn(e Effect) {
	s.effects = append(s.effects, e)
}

// SpawnBite adds a bite-impact effect at a position, with the fangs
// closing along the attack angle.
func (s *System) SpawnBite(x, y, angle float64) {
	s.Spawn(&BiteEffect{base: base{X: x, Y: y, Life: 1, Duration: 0.25}, Angle: angle})
}

// SpawnHit adds a hit effect with impact lines radiating along the
// hit direction.
func (s *System) SpawnHit(x, y, dirX, dirY float64) {
	angle := math.Atan2(dirY, dirX)
	s.Spawn(&HitEffect{base: base{X: x, Y: y, Life: 1, Duration: 0.3}, Angle: angle})
}

// Update decays all effects, dropping the expired ones.
func (s *System) Update(dt float64) {
	alive := s.effects[:0]
	for _, e := range s.effects {
		if e.Update(dt) {
			alive = append(alive, e)
		}
	}
	// Let dropped effects be collected.
	for i := len(alive); i < len(s.effects); i++ {
		s.effects[i] = nil
	}
	s.effects = alive
}

// Draw renders all live effects.
func (s *System) Draw(screen *ebiten.Image, camX, camY float64) {
	for _, e := range s.effects {
		e.Draw(screen, camX, camY)
	}
}

// Reset clears all effects, e.g. on level change.
func (s *System) Reset() {
	s.effects = s.effects[:0]
}

// Len returns the number of live effects.
func (s *System) Len() int {
	return len(s.effects)
}

// base carries the shared effect state.
type base struct {
	X, Y     float64
	Life     float64 // (0, 1], linearly decayed
	Duration float64 // seconds from spawn to expiry
}

// Update implements the shared linear decay.
func (b *base) Update(dt float64) bool {
	b.Life -= dt / b.Duration
	return b.Life > 0
}

// BiteEffect is a pair of fangs closing along the attack angle.
type BiteEffect struct {
	base
	Angle float64
	Size  float64
}

// Draw renders the fang pair. The jaws start open and close as life
// runs out, crossing at the impact point.
func (e *BiteEffect) Draw(screen *ebiten.Image, camX, camY float64) {
	size := e.Size
	if size == 0 {
		size = 18
	}
	cx := float32(e.X - camX)
	cy := float32(e.Y - camY)

	// Jaw gap shrinks with life: 1 -> wide open, 0 -> closed.
	gap := size * 0.8 * e.Life
	alpha := uint8(255 * e.Life)
	col := color.RGBA{R: 255, G: 245, B: 235, A: alpha}

	sin, cos := math.Sincos(e.Angle)
	// Perpendicular to the attack direction.
	px, py := -sin, cos

	for _, side := range []float64{1, -1} {
		// Fang root offset to one side of the bite line.
		rootX := cx + float32(px*gap*side)
		rootY := cy + float32(py*gap*side)
		// Tip converges on the impact point, slightly forward.
		tipX := cx + float32(cos*size*0.4)
		tipY := cy + float32(sin*size*0.4)

		width := float32(size * 0.18)
		vector.StrokeLine(screen, rootX, rootY, tipX, tipY, width, col, true)
	}
}

// HitEffect draws short impact lines radiating around the hit
// direction.
type HitEffect struct {
	base
	Angle float64
	Size  float64
}

// Draw renders the impact lines, lengthening and fading as the effect
// ages.
func (e *HitEffect) Draw(screen *ebiten.Image, camX, camY float64) {
	size := e.Size
	if size == 0 {
		size = 14
	}
	cx := float32(e.X - camX)
	cy := float32(e.Y - camY)

	alpha := uint8(255 * e.Life)
	col := color.RGBA{R: 255, G: 210, B: 80, A: alpha}

	// Lines spread within ±60° of the hit direction and travel
	// outward as life decays.
	const lines = 5
	travel := size * (1.4 - e.Life)
	for i := 0; i < lines; i++ {
		spread := (float64(i)/(lines-1) - 0.5) * math.Pi / 1.5
		sin, cos := math.Sincos(e.Angle + spread)
		x0 := cx + float32(cos*travel)
		y0 := cy + float32(sin*travel)
		x1 := cx + float32(cos*(travel+size*0.6*e.Life))
		y1 := cy + float32(sin*(travel+size*0.6*e.Life))
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, col, true)
	}
}
