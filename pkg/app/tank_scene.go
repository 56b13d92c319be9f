package app

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/petridish/menagerie/pkg/anim"
	"github.com/petridish/menagerie/pkg/game"
	"github.com/petridish/menagerie/pkg/lod"
)

// renderContexts is the cycle order for the C key.
var renderContexts = []lod.RenderContext{
	lod.ContextGame,
	lod.ContextEdit,
	lod.ContextSelect,
	lod.ContextCinematic,
}

// swimmer is one creature instance moving around the tank.
type swimmer struct {
	view *game.CreatureView
	x    float64
	y    float64
	vx   float64
	vy   float64

	// size is the on-screen extent in pixels; the spread across
	// swimmers is what makes the scene hit every render mode at once.
	size float64

	// retarget counts down to the next random course change.
	retarget float64
}

// TankScene is the demo scene: every creature in the manifest swims at
// a spread of sizes so static, deformation, frame, and video rendering
// are all live in a single view.
//
// Keys:
//
//	C     cycle the render context (game / edit / select / cinematic)
//	D     toggle resolution tier logging
//	R     force-reload every sprite, bypassing caches
//	B     make a random creature bite
//	H     hurt a random creature
//	Click spawn a hit effect at the cursor
type TankScene struct {
	session  *game.Session
	swimmers []*swimmer
	ctxIndex int
	rng      *rand.Rand
}

// NewTankScene populates the tank from the session's manifest. With no
// manifest the tank is empty but still responds to effect input.
func NewTankScene(session *game.Session) *TankScene {
	s := &TankScene{
		session: session,
		rng:     rand.New(rand.NewSource(1)),
	}
	if session.Manifest == nil {
		log.Printf("[TankScene] no manifest; tank is empty")
		return s
	}

	sizes := []float64{16, 48, 110, 200}
	for _, id := range session.Manifest.IDs() {
		rec := session.Manifest.Get(id)
		for i, size := range sizes {
			instanceID := fmt.Sprintf("%s-%d", id, i)
			sw := &swimmer{
				view: game.NewCreatureView(session, instanceID, rec, i == len(sizes)-1),
				x:    s.rng.Float64() * ScreenWidth,
				y:    s.rng.Float64() * ScreenHeight,
				size: size,
			}
			s.swimmers = append(s.swimmers, sw)
		}
	}
	log.Printf("[TankScene] spawned %d swimmers", len(s.swimmers))
	return s
}

// Context returns the active render context.
func (s *TankScene) Context() lod.RenderContext {
	return renderContexts[s.ctxIndex]
}

// Update handles input and advances every swimmer.
func (s *TankScene) Update(deltaTime float64) {
	s.handleInput()
	ctx := s.Context()
	for _, sw := range s.swimmers {
		s.steer(sw, deltaTime)
		speed := math.Hypot(sw.vx, sw.vy) / maxSwimSpeed
		sw.view.ProcessEvent(anim.SpeedChange(speed))
		sw.view.Update(deltaTime, sw.size, ctx)
	}
}

const maxSwimSpeed = 120.0

// steer applies wandering motion with soft screen-edge bounces.
func (s *TankScene) steer(sw *swimmer, dt float64) {
	sw.retarget -= dt
	if sw.retarget <= 0 {
		sw.retarget = 2 + s.rng.Float64()*4
		angle := s.rng.Float64() * 2 * math.Pi
		speed := s.rng.Float64() * maxSwimSpeed
		sw.vx = math.Cos(angle) * speed
		sw.vy = math.Sin(angle) * speed
	}

	sw.x += sw.vx * dt
	sw.y += sw.vy * dt
	if sw.x < 0 || sw.x > ScreenWidth-sw.size {
		sw.vx = -sw.vx
		sw.x = math.Max(0, math.Min(sw.x, ScreenWidth-sw.size))
	}
	if sw.y < 0 || sw.y > ScreenHeight-sw.size {
		sw.vy = -sw.vy
		sw.y = math.Max(0, math.Min(sw.y, ScreenHeight-sw.size))
	}
}

func (s *TankScene) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		s.ctxIndex = (s.ctxIndex + 1) % len(renderContexts)
		log.Printf("[TankScene] render context: %s", s.Context())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		on := !s.session.Settings.Settings().DebugTierLogging
		s.session.SetDebugTierLogging(on)
		log.Printf("[TankScene] tier logging: %v", on)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		for _, sw := range s.swimmers {
			s.session.Sprites.Reload(sw.view.ID, sw.view.Record, sw.size)
		}
		log.Printf("[TankScene] forced reload of %d sprites", len(s.swimmers))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		if sw := s.randomSwimmer(); sw != nil {
			sw.view.ProcessEvent(anim.Bite())
			cx, cy := sw.x+sw.size/2, sw.y+sw.size/2
			s.session.Effects.SpawnBite(cx, cy, math.Atan2(sw.vy, sw.vx))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		if sw := s.randomSwimmer(); sw != nil {
			sw.view.ProcessEvent(anim.Hurt())
			s.session.Effects.SpawnHit(sw.x+sw.size/2, sw.y+sw.size/2, -sw.vx, -sw.vy)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		s.session.Effects.SpawnHit(float64(mx), float64(my), 0, -1)
	}
}

func (s *TankScene) randomSwimmer() *swimmer {
	if len(s.swimmers) == 0 {
		return nil
	}
	return s.swimmers[s.rng.Intn(len(s.swimmers))]
}

// Draw renders the swimmers, then the overlay effects and a small HUD.
func (s *TankScene) Draw(screen *ebiten.Image) {
	ctx := s.Context()
	for _, sw := range s.swimmers {
		sw.view.Draw(screen, sw.x, sw.y, sw.size, sw.size, ctx, sw.vx < 0)
	}
	s.session.Effects.Draw(screen, 0, 0)

	hud := fmt.Sprintf("context: %s  swimmers: %d  clips: %d/%d",
		ctx, len(s.swimmers), s.session.Videos.Len(), s.session.Settings.Settings().MaxVideoSprites)
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)
}
