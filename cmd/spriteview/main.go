// Spriteview is a debugging tool for creature art: it draws a single
// creature at a sweep of screen sizes in every render context, so the
// level-of-detail handoffs (static, deformation, frames, clips) and
// the resolution tier switches can be inspected side by side.
//
// Keys:
//
//	Left/Right  previous / next creature
//	B / H / K   trigger bite / hurt / death
//	Space       reset the creature back to idle
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/petridish/menagerie/pkg/anim"
	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/game"
	"github.com/petridish/menagerie/pkg/lod"
)

const (
	screenWidth  = 1400
	screenHeight = 900
)

// sweepSizes crosses every threshold in the fidelity ladder.
var sweepSizes = []float64{16, 32, 64, 96, 140, 200}

var sweepContexts = []lod.RenderContext{
	lod.ContextGame,
	lod.ContextEdit,
	lod.ContextSelect,
	lod.ContextCinematic,
}

type viewer struct {
	session *game.Session
	ids     []string
	index   int

	// One view per (size, context) cell so each cell keeps its own
	// cached sprite and clip state.
	views map[string]*game.CreatureView
}

func newViewer(session *game.Session, startID string) *viewer {
	v := &viewer{
		session: session,
		ids:     session.Manifest.IDs(),
		views:   map[string]*game.CreatureView{},
	}
	for i, id := range v.ids {
		if id == startID {
			v.index = i
		}
	}
	return v
}

func (v *viewer) currentID() string {
	return v.ids[v.index]
}

func (v *viewer) cellView(col, row int) *game.CreatureView {
	key := fmt.Sprintf("%s/%d/%d", v.currentID(), col, row)
	cv, ok := v.views[key]
	if !ok {
		cv = game.NewCreatureView(v.session, key, v.session.Manifest.Get(v.currentID()), false)
		v.views[key] = cv
	}
	return cv
}

func (v *viewer) switchCreature(delta int) {
	v.index = (v.index + delta + len(v.ids)) % len(v.ids)
	for key, cv := range v.views {
		cv.Dispose()
		delete(v.views, key)
	}
	v.session.Sprites.ClearAll()
	log.Printf("[Spriteview] showing %s", v.currentID())
}

func (v *viewer) broadcast(ev anim.Event) {
	for _, cv := range v.views {
		cv.ProcessEvent(ev)
	}
}

func (v *viewer) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		v.switchCreature(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		v.switchCreature(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		v.broadcast(anim.Bite())
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		v.broadcast(anim.Hurt())
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		v.broadcast(anim.Death())
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.broadcast(anim.Force(anim.ActionIdle))
	}

	dt := 1.0 / float64(ebiten.TPS())
	v.session.Update(dt)
	for row, ctx := range sweepContexts {
		for col, size := range sweepSizes {
			v.cellView(col, row).Update(dt, size, ctx)
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	const (
		cellW = 220.0
		cellH = 215.0
		left  = 40.0
		top   = 40.0
	)
	for row, ctx := range sweepContexts {
		y := top + float64(row)*cellH
		ebitenutil.DebugPrintAt(screen, string(ctx), 4, int(y))
		for col, size := range sweepSizes {
			x := left + float64(col)*cellW
			cv := v.cellView(col, row)
			cv.Draw(screen, x, y, size, size, ctx, false)

			label := fmt.Sprintf("%.0fpx %s %s seg=%d",
				size, cv.LastMode(), lod.SpriteTier(size), lod.SegmentCount(size, false))
			ebitenutil.DebugPrintAt(screen, label, int(x), int(y+cellH-16))
		}
	}

	header := fmt.Sprintf("%s (%d/%d)  action: %s",
		v.currentID(), v.index+1, len(v.ids), v.cellView(0, 0).CurrentAction())
	ebitenutil.DebugPrintAt(screen, header, int(left), 8)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	manifestPath := flag.String("manifest", "creatures.yaml", "path to the creature manifest")
	startID := flag.String("creature", "", "creature id to show first")
	flag.Parse()

	manifest, err := creature.LoadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("manifest load failed: %v", err)
	}
	if len(manifest.IDs()) == 0 {
		log.Fatalf("manifest %s has no usable creatures", *manifestPath)
	}

	session := game.NewSession(nil, manifest)
	v := newViewer(session, *startID)
	log.Printf("[Spriteview] %d creatures loaded", len(v.ids))

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Menagerie Spriteview")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatalf("game loop exited: %v", err)
	}
}
