package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/petridish/menagerie/pkg/lod"
)

// Scene represents one screen of the application (tank view, creature
// editor, selection screen). Each scene has its own update and
// rendering logic and declares which render context its creatures are
// drawn in.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)

	// Context returns the render context creatures in this scene are
	// drawn with; non-gameplay contexts force clip rendering.
	Context() lod.RenderContext
}
