// Menagerie is a creature rendering demo: it loads a creature
// manifest and opens a tank view where every render mode (static,
// deformation, extracted frames, and pre-rendered clips) runs at once.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/petridish/menagerie/pkg/app"
)

func main() {
	manifestPath := flag.String("manifest", "creatures.yaml", "path to the creature manifest")
	verbose := flag.Bool("verbose", false, "enable log output")
	tolerance := flag.Float64("tolerance", 0, "chroma key tolerance override (0 keeps the saved value)")
	flag.Parse()

	a, err := app.NewApp(app.Config{
		Verbose:         *verbose,
		ManifestPath:    *manifestPath,
		ChromaTolerance: *tolerance,
	})
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Menagerie")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(a); err != nil {
		log.Fatalf("game loop exited: %v", err)
	}
}
