// Package app wraps the rendering core in a runnable Ebitengine
// game: it builds the session from persisted settings, loads the
// creature manifest, and drives a demo tank scene that exercises
// every render mode.
package app

import (
	"fmt"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/game"
)

// Logical screen size, independent of the window size.
const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

// Config defines application startup options.
type Config struct {
	// Verbose enables log output; off by default.
	Verbose bool

	// ManifestPath points at the creature manifest YAML. Empty skips
	// manifest loading (an empty tank).
	ManifestPath string

	// ChromaTolerance overrides the persisted tolerance when > 0.
	ChromaTolerance float64
}

// App is the application wrapper implementing ebiten.Game.
type App struct {
	session      *game.Session
	sceneManager *game.SceneManager
}

// NewApp builds the session and initial scene.
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	// Settings storage is best-effort; a failed open degrades to
	// in-memory settings.
	gdataManager, err := gdata.Open(gdata.Config{AppName: "menagerie"})
	if err != nil {
		log.Printf("[App] settings storage unavailable: %v", err)
		gdataManager = nil
	}

	var manifest *creature.Manifest
	if cfg.ManifestPath != "" {
		manifest, err = creature.LoadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("manifest load failed: %w", err)
		}
		log.Printf("[App] loaded %d creatures from %s", len(manifest.Creatures), cfg.ManifestPath)
	}

	session := game.NewSession(gdataManager, manifest)
	if cfg.ChromaTolerance > 0 {
		session.SetChromaTolerance(cfg.ChromaTolerance)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(NewTankScene(session))

	return &App{session: session, sceneManager: sceneManager}, nil
}

// Session exposes the app's session, mainly for tools and tests.
func (a *App) Session() *game.Session {
	return a.session
}

// Update advances the session and active scene by one tick.
func (a *App) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	a.session.Update(dt)
	a.sceneManager.Update(dt)
	return nil
}

// Draw renders the active scene.
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// Layout returns the logical screen size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
