// Package game ties the rendering core together: the Session object
// that owns the shared managers, the persisted render settings, and
// the scene abstraction the app drives.
package game

import (
	"log"

	"github.com/quasilyte/gdata/v2"

	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/fx"
	"github.com/petridish/menagerie/pkg/render"
	"github.com/petridish/menagerie/pkg/sprites"
)

// Session owns every shared manager of the rendering core. It is
// constructed once by the top-level game loop and passed into each
// component, so there is no hidden global state and multiple
// independent sessions (or tests) can coexist.
type Session struct {
	Settings *SettingsManager
	Manifest *creature.Manifest

	Sprites  *sprites.Manager
	Videos   *sprites.PoolManager
	Chroma   *render.ChromaProcessor
	Deformer *render.Deformer
	Effects  *fx.System
}

// NewSession builds a session from persisted settings. gdataManager
// may be nil (settings stay in memory); manifest may be nil (no
// creatures until SetManifest).
func NewSession(gdataManager *gdata.Manager, manifest *creature.Manifest) *Session {
	settingsManager := NewSettingsManager(gdataManager)
	settings := settingsManager.Settings()

	chroma := render.NewChromaProcessor()
	chroma.SetTolerance(settings.ChromaTolerance)

	spriteManager := sprites.NewManager(settings.ChromaTolerance)
	spriteManager.SetDebugTierLogging(settings.DebugTierLogging)

	return &Session{
		Settings: settingsManager,
		Manifest: manifest,
		Sprites:  spriteManager,
		Videos:   sprites.NewPoolManager(settings.MaxVideoSprites, chroma),
		Chroma:   chroma,
		Deformer: &render.Deformer{},
		Effects:  fx.NewSystem(),
	}
}

// SetManifest installs (or replaces) the creature manifest.
func (s *Session) SetManifest(m *creature.Manifest) {
	s.Manifest = m
}

// SetChromaTolerance changes the color-key tolerance for both paths
// and persists it. Already-cached surfaces keep their old keying
// until invalidated.
func (s *Session) SetChromaTolerance(tolerance float64) {
	s.Settings.Settings().ChromaTolerance = tolerance
	s.Chroma.SetTolerance(tolerance)
	s.Sprites.SetTolerance(tolerance)
	if err := s.Settings.Save(); err != nil {
		log.Printf("[Session] failed to persist settings: %v", err)
	}
}

// SetDebugTierLogging toggles resolution-tier swap logging and
// persists the flag.
func (s *Session) SetDebugTierLogging(on bool) {
	s.Settings.Settings().DebugTierLogging = on
	s.Sprites.SetDebugTierLogging(on)
	if err := s.Settings.Save(); err != nil {
		log.Printf("[Session] failed to persist settings: %v", err)
	}
}

// Update runs the per-frame bookkeeping of the shared managers:
// applying finished sprite loads, advancing clip playback, and
// decaying overlay effects. Must be called once per frame before any
// drawing.
func (s *Session) Update(dt float64) {
	s.Sprites.Update()
	s.Videos.Advance(dt)
	s.Effects.Update(dt)
}

// Reset drops all per-level state: cached sprites, pooled clip sets,
// and live effects. Settings and manifest survive.
func (s *Session) Reset() {
	s.Sprites.ClearAll()
	s.Videos.DisposeAll()
	s.Effects.Reset()
}
