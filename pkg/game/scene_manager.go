package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager controls which scene is active, ensuring only one
// scene's Update and Draw methods run at any time.
type SceneManager struct {
	currentScene Scene
}

// NewSceneManager creates a manager with no active scene; use
// SwitchTo to set the initial one.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SwitchTo changes the active scene.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if scene != nil {
		log.Printf("[SceneManager] switching to %s context", scene.Context())
	}
	sm.currentScene = scene
}

// CurrentScene returns the active scene, or nil.
func (sm *SceneManager) CurrentScene() Scene {
	return sm.currentScene
}

// Update updates the active scene, if any.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the active scene, if any.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
