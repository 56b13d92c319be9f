package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/petridish/menagerie/pkg/render"
	"github.com/petridish/menagerie/pkg/sprites"
)

// RenderSettings are the user-tunable knobs of the rendering core.
// They are global, not per-creature.
type RenderSettings struct {
	// ChromaTolerance is the color-key tolerance on the 0-255 scale,
	// shared by the CPU and GPU paths.
	ChromaTolerance float64 `yaml:"chromaTolerance"`

	// MaxVideoSprites bounds the concurrently decoded clip sets.
	MaxVideoSprites int `yaml:"maxVideoSprites"`

	// DebugTierLogging logs resolution-tier swaps per entity.
	DebugTierLogging bool `yaml:"debugTierLogging"`
}

// DefaultSettings returns the default render settings.
func DefaultSettings() *RenderSettings {
	return &RenderSettings{
		ChromaTolerance: render.DefaultTolerance,
		MaxVideoSprites: sprites.DefaultMaxVideoSprites,
	}
}

// Storage location inside the gdata object store.
const (
	settingsObject   = "settings"
	settingsProperty = "render"
)

// SettingsManager loads and saves render settings through gdata's
// cross-platform storage, serialized as a YAML blob. A nil gdata
// manager puts it in degraded mode: settings live in memory only.
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *RenderSettings
}

// NewSettingsManager creates a settings manager and attempts to load
// previously saved settings. Load failure is not fatal; defaults are
// used instead.
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: failed to load settings: %v (using defaults)", err)
	}
	return sm
}

// Settings returns the current settings. The returned pointer is
// live; call Save after mutating it.
func (sm *SettingsManager) Settings() *RenderSettings {
	return sm.settings
}

// Load reads settings from storage. Missing storage or a missing
// saved blob leaves the defaults in place.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}
	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	sm.settings = settings
	return nil
}

// Save writes the current settings to storage. In degraded mode this
// is a logged no-op.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		log.Printf("[SettingsManager] no storage backend, settings not persisted")
		return nil
	}
	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
