// Package creature defines the data contract this module consumes
// from the art-generation and persistence collaborators: per-creature
// sprite URLs, resolution variants, growth-stage sprite sets, and
// per-action clip metadata. Records are data only; all rendering
// decisions live in pkg/lod and pkg/sprites.
package creature

import "github.com/petridish/menagerie/pkg/lod"

// VariantSet holds pre-generated resolution variants of one sprite.
// Any field may be empty; the sprite manager falls back to the base
// sprite and downscales it.
type VariantSet struct {
	High   string `yaml:"high"`
	Medium string `yaml:"medium"`
	Low    string `yaml:"low"`
}

// URL returns the variant for a tier, or "" when the record does not
// carry one.
func (v *VariantSet) URL(tier lod.Tier) string {
	if v == nil {
		return ""
	}
	switch tier {
	case lod.TierHigh:
		return v.High
	case lod.TierMedium:
		return v.Medium
	default:
		return v.Low
	}
}

// Clip describes one pre-rendered video clip for an action.
type Clip struct {
	URL string `yaml:"url"`

	// Loop declares the clip's playback semantics: looping clips
	// (idle, fast swim) repeat; non-looping clips play once and fire
	// a completion callback.
	Loop bool `yaml:"loop"`

	// Duration in seconds, informational (decoded frame delays are
	// authoritative).
	Duration float64 `yaml:"duration"`
}

// GrowthStage binds a sprite set to a creature size range. Stages are
// listed smallest first; a stage applies from its MinSize up to the
// next stage's MinSize.
type GrowthStage struct {
	MinSize   float64     `yaml:"minSize"`
	SpriteURL string      `yaml:"sprite"`
	Variants  *VariantSet `yaml:"variants"`
}

// Record is one creature's art manifest entry.
type Record struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name"`
	SpriteURL string      `yaml:"sprite"`
	Variants  *VariantSet `yaml:"variants"`

	// Stages are growth-stage sprite overrides, optional.
	Stages []GrowthStage `yaml:"stages"`

	// Clips maps action names to pre-rendered clips, optional.
	Clips map[string]Clip `yaml:"clips"`

	// FrameSets maps action names to extracted frame-sequence URLs,
	// optional.
	FrameSets map[string][]string `yaml:"frames"`

	// Actions lists the actions this creature supports, in declared
	// order. The first entry is the fallback default action.
	Actions []string `yaml:"actions"`
}

// HasClips reports whether any clip URL is present.
func (r *Record) HasClips() bool {
	return len(r.Clips) > 0
}

// HasFrames reports whether any extracted frame set is present.
func (r *Record) HasFrames() bool {
	return len(r.FrameSets) > 0
}

// StageFor resolves the growth stage for a creature size. It returns
// the stage index (-1 when no stage applies), the sprite URL, and the
// variant set to use, falling back to the record's base sprite when
// the creature has no stages or is below every stage's MinSize.
func (r *Record) StageFor(size float64) (int, string, *VariantSet) {
	idx := -1
	for i, st := range r.Stages {
		if size >= st.MinSize {
			idx = i
		}
	}
	if idx < 0 {
		return -1, r.SpriteURL, r.Variants
	}
	st := r.Stages[idx]
	url := st.SpriteURL
	variants := st.Variants
	if url == "" {
		url = r.SpriteURL
	}
	if variants == nil {
		variants = r.Variants
	}
	return idx, url, variants
}

// SpriteURLFor picks the best URL for a tier at a given size: the
// stage-resolved variant when present, otherwise the stage (or base)
// sprite. The second result is true when the URL is a pre-generated
// variant, meaning no downscaling is needed.
func (r *Record) SpriteURLFor(size float64, tier lod.Tier) (string, bool) {
	_, base, variants := r.StageFor(size)
	if u := variants.URL(tier); u != "" {
		return u, true
	}
	return base, false
}
