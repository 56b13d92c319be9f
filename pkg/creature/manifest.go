package creature

import (
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Manifest is the full set of creature records known to a session,
// loaded from a YAML file supplied by the persistence collaborator.
type Manifest struct {
	Creatures []Record `yaml:"creatures"`

	byID map[string]*Record
}

// LoadManifest reads and parses a creature manifest.
//
// Malformed individual records degrade rather than fail: a record
// with no usable art is logged and skipped, so one bad creature never
// takes the whole manifest down (missing art renders as placeholder
// at a higher layer).
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read creature manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest YAML from memory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse creature manifest: %w", err)
	}
	m.index()
	return &m, nil
}

// index validates records and builds the ID lookup. Invalid records
// are dropped with a warning.
func (m *Manifest) index() {
	m.byID = make(map[string]*Record, len(m.Creatures))
	seen := make(map[string]bool, len(m.Creatures))
	kept := m.Creatures[:0]
	for i := range m.Creatures {
		rec := &m.Creatures[i]
		if rec.ID == "" {
			log.Printf("[Manifest] skipping record %d: missing id", i)
			continue
		}
		if rec.SpriteURL == "" && len(rec.Stages) == 0 && !rec.HasClips() {
			log.Printf("[Manifest] skipping %s: no sprite, stages, or clips", rec.ID)
			continue
		}
		if seen[rec.ID] {
			log.Printf("[Manifest] skipping duplicate id %s", rec.ID)
			continue
		}
		seen[rec.ID] = true
		// Stages must be ordered smallest first for StageFor's scan.
		sort.SliceStable(rec.Stages, func(a, b int) bool {
			return rec.Stages[a].MinSize < rec.Stages[b].MinSize
		})
		kept = append(kept, *rec)
	}
	m.Creatures = kept
	for i := range m.Creatures {
		m.byID[m.Creatures[i].ID] = &m.Creatures[i]
	}
}

// Get returns the record for a creature ID, or nil when unknown.
func (m *Manifest) Get(id string) *Record {
	return m.byID[id]
}

// IDs returns all creature IDs in manifest order.
func (m *Manifest) IDs() []string {
	ids := make([]string, 0, len(m.Creatures))
	for i := range m.Creatures {
		ids = append(ids, m.Creatures[i].ID)
	}
	return ids
}
