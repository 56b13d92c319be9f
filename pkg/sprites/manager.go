package sprites

import (
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/lod"
	"github.com/petridish/menagerie/pkg/render"
)

// cacheEntry is one creature's processed raster surface plus the
// bookkeeping needed to detect when it must be replaced.
type cacheEntry struct {
	surface   *ebiten.Image
	sourceURL string
	tier      lod.Tier
	stage     int
	version   uint64
}

// pendingLoad records what an in-flight request is loading, so a
// frame-by-frame EnsureSprite does not re-request work already on its
// way.
type pendingLoad struct {
	version uint64
	url     string
	tier    lod.Tier
	stage   int
}

// loadResult carries a finished background load back to the game
// loop. The decoded raster stays a plain image until it is applied;
// GPU surface creation happens on the game-loop side.
type loadResult struct {
	entityID string
	version  uint64
	url      string
	tier     lod.Tier
	stage    int
	img      *image.NRGBA
	err      error
}

// Manager loads, resolution-selects, chroma-keys, and caches
// per-entity raster surfaces. It is the arbiter for stale-load races:
// every load request stamps the entity's version counter, and a
// completed load is applied only if its stamp is still the latest
// requested for that entity. In-flight loads are never aborted, just
// ignored when stale.
type Manager struct {
	entries   map[string]*cacheEntry
	versions  map[string]uint64
	inflight  map[string]pendingLoad
	completed chan loadResult

	tolerance float64
	debugTier bool

	// fetch is swappable for tests.
	fetch func(url string, bust bool) ([]byte, error)
}

// NewManager creates an empty sprite cache with the given chroma-key
// tolerance (0 means render.DefaultTolerance).
func NewManager(tolerance float64) *Manager {
	if tolerance == 0 {
		tolerance = render.DefaultTolerance
	}
	return &Manager{
		entries:   make(map[string]*cacheEntry),
		versions:  make(map[string]uint64),
		inflight:  make(map[string]pendingLoad),
		completed: make(chan loadResult, 32),
		tolerance: tolerance,
		fetch:     fetchBytes,
	}
}

// SetTolerance updates the chroma-key tolerance used for subsequent
// loads. Cached surfaces keep the tolerance they were processed with
// until invalidated.
func (m *Manager) SetTolerance(tolerance float64) {
	m.tolerance = tolerance
}

// SetDebugTierLogging toggles logging of resolution-tier swaps, used
// to diagnose mipmap-policy thrash at tier boundaries.
func (m *Manager) SetDebugTierLogging(on bool) {
	m.debugTier = on
}

// Lookup returns the cached processed surface for an entity, or nil
// when nothing is cached yet. Callers fall back to a placeholder (or
// simply skip the draw) rather than waiting.
func (m *Manager) Lookup(entityID string) *ebiten.Image {
	if e := m.entries[entityID]; e != nil {
		return e.surface
	}
	return nil
}

// EnsureSprite makes sure the cached surface for an entity matches
// the resolution tier and growth stage implied by its current
// on-screen size, requesting an asynchronous (re)load when it does
// not. It never blocks; until the load lands, Lookup keeps returning
// the previous surface.
func (m *Manager) EnsureSprite(entityID string, rec *creature.Record, screenSize float64) {
	if rec == nil {
		return
	}
	tier := lod.SpriteTier(screenSize)
	stage, _, _ := rec.StageFor(screenSize)
	url, preGenerated := rec.SpriteURLFor(screenSize, tier)
	if url == "" {
		return
	}

	if e := m.entries[entityID]; e != nil && e.sourceURL == url && e.tier == tier && e.stage == stage {
		return
	}
	// A matching request already in flight makes a new one redundant.
	if p, ok := m.inflight[entityID]; ok && p.version == m.versions[entityID] &&
		p.url == url && p.tier == tier && p.stage == stage {
		return
	}
	m.requestLoad(entityID, url, tier, stage, preGenerated, false)
}

// Reload fetches the entity's current sprite again with
// cache-defeating semantics, for assets known to have just changed
// server-side. All cached state for the entity is bypassed.
func (m *Manager) Reload(entityID string, rec *creature.Record, screenSize float64) {
	if rec == nil {
		return
	}
	tier := lod.SpriteTier(screenSize)
	stage, _, _ := rec.StageFor(screenSize)
	url, preGenerated := rec.SpriteURLFor(screenSize, tier)
	if url == "" {
		return
	}
	m.requestLoad(entityID, url, tier, stage, preGenerated, true)
}

// requestLoad bumps the entity's version and starts the background
// fetch/decode/key pipeline for it.
func (m *Manager) requestLoad(entityID, url string, tier lod.Tier, stage int, preGenerated, bust bool) {
	m.versions[entityID]++
	version := m.versions[entityID]
	m.inflight[entityID] = pendingLoad{version: version, url: url, tier: tier, stage: stage}

	tolerance := m.tolerance
	fetch := m.fetch
	scale := 1.0
	if !preGenerated {
		scale = lod.TierScale(tier)
	}

	go func() {
		res := loadResult{entityID: entityID, version: version, url: url, tier: tier, stage: stage}
		data, err := fetch(url, bust)
		if err != nil {
			res.err = err
			m.completed <- res
			return
		}
		img, err := decodeImage(data)
		if err != nil {
			res.err = err
			m.completed <- res
			return
		}
		keyed := render.RemoveBackground(img, tolerance)
		if scale < 1 {
			keyed = downscale(keyed, scale)
		}
		res.img = keyed
		m.completed <- res
	}()
}

// Update drains completed background loads and applies the ones that
// are still current. Called once per frame from the game loop; this
// is the only place cache entries are written, which is what keeps
// the lock-free single-thread contract honest.
func (m *Manager) Update() {
	for {
		select {
		case res := <-m.completed:
			m.apply(res)
		default:
			return
		}
	}
}

// apply installs one load result, or discards it when it is stale or
// failed. Failures keep the previous surface; a permanently failing
// asset simply leaves the entity rendering its last good state.
func (m *Manager) apply(res loadResult) {
	if res.version != m.versions[res.entityID] {
		// A newer request for this entity superseded us.
		return
	}
	delete(m.inflight, res.entityID)
	if res.err != nil {
		log.Printf("[SpriteManager] load failed for %s (%s): %v", res.entityID, res.url, res.err)
		return
	}

	if m.debugTier {
		if prev := m.entries[res.entityID]; prev != nil && prev.tier != res.tier {
			log.Printf("[SpriteManager] %s tier swap %s -> %s (%s)", res.entityID, prev.tier, res.tier, res.url)
		}
	}
	m.entries[res.entityID] = &cacheEntry{
		surface:   ebiten.NewImageFromImage(res.img),
		sourceURL: res.url,
		tier:      res.tier,
		stage:     res.stage,
		version:   res.version,
	}
}

// Invalidate bumps an entity's version counter, dropping any
// in-flight load and forcing the next EnsureSprite to reload.
func (m *Manager) Invalidate(entityID string) {
	m.versions[entityID]++
	delete(m.entries, entityID)
	delete(m.inflight, entityID)
}

// Clear removes one entity's cached surface.
func (m *Manager) Clear(entityID string) {
	m.Invalidate(entityID)
}

// ClearAll empties the cache, e.g. on level change. Version counters
// survive so in-flight loads from before the clear stay discardable.
func (m *Manager) ClearAll() {
	for id := range m.entries {
		delete(m.entries, id)
	}
	for id := range m.inflight {
		delete(m.inflight, id)
	}
	for id := range m.versions {
		m.versions[id]++
	}
}

// downscale resizes a keyed sprite by factor using bilinear
// filtering, for tiers without pre-generated variants.
func downscale(src *image.NRGBA, factor float64) *image.NRGBA {
	b := src.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
