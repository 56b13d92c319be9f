package sprites

import (
	"log"

	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/render"
)

// DefaultMaxVideoSprites bounds how many entities may hold decoded
// clip sets at once. Decoded clips are the most expensive resource in
// this module, so the bound holds regardless of how many creatures
// crowd the camera.
const DefaultMaxVideoSprites = 5

// poolEntry wraps a live VideoSprite with its recency stamp.
type poolEntry struct {
	sprite   *VideoSprite
	lastUsed uint64
}

// PoolManager maintains at most maxSprites live VideoSprite
// instances, keyed by entity id. Every access refreshes the entry's
// recency stamp; when the pool is full, admitting a new entity
// disposes and evicts the least-recently-used entry first.
//
// Pool exhaustion is never an error condition, just deterministic
// eviction.
type PoolManager struct {
	maxSprites int
	entries    map[string]*poolEntry
	chroma     *render.ChromaProcessor

	// clock is a monotonic recency stamp, bumped on every access.
	// A counter instead of wall time keeps eviction order exact even
	// for accesses within the same frame.
	clock uint64
}

// NewPoolManager creates a pool bounded to maxSprites live video
// sprites (0 means DefaultMaxVideoSprites). chroma is the shared GPU
// color-key processor handed to every sprite the pool creates.
func NewPoolManager(maxSprites int, chroma *render.ChromaProcessor) *PoolManager {
	if maxSprites <= 0 {
		maxSprites = DefaultMaxVideoSprites
	}
	return &PoolManager{
		maxSprites: maxSprites,
		entries:    make(map[string]*poolEntry),
		chroma:     chroma,
	}
}

// Acquire returns the entity's video sprite, creating it (and
// evicting the LRU entry if the pool is full) when absent. The
// entry's recency stamp is refreshed on every call.
func (p *PoolManager) Acquire(entityID string, rec *creature.Record) *VideoSprite {
	p.clock++
	if e, ok := p.entries[entityID]; ok {
		e.lastUsed = p.clock
		return e.sprite
	}

	if len(p.entries) >= p.maxSprites {
		p.evictLRU()
	}
	sprite := NewVideoSprite(entityID, rec, p.chroma)
	p.entries[entityID] = &poolEntry{sprite: sprite, lastUsed: p.clock}
	return sprite
}

// Contains reports whether an entity currently holds a pool slot,
// without refreshing its recency.
func (p *PoolManager) Contains(entityID string) bool {
	_, ok := p.entries[entityID]
	return ok
}

// Len returns the number of live video sprites.
func (p *PoolManager) Len() int {
	return len(p.entries)
}

// Advance steps every pooled sprite's clip playback.
func (p *PoolManager) Advance(dt float64) {
	for _, e := range p.entries {
		e.sprite.Advance(dt)
	}
}

// Release disposes and removes one entity's sprite, if pooled.
func (p *PoolManager) Release(entityID string) {
	if e, ok := p.entries[entityID]; ok {
		e.sprite.dispose()
		delete(p.entries, entityID)
	}
}

// DisposeAll releases every pooled sprite, e.g. on level change.
func (p *PoolManager) DisposeAll() {
	for id, e := range p.entries {
		e.sprite.dispose()
		delete(p.entries, id)
	}
}

// evictLRU disposes and removes the entry with the oldest recency
// stamp.
func (p *PoolManager) evictLRU() {
	var victim string
	var oldest uint64
	first := true
	for id, e := range p.entries {
		if first || e.lastUsed < oldest {
			victim = id
			oldest = e.lastUsed
			first = false
		}
	}
	if first {
		return
	}
	log.Printf("[VideoPool] evicting %s (pool full at %d)", victim, p.maxSprites)
	p.entries[victim].sprite.dispose()
	delete(p.entries, victim)
}
