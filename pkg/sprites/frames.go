package sprites

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/petridish/menagerie/pkg/render"
)

// frameSequenceFPS is the playback rate for extracted frame
// sequences; the extraction pipeline emits stills at this rate.
const frameSequenceFPS = 12.0

// FrameSequence plays a pre-extracted sequence of still images for
// one action. Unlike clips, the stills are chroma-keyed once on the
// CPU at load time, so drawing them costs the same as any cached
// sprite.
type FrameSequence struct {
	frames  []*ebiten.Image
	elapsed float64
	loaded  bool

	completed chan []*ebiten.Image
}

// LoadFrameSequence starts fetching and keying every still in urls on
// a background goroutine. The sequence is playable (empty) right away
// and fills in when the load lands.
func LoadFrameSequence(urls []string, tolerance float64) *FrameSequence {
	fs := &FrameSequence{completed: make(chan []*ebiten.Image, 1)}
	if len(urls) == 0 {
		fs.loaded = true
		return fs
	}
	if tolerance == 0 {
		tolerance = render.DefaultTolerance
	}

	go func() {
		frames := make([]*ebiten.Image, 0, len(urls))
		for _, url := range urls {
			img, err := loadKeyedStill(url, tolerance)
			if err != nil {
				log.Printf("[FrameSequence] %v", err)
				continue
			}
			frames = append(frames, img)
		}
		fs.completed <- frames
	}()
	return fs
}

// loadKeyedStill fetches, decodes, and chroma-keys one still.
func loadKeyedStill(url string, tolerance float64) (*ebiten.Image, error) {
	data, err := fetchBytes(url, false)
	if err != nil {
		return nil, fmt.Errorf("frame fetch failed: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("frame decode failed (%s): %w", url, err)
	}
	return ebiten.NewImageFromImage(render.RemoveBackground(img, tolerance)), nil
}

// Advance steps playback and applies a finished load.
func (fs *FrameSequence) Advance(dt float64) {
	if !fs.loaded {
		select {
		case frames := <-fs.completed:
			fs.frames = frames
			fs.loaded = true
		default:
		}
	}
	fs.elapsed += dt
}

// Ready reports whether at least one frame is available.
func (fs *FrameSequence) Ready() bool {
	return len(fs.frames) > 0
}

// Frame returns the current frame of the looping sequence, or nil
// while loading.
func (fs *FrameSequence) Frame() *ebiten.Image {
	if len(fs.frames) == 0 {
		return nil
	}
	idx := int(fs.elapsed*frameSequenceFPS) % len(fs.frames)
	return fs.frames[idx]
}

// Rewind restarts the sequence from its first frame.
func (fs *FrameSequence) Rewind() {
	fs.elapsed = 0
}

// Dispose releases the decoded frames.
func (fs *FrameSequence) Dispose() {
	for _, f := range fs.frames {
		f.Deallocate()
	}
	fs.frames = nil
}
