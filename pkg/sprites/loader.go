// Package sprites owns the expensive per-creature render resources:
// the versioned cache of chroma-keyed raster surfaces, the per-action
// clip resources, and the bounded LRU pool limiting how many clip
// sets decode concurrently.
//
// Thread Safety Note: like the rest of this module, the caches here
// use plain Go maps and are touched only from the game-loop
// goroutine. Loads run on background goroutines but deliver their
// results through a queue that the game loop drains; results are
// applied (or discarded as stale) only on the game-loop side, so no
// locking is needed.
package sprites

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// fetchBytes retrieves an asset by URL. http(s) URLs are fetched with
// a plain GET; anything else is treated as a local file path (used by
// tests and offline tools).
//
// bust appends a cache-defeating query parameter for assets known to
// have just changed server-side, so intermediate caches cannot serve
// the stale version.
func fetchBytes(url string, bust bool) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		if bust {
			sep := "?"
			if strings.Contains(url, "?") {
				sep = "&"
			}
			url = fmt.Sprintf("%s%sreload=%d", url, sep, time.Now().UnixNano())
		}
		resp, err := http.Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: status %s", url, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", url, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", url, err)
	}
	return data, nil
}

// decodeImage decodes a still raster image from memory.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
