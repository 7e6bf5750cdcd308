package pixels

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"sync"
)

// ImageCache provides thread-safe caching of raw image file contents.
//
// Hashing decodes the same file once per tier, so the cache keeps the encoded
// bytes keyed by path and leaves decoding to the Source. Different paths to
// the same file (relative vs absolute) are separate entries.
//
// Cached data remains in memory until Evict or Clear is called.
type ImageCache struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		files: make(map[string][]byte),
	}
}

// Load returns the contents of path, reading it from disk on first use.
//
// Callers must not modify the returned slice.
func (c *ImageCache) Load(path string) ([]byte, error) {
	c.mu.RLock()
	if data, ok := c.files[path]; ok {
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidInput, path)
	}

	c.mu.Lock()
	c.files[path] = data
	c.mu.Unlock()

	return data, nil
}

// Clear removes all entries from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.files = make(map[string][]byte)
	c.mu.Unlock()
}

// Evict removes the entry for path. Missing paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.files, path)
	c.mu.Unlock()
}

// Len returns the number of cached files.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// ImageInfo contains metadata about an encoded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by image.DecodeConfig,
	// e.g. "png", "jpeg", "gif", "webp", "bmp" or "tiff".
	Format string `json:"format"`

	// SizeBytes is the length of the encoded data.
	SizeBytes int `json:"size_bytes"`
}

// LoadImageInfo reads only the image header of data and reports its
// dimensions and format.
func LoadImageInfo(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidInput)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image header: %v", ErrInvalidInput, err)
	}
	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: len(data),
	}, nil
}
