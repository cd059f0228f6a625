package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache keeps decoded photos and masks keyed by file path.
//
// Photos are decoded with EXIF auto-orientation so that a phone picture of a
// facade comes out upright, matching what the user saw when taking it. Masks
// and label maps go through the same cache; they carry no EXIF data and are
// returned as stored.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are PNG, JPEG,
//     GIF and TIFF.
//
// Returns:
//   - image.Image: The decoded image, rotated upright when the file carries an
//     EXIF orientation tag. Gray masks decode as *image.Gray.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached under the exact path string provided. Different
// spellings of the same path are cached separately.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, GIF or TIFF image
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	photo, err := cache.Load("/photos/house.jpg")
//	if err != nil {
//	    return err
//	}
//	buf := imaging.ToBuffer(imaging.FitMaxSide(photo, 1600))
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict drops the image cached under path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo describes a photo before it is recolored.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`

	// Grayscale is true for single-channel files, which is what mask and
	// label-map inputs are expected to be.
	Grayscale bool `json:"grayscale"`

	// Downscaled is true when the longest side exceeds maxSide and the photo
	// would be shrunk before recoloring.
	Downscaled bool `json:"downscaled"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its metadata.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the photo, mask or label map.
//   - maxSide: The service's longest-side limit, used only to fill in
//     Downscaled. Pass 0 for no limit.
//
// Returns:
//   - *ImageInfo: Size, format, grayscale flag, downscale flag and file size.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
//
// # Format Detection
//
// The format comes from the file extension ("png", "jpeg", "gif", "tiff",
// "bmp"). Other extensions are reported as the lower-cased extension without
// the dot, and files without one as "unknown".
//
// # Errors
//
//   - Returns error if the file cannot be loaded (see ImageCache.Load)
//   - Returns error if the file cannot be stat'd after loading
func LoadImageInfo(cache *ImageCache, path string, maxSide int) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	} else if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		format = strings.TrimPrefix(ext, ".")
	}

	grayscale := false
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		grayscale = true
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        format,
		Grayscale:     grayscale,
		Downscaled:    maxSide > 0 && max(b.Dx(), b.Dy()) > maxSide,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult holds just the size of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the width and height of the image at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
