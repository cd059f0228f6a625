// Package imaging is the file-format boundary around the recolor engine.
//
// The engine in package recolor works on raw RGB buffers and never touches
// files. This package does everything on either side of that call:
//
//   - decoding photos, masks and label maps (PNG, JPEG, GIF, TIFF) with EXIF
//     auto-orientation, and caching them by path
//   - shrinking oversized photos to the service's maximum side length
//   - converting between image.Image and recolor.Image / recolor.RawMask
//   - sampling colors and finding the dominant colors of the paintable area
//   - encoding results as JPEG or PNG, optionally base64 for JSON transport
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left of the image bounds.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless
// and never modify their inputs.
package imaging
