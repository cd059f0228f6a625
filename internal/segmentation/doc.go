// Package segmentation turns semantic segmentation output into recolor masks.
//
// The segmentation model itself is not part of this repository. It is
// reached through the Segmenter interface, which a caller injects together
// with the class indices its model uses for walls and buildings. A model that
// is not configured is reported as ErrNotConfigured rather than failing
// lazily on first use.
//
// Label maps can also be supplied directly, for example as a grayscale PNG
// in which each pixel value is a class index. MaskFromLabels picks the
// paintable class for a scene, resizes the selection to the photo, and
// feathers the edge so the repaint fades in over a few pixels.
package segmentation
