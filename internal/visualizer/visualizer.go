// Package visualizer runs the full recolor flow for one photo: downscale,
// obtain a paintable mask, recolor, encode and store the result.
package visualizer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/facade-recolor/internal/config"
	imgutil "github.com/ironsheep/facade-recolor/internal/imaging"
	"github.com/ironsheep/facade-recolor/internal/recolor"
	"github.com/ironsheep/facade-recolor/internal/segmentation"
	"github.com/ironsheep/facade-recolor/internal/storage"
)

// KeyPrefix is the storage folder for rendered results.
const KeyPrefix = "visualizer"

// Request describes one recolor job. At most one of Mask and Labels should
// be set; when both are nil the configured Segmenter is used.
type Request struct {
	Image image.Image

	// Mask is a gray coverage mask at any size; it is stretched to the photo.
	Mask image.Image
	// Labels is a class index map at any size.
	Labels *segmentation.LabelMap

	Scene    segmentation.Scene
	ColorHex string

	// Alpha overrides the configured strength when non-nil.
	Alpha *float64
}

// Result is a rendered recolor.
type Result struct {
	// URL points at the stored JPEG, or is a data URL when no store is set.
	URL      string  `json:"imageUrl"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Coverage float64 `json:"coverage"`
	JPEG     []byte  `json:"-"`
}

// Visualizer holds the long-lived dependencies of the recolor flow. A nil
// Store returns results inline; a nil Segmenter requires every request to
// carry a mask or labels.
type Visualizer struct {
	Store     storage.Store
	Segmenter segmentation.Segmenter
	Classes   segmentation.Classes

	// MaxSide bounds the longest side of the photo; 0 disables downscaling.
	MaxSide     int
	Params      recolor.Params
	JPEGQuality int
}

// New returns a Visualizer with default parameters and no model or store.
func New() *Visualizer {
	return &Visualizer{
		Classes:     segmentation.DefaultClasses(),
		Params:      recolor.DefaultParams(),
		JPEGQuality: imgutil.DefaultJPEGQuality,
	}
}

// FromConfig builds a Visualizer from process settings. A non-empty
// OutputDir enables a LocalStore; the segmentation model is left unset.
func FromConfig(cfg *config.Config) (*Visualizer, error) {
	v := &Visualizer{
		Classes:     cfg.Classes(),
		MaxSide:     cfg.MaxImageSide,
		Params:      cfg.Params(),
		JPEGQuality: cfg.JPEGQuality,
	}
	if cfg.OutputDir != "" {
		store, err := storage.NewLocalStore(cfg.OutputDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		v.Store = store
	}
	return v, nil
}

// Visualize renders req. Errors from the recolor engine keep their kind
// (see recolor.KindOf).
func (v *Visualizer) Visualize(ctx context.Context, req Request) (*Result, error) {
	if req.Image == nil || req.Image.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no image supplied", recolor.ErrInvalidImage)
	}

	params := v.Params
	if req.Alpha != nil {
		params.Alpha = *req.Alpha
	}
	// Reject bad input before running the model.
	if _, err := recolor.ParseHexColor(req.ColorHex); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	photo := imgutil.FitMaxSide(req.Image, v.MaxSide)
	w, h := photo.Bounds().Dx(), photo.Bounds().Dy()

	mask, err := v.mask(ctx, req, photo)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := recolor.Recolor(imgutil.ToBuffer(photo), mask, req.ColorHex, params)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := imgutil.EncodeJPEG(imgutil.FromBuffer(out), v.JPEGQuality)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Width:    w,
		Height:   h,
		Coverage: recolor.Coverage(recolor.NormalizeMask(mask)),
		JPEG:     data,
	}

	if v.Store == nil {
		res.URL = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
		return res, nil
	}

	url, err := v.Store.Put(ctx, storage.NewKey(KeyPrefix, "jpg"), bytes.NewReader(data), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("storing result: %w", err)
	}
	res.URL = url
	return res, nil
}

// mask returns the coverage mask for photo from the first available source.
func (v *Visualizer) mask(ctx context.Context, req Request, photo image.Image) (*recolor.RawMask, error) {
	w, h := photo.Bounds().Dx(), photo.Bounds().Dy()
	src := v.MaskSource()

	switch {
	case req.Mask != nil:
		if req.Mask.Bounds().Empty() {
			return nil, fmt.Errorf("%w: empty mask image", recolor.ErrInvalidMask)
		}
		m := req.Mask
		if m.Bounds().Dx() != w || m.Bounds().Dy() != h {
			m = imaging.Resize(m, w, h, imaging.Linear)
		}
		return imgutil.MaskFromImage(m), nil

	case req.Labels != nil:
		m, err := src.FromLabels(req.Labels, req.Scene, w, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidMask, err)
		}
		return m, nil
	}

	m, err := src.Mask(ctx, photo, req.Scene)
	if errors.Is(err, segmentation.ErrNotConfigured) {
		return nil, fmt.Errorf("%w: no mask supplied and %v", recolor.ErrInvalidMask, err)
	}
	return m, err
}

// MaskSource returns the mask builder for the configured model and classes.
func (v *Visualizer) MaskSource() *segmentation.MaskSource {
	classes := v.Classes
	if classes == (segmentation.Classes{}) {
		classes = segmentation.DefaultClasses()
	}
	return segmentation.NewMaskSource(v.Segmenter, classes)
}
