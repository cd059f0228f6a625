package visualizer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/ironsheep/facade-recolor/internal/config"
	imgutil "github.com/ironsheep/facade-recolor/internal/imaging"
	"github.com/ironsheep/facade-recolor/internal/recolor"
	"github.com/ironsheep/facade-recolor/internal/segmentation"
	"github.com/ironsheep/facade-recolor/internal/storage"
)

type fakeSegmenter struct {
	labels *segmentation.LabelMap
	err    error
	calls  int
}

func (f *fakeSegmenter) Segment(ctx context.Context, img image.Image) (*segmentation.LabelMap, error) {
	f.calls++
	return f.labels, f.err
}

type fakeStore struct {
	key         string
	contentType string
	data        []byte
	err         error
}

func (f *fakeStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.data = key, contentType, data
	return "https://cdn.example.com/" + key, nil
}

// photo returns a uniform light gray image.
func photo(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 200, 200, 255
	}
	return img
}

// leftHalfLabels marks the left half of a w x h map with class.
func leftHalfLabels(w, h int, class uint8) *segmentation.LabelMap {
	lm := &segmentation.LabelMap{Width: w, Height: h, Labels: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			lm.Labels[y*w+x] = class
		}
	}
	return lm
}

func leftHalfMask(w, h int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			m.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return m
}

func decodeResult(t *testing.T, res *Result) image.Image {
	t.Helper()
	img, err := imgutil.Decode(res.JPEG)
	if err != nil {
		t.Fatalf("result JPEG does not decode: %v", err)
	}
	return img
}

func TestVisualize_ExplicitMaskInline(t *testing.T) {
	v := New()

	res, err := v.Visualize(context.Background(), Request{
		Image:    photo(40, 20),
		Mask:     leftHalfMask(40, 20),
		ColorHex: "#3366CC",
	})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}

	if !strings.HasPrefix(res.URL, "data:image/jpeg;base64,") {
		t.Errorf("URL should be inline without a store, got %.40s", res.URL)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Errorf("size: got %dx%d, want 40x20", res.Width, res.Height)
	}
	if res.Coverage != 0.5 {
		t.Errorf("Coverage: got %v, want 0.5", res.Coverage)
	}

	img := decodeResult(t, res)
	r, g, b, _ := img.At(5, 10).RGBA()
	if b>>8 <= r>>8 || b>>8 <= g>>8 {
		t.Errorf("masked pixel should lean blue, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(35, 10).RGBA()
	for _, c := range []uint32{r >> 8, g >> 8, b >> 8} {
		if c < 190 || c > 210 {
			t.Errorf("unmasked pixel should stay gray, got (%d,%d,%d)", r>>8, g>>8, b>>8)
			break
		}
	}
}

func TestVisualize_MaskStretchedToPhoto(t *testing.T) {
	v := New()

	res, err := v.Visualize(context.Background(), Request{
		Image:    photo(40, 20),
		Mask:     leftHalfMask(8, 4),
		ColorHex: "#3366CC",
	})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}
	if res.Coverage < 0.4 || res.Coverage > 0.6 {
		t.Errorf("Coverage: got %v, want about 0.5", res.Coverage)
	}
}

func TestVisualize_LabelsStored(t *testing.T) {
	store := &fakeStore{}
	v := New()
	v.Store = store

	res, err := v.Visualize(context.Background(), Request{
		Image:    photo(40, 20),
		Labels:   leftHalfLabels(10, 5, 2),
		Scene:    segmentation.SceneExterior,
		ColorHex: "#AA3322",
	})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}

	if !strings.HasPrefix(store.key, KeyPrefix+"/") || !strings.HasSuffix(store.key, ".jpg") {
		t.Errorf("stored key = %q", store.key)
	}
	if store.contentType != "image/jpeg" {
		t.Errorf("content type = %q", store.contentType)
	}
	if res.URL != "https://cdn.example.com/"+store.key {
		t.Errorf("URL = %q", res.URL)
	}
	if string(store.data) != string(res.JPEG) {
		t.Error("stored bytes differ from returned JPEG")
	}
}

func TestVisualize_SegmenterAndDownscale(t *testing.T) {
	seg := &fakeSegmenter{labels: leftHalfLabels(16, 8, 12)}
	v := New()
	v.Segmenter = seg
	v.MaxSide = 32

	res, err := v.Visualize(context.Background(), Request{
		Image:    photo(64, 32),
		Scene:    segmentation.SceneInterior,
		ColorHex: "#22AA44",
	})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}
	if seg.calls != 1 {
		t.Errorf("segmenter calls = %d, want 1", seg.calls)
	}
	if res.Width != 32 || res.Height != 16 {
		t.Errorf("size: got %dx%d, want 32x16", res.Width, res.Height)
	}
	if b := decodeResult(t, res).Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("encoded size: got %v", b)
	}
}

func TestVisualize_AlphaOverride(t *testing.T) {
	zero := 0.0
	v := New()

	res, err := v.Visualize(context.Background(), Request{
		Image:    photo(20, 20),
		Mask:     leftHalfMask(20, 20),
		ColorHex: "#FF0000",
		Alpha:    &zero,
	})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}
	r, g, b, _ := decodeResult(t, res).At(2, 10).RGBA()
	if d := int(r>>8) - int(g>>8); d > 6 || d < -6 || int(b>>8)-int(g>>8) > 6 {
		t.Errorf("alpha 0 should leave the photo unchanged, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestVisualize_Errors(t *testing.T) {
	badAlpha := 1.5
	tiny := image.NewGray(image.Rect(0, 0, 20, 20))
	tiny.SetGray(0, 0, color.Gray{Y: 255})

	tests := []struct {
		name string
		v    *Visualizer
		req  Request
		want error
	}{
		{"nil image", New(), Request{ColorHex: "#FFFFFF", Mask: leftHalfMask(4, 4)}, recolor.ErrInvalidImage},
		{"bad color", New(), Request{Image: photo(4, 4), Mask: leftHalfMask(4, 4), ColorHex: "blue"}, recolor.ErrInvalidColorFormat},
		{"bad alpha", New(), Request{Image: photo(4, 4), Mask: leftHalfMask(4, 4), ColorHex: "#FFFFFF", Alpha: &badAlpha}, recolor.ErrInvalidParameter},
		{"no mask source", New(), Request{Image: photo(4, 4), ColorHex: "#FFFFFF"}, recolor.ErrInvalidMask},
		{"empty mask", New(), Request{Image: photo(4, 4), Mask: image.NewGray(image.Rectangle{}), ColorHex: "#FFFFFF"}, recolor.ErrInvalidMask},
		{"bad labels", New(), Request{Image: photo(4, 4), Labels: &segmentation.LabelMap{Width: 2, Height: 2}, ColorHex: "#FFFFFF"}, recolor.ErrInvalidMask},
		{"low coverage", New(), Request{Image: photo(20, 20), Mask: tiny, ColorHex: "#FFFFFF"}, recolor.ErrInsufficientCoverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.v.Visualize(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVisualize_SegmenterFailure(t *testing.T) {
	boom := errors.New("model crashed")
	v := New()
	v.Segmenter = &fakeSegmenter{err: boom}

	_, err := v.Visualize(context.Background(), Request{Image: photo(8, 8), ColorHex: "#FFFFFF"})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestVisualize_StoreFailure(t *testing.T) {
	v := New()
	v.Store = &fakeStore{err: errors.New("disk full")}

	_, err := v.Visualize(context.Background(), Request{Image: photo(8, 8), Mask: leftHalfMask(8, 8), ColorHex: "#FFFFFF"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error = %v, want store failure", err)
	}
}

func TestVisualize_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seg := &fakeSegmenter{labels: leftHalfLabels(8, 8, 12)}
	v := New()
	v.Segmenter = seg

	_, err := v.Visualize(ctx, Request{Image: photo(8, 8), ColorHex: "#FFFFFF"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if seg.calls != 0 {
		t.Error("segmenter should not run after cancellation")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		MaxImageSide: 800,
		Alpha:        0.4,
		MinMaskRatio: 0.1,
		JPEGQuality:  75,
		WallClass:    1,
		OutputDir:    t.TempDir(),
	}

	v, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if v.MaxSide != 800 || v.JPEGQuality != 75 {
		t.Errorf("got MaxSide %d JPEGQuality %d", v.MaxSide, v.JPEGQuality)
	}
	if v.Params != (recolor.Params{Alpha: 0.4, MinCoverage: 0.1}) {
		t.Errorf("Params: got %+v", v.Params)
	}
	if v.Classes.Wall != 1 {
		t.Errorf("Classes: got %+v", v.Classes)
	}
	if _, ok := v.Store.(*storage.LocalStore); !ok {
		t.Errorf("Store: got %T, want *storage.LocalStore", v.Store)
	}

	cfg.OutputDir = ""
	if v, _ := FromConfig(cfg); v.Store != nil {
		t.Error("empty OutputDir should leave Store nil")
	}
}
