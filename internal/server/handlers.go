package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/facade-recolor/internal/imaging"
	"github.com/ironsheep/facade-recolor/internal/recolor"
	"github.com/ironsheep/facade-recolor/internal/segmentation"
	"github.com/ironsheep/facade-recolor/internal/visualizer"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_recolor").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ToolErrorData is the data member of a failed tools/call response.
type ToolErrorData struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.toolErrorResponse(req.ID, err)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Photo inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)

	// Recoloring
	case "color_parse":
		return s.handleColorParse(args)
	case "mask_coverage":
		return s.handleMaskCoverage(args)
	case "wall_mask":
		return s.handleWallMask(args)
	case "image_recolor":
		return s.handleImageRecolor(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// toolErrorResponse reports a failed tool. Errors the caller can fix by
// changing the arguments get -32602, everything else -32000.
func (s *Server) toolErrorResponse(id interface{}, err error) *MCPResponse {
	kind := recolor.KindOf(err)
	code := -32000
	switch kind {
	case recolor.KindInvalidColorFormat, recolor.KindInvalidImage,
		recolor.KindInvalidMask, recolor.KindInvalidParameter:
		code = -32602
	}
	return s.errorResponse(id, code, "Tool execution failed", ToolErrorData{Kind: kind, Message: err.Error()})
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, reporting failures as a parameter
// error.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", recolor.ErrInvalidParameter, err)
	}
	return nil
}

func requirePath(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", recolor.ErrInvalidParameter, name)
	}
	return nil
}

func parseScene(s string) (segmentation.Scene, error) {
	scene, err := segmentation.ParseScene(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", recolor.ErrInvalidParameter, err)
	}
	return scene, nil
}

// loadImage reads path through the cache. Unreadable files are reported as
// invalid images.
func (s *Server) loadImage(path string) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidImage, err)
	}
	return img, nil
}

func (s *Server) loadLabels(path string) (*segmentation.LabelMap, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: label map: %v", recolor.ErrInvalidMask, err)
	}
	return segmentation.LabelMapFromImage(img), nil
}

func (s *Server) loadMask(path string) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidMask, err)
	}
	return img, nil
}

// === Photo Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path, s.viz.MaxSide)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidImage, err)
	}
	return info, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	dims, err := imaging.GetDimensions(s.cache, a.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidImage, err)
	}
	return dims, nil
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidParameter, err)
	}
	return c, nil
}

type imageDominantColorsArgs struct {
	Path     string `json:"path"`
	Count    int    `json:"count"`
	MaskPath string `json:"mask_path,omitempty"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", recolor.ErrInvalidParameter, a.Count)
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	var mask *recolor.Mask
	if a.MaskPath != "" {
		m, err := s.loadMask(a.MaskPath)
		if err != nil {
			return nil, err
		}
		mask = recolor.NormalizeMask(imaging.MaskFromImage(m))
	}
	return imaging.DominantColors(img, a.Count, mask)
}

// === Recolor Handlers ===

type colorParseArgs struct {
	Color string `json:"color"`
}

func (s *Server) handleColorParse(args json.RawMessage) (interface{}, error) {
	var a colorParseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rgb, err := recolor.ParseHexColor(a.Color)
	if err != nil {
		return nil, err
	}
	return imaging.NewColorResult(rgb), nil
}

type maskCoverageArgs struct {
	MaskPath   string `json:"mask_path,omitempty"`
	LabelsPath string `json:"labels_path,omitempty"`
	Scene      string `json:"scene,omitempty"`
}

// MaskCoverageResult reports how much of a frame a mask marks as paintable.
type MaskCoverageResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Coverage    float64 `json:"coverage"`
	MinCoverage float64 `json:"min_coverage"`
	Sufficient  bool    `json:"sufficient"`
}

func (s *Server) handleMaskCoverage(args json.RawMessage) (interface{}, error) {
	var a maskCoverageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var raw *recolor.RawMask
	switch {
	case a.MaskPath != "":
		m, err := s.loadMask(a.MaskPath)
		if err != nil {
			return nil, err
		}
		raw = imaging.MaskFromImage(m)
	case a.LabelsPath != "":
		scene, err := parseScene(a.Scene)
		if err != nil {
			return nil, err
		}
		lm, err := s.loadLabels(a.LabelsPath)
		if err != nil {
			return nil, err
		}
		raw, err = s.viz.MaskSource().FromLabels(lm, scene, lm.Width, lm.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidMask, err)
		}
	default:
		return nil, fmt.Errorf("%w: mask_path or labels_path is required", recolor.ErrInvalidParameter)
	}

	mask := recolor.NormalizeMask(raw)
	minCoverage := s.viz.Params.MinCoverage
	coverage := recolor.Coverage(mask)
	return &MaskCoverageResult{
		Width:       mask.Width,
		Height:      mask.Height,
		Coverage:    coverage,
		MinCoverage: minCoverage,
		Sufficient:  coverage >= minCoverage,
	}, nil
}

type wallMaskArgs struct {
	LabelsPath string `json:"labels_path"`
	Path       string `json:"path,omitempty"`
	Scene      string `json:"scene,omitempty"`
}

// WallMaskResult is a rendered paintable mask.
type WallMaskResult struct {
	*imaging.EncodedImage
	Coverage float64 `json:"coverage"`
}

func (s *Server) handleWallMask(args json.RawMessage) (interface{}, error) {
	var a wallMaskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("labels_path", a.LabelsPath); err != nil {
		return nil, err
	}
	scene, err := parseScene(a.Scene)
	if err != nil {
		return nil, err
	}
	lm, err := s.loadLabels(a.LabelsPath)
	if err != nil {
		return nil, err
	}

	w, h := lm.Width, lm.Height
	if a.Path != "" {
		img, err := s.loadImage(a.Path)
		if err != nil {
			return nil, err
		}
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}

	raw, err := s.viz.MaskSource().FromLabels(lm, scene, w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidMask, err)
	}
	mask := recolor.NormalizeMask(raw)
	out := imaging.MaskToImage(mask)
	data, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, err
	}
	return &WallMaskResult{
		EncodedImage: imaging.NewEncodedImage(out, data, "image/png"),
		Coverage:     recolor.Coverage(mask),
	}, nil
}

type imageRecolorArgs struct {
	Path       string   `json:"path"`
	Color      string   `json:"color"`
	MaskPath   string   `json:"mask_path,omitempty"`
	LabelsPath string   `json:"labels_path,omitempty"`
	Scene      string   `json:"scene,omitempty"`
	Alpha      *float64 `json:"alpha,omitempty"`
}

func (s *Server) handleImageRecolor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageRecolorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	scene, err := parseScene(a.Scene)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	req := visualizer.Request{Image: img, Scene: scene, ColorHex: a.Color, Alpha: a.Alpha}
	switch {
	case a.MaskPath != "":
		if req.Mask, err = s.loadMask(a.MaskPath); err != nil {
			return nil, err
		}
	case a.LabelsPath != "":
		if req.Labels, err = s.loadLabels(a.LabelsPath); err != nil {
			return nil, err
		}
	}

	return s.viz.Visualize(ctx, req)
}
