package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

func sceneProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"auto", "interior", "exterior"},
		"description": "Which surface to paint: interior walls, exterior building, or auto (the larger of the two). Default auto",
		"default":     "auto",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Photo inspection
		{
			Name:        "image_load",
			Description: "Load a photo and return its dimensions, format, and whether it will be downscaled before recoloring.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel as hex, RGB and Lab. Use it to read the current wall color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_dominant_colors",
			Description: "Extract the most common colors of a photo. With mask_path only pixels inside the mask are counted, giving the palette of the wall itself.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
					"mask_path": pathProperty("Optional grayscale mask the same size as the photo"),
				},
				"required": []string{"path"},
			},
		},

		// Recoloring
		{
			Name:        "color_parse",
			Description: "Decode a paint color code (\"#RRGGBB\" or \"RRGGBB\") into RGB and CIE Lab.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Six hex digits with optional leading #",
					},
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "mask_coverage",
			Description: "Report the fraction of pixels a mask marks as paintable and whether it passes the minimum coverage. Give either mask_path or labels_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mask_path":   pathProperty("Grayscale mask image; values above 50% count as paintable"),
					"labels_path": pathProperty("Grayscale label map holding segmentation class indices"),
					"scene":       sceneProperty(),
				},
			},
		},
		{
			Name:        "wall_mask",
			Description: "Build the feathered paintable mask from a segmentation label map and return it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"labels_path": pathProperty("Grayscale label map holding segmentation class indices"),
					"path":        pathProperty("Optional photo; the mask is sized to it instead of the label map"),
					"scene":       sceneProperty(),
				},
				"required": []string{"labels_path"},
			},
		},
		{
			Name:        "image_recolor",
			Description: "Repaint the wall or facade in a photo with a paint color, keeping shading and texture. The surface comes from mask_path, labels_path, or the segmentation model, in that order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty("Absolute path to the photo"),
					"color":       map[string]interface{}{"type": "string", "description": "Paint color as #RRGGBB"},
					"mask_path":   pathProperty("Optional grayscale mask of the surface to paint"),
					"labels_path": pathProperty("Optional segmentation label map"),
					"scene":       sceneProperty(),
					"alpha": map[string]interface{}{
						"type":        "number",
						"description": "Optional paint strength 0-1. Defaults to the server setting",
						"minimum":     0,
						"maximum":     1,
					},
				},
				"required": []string{"path", "color"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
