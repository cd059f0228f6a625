package server

import (
	"context"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_sample_color",
		"image_dominant_colors",
		"color_parse",
		"mask_coverage",
		"wall_mask",
		"image_recolor",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			// Every required argument must be described.
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required argument %s has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	want := map[string][]string{
		"image_load":            {"path"},
		"image_dimensions":      {"path"},
		"image_sample_color":    {"path", "x", "y"},
		"image_dominant_colors": {"path"},
		"color_parse":           {"color"},
		"wall_mask":             {"labels_path"},
		"image_recolor":         {"path", "color"},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for name, args := range want {
		t.Run(name, func(t *testing.T) {
			required, ok := toolMap[name].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			if len(required) != len(args) {
				t.Fatalf("required: got %v, want %v", required, args)
			}
			for i := range args {
				if required[i] != args[i] {
					t.Errorf("required: got %v, want %v", required, args)
				}
			}
		})
	}
}

func TestToolDefinitions_SceneEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		scene, ok := props["scene"].(map[string]interface{})
		if !ok {
			continue
		}
		enum, ok := scene["enum"].([]string)
		if !ok || len(enum) != 3 {
			t.Errorf("%s: scene enum = %v", tool.Name, scene["enum"])
		}
		if scene["default"] != "auto" {
			t.Errorf("%s: scene default = %v, want auto", tool.Name, scene["default"])
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
