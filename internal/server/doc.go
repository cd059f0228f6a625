// Package server implements the MCP (Model Context Protocol) server for the
// facade recolor tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Photo inspection:
//   - image_load: Load a photo and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get the color at a pixel
//   - image_dominant_colors: Palette of the photo, optionally inside a mask
//
// Recoloring:
//   - color_parse: Decode a paint hex code into RGB and Lab
//   - mask_coverage: Paintable fraction of a mask or label map
//   - wall_mask: Feathered paintable mask from a label map, as PNG
//   - image_recolor: Repaint the masked surface of a photo
//
// # Image Caching
//
// Photos, masks and label maps are cached by path and reused across tool
// calls for the lifetime of the process.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors. Caller mistakes (bad color,
// bad mask, out-of-range alpha, malformed arguments) use code -32602; every
// other failure, including a mask that covers too little of the photo, uses
// -32000. The data member carries {"kind": ..., "message": ...}, where kind
// is one of the recolor error tags or empty.
//
// # Usage
//
//	srv := server.New(viz)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
