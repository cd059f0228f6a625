package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/facade-recolor/internal/imaging"
	"github.com/ironsheep/facade-recolor/internal/visualizer"
)

// Server handles MCP protocol communication
type Server struct {
	cache   *imaging.ImageCache
	viz     *visualizer.Visualizer
	version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server that renders through viz. A nil viz gets
// default parameters, no model and inline results.
func New(viz *visualizer.Visualizer) *Server {
	if viz == nil {
		viz = visualizer.New()
	}
	return &Server{
		cache:   imaging.NewImageCache(),
		viz:     viz,
		version: "0.1.0",
	}
}

// SetVersion sets the version reported in the initialize handshake.
func (s *Server) SetVersion(v string) {
	if v != "" {
		s.version = v
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout.
// It blocks until stdin is closed or ctx is done; see Serve.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve answers newline-delimited JSON-RPC requests from r on w.
//
// Parameters:
//   - ctx: Checked before each request; tools/call handlers receive it too.
//   - r: Source of requests, one JSON object per line.
//   - w: Destination for responses, one JSON object per line.
//
// Returns:
//   - error: nil when r is exhausted, ctx.Err() once ctx is done, or the
//     scanner error if a line cannot be read.
//
// Blank lines are skipped. Lines that are not valid JSON are logged and
// skipped without a response, as are notifications. Lines may be up to 4 MiB.
//
// # Errors
//
//   - Returns ctx.Err() if ctx is canceled between requests
//   - Returns error if reading from r fails or a line exceeds the buffer
//
// Tool failures are not errors of Serve; they are reported to the client as
// JSON-RPC error responses (see the package documentation).
//
// # Example Usage
//
//	srv := server.New(viz)
//	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
//	if err := srv.Serve(ctx, in, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Photos travel as paths, but mask payloads can still be long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "facade-recolor",
				"version": s.version,
			},
		},
	}
}
