// Package tools holds the fixed, ordered set of tools the server exposes.
//
// A Registry is built once at startup and never mutated, so lookups need no
// locking.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrToolNotFound is returned by Call for a name that is not registered.
var ErrToolNotFound = errors.New("tool not found")

// Tool describes a single tool and the handler that produces its result.
type Tool struct {
	Name        string
	Title       string
	Description string
	InputSchema *jsonschema.Schema
	Handler     mcp.ToolHandler
}

// Descriptor returns the tools/list entry for the tool.
func (t *Tool) Descriptor() *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Title:       t.Title,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// Registry is an immutable, ordered collection of tools.
type Registry struct {
	tools []*Tool
	index map[string]int
}

// NewRegistry builds a registry preserving the given order.
func NewRegistry(tools ...*Tool) (*Registry, error) {
	r := &Registry{
		tools: make([]*Tool, 0, len(tools)),
		index: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if t == nil || t.Name == "" {
			return nil, errors.New("tool name is required")
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", t.Name)
		}
		if _, exists := r.index[t.Name]; exists {
			return nil, fmt.Errorf("tool already registered: %s", t.Name)
		}
		if t.InputSchema == nil {
			t.InputSchema = NoArgumentsSchema()
		}
		r.index[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.tools[i], true
}

// List returns the tools in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Descriptors returns the tools/list entries in registration order.
func (r *Registry) Descriptors() []*mcp.Tool {
	out := make([]*mcp.Tool, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.Descriptor()
	}
	return out
}

// Call runs the named tool with the raw arguments.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := t.Handler(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	if result == nil {
		result = &mcp.CallToolResult{Content: []mcp.Content{}}
	}
	return result, nil
}

// NewServer registers every tool on a go-sdk MCP server.
func (r *Registry) NewServer(impl *mcp.Implementation, opts *mcp.ServerOptions) *mcp.Server {
	server := mcp.NewServer(impl, opts)
	for _, t := range r.tools {
		server.AddTool(t.Descriptor(), t.Handler)
	}
	return server
}

// NoArgumentsSchema is an object schema without properties or required fields.
func NoArgumentsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

// TextResult creates a CallToolResult with a single text block.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// JSONTextResult encodes v as JSON and wraps it in a single text block.
// HTML characters are left unescaped.
func JSONTextResult(v interface{}) (*mcp.CallToolResult, error) {
	text, err := encodeJSON(v)
	if err != nil {
		return nil, err
	}
	return TextResult(text), nil
}
