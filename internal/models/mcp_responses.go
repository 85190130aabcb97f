package models

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProtocolVersion is the MCP protocol revision reported by initialize.
const ProtocolVersion = "2024-11-05"

// InitializeResponse defines the structure for the JSON response of the "initialize" method.
type InitializeResponse struct {
	ProtocolVersion string                  `json:"protocolVersion"`
	Capabilities    *mcp.ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo              `json:"serverInfo"`
}

// ServerInfo provides information about the server.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// DefaultCapabilities declares tools and resources, both with list-changed
// notifications.
func DefaultCapabilities() *mcp.ServerCapabilities {
	return &mcp.ServerCapabilities{
		Tools:     &mcp.ToolCapabilities{ListChanged: true},
		Resources: &mcp.ResourceCapabilities{ListChanged: true},
	}
}

// ToolsListResponse defines the structure for the JSON response of the "tools/list" method.
type ToolsListResponse struct {
	Tools []*mcp.Tool `json:"tools"`
}

// ToolCallParams represents the parameters for a tool call.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ProbeInfo is the body returned by a plain GET on the endpoint.
type ProbeInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	Author       string            `json:"author"`
	Capabilities ProbeCapabilities `json:"capabilities"`
}

// ProbeCapabilities lists the registered tools by name.
type ProbeCapabilities struct {
	Tools map[string]struct{} `json:"tools"`
}

// NewProbeInfo builds the probe body advertising the given tools.
func NewProbeInfo(name, description string, info ServerInfo, toolNames []string) ProbeInfo {
	tools := make(map[string]struct{}, len(toolNames))
	for _, n := range toolNames {
		tools[n] = struct{}{}
	}
	return ProbeInfo{
		Name:         name,
		Version:      info.Version,
		Description:  description,
		Author:       info.Author,
		Capabilities: ProbeCapabilities{Tools: tools},
	}
}
