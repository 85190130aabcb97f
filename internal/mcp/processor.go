package mcp

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"personal-mcp-server/internal/errors"
	"personal-mcp-server/internal/models"
	"personal-mcp-server/internal/tools"
)

// methodKind is the closed set of outcomes a request can dispatch to.
type methodKind int

const (
	methodUnknown methodKind = iota
	methodInitialize
	methodToolsList
	methodToolsCall
	methodPing
	methodNotification
)

func classify(req models.JSONRPCRequest) methodKind {
	if req.JSONRPC != models.JSONRPCVersion {
		return methodUnknown
	}
	switch req.Method {
	case "initialize":
		return methodInitialize
	case "tools/list":
		return methodToolsList
	case "tools/call":
		return methodToolsCall
	case "ping":
		return methodPing
	}
	if req.IsNotification() && strings.HasPrefix(req.Method, "notifications/") {
		return methodNotification
	}
	return methodUnknown
}

// MCPProcessor maps JSON-RPC request envelopes to response envelopes.
// It holds no per-request state and is safe for concurrent use.
type MCPProcessor struct {
	registry   *tools.Registry
	serverInfo models.ServerInfo
	logger     *slog.Logger
}

// NewMCPProcessor creates a new MCPProcessor.
func NewMCPProcessor(registry *tools.Registry, info models.ServerInfo, logger *slog.Logger) *MCPProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPProcessor{
		registry:   registry,
		serverInfo: info,
		logger:     logger.With("component", "mcp"),
	}
}

// ServerInfo returns the identity reported by initialize.
func (p *MCPProcessor) ServerInfo() models.ServerInfo {
	return p.serverInfo
}

// Registry returns the tool registry requests are dispatched against.
func (p *MCPProcessor) Registry() *tools.Registry {
	return p.registry
}

// ProcessRequest handles a single JSON-RPC request.
//
// Protocol-level failures are reported inside the returned envelope. A nil
// response with a nil error means the request was a notification and must not
// be answered. A non-nil error is an internal failure the transport turns into
// an Internal error response.
func (p *MCPProcessor) ProcessRequest(ctx context.Context, req models.JSONRPCRequest) (*models.JSONRPCResponse, error) {
	switch classify(req) {
	case methodInitialize:
		return models.NewResultResponse(req.ID, models.InitializeResponse{
			ProtocolVersion: models.ProtocolVersion,
			Capabilities:    models.DefaultCapabilities(),
			ServerInfo:      p.serverInfo,
		}), nil
	case methodToolsList:
		return models.NewResultResponse(req.ID, models.ToolsListResponse{
			Tools: p.registry.Descriptors(),
		}), nil
	case methodToolsCall:
		return p.handleToolCall(ctx, req)
	case methodPing:
		return models.NewResultResponse(req.ID, models.EmptyResult{}), nil
	case methodNotification:
		p.logger.Debug("notification received", "method", req.Method)
		return nil, nil
	default:
		name := req.Method
		if req.JSONRPC != models.JSONRPCVersion {
			name = ""
		}
		return models.NewErrorResponse(req.ID, errors.NewMethodNotFoundError(name)), nil
	}
}

// handleToolCall looks up and runs the requested tool.
func (p *MCPProcessor) handleToolCall(ctx context.Context, req models.JSONRPCRequest) (*models.JSONRPCResponse, error) {
	var params models.ToolCallParams
	if len(req.Params) > 0 && string(req.Params) != "null" {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return models.NewErrorResponse(req.ID, errors.NewInvalidParamsError("Invalid parameters for tools/call: "+err.Error())), nil
		}
	}

	result, err := p.registry.Call(ctx, params.Name, params.Arguments)
	if stdErrors.Is(err, tools.ErrToolNotFound) {
		p.logger.Info("unknown tool requested", "tool", params.Name)
		return models.NewErrorResponse(req.ID, errors.NewToolNotFoundError(params.Name)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("tools/call %s: %w", params.Name, err)
	}

	p.logger.Debug("tool called", "tool", params.Name)
	return models.NewResultResponse(req.ID, result), nil
}
