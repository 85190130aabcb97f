package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"personal-mcp-server/internal/models"
)

// streamableAccept is what the MCP streamable transport requires clients to
// send on POST.
const streamableAccept = "application/json, text/event-stream"

// NewStreamableHandler serves POST through the MCP streamable HTTP transport.
// Every request gets a throwaway session and a plain JSON reply.
func NewStreamableHandler(server *sdk.Server) http.Handler {
	return sdk.NewStreamableHTTPHandler(
		func(*http.Request) *sdk.Server { return server },
		&sdk.StreamableHTTPOptions{
			Stateless:    true,
			JSONResponse: true,
		},
	)
}

// streamableServes reports whether the streamable transport should answer
// body. It only takes well-formed tools/list requests and calls to registered
// tools. initialize, ping, notifications, unknown tools and malformed
// envelopes stay with the dispatcher so they answer identically in every
// mode. Sessions are stateless, so the transport never needs to see
// initialize.
func (h *HTTPHandler) streamableServes(body []byte) bool {
	req, err := decodeRequest(body)
	if err != nil || req.JSONRPC != models.JSONRPCVersion || req.IsNotification() {
		return false
	}
	switch req.Method {
	case "tools/list":
		return true
	case "tools/call":
		var params models.ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return false
		}
		_, ok := h.processor.Registry().Get(params.Name)
		return ok
	default:
		return false
	}
}

func (h *HTTPHandler) serveStreamable(w http.ResponseWriter, r *http.Request, body []byte) {
	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))

	// Replies are always plain JSON, so plain JSON-RPC clients that only
	// accept application/json are served too.
	accept := r.Header.Get("Accept")
	if !strings.Contains(accept, "application/json") || !strings.Contains(accept, "text/event-stream") {
		r.Header.Set("Accept", streamableAccept)
	}
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	h.streamable.ServeHTTP(w, r)
}
