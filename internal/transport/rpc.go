package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"personal-mcp-server/internal/errors"
	"personal-mcp-server/internal/mcp"
	"personal-mcp-server/internal/models"
)

// handleMessage decodes one JSON-RPC message and dispatches it.
//
// A nil response means the message was a notification. internal is set when
// the response carries an Internal error, so HTTP callers can answer 500.
// Panics raised while dispatching are recovered here.
func handleMessage(ctx context.Context, proc *mcp.MCPProcessor, logger *slog.Logger, body []byte) (resp *models.JSONRPCResponse, internal bool) {
	if !json.Valid(body) {
		return models.NewErrorResponse(nil, errors.NewParseError("request body is not valid JSON")), false
	}

	req, err := decodeRequest(body)
	if err != nil {
		// A field of the wrong type does not stop decoding, so the id of an
		// object envelope survives. Non-object bodies leave it nil.
		logger.Debug("malformed envelope", "id", req.ID, "error", err)
		return models.NewErrorResponse(req.ID, errors.NewMethodNotFoundError("")), false
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while processing request", "method", req.Method, "id", req.ID, "panic", rec)
			resp = models.NewErrorResponse(req.ID, errors.NewInternalError(""))
			internal = true
		}
	}()

	resp, err = proc.ProcessRequest(ctx, req)
	if err != nil {
		logger.Error("request failed", "method", req.Method, "id", req.ID, "error", err)
		return models.NewErrorResponse(req.ID, errors.NewInternalError(err.Error())), true
	}
	return resp, false
}

// decodeRequest decodes an envelope. Numeric ids are kept as json.Number so
// they are echoed digit for digit.
func decodeRequest(body []byte) (models.JSONRPCRequest, error) {
	var req models.JSONRPCRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	err := dec.Decode(&req)
	return req, err
}

// encodeResponse marshals a response. If that fails, it falls back to an
// Internal error response for the same id.
func encodeResponse(resp *models.JSONRPCResponse, logger *slog.Logger) ([]byte, bool) {
	data, err := json.Marshal(resp)
	if err == nil {
		return data, true
	}
	logger.Error("error marshaling JSON-RPC response", "id", resp.ID, "error", err)
	fallback := models.NewErrorResponse(resp.ID, errors.NewInternalError(fmt.Sprintf("failed to marshal response: %v", err)))
	data, err = json.Marshal(fallback)
	if err != nil {
		// The id itself is unencodable.
		data, _ = json.Marshal(models.NewErrorResponse(nil, errors.NewInternalError("")))
	}
	return data, false
}
