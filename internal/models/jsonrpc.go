package models

import "encoding/json"

// JSONRPCVersion is the only protocol version tag the server accepts.
const JSONRPCVersion = "2.0"

// JSONRPCRequest represents a JSON-RPC request object.
type JSONRPCRequest struct {
	// JSONRPC specifies the version of the JSON-RPC protocol, must be "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is a unique identifier established by the client.
	// It can be a string or a number. The server must reply with the same ID.
	// This field is omitted for notifications.
	ID interface{} `json:"id"`
	// Method is a string containing the name of the method to be invoked.
	Method string `json:"method"`
	// Params holds the method-specific parameters. Parsing is deferred until
	// the method is known.
	Params json.RawMessage `json:"params"`
}

// IsNotification reports whether the request carries no id.
func (r JSONRPCRequest) IsNotification() bool {
	return r.ID == nil
}

// JSONRPCError represents a JSON-RPC error object.
type JSONRPCError struct {
	// Code is a number that indicates the error type that occurred.
	Code int `json:"code"`
	// Message is a string providing a short description of the error.
	Message string `json:"message"`
	// Data is a primitive or structured value that contains additional
	// information about the error. It may be omitted.
	Data interface{} `json:"data,omitempty"`
}

// Error implements the error interface so a JSONRPCError can travel through
// ordinary Go error returns.
func (e *JSONRPCError) Error() string {
	return e.Message
}

// JSONRPCResponse represents a JSON-RPC response object.
//
// Result and Error are mutually exclusive; build responses with
// NewResultResponse or NewErrorResponse.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// NewResultResponse wraps a successful result for the request with the given id.
func NewResultResponse(id interface{}, result interface{}) *JSONRPCResponse {
	if result == nil {
		result = EmptyResult{}
	}
	return &JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse wraps an error object for the request with the given id.
func NewErrorResponse(id interface{}, rpcErr *JSONRPCError) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   rpcErr,
	}
}

// EmptyResult encodes as the empty JSON object.
type EmptyResult struct{}
