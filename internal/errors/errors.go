package errors

import (
	"fmt"
	"net/http"

	"personal-mcp-server/internal/models"
)

// JSON-RPC Error Codes (as per JSON-RPC 2.0 Specification)
const (
	CodeParseError     = -32700 // Invalid JSON was received by the server.
	CodeInvalidRequest = -32600 // The JSON sent is not a valid Request object.
	CodeMethodNotFound = -32601 // The method does not exist / is not available.
	CodeInvalidParams  = -32602 // Invalid method parameter(s).
	CodeInternalError  = -32603 // Internal JSON-RPC error.
)

// Application Specific Error Codes
const (
	// CodeMethodNotAllowed is returned for HTTP verbs the endpoint does not serve.
	CodeMethodNotAllowed = -32000
)

// NewError creates a new JSON-RPC error object.
func NewError(code int, message string, data interface{}) *models.JSONRPCError {
	return &models.JSONRPCError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError creates an error for bodies that are not valid JSON.
// JSON-RPC: -32700
func NewParseError(details string) *models.JSONRPCError {
	return NewError(CodeParseError, "Parse error", map[string]string{"details": details})
}

// NewInvalidRequestError creates an error for requests the transport refuses
// before dispatch, e.g. oversized bodies.
// JSON-RPC: -32600
func NewInvalidRequestError(details string) *models.JSONRPCError {
	return NewError(CodeInvalidRequest, "Invalid Request", map[string]string{"details": details})
}

// NewMethodNotFoundError creates an error for unknown methods and for
// envelopes with a missing or wrong protocol tag.
// JSON-RPC: -32601
func NewMethodNotFoundError(methodName string) *models.JSONRPCError {
	if methodName == "" {
		return NewError(CodeMethodNotFound, "Method not found", nil)
	}
	return NewError(CodeMethodNotFound, "Method not found", map[string]string{"method": methodName})
}

// NewInvalidParamsError creates an error for parameters that cannot be decoded.
// JSON-RPC: -32602
func NewInvalidParamsError(details string) *models.JSONRPCError {
	return NewError(CodeInvalidParams, "Invalid params", map[string]string{"details": details})
}

// NewToolNotFoundError creates the error returned by tools/call for an
// unregistered tool. The message carries the requested name.
// JSON-RPC: -32602
func NewToolNotFoundError(toolName string) *models.JSONRPCError {
	return NewError(CodeInvalidParams, fmt.Sprintf("Tool %s not found", toolName), map[string]string{"tool": toolName})
}

// NewInternalError creates an error for unexpected server failures.
// JSON-RPC: -32603
func NewInternalError(details string) *models.JSONRPCError {
	if details == "" {
		return NewError(CodeInternalError, "Internal error", nil)
	}
	return NewError(CodeInternalError, "Internal error", map[string]string{"details": details})
}

// NewMethodNotAllowedError creates the error body for unsupported HTTP verbs.
// App specific: -32000. HTTP status: 405.
func NewMethodNotAllowedError() *models.JSONRPCError {
	return NewError(CodeMethodNotAllowed, "Method not allowed", nil)
}

// MapErrorToHTTPStatus maps a JSON-RPC error code to the HTTP status of the
// response carrying it. Protocol errors travel in a 200 response.
func MapErrorToHTTPStatus(errorCode int) int {
	switch errorCode {
	case CodeParseError, CodeMethodNotFound, CodeInvalidParams:
		return http.StatusOK
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
