package transport

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"personal-mcp-server/internal/errors"
	"personal-mcp-server/internal/mcp"
	"personal-mcp-server/internal/models"
)

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultMaxRequestBytes = 1 << 20

	// RequestIDHeader carries the per-request ULID back to the caller.
	RequestIDHeader = "X-Request-Id"
)

// HTTPOptions configures an HTTPHandler. Zero values fall back to defaults.
type HTTPOptions struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxRequestBytes int64
	// Streamable, when set, answers tools/list and calls to registered
	// tools. Everything else still goes through the dispatcher.
	Streamable http.Handler
	Logger     *slog.Logger
}

// HTTPHandler serves the MCP endpoint at "/".
type HTTPHandler struct {
	processor       *mcp.MCPProcessor
	probe           models.ProbeInfo
	streamable      http.Handler
	maxReqSize      int64
	shutdownTimeout time.Duration
	logger          *slog.Logger
	Server          *http.Server // Holds the server instance
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(proc *mcp.MCPProcessor, probe models.ProbeInfo, opts HTTPOptions) *HTTPHandler {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.MaxRequestBytes <= 0 {
		opts.MaxRequestBytes = defaultMaxRequestBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &HTTPHandler{
		processor:       proc,
		probe:           probe,
		streamable:      opts.Streamable,
		maxReqSize:      opts.MaxRequestBytes,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          opts.Logger.With("component", "http"),
	}
	h.Server = &http.Server{
		Handler:      h.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return h
}

// RegisterRoutes sets up the HTTP routes for the handler.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/{$}", h.handleRoot)
}

// Handler returns the routed handler wrapped with recovery, CORS and
// request logging.
func (h *HTTPHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h.withRequestLog(withCORS(h.withRecover(mux)))
}

func (h *HTTPHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeJSONRPCError(w, nil, errors.NewMethodNotAllowedError())
	}
}

// handleGet answers the liveness probe. Callers that signal they expect a
// JSON-RPC exchange are told GET is not supported.
func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if expectsJSONRPC(r) {
		h.writeJSONRPCError(w, nil, errors.NewMethodNotAllowedError())
		return
	}
	h.writeJSON(w, http.StatusOK, h.probe)
}

func expectsJSONRPC(r *http.Request) bool {
	if r.URL.Query().Has("jsonrpc") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json-rpc") {
		return true
	}
	// MCP clients open a standalone event stream with GET.
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func (h *HTTPHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxReqSize)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stdErrors.As(err, &maxErr) {
			rpcErr := errors.NewInvalidRequestError(fmt.Sprintf("Request body exceeds maximum size of %d bytes.", maxErr.Limit))
			h.writeJSONRPCErrorStatus(w, http.StatusRequestEntityTooLarge, nil, rpcErr)
			return
		}
		h.writeJSONRPCErrorStatus(w, http.StatusBadRequest, nil, errors.NewParseError(fmt.Sprintf("Failed to read request body: %v", err)))
		return
	}

	if h.streamable != nil && h.streamableServes(body) {
		h.serveStreamable(w, r, body)
		return
	}

	logger := h.logger.With("request_id", w.Header().Get(RequestIDHeader))
	resp, internal := handleMessage(r.Context(), h.processor, logger, body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	data, ok := encodeResponse(resp, logger)
	status := http.StatusOK
	if internal || !ok {
		status = http.StatusInternalServerError
	}
	h.writeRaw(w, status, data)
}

// withRecover converts a panic outside the dispatcher into an Internal
// error response with a null id.
func (h *HTTPHandler) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("panic in HTTP handler", "path", r.URL.Path, "panic", rec)
				h.writeJSONRPCError(w, nil, errors.NewInternalError(""))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version")
		hdr.Set("Access-Control-Expose-Headers", RequestIDHeader+", Mcp-Session-Id")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (h *HTTPHandler) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		h.logger.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Serve listens on addr until ctx is cancelled, then shuts the server down
// gracefully.
func (h *HTTPHandler) Serve(ctx context.Context, addr string) error {
	h.Server.Addr = addr

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.logger.Info("HTTP server starting", "addr", addr,
			"read_timeout", h.Server.ReadTimeout, "write_timeout", h.Server.WriteTimeout)
		// ListenAndServe always returns a non-nil error.
		if err := h.Server.ListenAndServe(); !stdErrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		h.logger.Info("HTTP server stopped", "addr", addr)
		return nil
	})
	return g.Wait()
}

// writeJSONRPCError writes an error envelope with the status the error code
// maps to.
func (h *HTTPHandler) writeJSONRPCError(w http.ResponseWriter, id interface{}, rpcErr *models.JSONRPCError) {
	h.writeJSONRPCErrorStatus(w, errors.MapErrorToHTTPStatus(rpcErr.Code), id, rpcErr)
}

func (h *HTTPHandler) writeJSONRPCErrorStatus(w http.ResponseWriter, status int, id interface{}, rpcErr *models.JSONRPCError) {
	h.writeJSON(w, status, models.NewErrorResponse(id, rpcErr))
}

// writeJSON is a helper to write JSON data to the response.
func (h *HTTPHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("error encoding JSON response", "error", err)
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(models.NewErrorResponse(nil, errors.NewInternalError("")))
	}
	h.writeRaw(w, statusCode, body)
}

func (h *HTTPHandler) writeRaw(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("error writing response body", "error", err)
	}
}
