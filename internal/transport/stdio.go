package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"personal-mcp-server/internal/mcp"
)

// StdioHandler handles newline-delimited JSON-RPC over standard input/output.
type StdioHandler struct {
	processor  *mcp.MCPProcessor
	maxReqSize int
	logger     *slog.Logger
}

// NewStdioHandler creates a new StdioHandler. maxRequestBytes bounds a
// single input line.
func NewStdioHandler(proc *mcp.MCPProcessor, maxRequestBytes int, logger *slog.Logger) *StdioHandler {
	if maxRequestBytes <= 0 {
		maxRequestBytes = defaultMaxRequestBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioHandler{
		processor:  proc,
		maxReqSize: maxRequestBytes,
		logger:     logger.With("component", "stdio"),
	}
}

// Start reads requests from input until EOF or ctx is cancelled, writing one
// response line per request. Notifications produce no output.
func (h *StdioHandler) Start(ctx context.Context, input io.Reader, output io.Writer) error {
	h.logger.Info("starting stdio JSON-RPC handler")
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, min(64*1024, h.maxReqSize)), h.maxReqSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp, _ := handleMessage(ctx, h.processor, h.logger, line)
		if resp == nil {
			continue
		}
		data, _ := encodeResponse(resp, h.logger)
		if _, err := fmt.Fprintf(output, "%s\n", data); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		h.logger.Error("error reading from stdio", "error", err)
		return fmt.Errorf("read request: %w", err)
	}

	h.logger.Info("stdio JSON-RPC handler finished")
	return nil
}
