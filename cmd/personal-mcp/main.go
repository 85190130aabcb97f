package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"personal-mcp-server/internal/config"
	"personal-mcp-server/internal/lock"
	"personal-mcp-server/internal/mcp"
	"personal-mcp-server/internal/models"
	"personal-mcp-server/internal/profile"
	"personal-mcp-server/internal/tools"
	"personal-mcp-server/internal/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// 1. Parse & validate config
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	fs := flag.NewFlagSet("personal-mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.ParseFlags(fs, args, os.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// 2. Initialize logger
	logOut := stdout
	if cfg.Transport == config.TransportStdio {
		logOut = stderr // JSON-RPC responses go to stdout
	}
	logger := initializeLogger(cfg, logOut)

	// 3. Log effective configuration
	logEffectiveConfig(logger, cfg)

	// 4. Single-instance guard
	if cfg.LockFile != "" {
		instanceLock, err := lock.AcquireInstanceLock(cfg.LockFile, cfg.Timeout())
		if err != nil {
			return fmt.Errorf("another instance may be running: %w", err)
		}
		defer func() {
			if err := instanceLock.Release(); err != nil {
				logger.Warn("failed to release instance lock", "error", err)
			}
		}()
	}

	// 5. Initialize dependencies
	p, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}
	cvFormat, err := profile.ParseCVFormat(cfg.CVFormat)
	if err != nil {
		return err
	}
	registry, err := tools.NewDefaultRegistry(p, tools.Options{CVFormat: cvFormat})
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}
	info := models.ServerInfo{
		Name:        p.Server.Name,
		Version:     p.Server.Version,
		Description: p.Server.Description,
		Author:      p.Server.Author,
	}
	processor := mcp.NewMCPProcessor(registry, info, logger)
	logger.Info("core services initialized", "tools", registry.Names())

	// 6. Start transport and wait for shutdown
	switch cfg.Transport {
	case config.TransportStdio:
		return transport.NewStdioHandler(processor, int(cfg.MaxRequestBytes()), logger).Start(ctx, stdin, stdout)
	default:
		opts := transport.HTTPOptions{
			ReadTimeout:     cfg.Timeout(),
			WriteTimeout:    cfg.Timeout(),
			ShutdownTimeout: cfg.Timeout(),
			MaxRequestBytes: cfg.MaxRequestBytes(),
			Logger:          logger,
		}
		if cfg.Transport == config.TransportStreamable {
			opts.Streamable = newStreamableHandler(registry, info)
		}
		probe := models.NewProbeInfo(p.ProbeName(), p.ProbeDescription(), info, registry.Names())
		return transport.NewHTTPHandler(processor, probe, opts).Serve(ctx, cfg.Addr())
	}
}

func newStreamableHandler(registry *tools.Registry, info models.ServerInfo) http.Handler {
	server := registry.NewServer(
		&sdk.Implementation{Name: info.Name, Version: info.Version},
		&sdk.ServerOptions{
			Instructions: info.Description,
		},
	)
	return transport.NewStreamableHandler(server)
}

func initializeLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel() // validated
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func logEffectiveConfig(logger *slog.Logger, cfg *config.Config) {
	attrs := []any{
		"transport", cfg.Transport,
		"cv_format", cfg.CVFormat,
		"max_request_kb", cfg.MaxRequestKB,
		"timeout_sec", cfg.TimeoutSec,
	}
	if cfg.Transport != config.TransportStdio {
		attrs = append(attrs, "addr", cfg.Addr())
	}
	if cfg.ProfilePath != "" {
		attrs = append(attrs, "profile", cfg.ProfilePath)
	}
	if cfg.LockFile != "" {
		attrs = append(attrs, "lock_file", cfg.LockFile)
	}
	logger.Info("effective configuration", attrs...)
}
