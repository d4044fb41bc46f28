// Command mcp-server exposes goeq systems as agent tools.
//
// Usage:
//
//	go run ./cmd/mcp-server -addr :8080
//	go run ./cmd/mcp-server -transport stdio
//
// Over HTTP, tool calls go to POST /tool and the schema is at GET /schema.
// Over stdio, the same tools are served with the Model Context Protocol.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/goeq/internal/server"
)

func main() {
	cfg, err := server.ParseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		slog.Error("parse config", "error", err)
		os.Exit(2)
	}

	// stdout carries the MCP stream on stdio, so logs always go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
