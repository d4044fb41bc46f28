package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/goeq/tools"
)

const shutdownTimeout = 5 * time.Second

// Run serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	reg := tools.NewRegistry(logger, tools.WithMaxRange(cfg.MaxRangeLen))

	if cfg.Transport == "stdio" {
		logger.Info("serving MCP on stdio")
		return RunMCP(ctx, reg, &mcp.StdioTransport{})
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(reg, logger, cfg.MaxBodyBytes),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return serveHTTP(ctx, srv, logger)
}

// RunMCP serves every tool over transport until ctx is cancelled or the peer
// disconnects.
func RunMCP(ctx context.Context, reg *tools.Registry, transport mcp.Transport) error {
	err := tools.NewMCPServer(reg).Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func serveHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("goeq tool server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
