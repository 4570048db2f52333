package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/app"
	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/mcptools"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

const (
	serverName    = "seamlessads-shopping"
	serverVersion = "1.0.0"
)

// buildServer registers every shopping and recommendation tool.
func buildServer(deps *app.App) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	tools := mcptools.New(deps.Web, deps.Retail, deps.Carts, deps.Catalog, deps.Ads, deps.Metrics, deps.Logger)
	tools.Register(server)
	return server
}

func main() {
	cfg := config.Load()

	// stdout carries the stdio transport; the logger writes to stderr.
	logger, err := observability.InitLoggerWithService(cfg.ServiceName + "-mcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("mcp server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName+"-mcp", cfg.TracingEndpoint, cfg.Environment, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	deps, err := app.Open(ctx, cfg, logger, observability.NewPrometheusRegistry())
	if err != nil {
		return err
	}
	defer deps.Close()

	server := buildServer(deps)
	logger.Info("Starting shopping MCP server on stdio",
		zap.String("catalog", deps.Catalog.Provider()),
		zap.String("cart_backend", cfg.CartBackend))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
