package main

import (
	"context"
	"fmt"
	"os"

	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/app"
	"github.com/patrickwarner/seamlessads/internal/cli"
	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

func main() {
	cfg := config.Load()
	logger, err := observability.InitLoggerWithService(cfg.ServiceName + "-cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	env := cli.Env{
		OpenApp: func(ctx context.Context) (*app.App, error) {
			return app.Open(ctx, cfg, logger, nil)
		},
		OpenLoader: func(context.Context) (cli.MentionLoader, func(), error) {
			a, err := analytics.InitClickHouse(cfg.ClickHouseDSN, observability.NewNoOpRegistry(),
				cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime)
			if err != nil {
				return nil, nil, fmt.Errorf("connect clickhouse: %w", err)
			}
			return a, a.Close, nil
		},
	}

	if err := cli.NewRootCmd(env).Execute(); err != nil {
		os.Exit(1)
	}
}
