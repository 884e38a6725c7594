package main

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KRVIMAL/routeye-sub001/internal/pkg/config"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
)

var migrations = []string{
	"migrations/001_init_extensions",
	"migrations/002_routes_geozones",
}

func main() {
	if len(os.Args) < 2 {
		slog.Error("usage: migrate <up|down>")
		os.Exit(2)
	}

	cfg, err := config.Load("routeye-migrate")
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		err = apply(ctx, logger, pool, migrations, ".sql")
	case "down":
		down := slices.Clone(migrations)
		slices.Reverse(down)
		err = apply(ctx, logger, pool, down, ".down.sql")
	default:
		logger.Error("unknown command", "command", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("all migrations applied", "direction", os.Args[1])
}

func apply(ctx context.Context, logger *slog.Logger, pool *pgxpool.Pool, names []string, suffix string) error {
	for _, name := range names {
		f := name + suffix
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return err
		}
		logger.Info("applied", "file", f)
	}
	return nil
}
