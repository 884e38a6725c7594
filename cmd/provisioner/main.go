package main

import (
	"context"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/KRVIMAL/routeye-sub001/internal/adapters/nats"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/postgres"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/valkey"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/config"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/workflows"
)

func main() {
	cfg, err := config.Load("routeye-provisioner")
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr, "routeye")
	if err != nil {
		logger.Error("valkey", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Error("nats", "error", err)
		os.Exit(1)
	}
	defer pub.Close()

	geozones := usecases.NewGeozoneService(postgres.NewGeozoneRepo(db), cache, pub, logger)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		logger.Error("temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.GeozoneProvisioningWorkflow)
	w.RegisterActivity(&workflows.ProvisioningActivities{Geozones: geozones, Logger: logger})

	logger.Info("provisioner worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("worker", "error", err)
		os.Exit(1)
	}
}
