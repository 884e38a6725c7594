package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"

	"github.com/KRVIMAL/routeye-sub001/internal/adapters/google"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/http"
	natsadapter "github.com/KRVIMAL/routeye-sub001/internal/adapters/nats"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/postgres"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/temporal"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/valkey"
	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/config"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("routeye-api")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			logger.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	// Cache
	var cache ports.CacheService
	valkeyCache, err := valkey.New(cfg.Valkey.Addr, "routeye")
	if err != nil {
		logger.Warn("valkey unavailable", "error", err)
	} else {
		defer valkeyCache.Close()
		cache = valkeyCache
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		logger.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Google routing and geocoding share one request budget
	gclient := google.NewClient(google.Options{
		APIKey:     cfg.Google.APIKey,
		RoutesURL:  cfg.Google.RoutesURL,
		GeocodeURL: cfg.Google.GeocodeURL,
		QPS:        cfg.Google.QPS,
		Burst:      cfg.Google.Burst,
		Timeout:    cfg.Google.Timeout,
		Language:   cfg.Google.Language,
		Region:     cfg.Google.Region,
		Logger:     logger,
	})

	// Use cases
	geozoneSvc := usecases.NewGeozoneService(postgres.NewGeozoneRepo(db), cache, events, logger)
	catalog := usecases.NewGeozoneCatalog(geozoneSvc, logger)
	if err := catalog.Initialize(ctx, false); err != nil {
		// The refresher keeps retrying; /v1/ready reports not ready meanwhile.
		logger.Warn("initial geozone catalog load failed", "error", err)
	}
	resolver := usecases.NewShapeResolver(catalog, logger)
	routeSvc := usecases.NewRouteService(postgres.NewRouteRepo(db), resolver, cache, events, logger)

	var provisioner ports.GeozoneProvisioner = geozoneSvc
	if cfg.Temporal.Enabled {
		if tc, err := dialTemporal(cfg.Temporal, logger); err != nil {
			logger.Warn("temporal unavailable, provisioning in-process", "error", err)
		} else {
			defer tc.Close()
			provisioner = temporal.NewProvisioner(tc, cfg.Temporal.TaskQueue, logger)
		}
	}

	deps := &http.Dependencies{
		Routes:      routeSvc,
		Geozones:    geozoneSvc,
		Catalog:     catalog,
		Provisioner: provisioner,
		Editor: http.EditorOptions{
			Router:         google.NewRouter(gclient),
			Geocoder:       usecases.NewCachedGeocoder(google.NewGeocoder(gclient), cache),
			ComputeTimeout: cfg.Editor.ComputeTimeout,
			MaxWaypoints:   cfg.Editor.MaxWaypoints,
			InboxSize:      cfg.Editor.InboxSize,
		},
		NATS:   natsConn,
		DB:     db,
		Logger: logger,
	}
	if valkeyCache != nil {
		deps.Cache = valkeyCache
	}

	app := newApp(cfg.Server)
	http.SetupRoutes(app, deps)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		catalog.RunRefresher(gctx, cfg.Editor.CatalogRefreshInterval)
		return nil
	})

	// Geozones created by other replicas or the provisioner worker
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		logger.Warn("geozone subscription unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeGeozoneCreated(gctx, func(ctx context.Context, gz *domain.Geozone) error {
			logger.Debug("geozone announced, refreshing catalog", "geozone_id", gz.ID)
			return catalog.Initialize(ctx, true)
		})
		if err != nil {
			logger.Warn("subscribe geozone.created", "error", err)
		}
	}

	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	})

	g.Go(func() error {
		logger.Info("API server starting", "addr", cfg.Server.Addr())
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("draining connections", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("forced shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func dialTemporal(cfg config.TemporalConfig, logger *slog.Logger) (client.Client, error) {
	return client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
}

// newApp builds the fiber app with the middleware that must run before routing.
func newApp(cfg config.ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    1 << 20,
		AppName:      "Routeye API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:5173",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))
	return app
}
