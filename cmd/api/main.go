package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/sightseer/internal/adapters/http"
	natsadapter "github.com/samirrijal/sightseer/internal/adapters/nats"
	"github.com/samirrijal/sightseer/internal/adapters/postgres"
	"github.com/samirrijal/sightseer/internal/adapters/valkey"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/core/usecases"
	"github.com/samirrijal/sightseer/internal/pkg/config"
	"github.com/samirrijal/sightseer/internal/pkg/logging"
	"github.com/samirrijal/sightseer/internal/pkg/metrics"
	"github.com/samirrijal/sightseer/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("sightseer-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("sightseer-api", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Optional infrastructure. Interfaces are only assigned for live
	// connections so that nil checks downstream stay meaningful.
	var (
		cacheSvc  ports.CacheService
		publisher ports.EventPublisher
		cachePing http.Pinger
		natsPing  http.Pinger
	)

	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Namespace)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc, cachePing = cache, cache
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher, natsPing = pub, pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	stationRepo := postgres.NewStationRepo(db)
	routeRepo := postgres.NewRouteRepo(db)
	segmentRepo := postgres.NewSegmentRepo(db)
	tourRepo := postgres.NewTourRepo(db)
	busRepo := postgres.NewBusRepo(db)

	// Use cases
	stationSvc := usecases.NewStationService(stationRepo, cacheSvc)
	routeSvc := usecases.NewRouteService(routeRepo, segmentRepo, stationRepo, cacheSvc, cfg.Cache.ChainTTL)
	segmentSvc := usecases.NewSegmentService(routeRepo, segmentRepo, stationRepo, routeSvc, publisher)
	tourSvc := usecases.NewTourService(tourRepo)
	busSvc := usecases.NewBusService(busRepo)

	// Rebuild cached chains when any instance changes a route.
	if cacheSvc != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("chain cache warmer disabled", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeRouteUpdates(ctx, func(ctx context.Context, routeID string) error {
				_, err := routeSvc.BuildChain(ctx, routeID)
				return err
			})
			if err != nil {
				slog.Warn("chain cache warmer subscribe failed", "error", err)
			}
		}
	}

	// Pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	deps := &http.Dependencies{
		Stations: stationSvc,
		Routes:   routeSvc,
		Segments: segmentSvc,
		Tours:    tourSvc,
		Buses:    busSvc,
		NATS:     natsConn,
		DB:       db,
		Broker:   natsPing,
		Cache:    cachePing,
		Options: http.Options{
			RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
			RateLimit:      cfg.Server.RateLimit,
			Version:        version,
		},
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Sightseer API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
