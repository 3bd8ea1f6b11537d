package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/sightseer/internal/adapters/nats"
	"github.com/samirrijal/sightseer/internal/adapters/postgres"
	"github.com/samirrijal/sightseer/internal/adapters/valkey"
	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/core/usecases"
	"github.com/samirrijal/sightseer/internal/pkg/config"
	"github.com/samirrijal/sightseer/internal/pkg/logging"
	"github.com/samirrijal/sightseer/internal/pkg/telemetry"
	"github.com/samirrijal/sightseer/internal/workflows"
)

func main() {
	root := &cobra.Command{
		Use:          "importer",
		Short:        "Route-import worker and client",
		SilenceUsage: true,
	}
	root.AddCommand(workerCmd(), submitCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func dialTemporal(cfg *config.Config) (client.Client, error) {
	return client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the route-import Temporal worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("sightseer-importer")
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logging.Setup("sightseer-importer", os.Getenv("LOG_LEVEL"), "json")

			ctx := cmd.Context()
			if cfg.Telemetry.Enabled {
				shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
				if err != nil {
					slog.Warn("telemetry init failed", "error", err)
				} else {
					defer shutdown()
				}
			}

			db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer db.Close()

			var cacheSvc ports.CacheService
			if cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Namespace); err != nil {
				slog.Warn("valkey unavailable, chains will not be warmed", "error", err)
			} else {
				defer cache.Close()
				cacheSvc = cache
			}

			var publisher ports.EventPublisher
			if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
				slog.Warn("nats unavailable, imports will not be announced", "error", err)
			} else {
				defer pub.Close()
				publisher = pub
			}

			stationRepo := postgres.NewStationRepo(db)
			routeRepo := postgres.NewRouteRepo(db)
			segmentRepo := postgres.NewSegmentRepo(db)
			routeSvc := usecases.NewRouteService(routeRepo, segmentRepo, stationRepo, cacheSvc, cfg.Cache.ChainTTL)

			c, err := dialTemporal(cfg)
			if err != nil {
				return fmt.Errorf("temporal client: %w", err)
			}
			defer c.Close()

			w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
			w.RegisterWorkflow(workflows.RouteImportWorkflow)
			w.RegisterActivity(&workflows.ImportActivities{
				// The workflow publishes itself so that a failed announcement
				// can be compensated; the service gets no publisher.
				Segments:  usecases.NewSegmentService(routeRepo, segmentRepo, stationRepo, routeSvc, nil),
				Routes:    routeSvc,
				Publisher: publisher,
			})

			slog.Info("importer worker started", "task_queue", cfg.Temporal.TaskQueue)
			return w.Run(worker.InterruptCh())
		},
	}
}

func submitCmd() *cobra.Command {
	var (
		file string
		wait bool
	)

	cmd := &cobra.Command{
		Use:   "submit <route-id>",
		Short: "Start a route import from a JSON file of segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("sightseer-importer")
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			var body struct {
				Segments []domain.Segment `json:"segments"`
			}
			if err := json.Unmarshal(data, &body); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}

			c, err := dialTemporal(cfg)
			if err != nil {
				return fmt.Errorf("temporal client: %w", err)
			}
			defer c.Close()

			routeID := args[0]
			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:                       workflows.WorkflowID(routeID),
				TaskQueue:                cfg.Temporal.TaskQueue,
				WorkflowExecutionTimeout: 5 * time.Minute,
			}, workflows.RouteImportWorkflow, workflows.RouteImportInput{
				RouteID:  routeID,
				Segments: body.Segments,
			})
			if err != nil {
				return fmt.Errorf("start workflow: %w", err)
			}
			fmt.Printf("started %s (run %s)\n", run.GetID(), run.GetRunID())

			if !wait {
				return nil
			}
			var result workflows.RouteImportResult
			if err := run.Get(cmd.Context(), &result); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Printf("stored %d segments, chain %s\n", result.Segments, result.Outcome)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `JSON file with {"segments":[...]}`)
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the workflow to finish")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
