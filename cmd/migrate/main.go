package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/samirrijal/sightseer/internal/adapters/postgres"
	"github.com/samirrijal/sightseer/internal/pkg/config"
)

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    filename   TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	var dir string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply SQL migrations to the sightseer database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory holding *.sql migrations")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations in filename order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *postgres.DB) error {
				return up(cmd.Context(), db, dir)
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *postgres.DB) error {
				return status(cmd.Context(), db, dir)
			})
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func withDB(ctx context.Context, fn func(*postgres.DB) error) error {
	cfg, err := config.Load("sightseer-migrate")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := postgres.New(connectCtx, cfg.Database.DSN(), 2)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	if _, err := db.Pool.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return fn(db)
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func applied(ctx context.Context, db *postgres.DB) (map[string]time.Time, error) {
	rows, err := db.Pool.Query(ctx, `SELECT filename, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var at time.Time
		if err := rows.Scan(&name, &at); err != nil {
			return nil, err
		}
		out[name] = at
	}
	return out, rows.Err()
}

func up(ctx context.Context, db *postgres.DB, dir string) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}
	done, err := applied(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	count := 0
	for _, f := range files {
		name := filepath.Base(f)
		if _, ok := done[name]; ok {
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		err = db.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}

		fmt.Printf("OK  %s\n", name)
		count++
	}

	log.Printf("%d migration(s) applied", count)
	return nil
}

func status(ctx context.Context, db *postgres.DB, dir string) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}
	done, err := applied(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	for _, f := range files {
		name := filepath.Base(f)
		if at, ok := done[name]; ok {
			fmt.Printf("applied  %s  %s\n", at.Format(time.RFC3339), name)
		} else {
			fmt.Printf("pending  %-25s  %s\n", "", name)
		}
	}
	return nil
}
