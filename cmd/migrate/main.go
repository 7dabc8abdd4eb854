package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studio/backend/internal/config"
	"github.com/studio/backend/internal/logging"
	"github.com/studio/backend/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)              apply pending migrations to DATABASE_URL
  fresh                  drop all tables, then apply every migration
  import <contacts.json> copy a JSON contact file into the STORE_BACKEND store`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO", "json")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		withPool(ctx, cfg.DatabaseURL, func(pool *pgxpool.Pool) {
			runIncremental(ctx, pool, findMigrationDir())
		})
	case "fresh":
		withPool(ctx, cfg.DatabaseURL, func(pool *pgxpool.Pool) {
			dir := findMigrationDir()
			runDropAll(ctx, pool, dir)
			runIncremental(ctx, pool, dir)
		})
	case "import":
		if len(os.Args) < 3 {
			usage()
		}
		runImport(ctx, cfg, os.Args[2])
	default:
		usage()
	}
}

func withPool(ctx context.Context, dbURL string, fn func(*pgxpool.Pool)) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()
	fn(pool)
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles returns the sorted *.up.sql file names in dir.
func collectUpFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Fatal("read migrations dir failed", "error", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files
}

func ensureSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		logging.Fatal("create schema_migrations failed", "error", err)
	}
}

func runIncremental(ctx context.Context, pool *pgxpool.Pool, dir string) {
	ensureSchemaMigrations(ctx, pool)

	applied := 0
	for _, filename := range collectUpFiles(dir) {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		if err := pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name,
		).Scan(&exists); err != nil {
			logging.Fatal("check migration failed", "migration", name, "error", err)
		}
		if exists {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			logging.Fatal("read migration failed", "migration", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			logging.Fatal("migration failed", "migration", name, "error", err)
		}
		if _, err := pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			logging.Fatal("record migration failed", "migration", name, "error", err)
		}
		applied++
		slog.Info("migration applied", "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
}

func runDropAll(ctx context.Context, pool *pgxpool.Pool, dir string) {
	slog.Info("dropping all tables")
	sql, err := os.ReadFile(filepath.Join(dir, "000_drop_all.sql"))
	if err != nil {
		logging.Fatal("read 000_drop_all.sql failed", "error", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		logging.Fatal("drop all failed", "error", err)
	}
	slog.Info("all tables dropped")
}

// runImport copies the records of a JSON contact file, ids and read flags
// included, into the configured store.
func runImport(ctx context.Context, cfg config.Config, path string) {
	contacts, err := repository.NewJSONFileContactRepository(path).Load()
	if err != nil {
		logging.Fatal("load contact file failed", "path", path, "error", err)
	}

	repo, err := repository.Open(ctx, cfg.StoreBackend, cfg.StoreTarget())
	if err != nil {
		logging.Fatal("open store failed", "backend", cfg.StoreBackend, "error", err)
	}
	defer repo.Close()

	importer, ok := repo.(repository.Importer)
	if !ok {
		logging.Fatal("store backend does not support import", "backend", cfg.StoreBackend)
	}
	if err := importer.Import(ctx, contacts); err != nil {
		logging.Fatal("import failed", "error", err)
	}
	slog.Info("contacts imported", "count", len(contacts), "backend", cfg.StoreBackend)
}
