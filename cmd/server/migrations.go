package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/renshuapp/renshu-api/internal/config"
)

const migrationsDir = "migrations"

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// runMigrations executes the given goose command against the configured
// database and returns once migrations settle.
func runMigrations(cfg *config.Config, command string) error {
	goose.SetLogger(&slogGooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("closing migration database connection failed", "error", closeErr)
		}
	}()

	dir, err := resolveMigrationsDir()
	if err != nil {
		return err
	}

	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "status":
		err = goose.Status(db, dir)
	default:
		return fmt.Errorf("unknown migration command: %q (want up, down, or status)", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	slog.Info("migrations completed", "command", command, "dir", dir)
	return nil
}

// resolveMigrationsDir finds the migrations directory relative to the
// working directory, so the binary works both from the repo root and
// from a deployment directory carrying migrations alongside it.
func resolveMigrationsDir() (string, error) {
	if info, err := os.Stat(migrationsDir); err == nil && info.IsDir() {
		return migrationsDir, nil
	}

	exe, err := os.Executable()
	if err == nil {
		alt := filepath.Join(filepath.Dir(exe), migrationsDir)
		if info, statErr := os.Stat(alt); statErr == nil && info.IsDir() {
			return alt, nil
		}
	}

	return "", fmt.Errorf("migrations directory %q not found", migrationsDir)
}
