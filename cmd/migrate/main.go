// Package main runs the versioned Postgres migrations by hand: rolling back,
// reporting the version and clearing a dirty state after a failed run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pantrysense/v2/internal/infrastructure/config"
	gormrepo "github.com/pantrysense/v2/internal/infrastructure/persistence/gorm"
	"github.com/pantrysense/v2/internal/infrastructure/persistence/migrations"
	"github.com/pantrysense/v2/pkg/logger"
	"go.uber.org/zap"
)

const usage = "usage: migrate [-config path] up | down | version | force <version>"

// migrator is the part of migrations.Migrator the commands drive
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(version int) error
}

func main() {
	configPath := flag.String("config", os.Getenv("PANTRYSENSE_CONFIG"), "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.Driver != gormrepo.DriverPostgres {
		log.Fatalf("Versioned migrations need the postgres driver, configured %q", cfg.Database.Driver)
	}

	l, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Development: cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	lg := l.Named("migrate")
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := gormrepo.Open(ctx, gormrepo.Config{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.DatabaseDSN(),
		Name:     cfg.Database.Name,
		LogLevel: cfg.Database.LogLevel,
	}, lg)
	if err != nil {
		lg.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = gormrepo.Close(db) }()

	sqlDB, err := db.DB()
	if err != nil {
		lg.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	m, err := migrations.New(sqlDB, cfg.Database.Name, lg)
	if err != nil {
		lg.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, flag.Args(), os.Stdout); err != nil {
		lg.Error("Migration command failed", zap.Strings("args", flag.Args()), zap.Error(err))
		os.Exit(1)
	}
}

func run(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version %d dirty=%t\n", version, dirty)
		return nil
	case "force":
		if len(args) != 2 {
			return errors.New(usage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil || version < 0 {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.Force(version)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}
