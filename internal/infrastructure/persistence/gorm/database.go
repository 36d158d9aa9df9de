package gorm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pantrysense/v2/internal/infrastructure/persistence/migrations"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds relational store settings
type Config struct {
	Driver             string
	DSN                string
	Name               string
	Replicas           []string
	LoadBalancePolicy  string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	LogLevel           string
}

// Open connects to the configured database, applies pool settings and
// registers read replicas when any are configured
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("database")

	dialector, err := dialectorFor(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(cfg, log),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if len(cfg.Replicas) > 0 {
		if err := registerReplicas(db, cfg); err != nil {
			log.Warn("Failed to register read replicas", zap.Error(err))
		} else {
			log.Info("Read replicas configured",
				zap.Int("replica_count", len(cfg.Replicas)),
				zap.String("load_balance_policy", cfg.LoadBalancePolicy),
			)
		}
	}

	log.Info("Database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate brings the schema up to date. SQLite uses AutoMigrate; Postgres runs
// the versioned migrations.
func Migrate(db *gorm.DB, cfg Config, log *zap.Logger) error {
	if cfg.Driver != DriverPostgres {
		if err := db.AutoMigrate(AllModels()...); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := migrations.New(sqlDB, cfg.Name, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func registerReplicas(db *gorm.DB, cfg Config) error {
	replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
	for _, dsn := range cfg.Replicas {
		d, err := dialectorFor(cfg.Driver, dsn)
		if err != nil {
			return err
		}
		replicas = append(replicas, d)
	}

	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   loadBalancePolicy(cfg.LoadBalancePolicy),
	}))
}

func loadBalancePolicy(name string) dbresolver.Policy {
	if name == "round_robin" {
		return dbresolver.RoundRobinPolicy()
	}
	return dbresolver.RandomPolicy{}
}

func newGormLogger(cfg Config, log *zap.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	switch cfg.LogLevel {
	case "debug":
		level = gormlogger.Info
	case "error":
		level = gormlogger.Error
	case "silent":
		level = gormlogger.Silent
	}

	threshold := cfg.SlowQueryThreshold
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}

	return gormlogger.New(&logWriter{logger: log}, gormlogger.Config{
		SlowThreshold:             threshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// logWriter routes GORM's printf-style output into zap
type logWriter struct {
	logger *zap.Logger
}

func (w *logWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case strings.Contains(msg, "SLOW SQL"):
		w.logger.Warn(msg)
	case strings.Contains(msg, "rror"):
		w.logger.Error(msg)
	default:
		w.logger.Debug(msg)
	}
}
