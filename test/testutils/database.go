package testutils

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	gormrepo "github.com/pantrysense/v2/internal/infrastructure/persistence/gorm"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// SetupSQLite opens a private in-memory SQLite database with the schema applied
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg := gormrepo.Config{
		Driver:   gormrepo.DriverSQLite,
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	}
	log := zaptest.NewLogger(t)

	db, err := gormrepo.Open(context.Background(), cfg, log)
	require.NoError(t, err, "Failed to open sqlite database")
	require.NoError(t, gormrepo.Migrate(db, cfg, log), "Failed to migrate sqlite database")

	t.Cleanup(func() {
		_ = gormrepo.Close(db)
	})
	return db
}

// PostgresConfig holds test database container settings
type PostgresConfig struct {
	Image    string
	Database string
	Username string
	Password string
}

// DefaultPostgresConfig returns the default test database configuration
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Image:    "postgres:15-alpine",
		Database: "pantrysense_test",
		Username: "test_user",
		Password: "test_password",
	}
}

// TestDatabase is a migrated Postgres running in a container
type TestDatabase struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// SetupPostgres starts a Postgres container and applies the versioned migrations
func SetupPostgres(t *testing.T, cfg PostgresConfig) *TestDatabase {
	t.Helper()
	ctx := context.Background()
	port := nat.Port("5432/tcp")

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.Image,
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"POSTGRES_DB":       cfg.Database,
				"POSTGRES_USER":     cfg.Username,
				"POSTGRES_PASSWORD": cfg.Password,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForListeningPort(port),
			),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, mapped.Port(), cfg.Username, cfg.Password, cfg.Database)
	dbCfg := gormrepo.Config{
		Driver:   gormrepo.DriverPostgres,
		DSN:      dsn,
		Name:     cfg.Database,
		LogLevel: "silent",
	}
	log := zaptest.NewLogger(t)

	db, err := gormrepo.Open(ctx, dbCfg, log)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, gormrepo.Migrate(db, dbCfg, log), "Failed to run migrations")
	t.Cleanup(func() {
		_ = gormrepo.Close(db)
	})

	return &TestDatabase{Container: container, DB: db, DSN: dsn}
}

// Truncate empties the application tables between tests
func (td *TestDatabase) Truncate(t *testing.T) {
	t.Helper()
	require.NoError(t, td.DB.Exec("TRUNCATE TABLE sensor_readings, captures RESTART IDENTITY").Error)
}

// SetupRedis starts a Redis container and returns its address
func SetupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	port := nat.Port("6379/tcp")

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}
