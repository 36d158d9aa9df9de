package gorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/plugin/dbresolver"
)

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"", DriverSQLite, DriverPostgres} {
		d, err := dialectorFor(driver, "")
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}

	_, err := dialectorFor("mysql", "")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadBalancePolicy(t *testing.T) {
	assert.IsType(t, dbresolver.RandomPolicy{}, loadBalancePolicy("random"))
	assert.IsType(t, dbresolver.RandomPolicy{}, loadBalancePolicy(""))
	assert.NotNil(t, loadBalancePolicy("round_robin"))
}

func TestOpen_SQLiteWithReplica(t *testing.T) {
	log := zaptest.NewLogger(t)
	dsn := "file:open_replica?mode=memory&cache=shared"

	db, err := Open(context.Background(), Config{
		Driver:       DriverSQLite,
		DSN:          dsn,
		Replicas:     []string{dsn},
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		LogLevel:     "silent",
	}, log)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db, Config{Driver: DriverSQLite}, log))
	assert.True(t, db.Migrator().HasTable(&ReadingModel{}))
	assert.True(t, db.Migrator().HasTable("captures"))
}

func TestLogWriter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	w := &logWriter{logger: zap.New(core)}

	w.Printf("%s [%.3fms] SLOW SQL >= 200ms", "repo.go:10", 250.0)
	w.Printf("record error: %v", "boom")
	w.Printf("SELECT 1")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, zap.DebugLevel, entries[2].Level)
}
