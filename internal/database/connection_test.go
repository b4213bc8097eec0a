package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "pizza", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=pizza port=5432 sslmode=disable", pg.DSN())

	pg.URL = "postgres://u:p@db:5432/pizza"
	assert.Equal(t, "postgres://u:p@db:5432/pizza", pg.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Path: "pizza.sqlite"}
	assert.Equal(t, "pizza.sqlite", lite.DSN())

	assert.Empty(t, (&DatabaseConfig{Driver: "oracle"}).DSN())
	assert.NotContains(t, pg.String(), "password=p")
}

func TestInitDatabaseSQLiteAndMigrate(t *testing.T) {
	db, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Order{}))
	assert.True(t, db.Migrator().HasTable(&models.InventoryItem{}))
	assert.True(t, db.Migrator().HasTable(&models.OTP{}))
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	start := time.Now()
	_, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
	assert.Less(t, time.Since(start), time.Second, "unsupported drivers are not retried")
}

func TestInitDatabaseStopsRetryingOnCancel(t *testing.T) {
	original := retryDelays
	retryDelays = []time.Duration{time.Hour, time.Hour}
	defer func() { retryDelays = original }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// A directory cannot be opened as a database file
	_, err := InitDatabase(ctx, DatabaseConfig{Driver: "sqlite", Path: t.TempDir()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
