package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/reportengine/internal/infrastructure/config"
	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testDatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		MaxOpenConns:    7,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 30,
	}
}

func mockDialector(conn *sql.DB) gorm.Dialector {
	return postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	})
}

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mockDialector(mockDB), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestOpen(t *testing.T) {
	t.Run("configures pool and pings", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectPing()

		db, err := open(mockDialector(mockDB), testDatabaseConfig())
		require.NoError(t, err)

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 7, stats.MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when ping fails", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		_, err = open(mockDialector(mockDB), testDatabaseConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ping database")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pings exactly once", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectPing()
		mock.ExpectPing().WillReturnError(errors.New("second ping"))

		_, err = open(mockDialector(mockDB), testDatabaseConfig())
		require.NoError(t, err)
		assert.Error(t, mock.ExpectationsWereMet(), "only the first ping may be consumed")
	})

	t.Run("registers query tracing", func(t *testing.T) {
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		plugin := telemetry.NewDBTracingPlugin(tracingCfg, zap.NewNop())

		db, err := open(mockDialector(mockDB), testDatabaseConfig(), WithTracing(plugin))
		require.NoError(t, err)
		assert.NotNil(t, db.DB.Callback().Query().Get("report_timing:after_query"))
	})
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		gormDB, err := gorm.Open(mockDialector(mockDB), &gorm.Config{DisableAutomaticPing: true})
		require.NoError(t, err)
		db := &Database{DB: gormDB}

		mock.ExpectPing()
		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)
	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	mockDB.SetMaxOpenConns(3)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.MaxOpenConnections)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
}
