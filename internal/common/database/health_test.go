package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecks_AllHealthy(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	checks := NewChecks()
	checks.Register("redis", RedisCheck(rdb))
	checks.Register("postgres", PostgresCheck(db))

	results, err := checks.Run(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecks_ReportsFailure(t *testing.T) {
	checks := NewChecks()
	checks.Register("ok", func(context.Context) error { return nil })
	checks.Register("broken", func(context.Context) error { return errors.New("connection refused") })

	results, err := checks.Run(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, "connection refused", results["broken"])
	assert.Equal(t, "ok", results["ok"])
}

func TestPostgresCheck_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	err = PostgresCheck(db)(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
