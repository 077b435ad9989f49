package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTracer struct {
	starts, ends int
}

func (c *countingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	c.starts++
	return ctx
}

func (c *countingTracer) TraceQueryEnd(_ context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	c.ends++
}

func TestMultiTracer(t *testing.T) {
	a, b := &countingTracer{}, &countingTracer{}
	mt := &multiTracer{tracers: []pgx.QueryTracer{a, b}}

	ctx := mt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	mt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 1, a.starts)
	assert.Equal(t, 1, b.ends)
}

func TestApplyPoolSettings(t *testing.T) {
	poolConfig, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/issues?sslmode=disable")
	require.NoError(t, err)

	applyPoolSettings(poolConfig, config.DatabaseConfig{
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 10,
	})

	assert.Equal(t, int32(8), poolConfig.MaxConns)
	assert.Equal(t, int32(2), poolConfig.MinConns)
	assert.Equal(t, time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, 10*time.Second, poolConfig.MaxConnIdleTime)
}

// TestMigrateDSN runs against a real database when ISSUES_TEST_DATABASE_URL is set.
func TestMigrateDSN(t *testing.T) {
	dsn := os.Getenv("ISSUES_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ISSUES_TEST_DATABASE_URL not set")
	}

	logger := zerolog.Nop()
	ctx := context.Background()

	require.NoError(t, MigrateDSN(ctx, &logger, dsn))
	// A second run is a no-op.
	require.NoError(t, MigrateDSN(ctx, &logger, dsn))
}
