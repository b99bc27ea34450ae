package database

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/zap/zaptest"

	"github.com/flarecast/flarecast-backend/internal/infrastructure/config"
	"github.com/flarecast/flarecast-backend/internal/testutil/containers"
)

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	// Expire the open window.
	cb.mu.Lock()
	cb.lastFailureTime = time.Now().Add(-2 * time.Minute)
	cb.mu.Unlock()
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State(), "a failure while half open reopens")

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestConfigurePgxPool(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		maxConns int32
		minConns int32
		lifetime time.Duration
	}{
		{"defaults", config.DatabaseConfig{}, defaultMaxConns, defaultMinConns, defaultMaxConnLifetime},
		{"configured", config.DatabaseConfig{MaxOpenConns: 8, MaxIdleConns: 3, ConnMaxLifetime: time.Minute}, 8, 3, time.Minute},
		{"idle capped by max", config.DatabaseConfig{MaxOpenConns: 4, MaxIdleConns: 10}, 4, 4, defaultMaxConnLifetime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/flarecast")
			require.NoError(t, err)

			p := &ConnectionPool{logger: zaptest.NewLogger(t), circuitBreaker: NewCircuitBreaker(1, time.Minute)}
			p.configurePgxPool(pc, tt.cfg)

			assert.Equal(t, tt.maxConns, pc.MaxConns)
			assert.Equal(t, tt.minConns, pc.MinConns)
			assert.Equal(t, tt.lifetime, pc.MaxConnLifetime)
			assert.Equal(t, "flarecast", pc.ConnConfig.RuntimeParams["application_name"])
			assert.True(t, pc.BeforeAcquire(context.Background(), nil))
		})
	}
}

func TestNewConnectionPool_InvalidURL(t *testing.T) {
	_, err := NewConnectionPool(context.Background(), config.DatabaseConfig{URL: "://bad"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database URL")
}

func TestNewConnectionPool_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}
	ctx := context.Background()

	pg, err := containers.NewPostgresContainer(ctx)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	pool, err := NewConnectionPool(ctx, config.DatabaseConfig{URL: pg.ConnectionString, MaxOpenConns: 4}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pool.Ping(ctx))
	assert.Equal(t, CircuitClosed, pool.BreakerState())

	var one int
	require.NoError(t, pool.Pool().QueryRow(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
