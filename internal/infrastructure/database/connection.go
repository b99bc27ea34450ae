package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/flarecast/flarecast-backend/internal/infrastructure/config"
)

// Pool defaults used when the config leaves a value unset.
const (
	defaultMaxConns        = 25
	defaultMinConns        = 2
	defaultMaxConnLifetime = 30 * time.Minute
	healthCheckInterval    = 10 * time.Second
	connectTimeout         = 10 * time.Second
)

// ConnectionPool wraps the pgx pool with a background health check and a
// circuit breaker that refuses new acquisitions while the database is down.
type ConnectionPool struct {
	primary         *pgxpool.Pool
	logger          *zap.Logger
	healthCheckStop chan struct{}
	closeOnce       sync.Once
	circuitBreaker  *CircuitBreaker
}

// CircuitBreaker trips after threshold consecutive health check failures
// and half-opens after timeout.
type CircuitBreaker struct {
	mu              sync.Mutex
	failureCount    int
	lastFailureTime time.Time
	state           CircuitState
	timeout         time.Duration
	threshold       int
}

type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{threshold: threshold, timeout: timeout, state: CircuitClosed}
}

// NewConnectionPool connects to the database and starts health checks.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*ConnectionPool, error) {
	pool := &ConnectionPool{
		logger:          logger,
		healthCheckStop: make(chan struct{}),
		circuitBreaker:  NewCircuitBreaker(10, 30*time.Second),
	}

	pgxCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	pool.configurePgxPool(pgxCfg, cfg)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool.primary, err = pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.primary.Ping(ctx); err != nil {
		pool.primary.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	go pool.healthCheckRoutine()

	logger.Info("database connection pool initialized",
		zap.Int32("max_connections", pgxCfg.MaxConns),
		zap.Int32("min_connections", pgxCfg.MinConns))

	return pool, nil
}

// configurePgxPool applies pool sizing, session parameters and callbacks.
func (p *ConnectionPool) configurePgxPool(pc *pgxpool.Config, cfg config.DatabaseConfig) {
	pc.MaxConns = defaultMaxConns
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.MaxOpenConns)
	}
	pc.MinConns = defaultMinConns
	if cfg.MaxIdleConns > 0 {
		pc.MinConns = int32(min(cfg.MaxIdleConns, int(pc.MaxConns)))
	}
	pc.MaxConnLifetime = defaultMaxConnLifetime
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	pc.MaxConnIdleTime = 10 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	pc.ConnConfig.ConnectTimeout = 5 * time.Second

	// Forecasting only reads; keep sessions short and read-only.
	pc.ConnConfig.RuntimeParams["application_name"] = "flarecast"
	pc.ConnConfig.RuntimeParams["timezone"] = "UTC"
	pc.ConnConfig.RuntimeParams["statement_timeout"] = "15s"
	pc.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"] = "60s"

	pc.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		p.logger.Debug("establishing database connection",
			zap.String("host", cc.Host),
			zap.Uint16("port", cc.Port))
		return nil
	}

	pc.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		return p.circuitBreaker.Allow()
	}
}

// Pool returns the underlying pgx pool.
func (p *ConnectionPool) Pool() *pgxpool.Pool {
	return p.primary
}

// Ping checks connectivity for readiness probes.
func (p *ConnectionPool) Ping(ctx context.Context) error {
	if err := p.primary.Ping(ctx); err != nil {
		p.circuitBreaker.RecordFailure()
		return err
	}
	p.circuitBreaker.RecordSuccess()
	return nil
}

// BreakerState reports the circuit breaker state.
func (p *ConnectionPool) BreakerState() CircuitState {
	return p.circuitBreaker.State()
}

func (p *ConnectionPool) healthCheckRoutine() {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.performHealthCheck()
		case <-p.healthCheckStop:
			return
		}
	}
}

func (p *ConnectionPool) performHealthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		p.logger.Error("database health check failed",
			zap.Error(err),
			zap.Stringer("circuit", p.circuitBreaker.State()))
		return
	}

	stats := p.primary.Stat()
	p.logger.Debug("database pool stats",
		zap.Int32("acquired", stats.AcquiredConns()),
		zap.Int32("idle", stats.IdleConns()),
		zap.Int64("max_lifetime_destroyed", stats.MaxLifetimeDestroyCount()))
}

// Close stops health checks and closes all connections.
func (p *ConnectionPool) Close() {
	p.closeOnce.Do(func() {
		close(p.healthCheckStop)
		p.primary.Close()
		p.logger.Info("database connection pool closed")
	})
}

// Allow reports whether a new acquisition may proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			cb.state = CircuitHalfOpen
			return true
		}
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = time.Now()
	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.threshold {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
