package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/jobboard/internal/config"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

const (
	// defaultTxTimeout bounds transactions whose context carries no deadline
	defaultTxTimeout = 30 * time.Second
	connectTimeout   = 10 * time.Second
	slowQuery        = 500 * time.Millisecond
)

// PostgresDB wraps the shared connection pool
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB opens the pool and verifies one round trip.
// MaxConns is the upper bound on concurrent sessions; callers beyond it wait for a free connection.
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	poolConfig, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach %s:%s: %w", cfg.Database.Host, cfg.Database.Port, err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// buildPoolConfig maps the database section onto pgxpool settings
func buildPoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	maxConns := max(cfg.Database.MaxOpenConns, 1)
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = int32(min(max(cfg.Database.MaxIdleConns, 0), maxConns))

	lifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
	}
	poolConfig.MaxConnLifetime = lifetime

	poolConfig.ConnConfig.Tracer = &queryTracer{threshold: slowQuery}
	return poolConfig, nil
}

// Close releases every pooled connection
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs fn in a read-committed transaction. The transaction
// commits when fn returns nil and rolls back on error or panic.
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	return pgx.BeginTxFunc(ctx, db.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

type queryStartKey struct{}

type queryStart struct {
	at  time.Time
	sql string
}

// queryTracer logs statements that fail or run longer than threshold
type queryTracer struct {
	threshold time.Duration
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), sql: data.SQL})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)

	var event *zerolog.Event
	switch {
	case data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows):
		event = logger.Debug().Err(data.Err)
	case elapsed >= t.threshold:
		event = logger.Warn()
	default:
		return
	}
	event.Dur("elapsed", elapsed).Str("sql", start.sql).Msg("Database query")
}
