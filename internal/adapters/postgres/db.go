package postgres

import (
    "context"
    "embed"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/jackc/pgx/v5/stdlib"
    "github.com/pressly/goose/v3"
    "github.com/rs/zerolog/log"

    "freightdesk/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB implements every repository port on one pgx pool.
type DB struct {
    Pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*DB, error) {
    cfg, err := pgxpool.ParseConfig(url)
    if err != nil {
        return nil, err
    }
    cfg.MaxConns = 10
    cfg.HealthCheckPeriod = 30 * time.Second
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, err
    }
    return &DB{Pool: pool}, nil
}

func (db *DB) Close() { db.Pool.Close() }

// Migrate applies the embedded goose migrations.
func (db *DB) Migrate(ctx context.Context) error {
    goose.SetBaseFS(migrations)
    goose.SetLogger(gooseLogger{})
    if err := goose.SetDialect("postgres"); err != nil {
        return err
    }
    sqlDB := stdlib.OpenDBFromPool(db.Pool)
    defer func() { _ = sqlDB.Close() }()
    return goose.UpContext(ctx, sqlDB, "migrations")
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) { log.Info().Msgf(format, v...) }
func (gooseLogger) Fatalf(format string, v ...interface{}) { log.Fatal().Msgf(format, v...) }

// validID rejects ids that cannot be a row key so lookups report not found
// instead of a cast error.
func validID(id string) error {
    if _, err := uuid.Parse(id); err != nil {
        return domain.ErrNotFound
    }
    return nil
}

func notFound(err error) error {
    if errors.Is(err, pgx.ErrNoRows) {
        return domain.ErrNotFound
    }
    return err
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (db *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()
    return fn(tx)
}
