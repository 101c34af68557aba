package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS player_scores (
    player_id TEXT NOT NULL,
    field TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (player_id, field)
);
`

const upsertPostgres = `
INSERT INTO player_scores (player_id, field, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (player_id, field) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at`

type PoolConfig struct {
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// PostgresStore keeps scores in PostgreSQL. It is used instead of SQLite when
// a database URL is configured.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ ScoreStore = (*PostgresStore)(nil)

func NewPostgres(ctx context.Context, dsn string, cfg PoolConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, playerID string) (score.State, error) {
	if playerID == "" {
		return score.State{}, ErrInvalidPlayer
	}

	rows, err := s.pool.Query(ctx, "SELECT field, value FROM player_scores WHERE player_id = $1", playerID)
	if err != nil {
		return score.State{}, err
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return score.State{}, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return score.State{}, err
	}

	return decodeState(values), nil
}

func (s *PostgresStore) Save(ctx context.Context, playerID string, state score.State) error {
	if playerID == "" {
		return ErrInvalidPlayer
	}

	return s.withinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for key, value := range encodeState(state) {
			if _, err := tx.Exec(ctx, upsertPostgres, playerID, key, value); err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Reset(ctx context.Context, playerID string) error {
	return s.Save(ctx, playerID, score.State{})
}

func (s *PostgresStore) withinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
