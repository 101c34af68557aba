// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_scores (
    player_id TEXT NOT NULL,
    field TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (player_id, field)
);
`

const upsertSQLite = `
INSERT INTO player_scores (player_id, field, value, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (player_id, field) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at`

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check: *SQLiteStore satisfies the ScoreStore interface.
var _ ScoreStore = (*SQLiteStore)(nil)

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single writer avoids SQLITE_BUSY between concurrent sessions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, playerID string) (score.State, error) {
	if playerID == "" {
		return score.State{}, ErrInvalidPlayer
	}

	rows, err := s.db.QueryContext(ctx, "SELECT field, value FROM player_scores WHERE player_id = ?", playerID)
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

func (s *SQLiteStore) Save(ctx context.Context, playerID string, state score.State) error {
	if playerID == "" {
		return ErrInvalidPlayer
	}
	return s.put(ctx, playerID, encodeState(state))
}

func (s *SQLiteStore) Reset(ctx context.Context, playerID string) error {
	return s.Save(ctx, playerID, score.State{})
}

// put writes raw key/value pairs for a player in one transaction.
func (s *SQLiteStore) put(ctx context.Context, playerID string, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, upsertSQLite, playerID, key, value); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}

	return tx.Commit()
}
