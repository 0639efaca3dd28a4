package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"support-agent/internal/domain"
)

const createInteractionTable = `
CREATE TABLE IF NOT EXISTS interaction_log (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLiteStore keeps the interaction log in a local SQLite database.
type SQLiteStore struct {
	base
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("repository: sqlite path must not be empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createInteractionTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: migrate sqlite: %w", err)
	}
	return &SQLiteStore{base: newBase(opts), db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveInteraction(ctx context.Context, question, answer string) (domain.Interaction, error) {
	rec, err := s.newInteraction(question, answer)
	if err != nil {
		return domain.Interaction{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interaction_log (id, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Question, rec.Answer, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: SaveInteraction: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) GetInteraction(ctx context.Context, id string) (domain.Interaction, error) {
	var (
		rec     domain.Interaction
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, created_at FROM interaction_log WHERE id = ?`,
		strings.TrimSpace(id),
	).Scan(&rec.ID, &rec.Question, &rec.Answer, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Interaction{}, domain.ErrInteractionNotFound
	}
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: GetInteraction: %w", err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: GetInteraction: parse created_at: %w", err)
	}
	return rec, nil
}
