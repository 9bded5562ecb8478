package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pickbetter/labelscan/internal/models"
)

// PostgresStore is the shared-database history backend, used when
// several devices should see the same history.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scan_history (
	seq        BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	brand      TEXT NOT NULL DEFAULT '',
	grade      TEXT NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	scanned_at TEXT NOT NULL,
	analysis   JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_history_user ON scan_history(user_id, seq DESC);
`

func OpenPostgres(ctx context.Context, cfg models.DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect postgres history: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres history: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Append(ctx context.Context, userID string, item models.HistoryItem) error {
	analysisJSON, err := json.Marshal(item.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin history append: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO scan_history(user_id, item_id, name, brand, grade, score, scanned_at, analysis)
VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, item.ID, item.Name, item.Brand, item.Grade, item.Score, item.ScannedAt, analysisJSON)
	if err != nil {
		return fmt.Errorf("insert history item: %w", err)
	}

	_, err = tx.Exec(ctx, `
DELETE FROM scan_history
WHERE user_id = $1 AND seq NOT IN (
	SELECT seq FROM scan_history WHERE user_id = $2 ORDER BY seq DESC LIMIT $3
)`, userID, userID, Cap)
	if err != nil {
		return fmt.Errorf("evict history overflow: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error) {
	if limit <= 0 || limit > Cap {
		limit = Cap
	}
	rows, err := s.pool.Query(ctx, `
SELECT item_id, name, brand, grade, score, scanned_at, analysis
FROM scan_history
WHERE user_id = $1
ORDER BY seq DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryItem, 0, limit)
	for rows.Next() {
		var item models.HistoryItem
		var analysisJSON []byte
		if err := rows.Scan(&item.ID, &item.Name, &item.Brand, &item.Grade, &item.Score, &item.ScannedAt, &analysisJSON); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal(analysisJSON, &item.Analysis); err != nil {
			return nil, fmt.Errorf("decode stored analysis: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM scan_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
