package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pickbetter/labelscan/internal/models"
)

// SQLiteStore is the default history backend: a single local file
// under the user config dir.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scan_history (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	brand      TEXT NOT NULL DEFAULT '',
	grade      TEXT NOT NULL,
	score      REAL NOT NULL,
	scanned_at TEXT NOT NULL,
	analysis   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_history_user ON scan_history(user_id, seq DESC);
`

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := models.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite history: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, userID string, item models.HistoryItem) error {
	analysisJSON, err := json.Marshal(item.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO scan_history(user_id, item_id, name, brand, grade, score, scanned_at, analysis)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, item.ID, item.Name, item.Brand, item.Grade, item.Score, item.ScannedAt, string(analysisJSON))
	if err != nil {
		return fmt.Errorf("insert history item: %w", err)
	}

	// evict everything beyond the cap, oldest first
	_, err = tx.ExecContext(ctx, `
DELETE FROM scan_history
WHERE user_id = ? AND seq NOT IN (
	SELECT seq FROM scan_history WHERE user_id = ? ORDER BY seq DESC LIMIT ?
)`, userID, userID, Cap)
	if err != nil {
		return fmt.Errorf("evict history overflow: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error) {
	if limit <= 0 || limit > Cap {
		limit = Cap
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT item_id, name, brand, grade, score, scanned_at, analysis
FROM scan_history
WHERE user_id = ?
ORDER BY seq DESC
LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryItem, 0, limit)
	for rows.Next() {
		var item models.HistoryItem
		var analysisJSON string
		if err := rows.Scan(&item.ID, &item.Name, &item.Brand, &item.Grade, &item.Score, &item.ScannedAt, &analysisJSON); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(analysisJSON), &item.Analysis); err != nil {
			return nil, fmt.Errorf("decode stored analysis: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scan_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
