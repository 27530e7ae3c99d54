// internal/leaderboard/store.go
//
// SQLite-backed leaderboard for finished games. One row per completed
// playthrough; queries return the top entries for an optional
// category/difficulty filter.

package leaderboard

import (
	"context"
	"database/sql"
)

// Entry is one finished game, as inserted on completion.
type Entry struct {
	Player     string `json:"player"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Score      int    `json:"score"`
	Attempts   int    `json:"attempts"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// Row is one leaderboard line as returned to clients.
type Row struct {
	Player     string `json:"player"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Score      int    `json:"score"`
	Attempts   int    `json:"attempts"`
	ElapsedMs  int    `json:"elapsedMs"`
	CreatedAt  string `json:"createdAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records a finished game.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores(player, category, difficulty, score, attempts, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`,
		e.Player, e.Category, e.Difficulty, e.Score, e.Attempts, e.ElapsedMs,
	)
	return err
}

// Top returns the best entries, score descending with faster times
// breaking ties. Empty category/difficulty match everything.
func (s *Store) Top(ctx context.Context, category, difficulty string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, category, difficulty, score, attempts, elapsed_ms, created_at
		 FROM scores
		 WHERE (?='' OR category=?) AND (?='' OR difficulty=?)
		 ORDER BY score DESC, elapsed_ms ASC, created_at ASC
		 LIMIT ?`,
		category, category, difficulty, difficulty, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Player, &r.Category, &r.Difficulty, &r.Score, &r.Attempts, &r.ElapsedMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
