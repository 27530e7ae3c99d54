package leaderboard

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`CREATE TABLE scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player TEXT NOT NULL,
		category TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		score INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	)`); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func TestInsertAndTop(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testDB(t))

	entries := []Entry{
		{Player: "ada", Category: "Science", Difficulty: "Easy", Score: 90, Attempts: 5, ElapsedMs: 30000},
		{Player: "bob", Category: "Science", Difficulty: "Easy", Score: 100, Attempts: 4, ElapsedMs: 20000},
		{Player: "cat", Category: "Technology", Difficulty: "Hard", Score: 70, Attempts: 12, ElapsedMs: 90000},
		{Player: "dan", Category: "Science", Difficulty: "Easy", Score: 100, Attempts: 4, ElapsedMs: 15000},
	}
	for _, e := range entries {
		if err := s.Insert(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", e.Player, err)
		}
	}

	top, err := s.Top(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 4 {
		t.Fatalf("got %d rows, want 4", len(top))
	}
	// Score desc, then elapsed asc: dan (100/15s) before bob (100/20s).
	if top[0].Player != "dan" || top[1].Player != "bob" || top[2].Player != "ada" {
		t.Fatalf("order wrong: %v %v %v", top[0].Player, top[1].Player, top[2].Player)
	}

	sci, err := s.Top(ctx, "Science", "Easy", 2)
	if err != nil {
		t.Fatalf("filtered top: %v", err)
	}
	if len(sci) != 2 || sci[0].Player != "dan" {
		t.Fatalf("filtered rows wrong: %+v", sci)
	}

	none, err := s.Top(ctx, "Literature", "", 0)
	if err != nil {
		t.Fatalf("empty top: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("got %d rows for empty category, want 0", len(none))
	}
}
