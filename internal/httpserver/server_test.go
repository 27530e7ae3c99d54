package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"defmatch/internal/game"
	"defmatch/internal/store"
	"defmatch/internal/words"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	if err := words.Init(); err != nil {
		t.Fatalf("words init: %v", err)
	}
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY, username TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL, games_played INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0, best_score INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE games (
			id TEXT PRIMARY KEY, user_id TEXT, anonymous_id TEXT, category TEXT NOT NULL,
			difficulty TEXT NOT NULL, pairs INTEGER NOT NULL, attempts INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'playing', score INTEGER, started_at TEXT NOT NULL, finished_at TEXT)`,
		`CREATE TABLE scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT, player TEXT NOT NULL, category TEXT NOT NULL,
			difficulty TEXT NOT NULL, score INTEGER NOT NULL, attempts INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')))`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return New(store.NewMemoryStore(), db)
}

func doJSON(t *testing.T, s *Server, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if out != nil && rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr
}

func TestHealthAndNotFound(t *testing.T) {
	s := testServer(t)
	if rr := doJSON(t, s, "GET", "/health", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("/health = %d", rr.Code)
	}
	rr := doJSON(t, s, "GET", "/nope", nil, nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), "not_found") {
		t.Fatalf("/nope = %d %q", rr.Code, rr.Body.String())
	}
}

func TestCategoriesAndDifficulties(t *testing.T) {
	s := testServer(t)

	var cats []categoryInfo
	doJSON(t, s, "GET", "/categories", nil, &cats)
	if len(cats) < 3 {
		t.Fatalf("got %d categories, want >= 3", len(cats))
	}
	for _, c := range cats {
		if c.Pairs == 0 || len(c.Samples) == 0 {
			t.Fatalf("empty category listing: %+v", c)
		}
	}

	var diffs []words.Difficulty
	doJSON(t, s, "GET", "/difficulties", nil, &diffs)
	if len(diffs) != 4 || diffs[0].Name != "Easy" || diffs[0].Pairs != 4 {
		t.Fatalf("difficulty table wrong: %+v", diffs)
	}
}

func TestNewGameUnknownCategory(t *testing.T) {
	s := testServer(t)
	rr := doJSON(t, s, "POST", "/game/new", map[string]string{"category": "Nope"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("/game/new unknown category = %d", rr.Code)
	}
}

// findIndex locates a card by text in a dealt view.
func findIndex(t *testing.T, cards []game.Card, text string) int {
	t.Helper()
	for i, c := range cards {
		if c.Text == text {
			return i
		}
	}
	t.Fatalf("card %q not dealt", text)
	return -1
}

func TestGamePlayflow(t *testing.T) {
	s := testServer(t)

	var view gameView
	doJSON(t, s, "POST", "/game/new", map[string]string{"category": "Science", "difficulty": "Easy"}, &view)
	if len(view.Cards) != 8 || view.TotalPairs != 4 || view.State != "playing" {
		t.Fatalf("dealt view wrong: cards=%d pairs=%d state=%s", len(view.Cards), view.TotalPairs, view.State)
	}

	// Pick any word and deliberately mismatch it with a definition that
	// is not its partner.
	wordIdx := -1
	for i, c := range view.Cards {
		if c.Kind == game.KindWord {
			wordIdx = i
			break
		}
	}
	wrongDef := -1
	for i, c := range view.Cards {
		if c.Kind == game.KindDefinition && c.Text != view.Cards[wordIdx].PairText {
			wrongDef = i
			break
		}
	}

	var res selectRes
	doJSON(t, s, "POST", "/game/select", map[string]any{"gameId": view.GameID, "index": wordIdx}, &res)
	if res.Outcome != game.OutcomeSelected || res.Card == nil {
		t.Fatalf("first select: %+v", res)
	}
	doJSON(t, s, "POST", "/game/select", map[string]any{"gameId": view.GameID, "index": wrongDef}, &res)
	if res.Outcome != game.OutcomeMismatch || !res.Game.PendingMismatch {
		t.Fatalf("mismatch select: %+v", res)
	}

	// Locked until acknowledged.
	matchDef := findIndex(t, view.Cards, view.Cards[wordIdx].PairText)
	doJSON(t, s, "POST", "/game/select", map[string]any{"gameId": view.GameID, "index": matchDef}, &res)
	if res.Outcome != game.OutcomeIgnored {
		t.Fatalf("select while locked = %q", res.Outcome)
	}

	var cont struct {
		Cleared bool     `json:"cleared"`
		Game    gameView `json:"game"`
	}
	doJSON(t, s, "POST", "/game/continue", map[string]string{"gameId": view.GameID}, &cont)
	if !cont.Cleared || cont.Game.PendingMismatch || len(cont.Game.Selected) != 0 {
		t.Fatalf("continue: %+v", cont)
	}

	// Finish the game by always playing true pairs.
	for !res.Game.Complete {
		var state gameView
		doJSON(t, s, "GET", "/game/state?gameId="+view.GameID, nil, &state)
		played := false
		for i, c := range state.Cards {
			if c.Kind != game.KindWord || contains(state.Matched, i) {
				continue
			}
			doJSON(t, s, "POST", "/game/select", map[string]any{"gameId": view.GameID, "index": i}, &res)
			doJSON(t, s, "POST", "/game/select",
				map[string]any{"gameId": view.GameID, "index": findIndex(t, state.Cards, c.PairText)}, &res)
			if res.Outcome != game.OutcomeMatched {
				t.Fatalf("true pair for %q = %q", c.Text, res.Outcome)
			}
			played = true
			break
		}
		if !played {
			t.Fatal("no unmatched word left in incomplete game")
		}
	}
	if res.Game.State != "complete" || res.Game.MatchedPairs != 4 {
		t.Fatalf("final state: %+v", res.Game)
	}
	if res.Game.Efficiency == nil || *res.Game.Efficiency <= 0 || *res.Game.Efficiency > 100 {
		t.Fatalf("efficiency missing or out of range: %v", res.Game.Efficiency)
	}

	// Completion inserted a leaderboard row.
	var board struct {
		Top []struct {
			Player string `json:"player"`
			Score  int    `json:"score"`
		} `json:"top"`
	}
	doJSON(t, s, "GET", "/leaderboard?category=Science", nil, &board)
	if len(board.Top) != 1 || board.Top[0].Player != "anonymous" {
		t.Fatalf("leaderboard after completion: %+v", board)
	}
	if board.Top[0].Score <= 0 || board.Top[0].Score > 100 {
		t.Fatalf("score %d outside (0,100]", board.Top[0].Score)
	}
}

func contains(a []int, x int) bool {
	for _, v := range a {
		if v == x {
			return true
		}
	}
	return false
}

func TestSelectUnknownGame(t *testing.T) {
	s := testServer(t)
	rr := doJSON(t, s, "POST", "/game/select", map[string]any{"gameId": "missing", "index": 0}, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown game = %d", rr.Code)
	}
}

func TestWordsUpload(t *testing.T) {
	s := testServer(t)

	csv := "word,definition,category\nCrescendo,A gradual increase in loudness,Music\n"
	req := httptest.NewRequest("POST", "/words/upload", strings.NewReader(csv))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("upload = %d %q", rr.Code, rr.Body.String())
	}
	var res uploadRes
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Words != 1 || len(res.Categories) != 1 || res.Categories[0] != "Custom: Music" {
		t.Fatalf("upload result: %+v", res)
	}

	// The merged category is immediately playable.
	var cats []categoryInfo
	doJSON(t, s, "GET", "/categories", nil, &cats)
	found := false
	for _, c := range cats {
		if c.Name == "Custom: Music" {
			found = true
		}
	}
	if !found {
		t.Fatalf("uploaded category missing from %+v", cats)
	}
}

func TestWordsUploadBadFormat(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest("POST", "/words/upload", strings.NewReader("term,meaning\nAtom,Basic unit\n"))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad upload = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "missing required columns") {
		t.Fatalf("error body %q does not name missing columns", rr.Body.String())
	}
}

func TestAuthSignupAndGatedRoutes(t *testing.T) {
	s := testServer(t)

	rr := doJSON(t, s, "POST", "/auth/signup", map[string]string{"username": "player_1", "password": "correcthorse"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("signup = %d %q", rr.Code, rr.Body.String())
	}
	var cookie string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "defmatch_token" {
			cookie = c.Value
		}
	}
	if cookie == "" {
		t.Fatal("signup did not set auth cookie")
	}

	// Gated route rejects anonymous callers.
	if rr := doJSON(t, s, "GET", "/stats/me", nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /stats/me = %d", rr.Code)
	}

	// And accepts the bearer token.
	req := httptest.NewRequest("GET", "/stats/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authed /stats/me = %d %q", rec.Code, rec.Body.String())
	}
	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		BestScore   int `json:"bestScore"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.GamesPlayed != 0 {
		t.Fatalf("fresh user gamesPlayed = %d", stats.GamesPlayed)
	}

	// Duplicate username is a conflict.
	if rr := doJSON(t, s, "POST", "/auth/signup", map[string]string{"username": "player_1", "password": "correcthorse"}, nil); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", rr.Code)
	}
}
