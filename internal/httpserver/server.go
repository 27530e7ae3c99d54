// internal/httpserver/server.go
//
// HTTP server wiring for the defmatch backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", word-set and leaderboard routes.
//   - Game endpoints (optional auth): POST /game/new, POST /game/select,
//     POST /game/continue, GET /game/state.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me, /games/mine.
//   - On completion: score computation, leaderboard insert, user stat bump.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; routes still run for guests (tracked by an anon cookie).
//   - The engine itself never errors on player input: malformed selections
//     come back as outcome "ignored" with an unchanged state view.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"defmatch/internal/game"
	"defmatch/internal/leaderboard"
	"defmatch/internal/store"
	"defmatch/internal/words"
)

// Server bundles router, in-memory session store, DB handle, and the
// leaderboard store.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	lb    *leaderboard.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB) *Server {
	s := &Server{r: chi.NewRouter(), store: st, db: db, lb: leaderboard.NewStore(db)}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"defmatch","endpoints":["/health","/categories","/difficulties","/leaderboard","POST /game/new","POST /game/select","POST /game/continue","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.With(s.withOptionalAuth()).Post("/game/new", s.handleNewGame)
	s.r.With(s.withOptionalAuth()).Post("/game/select", s.handleSelect)
	s.r.With(s.withOptionalAuth()).Post("/game/continue", s.handleContinue)
	s.r.With(s.withOptionalAuth()).Get("/game/state", s.handleState)

	// Word sets + leaderboard
	s.mountWords(s.r)
	s.mountLeaderboard(s.r)

	// Auth + profile/stats (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	// Debug: word set counts
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		c, n := words.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"categories": c, "words": n})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// gameView is the full render state exposed to the presentation layer.
type gameView struct {
	GameID          string      `json:"gameId"`
	Category        string      `json:"category"`
	Difficulty      string      `json:"difficulty"`
	Cards           []game.Card `json:"cards"`
	Matched         []int       `json:"matched"`
	Selected        []int       `json:"selected"`
	Attempts        int         `json:"attempts"`
	PendingMismatch bool        `json:"pendingMismatch"`
	State           string      `json:"state"`
	TotalPairs      int         `json:"totalPairs"`
	MatchedPairs    int         `json:"matchedPairs"`
	ElapsedSeconds  int         `json:"elapsedSeconds"`
	Efficiency      *float64    `json:"efficiency,omitempty"` // absent until the first attempt
	Complete        bool        `json:"complete"`
}

func viewOf(g *game.Game) gameView {
	elapsed, _ := g.ElapsedSeconds()
	var eff *float64
	if v, ok := game.Efficiency(g.TotalPairs(), g.Attempts); ok {
		eff = &v
	}
	return gameView{
		GameID:          g.ID,
		Category:        g.Category,
		Difficulty:      g.Difficulty,
		Cards:           g.Deck,
		Matched:         g.MatchedIndices(),
		Selected:        append([]int{}, g.Selected...),
		Attempts:        g.Attempts,
		PendingMismatch: g.PendingMismatch,
		State:           g.State(),
		TotalPairs:      g.TotalPairs(),
		MatchedPairs:    g.MatchedCount(),
		ElapsedSeconds:  elapsed,
		Efficiency:      eff,
		Complete:        g.IsComplete(),
	}
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"` // Easy | Medium | Hard | Expert
}

// handleNewGame deals a new game and persists a DB "owner" row
// (either user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	pairs, ok := words.Pairs(req.Category)
	if !ok {
		http.Error(w, `{"error":"unknown_category"}`, http.StatusBadRequest)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "Easy"
	}

	g := game.New(pairs, words.PairCount(req.Difficulty))
	g.Category = req.Category
	g.Difficulty = req.Difficulty
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	// Persist owner row for history; the deck itself stays in memory.
	now := time.Now().UTC().Format(time.RFC3339)
	owner, isUser := s.ownerID(w, r)
	col := "anonymous_id"
	if isUser {
		col = "user_id"
	}
	if _, err := s.db.Exec(`INSERT INTO games (id, `+col+`, category, difficulty, pairs, started_at, status)
	                        VALUES (?,?,?,?,?,?,'playing')`,
		g.ID, owner, g.Category, g.Difficulty, g.TotalPairs(), now); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}

	_ = json.NewEncoder(w).Encode(viewOf(g))
}

// selectReq is the payload for POST /game/select.
type selectReq struct {
	GameID string `json:"gameId"`
	Index  int    `json:"index"`
}

// selectRes wraps the outcome of one selection plus the resulting state.
type selectRes struct {
	Outcome game.Outcome `json:"outcome"`
	Card    *game.Card   `json:"card,omitempty"` // the revealed card, when accepted
	Game    gameView     `json:"game"`
}

// handleSelect flips a card. Malformed selections (locked, out of range,
// reselect) are not errors: outcome "ignored", state unchanged.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	outcome := g.SelectCard(req.Index)
	if err := s.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	res := selectRes{Outcome: outcome, Game: viewOf(g)}
	if outcome != game.OutcomeIgnored {
		c := g.Deck[req.Index]
		res.Card = &c
	}

	if outcome == game.OutcomeMatched || outcome == game.OutcomeMismatch {
		s.persistAttempt(w, r, g)
	}
	// A game is finalized exactly once, on the completing match.
	if outcome == game.OutcomeMatched && g.IsComplete() {
		s.finishGame(w, r, g)
	}

	_ = json.NewEncoder(w).Encode(res)
}

// continueReq is the payload for POST /game/continue.
type continueReq struct {
	GameID string `json:"gameId"`
}

// handleContinue acknowledges a mismatch, releasing the selection lock.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req continueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	cleared := g.AcknowledgeMismatch()
	if err := s.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"cleared": cleared, "game": viewOf(g)})
}

// handleState returns the full render state for a game.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), r.URL.Query().Get("gameId"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(g))
}

// ------------------------- completion bookkeeping --------------------------

// persistAttempt mirrors the attempt counter into the games row
// (best effort, non-fatal if it fails).
func (s *Server) persistAttempt(w http.ResponseWriter, r *http.Request, g *game.Game) {
	owner, isUser := s.ownerID(w, r)
	col := "anonymous_id"
	if isUser {
		col = "user_id"
	}
	if _, err := s.db.Exec(`UPDATE games SET attempts=? WHERE id=? AND `+col+`=?`,
		g.Attempts, g.ID, owner); err != nil {
		log.Warn().Err(err).Msg("update attempts")
	}
}

// finishGame runs once when the last pair is matched: closes the games
// row, inserts a leaderboard entry, and bumps user stats.
func (s *Server) finishGame(w http.ResponseWriter, r *http.Request, g *game.Game) {
	elapsed, _ := g.ElapsedSeconds()
	score := game.Score(g.MatchedCount(), g.TotalPairs(), g.Attempts, elapsed)

	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	player := "anonymous"
	if me != nil {
		player = me.Username
	}

	owner, isUser := s.ownerID(w, r)
	col := "anonymous_id"
	if isUser {
		col = "user_id"
	}
	if _, err := s.db.Exec(`UPDATE games SET status='complete', score=?, attempts=?, finished_at=? WHERE id=? AND `+col+`=?`,
		score, g.Attempts, time.Now().UTC().Format(time.RFC3339), g.ID, owner); err != nil {
		log.Warn().Err(err).Msg("finish game")
	}

	if err := s.lb.Insert(r.Context(), leaderboard.Entry{
		Player:     player,
		Category:   g.Category,
		Difficulty: g.Difficulty,
		Score:      score,
		Attempts:   g.Attempts,
		ElapsedMs:  elapsed * 1000,
	}); err != nil {
		log.Warn().Err(err).Msg("insert score")
	}

	if me != nil {
		if err := s.bumpStats(me.ID, score); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
		}
	}
}

// bumpStats increments games played/completed and raises best_score.
func (s *Server) bumpStats(userID string, score int) error {
	_, err := s.db.Exec(`UPDATE users
	    SET games_played = games_played + 1,
	        completed    = completed + 1,
	        best_score   = CASE WHEN ? > best_score THEN ? ELSE best_score END
	    WHERE id=?`, score, score, userID)
	return err
}

// ownerID returns (userID, true) for signed-in players, otherwise the
// anon-cookie identifier and false.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return s.ensureAnonID(w, r), false
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
