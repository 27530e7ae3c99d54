// internal/httpserver/routes_leaderboard.go
//
// Leaderboard reads. Rows are inserted server-side when a game
// completes (see finishGame in server.go), never by clients.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// mountLeaderboard registers the leaderboard routes.
func (s *Server) mountLeaderboard(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
}

// handleLeaderboard returns the top entries, optionally filtered by
// category and difficulty. Default limit 20.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	rows, err := s.lb.Top(r.Context(), q.Get("category"), q.Get("difficulty"), limit)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"category":   q.Get("category"),
		"difficulty": q.Get("difficulty"),
		"top":        rows,
	})
}
