// internal/httpserver/routes_words.go
//
// Word-set browsing and CSV upload.
// Exposes:
//   - GET  /categories    → category names, pair counts, sample entries
//   - GET  /difficulties  → the difficulty table (pairs + time limits)
//   - POST /words/upload  → CSV body with word/definition[/category] columns
//
// Upload is the one route that surfaces a data error to the user: a CSV
// missing required columns comes back 400 with the DataFormatError text.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"defmatch/internal/game"
	"defmatch/internal/words"
)

// mountWords registers the word-set routes.
func (s *Server) mountWords(r chi.Router) {
	r.Get("/categories", s.handleCategories)
	r.Get("/difficulties", s.handleDifficulties)
	r.Post("/words/upload", s.handleWordsUpload)
}

// categoryInfo is one entry in the /categories listing.
type categoryInfo struct {
	Name    string      `json:"name"`
	Pairs   int         `json:"pairs"`
	Samples []game.Pair `json:"samples"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	names := words.Categories()
	out := make([]categoryInfo, 0, len(names))
	for _, name := range names {
		pairs, _ := words.Pairs(name)
		out = append(out, categoryInfo{
			Name:    name,
			Pairs:   len(pairs),
			Samples: words.Samples(name, 3),
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleDifficulties(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(words.Difficulties())
}

// uploadRes reports what an upload added.
type uploadRes struct {
	Categories []string `json:"categories"`
	Words      int      `json:"words"`
}

// handleWordsUpload parses a CSV request body and merges its word sets.
func (s *Server) handleWordsUpload(w http.ResponseWriter, r *http.Request) {
	groups, err := words.ParseWordSets(r.Body)
	if err != nil {
		var dfe *words.DataFormatError
		if errors.As(err, &dfe) {
			http.Error(w, `{"error":"`+dfe.Error()+`"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"invalid_csv"}`, http.StatusBadRequest)
		return
	}
	cats, n := words.MergeCustom(groups)
	log.Info().Strs("categories", cats).Int("words", n).Msg("custom words loaded")
	_ = json.NewEncoder(w).Encode(uploadRes{Categories: cats, Words: n})
}
