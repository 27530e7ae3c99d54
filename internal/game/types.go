// internal/game/types.go
//
// Core type definitions for the memory-matching game engine.
// Defines:
//   - CardKind: which face a card carries (word or definition).
//   - Card: one tile in the deck.
//   - Pair: a word together with its definition, as loaded from a word set.
//   - Game: state for a single in-progress or finished game.

package game

import (
	"sort"
	"time"
)

// CardKind says which side of a pair a card carries.
// Possible values:
//   - "word":       the vocabulary word itself.
//   - "definition": the matching definition text.
type CardKind string

const (
	KindWord       CardKind = "word"
	KindDefinition          = "definition"
)

// Pair is one word and its correct definition. A pair becomes two
// distinct cards in the deck.
type Pair struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Card is a single tile. PairText is the text of the one other card in
// the deck that correctly matches this one. Cards are immutable once
// the deck is built.
type Card struct {
	Kind     CardKind `json:"kind"`
	Text     string   `json:"text"`
	PairText string   `json:"pairText"`
}

// Game holds the state of a single matching-game session.
//
// Invariants (maintained by the engine, checked by repairState):
//   - len(Selected) is 0, 1, or 2; Selected and Matched are disjoint.
//   - PendingMismatch is true iff exactly two selected cards do not pair.
//   - len(Matched) is always even (cards are matched two at a time).
type Game struct {
	ID              string       // Unique game identifier (random hex string).
	Category        string       // Word-set category the deck was drawn from.
	Difficulty      string       // Difficulty label the pair count came from.
	Deck            []Card       // Shuffled word + definition cards, 2 per pair.
	Matched         map[int]bool // Deck indices already paired off.
	Selected        []int        // Deck indices currently face up, at most 2.
	Attempts        int          // Number of two-card comparisons made.
	StartedAt       time.Time    // When the deck was dealt; zero if never started.
	PendingMismatch bool         // Two non-matching cards showing, awaiting acknowledgement.
}

// TotalPairs reports the number of pairs in the deck.
func (g *Game) TotalPairs() int { return len(g.Deck) / 2 }

// MatchedCount reports the number of pairs found so far.
func (g *Game) MatchedCount() int { return len(g.Matched) / 2 }

// MatchedIndices returns the matched deck indices in ascending order,
// for rendering and serialization.
func (g *Game) MatchedIndices() []int {
	out := make([]int, 0, len(g.Matched))
	for i := range g.Matched {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
