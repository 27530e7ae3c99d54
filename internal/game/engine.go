// internal/game/engine.go
//
// Core engine for a single memory-matching session.
// Responsibilities:
//   - Deal a shuffled deck of word/definition cards from a sampled set of pairs.
//   - Apply card selections through a two-slot buffer with a pairing predicate.
//   - Enforce the mismatch lock (no selection until the mismatch is acknowledged).
//   - Track state transitions: playing → awaiting_ack → playing → complete.
//
// Notes:
//   - Word/definition pairs are supplied by the words package; the engine
//     only ever sees validated pairs.
//   - Every malformed interaction (bad index, reselect, select while locked)
//     is a silent no-op. Out-of-order clicks cannot corrupt the state.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand"
	"time"
)

// Outcome describes the effect of a single SelectCard call.
type Outcome string

const (
	// OutcomeIgnored means the selection was a no-op (mismatch pending,
	// index out of range, or card already matched/selected).
	OutcomeIgnored Outcome = "ignored"
	// OutcomeSelected means the card is now face up as the first of two.
	OutcomeSelected Outcome = "selected"
	// OutcomeMatched means the second card completed a pair.
	OutcomeMatched Outcome = "matched"
	// OutcomeMismatch means the second card did not pair; the game is now
	// locked until AcknowledgeMismatch.
	OutcomeMismatch Outcome = "mismatch"
)

// New deals a new game from the given pairs. It samples
// min(pairCount, len(pairs)) distinct pairs uniformly without replacement,
// emits one word card and one definition card per pair, and applies a
// uniform shuffle. pairCount is clamped; New never fails.
//
// The shuffle is deliberately unseeded: every playthrough gets a fresh
// permutation.
func New(pairs []Pair, pairCount int) *Game {
	if pairCount > len(pairs) {
		pairCount = len(pairs)
	}
	if pairCount < 0 {
		pairCount = 0
	}

	deck := make([]Card, 0, 2*pairCount)
	for _, i := range mrand.Perm(len(pairs))[:pairCount] {
		p := pairs[i]
		deck = append(deck,
			Card{Kind: KindWord, Text: p.Word, PairText: p.Definition},
			Card{Kind: KindDefinition, Text: p.Definition, PairText: p.Word},
		)
	}
	mrand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return &Game{
		ID:        randomID(),
		Deck:      deck,
		Matched:   make(map[int]bool),
		Selected:  []int{},
		StartedAt: time.Now(),
	}
}

// SelectCard flips the card at index, mutating the game state.
//
// No-ops (OutcomeIgnored, state unchanged):
//   - a mismatch is pending (must acknowledge first),
//   - index is out of range,
//   - the card is already matched or already selected.
//
// On the second selection the attempt counter increments and the pairing
// predicate decides matched vs. mismatch. On mismatch both cards stay
// face up and the game locks until AcknowledgeMismatch.
func (g *Game) SelectCard(index int) Outcome {
	g.repairState()

	if g.PendingMismatch {
		return OutcomeIgnored
	}
	if index < 0 || index >= len(g.Deck) {
		return OutcomeIgnored
	}
	if g.Matched[index] {
		return OutcomeIgnored
	}
	for _, s := range g.Selected {
		if s == index {
			return OutcomeIgnored
		}
	}

	g.Selected = append(g.Selected, index)
	if len(g.Selected) < 2 {
		return OutcomeSelected
	}

	g.Attempts++
	a, b := g.Deck[g.Selected[0]], g.Deck[g.Selected[1]]
	if isMatch(a, b) {
		g.Matched[g.Selected[0]] = true
		g.Matched[g.Selected[1]] = true
		g.Selected = g.Selected[:0]
		return OutcomeMatched
	}
	g.PendingMismatch = true
	return OutcomeMismatch
}

// AcknowledgeMismatch flips the two mismatched cards back down and
// releases the mismatch lock. No-op unless a mismatch is pending.
func (g *Game) AcknowledgeMismatch() bool {
	g.repairState()
	if !g.PendingMismatch {
		return false
	}
	g.Selected = g.Selected[:0]
	g.PendingMismatch = false
	return true
}

// IsComplete reports whether every card has been matched.
func (g *Game) IsComplete() bool {
	return len(g.Deck) > 0 && len(g.Matched) == len(g.Deck)
}

// ElapsedSeconds reports whole seconds since the deck was dealt,
// sampled on demand. ok is false if the game was never started.
func (g *Game) ElapsedSeconds() (int, bool) {
	if g.StartedAt.IsZero() {
		return 0, false
	}
	return int(time.Since(g.StartedAt) / time.Second), true
}

// State reports a coarse string representation of the current game state.
func (g *Game) State() string {
	switch {
	case g.IsComplete():
		return "complete"
	case g.PendingMismatch:
		return "awaiting_ack"
	default:
		return "playing"
	}
}

// isMatch is the pairing predicate: opposite kinds, each card naming the
// other as its partner.
func isMatch(a, b Card) bool {
	return a.Kind != b.Kind && a.PairText == b.Text && b.PairText == a.Text
}

// repairState restores consistency if callers ever mutate exported fields
// directly. Unreachable through SelectCard/AcknowledgeMismatch alone.
func (g *Game) repairState() {
	if len(g.Selected) > 2 {
		g.Selected = g.Selected[:0]
		g.PendingMismatch = false
	}
	if g.PendingMismatch && len(g.Selected) != 2 {
		g.PendingMismatch = false
	}
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
