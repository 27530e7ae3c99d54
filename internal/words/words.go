// internal/words/words.go
//
// Category word-set management for the matching game.
//
// Responsibilities:
//   - Load the built-in category sets from the embedded CSV asset, optionally
//     merged with an environment-provided CSV file.
//   - Maintain the category → (word → definition) table behind an RWMutex,
//     since CSV uploads extend it while games are being dealt.
//   - Supply accessors: Categories, Pairs, Samples, Stats, MergeCustom.
//
// Initialization behavior (Init):
//   1. Parse the embedded default sets (Technology, Science, Literature).
//   2. If WORDS_FILE is set, parse that CSV too and merge its categories
//      over the defaults.
//   3. Initialization runs once (sync.Once).
//
// Environment variables:
//   WORDS_FILE=/path/to/wordsets.csv
//
// Constraints:
//   • Words within a category are deduplicated (map semantics, last
//     definition wins).
//   • Category names are kept as written in the source.

package words

import (
	"errors"
	"os"
	"sort"
	"sync"

	"defmatch/assets"
	"defmatch/internal/game"
)

var (
	initOnce   sync.Once
	initialErr error

	mu   sync.RWMutex
	sets map[string]map[string]string // category -> word -> definition
)

// Init loads word sets exactly once.
// Returns an error if no categories end up loaded.
func Init() error {
	initOnce.Do(func() {
		table := make(map[string]map[string]string)

		raw, err := assets.DefaultWordSets()
		if err != nil {
			initialErr = err
			return
		}
		defaults, err := ParseWordSets(bytesReader(raw))
		if err != nil {
			initialErr = err
			return
		}
		mergeInto(table, defaults)

		if path := os.Getenv("WORDS_FILE"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				initialErr = err
				return
			}
			extra, err := ParseWordSets(f)
			_ = f.Close()
			if err != nil {
				initialErr = err
				return
			}
			mergeInto(table, extra)
		}

		if len(table) == 0 {
			initialErr = errors.New("words: no categories loaded")
			return
		}

		mu.Lock()
		sets = table
		mu.Unlock()
	})
	return initialErr
}

// mergeInto copies src groups into dst. Rows that arrived without a
// category land under "Custom Words".
func mergeInto(dst map[string]map[string]string, src map[string]map[string]string) {
	for cat, entries := range src {
		if cat == "" {
			cat = "Custom Words"
		}
		if dst[cat] == nil {
			dst[cat] = make(map[string]string, len(entries))
		}
		for w, d := range entries {
			dst[cat][w] = d
		}
	}
}

// Categories returns the loaded category names in sorted order.
func Categories() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(sets))
	for c := range sets {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Pairs returns the deduplicated word/definition pairs for a category,
// sorted by word. ok is false for unknown categories.
func Pairs(category string) ([]game.Pair, bool) {
	mu.RLock()
	defer mu.RUnlock()
	entries, ok := sets[category]
	if !ok {
		return nil, false
	}
	out := make([]game.Pair, 0, len(entries))
	for w, d := range entries {
		out = append(out, game.Pair{Word: w, Definition: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, true
}

// Samples returns up to n example pairs from a category, for the
// category-browsing endpoint.
func Samples(category string, n int) []game.Pair {
	pairs, ok := Pairs(category)
	if !ok {
		return nil
	}
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// MergeCustom adds uploaded groups to the table at runtime. Named
// categories are stored under "Custom: <name>"; unnamed rows land under
// "Custom Words". Returns the affected category names (sorted) and the
// number of words merged.
func MergeCustom(groups map[string]map[string]string) (categories []string, words int) {
	mu.Lock()
	defer mu.Unlock()
	if sets == nil {
		sets = make(map[string]map[string]string)
	}
	for cat, entries := range groups {
		name := "Custom Words"
		if cat != "" {
			name = "Custom: " + cat
		}
		if sets[name] == nil {
			sets[name] = make(map[string]string, len(entries))
		}
		for w, d := range entries {
			sets[name][w] = d
			words++
		}
		categories = append(categories, name)
	}
	sort.Strings(categories)
	return categories, words
}

// Stats returns counts of loaded data: (categories, words).
func Stats() (categoryCount int, wordCount int) {
	mu.RLock()
	defer mu.RUnlock()
	for _, entries := range sets {
		wordCount += len(entries)
	}
	return len(sets), wordCount
}
