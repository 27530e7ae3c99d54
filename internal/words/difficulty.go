// internal/words/difficulty.go
//
// The difficulty → pair-count table consumed by the game endpoints.
// Time limits are informational for clients; the engine never enforces
// them (elapsed time is sampled on demand, no timers).

package words

// Difficulty describes one selectable difficulty level.
type Difficulty struct {
	Name        string `json:"name"`
	Pairs       int    `json:"pairs"`
	TimeLimitS  int    `json:"timeLimitSeconds"`
	Description string `json:"description"`
}

var difficulties = []Difficulty{
	{Name: "Easy", Pairs: 4, TimeLimitS: 120, Description: "Perfect for beginners"},
	{Name: "Medium", Pairs: 6, TimeLimitS: 180, Description: "A good challenge"},
	{Name: "Hard", Pairs: 8, TimeLimitS: 240, Description: "For memory masters"},
	{Name: "Expert", Pairs: 10, TimeLimitS: 300, Description: "No room for mistakes"},
}

// Difficulties returns the selectable levels in display order.
func Difficulties() []Difficulty {
	out := make([]Difficulty, len(difficulties))
	copy(out, difficulties)
	return out
}

// PairCount maps a difficulty name to its pair count.
// Unknown names fall back to Easy, matching the original table lookup.
func PairCount(name string) int {
	for _, d := range difficulties {
		if d.Name == name {
			return d.Pairs
		}
	}
	return difficulties[0].Pairs
}
