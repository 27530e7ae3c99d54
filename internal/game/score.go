// internal/game/score.go
//
// Derived performance metrics for finished (or in-progress) games.
// Exposes:
//   - Efficiency(): pairs-per-attempt as a percentage; 100 = no wasted attempts.
//   - Score():      composite 0-100 leaderboard score weighing completion,
//                   attempt efficiency, and time taken.

package game

// Efficiency returns (totalPairs/attempts)*100. ok is false when no
// attempt has been made yet; otherwise the value is in (0, 100] for any
// reachable game state and equals exactly 100 when every attempt matched.
func Efficiency(totalPairs, attempts int) (float64, bool) {
	if attempts <= 0 {
		return 0, false
	}
	return float64(totalPairs) / float64(attempts) * 100, true
}

// Score rates a playthrough 0-100:
//   - completion: 50 points, linear in pairs found,
//   - efficiency: 30 points, full at totalPairs attempts, zero at 3x that,
//   - time:       20 points, full at 5s per pair, zero at 15s per pair.
func Score(pairsFound, totalPairs, attempts, seconds int) int {
	if totalPairs <= 0 {
		return 0
	}

	completion := float64(pairsFound) / float64(totalPairs) * 50

	minAttempts := totalPairs
	maxAttempts := totalPairs * 3
	efficiency := 1 - float64(attempts-minAttempts)/float64(maxAttempts-minAttempts)
	if efficiency < 0 {
		efficiency = 0
	}
	if efficiency > 1 {
		efficiency = 1
	}

	targetTime := totalPairs * 5
	maxTime := totalPairs * 15
	timeFactor := 1 - float64(seconds-targetTime)/float64(maxTime-targetTime)
	if timeFactor < 0 {
		timeFactor = 0
	}
	if timeFactor > 1 {
		timeFactor = 1
	}

	total := int(completion + efficiency*30 + timeFactor*20)
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}
