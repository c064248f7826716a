package stats

import "fmt"

// StreakStats describes runs of consecutive answers.
type StreakStats struct {
	// CurrentStreak is positive for a run of correct answers and negative for wrong ones.
	CurrentStreak        int `json:"currentStreak"`
	LongestCorrectStreak int `json:"longestCorrectStreak"`
	LongestWrongStreak   int `json:"longestWrongStreak"`
}

// CalculateStreaks computes streaks over answers given oldest first.
func CalculateStreaks(answers []bool) StreakStats {
	var stats StreakStats
	correctRun, wrongRun := 0, 0

	for _, correct := range answers {
		if correct {
			correctRun++
			wrongRun = 0
			if correctRun > stats.LongestCorrectStreak {
				stats.LongestCorrectStreak = correctRun
			}
			continue
		}
		wrongRun++
		correctRun = 0
		if wrongRun > stats.LongestWrongStreak {
			stats.LongestWrongStreak = wrongRun
		}
	}

	switch {
	case correctRun > 0:
		stats.CurrentStreak = correctRun
	case wrongRun > 0:
		stats.CurrentStreak = -wrongRun
	}
	return stats
}

// FormatCurrentStreak returns a human-readable string for the current streak.
func FormatCurrentStreak(streak int) string {
	switch {
	case streak == 0:
		return "No active streak"
	case streak == 1:
		return "1 correct in a row"
	case streak > 1:
		return fmt.Sprintf("%d correct in a row", streak)
	case streak == -1:
		return "1 wrong in a row"
	default:
		return fmt.Sprintf("%d wrong in a row", -streak)
	}
}
