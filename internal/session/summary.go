package session

import "fmt"

// fallbackSummary is shown when the summary request fails.
func fallbackSummary(correct, total int, label string) string {
	switch {
	case total > 0 && correct == total:
		return fmt.Sprintf("Perfect score on %s! You answered all %d questions correctly.", label, total)
	case correct*2 >= total:
		return fmt.Sprintf("Good work on %s. You got %d of %d right; review the misses and keep going.", label, correct, total)
	default:
		return fmt.Sprintf("You got %d of %d on %s. Revisit the explanations and try again.", correct, total, label)
	}
}
