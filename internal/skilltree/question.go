package skilltree

import (
	"errors"
	"fmt"
	"strings"
)

// Question is a single multiple-choice quiz item. Questions live only for the
// duration of one quiz attempt and are never persisted.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// IsCorrect reports whether choice is the right option.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}

// Validate checks that the question can be answered.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q has %d options, need at least 2", q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %q: correct index %d out of range [0,%d)", q.ID, q.CorrectIndex, len(q.Options))
	}
	return nil
}
