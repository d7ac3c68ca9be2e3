package skilltree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// MaxStars is the best rating a node can earn.
const MaxStars = 3

// Status is the unlock state of a node.
type Status string

const (
	StatusLocked    Status = "LOCKED"
	StatusAvailable Status = "AVAILABLE"
	StatusCompleted Status = "COMPLETED"
)

// Icon returns the display icon for the status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusAvailable:
		return "🔓"
	case StatusCompleted:
		return "✅"
	default:
		return "?"
	}
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusAvailable:
		return "Available"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusLocked || s == StatusAvailable || s == StatusCompleted
}

// Node is one step in a learning path.
type Node struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Description  string   `json:"description"`
	Status       Status   `json:"status"`
	Stars        int      `json:"stars"`
	Dependencies []string `json:"dependencies"`
}

// Selectable reports whether a quiz can be started on the node.
func (n Node) Selectable() bool {
	return n.Status == StatusAvailable || n.Status == StatusCompleted
}

// Normalize applies the unlock rules to a freshly generated path: the first
// node is AVAILABLE, every other node is LOCKED and no stars are carried over.
// Missing ids are filled in and duplicates made unique so that nodes can be
// addressed by id.
func Normalize(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	used := make(map[string]bool, len(nodes))
	// suffix remembers the last suffix tried per base id.
	suffix := make(map[string]int)

	for i, n := range nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			id = fmt.Sprintf("node-%d", i+1)
		}
		if used[id] {
			base, k := id, max(suffix[id], 1)
			for used[id] {
				k++
				id = fmt.Sprintf("%s-%d", base, k)
			}
			suffix[base] = k
		}
		used[id] = true

		n.ID = id
		n.Label = strings.TrimSpace(n.Label)
		n.Stars = 0
		n.Status = StatusLocked
		if i == 0 {
			n.Status = StatusAvailable
		}

		n.Dependencies = lo.Filter(n.Dependencies, func(d string, _ int) bool {
			return strings.TrimSpace(d) != ""
		})
		if len(n.Dependencies) == 0 && i > 0 {
			n.Dependencies = []string{out[i-1].ID}
		}
		if n.Dependencies == nil {
			n.Dependencies = []string{}
		}
		out[i] = n
	}
	return out
}

// Stars converts a quiz score to a 0-3 star rating: ceil(correct/total*3),
// capped at MaxStars.
func Stars(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct > total {
		correct = total
	}
	stars := (correct*MaxStars + total - 1) / total
	return min(stars, MaxStars)
}

// Complete marks the node with the given id as COMPLETED, keeping the best
// star rating seen so far, and unlocks the next node in the path if it is
// still LOCKED. The input slice is not modified.
func Complete(nodes []Node, id string, earned int) ([]Node, error) {
	_, idx, ok := lo.FindIndexOf(nodes, func(n Node) bool { return n.ID == id })
	if !ok {
		return nil, fmt.Errorf("node %q not found", id)
	}

	out := make([]Node, len(nodes))
	copy(out, nodes)

	earned = max(0, min(earned, MaxStars))
	out[idx].Status = StatusCompleted
	out[idx].Stars = max(out[idx].Stars, earned)

	if next := idx + 1; next < len(out) && out[next].Status == StatusLocked {
		out[next].Status = StatusAvailable
	}
	return out, nil
}

// Find returns the node with the given id.
func Find(nodes []Node, id string) (Node, bool) {
	return lo.Find(nodes, func(n Node) bool { return n.ID == id })
}

// Progress summarizes how far a learner is through a path.
type Progress struct {
	Completed  int
	Total      int
	TotalStars int
}

// Percent returns completion as a whole-number percentage.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// Ratio returns completion in [0,1].
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// ProgressOf computes the Progress for a path.
func ProgressOf(nodes []Node) Progress {
	return Progress{
		Completed:  lo.CountBy(nodes, func(n Node) bool { return n.Status == StatusCompleted }),
		Total:      len(nodes),
		TotalStars: lo.SumBy(nodes, func(n Node) int { return n.Stars }),
	}
}

// Clone returns a deep copy of nodes.
func Clone(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Dependencies = slices.Clone(n.Dependencies)
		out[i] = n
	}
	return out
}
