// Package scoring holds the session scoring rules.
package scoring

import "fmt"

const (
	// TotalExercises is the number of exercises in every session.
	TotalExercises = 7

	// PassMark is the number of correct diagnoses needed to pass.
	PassMark = 5
)

// Score returns the percentage of correct answers rounded half up.
// A zero total scores 0.
func Score(correct, total int) int {
	return Percent(correct, total)
}

// Percent returns round(100*part/whole) with halves rounded up, using
// integer arithmetic only. A non-positive whole yields 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// IsPass reports whether correct meets the pass mark.
func IsPass(correct int) bool {
	return correct >= PassMark
}

// HintPenaltyLabel returns the mark label shown next to hints used in the
// results breakdown. The label is informational: Score never deducts for
// hints.
func HintPenaltyLabel(hints int) string {
	switch {
	case hints <= 0:
		return ""
	case hints == 1:
		return "-1 mark"
	}
	return fmt.Sprintf("-%d marks", hints)
}
