// Package history persists completed session records and derives
// longitudinal analytics from them.
package history

import "time"

// ExerciseResult is the outcome of one exercise in a recorded session.
type ExerciseResult struct {
	CircuitType         string `json:"circuitType"`
	FaultType           string `json:"faultType"`
	Correct             bool   `json:"correct"`
	HintsUsed           int    `json:"hintsUsed"`
	TestsPerformedCount int    `json:"testsPerformedCount"`
	TimeTakenSeconds    int    `json:"timeTakenSeconds"`
}

// SessionRecord is an immutable summary of one completed or expired session.
type SessionRecord struct {
	Date            time.Time        `json:"date"`
	Mode            string           `json:"mode"`
	Score           int              `json:"score"`
	CorrectCount    int              `json:"correctCount"`
	TotalCount      int              `json:"totalCount"`
	TimeUsedSeconds int              `json:"timeUsedSeconds"`
	PerExercise     []ExerciseResult `json:"perExercise"`
}

// HintsUsed sums the hints used across all exercises.
func (r SessionRecord) HintsUsed() int {
	n := 0
	for _, e := range r.PerExercise {
		n += e.HintsUsed
	}
	return n
}
