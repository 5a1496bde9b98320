package session

import (
	"time"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/timer"
)

// BuildRecord creates the SessionRecord for a session closing at the given
// time. An expired session reports the full exam allowance as time used.
// Unanswered exercises count as incorrect; their time is measured up to
// closing, and exercises never reached report zero.
func BuildRecord(s State, at time.Time, expired bool) history.SessionRecord {
	results := make([]history.ExerciseResult, len(s.Exercises))
	correct := 0
	for i, ex := range s.Exercises {
		isCorrect := ex.Answered && ex.Correct
		if isCorrect {
			correct++
		}

		elapsed := ex.ElapsedSeconds
		switch {
		case ex.Answered:
		case i > s.Active:
			elapsed = 0
		default:
			elapsed = wholeSeconds(at.Sub(ex.StartedAt))
		}

		results[i] = history.ExerciseResult{
			CircuitType:         ex.Scenario.CircuitType,
			FaultType:           string(ex.Scenario.FaultType),
			Correct:             isCorrect,
			HintsUsed:           ex.HintsUsed,
			TestsPerformedCount: len(ex.TestsPerformed),
			TimeTakenSeconds:    elapsed,
		}
	}

	timeUsed := wholeSeconds(at.Sub(s.StartedAt))
	if expired {
		timeUsed = timer.ExamSeconds
	}

	return history.SessionRecord{
		Date:            at,
		Mode:            string(s.Mode),
		Score:           scoring.Score(correct, len(s.Exercises)),
		CorrectCount:    correct,
		TotalCount:      len(s.Exercises),
		TimeUsedSeconds: timeUsed,
		PerExercise:     results,
	}
}
