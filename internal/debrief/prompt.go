package debrief

import (
	"fmt"
	"strings"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
)

const systemPrompt = `You are an experienced electrical installation assessor coaching a candidate for the AM2 practical assessment. You review one fault-finding session and give short, direct, practical feedback. Refer to circuits and test methods (continuity, insulation resistance) by name. Never invent results that are not in the data.`

func buildUserMessage(rec history.SessionRecord, a history.Analytics) string {
	var b strings.Builder

	result := "FAIL"
	if scoring.IsPass(rec.CorrectCount) {
		result = "PASS"
	}
	fmt.Fprintf(&b, "Mode: %s\n", rec.Mode)
	fmt.Fprintf(&b, "Score: %d%% (%d/%d correct, %s)\n", rec.Score, rec.CorrectCount, rec.TotalCount, result)
	fmt.Fprintf(&b, "Time used: %dm %02ds\n", rec.TimeUsedSeconds/60, rec.TimeUsedSeconds%60)
	fmt.Fprintf(&b, "Hints used: %d\n\n", rec.HintsUsed())

	b.WriteString("Exercises:\n")
	for i, ex := range rec.PerExercise {
		outcome := "wrong"
		if ex.Correct {
			outcome = "correct"
		}
		fmt.Fprintf(&b, "%d. %s, %s: %s, %d tests, %d hints, %ds\n",
			i+1,
			scenario.CircuitTypeLabel(ex.CircuitType),
			scenario.FaultType(ex.FaultType).Label(),
			outcome,
			ex.TestsPerformedCount,
			ex.HintsUsed,
			ex.TimeTakenSeconds,
		)
	}

	if a.ShowProgress() {
		fmt.Fprintf(&b, "\nHistory: %d sessions, average %d%%, best %d%%, %d passes\n",
			a.TotalSessions, a.AverageScore, a.BestScore, a.Passes)
		writeStats(&b, "Weakest circuit types", a.Weakest)
		writeStats(&b, "Strongest circuit types", a.Strongest)
	}

	b.WriteString("\nWrite the debrief.")
	return b.String()
}

func writeStats(b *strings.Builder, title string, stats []history.CategoryStat) {
	if len(stats) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, s := range stats {
		fmt.Fprintf(b, "- %s: %d/%d (%d%%)\n", scenario.CircuitTypeLabel(s.CircuitType), s.Correct, s.Total, s.Pct)
	}
}
