package history

import (
	"sort"

	"github.com/abhisek/faultdrill/internal/scoring"
)

const (
	// MinObservations is the number of attempts a circuit type needs before
	// it is ranked as weak or strong.
	MinObservations = 2

	// StrongPct is the pass rate at or above which a circuit type is strong.
	StrongPct = 70

	// MinSessionsForProgress is the history length needed before the
	// progress block is shown.
	MinSessionsForProgress = 2
)

// CategoryStat is the pass rate for one circuit type.
type CategoryStat struct {
	CircuitType string `json:"circuitType"`
	Correct     int    `json:"correct"`
	Total       int    `json:"total"`
	Pct         int    `json:"pct"`
}

// Analytics summarises a history.
type Analytics struct {
	TotalSessions int            `json:"totalSessions"`
	AverageScore  int            `json:"averageScore"`
	BestScore     int            `json:"bestScore"`
	Passes        int            `json:"passes"`
	Categories    []CategoryStat `json:"categories"`
	Weakest       []CategoryStat `json:"weakest"`
	Strongest     []CategoryStat `json:"strongest"`
}

// ShowProgress reports whether there is enough history for the progress
// block.
func (a Analytics) ShowProgress() bool {
	return a.TotalSessions >= MinSessionsForProgress
}

// Aggregate computes per-circuit-type pass rates and overall figures.
func Aggregate(records []SessionRecord) Analytics {
	a := Analytics{
		TotalSessions: len(records),
		Categories:    []CategoryStat{},
		Weakest:       []CategoryStat{},
		Strongest:     []CategoryStat{},
	}
	if len(records) == 0 {
		return a
	}

	byType := make(map[string]*CategoryStat)
	scoreSum := 0
	for _, rec := range records {
		scoreSum += rec.Score
		if rec.Score > a.BestScore {
			a.BestScore = rec.Score
		}
		if scoring.IsPass(rec.CorrectCount) {
			a.Passes++
		}
		for _, ex := range rec.PerExercise {
			cs := byType[ex.CircuitType]
			if cs == nil {
				cs = &CategoryStat{CircuitType: ex.CircuitType}
				byType[ex.CircuitType] = cs
			}
			cs.Total++
			if ex.Correct {
				cs.Correct++
			}
		}
	}
	a.AverageScore = scoring.Percent(scoreSum, 100*len(records))

	for _, cs := range byType {
		cs.Pct = scoring.Percent(cs.Correct, cs.Total)
		a.Categories = append(a.Categories, *cs)
		if cs.Total < MinObservations {
			continue
		}
		if cs.Pct < StrongPct {
			a.Weakest = append(a.Weakest, *cs)
		} else {
			a.Strongest = append(a.Strongest, *cs)
		}
	}

	sort.Slice(a.Categories, func(i, j int) bool {
		return a.Categories[i].CircuitType < a.Categories[j].CircuitType
	})
	sort.Slice(a.Weakest, func(i, j int) bool {
		if a.Weakest[i].Pct != a.Weakest[j].Pct {
			return a.Weakest[i].Pct < a.Weakest[j].Pct
		}
		return a.Weakest[i].CircuitType < a.Weakest[j].CircuitType
	})
	sort.Slice(a.Strongest, func(i, j int) bool {
		if a.Strongest[i].Pct != a.Strongest[j].Pct {
			return a.Strongest[i].Pct > a.Strongest[j].Pct
		}
		return a.Strongest[i].CircuitType < a.Strongest[j].CircuitType
	})
	return a
}
