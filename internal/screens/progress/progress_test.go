package progress

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/store"
)

func record(day, correct int, faultType string) history.SessionRecord {
	return history.SessionRecord{
		Date:         time.Date(2026, 4, day, 12, 0, 0, 0, time.UTC),
		Mode:         "practice",
		Score:        (200*correct + 7) / 14,
		CorrectCount: correct,
		TotalCount:   7,
		PerExercise: []history.ExerciseResult{
			{CircuitType: "lighting", FaultType: faultType, Correct: correct >= 5, HintsUsed: 1},
		},
	}
}

func loaded(t *testing.T, records ...history.SessionRecord) *ProgressScreen {
	t.Helper()
	repo := history.NewRepo(store.NewMemory(), nil)
	for _, r := range records {
		if err := repo.Append(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	s := New(repo)
	s.Update(s.Init()())
	return s
}

func TestEmptyHistory(t *testing.T) {
	s := loaded(t)
	if !strings.Contains(s.View(100, 30), "No sessions yet") {
		t.Error("expected empty-state message")
	}
}

func TestLoadingView(t *testing.T) {
	s := New(history.NewRepo(store.NewMemory(), nil))
	if !strings.Contains(s.View(100, 30), "Loading") {
		t.Error("expected loading view before Init completes")
	}
}

func TestRecordsNewestFirst(t *testing.T) {
	s := loaded(t, record(1, 3, "open_circuit"), record(9, 6, "short_circuit"))
	if s.records[0].CorrectCount != 6 {
		t.Errorf("first record correct = %d, want newest (6)", s.records[0].CorrectCount)
	}

	view := s.View(110, 40)
	for _, want := range []string{"2 sessions", "Lighting", "PASS", "FAIL"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExpandShowsExercises(t *testing.T) {
	s := loaded(t, record(1, 3, "open_circuit"), record(9, 6, "short_circuit"))
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Fatalf("selected = %d, want 1", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	view := s.View(110, 40)
	if !strings.Contains(view, "Open Circuit") {
		t.Error("expanded record should list its exercises")
	}
	if strings.Contains(view, "Short Circuit") {
		t.Error("collapsed record should not list its exercises")
	}
	if !strings.Contains(view, "-1 mark") {
		t.Error("expanded record should show hint penalty")
	}
}

func TestEscPops(t *testing.T) {
	s := loaded(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
