package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/screens"
	"github.com/abhisek/faultdrill/internal/screens/progress"
	sessionscreen "github.com/abhisek/faultdrill/internal/screens/session"
	"github.com/abhisek/faultdrill/internal/store"
)

func newHome(t *testing.T, correct ...int) (*HomeScreen, *history.Repo) {
	t.Helper()
	repo := history.NewRepo(store.NewMemory(), nil)
	for i, c := range correct {
		rec := history.SessionRecord{
			Date:         time.Date(2026, 6, i+1, 9, 0, 0, 0, time.UTC),
			Mode:         "practice",
			Score:        (200*c + 7) / 14,
			CorrectCount: c,
			TotalCount:   7,
		}
		if err := repo.Append(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	return New(screens.Deps{History: repo}), repo
}

func TestProgressDisabledWithoutHistory(t *testing.T) {
	h, _ := newHome(t)
	if !h.menu.Items[menuProgress].Disabled {
		t.Error("progress should be disabled with no history")
	}
	if h.meter != MeterIdle {
		t.Errorf("meter = %v, want idle", h.meter)
	}
	if !strings.Contains(h.View(120, 40), "NO SESSIONS YET") {
		t.Error("expected empty stats")
	}
}

func TestStatsAndMeterFromHistory(t *testing.T) {
	h, _ := newHome(t, 3, 6)
	if h.menu.Items[menuProgress].Disabled {
		t.Error("progress should be enabled")
	}
	if h.meter != MeterPass {
		t.Errorf("meter = %v, want pass for a 6/7 last session", h.meter)
	}
	view := h.View(120, 40)
	for _, want := range []string{"2 SESSIONS", "BEST 86%", "AVG 65%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResumeRefreshes(t *testing.T) {
	h, repo := newHome(t)
	if err := repo.Append(context.Background(), history.SessionRecord{CorrectCount: 2, TotalCount: 7, Score: 29}); err != nil {
		t.Fatal(err)
	}
	h.Resume()
	if h.meter != MeterFail {
		t.Errorf("meter = %v, want fail", h.meter)
	}
	if h.menu.Items[menuProgress].Disabled {
		t.Error("progress should be enabled after resume")
	}
}

func TestMenuPushesScreens(t *testing.T) {
	h, _ := newHome(t, 5)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command for practice")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want PushScreenMsg", cmd())
	}
	if _, ok := msg.Screen.(*sessionscreen.SessionScreen); !ok {
		t.Errorf("pushed %T, want session screen", msg.Screen)
	}

	for i := 0; i < menuProgress; i++ {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command for progress")
	}
	msg = cmd().(router.PushScreenMsg)
	if _, ok := msg.Screen.(*progress.ProgressScreen); !ok {
		t.Errorf("pushed %T, want progress screen", msg.Screen)
	}
}

func TestCompactView(t *testing.T) {
	h, _ := newHome(t, 5)
	view := h.View(60, 16)
	if !strings.Contains(view, "F A U L T D R I L L") {
		t.Error("compact view should use the short title")
	}
}
