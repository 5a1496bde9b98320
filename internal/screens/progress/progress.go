// Package progress shows per-circuit pass rates and past sessions.
package progress

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/screen"
	"github.com/abhisek/faultdrill/internal/ui/components"
	"github.com/abhisek/faultdrill/internal/ui/layout"
	"github.com/abhisek/faultdrill/internal/ui/theme"
)

type historyLoadedMsg struct {
	Records []history.SessionRecord
}

// ProgressScreen displays analytics and the session list, newest first.
type ProgressScreen struct {
	repo      *history.Repo
	records   []history.SessionRecord
	analytics history.Analytics
	selected  int
	expanded  map[int]bool
	loaded    bool
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a ProgressScreen over repo.
func New(repo *history.Repo) *ProgressScreen {
	return &ProgressScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *ProgressScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{Records: s.repo.Load(context.Background())}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.analytics = history.Aggregate(msg.Records)
		s.records = slices.Clone(msg.Records)
		slices.Reverse(s.records)
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *ProgressScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Pick up the meter and start practising!")
	}

	a := s.analytics
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(
			fmt.Sprintf("%d sessions   average %d%%   best %d%%   passes %d",
				a.TotalSessions, a.AverageScore, a.BestScore, a.Passes))))
	b.WriteString("\n\n")

	barWidth := min(width-8, 64)
	for _, c := range a.Categories {
		label := fmt.Sprintf("%-26s %2d/%-2d", scenario.CircuitTypeLabel(c.CircuitType), c.Correct, c.Total)
		bar := components.NewProgressBar(label, float64(c.Pct)/100, true, barWidth)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		verdict := "FAIL"
		if scoring.IsPass(rec.CorrectCount) {
			verdict = "PASS"
		}
		line := fmt.Sprintf("%s%s  %-8s %3d%%  %d/%d  %s  %s",
			prefix, rec.Date.Local().Format("Jan 02, 2006 15:04"), rec.Mode,
			rec.Score, rec.CorrectCount, rec.TotalCount,
			layout.FormatClock(rec.TimeUsedSeconds), verdict)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, ex := range rec.PerExercise {
				mark := "✓"
				st := lipgloss.NewStyle().Foreground(theme.Success)
				if !ex.Correct {
					mark = "✗"
					st = st.Foreground(theme.Error)
				}
				detail := fmt.Sprintf("    %s %s: %s", mark,
					scenario.CircuitTypeLabel(ex.CircuitType),
					scenario.FaultType(ex.FaultType).Label())
				if p := scoring.HintPenaltyLabel(ex.HintsUsed); p != "" {
					detail += " (" + p + ")"
				}
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(detail)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
