// Package results shows the outcome of a finished session.
package results

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/faultdrill/internal/debrief"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/screen"
	"github.com/abhisek/faultdrill/internal/screens"
	"github.com/abhisek/faultdrill/internal/ui/components"
	"github.com/abhisek/faultdrill/internal/ui/layout"
	"github.com/abhisek/faultdrill/internal/ui/theme"
)

// debriefPoll is how often the screen checks for a finished debrief.
const debriefPoll = 200 * time.Millisecond

type debriefPollMsg struct{}

type debriefState int

const (
	debriefIdle debriefState = iota
	debriefPending
	debriefDone
	debriefFailed
)

// ResultsScreen displays the score card of a closed session.
type ResultsScreen struct {
	deps      screens.Deps
	record    history.SessionRecord
	analytics history.Analytics

	debrief      debriefState
	debriefBody  *debrief.Debrief
	debriefError string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen for rec.
func New(deps screens.Deps, rec history.SessionRecord) *ResultsScreen {
	return &ResultsScreen{deps: deps, record: rec}
}

// Init loads the analytics shown in the progress block. The record is
// already persisted when the session closed, so it is included.
func (s *ResultsScreen) Init() tea.Cmd {
	if s.deps.History != nil {
		s.analytics = history.Aggregate(s.deps.History.Load(context.Background()))
	}
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if s.deps.Debrief.Enabled() && s.debrief == debriefIdle {
		hints = append(hints, layout.KeyHint{Key: "C", Description: "Coach debrief"})
	}
	return hints
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case debriefPollMsg:
		res, ok := s.deps.Debrief.Consume()
		if !ok {
			return s, pollDebrief()
		}
		if res.Err != nil {
			s.debrief = debriefFailed
			s.debriefError = res.Err.Error()
			return s, nil
		}
		s.debrief = debriefDone
		s.debriefBody = res.Debrief
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, components.Keys.Debrief):
			if s.deps.Debrief.Enabled() && s.debrief == debriefIdle {
				s.debrief = debriefPending
				s.deps.Debrief.Request(context.Background(), s.record, s.analytics)
				return s, pollDebrief()
			}
		case msg.String() == "enter" || msg.String() == "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func pollDebrief() tea.Cmd {
	return tea.Tick(debriefPoll, func(time.Time) tea.Msg { return debriefPollMsg{} })
}

func (s *ResultsScreen) View(width, height int) string {
	rec := s.record
	center := func(st lipgloss.Style, text string) string {
		return st.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Session complete"))
	b.WriteString("\n\n")

	verdict := theme.Incorrect.Render("FAIL")
	if scoring.IsPass(rec.CorrectCount) {
		verdict = theme.Correct.Render("PASS")
	}
	score := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("%d%%  (%d/%d correct)", rec.Score, rec.CorrectCount, rec.TotalCount))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, score+"   "+verdict))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("%s mode  ·  time %s  ·  pass mark %d/%d",
			modeTitle(rec.Mode),
			layout.FormatClock(rec.TimeUsedSeconds),
			scoring.PassMark, scoring.TotalExercises)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Exercises")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")
	for i, ex := range rec.PerExercise {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exerciseLine(i, ex)))
		b.WriteString("\n")
	}

	if s.analytics.ShowProgress() {
		b.WriteString("\n")
		b.WriteString(s.renderProgress(width, divider))
	}

	switch s.debrief {
	case debriefPending:
		b.WriteString("\n")
		b.WriteString(center(theme.Hint, "Asking the coach..."))
	case debriefFailed:
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error), "Debrief unavailable: "+s.debriefError))
	case debriefDone:
		b.WriteString("\n")
		b.WriteString(renderDebrief(s.debriefBody, width))
	}

	return b.String()
}

func exerciseLine(i int, ex history.ExerciseResult) string {
	mark := theme.Correct.Render("✓")
	if !ex.Correct {
		mark = theme.Incorrect.Render("✗")
	}
	label := fmt.Sprintf("%d. %-28s %-22s", i+1,
		scenario.CircuitTypeLabel(ex.CircuitType),
		scenario.FaultType(ex.FaultType).Label())
	meta := fmt.Sprintf("%2d tests  %s", ex.TestsPerformedCount, layout.FormatClock(ex.TimeTakenSeconds))
	if p := scoring.HintPenaltyLabel(ex.HintsUsed); p != "" {
		meta += "  " + lipgloss.NewStyle().Foreground(theme.Warning).Render(fmt.Sprintf("%d hint (%s)", ex.HintsUsed, p))
	}
	return fmt.Sprintf("%s %s %s", mark, lipgloss.NewStyle().Foreground(theme.Text).Render(label),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(meta))
}

func (s *ResultsScreen) renderProgress(width int, divider string) string {
	a := s.analytics
	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Your Progress")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Render(
			fmt.Sprintf("%d sessions  ·  average %d%%  ·  best %d%%", a.TotalSessions, a.AverageScore, a.BestScore))))
	b.WriteString("\n")
	writeStats(&b, width, "Focus on", a.Weakest, theme.Error)
	writeStats(&b, width, "Strongest", a.Strongest, theme.Success)
	return b.String()
}

func writeStats(b *strings.Builder, width int, title string, stats []history.CategoryStat, c color.Color) {
	if len(stats) == 0 {
		return
	}
	parts := make([]string, len(stats))
	for i, st := range stats {
		parts[i] = fmt.Sprintf("%s %d%%", scenario.CircuitTypeLabel(st.CircuitType), st.Pct)
	}
	style := lipgloss.NewStyle().Foreground(c)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		style.Render(title+": "+strings.Join(parts, ", "))))
	b.WriteString("\n")
}

func modeTitle(mode string) string {
	switch mode {
	case "exam":
		return "Exam"
	case "guided":
		return "Guided"
	case "practice":
		return "Practice"
	}
	return mode
}

func renderDebrief(d *debrief.Debrief, width int) string {
	if d == nil {
		return ""
	}
	box := lipgloss.NewStyle().Width(min(width-8, 70))
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Coach: " + d.Headline))
	b.WriteString("\n")
	for _, sec := range []struct {
		title string
		items []string
	}{
		{"Strengths", d.Strengths},
		{"Focus", d.Focus},
		{"Next steps", d.NextSteps},
	} {
		if len(sec.items) == 0 {
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(sec.title))
		b.WriteString("\n")
		for _, it := range sec.items {
			b.WriteString(theme.Body.Render("  • " + it))
			b.WriteString("\n")
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Render(box.Render(b.String())))
}
