package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	sess "github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nCould not start a session:\n" + s.errMsg)
	}

	st := s.ctrl.State()
	ex, ok := st.ActiveExercise()
	if !ok || !st.Phase.Running() {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Preparing the test bench...")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(st, ex, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(theme.Heading.Render("  Reported symptom"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width - 4).PaddingLeft(2).Render(ex.Scenario.Symptom))
	b.WriteString("\n\n")

	switch st.Phase {
	case sess.PhaseTesting:
		b.WriteString(s.renderTesting(st, ex, width))
	case sess.PhaseDiagnosing:
		b.WriteString(s.renderRecorded(ex))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(s.choices.View()))
	case sess.PhaseFeedback:
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(s.choices.View()))
		b.WriteString("\n")
		b.WriteString(renderOutcome(ex, width))
	}

	if hint := s.ctrl.HintText(); hint != "" && st.Phase != sess.PhaseFeedback {
		b.WriteString("\n")
		label := fmt.Sprintf("  Hint %d/2 (%s): ", st.HintLevel, scoring.HintPenaltyLabel(st.HintLevel))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(label))
		b.WriteString(theme.Hint.Render(hint))
		b.WriteString("\n")
	}
	if st.Mode == sess.ModeGuided {
		if tip, ok := s.ctrl.Tip(); ok {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.PanelCyan).Render("  Tip: " + tip))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *SessionScreen) renderInfoLine(st sess.State, ex sess.ExerciseState, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s: %s", scenario.CircuitTypeLabel(ex.Scenario.CircuitType), ex.Scenario.CircuitName))

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Exercise %d/%d  %s %d",
			st.Active+1,
			len(st.Exercises),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			st.CorrectCount(),
		))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line
}

func (s *SessionScreen) renderTesting(st sess.State, ex sess.ExerciseState, width int) string {
	var b strings.Builder

	modeStyle := lipgloss.NewStyle().Foreground(theme.Continuity).Bold(true)
	if st.Instrument == scenario.ModeInsulation {
		modeStyle = modeStyle.Foreground(theme.Insulation)
	}
	b.WriteString("  Meter: " + modeStyle.Render(st.Instrument.Label()))
	b.WriteString("\n\n")

	var list strings.Builder
	tests := s.availableTests(st)
	lastPoint := ""
	for i, t := range tests {
		if t.Point.ID != lastPoint {
			list.WriteString(theme.Heading.Render(t.Point.Location))
			list.WriteString("\n")
			lastPoint = t.Point.ID
		}
		prefix := "   "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.cursor {
			prefix = " ▸ "
			style = theme.Selected
		}
		mark := ""
		if ex.HasPerformed(t.ID) {
			mark = " ✓"
		}
		list.WriteString(style.Render(prefix+t.Reading.Label) + theme.Hint.Render(mark))
		list.WriteString("\n")
	}
	if len(tests) == 0 {
		list.WriteString(theme.Hint.Render("No tests use this meter mode here."))
	}

	meter := theme.Meter.Render(meterText(st))
	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(max(width/2, 30)).PaddingLeft(2).Render(list.String()),
		meter,
	)
	b.WriteString(cols)
	b.WriteString("\n\n")
	b.WriteString(s.renderRecorded(ex))
	return b.String()
}

func meterText(st sess.State) string {
	r, ok := st.Displayed()
	if !ok {
		return fmt.Sprintf("%-14s\n%14s", st.Instrument.Label(), "---")
	}
	text := fmt.Sprintf("%-14s\n%14s", r.Label, r.Display())
	if r.Abnormal {
		return text + "\n" + theme.Abnormal.Render("  ABNORMAL")
	}
	return text
}

func (s *SessionScreen) renderRecorded(ex sess.ExerciseState) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render(fmt.Sprintf("  Readings taken (%d)", len(ex.TestsPerformed))))
	b.WriteString("\n")
	for _, id := range ex.TestsPerformed {
		r, ok := ex.Scenario.FindReading(id)
		if !ok {
			continue
		}
		loc := ""
		if tp, ok := ex.Scenario.PointOf(id); ok {
			loc = tp.Location + ": "
		}
		style := theme.Normal
		if r.Abnormal {
			style = theme.Abnormal
		}
		b.WriteString(fmt.Sprintf("    %s%s  %s\n", loc, r.Label, style.Render(r.Display())))
	}
	if len(ex.TestsPerformed) < sess.MinTestsToDiagnose {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("    Take at least %d readings before diagnosing.", sess.MinTestsToDiagnose)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderOutcome(ex sess.ExerciseState, width int) string {
	scn := ex.Scenario
	var b strings.Builder
	if ex.Correct {
		b.WriteString(theme.Correct.Render("  Correct diagnosis!"))
	} else {
		b.WriteString(theme.Incorrect.Render("  Incorrect diagnosis."))
	}
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Foreground(theme.Text).Width(max(width-6, 20))
	for _, row := range []struct{ label, text string }{
		{"Fault", scn.FaultType.Label()},
		{"Location", scn.CorrectLocation},
		{"Explanation", scn.Explanation},
		{"Rectification", scn.Rectification},
		{"Optimal method", scn.OptimalMethod},
	} {
		if row.text == "" {
			continue
		}
		b.WriteString(theme.Heading.Render("  " + row.label))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(body.Render(row.text)))
		b.WriteString("\n")
	}
	return b.String()
}
