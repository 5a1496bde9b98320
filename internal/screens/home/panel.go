package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/ui/theme"
)

const titleFull = `┏━╸┏━┓╻ ╻╻  ╺┳╸╺┳┓┏━┓╻╻
┣╸ ┣━┫┃ ┃┃   ┃  ┃┃┣┳┛┃┃
╹  ╹ ╹┗━┛┗━╸ ╹ ╺┻┛╹┗╸╹┗━╸┗━╸`

const titleCompact = "F A U L T D R I L L"

const subtitle = "AM2 safe isolation & fault finding"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.PanelYellow).Bold(true)
	sub := lipgloss.NewStyle().Foreground(theme.TextDim).Render(subtitle)
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art) + "\n" + sub)
}

// renderStatsBar shows session count, best and average score.
func renderStatsBar(a history.Analytics, cw int, compact bool) string {
	countStyle := lipgloss.NewStyle().Foreground(theme.PanelYellow).Bold(true)
	bestStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	avgStyle := lipgloss.NewStyle().Foreground(theme.PanelCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case a.TotalSessions == 0:
		stats = dimStyle.Render("NO SESSIONS YET")
	case compact:
		stats = fmt.Sprintf("%s %s %s",
			countStyle.Render(fmt.Sprintf("#%d", a.TotalSessions)),
			bestStyle.Render(fmt.Sprintf("▲%d%%", a.BestScore)),
			avgStyle.Render(fmt.Sprintf("~%d%%", a.AverageScore)),
		)
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			countStyle.Render(fmt.Sprintf("%d SESSIONS", a.TotalSessions)),
			bestStyle.Render(fmt.Sprintf("BEST %d%%", a.BestScore)),
			avgStyle.Render(fmt.Sprintf("AVG %d%%", a.AverageScore)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.PanelCyan).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

func renderMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	selectedBtn := base.
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.PanelYellow).
		BorderForeground(theme.PanelYellow)
	normalBtn := base.Foreground(theme.Text).BorderForeground(theme.Border)
	disabledBtn := base.Foreground(theme.TextDim).BorderForeground(theme.Border)

	var buttons []string
	for i, label := range items {
		switch {
		case disabled[i]:
			buttons = append(buttons, disabledBtn.Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for small terminals
// where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.PanelYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().Foreground(theme.Text).Render("   " + label)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func renderMeterBox(variant MeterVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMeter(variant))
}

// renderPanelFrame wraps content in a double border centered in the area.
func renderPanelFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
