package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/screen"
	"github.com/abhisek/faultdrill/internal/screens"
	"github.com/abhisek/faultdrill/internal/screens/progress"
	sessionscreen "github.com/abhisek/faultdrill/internal/screens/session"
	sess "github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/ui/components"
)

// menuIndex positions in the home menu.
const (
	menuPractice = iota
	menuExam
	menuGuided
	menuProgress
	menuExit
)

// HomeScreen is the main menu. It shows headline stats and a meter whose
// face reflects the last session.
type HomeScreen struct {
	deps      screens.Deps
	menu      components.Menu
	analytics history.Analytics
	meter     MeterVariant
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(deps screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.refresh()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume reloads the stats after a session or the progress screen closes.
func (h *HomeScreen) Resume() tea.Cmd {
	h.refresh()
	return nil
}

func (h *HomeScreen) refresh() {
	var records []history.SessionRecord
	if h.deps.History != nil {
		records = h.deps.History.Load(context.Background())
	}
	h.analytics = history.Aggregate(records)

	h.meter = MeterIdle
	if n := len(records); n > 0 {
		if scoring.IsPass(records[n-1].CorrectCount) {
			h.meter = MeterPass
		} else {
			h.meter = MeterFail
		}
	}

	selected := h.menu.Selected
	h.menu = components.NewMenu(h.menuItems(len(records) > 0))
	if selected > 0 && selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) menuItems(hasHistory bool) []components.MenuItem {
	start := func(mode sess.Mode) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(h.deps, mode)}
			}
		}
	}
	return []components.MenuItem{
		menuPractice: {Label: "PRACTICE", Action: start(sess.ModePractice)},
		menuExam:     {Label: "EXAM (2 HOURS)", Action: start(sess.ModeExam)},
		menuGuided:   {Label: "GUIDED", Action: start(sess.ModeGuided)},
		menuProgress: {Label: "PROGRESS", Disabled: !hasHistory, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: progress.New(h.deps.History)}
			}
		}},
		menuExit: {Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back the header and footer.
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMeterBox(h.meter, cw))
	}
	sections = append(sections, renderStatsBar(h.analytics, cw, compact))

	labels := make([]string, len(h.menu.Items))
	disabled := make(map[int]bool)
	for i, item := range h.menu.Items {
		labels[i] = item.Label
		disabled[i] = item.Disabled
	}
	if compact && termHeight < 26 {
		sections = append(sections, renderMenuCompact(labels, h.menu.Selected, cw, disabled))
	} else {
		sections = append(sections, renderMenu(labels, h.menu.Selected, cw, disabled))
	}

	return renderPanelFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
