// Package app hosts the root Bubble Tea model.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/screen"
	"github.com/abhisek/faultdrill/internal/screens"
	"github.com/abhisek/faultdrill/internal/screens/home"
	sessionscreen "github.com/abhisek/faultdrill/internal/screens/session"
	sess "github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int

	// start, when set, is pushed over the home screen on Init.
	start screen.Screen
}

// NewAppModel creates an AppModel on the home screen. A non-empty mode
// opens a session in that mode straight away.
func NewAppModel(deps screens.Deps, mode sess.Mode) AppModel {
	m := NewAppModelWith(home.New(deps))
	if mode != "" {
		m.start = sessionscreen.New(deps, mode)
	}
	return m
}

// NewAppModelWith creates an AppModel with initial as the bottom screen.
func NewAppModelWith(initial screen.Screen) AppModel {
	return AppModel{router: router.New(initial)}
}

func (m AppModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if active := m.router.Active(); active != nil {
		cmds = append(cmds, active.Init())
	}
	if m.start != nil {
		start := m.start
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: start} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current window size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(kp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program, optionally straight into a session in
// mode. Screens still on the stack are closed on exit so no session
// countdown outlives the program.
func Run(deps screens.Deps, mode sess.Mode) error {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := NewAppModel(deps, mode)
	defer m.router.CloseAll()

	logger.Info("tui started", zap.String("mode", string(mode)))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Error("tui failed", zap.Error(err))
		return fmt.Errorf("run program: %w", err)
	}
	logger.Info("tui exited")
	return nil
}
