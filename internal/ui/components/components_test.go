package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMenuSkipsDisabled(t *testing.T) {
	var chosen string
	pick := func(label string) func() tea.Cmd {
		return func() tea.Cmd {
			chosen = label
			return nil
		}
	}
	m := NewMenu([]MenuItem{
		{Label: "Practice", Action: pick("Practice")},
		{Label: "Progress", Disabled: true},
		{Label: "Exit", Action: pick("Exit")},
	})

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(keyPress('k'))
	if m.Selected != 0 {
		t.Errorf("Selected = %d, want 0", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	m.Update(specialKey(tea.KeyEnter))
	if chosen != "Exit" {
		t.Errorf("chosen = %q, want Exit", chosen)
	}
}

func TestMultiChoiceReveal(t *testing.T) {
	mc := NewMultiChoice("Where is the fault?", []string{"Origin", "Socket 3", "Spur"})
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	if mc.Selected != 2 {
		t.Fatalf("Selected = %d, want 2 (clamped)", mc.Selected)
	}
	if mc.Revealed() {
		t.Fatal("revealed before Reveal")
	}

	mc.Reveal(2, 1)
	if mc.IsCorrect() {
		t.Error("IsCorrect() = true, want false")
	}
	before := mc.Selected
	mc, _ = mc.Update(specialKey(tea.KeyUp))
	if mc.Selected != before {
		t.Error("navigation should stop after reveal")
	}
	if v := mc.View(); !strings.Contains(v, "C)  Spur") {
		t.Errorf("view missing lettered option:\n%s", v)
	}
}

func TestProgressBarClamps(t *testing.T) {
	for _, pct := range []float64{-1, 0, 0.5, 2} {
		if v := NewProgressBar("Ring", pct, true, 30).View(); v == "" {
			t.Errorf("empty view for %v", pct)
		}
	}
}
