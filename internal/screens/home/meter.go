package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/faultdrill/internal/ui/theme"
)

// MeterVariant selects which tester face to draw.
type MeterVariant int

const (
	MeterIdle MeterVariant = iota // no history yet
	MeterPass                     // last session passed
	MeterFail                     // last session failed
)

const meterIdle = `╭───────────╮
│ ┌───────┐ │
│ │  ---  │ │
│ └───────┘ │
│  Ω   MΩ   │
╰──┬─────┬──╯
   ●     ●`

const meterPass = `╭───────────╮
│ ┌───────┐ │
│ │ 0.05Ω │ │
│ └───────┘ │
│  ✓  PASS  │
╰──┬─────┬──╯
   ●     ●`

const meterFail = `╭───────────╮
│ ┌───────┐ │
│ │  OL   │ │
│ └───────┘ │
│  ✗  RETRY │
╰──┬─────┬──╯
   ●     ●`

// RenderMeter returns the tester art for the given variant.
func RenderMeter(variant MeterVariant) string {
	art := meterIdle
	fg := theme.Primary

	switch variant {
	case MeterPass:
		art = meterPass
		fg = theme.Display
	case MeterFail:
		art = meterFail
		fg = theme.Accent
	}

	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
