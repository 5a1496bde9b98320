// Package hints produces the advisory text shown during a fault-finding
// exercise. All functions are pure.
package hints

import (
	"fmt"

	"github.com/abhisek/faultdrill/internal/scenario"
)

// MaxLevel is the highest hint level an exercise can reach.
const MaxLevel = 2

// StaticHint returns the hint text for the given level. Level 1 names the
// fault category, level 2 points at a location. Other levels return "".
func StaticHint(s scenario.FaultScenario, level int) string {
	switch level {
	case 1:
		return fmt.Sprintf("The fault is a %s. Think about which readings would show that.", s.FaultType.Label())
	case 2:
		if tp, ok := s.FirstAbnormalPoint(); ok {
			return fmt.Sprintf("Focus your testing around %s. An abnormal reading shows up there.", tp.Location)
		}
		return "Test systematically outward from the origin of the circuit and compare each reading."
	}
	return ""
}

// ContextualTip returns a coaching tip for the current state of an exercise.
// The second result is false when no tip applies.
func ContextualTip(performed []string, s scenario.FaultScenario, mode scenario.TestMode, diagnosing bool) (string, bool) {
	if diagnosing {
		return "Review your readings. Which ones were abnormal, and what fault would cause them?", true
	}

	n := len(performed)
	abnormal := 0
	for _, id := range performed {
		if r, ok := s.FindReading(id); ok && r.Abnormal {
			abnormal++
		}
	}

	switch {
	case n == 0:
		return fmt.Sprintf("Start at the origin. Your meter is set to %s.", mode.Label()), true
	case n == 1 && abnormal == 0:
		return "That reading looks normal. Move to the next test point.", true
	case n == 1:
		return "Abnormal reading! Confirm it at other locations before you decide.", true
	case abnormal > 0:
		return "You have an abnormal reading. You may be ready to diagnose.", true
	default:
		return "All readings so far are normal. Try switching instrument mode.", true
	}
}
