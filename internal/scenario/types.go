package scenario

// TestMode is the multimeter function a reading is taken with.
type TestMode string

const (
	ModeContinuity TestMode = "continuity"
	ModeInsulation TestMode = "insulation"
)

// Valid reports whether m is a known instrument mode.
func (m TestMode) Valid() bool {
	return m == ModeContinuity || m == ModeInsulation
}

// Label returns the display name of the instrument mode.
func (m TestMode) Label() string {
	switch m {
	case ModeContinuity:
		return "Continuity"
	case ModeInsulation:
		return "Insulation Resistance"
	}
	return string(m)
}

// FaultType is the category of wiring fault. All scenario faults are wiring
// faults, never faulty components.
type FaultType string

const (
	FaultOpenCircuit      FaultType = "open_circuit"
	FaultShortCircuit     FaultType = "short_circuit"
	FaultReversedPolarity FaultType = "reversed_polarity"
	FaultHighResistance   FaultType = "high_resistance"
)

// Valid reports whether f is a known fault type.
func (f FaultType) Valid() bool {
	switch f {
	case FaultOpenCircuit, FaultShortCircuit, FaultReversedPolarity, FaultHighResistance:
		return true
	}
	return false
}

// Label returns the display label for the fault type.
func (f FaultType) Label() string {
	switch f {
	case FaultOpenCircuit:
		return "Open Circuit"
	case FaultShortCircuit:
		return "Short Circuit"
	case FaultReversedPolarity:
		return "Reversed Polarity"
	case FaultHighResistance:
		return "High Resistance"
	}
	return string(f)
}

// OverLimit is the meter display value for a reading beyond range.
const OverLimit = "OL"

// Reading is a single simulated instrument reading at a test point.
// Abnormal is classified in the scenario data, never derived from Value.
type Reading struct {
	ID       string   `yaml:"id" json:"id"`
	Label    string   `yaml:"label" json:"label"`
	Mode     TestMode `yaml:"mode" json:"mode"`
	Value    string   `yaml:"reading" json:"reading"`
	Unit     string   `yaml:"unit" json:"unit"`
	Abnormal bool     `yaml:"abnormal" json:"isAbnormal"`
	Key      bool     `yaml:"key" json:"isKey"`
}

// Display renders the reading the way the meter shows it.
func (r Reading) Display() string {
	if r.Value == OverLimit {
		return OverLimit
	}
	return r.Value + " " + r.Unit
}

// TestPoint is a location in the circuit where readings can be taken.
type TestPoint struct {
	ID          string    `yaml:"id" json:"id"`
	Location    string    `yaml:"location" json:"location"`
	Description string    `yaml:"description" json:"description"`
	Tests       []Reading `yaml:"tests" json:"tests"`
}

// ReadingsFor returns the readings at this point taken with the given mode.
func (tp TestPoint) ReadingsFor(mode TestMode) []Reading {
	var out []Reading
	for _, r := range tp.Tests {
		if r.Mode == mode {
			out = append(out, r)
		}
	}
	return out
}

// DiagnosisOption is one candidate answer for a scenario.
type DiagnosisOption struct {
	ID      string `yaml:"id" json:"id"`
	Label   string `yaml:"label" json:"label"`
	Correct bool   `yaml:"correct" json:"isCorrect"`
}

// FaultScenario is one diagnostic puzzle. Scenarios are read-only for the
// lifetime of a session.
type FaultScenario struct {
	ID               string            `yaml:"id" json:"id"`
	CircuitType      string            `yaml:"circuit_type" json:"circuitType"`
	CircuitName      string            `yaml:"circuit_name" json:"circuitName"`
	Symptom          string            `yaml:"symptom" json:"symptom"`
	FaultType        FaultType         `yaml:"fault_type" json:"correctFaultType"`
	TestPoints       []TestPoint       `yaml:"test_points" json:"testPoints"`
	DiagnosisOptions []DiagnosisOption `yaml:"diagnosis_options" json:"diagnosisOptions"`
	CorrectLocation  string            `yaml:"correct_location" json:"correctLocation"`
	Rectification    string            `yaml:"rectification" json:"rectification"`
	Explanation      string            `yaml:"explanation" json:"explanation"`
	OptimalMethod    string            `yaml:"optimal_method" json:"optimalMethod"`
}

// FindReading looks up a reading anywhere in the scenario by ID.
func (s FaultScenario) FindReading(id string) (Reading, bool) {
	for _, tp := range s.TestPoints {
		for _, r := range tp.Tests {
			if r.ID == id {
				return r, true
			}
		}
	}
	return Reading{}, false
}

// PointOf returns the test point that owns the reading with the given ID.
func (s FaultScenario) PointOf(readingID string) (TestPoint, bool) {
	for _, tp := range s.TestPoints {
		for _, r := range tp.Tests {
			if r.ID == readingID {
				return tp, true
			}
		}
	}
	return TestPoint{}, false
}

// Option looks up a diagnosis option by ID.
func (s FaultScenario) Option(id string) (DiagnosisOption, bool) {
	for _, o := range s.DiagnosisOptions {
		if o.ID == id {
			return o, true
		}
	}
	return DiagnosisOption{}, false
}

// CorrectOption returns the single correct diagnosis option.
func (s FaultScenario) CorrectOption() (DiagnosisOption, bool) {
	for _, o := range s.DiagnosisOptions {
		if o.Correct {
			return o, true
		}
	}
	return DiagnosisOption{}, false
}

// FirstAbnormalPoint returns the first test point, in order, that has any
// abnormal reading.
func (s FaultScenario) FirstAbnormalPoint() (TestPoint, bool) {
	for _, tp := range s.TestPoints {
		for _, r := range tp.Tests {
			if r.Abnormal {
				return tp, true
			}
		}
	}
	return TestPoint{}, false
}

// circuitTypeLabels maps circuit type keys to display names.
var circuitTypeLabels = map[string]string{
	"ring_main":  "Ring Final Circuit",
	"lighting":   "Lighting Circuit",
	"motor_dol":  "DOL Motor Starter",
	"bonding":    "Protective Bonding",
	"smoke_co":   "Smoke & CO Alarms",
	"data":       "Data Cabling",
	"tpn_socket": "TP&N Socket Circuit",
	"splan":      "S-Plan Heating",
}

// CircuitTypeLabel returns a display name for a circuit type key. Unknown
// keys are returned unchanged.
func CircuitTypeLabel(circuitType string) string {
	if l, ok := circuitTypeLabels[circuitType]; ok {
		return l
	}
	return circuitType
}
