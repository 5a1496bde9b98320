package scenario

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultBankLoads(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	if b.Len() != 30 {
		t.Errorf("Len() = %d, want 30", b.Len())
	}
	if got := len(b.CircuitTypes()); got != 8 {
		t.Errorf("circuit types = %d, want 8", got)
	}
	for _, s := range b.All() {
		if _, ok := s.CorrectOption(); !ok {
			t.Errorf("scenario %s has no correct option", s.ID)
		}
		if CircuitTypeLabel(s.CircuitType) == s.CircuitType {
			t.Errorf("circuit type %q has no label", s.CircuitType)
		}
	}
}

func TestScenarioLookups(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	s, ok := b.Get("ring-lpe-short")
	if !ok {
		t.Fatal("ring-lpe-short not found")
	}

	r, ok := s.FindReading("ring-db-le")
	if !ok {
		t.Fatal("reading ring-db-le not found")
	}
	if !r.Abnormal || r.Mode != ModeInsulation {
		t.Errorf("ring-db-le = %+v, want abnormal insulation reading", r)
	}
	if _, ok := s.FindReading("nope"); ok {
		t.Error("unknown reading should not be found")
	}

	tp, ok := s.PointOf("ring-db-le")
	if !ok || tp.ID != "ring-db" {
		t.Errorf("PointOf(ring-db-le) = %q, want ring-db", tp.ID)
	}

	first, ok := s.FirstAbnormalPoint()
	if !ok || first.Location != "Distribution Board" {
		t.Errorf("FirstAbnormalPoint = %q, want Distribution Board", first.Location)
	}

	o, ok := s.Option("b")
	if !ok || !o.Correct {
		t.Errorf("option b = %+v, want correct", o)
	}
	if got := len(s.TestPoints[0].ReadingsFor(ModeContinuity)); got != 1 {
		t.Errorf("continuity readings at ring-db = %d, want 1", got)
	}
}

func TestReadingDisplay(t *testing.T) {
	if got := (Reading{Value: "0.35", Unit: "Ω"}).Display(); got != "0.35 Ω" {
		t.Errorf("Display() = %q, want %q", got, "0.35 Ω")
	}
	if got := (Reading{Value: OverLimit, Unit: "Ω"}).Display(); got != "OL" {
		t.Errorf("Display() = %q, want OL", got)
	}
}

func TestFaultTypeLabel(t *testing.T) {
	tests := map[FaultType]string{
		FaultOpenCircuit:      "Open Circuit",
		FaultShortCircuit:     "Short Circuit",
		FaultReversedPolarity: "Reversed Polarity",
		FaultHighResistance:   "High Resistance",
	}
	for ft, want := range tests {
		if got := ft.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", ft, got, want)
		}
	}
}

func TestParseBankRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty",
			yaml: "scenarios: []",
			want: "empty",
		},
		{
			name: "two correct options",
			yaml: `
scenarios:
- id: s1
  circuit_type: lighting
  fault_type: open_circuit
  test_points:
  - id: tp
    tests:
    - {id: r1, mode: continuity, reading: "OL", unit: Ω, abnormal: true}
  diagnosis_options:
  - {id: a, correct: true}
  - {id: b, correct: true}
`,
			want: "2 correct options",
		},
		{
			name: "duplicate reading",
			yaml: `
scenarios:
- id: s1
  circuit_type: lighting
  fault_type: open_circuit
  test_points:
  - id: tp
    tests:
    - {id: r1, mode: continuity, reading: "OL", unit: Ω}
    - {id: r1, mode: insulation, reading: "1.0", unit: MΩ}
  diagnosis_options:
  - {id: a, correct: true}
`,
			want: "duplicate reading id",
		},
		{
			name: "unknown mode and fault",
			yaml: `
scenarios:
- id: s1
  circuit_type: lighting
  fault_type: blown_fuse
  test_points:
  - id: tp
    tests:
    - {id: r1, mode: voltage, reading: "230", unit: V}
  diagnosis_options:
  - {id: a, correct: true}
`,
			want: "unknown fault_type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBank([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadBankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	data := `
scenarios:
- id: only
  circuit_type: data
  fault_type: high_resistance
  test_points:
  - id: tp
    location: Patch Panel
    tests:
    - {id: r1, mode: continuity, reading: "12.5", unit: Ω, abnormal: true}
  diagnosis_options:
  - {id: a, label: Bad termination, correct: true}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := LoadBankFile(path)
	if err != nil {
		t.Fatalf("LoadBankFile: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}

	if _, err := LoadBankFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBankSupplierOnePerCircuitType(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	sup := NewBankSupplier(b, rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 20; i++ {
		got, err := sup.Supply(SessionSize)
		if err != nil {
			t.Fatalf("Supply: %v", err)
		}
		if err := CheckSupply(got, SessionSize); err != nil {
			t.Fatalf("CheckSupply: %v", err)
		}
		types := make(map[string]bool)
		for _, s := range got {
			if types[s.CircuitType] {
				t.Errorf("circuit type %s drawn twice", s.CircuitType)
			}
			types[s.CircuitType] = true
		}
	}
}

func TestBankSupplierDeterministicWithSeed(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	a, _ := NewBankSupplier(b, rand.New(rand.NewPCG(7, 7))).Supply(SessionSize)
	c, _ := NewBankSupplier(b, rand.New(rand.NewPCG(7, 7))).Supply(SessionSize)
	for i := range a {
		if a[i].ID != c[i].ID {
			t.Fatalf("draw %d = %s, want %s", i, c[i].ID, a[i].ID)
		}
	}
}

func TestBankSupplierPadsBeyondCircuitTypes(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	sup := NewBankSupplier(b, rand.New(rand.NewPCG(3, 4)))
	got, err := sup.Supply(12)
	if err != nil {
		t.Fatalf("Supply: %v", err)
	}
	if err := CheckSupply(got, 12); err != nil {
		t.Errorf("CheckSupply: %v", err)
	}

	if _, err := sup.Supply(31); !errors.Is(err, ErrSupplyContract) {
		t.Errorf("Supply(31) error = %v, want ErrSupplyContract", err)
	}
}

func TestCheckSupply(t *testing.T) {
	s := []FaultScenario{{ID: "a"}, {ID: "b"}}
	if err := CheckSupply(s, 2); err != nil {
		t.Errorf("CheckSupply valid: %v", err)
	}
	if err := CheckSupply(s, 3); !errors.Is(err, ErrSupplyContract) {
		t.Errorf("wrong count error = %v, want ErrSupplyContract", err)
	}
	dup := []FaultScenario{{ID: "a"}, {ID: "a"}}
	if err := CheckSupply(dup, 2); !errors.Is(err, ErrSupplyContract) {
		t.Errorf("duplicate error = %v, want ErrSupplyContract", err)
	}
}

func TestParseBankFormatVersion(t *testing.T) {
	const body = `
scenarios:
- id: only
  circuit_type: data
  fault_type: high_resistance
  test_points:
  - id: tp
    tests:
    - {id: r1, mode: continuity, reading: "12.5", unit: Ω, abnormal: true}
  diagnosis_options:
  - {id: a, correct: true}
`
	tests := []struct {
		version string
		want    string
		wantErr string
	}{
		{version: "", want: "v1"},
		{version: "version: v1.2", want: "v1.2.0"},
		{version: "version: 1.4.1", want: "v1.4.1"},
		{version: "version: v2.0.0", wantErr: "not supported"},
		{version: "version: latest", wantErr: "not a semantic version"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			b, err := ParseBank([]byte(tt.version + "\n" + body))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if b.Version() != tt.want {
				t.Errorf("Version() = %q, want %q", b.Version(), tt.want)
			}
		})
	}

	b, err := DefaultBank()
	if err != nil {
		t.Fatal(err)
	}
	if b.Version() != "v1.0.0" {
		t.Errorf("default bank version = %q", b.Version())
	}
}
