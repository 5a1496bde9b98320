package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FormatMajor is the scenario file format major version this build reads.
// Files without a version are read as FormatMajor.
const FormatMajor = "v1"

//go:embed data/scenarios.yaml
var defaultBankYAML []byte

var (
	defaultBank     *Bank
	defaultBankErr  error
	defaultBankOnce sync.Once
)

// Bank is an immutable pool of fault scenarios.
type Bank struct {
	version   string
	scenarios []FaultScenario
	byID      map[string]int
}

type bankFile struct {
	Version   string          `yaml:"version"`
	Scenarios []FaultScenario `yaml:"scenarios"`
}

// DefaultBank returns the embedded scenario pool. It is parsed once.
func DefaultBank() (*Bank, error) {
	defaultBankOnce.Do(func() {
		defaultBank, defaultBankErr = ParseBank(defaultBankYAML)
	})
	return defaultBank, defaultBankErr
}

// LoadBankFile reads a scenario pool from a YAML file.
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	b, err := ParseBank(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ParseBank decodes and validates a YAML scenario pool.
func ParseBank(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	version, err := checkFormat(f.Version)
	if err != nil {
		return nil, err
	}
	b, err := NewBank(f.Scenarios)
	if err != nil {
		return nil, err
	}
	b.version = version
	return b, nil
}

// checkFormat validates a file format version and returns it in canonical
// form. An empty version means FormatMajor.
func checkFormat(v string) (string, error) {
	if v == "" {
		return FormatMajor, nil
	}
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("scenario file version %q is not a semantic version", v)
	}
	if major := semver.Major(v); major != FormatMajor {
		return "", fmt.Errorf("scenario file version %s is not supported (want %s.x)", v, FormatMajor)
	}
	return semver.Canonical(v), nil
}

// NewBank validates scenarios and builds a Bank from them.
func NewBank(scenarios []FaultScenario) (*Bank, error) {
	if len(scenarios) == 0 {
		return nil, errors.New("scenario pool is empty")
	}

	b := &Bank{
		scenarios: make([]FaultScenario, len(scenarios)),
		byID:      make(map[string]int, len(scenarios)),
	}
	copy(b.scenarios, scenarios)

	var errs []error
	for i, s := range b.scenarios {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("scenario #%d: missing id", i))
			continue
		}
		if _, dup := b.byID[s.ID]; dup {
			errs = append(errs, fmt.Errorf("scenario %q: duplicate id", s.ID))
			continue
		}
		b.byID[s.ID] = i
		errs = append(errs, validateScenario(s)...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid scenario pool: %w", err)
	}
	return b, nil
}

func validateScenario(s FaultScenario) []error {
	var errs []error
	if s.CircuitType == "" {
		errs = append(errs, fmt.Errorf("scenario %q: missing circuit_type", s.ID))
	}
	if !s.FaultType.Valid() {
		errs = append(errs, fmt.Errorf("scenario %q: unknown fault_type %q", s.ID, s.FaultType))
	}
	if len(s.TestPoints) == 0 {
		errs = append(errs, fmt.Errorf("scenario %q: no test points", s.ID))
	}

	readings := make(map[string]bool)
	for _, tp := range s.TestPoints {
		if tp.ID == "" {
			errs = append(errs, fmt.Errorf("scenario %q: test point missing id", s.ID))
		}
		for _, r := range tp.Tests {
			if r.ID == "" {
				errs = append(errs, fmt.Errorf("scenario %q: reading at %q missing id", s.ID, tp.ID))
				continue
			}
			if readings[r.ID] {
				errs = append(errs, fmt.Errorf("scenario %q: duplicate reading id %q", s.ID, r.ID))
			}
			readings[r.ID] = true
			if !r.Mode.Valid() {
				errs = append(errs, fmt.Errorf("scenario %q: reading %q has unknown mode %q", s.ID, r.ID, r.Mode))
			}
		}
	}

	correct := 0
	options := make(map[string]bool)
	for _, o := range s.DiagnosisOptions {
		if options[o.ID] {
			errs = append(errs, fmt.Errorf("scenario %q: duplicate option id %q", s.ID, o.ID))
		}
		options[o.ID] = true
		if o.Correct {
			correct++
		}
	}
	if correct != 1 {
		errs = append(errs, fmt.Errorf("scenario %q: %d correct options, want exactly 1", s.ID, correct))
	}
	return errs
}

// Version returns the canonical format version of the source file.
func (b *Bank) Version() string {
	if b.version == "" {
		return FormatMajor
	}
	return b.version
}

// Len returns the number of scenarios in the pool.
func (b *Bank) Len() int { return len(b.scenarios) }

// All returns every scenario in file order.
func (b *Bank) All() []FaultScenario {
	out := make([]FaultScenario, len(b.scenarios))
	copy(out, b.scenarios)
	return out
}

// Get returns the scenario with the given ID.
func (b *Bank) Get(id string) (FaultScenario, bool) {
	i, ok := b.byID[id]
	if !ok {
		return FaultScenario{}, false
	}
	return b.scenarios[i], true
}

// CircuitTypes returns the distinct circuit types in the pool, sorted.
func (b *Bank) CircuitTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range b.scenarios {
		if !seen[s.CircuitType] {
			seen[s.CircuitType] = true
			out = append(out, s.CircuitType)
		}
	}
	sort.Strings(out)
	return out
}

// ByCircuitType groups scenarios by circuit type, preserving file order.
func (b *Bank) ByCircuitType() map[string][]FaultScenario {
	groups := make(map[string][]FaultScenario)
	for _, s := range b.scenarios {
		groups[s.CircuitType] = append(groups[s.CircuitType], s)
	}
	return groups
}
