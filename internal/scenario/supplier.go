package scenario

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

// SessionSize is the number of scenarios in one session.
const SessionSize = 7

// ErrSupplyContract is returned when a supplier does not return exactly the
// requested number of distinct scenarios.
var ErrSupplyContract = errors.New("scenario supplier contract violated")

// Supplier hands out scenarios for a new session.
type Supplier interface {
	// Supply returns count distinct scenarios.
	Supply(count int) ([]FaultScenario, error)
}

// CheckSupply verifies the supplier contract: exactly count items and no
// duplicate scenario IDs.
func CheckSupply(scenarios []FaultScenario, count int) error {
	if len(scenarios) != count {
		return fmt.Errorf("%w: got %d scenarios, want %d", ErrSupplyContract, len(scenarios), count)
	}
	seen := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate scenario %q", ErrSupplyContract, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// BankSupplier draws scenarios from a Bank, one per circuit type where
// possible, so a session covers as many circuit types as the pool allows.
type BankSupplier struct {
	bank *Bank

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBankSupplier creates a supplier over bank. A nil rng is seeded from the
// clock.
func NewBankSupplier(bank *Bank, rng *rand.Rand) *BankSupplier {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>17))
	}
	return &BankSupplier{bank: bank, rng: rng}
}

// Supply picks one random scenario per circuit type, shuffles the picks and
// takes count of them. If the pool has fewer circuit types than count, the
// remainder is filled from unused scenarios at random.
func (s *BankSupplier) Supply(count int) ([]FaultScenario, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrSupplyContract, count)
	}
	if count > s.bank.Len() {
		return nil, fmt.Errorf("%w: pool has %d scenarios, want %d", ErrSupplyContract, s.bank.Len(), count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.bank.ByCircuitType()
	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	// Map iteration order is random; sort so a seeded rng is reproducible.
	sort.Strings(types)

	used := make(map[string]bool)
	picks := make([]FaultScenario, 0, len(types))
	for _, t := range types {
		g := groups[t]
		p := g[s.rng.IntN(len(g))]
		picks = append(picks, p)
		used[p.ID] = true
	}
	s.rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })

	if len(picks) >= count {
		return picks[:count], nil
	}

	var rest []FaultScenario
	for _, sc := range s.bank.scenarios {
		if !used[sc.ID] {
			rest = append(rest, sc)
		}
	}
	s.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(picks, rest[:count-len(picks)]...), nil
}

// StaticSupplier always returns the same scenarios. It is useful for replays
// and tests.
type StaticSupplier []FaultScenario

// Supply returns the first count scenarios.
func (s StaticSupplier) Supply(count int) ([]FaultScenario, error) {
	if count > len(s) {
		return nil, fmt.Errorf("%w: have %d scenarios, want %d", ErrSupplyContract, len(s), count)
	}
	out := make([]FaultScenario, count)
	copy(out, s[:count])
	return out, nil
}
