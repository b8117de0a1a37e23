package policies

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

// Policy chooses one legal action from an observation and its action mask
type Policy interface {
	Name() string
	Choose(observation []float32, mask []bool) int
}

// ErrUnknownPolicy indicates a policy name that is not registered
type ErrUnknownPolicy struct {
	Name string
}

func (e *ErrUnknownPolicy) Error() string {
	return fmt.Sprintf("unknown policy: %s (known: %v)", e.Name, Names())
}

var factories = map[string]func(seed int64) Policy{
	"noop":   func(int64) Policy { return NoOp{} },
	"greedy": func(int64) Policy { return Greedy{} },
	"random": func(seed int64) Policy { return NewRandom(seed) },
}

// New builds a registered policy. The seed only matters for stochastic policies.
func New(name string, seed int64) (Policy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, &ErrUnknownPolicy{Name: name}
	}
	return factory(seed), nil
}

// Names lists the registered policies in sorted order
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NoOp never routes
type NoOp struct{}

func (NoOp) Name() string                 { return "noop" }
func (NoOp) Choose([]float32, []bool) int { return simulation.NoOp }

// Greedy picks the lowest-indexed legal routing action, falling back to no-op
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Choose(_ []float32, mask []bool) int {
	for action := 1; action < len(mask); action++ {
		if mask[action] {
			return action
		}
	}
	return simulation.NoOp
}

// Random samples uniformly among legal actions, no-op included
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a seeded random policy
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Choose(_ []float32, mask []bool) int {
	legal := make([]int, 0, len(mask))
	for action, ok := range mask {
		if ok {
			legal = append(legal, action)
		}
	}
	if len(legal) == 0 {
		return simulation.NoOp
	}
	return legal[r.rng.Intn(len(legal))]
}
