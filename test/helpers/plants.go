package helpers

import (
	"testing"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

// NewPlant builds a priced plant from a definition or fails the test
func NewPlant(t testing.TB, def catalog.Definition) *plant.Plant {
	t.Helper()
	p, err := plant.FromDefinition(def, catalog.DefaultMaxPropagationPasses)
	if err != nil {
		t.Fatalf("failed to build plant %s: %v", def.Name, err)
	}
	return p
}

// NewEnvironment builds an environment over a fresh plant and resets it
func NewEnvironment(t testing.TB, def catalog.Definition, cfg simulation.Config) *simulation.Environment {
	t.Helper()
	env, err := simulation.NewEnvironment(NewPlant(t, def), cfg)
	if err != nil {
		t.Fatalf("failed to build environment: %v", err)
	}
	env.Reset()
	return env
}
