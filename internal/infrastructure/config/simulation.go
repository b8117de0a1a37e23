package config

import "github.com/andrescamacho/jobshop-sim/internal/domain/simulation"

// SimulationConfig holds the environment parameters used by the runner and the
// simulation service
type SimulationConfig struct {
	// Plant definition file (YAML or JSON). Empty selects the built-in plant named by Plant.
	PlantFile string `mapstructure:"plant_file" validate:"omitempty,plantfile"`

	// Built-in plant name: reference, simple-chain
	Plant string `mapstructure:"plant" validate:"omitempty,builtinplant"`

	// Global buffer capacity
	MaxBuffer int `mapstructure:"max_buffer" validate:"min=1,max=10000"`

	// Ticks per episode
	Horizon int `mapstructure:"horizon" validate:"min=1,max=1000000"`

	// Discount used by potential shaping
	Gamma float64 `mapstructure:"gamma" validate:"gte=0,lte=1"`

	// Goal part type for shaping (empty disables shaping)
	Goal string `mapstructure:"goal"`

	// Append the goal one-hot to observations. Pointer so that an explicit false survives defaults.
	GoalConditioned *bool `mapstructure:"goal_conditioned"`

	// Repeat a routing action while it stays legal
	RepeatRouting bool `mapstructure:"repeat_routing"`

	// Mask routings to machines whose type lists the transformation
	RequireSupport bool `mapstructure:"require_support"`

	// Cap on value propagation passes
	PropagationMaxPasses int `mapstructure:"propagation_max_passes" validate:"min=1"`
}

// IsGoalConditioned resolves the goal_conditioned flag, true when unset
func (s SimulationConfig) IsGoalConditioned() bool {
	return s.GoalConditioned == nil || *s.GoalConditioned
}

// EnvironmentConfig maps the settings onto the environment parameters
func (s SimulationConfig) EnvironmentConfig() simulation.Config {
	return simulation.Config{
		MaxBuffer:       s.MaxBuffer,
		Horizon:         s.Horizon,
		Gamma:           s.Gamma,
		Goal:            s.Goal,
		GoalConditioned: s.IsGoalConditioned(),
		RepeatRouting:   s.RepeatRouting,
		RequireSupport:  s.RequireSupport,
	}
}
