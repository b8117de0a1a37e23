package simulation

import "fmt"

// Config parameterises one environment instance
type Config struct {
	// MaxBuffer is the global buffer capacity and the number of observed buffer slots
	MaxBuffer int

	// Horizon is the number of ticks per episode
	Horizon int

	// Gamma discounts the shaping potential after the tick
	Gamma float64

	// Goal is the target part type name for potential shaping; empty disables shaping
	Goal string

	// GoalConditioned appends the goal one-hot block to the observation
	GoalConditioned bool

	// RepeatRouting repeats a legal routing action, refilling between repetitions,
	// up to MaxBuffer times per step
	RepeatRouting bool

	// RequireSupport clears mask bits whose target machine type does not list the
	// decoded transformation
	RequireSupport bool
}

// Upper bounds on the per-instance allocation a caller can request
const (
	MaxBufferLimit = 10_000
	HorizonLimit   = 1_000_000
)

// DefaultConfig returns the reference environment parameters
func DefaultConfig() Config {
	return Config{
		MaxBuffer:       10,
		Horizon:         50,
		Gamma:           0.99,
		GoalConditioned: true,
	}
}

// Validate checks numeric bounds
func (c Config) Validate() error {
	if c.MaxBuffer <= 0 {
		return &ErrInvalidConfig{Field: "MaxBuffer", Reason: "must be positive"}
	}
	if c.MaxBuffer > MaxBufferLimit {
		return &ErrInvalidConfig{Field: "MaxBuffer", Reason: fmt.Sprintf("must be at most %d", MaxBufferLimit)}
	}
	if c.Horizon <= 0 {
		return &ErrInvalidConfig{Field: "Horizon", Reason: "must be positive"}
	}
	if c.Horizon > HorizonLimit {
		return &ErrInvalidConfig{Field: "Horizon", Reason: fmt.Sprintf("must be at most %d", HorizonLimit)}
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return &ErrInvalidConfig{Field: "Gamma", Reason: "must be within [0, 1]"}
	}
	return nil
}
