package simulation

import "fmt"

// Domain errors for the per-tick environment contract

// ErrActionOutOfRange indicates an action index outside [0, ActionCount). It signals a
// mismatch between the caller and the action mask, so it is rejected rather than
// treated as a no-op.
type ErrActionOutOfRange struct {
	Action int
	Count  int
}

func (e *ErrActionOutOfRange) Error() string {
	return fmt.Sprintf("action %d out of range [0, %d)", e.Action, e.Count)
}

// ErrEpisodeFinished indicates a step after the horizon was reached
type ErrEpisodeFinished struct {
	Tick    int
	Horizon int
}

func (e *ErrEpisodeFinished) Error() string {
	return fmt.Sprintf("episode finished at tick %d (horizon %d); reset before stepping", e.Tick, e.Horizon)
}

// ErrUnknownGoal indicates a goal that names no part type of the plant
type ErrUnknownGoal struct {
	Goal string
}

func (e *ErrUnknownGoal) Error() string {
	return fmt.Sprintf("unknown goal part type: %s", e.Goal)
}

// ErrInvalidConfig indicates an environment configuration value out of bounds
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid environment config %s: %s", e.Field, e.Reason)
}
