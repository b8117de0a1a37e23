package shared

import "fmt"

// Lookup errors

// NotFoundError indicates a persisted entity does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidTransitionError indicates a lifecycle transition that the current state forbids
type InvalidTransitionError struct {
	From      string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s state", e.Attempted, e.From)
}
