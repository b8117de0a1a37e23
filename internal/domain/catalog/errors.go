package catalog

import "fmt"

// Domain errors for catalog construction and value propagation

// ErrDuplicateName indicates a part type, transformation or machine type name was declared twice
type ErrDuplicateName struct {
	Kind string
	Name string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("duplicate %s name: %s", e.Kind, e.Name)
}

// ErrUnknownPartType indicates a reference to a part type that is not in the catalog
type ErrUnknownPartType struct {
	Name string
}

func (e *ErrUnknownPartType) Error() string {
	return fmt.Sprintf("unknown part type: %s", e.Name)
}

// ErrUnknownTransformation indicates a reference to a transformation that is not in the catalog
type ErrUnknownTransformation struct {
	Name string
}

func (e *ErrUnknownTransformation) Error() string {
	return fmt.Sprintf("unknown transformation: %s", e.Name)
}

// ErrUnknownMachineType indicates a reference to a machine type that is not in the catalog
type ErrUnknownMachineType struct {
	Name string
}

func (e *ErrUnknownMachineType) Error() string {
	return fmt.Sprintf("unknown machine type: %s", e.Name)
}

// ErrInvalidDefinition indicates a structurally invalid catalog entry
type ErrInvalidDefinition struct {
	Kind   string
	Name   string
	Reason string
}

func (e *ErrInvalidDefinition) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Name, e.Reason)
}

// ErrPropagationDiverged indicates value propagation did not reach a fixed point
// within the configured number of passes
type ErrPropagationDiverged struct {
	Passes int
}

func (e *ErrPropagationDiverged) Error() string {
	return fmt.Sprintf("value propagation did not converge after %d passes", e.Passes)
}
