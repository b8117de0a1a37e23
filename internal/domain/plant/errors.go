package plant

import "fmt"

// Domain errors for machine and plant operations

// ErrNoFreeSlot indicates a job start was attempted on a machine running at slot capacity
type ErrNoFreeSlot struct {
	MachineID string
	Slots     int
}

func (e *ErrNoFreeSlot) Error() string {
	return fmt.Sprintf("machine %s has no free slot (capacity %d)", e.MachineID, e.Slots)
}

// ErrInputsUnavailable indicates the input buffer cannot cover a transformation's requirements
type ErrInputsUnavailable struct {
	MachineID      string
	Transformation string
}

func (e *ErrInputsUnavailable) Error() string {
	return fmt.Sprintf("machine %s cannot start %s: inputs unavailable", e.MachineID, e.Transformation)
}

// ErrInvalidPriority indicates a priority override that is not a permutation of the
// machine type's transformations
type ErrInvalidPriority struct {
	MachineID string
	Reason    string
}

func (e *ErrInvalidPriority) Error() string {
	return fmt.Sprintf("invalid transformation priority for machine %s: %s", e.MachineID, e.Reason)
}

// ErrDuplicateMachine indicates two machines share an id
type ErrDuplicateMachine struct {
	MachineID string
}

func (e *ErrDuplicateMachine) Error() string {
	return fmt.Sprintf("duplicate machine id: %s", e.MachineID)
}

// ErrMachineNotFound indicates a machine index or id outside the plant
type ErrMachineNotFound struct {
	Machine string
}

func (e *ErrMachineNotFound) Error() string {
	return fmt.Sprintf("machine not found: %s", e.Machine)
}

// ErrInconsistentBuffer reports a broken part-membership invariant. It is raised
// with panic: a part duplicated or lost between containers is a bug, not an
// operational condition.
type ErrInconsistentBuffer struct {
	Detail string
}

func (e *ErrInconsistentBuffer) Error() string {
	return fmt.Sprintf("inconsistent part buffers: %s", e.Detail)
}
