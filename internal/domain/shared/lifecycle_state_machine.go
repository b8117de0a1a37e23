package shared

import "time"

// LifecycleStatus is the state of a long-running entity such as a simulation episode
type LifecycleStatus string

const (
	LifecycleStatusPending   LifecycleStatus = "PENDING"
	LifecycleStatusRunning   LifecycleStatus = "RUNNING"
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"
	LifecycleStatusFailed    LifecycleStatus = "FAILED"
	LifecycleStatusStopped   LifecycleStatus = "STOPPED"
)

// IsTerminal reports whether no further transition is allowed
func (s LifecycleStatus) IsTerminal() bool {
	return s == LifecycleStatusCompleted || s == LifecycleStatusFailed || s == LifecycleStatusStopped
}

// LifecycleStateMachine tracks PENDING -> RUNNING -> COMPLETED | FAILED | STOPPED
// with clock-stamped transitions. Entities embed it by composition.
type LifecycleStateMachine struct {
	status     LifecycleStatus
	createdAt  time.Time
	startedAt  *time.Time
	finishedAt *time.Time
	lastError  string
	clock      Clock
}

// NewLifecycleStateMachine creates a machine in PENDING state
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &LifecycleStateMachine{
		status:    LifecycleStatusPending,
		createdAt: clock.Now(),
		clock:     clock,
	}
}

// Getters

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) CreatedAt() time.Time    { return sm.createdAt }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) FinishedAt() *time.Time  { return sm.finishedAt }
func (sm *LifecycleStateMachine) LastError() string       { return sm.lastError }

// Start transitions PENDING to RUNNING
func (sm *LifecycleStateMachine) Start() error {
	if sm.status != LifecycleStatusPending {
		return &InvalidTransitionError{From: string(sm.status), Attempted: "start"}
	}
	now := sm.clock.Now()
	sm.status = LifecycleStatusRunning
	sm.startedAt = &now
	return nil
}

// Complete transitions RUNNING to COMPLETED
func (sm *LifecycleStateMachine) Complete() error {
	if sm.status != LifecycleStatusRunning {
		return &InvalidTransitionError{From: string(sm.status), Attempted: "complete"}
	}
	sm.finish(LifecycleStatusCompleted)
	return nil
}

// Fail records the error and moves any non-terminal state to FAILED
func (sm *LifecycleStateMachine) Fail(err error) error {
	if sm.status.IsTerminal() {
		return &InvalidTransitionError{From: string(sm.status), Attempted: "fail"}
	}
	if err != nil {
		sm.lastError = err.Error()
	}
	sm.finish(LifecycleStatusFailed)
	return nil
}

// Stop moves any non-terminal state to STOPPED, e.g. on cancellation
func (sm *LifecycleStateMachine) Stop() error {
	if sm.status.IsTerminal() {
		return &InvalidTransitionError{From: string(sm.status), Attempted: "stop"}
	}
	sm.finish(LifecycleStatusStopped)
	return nil
}

func (sm *LifecycleStateMachine) finish(status LifecycleStatus) {
	now := sm.clock.Now()
	sm.status = status
	sm.finishedAt = &now
}

// IsRunning returns true while the entity executes
func (sm *LifecycleStateMachine) IsRunning() bool {
	return sm.status == LifecycleStatusRunning
}

// RuntimeDuration returns the time between start and finish, or until now when
// still running. Zero before start.
func (sm *LifecycleStateMachine) RuntimeDuration() time.Duration {
	if sm.startedAt == nil {
		return 0
	}
	end := sm.clock.Now()
	if sm.finishedAt != nil {
		end = *sm.finishedAt
	}
	return end.Sub(*sm.startedAt)
}

// RecoverFromPersistence restores state when reconstructing from storage
func (sm *LifecycleStateMachine) RecoverFromPersistence(
	status LifecycleStatus,
	createdAt time.Time,
	startedAt, finishedAt *time.Time,
	lastError string,
) {
	sm.status = status
	sm.createdAt = createdAt
	sm.startedAt = startedAt
	sm.finishedAt = finishedAt
	sm.lastError = lastError
}
