package shared_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
)

func TestLifecycleStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		run       func(sm *shared.LifecycleStateMachine) error
		want      shared.LifecycleStatus
		wantError bool
	}{
		{
			name: "start then complete",
			run: func(sm *shared.LifecycleStateMachine) error {
				if err := sm.Start(); err != nil {
					return err
				}
				return sm.Complete()
			},
			want: shared.LifecycleStatusCompleted,
		},
		{
			name: "complete without start",
			run:  func(sm *shared.LifecycleStateMachine) error { return sm.Complete() },
			want: shared.LifecycleStatusPending, wantError: true,
		},
		{
			name: "fail while pending",
			run:  func(sm *shared.LifecycleStateMachine) error { return sm.Fail(errors.New("boom")) },
			want: shared.LifecycleStatusFailed,
		},
		{
			name: "start twice",
			run: func(sm *shared.LifecycleStateMachine) error {
				_ = sm.Start()
				return sm.Start()
			},
			want: shared.LifecycleStatusRunning, wantError: true,
		},
		{
			name: "stop after stop",
			run: func(sm *shared.LifecycleStateMachine) error {
				_ = sm.Stop()
				return sm.Stop()
			},
			want: shared.LifecycleStatusStopped, wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			sm := shared.NewLifecycleStateMachine(shared.NewSteppingClock(time.Time{}, time.Second))

			// Act
			err := tt.run(sm)

			// Assert
			if tt.wantError {
				var transition *shared.InvalidTransitionError
				require.ErrorAs(t, err, &transition)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, sm.Status())
		})
	}
}

func TestLifecycleStateMachine_RuntimeDuration(t *testing.T) {
	// Arrange
	clock := shared.NewSteppingClock(time.Time{}, 5*time.Second)
	sm := shared.NewLifecycleStateMachine(clock)
	assert.Zero(t, sm.RuntimeDuration())

	// Act
	require.NoError(t, sm.Start())
	require.NoError(t, sm.Complete())

	// Assert
	assert.Equal(t, 5*time.Second, sm.RuntimeDuration())
	assert.True(t, sm.Status().IsTerminal())
}
