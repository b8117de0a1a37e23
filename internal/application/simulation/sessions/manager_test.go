package sessions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

func simpleChainRequest() sessions.CreateRequest {
	cfg := simulation.DefaultConfig()
	cfg.Horizon = 4
	return sessions.CreateRequest{Definition: catalog.SimpleChainDefinition(), Config: cfg}
}

func TestManager_CreateStepReset(t *testing.T) {
	// Arrange
	m := sessions.NewManager(0, nil)

	// Act
	state, err := m.Create(context.Background(), simpleChainRequest())
	require.NoError(t, err)
	result, stepErr := m.Step(state.SessionID, 1)
	reset, resetErr := m.Reset(state.SessionID)

	// Assert
	assert.Contains(t, state.SessionID, "simple-chain-")
	assert.Equal(t, 5, state.ActionCount)
	assert.Len(t, state.Observation, state.ObservationSize)
	assert.Len(t, state.Mask, state.ActionCount)
	assert.Equal(t, 0, state.Tick)

	require.NoError(t, stepErr)
	assert.True(t, result.Diagnostics.Routed)
	assert.Equal(t, 1, result.Diagnostics.Tick)

	require.NoError(t, resetErr)
	assert.Equal(t, 0, reset.Tick)
	assert.Equal(t, state.Observation, reset.Observation)
}

func TestManager_StepErrorsPassThrough(t *testing.T) {
	// Arrange
	m := sessions.NewManager(0, nil)
	state, err := m.Create(context.Background(), simpleChainRequest())
	require.NoError(t, err)

	// Act
	_, outOfRange := m.Step(state.SessionID, 99)
	for i := 0; i < 4; i++ {
		_, err := m.Step(state.SessionID, simulation.NoOp)
		require.NoError(t, err)
	}
	_, finished := m.Step(state.SessionID, simulation.NoOp)

	// Assert
	var rangeErr *simulation.ErrActionOutOfRange
	assert.ErrorAs(t, outOfRange, &rangeErr)
	var finishedErr *simulation.ErrEpisodeFinished
	assert.ErrorAs(t, finished, &finishedErr)
}

func TestManager_SetGoal(t *testing.T) {
	// Arrange
	m := sessions.NewManager(0, nil)
	state, err := m.Create(context.Background(), simpleChainRequest())
	require.NoError(t, err)

	// Act
	withGoal, err := m.SetGoal(state.SessionID, "finished")
	require.NoError(t, err)
	cleared, err := m.SetGoal(state.SessionID, "")
	require.NoError(t, err)
	_, unknownErr := m.SetGoal(state.SessionID, "unobtainium")

	// Assert
	assert.Equal(t, "finished", withGoal.Goal)
	assert.Empty(t, cleared.Goal)
	var unknown *simulation.ErrUnknownGoal
	assert.ErrorAs(t, unknownErr, &unknown)
}

func TestManager_LimitAndClose(t *testing.T) {
	// Arrange
	m := sessions.NewManager(1, nil)
	first, err := m.Create(context.Background(), simpleChainRequest())
	require.NoError(t, err)

	// Act
	_, limitErr := m.Create(context.Background(), simpleChainRequest())
	closeErr := m.Close(first.SessionID)
	_, stepErr := m.Step(first.SessionID, 0)
	secondCloseErr := m.Close(first.SessionID)

	// Assert
	var limit *sessions.ErrSessionLimit
	assert.ErrorAs(t, limitErr, &limit)
	require.NoError(t, closeErr)
	var notFound *sessions.ErrSessionNotFound
	assert.ErrorAs(t, stepErr, &notFound)
	assert.ErrorAs(t, secondCloseErr, &notFound)
	assert.Equal(t, 0, m.Count())
}

func TestManager_CloseIdle(t *testing.T) {
	// Arrange
	clock := shared.NewSteppingClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), time.Minute)
	m := sessions.NewManager(0, clock)
	stale, err := m.Create(context.Background(), simpleChainRequest())
	require.NoError(t, err)
	fresh, err := m.Create(context.Background(), simpleChainRequest())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := m.Step(fresh.SessionID, 0)
		require.NoError(t, err)
	}

	// Act
	closed := m.CloseIdle(3 * time.Minute)

	// Assert
	assert.Equal(t, []string{stale.SessionID}, closed)
	require.Len(t, m.List(), 1)
	assert.Equal(t, fresh.SessionID, m.List()[0].SessionID)
	assert.Equal(t, 3, m.List()[0].Steps)
}

func TestManager_ParallelSessions(t *testing.T) {
	// Arrange
	m := sessions.NewManager(0, nil)
	var ids []string
	for i := 0; i < 4; i++ {
		state, err := m.Create(context.Background(), simpleChainRequest())
		require.NoError(t, err)
		ids = append(ids, state.SessionID)
	}

	// Act
	var wg sync.WaitGroup
	errs := make(chan error, len(ids)*4)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				if _, err := m.Step(id, 1); err != nil {
					errs <- err
				}
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	// Assert
	for err := range errs {
		t.Errorf("unexpected step error: %v", err)
	}
	for _, info := range m.List() {
		assert.Equal(t, 4, info.Tick)
	}
	m.CloseAll()
	assert.Equal(t, 0, m.Count())
}
