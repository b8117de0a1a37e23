package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/commands"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/policies"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
	"github.com/andrescamacho/jobshop-sim/test/helpers"
)

func simpleChainCommand(policy string, horizon int) *commands.RunEpisodeCommand {
	cfg := simulation.DefaultConfig()
	cfg.Horizon = horizon
	return &commands.RunEpisodeCommand{
		Definition: catalog.SimpleChainDefinition(),
		Config:     cfg,
		MaxPasses:  catalog.DefaultMaxPropagationPasses,
		Policy:     policy,
		Seed:       3,
	}
}

func newHandler(repo episode.Repository) *commands.RunEpisodeHandler {
	clock := shared.NewSteppingClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)
	return commands.NewRunEpisodeHandler(repo, clock)
}

func TestRunEpisode_GreedyCompletesAndPersists(t *testing.T) {
	// Arrange
	repo := helpers.NewMockEpisodeRepository()
	handler := newHandler(repo)

	// Act
	resp, err := handler.Handle(context.Background(), simpleChainCommand("greedy", 5))

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunEpisodeResponse)
	assert.Equal(t, shared.LifecycleStatusCompleted, result.Status)
	assert.Equal(t, 5, result.Ticks)
	assert.Equal(t, "greedy", result.Policy)
	assert.Empty(t, result.Goal)

	// ten raw parts at margin 15 sit in the buffer after reset; without a goal the
	// rewards telescope to the profit change
	assert.InDelta(t, result.FinalProfit-150, result.TotalReward, 1e-9)

	stored, err := repo.FindByID(context.Background(), result.EpisodeID)
	require.NoError(t, err)
	assert.Len(t, stored.Records(), 5)
	assert.True(t, stored.Records()[0].Routed)
	assert.Equal(t, 2, repo.SaveCount(), "start and finish")
}

func TestRunEpisode_NoOpOnZeroMarginPlantEarnsNothing(t *testing.T) {
	// Arrange
	cmd := simpleChainCommand("noop", 4)
	cmd.Definition = catalog.Definition{
		Name:            "zero-margin",
		PartTypes:       []catalog.PartTypeDef{{Name: "ore", Cost: 5}, {Name: "widget", Value: 20, Finished: true}},
		Transformations: []catalog.TransformationDef{{Name: "press", Inputs: []string{"ore", "ore"}, Output: "widget", Duration: 1}},
		MachineTypes:    []catalog.MachineTypeDef{{Name: "press", Slots: 1, Transformations: []string{"press"}}},
		Machines:        []catalog.MachineDef{{ID: "p1", Type: "press"}},
	}
	handler := newHandler(nil)

	// Act
	resp, err := handler.Handle(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunEpisodeResponse)
	assert.Equal(t, 0.0, result.TotalReward)
	assert.Equal(t, 0, result.Sold)
}

func TestRunEpisode_CheckpointsLongEpisodes(t *testing.T) {
	// Arrange
	repo := helpers.NewMockEpisodeRepository()

	// Act
	_, err := newHandler(repo).Handle(context.Background(), simpleChainCommand("random", 60))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, repo.SaveCount(), "start, tick 25, tick 50, finish")
}

func TestRunEpisode_CancelledContextStopsEpisode(t *testing.T) {
	// Arrange
	repo := helpers.NewMockEpisodeRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	resp, err := newHandler(repo).Handle(ctx, simpleChainCommand("greedy", 10))

	// Assert
	require.ErrorIs(t, err, context.Canceled)
	result := resp.(*commands.RunEpisodeResponse)
	assert.Equal(t, shared.LifecycleStatusStopped, result.Status)
	assert.Equal(t, 0, result.Ticks)

	stored, findErr := repo.FindByID(context.Background(), result.EpisodeID)
	require.NoError(t, findErr)
	assert.Equal(t, shared.LifecycleStatusStopped, stored.Status())
}

func TestRunEpisode_RandomSubgoalIsSeeded(t *testing.T) {
	// Arrange
	cmd := simpleChainCommand("random", 8)
	cmd.RandomSubgoal = true
	cmd.Seed = 11

	// Act
	first, err := newHandler(nil).Handle(context.Background(), cmd)
	require.NoError(t, err)
	second, err := newHandler(nil).Handle(context.Background(), cmd)
	require.NoError(t, err)

	// Assert
	a := first.(*commands.RunEpisodeResponse)
	b := second.(*commands.RunEpisodeResponse)
	assert.Contains(t, []string{"intermediate", "finished"}, a.Goal)
	assert.Equal(t, a.Goal, b.Goal)
	assert.Equal(t, a.TotalReward, b.TotalReward)
	assert.Equal(t, a.FinalProfit, b.FinalProfit)
}

func TestRunEpisode_TraceWritesStatusBlocks(t *testing.T) {
	// Arrange
	var trace bytes.Buffer
	cmd := simpleChainCommand("greedy", 2)
	cmd.Trace = &trace

	// Act
	_, err := newHandler(nil).Handle(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "tick 1 action 1")
	assert.Contains(t, trace.String(), "Global Buffer: ")
	assert.Contains(t, trace.String(), "Machine machine_0: Input [")
}

func TestRunEpisode_TickRatePacesSteps(t *testing.T) {
	// Arrange
	cmd := simpleChainCommand("greedy", 5)
	cmd.TickRate = 100

	// Act
	start := time.Now()
	resp, err := newHandler(nil).Handle(context.Background(), cmd)
	elapsed := time.Since(start)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, resp.(*commands.RunEpisodeResponse).Ticks)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond, "four waits of 10ms after the first tick")
}

func TestRunEpisode_Errors(t *testing.T) {
	t.Run("unknown policy", func(t *testing.T) {
		repo := helpers.NewMockEpisodeRepository()
		_, err := newHandler(repo).Handle(context.Background(), simpleChainCommand("oracle", 3))

		var unknown *policies.ErrUnknownPolicy
		assert.ErrorAs(t, err, &unknown)
		assert.Equal(t, 0, repo.SaveCount())
	})

	t.Run("invalid config", func(t *testing.T) {
		cmd := simpleChainCommand("greedy", 0)
		_, err := newHandler(nil).Handle(context.Background(), cmd)

		var invalid *simulation.ErrInvalidConfig
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := helpers.NewMockEpisodeRepository()
		repo.SaveErr = errors.New("disk full")
		_, err := newHandler(repo).Handle(context.Background(), simpleChainCommand("greedy", 3))

		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("wrong request type", func(t *testing.T) {
		_, err := newHandler(nil).Handle(context.Background(), "run")
		assert.Error(t, err)
	})
}
