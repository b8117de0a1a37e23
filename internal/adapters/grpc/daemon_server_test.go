package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcadapter "github.com/andrescamacho/jobshop-sim/internal/adapters/grpc"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

func startDaemon(t *testing.T, maxSessions int) (*grpcadapter.SimulationClient, *sessions.Manager) {
	t.Helper()

	cfg := config.Default()
	cfg.Simulation.Plant = "simple-chain"
	manager := sessions.NewManager(maxSessions, nil)

	listener := bufconn.Listen(1 << 20)
	server := grpcadapter.NewDaemonServerWithListener(manager, cfg.Simulation, listener, nil, time.Second)

	stopped := make(chan error, 1)
	go func() { stopped <- server.Start() }()

	client, err := grpcadapter.NewSimulationClient("bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		server.Shutdown()
		select {
		case err := <-stopped:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})
	return client, manager
}

func TestDaemon_CreateStepAndClose(t *testing.T) {
	// Arrange
	client, manager := startDaemon(t, 0)
	ctx := context.Background()

	// Act
	state, err := client.CreateSession(ctx, grpcadapter.SessionOptions{})
	require.NoError(t, err)
	reply, stepErr := client.Step(ctx, state.SessionID, 1)

	// Assert
	assert.Equal(t, "simple-chain", state.Plant)
	assert.Equal(t, 5, state.ActionCount)
	assert.Len(t, state.Observation, state.ObservationSize)
	assert.Equal(t, []bool{true, true, false, true, false}, state.Mask)
	assert.Equal(t, 1, manager.Count())

	require.NoError(t, stepErr)
	assert.Equal(t, 1, reply.Tick)
	assert.True(t, reply.Routed)
	assert.False(t, reply.Done)
	assert.Len(t, reply.Observation, state.ObservationSize)

	require.NoError(t, client.CloseSession(ctx, state.SessionID))
	assert.Equal(t, 0, manager.Count())
}

func TestDaemon_StepErrorsMapToStatusCodes(t *testing.T) {
	// Arrange
	client, _ := startDaemon(t, 0)
	ctx := context.Background()
	state, err := client.CreateSession(ctx, grpcadapter.SessionOptions{Horizon: 1})
	require.NoError(t, err)

	// Act
	_, outOfRange := client.Step(ctx, state.SessionID, 99)
	_, unknownSession := client.Step(ctx, "ghost-00000000", 0)
	_, first := client.Step(ctx, state.SessionID, 0)
	_, finished := client.Step(ctx, state.SessionID, 0)
	_, badGoal := client.SetGoal(ctx, state.SessionID, "unobtainium")

	// Assert
	assert.Equal(t, codes.InvalidArgument, status.Code(outOfRange))
	assert.Equal(t, codes.NotFound, status.Code(unknownSession))
	require.NoError(t, first)
	assert.Equal(t, codes.FailedPrecondition, status.Code(finished))
	assert.Equal(t, codes.InvalidArgument, status.Code(badGoal))
}

func TestDaemon_ResetAfterHorizonAllowsStepping(t *testing.T) {
	// Arrange
	client, _ := startDaemon(t, 0)
	ctx := context.Background()
	state, err := client.CreateSession(ctx, grpcadapter.SessionOptions{Horizon: 1})
	require.NoError(t, err)
	reply, err := client.Step(ctx, state.SessionID, 0)
	require.NoError(t, err)
	require.True(t, reply.Done)

	// Act
	reset, err := client.Reset(ctx, state.SessionID)
	require.NoError(t, err)
	_, stepErr := client.Step(ctx, state.SessionID, 0)

	// Assert
	assert.Equal(t, 0, reset.Tick)
	assert.NoError(t, stepErr)
}

func TestDaemon_SetGoalAndSnapshot(t *testing.T) {
	// Arrange
	client, _ := startDaemon(t, 0)
	ctx := context.Background()
	state, err := client.CreateSession(ctx, grpcadapter.SessionOptions{Plant: "simple-chain"})
	require.NoError(t, err)

	// Act
	withGoal, goalErr := client.SetGoal(ctx, state.SessionID, "finished")
	_, _ = client.Step(ctx, state.SessionID, 1)
	snap, snapErr := client.Snapshot(ctx, state.SessionID)
	cleared, clearErr := client.SetGoal(ctx, state.SessionID, "")

	// Assert
	require.NoError(t, goalErr)
	assert.Equal(t, "finished", withGoal.Goal)
	require.NoError(t, snapErr)
	assert.Equal(t, 1, snap.Tick)
	assert.Equal(t, "finished", snap.Goal)
	require.Len(t, snap.Machines, 2)
	assert.Equal(t, "machine_0", snap.Machines[0].ID)
	assert.Len(t, snap.Global, 10)
	require.NoError(t, clearErr)
	assert.Empty(t, cleared.Goal)
}

func TestDaemon_InlineDefinition(t *testing.T) {
	// Arrange
	client, _ := startDaemon(t, 0)
	definition := map[string]interface{}{
		"name": "bolts",
		"part_types": []interface{}{
			map[string]interface{}{"name": "bolt", "cost": 1},
			map[string]interface{}{"name": "frame", "value": 40, "finished": true},
		},
		"transformations": []interface{}{
			map[string]interface{}{"name": "weld", "inputs": map[string]interface{}{"bolt": 2}, "output": "frame", "duration": 1},
		},
		"machine_types": []interface{}{
			map[string]interface{}{"name": "welder", "slots": 1, "transformations": []interface{}{"weld"}},
		},
		"machines": []interface{}{
			map[string]interface{}{"id": "w1", "type": "welder"},
		},
	}

	// Act
	state, err := client.CreateSession(context.Background(), grpcadapter.SessionOptions{Definition: definition, MaxBuffer: 4})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "bolts", state.Plant)
	assert.Equal(t, 2, state.ActionCount)
	assert.Equal(t, []bool{true, true}, state.Mask)
}

func TestDaemon_SessionLimitAndListing(t *testing.T) {
	// Arrange
	client, _ := startDaemon(t, 1)
	ctx := context.Background()
	first, err := client.CreateSession(ctx, grpcadapter.SessionOptions{})
	require.NoError(t, err)

	// Act
	_, limitErr := client.CreateSession(ctx, grpcadapter.SessionOptions{})
	listed, listErr := client.ListSessions(ctx)

	// Assert
	assert.Equal(t, codes.ResourceExhausted, status.Code(limitErr))
	require.NoError(t, listErr)
	require.Len(t, listed, 1)
	assert.Equal(t, first.SessionID, listed[0]["session_id"])
}

func TestDaemon_InvalidCreateRequest(t *testing.T) {
	// Arrange
	client, _ := startDaemon(t, 0)

	// Act
	_, unknownPlant := client.CreateSession(context.Background(), grpcadapter.SessionOptions{Plant: "moon-base"})
	_, unknownGoal := client.CreateSession(context.Background(), grpcadapter.SessionOptions{Goal: "unobtainium"})

	// Assert
	assert.Equal(t, codes.InvalidArgument, status.Code(unknownPlant))
	assert.Equal(t, codes.InvalidArgument, status.Code(unknownGoal))
}

func TestDaemon_CreateRejectsOversizedRequests(t *testing.T) {
	// Arrange
	client, manager := startDaemon(t, 0)
	ctx := context.Background()
	oversizedInput := map[string]interface{}{
		"name":       "bolts",
		"part_types": []interface{}{map[string]interface{}{"name": "bolt", "cost": 1}, map[string]interface{}{"name": "frame", "value": 40, "finished": true}},
		"transformations": []interface{}{
			map[string]interface{}{"name": "weld", "inputs": map[string]interface{}{"bolt": 1e9}, "output": "frame", "duration": 1},
		},
		"machine_types": []interface{}{map[string]interface{}{"name": "welder", "slots": 1, "transformations": []interface{}{"weld"}}},
		"machines":      []interface{}{map[string]interface{}{"id": "w1", "type": "welder"}},
	}

	// Act
	_, bigBuffer := client.CreateSession(ctx, grpcadapter.SessionOptions{MaxBuffer: 3_000_000})
	_, longHorizon := client.CreateSession(ctx, grpcadapter.SessionOptions{Horizon: 1 << 40})
	_, bigInput := client.CreateSession(ctx, grpcadapter.SessionOptions{Definition: oversizedInput})

	// Assert
	assert.Equal(t, codes.InvalidArgument, status.Code(bigBuffer))
	assert.Contains(t, status.Convert(bigBuffer).Message(), "MaxBuffer")
	assert.Equal(t, codes.InvalidArgument, status.Code(longHorizon))
	assert.Contains(t, status.Convert(longHorizon).Message(), "Horizon")
	assert.Equal(t, codes.InvalidArgument, status.Code(bigInput))
	assert.Contains(t, status.Convert(bigInput).Message(), "at most 1000")
	assert.Equal(t, 0, manager.Count())
}
