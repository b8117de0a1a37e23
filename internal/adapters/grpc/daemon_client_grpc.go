package grpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

// Breaker defaults for daemon clients
const (
	DefaultBreakerFailures = 3
	DefaultBreakerCooldown = 10 * time.Second
)

// SimulationClient drives remote simulation sessions
type SimulationClient struct {
	conn    *grpc.ClientConn
	breaker *CircuitBreaker
}

// NewSimulationClient connects to a daemon at "unix:<path>" or host:port
func NewSimulationClient(address string, opts ...grpc.DialOption) (*SimulationClient, error) {
	target := address
	if !strings.HasPrefix(address, "unix:") {
		target = "passthrough:///" + address
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon at %s: %w", address, err)
	}
	return &SimulationClient{
		conn:    conn,
		breaker: NewCircuitBreaker(DefaultBreakerFailures, DefaultBreakerCooldown, nil),
	}, nil
}

// Breaker returns the circuit breaker guarding daemon calls
func (c *SimulationClient) Breaker() *CircuitBreaker { return c.breaker }

// Close closes the gRPC connection
func (c *SimulationClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *SimulationClient) call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	resp := &structpb.Struct{}
	err := c.breaker.Call(func() error {
		return c.conn.Invoke(ctx, fullMethod(method), req, resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", method, err)
	}
	return resp, nil
}

// SessionOptions selects the plant and overrides environment settings for a new
// session. Zero values keep the daemon defaults.
type SessionOptions struct {
	Plant           string
	Definition      map[string]interface{}
	MaxBuffer       int
	Horizon         int
	Goal            string
	GoalConditioned *bool
}

func (o SessionOptions) toStruct() (*structpb.Struct, error) {
	fields := map[string]interface{}{}
	if o.Plant != "" {
		fields["plant"] = o.Plant
	}
	if o.Definition != nil {
		fields["definition"] = o.Definition
	}
	if o.MaxBuffer > 0 {
		fields["max_buffer"] = o.MaxBuffer
	}
	if o.Horizon > 0 {
		fields["horizon"] = o.Horizon
	}
	if o.Goal != "" {
		fields["goal"] = o.Goal
	}
	if o.GoalConditioned != nil {
		fields["goal_conditioned"] = *o.GoalConditioned
	}
	return structpb.NewStruct(fields)
}

// CreateSession opens a session and returns its initial state
func (c *SimulationClient) CreateSession(ctx context.Context, opts SessionOptions) (sessions.State, error) {
	req, err := opts.toStruct()
	if err != nil {
		return sessions.State{}, fmt.Errorf("invalid session options: %w", err)
	}
	resp, err := c.call(ctx, MethodCreateSession, req)
	if err != nil {
		return sessions.State{}, err
	}
	return StateFromStruct(resp), nil
}

// Reset starts a new episode in a session
func (c *SimulationClient) Reset(ctx context.Context, sessionID string) (sessions.State, error) {
	resp, err := c.call(ctx, MethodReset, sessionRequest(sessionID, nil))
	if err != nil {
		return sessions.State{}, err
	}
	return StateFromStruct(resp), nil
}

// Step applies one action
func (c *SimulationClient) Step(ctx context.Context, sessionID string, action int) (StepReply, error) {
	resp, err := c.call(ctx, MethodStep, sessionRequest(sessionID, map[string]*structpb.Value{
		"action": structpb.NewNumberValue(float64(action)),
	}))
	if err != nil {
		return StepReply{}, err
	}
	return StepReplyFromStruct(resp), nil
}

// SetGoal changes the shaping goal; empty clears it
func (c *SimulationClient) SetGoal(ctx context.Context, sessionID, goal string) (sessions.State, error) {
	resp, err := c.call(ctx, MethodSetGoal, sessionRequest(sessionID, map[string]*structpb.Value{
		"goal": structpb.NewStringValue(goal),
	}))
	if err != nil {
		return sessions.State{}, err
	}
	return StateFromStruct(resp), nil
}

// Snapshot fetches the session's plant state
func (c *SimulationClient) Snapshot(ctx context.Context, sessionID string) (simulation.Snapshot, error) {
	resp, err := c.call(ctx, MethodSnapshot, sessionRequest(sessionID, nil))
	if err != nil {
		return simulation.Snapshot{}, err
	}
	return SnapshotFromStruct(resp)
}

// ListSessions returns the raw session listing
func (c *SimulationClient) ListSessions(ctx context.Context) ([]map[string]interface{}, error) {
	resp, err := c.call(ctx, MethodListSessions, &structpb.Struct{})
	if err != nil {
		return nil, err
	}
	list := resp.GetFields()["sessions"].GetListValue().GetValues()
	out := make([]map[string]interface{}, 0, len(list))
	for _, v := range list {
		out = append(out, v.GetStructValue().AsMap())
	}
	return out, nil
}

// CloseSession closes a session
func (c *SimulationClient) CloseSession(ctx context.Context, sessionID string) error {
	_, err := c.call(ctx, MethodCloseSession, sessionRequest(sessionID, nil))
	return err
}

func sessionRequest(sessionID string, extra map[string]*structpb.Value) *structpb.Struct {
	fields := map[string]*structpb.Value{"session_id": structpb.NewStringValue(sessionID)}
	for k, v := range extra {
		fields[k] = v
	}
	return &structpb.Struct{Fields: fields}
}
