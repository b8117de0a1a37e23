package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/plantfile"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

// simulationServiceImpl serves SimulationService from a session manager.
// Environment fields absent from CreateSession fall back to the configured defaults.
type simulationServiceImpl struct {
	manager  *sessions.Manager
	defaults config.SimulationConfig
}

// NewSimulationService creates the service implementation
func NewSimulationService(manager *sessions.Manager, defaults config.SimulationConfig) SimulationServiceServer {
	return &simulationServiceImpl{manager: manager, defaults: defaults}
}

// CreateSession accepts an inline "definition" object (plant file JSON layout),
// a built-in "plant" name, or neither for the configured plant, plus optional
// max_buffer, horizon, gamma, goal, goal_conditioned, repeat_routing and require_support.
func (s *simulationServiceImpl) CreateSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	def, err := s.resolveDefinition(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	cfg, err := s.environmentConfig(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	st, err := s.manager.Create(ctx, sessions.CreateRequest{
		Definition: def,
		Config:     cfg,
		MaxPasses:  s.defaults.PropagationMaxPasses,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return StateToStruct(st), nil
}

func (s *simulationServiceImpl) Reset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(req, "session_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	st, err := s.manager.Reset(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return StateToStruct(st), nil
}

func (s *simulationServiceImpl) Step(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(req, "session_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	action, err := requireInt(req, "action")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.manager.Step(id, action)
	if err != nil {
		return nil, toStatus(err)
	}
	return StepResultToStruct(result), nil
}

// SetGoal with an empty or missing goal disables shaping
func (s *simulationServiceImpl) SetGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(req, "session_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	goal, _ := stringField(req, "goal")

	st, err := s.manager.SetGoal(id, goal)
	if err != nil {
		return nil, toStatus(err)
	}
	return StateToStruct(st), nil
}

func (s *simulationServiceImpl) Snapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(req, "session_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	snap, err := s.manager.Snapshot(id)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := SnapshotToStruct(snap)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *simulationServiceImpl) ListSessions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	infos := s.manager.List()
	items := make([]*structpb.Value, 0, len(infos))
	for _, info := range infos {
		items = append(items, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"session_id": structpb.NewStringValue(info.SessionID),
			"plant":      structpb.NewStringValue(info.Plant),
			"tick":       structpb.NewNumberValue(float64(info.Tick)),
			"steps":      structpb.NewNumberValue(float64(info.Steps)),
			"last_used":  structpb.NewStringValue(info.LastUsed.UTC().Format(time.RFC3339)),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"sessions": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}, nil
}

func (s *simulationServiceImpl) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(req, "session_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.manager.Close(id); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(id),
		"closed":     structpb.NewBoolValue(true),
	}}, nil
}

func (s *simulationServiceImpl) resolveDefinition(req *structpb.Struct) (catalog.Definition, error) {
	if inline := req.GetFields()["definition"].GetStructValue(); inline != nil {
		data, err := protojson.Marshal(inline)
		if err != nil {
			return catalog.Definition{}, err
		}
		def, err := plantfile.Parse(data, plantfile.FormatJSON)
		if err != nil {
			return catalog.Definition{}, fmt.Errorf("definition: %w", err)
		}
		if def.Name == "" {
			def.Name = "inline"
		}
		if err := plantfile.Validate(def); err != nil {
			return catalog.Definition{}, fmt.Errorf("definition: %w", err)
		}
		return def, nil
	}

	if name, ok := stringField(req, "plant"); ok && name != "" {
		return plantfile.Resolve("", name)
	}
	return plantfile.Resolve(s.defaults.PlantFile, s.defaults.Plant)
}

func (s *simulationServiceImpl) environmentConfig(req *structpb.Struct) (simulation.Config, error) {
	cfg := s.defaults.EnvironmentConfig()

	ints := map[string]*int{"max_buffer": &cfg.MaxBuffer, "horizon": &cfg.Horizon}
	for key, target := range ints {
		if _, ok := numberField(req, key); !ok {
			continue
		}
		v, err := requireInt(req, key)
		if err != nil {
			return simulation.Config{}, err
		}
		*target = v
	}
	if v, ok := numberField(req, "gamma"); ok {
		cfg.Gamma = v
	}
	if v, ok := stringField(req, "goal"); ok {
		cfg.Goal = v
	}
	if v, ok := boolField(req, "goal_conditioned"); ok {
		cfg.GoalConditioned = v
	}
	if v, ok := boolField(req, "repeat_routing"); ok {
		cfg.RepeatRouting = v
	}
	if v, ok := boolField(req, "require_support"); ok {
		cfg.RequireSupport = v
	}
	if err := cfg.Validate(); err != nil {
		return simulation.Config{}, err
	}
	return cfg, nil
}

// toStatus maps domain and session errors onto gRPC codes
func toStatus(err error) error {
	var (
		notFound   *sessions.ErrSessionNotFound
		limit      *sessions.ErrSessionLimit
		outOfRange *simulation.ErrActionOutOfRange
		finished   *simulation.ErrEpisodeFinished
		goal       *simulation.ErrUnknownGoal
		invalidCfg *simulation.ErrInvalidConfig
	)
	switch {
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &limit):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.As(err, &outOfRange), errors.As(err, &goal), errors.As(err, &invalidCfg):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &finished):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
