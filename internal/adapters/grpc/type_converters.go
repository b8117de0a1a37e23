package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

// Conversion helpers for the domain <-> google.protobuf.Struct boundary

func stringField(s *structpb.Struct, key string) (string, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", false
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", false
	}
	return v.GetStringValue(), true
}

func numberField(s *structpb.Struct, key string) (float64, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, false
	}
	return v.GetNumberValue(), true
}

func boolField(s *structpb.Struct, key string) (bool, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return false, false
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return false, false
	}
	return v.GetBoolValue(), true
}

func requireString(s *structpb.Struct, key string) (string, error) {
	v, ok := stringField(s, key)
	if !ok || v == "" {
		return "", fmt.Errorf("missing string field %q", key)
	}
	return v, nil
}

func requireInt(s *structpb.Struct, key string) (int, error) {
	v, ok := numberField(s, key)
	if !ok {
		return 0, fmt.Errorf("missing number field %q", key)
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("field %q must be an integer, got %v", key, v)
	}
	return int(v), nil
}

func float32List(values []float32) *structpb.Value {
	items := make([]*structpb.Value, len(values))
	for i, v := range values {
		items[i] = structpb.NewNumberValue(float64(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

func boolList(values []bool) *structpb.Value {
	items := make([]*structpb.Value, len(values))
	for i, v := range values {
		items[i] = structpb.NewBoolValue(v)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

func readFloat32List(s *structpb.Struct, key string) []float32 {
	list := s.GetFields()[key].GetListValue().GetValues()
	out := make([]float32, len(list))
	for i, v := range list {
		out[i] = float32(v.GetNumberValue())
	}
	return out
}

func readBoolList(s *structpb.Struct, key string) []bool {
	list := s.GetFields()[key].GetListValue().GetValues()
	out := make([]bool, len(list))
	for i, v := range list {
		out[i] = v.GetBoolValue()
	}
	return out
}

// StateToStruct encodes a session state
func StateToStruct(st sessions.State) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id":       structpb.NewStringValue(st.SessionID),
		"plant":            structpb.NewStringValue(st.Plant),
		"goal":             structpb.NewStringValue(st.Goal),
		"tick":             structpb.NewNumberValue(float64(st.Tick)),
		"observation":      float32List(st.Observation),
		"mask":             boolList(st.Mask),
		"action_count":     structpb.NewNumberValue(float64(st.ActionCount)),
		"observation_size": structpb.NewNumberValue(float64(st.ObservationSize)),
	}}
}

// StateFromStruct decodes a session state
func StateFromStruct(s *structpb.Struct) sessions.State {
	sessionID, _ := stringField(s, "session_id")
	plant, _ := stringField(s, "plant")
	goal, _ := stringField(s, "goal")
	tick, _ := numberField(s, "tick")
	actions, _ := numberField(s, "action_count")
	obsSize, _ := numberField(s, "observation_size")
	return sessions.State{
		SessionID:       sessionID,
		Plant:           plant,
		Goal:            goal,
		Tick:            int(tick),
		Observation:     readFloat32List(s, "observation"),
		Mask:            readBoolList(s, "mask"),
		ActionCount:     int(actions),
		ObservationSize: int(obsSize),
	}
}

// StepResultToStruct encodes a step outcome with its diagnostics
func StepResultToStruct(r simulation.StepResult) *structpb.Struct {
	d := r.Diagnostics
	diagnostics := &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":            structpb.NewNumberValue(float64(d.Tick)),
		"action":          structpb.NewNumberValue(float64(d.Action.Index)),
		"routed":          structpb.NewBoolValue(d.Routed),
		"routings":        structpb.NewNumberValue(float64(d.Routings)),
		"moved":           structpb.NewNumberValue(float64(len(d.Moved))),
		"started":         structpb.NewNumberValue(float64(d.Started)),
		"completed":       structpb.NewNumberValue(float64(d.Completed)),
		"sold":            structpb.NewNumberValue(float64(d.Sold)),
		"drained":         structpb.NewNumberValue(float64(d.Drained)),
		"synthesized":     structpb.NewNumberValue(float64(d.Synthesized)),
		"profit":          structpb.NewNumberValue(d.Profit),
		"profit_delta":    structpb.NewNumberValue(d.ProfitDelta),
		"potential":       structpb.NewNumberValue(d.Potential),
		"shaping_reward":  structpb.NewNumberValue(d.ShapingReward),
		"global_buffered": structpb.NewNumberValue(float64(d.GlobalBuffered)),
	}}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"observation": float32List(r.Observation),
		"reward":      structpb.NewNumberValue(r.Reward),
		"done":        structpb.NewBoolValue(r.Done),
		"mask":        boolList(r.Mask),
		"diagnostics": structpb.NewStructValue(diagnostics),
	}}
}

// StepReply is the client view of a remote step
type StepReply struct {
	Observation []float32
	Reward      float64
	Done        bool
	Mask        []bool
	Tick        int
	Routed      bool
	Profit      float64
}

// StepReplyFromStruct decodes a step outcome
func StepReplyFromStruct(s *structpb.Struct) StepReply {
	reward, _ := numberField(s, "reward")
	done, _ := boolField(s, "done")
	diagnostics := s.GetFields()["diagnostics"].GetStructValue()
	tick, _ := numberField(diagnostics, "tick")
	routed, _ := boolField(diagnostics, "routed")
	profit, _ := numberField(diagnostics, "profit")
	return StepReply{
		Observation: readFloat32List(s, "observation"),
		Reward:      reward,
		Done:        done,
		Mask:        readBoolList(s, "mask"),
		Tick:        int(tick),
		Routed:      routed,
		Profit:      profit,
	}
}

// SnapshotToStruct encodes a snapshot through its JSON form
func SnapshotToStruct(snap simulation.Snapshot) (*structpb.Struct, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SnapshotFromStruct decodes a snapshot through its JSON form
func SnapshotFromStruct(s *structpb.Struct) (simulation.Snapshot, error) {
	data, err := protojson.Marshal(s)
	if err != nil {
		return simulation.Snapshot{}, err
	}
	var snap simulation.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return simulation.Snapshot{}, err
	}
	return snap, nil
}
