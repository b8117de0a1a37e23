package simulation

import (
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/production"
)

// NoOp is the action index that routes nothing
const NoOp = 0

// Action is a decoded action index
type Action struct {
	Index          int
	NoOp           bool
	Machine        int
	Transformation int
}

// Diagnostics describes what a step did besides the reward
type Diagnostics struct {
	Tick           int
	Action         Action
	Routed         bool
	Routings       int
	Moved          []plant.Part
	Started        int
	Completed      int
	Sold           int
	Drained        int
	Synthesized    int
	Profit         float64
	ProfitDelta    float64
	Potential      float64
	ShapingReward  float64
	GlobalBuffered int
}

// StepResult is the outcome of one Step
type StepResult struct {
	Observation []float32
	Reward      float64
	Done        bool
	Mask        []bool
	Diagnostics Diagnostics
}

// Environment is the per-tick contract layered over a Plant. An external decision
// process calls Reset, then Step with one legal action per tick until Done.
//
// The environment is single-writer and synchronous; it must not be shared between
// goroutines without external locking.
type Environment struct {
	plant   *plant.Plant
	catalog *catalog.Catalog
	graph   *production.Graph
	cfg     Config

	transformations []*catalog.Transformation
	goal            catalog.PartTypeID
	hasGoal         bool
	done            bool
}

// NewEnvironment binds an environment to a plant. The plant is used as is; call
// Reset to start an episode from the refilled state.
func NewEnvironment(p *plant.Plant, cfg Config) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Environment{
		plant:           p,
		catalog:         p.Catalog(),
		graph:           production.NewGraph(p.Catalog(), p.Transformations()),
		cfg:             cfg,
		transformations: p.Transformations(),
	}
	if cfg.Goal != "" {
		if err := e.SetGoal(cfg.Goal); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Getters

func (e *Environment) Plant() *plant.Plant      { return e.plant }
func (e *Environment) Graph() *production.Graph { return e.graph }
func (e *Environment) Config() Config           { return e.cfg }
func (e *Environment) Tick() int                { return e.plant.Tick() }
func (e *Environment) Done() bool               { return e.done }
func (e *Environment) ActionCount() int         { return 1 + len(e.plant.Machines())*len(e.transformations) }
func (e *Environment) TransformationCount() int { return len(e.transformations) }

// Transformations returns the distinct transformations indexed by the action space
func (e *Environment) Transformations() []*catalog.Transformation {
	return e.transformations
}

// Goal returns the current goal name, if any
func (e *Environment) Goal() (string, bool) {
	if !e.hasGoal {
		return "", false
	}
	return e.catalog.PartType(e.goal).Name, true
}

// SetGoal re-parameterises the shaping goal without rebuilding plant or catalog
func (e *Environment) SetGoal(name string) error {
	pt, ok := e.catalog.PartTypeByName(name)
	if !ok {
		return &ErrUnknownGoal{Goal: name}
	}
	e.goal = pt.ID
	e.hasGoal = true
	e.cfg.Goal = name
	return nil
}

// ClearGoal disables potential shaping
func (e *Environment) ClearGoal() {
	e.hasGoal = false
	e.cfg.Goal = ""
}

// Subgoals lists the part types a goal selector may choose: every type that is not
// elementary, in declaration order
func (e *Environment) Subgoals() []string {
	var names []string
	for _, pt := range e.catalog.PartTypes() {
		if !e.plant.IsElementary(pt.ID) {
			names = append(names, pt.Name)
		}
	}
	return names
}

// Reset restores the plant, refills the global buffer to capacity and returns the
// initial observation and action mask
func (e *Environment) Reset() ([]float32, []bool) {
	e.plant.Reset()
	e.plant.RefillGlobalBuffer(e.cfg.MaxBuffer)
	e.done = false
	return e.Observation(), e.ActionMask()
}

// DecodeAction maps an action index to no-op or a (machine, transformation) pair
func (e *Environment) DecodeAction(action int) (Action, error) {
	if action < 0 || action >= e.ActionCount() {
		return Action{}, &ErrActionOutOfRange{Action: action, Count: e.ActionCount()}
	}
	if action == NoOp {
		return Action{Index: action, NoOp: true}, nil
	}
	decision := action - 1
	n := len(e.transformations)
	return Action{
		Index:          action,
		Machine:        decision / n,
		Transformation: decision % n,
	}, nil
}

// EncodeAction is the inverse of DecodeAction for routing actions
func (e *Environment) EncodeAction(machine, transformation int) int {
	return 1 + machine*len(e.transformations) + transformation
}

// ActionMask returns one flag per action. Action 0 is always legal; a routing action
// is legal when the global buffer covers the transformation's requirements.
func (e *Environment) ActionMask() []bool {
	mask := make([]bool, e.ActionCount())
	mask[NoOp] = true

	counts := plant.CountTypes(e.plant.GlobalBuffer())
	coverable := make([]bool, len(e.transformations))
	for i, t := range e.transformations {
		coverable[i] = plant.CoversCounts(counts, t)
	}

	n := len(e.transformations)
	for mi, m := range e.plant.Machines() {
		for ti, t := range e.transformations {
			legal := coverable[ti]
			if legal && e.cfg.RequireSupport {
				legal = m.Type().Supports(t)
			}
			mask[1+mi*n+ti] = legal
		}
	}
	return mask
}

// Step applies one action and advances the plant by one tick
func (e *Environment) Step(action int) (StepResult, error) {
	decoded, err := e.DecodeAction(action)
	if err != nil {
		return StepResult{}, err
	}
	if e.done {
		return StepResult{}, &ErrEpisodeFinished{Tick: e.plant.Tick(), Horizon: e.cfg.Horizon}
	}

	prevProfit := e.plant.Profit()
	prevPhi := e.Potential()
	diag := Diagnostics{Action: decoded}

	if !decoded.NoOp {
		e.route(decoded, &diag)
	}

	tick := e.plant.Advance()
	refill := e.plant.RefillGlobalBuffer(e.cfg.MaxBuffer)

	profit := e.plant.Profit()
	phi := e.Potential()
	profitDelta := profit - prevProfit
	shaping := 0.0
	if e.hasGoal {
		shaping = e.cfg.Gamma*phi - prevPhi
	}

	e.done = e.plant.Tick() >= e.cfg.Horizon

	diag.Tick = tick.Tick
	diag.Started = len(tick.Started)
	diag.Completed = len(tick.Completed)
	diag.Sold = len(tick.Sold)
	diag.Drained += refill.Drained
	diag.Synthesized += len(refill.Synthesized)
	diag.Profit = profit
	diag.ProfitDelta = profitDelta
	diag.Potential = phi
	diag.ShapingReward = shaping
	diag.GlobalBuffered = e.plant.GlobalCount()

	return StepResult{
		Observation: e.Observation(),
		Reward:      profitDelta + shaping,
		Done:        e.done,
		Mask:        e.ActionMask(),
		Diagnostics: diag,
	}, nil
}

// route moves parts for a legal routing action. With RepeatRouting the same
// routing repeats while it stays legal, refilling the buffer in between.
func (e *Environment) route(a Action, diag *Diagnostics) {
	limit := 1
	if e.cfg.RepeatRouting {
		limit = e.cfg.MaxBuffer
	}

	for diag.Routings < limit && e.ActionMask()[a.Index] {
		moved, ok, err := e.plant.Route(a.Machine, e.transformations[a.Transformation])
		if err != nil || !ok {
			panic(&plant.ErrInconsistentBuffer{Detail: "legal routing action failed to move parts"})
		}
		diag.Routed = true
		diag.Routings++
		diag.Moved = append(diag.Moved, moved...)

		if e.cfg.RepeatRouting {
			refill := e.plant.RefillGlobalBuffer(e.cfg.MaxBuffer)
			diag.Drained += refill.Drained
			diag.Synthesized += len(refill.Synthesized)
		}
	}
}

// Profit is the instantaneous sum of value minus cost over every held part
func (e *Environment) Profit() float64 {
	return e.plant.Profit()
}

// Potential is the goal-distance potential of the global buffer, 0 without a goal
func (e *Environment) Potential() float64 {
	if !e.hasGoal {
		return 0
	}
	total := 0.0
	for _, p := range e.plant.GlobalBuffer() {
		total += e.graph.Weight(p.Type, e.goal)
	}
	return total
}
