package steps

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

type environmentContext struct {
	def  catalog.Definition
	cfg  simulation.Config
	env  *simulation.Environment
	mask []bool

	last    simulation.StepResult
	results []simulation.StepResult
	err     error
}

func (ec *environmentContext) reset() {
	ec.def = catalog.Definition{}
	ec.cfg = simulation.DefaultConfig()
	ec.env = nil
	ec.mask = nil
	ec.last = simulation.StepResult{}
	ec.results = nil
	ec.err = nil
}

// InitializeEnvironmentScenario registers the per-tick environment steps
func InitializeEnvironmentScenario(ctx *godog.ScenarioContext) {
	ec := &environmentContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ec.reset()
		return ctx, nil
	})

	ctx.Step(`^the built-in "([^"]*)" plant$`, ec.theBuiltinPlant)
	ctx.Step(`^a zero-margin press plant$`, ec.aZeroMarginPressPlant)
	ctx.Step(`^a global buffer capacity of (\d+)$`, ec.aGlobalBufferCapacityOf)
	ctx.Step(`^an episode horizon of (\d+) ticks?$`, ec.anEpisodeHorizonOf)
	ctx.Step(`^the shaping goal "([^"]*)"$`, ec.theShapingGoal)
	ctx.Step(`^the environment is created$`, ec.theEnvironmentIsCreated)
	ctx.Step(`^the environment is reset$`, ec.theEnvironmentIsReset)
	ctx.Step(`^I take action (\d+)$`, ec.iTakeAction)
	ctx.Step(`^I take action (-?\d+) expecting an error$`, ec.iTakeActionExpectingAnError)
	ctx.Step(`^I take (\d+) no-op steps?$`, ec.iTakeNoOpSteps)
	ctx.Step(`^I play (\d+) random legal actions with seed (\d+)$`, ec.iPlayRandomLegalActions)

	ctx.Step(`^the action count should be (\d+)$`, ec.theActionCountShouldBe)
	ctx.Step(`^the action mask should be "([^"]*)"$`, ec.theActionMaskShouldBe)
	ctx.Step(`^the global buffer should hold (\d+) parts?$`, ec.theGlobalBufferShouldHold)
	ctx.Step(`^every global part should be "([^"]*)"$`, ec.everyGlobalPartShouldBe)
	ctx.Step(`^machine "([^"]*)" should have (\d+) "([^"]*)" parts? in its output buffer$`, ec.machineShouldHaveOutputParts)
	ctx.Step(`^machine "([^"]*)" should run (\d+) jobs?$`, ec.machineShouldRunJobs)
	ctx.Step(`^the profit should be ([0-9.-]+)$`, ec.theProfitShouldBe)
	ctx.Step(`^the reward should be ([0-9.-]+)$`, ec.theRewardShouldBe)
	ctx.Step(`^the step should have routed parts$`, ec.theStepShouldHaveRoutedParts)
	ctx.Step(`^the step should not have routed parts$`, ec.theStepShouldNotHaveRoutedParts)
	ctx.Step(`^the step should have synthesized (\d+) parts?$`, ec.theStepShouldHaveSynthesized)
	ctx.Step(`^the episode should (not )?be done$`, ec.theEpisodeShouldBeDone)
	ctx.Step(`^the step should fail because the episode is finished$`, ec.theStepShouldFailBecauseFinished)
	ctx.Step(`^the step should fail because the action is out of range$`, ec.theStepShouldFailBecauseOutOfRange)
	ctx.Step(`^every legal routing action should move parts$`, ec.everyLegalRoutingActionShouldMoveParts)
	ctx.Step(`^the plant should conserve every part$`, ec.thePlantShouldConserveEveryPart)
	ctx.Step(`^no machine should exceed its slots$`, ec.noMachineShouldExceedItsSlots)
	ctx.Step(`^the global buffer should never exceed its capacity$`, ec.theGlobalBufferShouldNeverExceedCapacity)
	ctx.Step(`^the observation should end with a one-hot block for "([^"]*)"$`, ec.theObservationShouldEndWithOneHot)
}

func (ec *environmentContext) theBuiltinPlant(name string) error {
	def, ok := catalog.BuiltinDefinition(name)
	if !ok {
		return fmt.Errorf("unknown built-in plant %s", name)
	}
	ec.def = def
	return nil
}

func (ec *environmentContext) aZeroMarginPressPlant() error {
	ec.def = catalog.Definition{
		Name: "zero-margin",
		PartTypes: []catalog.PartTypeDef{
			{Name: "ore", Cost: 5},
			{Name: "widget", Value: 20, Finished: true},
		},
		Transformations: []catalog.TransformationDef{
			{Name: "press", Inputs: []string{"ore", "ore"}, Output: "widget", Duration: 1},
		},
		MachineTypes: []catalog.MachineTypeDef{{Name: "press", Slots: 1, Transformations: []string{"press"}}},
		Machines:     []catalog.MachineDef{{ID: "p1", Type: "press"}},
	}
	return nil
}

func (ec *environmentContext) aGlobalBufferCapacityOf(capacity int) error {
	ec.cfg.MaxBuffer = capacity
	return nil
}

func (ec *environmentContext) anEpisodeHorizonOf(horizon int) error {
	ec.cfg.Horizon = horizon
	return nil
}

func (ec *environmentContext) theShapingGoal(goal string) error {
	ec.cfg.Goal = goal
	return nil
}

func (ec *environmentContext) theEnvironmentIsCreated() error {
	env, err := newEnvironment(ec.def, ec.cfg)
	if err != nil {
		return err
	}
	ec.env = env
	ec.mask = env.ActionMask()
	return nil
}

func (ec *environmentContext) theEnvironmentIsReset() error {
	if ec.env == nil {
		if err := ec.theEnvironmentIsCreated(); err != nil {
			return err
		}
	}
	_, ec.mask = ec.env.Reset()
	ec.results = nil
	return nil
}

func (ec *environmentContext) step(action int) error {
	res, err := ec.env.Step(action)
	if err != nil {
		return err
	}
	ec.last = res
	ec.mask = res.Mask
	ec.results = append(ec.results, res)
	return nil
}

func (ec *environmentContext) iTakeAction(action int) error {
	return ec.step(action)
}

func (ec *environmentContext) iTakeActionExpectingAnError(action int) error {
	ec.err = ec.step(action)
	if ec.err == nil {
		return fmt.Errorf("expected action %d to fail", action)
	}
	return nil
}

func (ec *environmentContext) iTakeNoOpSteps(n int) error {
	for i := 0; i < n; i++ {
		if err := ec.step(simulation.NoOp); err != nil {
			return err
		}
	}
	return nil
}

func (ec *environmentContext) iPlayRandomLegalActions(n int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n && !ec.env.Done(); i++ {
		legal := legalActions(ec.mask)
		if err := ec.step(legal[rng.Intn(len(legal))]); err != nil {
			return err
		}
		if err := ec.env.Plant().Verify(); err != nil {
			return fmt.Errorf("tick %d: %w", ec.env.Tick(), err)
		}
	}
	return nil
}

func (ec *environmentContext) theActionCountShouldBe(expected int) error {
	return assertExpectedAndActual(assert.Equal, expected, ec.env.ActionCount())
}

func (ec *environmentContext) theActionMaskShouldBe(raw string) error {
	expected, err := parseMask(raw)
	if err != nil {
		return err
	}
	return assertExpectedAndActual(assert.Equal, expected, ec.mask)
}

func (ec *environmentContext) theGlobalBufferShouldHold(expected int) error {
	return assertExpectedAndActual(assert.Equal, expected, ec.env.Plant().GlobalCount())
}

func (ec *environmentContext) everyGlobalPartShouldBe(typeName string) error {
	for _, p := range ec.env.Snapshot().Global {
		if p.Type != typeName {
			return fmt.Errorf("global buffer holds %s, expected only %s", p, typeName)
		}
	}
	return nil
}

func (ec *environmentContext) machineView(id string) (simulation.MachineView, error) {
	for _, m := range ec.env.Snapshot().Machines {
		if m.ID == id {
			return m, nil
		}
	}
	return simulation.MachineView{}, fmt.Errorf("machine %s not found", id)
}

func (ec *environmentContext) machineShouldHaveOutputParts(id string, expected int, typeName string) error {
	m, err := ec.machineView(id)
	if err != nil {
		return err
	}
	count := 0
	for _, p := range m.Output {
		if p.Type == typeName {
			count++
		}
	}
	return assertExpectedAndActual(assert.Equal, expected, count, "%s parts in %s output", typeName, id)
}

func (ec *environmentContext) machineShouldRunJobs(id string, expected int) error {
	m, err := ec.machineView(id)
	if err != nil {
		return err
	}
	return assertExpectedAndActual(assert.Equal, expected, len(m.Jobs), "jobs on %s", id)
}

func (ec *environmentContext) theProfitShouldBe(expected float64) error {
	return assertInDelta(expected, ec.env.Profit(), "profit")
}

func (ec *environmentContext) theRewardShouldBe(expected float64) error {
	return assertInDelta(expected, ec.last.Reward, "reward")
}

func (ec *environmentContext) theStepShouldHaveRoutedParts() error {
	if !ec.last.Diagnostics.Routed {
		return fmt.Errorf("action %d routed nothing", ec.last.Diagnostics.Action.Index)
	}
	return nil
}

func (ec *environmentContext) theStepShouldNotHaveRoutedParts() error {
	if ec.last.Diagnostics.Routed {
		return fmt.Errorf("action %d routed %d parts", ec.last.Diagnostics.Action.Index, len(ec.last.Diagnostics.Moved))
	}
	return nil
}

func (ec *environmentContext) theStepShouldHaveSynthesized(expected int) error {
	return assertExpectedAndActual(assert.Equal, expected, ec.last.Diagnostics.Synthesized)
}

func (ec *environmentContext) theEpisodeShouldBeDone(not string) error {
	if not == "" && !ec.env.Done() {
		return fmt.Errorf("episode still running at tick %d", ec.env.Tick())
	}
	if not != "" && ec.env.Done() {
		return fmt.Errorf("episode finished at tick %d", ec.env.Tick())
	}
	return nil
}

func (ec *environmentContext) theStepShouldFailBecauseFinished() error {
	_, err := ec.env.Step(simulation.NoOp)
	var finished *simulation.ErrEpisodeFinished
	if !errors.As(err, &finished) {
		return fmt.Errorf("expected episode finished error, got %v", err)
	}
	return nil
}

func (ec *environmentContext) theStepShouldFailBecauseOutOfRange() error {
	var outOfRange *simulation.ErrActionOutOfRange
	if !errors.As(ec.err, &outOfRange) {
		return fmt.Errorf("expected action out of range error, got %v", ec.err)
	}
	return nil
}

// everyLegalRoutingActionShouldMoveParts replays the episode so far on a twin
// environment per legal routing action and checks that the action moves parts
func (ec *environmentContext) everyLegalRoutingActionShouldMoveParts() error {
	var history []int
	for _, res := range ec.results {
		history = append(history, res.Diagnostics.Action.Index)
	}

	for _, k := range legalActions(ec.mask) {
		if k == simulation.NoOp {
			continue
		}
		twin, err := newEnvironment(ec.def, ec.cfg)
		if err != nil {
			return err
		}
		twin.Reset()
		for _, a := range history {
			if _, err := twin.Step(a); err != nil {
				return err
			}
		}
		res, err := twin.Step(k)
		if err != nil {
			return err
		}
		if !res.Diagnostics.Routed {
			return fmt.Errorf("legal action %d routed nothing", k)
		}
	}
	return nil
}

func (ec *environmentContext) thePlantShouldConserveEveryPart() error {
	return ec.env.Plant().Verify()
}

func (ec *environmentContext) noMachineShouldExceedItsSlots() error {
	for _, m := range ec.env.Plant().Machines() {
		if m.JobCount() > m.Slots() {
			return fmt.Errorf("machine %s runs %d jobs on %d slots", m.ID(), m.JobCount(), m.Slots())
		}
	}
	return nil
}

func (ec *environmentContext) theGlobalBufferShouldNeverExceedCapacity() error {
	for _, res := range ec.results {
		if res.Diagnostics.GlobalBuffered > ec.cfg.MaxBuffer {
			return fmt.Errorf("tick %d holds %d parts in a buffer of %d", res.Diagnostics.Tick, res.Diagnostics.GlobalBuffered, ec.cfg.MaxBuffer)
		}
	}
	return nil
}

func (ec *environmentContext) theObservationShouldEndWithOneHot(goal string) error {
	pt, ok := ec.env.Plant().Catalog().PartTypeByName(goal)
	if !ok {
		return fmt.Errorf("unknown part type %s", goal)
	}
	obs := ec.env.Observation()
	n := ec.env.Plant().Catalog().PartTypeCount()
	if len(obs) < n {
		return fmt.Errorf("observation of length %d has no goal block", len(obs))
	}
	block := obs[len(obs)-n:]
	for i, v := range block {
		want := float32(0)
		if i == int(pt.ID) {
			want = 1
		}
		if v != want {
			return fmt.Errorf("goal block %v does not select %s", block, goal)
		}
	}
	return nil
}

func newEnvironment(def catalog.Definition, cfg simulation.Config) (*simulation.Environment, error) {
	p, err := plant.FromDefinition(def, catalog.DefaultMaxPropagationPasses)
	if err != nil {
		return nil, err
	}
	return simulation.NewEnvironment(p, cfg)
}

func legalActions(mask []bool) []int {
	var legal []int
	for k, ok := range mask {
		if ok {
			legal = append(legal, k)
		}
	}
	return legal
}
