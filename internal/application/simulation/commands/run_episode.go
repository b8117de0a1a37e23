package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/metrics"
	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/policies"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

// checkpointEvery is how many ticks pass between intermediate episode saves
const checkpointEvery = 25

// RunEpisodeCommand drives one reset-to-horizon episode with an in-process policy
type RunEpisodeCommand struct {
	Definition catalog.Definition
	Config     simulation.Config
	MaxPasses  int

	Policy string
	Seed   int64

	// RandomSubgoal replaces Config.Goal with a subgoal drawn from the seed
	RandomSubgoal bool

	// TickRate paces live runs in ticks per second; 0 runs unpaced
	TickRate float64

	// Trace receives the status block after every tick when set
	Trace io.Writer
}

// RunEpisodeResponse summarises a finished, stopped or failed episode
type RunEpisodeResponse struct {
	EpisodeID   string
	Plant       string
	Policy      string
	Goal        string
	Status      shared.LifecycleStatus
	Ticks       int
	TotalReward float64
	FinalProfit float64
	Sold        int
}

// RunEpisodeHandler builds the environment, runs the policy until the horizon
// and records the episode. A nil repository skips persistence.
type RunEpisodeHandler struct {
	repo  episode.Repository
	clock shared.Clock
}

// NewRunEpisodeHandler creates a new run-episode handler
// If clock is nil, the system clock is used
func NewRunEpisodeHandler(repo episode.Repository, clock shared.Clock) *RunEpisodeHandler {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	return &RunEpisodeHandler{repo: repo, clock: clock}
}

// Handle executes the run-episode command
func (h *RunEpisodeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunEpisodeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	logger := logging.LoggerFromContext(ctx)

	p, err := plant.FromDefinition(cmd.Definition, cmd.MaxPasses)
	if err != nil {
		return nil, fmt.Errorf("failed to build plant %s: %w", cmd.Definition.Name, err)
	}
	env, err := simulation.NewEnvironment(p, cmd.Config)
	if err != nil {
		return nil, err
	}
	policy, err := policies.New(cmd.Policy, cmd.Seed)
	if err != nil {
		return nil, err
	}

	if cmd.RandomSubgoal {
		goal, err := drawSubgoal(env, cmd.Seed)
		if err != nil {
			return nil, err
		}
		if err := env.SetGoal(goal); err != nil {
			return nil, err
		}
	}
	goal, _ := env.Goal()

	ep := episode.NewEpisode(episode.Settings{
		Plant:     cmd.Definition.Name,
		Policy:    policy.Name(),
		Seed:      cmd.Seed,
		Goal:      goal,
		Horizon:   cmd.Config.Horizon,
		MaxBuffer: cmd.Config.MaxBuffer,
		Gamma:     cmd.Config.Gamma,
	}, h.clock)

	logger.Log(logging.LevelInfo, fmt.Sprintf("[Episode] Starting %s on %s with policy %s", ep.ID(), cmd.Definition.Name, policy.Name()), map[string]interface{}{
		"episode_id":   ep.ID(),
		"goal":         goal,
		"horizon":      cmd.Config.Horizon,
		"action_count": env.ActionCount(),
	})

	if err := ep.Start(); err != nil {
		return nil, err
	}
	if err := h.save(ctx, ep); err != nil {
		return nil, err
	}

	runErr := h.run(ctx, cmd, env, policy, ep)
	switch {
	case runErr == nil:
		_ = ep.Complete()
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		_ = ep.Stop()
		logger.Log(logging.LevelWarn, fmt.Sprintf("[Episode] %s stopped at tick %d", ep.ID(), ep.Ticks()), nil)
	default:
		_ = ep.Fail(runErr)
		logger.Log(logging.LevelError, fmt.Sprintf("[Episode] %s failed: %v", ep.ID(), runErr), nil)
	}

	// a cancelled ctx must not prevent recording the final state
	if err := h.save(context.WithoutCancel(ctx), ep); err != nil && runErr == nil {
		runErr = err
	}

	metrics.RecordEpisodeCompletion(metrics.EpisodeInfo{
		Plant:       cmd.Definition.Name,
		Policy:      policy.Name(),
		Status:      string(ep.Status()),
		Ticks:       ep.Ticks(),
		TotalReward: ep.TotalReward(),
		FinalProfit: ep.FinalProfit(),
		Duration:    ep.RuntimeDuration().Seconds(),
	})

	logger.Log(logging.LevelInfo, fmt.Sprintf("[Episode] %s %s after %d ticks, reward %.3f", ep.ID(), ep.Status(), ep.Ticks(), ep.TotalReward()), map[string]interface{}{
		"episode_id":   ep.ID(),
		"final_profit": ep.FinalProfit(),
		"sold":         ep.Sold(),
	})

	return &RunEpisodeResponse{
		EpisodeID:   ep.ID(),
		Plant:       cmd.Definition.Name,
		Policy:      policy.Name(),
		Goal:        goal,
		Status:      ep.Status(),
		Ticks:       ep.Ticks(),
		TotalReward: ep.TotalReward(),
		FinalProfit: ep.FinalProfit(),
		Sold:        ep.Sold(),
	}, runErr
}

func (h *RunEpisodeHandler) run(
	ctx context.Context,
	cmd *RunEpisodeCommand,
	env *simulation.Environment,
	policy policies.Policy,
	ep *episode.Episode,
) error {
	var limiter *rate.Limiter
	if cmd.TickRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cmd.TickRate), 1)
	}

	observation, mask := env.Reset()
	for !env.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		action := policy.Choose(observation, mask)
		result, err := env.Step(action)
		if err != nil {
			return err
		}

		d := result.Diagnostics
		err = ep.Record(episode.TickRecord{
			Tick:           d.Tick,
			Action:         action,
			Routed:         d.Routed,
			Reward:         result.Reward,
			Profit:         d.Profit,
			Potential:      d.Potential,
			Started:        d.Started,
			Completed:      d.Completed,
			Sold:           d.Sold,
			GlobalBuffered: d.GlobalBuffered,
		})
		if err != nil {
			return err
		}

		metrics.RecordStep(metrics.StepInfo{
			Plant:          cmd.Definition.Name,
			Routed:         d.Routed,
			Reward:         result.Reward,
			Completed:      d.Completed,
			Sold:           d.Sold,
			GlobalBuffered: d.GlobalBuffered,
		})

		if cmd.Trace != nil {
			fmt.Fprintf(cmd.Trace, "tick %d action %d reward %.3f\n%s\n", d.Tick, action, result.Reward, env.Snapshot())
		}

		if d.Tick%checkpointEvery == 0 && !result.Done {
			if err := h.save(ctx, ep); err != nil {
				return err
			}
		}

		observation, mask = result.Observation, result.Mask
	}
	return nil
}

func (h *RunEpisodeHandler) save(ctx context.Context, ep *episode.Episode) error {
	if h.repo == nil {
		return nil
	}
	if err := h.repo.Save(ctx, ep); err != nil {
		return fmt.Errorf("failed to save episode %s: %w", ep.ID(), err)
	}
	return nil
}

func drawSubgoal(env *simulation.Environment, seed int64) (string, error) {
	subgoals := env.Subgoals()
	if len(subgoals) == 0 {
		return "", fmt.Errorf("plant has no subgoals to draw from")
	}
	rng := rand.New(rand.NewSource(seed))
	return subgoals[rng.Intn(len(subgoals))], nil
}
