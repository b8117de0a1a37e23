package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/persistence"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/commands"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/queries"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
	"github.com/andrescamacho/jobshop-sim/test/helpers"
)

type episodeContext struct {
	repo     episode.Repository
	handler  *commands.RunEpisodeHandler
	response *commands.RunEpisodeResponse
	stored   *episode.Episode
	listed   []*episode.Episode
	err      error
}

func (ec *episodeContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	ec.repo = persistence.NewGormEpisodeRepository(helpers.SharedTestDB)
	clock := shared.NewSteppingClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)
	ec.handler = commands.NewRunEpisodeHandler(ec.repo, clock)
	ec.response = nil
	ec.stored = nil
	ec.listed = nil
	ec.err = nil
	return nil
}

// InitializeEpisodeScenario registers the episode run and persistence steps
func InitializeEpisodeScenario(ctx *godog.ScenarioContext) {
	ec := &episodeContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, ec.reset()
	})

	ctx.Step(`^I run a "([^"]*)" episode on the "([^"]*)" plant for (\d+) ticks with seed (\d+)$`, ec.iRunAnEpisode)
	ctx.Step(`^the episode should finish as (PENDING|RUNNING|COMPLETED|FAILED|STOPPED) after (\d+) ticks$`, ec.theEpisodeShouldFinishAs)
	ctx.Step(`^the total reward should equal the final profit minus ([0-9.]+)$`, ec.theTotalRewardShouldEqualProfitMinus)
	ctx.Step(`^the stored episode should have (\d+) tick records$`, ec.theStoredEpisodeShouldHaveTickRecords)
	ctx.Step(`^the first stored tick should have routed parts$`, ec.theFirstStoredTickShouldHaveRouted)
	ctx.Step(`^I list episodes for policy "([^"]*)"$`, ec.iListEpisodesForPolicy)
	ctx.Step(`^(\d+) episodes? should be listed$`, ec.episodesShouldBeListed)
}

func (ec *episodeContext) iRunAnEpisode(policy, plantName string, horizon int, seed int64) error {
	def, ok := catalog.BuiltinDefinition(plantName)
	if !ok {
		return fmt.Errorf("unknown built-in plant %s", plantName)
	}
	cfg := simulation.DefaultConfig()
	cfg.Horizon = horizon

	resp, err := ec.handler.Handle(context.Background(), &commands.RunEpisodeCommand{
		Definition: def,
		Config:     cfg,
		MaxPasses:  catalog.DefaultMaxPropagationPasses,
		Policy:     policy,
		Seed:       seed,
	})
	if err != nil {
		return err
	}
	ec.response = resp.(*commands.RunEpisodeResponse)
	return nil
}

func (ec *episodeContext) theEpisodeShouldFinishAs(status string, ticks int) error {
	if err := assertExpectedAndActual(assert.Equal, shared.LifecycleStatus(status), ec.response.Status); err != nil {
		return err
	}
	return assertExpectedAndActual(assert.Equal, ticks, ec.response.Ticks)
}

func (ec *episodeContext) theTotalRewardShouldEqualProfitMinus(initial float64) error {
	return assertInDelta(ec.response.FinalProfit-initial, ec.response.TotalReward, "total reward")
}

func (ec *episodeContext) loadStored() error {
	if ec.stored != nil {
		return nil
	}
	stored, err := ec.repo.FindByID(context.Background(), ec.response.EpisodeID)
	if err != nil {
		return err
	}
	ec.stored = stored
	return nil
}

func (ec *episodeContext) theStoredEpisodeShouldHaveTickRecords(expected int) error {
	if err := ec.loadStored(); err != nil {
		return err
	}
	return assertExpectedAndActual(assert.Equal, expected, len(ec.stored.Records()))
}

func (ec *episodeContext) theFirstStoredTickShouldHaveRouted() error {
	if err := ec.loadStored(); err != nil {
		return err
	}
	records := ec.stored.Records()
	if len(records) == 0 || !records[0].Routed {
		return fmt.Errorf("first stored tick did not route parts")
	}
	return nil
}

func (ec *episodeContext) iListEpisodesForPolicy(policy string) error {
	handler := queries.NewListEpisodesHandler(ec.repo)
	resp, err := handler.Handle(context.Background(), &queries.ListEpisodesQuery{Policy: policy})
	if err != nil {
		return err
	}
	ec.listed = resp.(*queries.ListEpisodesResponse).Episodes
	return nil
}

func (ec *episodeContext) episodesShouldBeListed(expected int) error {
	return assertExpectedAndActual(assert.Equal, expected, len(ec.listed))
}
