package episode

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
)

// Settings are the parameters an episode was run with
type Settings struct {
	Plant     string
	Policy    string
	Seed      int64
	Goal      string
	Horizon   int
	MaxBuffer int
	Gamma     float64
}

// TickRecord is the persisted outcome of one environment step
type TickRecord struct {
	Tick           int
	Action         int
	Routed         bool
	Reward         float64
	Profit         float64
	Potential      float64
	Started        int
	Completed      int
	Sold           int
	GlobalBuffered int
}

// Episode is one reset-to-horizon run of the environment. It accumulates tick
// records and totals and follows the shared lifecycle
// PENDING -> RUNNING -> COMPLETED | FAILED | STOPPED.
type Episode struct {
	id       string
	settings Settings

	lifecycle *shared.LifecycleStateMachine

	ticks       int
	totalReward float64
	finalProfit float64
	sold        int
	records     []TickRecord
}

// NewEpisode creates a pending episode with a fresh id
// If clock is nil, the system clock is used
func NewEpisode(settings Settings, clock shared.Clock) *Episode {
	return &Episode{
		id:        uuid.New().String(),
		settings:  settings,
		lifecycle: shared.NewLifecycleStateMachine(clock),
	}
}

// Reconstruct rebuilds an episode from persisted state
func Reconstruct(
	id string,
	settings Settings,
	status shared.LifecycleStatus,
	createdAt time.Time,
	startedAt, finishedAt *time.Time,
	lastError string,
	ticks int,
	totalReward, finalProfit float64,
	sold int,
	records []TickRecord,
) *Episode {
	lifecycle := shared.NewLifecycleStateMachine(nil)
	lifecycle.RecoverFromPersistence(status, createdAt, startedAt, finishedAt, lastError)
	return &Episode{
		id:          id,
		settings:    settings,
		lifecycle:   lifecycle,
		ticks:       ticks,
		totalReward: totalReward,
		finalProfit: finalProfit,
		sold:        sold,
		records:     records,
	}
}

// Getters

func (e *Episode) ID() string                     { return e.id }
func (e *Episode) Settings() Settings             { return e.settings }
func (e *Episode) Status() shared.LifecycleStatus { return e.lifecycle.Status() }
func (e *Episode) CreatedAt() time.Time           { return e.lifecycle.CreatedAt() }
func (e *Episode) StartedAt() *time.Time          { return e.lifecycle.StartedAt() }
func (e *Episode) FinishedAt() *time.Time         { return e.lifecycle.FinishedAt() }
func (e *Episode) LastError() string              { return e.lifecycle.LastError() }
func (e *Episode) Ticks() int                     { return e.ticks }
func (e *Episode) TotalReward() float64           { return e.totalReward }
func (e *Episode) FinalProfit() float64           { return e.finalProfit }
func (e *Episode) Sold() int                      { return e.sold }
func (e *Episode) RuntimeDuration() time.Duration { return e.lifecycle.RuntimeDuration() }

// Records returns the tick records in order
func (e *Episode) Records() []TickRecord {
	return append([]TickRecord(nil), e.records...)
}

// Start marks the episode as running
func (e *Episode) Start() error {
	return e.lifecycle.Start()
}

// Record appends one tick. Ticks must arrive in order while running.
func (e *Episode) Record(r TickRecord) error {
	if !e.lifecycle.IsRunning() {
		return &shared.InvalidTransitionError{From: string(e.lifecycle.Status()), Attempted: "record tick"}
	}
	if r.Tick != e.ticks+1 {
		return &ErrTickOutOfOrder{EpisodeID: e.id, Expected: e.ticks + 1, Got: r.Tick}
	}
	e.records = append(e.records, r)
	e.ticks = r.Tick
	e.totalReward += r.Reward
	e.finalProfit = r.Profit
	e.sold += r.Sold
	return nil
}

// Complete marks the episode as finished at the horizon
func (e *Episode) Complete() error {
	return e.lifecycle.Complete()
}

// Fail marks the episode as failed
func (e *Episode) Fail(err error) error {
	return e.lifecycle.Fail(err)
}

// Stop marks the episode as cancelled before the horizon
func (e *Episode) Stop() error {
	return e.lifecycle.Stop()
}
