package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/metrics"
	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
	"github.com/andrescamacho/jobshop-sim/pkg/utils"
)

// CreateRequest describes the environment a new session owns
type CreateRequest struct {
	Definition catalog.Definition
	Config     simulation.Config
	MaxPasses  int
}

// State is the observation, mask and dimensions returned by Create, Reset and SetGoal
type State struct {
	SessionID       string
	Plant           string
	Goal            string
	Tick            int
	Observation     []float32
	Mask            []bool
	ActionCount     int
	ObservationSize int
}

// Info describes an open session for listing
type Info struct {
	SessionID string
	Plant     string
	Tick      int
	Steps     int
	CreatedAt time.Time
	LastUsed  time.Time
}

// session owns one environment. Its mutex serialises every call on that
// environment; distinct sessions run in parallel.
type session struct {
	mu        sync.Mutex
	id        string
	plant     string
	env       *simulation.Environment
	createdAt time.Time
	lastUsed  time.Time
	steps     int
	closed    bool
}

// Manager holds the open simulation sessions of the remote service
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	maxSessions int
	clock       shared.Clock

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a session manager. maxSessions <= 0 means unlimited.
// If clock is nil, the system clock is used.
func NewManager(maxSessions int, clock shared.Clock) *Manager {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	return &Manager{
		sessions:    make(map[string]*session),
		maxSessions: maxSessions,
		clock:       clock,
	}
}

// Create builds a fresh plant and environment, resets it and registers the session
func (m *Manager) Create(ctx context.Context, req CreateRequest) (State, error) {
	p, err := plant.FromDefinition(req.Definition, req.MaxPasses)
	if err != nil {
		return State{}, fmt.Errorf("failed to build plant %s: %w", req.Definition.Name, err)
	}
	env, err := simulation.NewEnvironment(p, req.Config)
	if err != nil {
		return State{}, err
	}

	env.Reset()

	now := m.clock.Now()
	s := &session{
		id:        utils.GenerateSessionID(req.Definition.Name),
		plant:     req.Definition.Name,
		env:       env,
		createdAt: now,
		lastUsed:  now,
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return State{}, &ErrSessionLimit{Max: m.maxSessions}
	}
	m.sessions[s.id] = s
	m.mu.Unlock()

	metrics.RecordSessionOpened(s.plant)
	logging.LoggerFromContext(ctx).Log(logging.LevelInfo, fmt.Sprintf("[Session] Opened %s", s.id), map[string]interface{}{
		"plant":        s.plant,
		"action_count": env.ActionCount(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(), nil
}

// Reset starts a new episode in an existing session
func (m *Manager) Reset(id string) (State, error) {
	s, err := m.acquire(id)
	if err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	s.env.Reset()
	s.steps = 0
	return s.state(), nil
}

// Step applies one action to the session's environment
func (m *Manager) Step(id string, action int) (simulation.StepResult, error) {
	s, err := m.acquire(id)
	if err != nil {
		return simulation.StepResult{}, err
	}
	defer s.mu.Unlock()

	result, err := s.env.Step(action)
	if err != nil {
		return simulation.StepResult{}, err
	}
	s.steps++

	d := result.Diagnostics
	metrics.RecordStep(metrics.StepInfo{
		Plant:          s.plant,
		Routed:         d.Routed,
		Reward:         result.Reward,
		Completed:      d.Completed,
		Sold:           d.Sold,
		GlobalBuffered: d.GlobalBuffered,
	})
	return result, nil
}

// SetGoal re-parameterises the goal; an empty goal disables shaping
func (m *Manager) SetGoal(id, goal string) (State, error) {
	s, err := m.acquire(id)
	if err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if goal == "" {
		s.env.ClearGoal()
	} else if err := s.env.SetGoal(goal); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// Snapshot returns a copy of the session's plant state
func (m *Manager) Snapshot(id string) (simulation.Snapshot, error) {
	s, err := m.acquire(id)
	if err != nil {
		return simulation.Snapshot{}, err
	}
	defer s.mu.Unlock()

	return s.env.Snapshot(), nil
}

// Close removes a session
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return &ErrSessionNotFound{SessionID: id}
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	metrics.RecordSessionClosed(s.plant)
	return nil
}

// CloseIdle closes every session unused for longer than maxIdle and returns their ids
func (m *Manager) CloseIdle(maxIdle time.Duration) []string {
	now := m.clock.Now()

	m.mu.RLock()
	var idle []string
	for id, s := range m.sessions {
		s.mu.Lock()
		if now.Sub(s.lastUsed) > maxIdle {
			idle = append(idle, id)
		}
		s.mu.Unlock()
	}
	m.mu.RUnlock()

	sort.Strings(idle)
	for _, id := range idle {
		_ = m.Close(id)
	}
	return idle
}

// CloseAll closes every open session
func (m *Manager) CloseAll() {
	for _, info := range m.List() {
		_ = m.Close(info.SessionID)
	}
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List describes the open sessions ordered by id
func (m *Manager) List() []Info {
	m.mu.RLock()
	all := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		infos = append(infos, Info{
			SessionID: s.id,
			Plant:     s.plant,
			Tick:      s.env.Tick(),
			Steps:     s.steps,
			CreatedAt: s.createdAt,
			LastUsed:  s.lastUsed,
		})
		s.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].SessionID < infos[j].SessionID })
	return infos
}

// Start launches the idle reaper, checking every interval
func (m *Manager) Start(ctx context.Context, interval, maxIdle time.Duration) {
	ctx, m.cancel = context.WithCancel(ctx)
	logger := logging.LoggerFromContext(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if closed := m.CloseIdle(maxIdle); len(closed) > 0 {
					logger.Log(logging.LevelInfo, fmt.Sprintf("[Session] Closed %d idle sessions", len(closed)), map[string]interface{}{
						"sessions": closed,
					})
				}
			}
		}
	}()
}

// Stop halts the idle reaper
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// acquire returns the session locked and marks it used
func (m *Manager) acquire(id string) (*session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, &ErrSessionNotFound{SessionID: id}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &ErrSessionNotFound{SessionID: id}
	}
	s.lastUsed = m.clock.Now()
	return s, nil
}

func (s *session) state() State {
	goal, _ := s.env.Goal()
	return State{
		SessionID:       s.id,
		Plant:           s.plant,
		Goal:            goal,
		Tick:            s.env.Tick(),
		Observation:     s.env.Observation(),
		Mask:            s.env.ActionMask(),
		ActionCount:     s.env.ActionCount(),
		ObservationSize: s.env.ObservationSize(),
	}
}
