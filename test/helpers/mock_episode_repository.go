package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
)

// MockEpisodeRepository is an in-memory test double for episode.Repository
type MockEpisodeRepository struct {
	mu       sync.RWMutex
	episodes map[string]*episode.Episode
	order    []string
	saves    int
	SaveErr  error
}

// NewMockEpisodeRepository creates an empty mock repository
func NewMockEpisodeRepository() *MockEpisodeRepository {
	return &MockEpisodeRepository{episodes: make(map[string]*episode.Episode)}
}

// Save stores the episode pointer
func (m *MockEpisodeRepository) Save(ctx context.Context, e *episode.Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, ok := m.episodes[e.ID()]; !ok {
		m.order = append(m.order, e.ID())
	}
	m.episodes[e.ID()] = e
	return nil
}

// FindByID returns a stored episode
func (m *MockEpisodeRepository) FindByID(ctx context.Context, id string) (*episode.Episode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.episodes[id]
	if !ok {
		return nil, shared.NewNotFoundError("episode", id)
	}
	return e, nil
}

// List returns stored episodes newest first
func (m *MockEpisodeRepository) List(ctx context.Context, filter episode.ListFilter) ([]*episode.Episode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*episode.Episode
	for i := len(m.order) - 1; i >= 0; i-- {
		e := m.episodes[m.order[i]]
		if filter.Plant != "" && e.Settings().Plant != filter.Plant {
			continue
		}
		if filter.Policy != "" && e.Settings().Policy != filter.Policy {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// SaveCount returns how many times Save was called
func (m *MockEpisodeRepository) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
