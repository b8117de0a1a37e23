package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
)

// TickBatchSize bounds the rows per tick record insert
const TickBatchSize = 200

// GormEpisodeRepository implements episode.Repository using GORM
type GormEpisodeRepository struct {
	db *gorm.DB
}

// NewGormEpisodeRepository creates a new GORM episode repository
func NewGormEpisodeRepository(db *gorm.DB) *GormEpisodeRepository {
	return &GormEpisodeRepository{db: db}
}

// Save upserts the episode row and appends tick records newer than the last stored tick
func (r *GormEpisodeRepository) Save(ctx context.Context, e *episode.Episode) error {
	model := episodeToModel(e)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "ticks", "total_reward", "final_profit", "sold",
				"last_error", "started_at", "finished_at",
			}),
		}).Create(model).Error
		if err != nil {
			return fmt.Errorf("failed to save episode: %w", err)
		}

		var stored int64
		err = tx.Model(&EpisodeTickModel{}).
			Where("episode_id = ?", e.ID()).
			Select("COALESCE(MAX(tick), 0)").
			Scan(&stored).Error
		if err != nil {
			return fmt.Errorf("failed to read stored ticks: %w", err)
		}

		var pending []EpisodeTickModel
		for _, rec := range e.Records() {
			if int64(rec.Tick) > stored {
				pending = append(pending, tickToModel(e.ID(), rec))
			}
		}
		if len(pending) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(pending, TickBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save tick records: %w", err)
		}
		return nil
	})
}

// FindByID loads an episode with all of its tick records
func (r *GormEpisodeRepository) FindByID(ctx context.Context, id string) (*episode.Episode, error) {
	var model EpisodeModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("episode", id)
		}
		return nil, fmt.Errorf("failed to find episode: %w", result.Error)
	}

	var ticks []EpisodeTickModel
	err := r.db.WithContext(ctx).
		Where("episode_id = ?", id).
		Order("tick ASC").
		Find(&ticks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tick records: %w", err)
	}

	records := make([]episode.TickRecord, 0, len(ticks))
	for _, t := range ticks {
		records = append(records, modelToTick(t))
	}
	return modelToEpisode(model, records), nil
}

// List returns episodes newest first, without tick records
func (r *GormEpisodeRepository) List(ctx context.Context, filter episode.ListFilter) ([]*episode.Episode, error) {
	query := r.db.WithContext(ctx).Model(&EpisodeModel{})
	if filter.Plant != "" {
		query = query.Where("plant = ?", filter.Plant)
	}
	if filter.Policy != "" {
		query = query.Where("policy = ?", filter.Policy)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []EpisodeModel
	if err := query.Order("created_at DESC").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	episodes := make([]*episode.Episode, 0, len(models))
	for _, m := range models {
		episodes = append(episodes, modelToEpisode(m, nil))
	}
	return episodes, nil
}

func episodeToModel(e *episode.Episode) *EpisodeModel {
	s := e.Settings()
	return &EpisodeModel{
		ID:          e.ID(),
		Plant:       s.Plant,
		Policy:      s.Policy,
		Seed:        s.Seed,
		Goal:        s.Goal,
		Horizon:     s.Horizon,
		MaxBuffer:   s.MaxBuffer,
		Gamma:       s.Gamma,
		Status:      string(e.Status()),
		Ticks:       e.Ticks(),
		TotalReward: e.TotalReward(),
		FinalProfit: e.FinalProfit(),
		Sold:        e.Sold(),
		LastError:   e.LastError(),
		CreatedAt:   e.CreatedAt(),
		StartedAt:   e.StartedAt(),
		FinishedAt:  e.FinishedAt(),
	}
}

func modelToEpisode(m EpisodeModel, records []episode.TickRecord) *episode.Episode {
	return episode.Reconstruct(
		m.ID,
		episode.Settings{
			Plant:     m.Plant,
			Policy:    m.Policy,
			Seed:      m.Seed,
			Goal:      m.Goal,
			Horizon:   m.Horizon,
			MaxBuffer: m.MaxBuffer,
			Gamma:     m.Gamma,
		},
		shared.LifecycleStatus(m.Status),
		m.CreatedAt,
		m.StartedAt,
		m.FinishedAt,
		m.LastError,
		m.Ticks,
		m.TotalReward,
		m.FinalProfit,
		m.Sold,
		records,
	)
}

func tickToModel(episodeID string, r episode.TickRecord) EpisodeTickModel {
	return EpisodeTickModel{
		EpisodeID:      episodeID,
		Tick:           r.Tick,
		Action:         r.Action,
		Routed:         r.Routed,
		Reward:         r.Reward,
		Profit:         r.Profit,
		Potential:      r.Potential,
		Started:        r.Started,
		Completed:      r.Completed,
		Sold:           r.Sold,
		GlobalBuffered: r.GlobalBuffered,
	}
}

func modelToTick(m EpisodeTickModel) episode.TickRecord {
	return episode.TickRecord{
		Tick:           m.Tick,
		Action:         m.Action,
		Routed:         m.Routed,
		Reward:         m.Reward,
		Profit:         m.Profit,
		Potential:      m.Potential,
		Started:        m.Started,
		Completed:      m.Completed,
		Sold:           m.Sold,
		GlobalBuffered: m.GlobalBuffered,
	}
}
