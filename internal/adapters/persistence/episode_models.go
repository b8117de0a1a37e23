package persistence

import "time"

// EpisodeModel represents the episodes table
type EpisodeModel struct {
	ID          string     `gorm:"column:id;primaryKey;not null"`
	Plant       string     `gorm:"column:plant;index;not null"`
	Policy      string     `gorm:"column:policy;index;not null"`
	Seed        int64      `gorm:"column:seed"`
	Goal        string     `gorm:"column:goal"`
	Horizon     int        `gorm:"column:horizon"`
	MaxBuffer   int        `gorm:"column:max_buffer"`
	Gamma       float64    `gorm:"column:gamma"`
	Status      string     `gorm:"column:status;not null"`
	Ticks       int        `gorm:"column:ticks;default:0"`
	TotalReward float64    `gorm:"column:total_reward"`
	FinalProfit float64    `gorm:"column:final_profit"`
	Sold        int        `gorm:"column:sold;default:0"`
	LastError   string     `gorm:"column:last_error"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at"`
}

func (EpisodeModel) TableName() string {
	return "episodes"
}

// EpisodeTickModel represents the episode_ticks table
type EpisodeTickModel struct {
	EpisodeID      string        `gorm:"column:episode_id;primaryKey;not null"`
	Tick           int           `gorm:"column:tick;primaryKey;not null"`
	Episode        *EpisodeModel `gorm:"foreignKey:EpisodeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Action         int           `gorm:"column:action"`
	Routed         bool          `gorm:"column:routed"`
	Reward         float64       `gorm:"column:reward"`
	Profit         float64       `gorm:"column:profit"`
	Potential      float64       `gorm:"column:potential"`
	Started        int           `gorm:"column:started"`
	Completed      int           `gorm:"column:completed"`
	Sold           int           `gorm:"column:sold"`
	GlobalBuffered int           `gorm:"column:global_buffered"`
}

func (EpisodeTickModel) TableName() string {
	return "episode_ticks"
}
