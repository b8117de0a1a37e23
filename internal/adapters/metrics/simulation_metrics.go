package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// SimulationMetricsCollector handles environment step, episode and session metrics
type SimulationMetricsCollector struct {
	// Step metrics
	stepsTotal         *prometheus.CounterVec
	stepReward         *prometheus.HistogramVec
	jobsCompletedTotal *prometheus.CounterVec
	partsSoldTotal     *prometheus.CounterVec
	globalBuffered     *prometheus.GaugeVec

	// Episode metrics
	episodesTotal          *prometheus.CounterVec
	episodeReward          *prometheus.HistogramVec
	episodeFinalProfit     *prometheus.GaugeVec
	episodeDurationSeconds *prometheus.HistogramVec

	// Session metrics
	sessionsActive *prometheus.GaugeVec
}

// NewSimulationMetricsCollector creates a new simulation metrics collector
func NewSimulationMetricsCollector() *SimulationMetricsCollector {
	return &SimulationMetricsCollector{
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "steps_total",
				Help:      "Environment steps by plant and whether the action routed parts",
			},
			[]string{"plant", "routed"},
		),
		stepReward: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "step_reward",
				Help:      "Per-step reward distribution",
				Buckets:   []float64{-50, -10, -1, 0, 1, 10, 50, 100},
			},
			[]string{"plant"},
		),
		jobsCompletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_completed_total",
				Help:      "Machine jobs completed",
			},
			[]string{"plant"},
		),
		partsSoldTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "parts_sold_total",
				Help:      "Finished goods removed from output buffers",
			},
			[]string{"plant"},
		),
		globalBuffered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "global_buffer_parts",
				Help:      "Parts in the global buffer after the most recent step",
			},
			[]string{"plant"},
		),
		episodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "episodes_total",
				Help:      "Finished episodes by plant, policy and final status",
			},
			[]string{"plant", "policy", "status"},
		),
		episodeReward: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "episode_reward",
				Help:      "Total reward per episode",
				Buckets:   prometheus.LinearBuckets(-100, 50, 10),
			},
			[]string{"plant", "policy"},
		),
		episodeFinalProfit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "episode_final_profit",
				Help:      "Held-part profit at the end of the most recent episode",
			},
			[]string{"plant", "policy"},
		),
		episodeDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "episode_duration_seconds",
				Help:      "Wall-clock episode duration",
				Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 60, 300},
			},
			[]string{"plant", "policy"},
		),
		sessionsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_active",
				Help:      "Open remote simulation sessions",
			},
			[]string{"plant"},
		),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.stepsTotal,
		c.stepReward,
		c.jobsCompletedTotal,
		c.partsSoldTotal,
		c.globalBuffered,
		c.episodesTotal,
		c.episodeReward,
		c.episodeFinalProfit,
		c.episodeDurationSeconds,
		c.sessionsActive,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordStep records one environment step
func (c *SimulationMetricsCollector) RecordStep(info StepInfo) {
	c.stepsTotal.WithLabelValues(info.Plant, strconv.FormatBool(info.Routed)).Inc()
	c.stepReward.WithLabelValues(info.Plant).Observe(info.Reward)
	c.jobsCompletedTotal.WithLabelValues(info.Plant).Add(float64(info.Completed))
	c.partsSoldTotal.WithLabelValues(info.Plant).Add(float64(info.Sold))
	c.globalBuffered.WithLabelValues(info.Plant).Set(float64(info.GlobalBuffered))
}

// RecordEpisodeCompletion records a finished episode
func (c *SimulationMetricsCollector) RecordEpisodeCompletion(info EpisodeInfo) {
	c.episodesTotal.WithLabelValues(info.Plant, info.Policy, info.Status).Inc()
	c.episodeReward.WithLabelValues(info.Plant, info.Policy).Observe(info.TotalReward)
	c.episodeFinalProfit.WithLabelValues(info.Plant, info.Policy).Set(info.FinalProfit)
	c.episodeDurationSeconds.WithLabelValues(info.Plant, info.Policy).Observe(info.Duration)
}

// RecordSessionOpened increments the active session gauge
func (c *SimulationMetricsCollector) RecordSessionOpened(plant string) {
	c.sessionsActive.WithLabelValues(plant).Inc()
}

// RecordSessionClosed decrements the active session gauge
func (c *SimulationMetricsCollector) RecordSessionClosed(plant string) {
	c.sessionsActive.WithLabelValues(plant).Dec()
}
