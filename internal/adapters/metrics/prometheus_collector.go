package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "jobshop"
	// Subsystem for simulation metrics
	subsystem = "simulation"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCollector is the singleton simulation metrics collector.
	// Set by SetGlobalCollector() when metrics are enabled.
	globalCollector SimulationRecorder
)

// StepInfo is what one environment step reports to metrics
type StepInfo struct {
	Plant          string
	Routed         bool
	Reward         float64
	Completed      int
	Sold           int
	GlobalBuffered int
}

// EpisodeInfo is what one finished episode reports to metrics
type EpisodeInfo struct {
	Plant       string
	Policy      string
	Status      string
	Ticks       int
	TotalReward float64
	FinalProfit float64
	Duration    float64
}

// SimulationRecorder defines the interface application code records simulation events through
type SimulationRecorder interface {
	RecordStep(info StepInfo)
	RecordEpisodeCompletion(info EpisodeInfo)
	RecordSessionOpened(plant string)
	RecordSessionClosed(plant string)
}

// InitRegistry initializes the Prometheus registry.
// Should be called once at application startup if metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry, nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Setup initializes the registry, registers the simulation and request collectors
// and installs the simulation collector globally. The request collector is
// returned for PrometheusMiddleware.
func Setup() (*RequestMetricsCollector, error) {
	InitRegistry()

	simulation := NewSimulationMetricsCollector()
	if err := simulation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register simulation metrics: %w", err)
	}
	requests := NewRequestMetricsCollector()
	if err := requests.Register(); err != nil {
		return nil, fmt.Errorf("failed to register request metrics: %w", err)
	}

	SetGlobalCollector(simulation)
	return requests, nil
}

// SetGlobalCollector sets the global simulation collector; nil disables recording
func SetGlobalCollector(collector SimulationRecorder) {
	globalCollector = collector
}

// RecordStep records one environment step globally
func RecordStep(info StepInfo) {
	if globalCollector != nil {
		globalCollector.RecordStep(info)
	}
}

// RecordEpisodeCompletion records a finished episode globally
func RecordEpisodeCompletion(info EpisodeInfo) {
	if globalCollector != nil {
		globalCollector.RecordEpisodeCompletion(info)
	}
}

// RecordSessionOpened records a new remote simulation session globally
func RecordSessionOpened(plant string) {
	if globalCollector != nil {
		globalCollector.RecordSessionOpened(plant)
	}
}

// RecordSessionClosed records a closed remote simulation session globally
func RecordSessionClosed(plant string) {
	if globalCollector != nil {
		globalCollector.RecordSessionClosed(plant)
	}
}
