package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
)

func TestSimulationMetricsCollector_RecordsThroughGlobals(t *testing.T) {
	// Arrange
	InitRegistry()
	t.Cleanup(func() {
		Registry = nil
		SetGlobalCollector(nil)
	})
	collector := NewSimulationMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalCollector(collector)

	// Act
	RecordStep(StepInfo{Plant: "simple-chain", Routed: true, Reward: 15, Completed: 1, Sold: 1, GlobalBuffered: 10})
	RecordStep(StepInfo{Plant: "simple-chain", Reward: 0, GlobalBuffered: 9})
	RecordEpisodeCompletion(EpisodeInfo{Plant: "simple-chain", Policy: "greedy", Status: "COMPLETED", TotalReward: 50, FinalProfit: 200})
	RecordSessionOpened("reference")
	RecordSessionOpened("reference")
	RecordSessionClosed("reference")

	// Assert
	assert.Equal(t, 1.0, value(t, collector.stepsTotal.WithLabelValues("simple-chain", "true")))
	assert.Equal(t, 1.0, value(t, collector.stepsTotal.WithLabelValues("simple-chain", "false")))
	assert.Equal(t, 1.0, value(t, collector.partsSoldTotal.WithLabelValues("simple-chain")))
	assert.Equal(t, 9.0, value(t, collector.globalBuffered.WithLabelValues("simple-chain")))
	assert.Equal(t, 1.0, value(t, collector.episodesTotal.WithLabelValues("simple-chain", "greedy", "COMPLETED")))
	assert.Equal(t, 200.0, value(t, collector.episodeFinalProfit.WithLabelValues("simple-chain", "greedy")))
	assert.Equal(t, 1.0, value(t, collector.sessionsActive.WithLabelValues("reference")))
}

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestRecordStep_WithoutCollectorIsNoop(t *testing.T) {
	SetGlobalCollector(nil)
	assert.NotPanics(t, func() { RecordStep(StepInfo{Plant: "x"}) })
}

func TestServer_ExposesRegistry(t *testing.T) {
	// Arrange
	InitRegistry()
	t.Cleanup(func() { Registry = nil })
	collector := NewRequestMetricsCollector()
	require.NoError(t, collector.Register())
	collector.Observe("RunEpisodeCommand", 0.01, nil)

	server, err := NewServer("127.0.0.1", 0, "/metrics")
	require.NoError(t, err)
	go func() { _ = server.Serve() }()
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	// Act
	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `jobshop_mediator_requests_total{kind="command",outcome="success",request="RunEpisodeCommand"} 1`))
}

func TestRequestName(t *testing.T) {
	type RunEpisodeCommand struct{}
	assert.Equal(t, "RunEpisodeCommand", requestName(&RunEpisodeCommand{}))
	assert.Equal(t, "RunEpisodeCommand", requestName(RunEpisodeCommand{}))
	assert.Equal(t, "UnknownRequest", requestName(nil))
}

func TestRequestKindAndOutcome(t *testing.T) {
	assert.Equal(t, "command", RequestKind("RunEpisodeCommand"))
	assert.Equal(t, "query", RequestKind("ListEpisodesQuery"))
	assert.Equal(t, "request", RequestKind("Ping"))

	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeCancelled, Outcome(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestPrometheusMiddleware_TracksInFlightAndOutcome(t *testing.T) {
	// Arrange
	InitRegistry()
	t.Cleanup(func() { Registry = nil })
	collector := NewRequestMetricsCollector()
	require.NoError(t, collector.Register())
	middleware := PrometheusMiddleware(collector)
	type ListEpisodesQuery struct{}

	var inFlight float64
	next := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		inFlight = value(t, collector.inFlight.WithLabelValues("ListEpisodesQuery"))
		return nil, errors.New("database closed")
	}

	// Act
	_, err := middleware(context.Background(), &ListEpisodesQuery{}, next)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, 1.0, inFlight)
	assert.Equal(t, 0.0, value(t, collector.inFlight.WithLabelValues("ListEpisodesQuery")))
	assert.Equal(t, 1.0, value(t, collector.total.WithLabelValues("ListEpisodesQuery", "query", OutcomeError)))
}

func TestSetup_InstallsGlobalCollector(t *testing.T) {
	// Arrange
	t.Cleanup(func() {
		Registry = nil
		SetGlobalCollector(nil)
	})

	// Act
	commands, err := Setup()
	require.NoError(t, err)
	RecordSessionOpened("simple-chain")

	// Assert
	assert.NotNil(t, commands)
	assert.True(t, IsEnabled())
	families, err := Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "jobshop_simulation_sessions_active")
}
