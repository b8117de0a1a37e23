package grpc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcadapter "github.com/andrescamacho/jobshop-sim/internal/adapters/grpc"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func unavailable() error { return status.Error(codes.Unavailable, "connection refused") }

func TestCircuitBreaker_OpensAfterTransportFailures(t *testing.T) {
	// Arrange
	clock := &manualClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := grpcadapter.NewCircuitBreaker(2, 5*time.Second, clock)
	calls := 0

	// Act
	for i := 0; i < 2; i++ {
		_ = cb.Call(func() error { calls++; return unavailable() })
	}
	err := cb.Call(func() error { calls++; return nil })

	// Assert
	assert.ErrorIs(t, err, grpcadapter.ErrCircuitOpen)
	assert.Equal(t, 2, calls, "open circuit does not reach the daemon")
	assert.Equal(t, grpcadapter.CircuitOpen, cb.State())
	assert.Equal(t, 2, cb.FailureCount())
}

func TestCircuitBreaker_ApplicationErrorsDoNotTrip(t *testing.T) {
	// Arrange
	cb := grpcadapter.NewCircuitBreaker(1, time.Second, nil)
	appErr := status.Error(codes.InvalidArgument, "action 9 out of range")

	// Act
	err := cb.Call(func() error { return appErr })

	// Assert
	assert.Equal(t, appErr, err)
	assert.Equal(t, grpcadapter.CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name      string
		probe     error
		wantState grpcadapter.CircuitState
	}{
		{name: "success closes", probe: nil, wantState: grpcadapter.CircuitClosed},
		{name: "failure reopens", probe: unavailable(), wantState: grpcadapter.CircuitOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clock := &manualClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
			cb := grpcadapter.NewCircuitBreaker(1, 5*time.Second, clock)
			_ = cb.Call(unavailable)
			clock.advance(5 * time.Second)

			// Act
			err := cb.Call(func() error { return tt.probe })

			// Assert
			assert.False(t, errors.Is(err, grpcadapter.ErrCircuitOpen))
			assert.Equal(t, tt.wantState, cb.State())
		})
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	// Arrange
	cb := grpcadapter.NewCircuitBreaker(1, time.Hour, nil)
	_ = cb.Call(unavailable)

	// Act
	cb.Reset()

	// Assert
	assert.Equal(t, grpcadapter.CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
	assert.NoError(t, cb.Call(func() error { return nil }))
}
