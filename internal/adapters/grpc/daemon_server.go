package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

// DaemonServer serves the simulation service to external decision processes
type DaemonServer struct {
	manager         *sessions.Manager
	service         SimulationServiceServer
	listener        net.Listener
	logger          logging.Logger
	shutdownTimeout time.Duration

	// Shutdown coordination
	shutdownChan chan os.Signal
	stopOnce     sync.Once
	stopChan     chan struct{}
	done         chan struct{}
}

// NewDaemonServer listens on address: "unix:<path>" for a unix socket, otherwise host:port
func NewDaemonServer(
	manager *sessions.Manager,
	defaults config.SimulationConfig,
	address string,
	logger logging.Logger,
	shutdownTimeout time.Duration,
) (*DaemonServer, error) {
	listener, err := listen(address)
	if err != nil {
		return nil, err
	}
	server := NewDaemonServerWithListener(manager, defaults, listener, logger, shutdownTimeout)
	signal.Notify(server.shutdownChan, os.Interrupt, syscall.SIGTERM)
	return server, nil
}

// NewDaemonServerWithListener serves on an existing listener without signal handling
func NewDaemonServerWithListener(
	manager *sessions.Manager,
	defaults config.SimulationConfig,
	listener net.Listener,
	logger logging.Logger,
	shutdownTimeout time.Duration,
) *DaemonServer {
	if logger == nil {
		logger = logging.LoggerFromContext(context.Background())
	}
	return &DaemonServer{
		manager:         manager,
		service:         NewSimulationService(manager, defaults),
		listener:        listener,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		shutdownChan:    make(chan os.Signal, 1),
		stopChan:        make(chan struct{}),
		done:            make(chan struct{}),
	}
}

func listen(address string) (net.Listener, error) {
	if socketPath, ok := strings.CutPrefix(address, "unix:"); ok {
		// Remove existing socket file if present
		if err := os.RemoveAll(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove existing socket: %w", err)
		}
		listener, err := net.Listen("unix", socketPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
		}
		// Owner only
		if err := os.Chmod(socketPath, 0600); err != nil {
			listener.Close()
			return nil, fmt.Errorf("failed to set socket permissions: %w", err)
		}
		return listener, nil
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return listener, nil
}

// Addr returns the listening address
func (s *DaemonServer) Addr() string {
	return s.listener.Addr().String()
}

// Start serves requests until a shutdown signal or Shutdown, then stops gracefully
// and closes every session
func (s *DaemonServer) Start() error {
	s.logger.Log(logging.LevelInfo, fmt.Sprintf("[Daemon] Simulation service listening on %s", s.Addr()), nil)

	go s.handleShutdown()

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	RegisterSimulationServiceServer(grpcServer, s.service)

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		s.manager.CloseAll()
		return err
	case <-s.done:
		s.logger.Log(logging.LevelInfo, "[Daemon] Initiating graceful shutdown of gRPC server", nil)
		s.gracefulStop(grpcServer)
		s.manager.CloseAll()
		return nil
	}
}

// Shutdown requests a graceful stop; Start returns once in-flight calls finish
func (s *DaemonServer) Shutdown() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *DaemonServer) handleShutdown() {
	select {
	case <-s.shutdownChan:
		s.logger.Log(logging.LevelInfo, "[Daemon] Shutdown signal received", nil)
	case <-s.stopChan:
	}
	signal.Stop(s.shutdownChan)
	close(s.done)
}

// gracefulStop waits for in-flight calls up to the shutdown timeout, then forces the stop
func (s *DaemonServer) gracefulStop(grpcServer *grpc.Server) {
	if s.shutdownTimeout <= 0 {
		grpcServer.GracefulStop()
		return
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.shutdownTimeout):
		s.logger.Log(logging.LevelWarn, "[Daemon] Graceful stop timed out, forcing", map[string]interface{}{
			"timeout": s.shutdownTimeout.String(),
		})
		grpcServer.Stop()
	}
}

// loggingInterceptor carries the daemon logger into handlers and logs failed calls
func (s *DaemonServer) loggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(logging.WithLogger(ctx, s.logger), req)

	metadata := map[string]interface{}{
		"method":      info.FullMethod,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		metadata["error"] = err.Error()
		s.logger.Log(logging.LevelWarn, "[Daemon] Call failed", metadata)
	} else {
		s.logger.Log(logging.LevelDebug, "[Daemon] Call served", metadata)
	}
	return resp, err
}
