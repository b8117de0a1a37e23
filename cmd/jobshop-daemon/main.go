package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	grpcadapter "github.com/andrescamacho/jobshop-sim/internal/adapters/grpc"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/logsink"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/metrics"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/plantfile"
	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/sessions"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/pidfile"
)

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configFlag := flag.String("config", "", "Path to config.yaml (default: search ., ./configs, /etc/jobshop)")
	flag.Parse()

	fmt.Println("jobshop simulation daemon")
	fmt.Println("=========================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Server.PIDFile)
	pf := pidfile.New(cfg.Server.PIDFile)

	if err := pf.Acquire(); err != nil {
		if !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
		fmt.Println("Force mode enabled - attempting to kill existing daemon...")
		if killErr := pf.KillExisting(); killErr != nil {
			log.Fatalf("Failed to kill existing daemon: %v", killErr)
		}
		fmt.Println("Existing daemon killed")

		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	logger := logsink.FromConfig(cfg.Logging, "daemon")
	ctx := logging.WithLogger(context.Background(), logger)

	// 1. Default plant must load before accepting sessions
	def, err := plantfile.Resolve(cfg.Simulation.PlantFile, cfg.Simulation.Plant)
	if err != nil {
		return fmt.Errorf("failed to load default plant: %w", err)
	}
	fmt.Printf("Default plant: %s\n", def.Name)

	// 2. Metrics
	if cfg.Metrics.Enabled {
		if _, err := metrics.Setup(); err != nil {
			return err
		}
		server, err := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err != nil {
			return err
		}
		go func() {
			if err := server.Serve(); err != nil {
				log.Printf("Warning: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		fmt.Printf("Metrics available at http://%s%s\n", server.Addr(), cfg.Metrics.Path)
	}

	// 3. Sessions with idle reaper
	manager := sessions.NewManager(cfg.Server.MaxSessions, nil)
	manager.Start(ctx, reapInterval(cfg.Server.SessionIdleTimeout), cfg.Server.SessionIdleTimeout)
	defer manager.Stop()
	fmt.Printf("Session manager started (max %d sessions, idle timeout %s)\n",
		cfg.Server.MaxSessions, cfg.Server.SessionIdleTimeout)

	// 4. gRPC simulation service
	server, err := grpcadapter.NewDaemonServer(manager, cfg.Simulation, cfg.Server.Address, logger, cfg.Server.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}
	fmt.Printf("Simulation service listening on %s\n", server.Addr())

	return server.Start()
}

// reapInterval checks for idle sessions four times per timeout, at most once a second
func reapInterval(idleTimeout time.Duration) time.Duration {
	interval := idleTimeout / 4
	if interval < time.Second {
		return time.Second
	}
	return interval
}
