package cli

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/logsink"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/metrics"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/persistence"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/plantfile"
	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/commands"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/queries"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/database"
)

// app bundles what a command needs: configuration, logger, mediator and the
// optional run history database
type app struct {
	cfg      *config.Config
	logger   logging.Logger
	mediator mediator.Mediator
	db       *gorm.DB
}

// newApp loads configuration and wires the mediator. withHistory opens the
// database and registers the run history handlers.
func newApp(withHistory bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	a := &app{
		cfg:      cfg,
		logger:   logsink.FromConfig(cfg.Logging, "cli"),
		mediator: mediator.NewMediator(),
	}

	var requests *metrics.RequestMetricsCollector
	if cfg.Metrics.Enabled {
		requests, err = metrics.Setup()
		if err != nil {
			return nil, err
		}
	}
	a.mediator.Use(metrics.PrometheusMiddleware(requests))

	var repo episode.Repository
	if withHistory {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.db = db
		repo = persistence.NewGormEpisodeRepository(db)
		if cfg.Database.InMemory() {
			a.logger.Log(logging.LevelWarn, "[History] Using an in-memory store; episodes are lost when the command exits", nil)
		}
	}

	if err := a.registerHandlers(repo); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) registerHandlers(repo episode.Repository) error {
	runEpisodeHandler := commands.NewRunEpisodeHandler(repo, nil)
	if err := mediator.RegisterHandler[*commands.RunEpisodeCommand](a.mediator, runEpisodeHandler); err != nil {
		return fmt.Errorf("failed to register RunEpisode handler: %w", err)
	}

	if err := mediator.RegisterHandler[*queries.DescribePlantQuery](a.mediator, queries.NewDescribePlantHandler()); err != nil {
		return fmt.Errorf("failed to register DescribePlant handler: %w", err)
	}

	if err := mediator.RegisterHandler[*queries.GetDistanceQuery](a.mediator, queries.NewGetDistanceHandler()); err != nil {
		return fmt.Errorf("failed to register GetDistance handler: %w", err)
	}

	if err := mediator.RegisterHandler[*queries.ListSubgoalsQuery](a.mediator, queries.NewListSubgoalsHandler()); err != nil {
		return fmt.Errorf("failed to register ListSubgoals handler: %w", err)
	}

	// Run history queries need the database
	if repo == nil {
		return nil
	}

	if err := mediator.RegisterHandler[*queries.ListEpisodesQuery](a.mediator, queries.NewListEpisodesHandler(repo)); err != nil {
		return fmt.Errorf("failed to register ListEpisodes handler: %w", err)
	}

	if err := mediator.RegisterHandler[*queries.GetEpisodeQuery](a.mediator, queries.NewGetEpisodeHandler(repo)); err != nil {
		return fmt.Errorf("failed to register GetEpisode handler: %w", err)
	}

	return nil
}

// Close releases the database connection
func (a *app) Close() {
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
}

// context carries the app logger
func (a *app) context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// definition resolves the plant from --plant-file, --plant or the configuration
func (a *app) definition() (catalog.Definition, error) {
	switch {
	case plantFile != "":
		return plantfile.Load(plantFile)
	case plantName != "":
		return plantfile.Resolve("", plantName)
	default:
		return plantfile.Resolve(a.cfg.Simulation.PlantFile, a.cfg.Simulation.Plant)
	}
}
