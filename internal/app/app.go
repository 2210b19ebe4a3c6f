// Package app wires configuration, storage and services into a runnable
// application shared by the command line tools.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/blob"
	"github.com/yourusername/rugby-predictor/internal/config"
	"github.com/yourusername/rugby-predictor/internal/database"
	"github.com/yourusername/rugby-predictor/internal/datasource"
	"github.com/yourusername/rugby-predictor/internal/directory"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/features"
	"github.com/yourusername/rugby-predictor/internal/health"
	"github.com/yourusername/rugby-predictor/internal/httpclient"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/market"
	"github.com/yourusername/rugby-predictor/internal/predictor"
	"github.com/yourusername/rugby-predictor/internal/registry"
	"github.com/yourusername/rugby-predictor/internal/repository"
	"github.com/yourusername/rugby-predictor/internal/service"
)

// Version is set via ldflags
var Version = "dev"

// App holds the wired services
type App struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Repos       *repository.Repositories
	Directory   *directory.Directory
	Features    *features.Producer
	Registry    *registry.Registry
	Predictions *predictor.Service
	Backtests   *backtest.Service
	Ingestion   *service.IngestionService
	Documents   docstore.Store
	Health      *health.Checker

	closers []func()
}

// LoadConfig reads the config file, overlays AWS secrets when
// AWS_SECRETS_ENABLED=true and validates the result
func LoadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// New connects the configured stores and builds every service
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: log,
		Health: health.NewChecker(health.Config{ServiceName: cfg.App.Name, Version: Version, Logger: log}),
	}

	if err := a.openHistory(ctx); err != nil {
		a.Close()
		return nil, err
	}

	docs, err := docstore.New(ctx, &cfg.DocStore)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	a.Documents = docs
	a.closers = append(a.closers, func() { docs.Close() })
	if p, ok := docs.(health.Pinger); ok {
		a.Health.AddCheck("docstore", p)
	}

	a.Directory = directory.New(a.Repos.Team, a.Repos.League)
	a.Features = features.NewProducer(a.Repos.Match, featureConfig(cfg))
	a.Registry = registry.New(log, a.resolvers()...)

	pred := predictor.New(a.Directory, a.Features, a.marketProvider(), predictor.Config{
		DefaultHomeScore:  cfg.Predictor.DefaultHomeScore,
		DefaultAwayScore:  cfg.Predictor.DefaultAwayScore,
		PlaceholderLean:   cfg.Predictor.PlaceholderLean,
		NeutralConfidence: cfg.Predictor.NeutralConfidence,
	}, log)
	a.Predictions = predictor.NewService(a.Registry, pred)

	btCfg, err := backtest.FromConfig(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	engine, err := backtest.NewEngine(btCfg, a.Repos.Match, a.Repos.Team, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Backtests = backtest.NewService(engine, backtest.NewResultCache(btCfg.CacheTTL), docs, log)

	if cfg.Ingestion.Enabled {
		a.Ingestion = service.NewIngestionService(a.fixtureSource(), a.Repos,
			service.NewDataValidator(), service.NewDataNormalizer(cfg.Ingestion.TeamAliases), log)
	}

	log.WithFields(logrus.Fields{
		"history_source": cfg.App.HistorySource,
		"docstore":       cfg.DocStore.Driver,
		"remote_models":  cfg.Models.RemoteEnabled,
		"market":         cfg.Market.Enabled,
		"ingestion":      cfg.Ingestion.Enabled,
	}).Info("Application services initialized")

	return a, nil
}

func (a *App) openHistory(ctx context.Context) error {
	switch a.Config.App.HistorySource {
	case "postgres":
		db, err := database.Initialize(ctx, a.Config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.Health.AddCheck("database", db)
		repos, err := repository.NewRepositories(db)
		if err != nil {
			return err
		}
		a.Repos = repos
	default:
		db, err := database.OpenSQLite(ctx, a.Config.LocalStore.Path)
		if err != nil {
			return fmt.Errorf("failed to open local store: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		a.Health.AddCheck("local_store", health.PingFunc(func(ctx context.Context) error {
			return pingSQLite(ctx, db)
		}))
		repos, err := repository.NewSQLiteRepositories(db)
		if err != nil {
			return err
		}
		a.Repos = repos
	}
	return nil
}

func pingSQLite(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("local store unreachable: %w", err)
	}
	return nil
}

func (a *App) resolvers() []registry.Resolver {
	cfg := a.Config.Models
	resolvers := []registry.Resolver{registry.NewLocalResolver(cfg.LocalDir)}
	if !cfg.RemoteEnabled {
		return resolvers
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = a.Config.DownloadTimeout()
	httpCfg.MaxRetries = cfg.RetryAttempts
	client := httpclient.New(httpCfg, a.Logger.WithField("component", "blob"))

	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	return append(resolvers, &registry.RemoteResolver{
		Client:     blob.NewClient(client, cfg.RemoteBaseURL, cfg.RemoteContainer),
		ScratchDir: scratch,
		Patterns:   registry.DefaultPatterns,
		Timeout:    a.Config.DownloadTimeout(),
		Logger:     logger.NewModelLogger(a.Logger),
	})
}

func (a *App) marketProvider() market.Provider {
	cfg := a.Config.Market
	if !cfg.Enabled {
		return nil
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg := httpclient.DefaultConfig()
	if timeout > 0 {
		httpCfg.Timeout = timeout
	}
	httpCfg.MaxRetries = cfg.MaxRetries
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}
	client := httpclient.New(httpCfg, a.Logger.WithField("component", "odds"))
	return market.NewOddsClient(client, cfg.BaseURL, cfg.APIKey, timeout)
}

func (a *App) fixtureSource() datasource.FixtureSource {
	cfg := a.Config.Ingestion
	httpCfg := httpclient.DefaultConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpCfg.MaxRetries = cfg.MaxRetries
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}
	client := httpclient.New(httpCfg, a.Logger.WithField("component", "fixtures"))
	return datasource.NewSportsDBClient(client, cfg.BaseURL, cfg.APIKey, a.Logger.WithField("component", "fixtures"))
}

func featureConfig(cfg *config.Config) features.Config {
	return features.Config{
		RatingK:       cfg.Features.RatingK,
		InitialRating: cfg.Features.InitialRating,
		HomeAdvantage: cfg.Features.HomeAdvantage,
		NeutralVenue:  cfg.Features.NeutralVenue,
		FormWindow:    cfg.Features.FormWindow,
	}
}

// Close releases stores in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
