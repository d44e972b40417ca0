package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/voyager/internal/clientdata"
	"github.com/aristath/voyager/internal/clients/awardhub"
	"github.com/aristath/voyager/internal/clients/balances"
	"github.com/aristath/voyager/internal/clients/serpapi"
	"github.com/aristath/voyager/internal/config"
	"github.com/aristath/voyager/internal/database"
	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/engine"
	"github.com/aristath/voyager/internal/events"
	"github.com/aristath/voyager/internal/quota"
	"github.com/aristath/voyager/internal/scheduler"
	"github.com/aristath/voyager/internal/search"
	"github.com/aristath/voyager/internal/server"
	"github.com/aristath/voyager/internal/sweetspots"
	"github.com/aristath/voyager/internal/transfers"
	"github.com/aristath/voyager/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", true)
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.DevMode)

	log.Info().Msg("Starting Voyager")

	// Cache database: ephemeral client data, tuned for speed
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client data database")
	}
	defer cacheDB.Close()

	if err := cacheDB.Migrate(clientdata.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate client data database")
	}

	// State database: the quota counter must survive restarts
	stateDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "state.db"),
		Profile: database.ProfileStandard,
		Name:    "state",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open state database")
	}
	defer stateDB.Close()

	if err := stateDB.Migrate(quota.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate state database")
	}

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	tracker := quota.NewTracker(stateDB.Conn(), "serpapi", cfg.MonthlyQuotaCap, log)

	bus := events.NewBus()

	// Static datasets: curated tables with compiled-in fallbacks
	rules := loadRules(cfg, log)
	edges := loadEdges(cfg, log)
	matcher := sweetspots.NewMatcher(rules, log)
	resolver := transfers.NewResolver(edges, log)

	// Search adapters
	serpClient := serpapi.NewClient(cfg.SerpAPIBaseURL, cfg.SerpAPIKey, cacheRepo, tracker, log)

	pollCfg := search.PollerConfig{
		Interval:           cfg.PollInterval,
		Deadline:           cfg.PollDeadline,
		StalenessThreshold: cfg.StalenessThreshold,
	}
	connectAwardHub := func() (search.JobClient, error) {
		creds, err := awardhub.LoadCredentials(cfg.AwardHubCredentialFile)
		if err != nil {
			return nil, err
		}
		return awardhub.NewClient(cfg.AwardHubBaseURL, creds, log), nil
	}

	adapters := []search.Adapter{
		search.NewAwardAdapter(connectAwardHub, pollCfg, log),
		search.NewCashAdapter(serpClient, log),
	}
	if cfg.HiddenCityScriptPath != "" {
		adapters = append(adapters, search.NewSubprocessAdapter(cfg.HiddenCityScriptPath, log))
	}

	orch := search.NewOrchestrator(adapters, bus, log)

	var balanceSource engine.BalanceSource
	balanceSource = balances.NewClient(
		cfg.BalancesBaseURL, cfg.BalancesAPIKey, cfg.BalancesAccount,
		cfg.StaticPath("balances_snapshot.json"), cacheRepo, log,
	)

	eng := engine.New(orch, matcher, resolver, balanceSource, bus, log)

	// Background maintenance
	sched := scheduler.New(log)
	registerJobs(sched, cacheRepo, cacheDB, tracker, log)
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		Config:  cfg,
		Engine:  eng,
		Bus:     bus,
		Tracker: tracker,
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func loadRules(cfg *config.Config, log zerolog.Logger) []sweetspots.Rule {
	path := cfg.StaticPath("award-sweet-spots.json")
	if _, err := os.Stat(path); err != nil {
		log.Info().Msg("No sweet spot rule file, using compiled-in table")
		return sweetspots.DefaultRules()
	}
	rules, err := sweetspots.LoadRules(path)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load sweet spot rules, using compiled-in table")
		return sweetspots.DefaultRules()
	}
	log.Info().Int("rules", len(rules)).Str("path", path).Msg("Loaded sweet spot rules")
	return rules
}

func loadEdges(cfg *config.Config, log zerolog.Logger) []domain.TransferEdge {
	path := cfg.StaticPath("transfer-partners.json")
	if _, err := os.Stat(path); err != nil {
		log.Info().Msg("No transfer edge file, using compiled-in graph")
		return transfers.DefaultEdges()
	}
	edges, err := transfers.LoadEdges(path)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load transfer edges, using compiled-in graph")
		return transfers.DefaultEdges()
	}
	log.Info().Int("edges", len(edges)).Str("path", path).Msg("Loaded transfer edges")
	return edges
}

func registerJobs(sched *scheduler.Scheduler, cacheRepo *clientdata.Repository, cacheDB *database.DB, tracker *quota.Tracker, log zerolog.Logger) {
	cleanup := clientdata.NewCleanupJob(cacheRepo, log)
	if err := sched.AddJob("@daily", cleanup); err != nil {
		log.Error().Err(err).Msg("Failed to register cleanup job")
	}

	rollover := scheduler.JobFunc{JobName: "quota_rollover", Fn: tracker.RolloverCheckpoint}
	if err := sched.AddJob("@hourly", rollover); err != nil {
		log.Error().Err(err).Msg("Failed to register quota rollover job")
	}

	checkpoint := scheduler.JobFunc{JobName: "wal_checkpoint", Fn: func() {
		if err := cacheDB.WALCheckpoint("TRUNCATE"); err != nil {
			log.Error().Err(err).Msg("WAL checkpoint failed")
		}
	}}
	if err := sched.AddJob("@daily", checkpoint); err != nil {
		log.Error().Err(err).Msg("Failed to register WAL checkpoint job")
	}
}
