// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mediashelf/internal/achievement"
	"github.com/tomtom215/mediashelf/internal/api"
	"github.com/tomtom215/mediashelf/internal/audit"
	"github.com/tomtom215/mediashelf/internal/cache"
	"github.com/tomtom215/mediashelf/internal/catalog"
	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/delta"
	"github.com/tomtom215/mediashelf/internal/entries"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/supervisor"
	"github.com/tomtom215/mediashelf/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Mediashelf")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ACHIEVEMENT CATALOG ===
	registry, err := achievement.NewRegistry(achievement.DefaultCatalog())
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid achievement catalog")
	}
	if cfg.Achievements.SeedOnStartup {
		reports, err := achievement.NewSeeder(db, registry, logging.Logger()).Seed(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed achievement catalog")
		}
		for _, r := range reports {
			logging.Debug().
				Str("category", string(r.Category)).
				Int("achievements_created", r.AchievementsCreated).
				Int("achievements_updated", r.AchievementsUpdated).
				Int("achievements_deleted", r.AchievementsDeleted).
				Int("tiers_created", r.TiersCreated).
				Int("tiers_deleted", r.TiersDeleted).
				Msg("Achievement catalog reconciled")
		}
	}
	// Every persisted achievement needs a strategy before any pass can run.
	persisted, err := db.ListAchievements(ctx, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load achievement catalog")
	}
	if err := registry.Validate(persisted); err != nil {
		logging.Fatal().Err(err).Msg("Persisted achievements have no strategy; enable seed_on_startup or fix the catalog")
	}
	logging.Info().Int("achievements", len(persisted)).Msg("Achievement catalog ready")

	updater := achievement.NewUpdater(db, registry, cfg.Achievements.TierTimeout, logging.Logger())

	// === READ CACHE ===
	readCache := cache.New(&cfg.Cache)
	if readCache != nil {
		logging.Info().Int("capacity", cfg.Cache.Capacity).Dur("ttl", cfg.Cache.TTL).Msg("Read cache enabled")
	}

	// === MEDIA CATALOG ===
	calculators := delta.NewRegistry()
	mediaStore := entries.NewMediaStore(db, calculators, logging.Logger())
	if readCache != nil {
		mediaStore.SetInvalidator(readCache)
	}
	var remote *catalog.RemoteClient
	var resolver *catalog.Resolver
	if cfg.Catalog.RemoteEnabled {
		remote = catalog.NewRemoteClient(&cfg.Catalog)
		resolver = catalog.NewResolver(mediaStore, remote, logging.Logger())
		logging.Info().Str("url", cfg.Catalog.RemoteURL).Msg("Remote metadata catalog enabled")
	} else {
		resolver = catalog.NewResolver(mediaStore, nil, logging.Logger())
		logging.Info().Msg("Remote metadata catalog disabled, media must be registered locally")
	}

	// === LIST MUTATIONS ===
	entriesSvc := entries.NewService(db, calculators, resolver, logging.Logger())
	if readCache != nil {
		entriesSvc.SetInvalidator(readCache)
	}

	// === EVENT PIPELINE ===
	var invalidator interface{ InvalidateUser(string) }
	if readCache != nil {
		invalidator = readCache
	}
	messaging, err := InitMessaging(&cfg.Messaging, updater, invalidator)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize messaging")
	}
	defer messaging.Close()
	if messaging != nil {
		entriesSvc.SetPublisher(messaging.Publisher)
	}

	// === AUDIT TRAIL ===
	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		auditStore := audit.NewDuckDBStore(db.Conn())
		if err := auditStore.CreateTable(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create audit table")
		}
		auditLog = audit.NewLogger(auditStore, &cfg.Audit)
		defer func() {
			if err := auditLog.Close(); err != nil {
				logging.Error().Err(err).Msg("Error flushing audit log")
			}
		}()
		logging.Info().Int("retention_days", cfg.Audit.RetentionDays).Msg("Audit trail enabled")
	}

	// === HTTP API ===
	handler := api.NewHandler(db, entriesSvc, updater, resolver, readCache)
	if remote != nil {
		handler.SetRemoteCatalog(remote)
	}
	handler.SetAuditLogger(auditLog)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (security.rate_limit_disabled=true)")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if messaging != nil {
		tree.AddMessagingService(services.NewConsumerService(messaging.Consumer, cfg.Messaging.CloseTimeout, logging.Logger()))
		logging.Info().Msg("Event consumer added to supervisor tree")
	}

	if cfg.Achievements.RecomputeEnabled {
		var achievementCache services.AchievementInvalidator
		if readCache != nil {
			achievementCache = readCache
		}
		tree.AddJobService(services.NewRecomputeService(updater, achievementCache, services.RecomputeServiceConfig{
			RunOnStartup: cfg.Achievements.RecomputeOnStartup,
			Interval:     cfg.Achievements.RecomputeInterval,
		}, logging.Logger()))
		logging.Info().Dur("interval", cfg.Achievements.RecomputeInterval).Msg("Achievement recompute scheduled")
	}

	if readCache != nil {
		tree.AddJobService(services.NewCacheJanitorService(readCache, cfg.Cache.TTL, logging.Logger()))
	}

	if auditLog != nil {
		tree.AddJobService(services.NewAuditRetentionService(auditLog, cfg.Audit.CleanupInterval, logging.Logger()))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}
