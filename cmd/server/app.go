// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/eventprocessor"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/analytics"
	"github.com/tomtom215/reelmatch/internal/recommend/compatibility"
	"github.com/tomtom215/reelmatch/internal/recommend/engine"
	"github.com/tomtom215/reelmatch/internal/recommend/preference"
	"github.com/tomtom215/reelmatch/internal/recommend/scheduler"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

// errEventsNotReady is reported by the readiness probe until the event
// router has subscribed.
var errEventsNotReady = errors.New("event router not running")

var (
	_ api.Recommender         = (*engine.Engine)(nil)
	_ api.Profiles            = (*preference.Engine)(nil)
	_ api.Compatibility       = (*compatibility.Engine)(nil)
	_ api.Batches             = (*services.BatchJobs)(nil)
	_ services.ExpiredCleaner = (*engine.Engine)(nil)
)

// app holds the wired components shared by every command.
type app struct {
	cfg    *config.Config
	rcfg   recommend.Config
	clock  recommend.Clock
	logger zerolog.Logger

	db    *database.DB
	repo  recommend.Repository
	cache cache.Store
	bus   *eventprocessor.Bus

	preferences   *preference.Engine
	compatibility *compatibility.Engine
	engine        *engine.Engine
	jobs          *services.BatchJobs
	reporter      *analytics.Reporter

	closers []func() error
}

// newApp opens the stores and wires the recommendation core. On error every
// resource opened so far is released.
//
//nolint:gocritic // logger passed by value for immutability
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		rcfg:   cfg.RecommendConfig(),
		clock:  recommend.SystemClock{},
		logger: logger,
	}
	wired := false
	defer func() {
		if !wired {
			a.Close()
		}
	}()

	var err error
	a.db, err = database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, a.db.Close)
	a.repo = database.NewCircuitBreakerRepository(a.db, breakerConfig(&cfg.Database), logger)

	profileRepo, err := a.openProfileRepository()
	if err != nil {
		return nil, err
	}

	a.cache, err = cache.New(ctx, cacheConfig(&cfg.Cache))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, a.cache.Close)

	a.bus, err = eventprocessor.NewBus(eventsConfig(&cfg.Events), a.clock, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.bus.Close)
	publisher := a.bus.Publisher()

	store := storage.NewProfileStore(profileRepo, a.repo, a.clock, logger)
	a.preferences = preference.NewEngine(a.repo, a.repo, store, a.rcfg, a.clock, logger,
		preference.WithObserver(publisher))
	a.compatibility = compatibility.NewEngine(store, a.repo, a.cache, a.rcfg, logger)

	strategies := engine.DefaultStrategies(a.repo, a.compatibility, a.cache, a.rcfg, a.clock, logger)
	a.engine = engine.NewEngine(a.repo, a.preferences, a.compatibility, strategies, a.rcfg, a.clock, logger,
		engine.WithFeedbackObserver(publisher))

	batches := scheduler.New(a.engine, a.repo, a.rcfg, scheduler.Config{
		Workers:       cfg.Scheduler.Workers,
		RatePerSecond: cfg.Scheduler.RatePerSecond,
	}, a.clock, logger)
	a.jobs = services.NewBatchJobs(batches, publisher, logger)
	a.reporter = analytics.NewReporter(a.repo, logger)

	trending, _ := strategies.Trending.(eventprocessor.TrendingInvalidator)
	a.bus.RegisterCacheInvalidation(eventprocessor.NewCacheInvalidationHandlers(a.compatibility, trending, logger))

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Str("profile_store", cfg.ProfileStore.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("events", cfg.Events.Transport).
		Msg("Application wired")
	wired = true
	return a, nil
}

// openProfileRepository selects the profile backend. DuckDB profiles go
// through the same breaker as every other query.
func (a *app) openProfileRepository() (recommend.ProfileRepository, error) {
	if a.cfg.ProfileStore.Backend != config.ProfileStoreBadger {
		return a.repo, nil
	}
	db, err := storage.OpenBadger(a.cfg.ProfileStore.BadgerPath)
	if err != nil {
		return nil, fmt.Errorf("open badger profile store: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return storage.NewBadgerProfileRepository(db), nil
}

// Close releases resources in reverse opening order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error().Err(err).Msg("Error during shutdown")
		}
	}
	a.closers = nil
}

// Serve runs the supervisor tree until ctx is canceled.
func (a *app) Serve(ctx context.Context) error {
	handler, err := a.httpHandler()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: a.cfg.Server.Timeout,
		ReadTimeout:       a.cfg.Server.Timeout,
		WriteTimeout:      a.cfg.Server.Timeout,
		IdleTimeout:       2 * a.cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddEventService(a.bus)
	tree.AddSchedulingService(services.NewGenerationService(a.jobs, a.cfg.Scheduler, a.logger))
	tree.AddSchedulingService(services.NewRefreshService(a.jobs, a.cfg.Scheduler, a.logger))
	tree.AddSchedulingService(services.NewCleanupService(a.engine, a.cfg.Scheduler, a.logger))
	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Server.ShutdownTimeout))

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	a.logger.Info().
		Str("addr", server.Addr).
		Bool("schedulers", a.cfg.Scheduler.EnableSchedulers).
		Str("version", version).
		Msg("Starting Reelmatch")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		a.logger.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if errors.Is(err, context.Canceled) {
		a.logger.Info().Msg("Shutdown complete")
		return nil
	}
	return err
}

// httpHandler builds the authenticated API router.
func (a *app) httpHandler() (http.Handler, error) {
	jwtManager, err := auth.NewJWTManager(&a.cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		PolicyPath: a.cfg.Security.CasbinPolicyPath,
		AdminRole:  a.cfg.Security.AdminRole,
	})
	if err != nil {
		return nil, fmt.Errorf("authz: %w", err)
	}

	if len(a.cfg.Security.CORSOrigins) == 1 && a.cfg.Security.CORSOrigins[0] == "*" {
		a.logger.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}
	if a.cfg.Security.RateLimitDisabled {
		a.logger.Warn().Msg("Rate limiting is disabled")
	}

	handler := api.NewHandler(api.Dependencies{
		Recommender:   a.engine,
		Profiles:      a.preferences,
		Compatibility: a.compatibility,
		Batches:       a.jobs,
		Reporter:      a.reporter,
		Readiness: []api.ReadinessCheck{
			{Name: "database", Check: a.db.Ping},
			{Name: "events", Check: a.eventsReady},
		},
	}, a.rcfg, a.clock, a.logger,
		api.WithVersion(version),
		api.WithRefreshHoursBack(a.cfg.Scheduler.RefreshHoursBack),
	)

	router := api.NewRouter(
		handler,
		auth.NewMiddleware(jwtManager, api.WriteAuthError, a.logger),
		authz.NewMiddleware(enforcer, api.WriteAuthError),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&a.cfg.Security)),
		a.logger,
	)
	return router.SetupChi(), nil
}

func (a *app) eventsReady(context.Context) error {
	select {
	case <-a.bus.Ready():
		return nil
	default:
		return errEventsNotReady
	}
}

// breakerConfig maps the database section onto the repository breaker.
func breakerConfig(cfg *config.DatabaseConfig) database.CircuitBreakerConfig {
	out := database.DefaultCircuitBreakerConfig()
	if cfg.BreakerFailureThreshold > 0 {
		out.FailureThreshold = cfg.BreakerFailureThreshold
	}
	if cfg.BreakerTimeout > 0 {
		out.Timeout = cfg.BreakerTimeout
	}
	return out
}

// cacheConfig maps the cache section onto a cache.Config.
func cacheConfig(cfg *config.CacheConfig) cache.Config {
	return cache.Config{
		Backend:       cache.Backend(cfg.Backend),
		TTL:           cfg.TTL,
		KeyPrefix:     cfg.KeyPrefix,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}
}

// eventsConfig maps the events section onto the bus configuration.
func eventsConfig(cfg *config.EventsConfig) eventprocessor.Config {
	out := eventprocessor.DefaultConfig()
	out.Transport = cfg.Transport
	if cfg.NATSURL != "" {
		out.NATSURL = cfg.NATSURL
	}
	if cfg.QueueGroup != "" {
		out.QueueGroup = cfg.QueueGroup
	}
	if cfg.CloseTimeout > 0 {
		out.CloseTimeout = cfg.CloseTimeout
	}
	return out
}
