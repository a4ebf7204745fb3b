package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/osse101/liveops/internal/bootstrap"
	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/concurrency"
	"github.com/osse101/liveops/internal/config"
	"github.com/osse101/liveops/internal/discord"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/economy"
	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/eventcache"
	"github.com/osse101/liveops/internal/handler"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/progress"
	"github.com/osse101/liveops/internal/recurring"
	"github.com/osse101/liveops/internal/reward"
	"github.com/osse101/liveops/internal/scheduler"
	"github.com/osse101/liveops/internal/server"
	"github.com/osse101/liveops/internal/sse"
	"github.com/osse101/liveops/internal/weather"
	"github.com/osse101/liveops/internal/worker"
)

// @title Live-Ops Events API
// @version 1.0
// @description Time-bounded game events: scheduling, player progress, rewards and live updates.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logFile.Close()

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Warn("Environment check failed, continuing with defaults", "error", err)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	if err := run(cfg); err != nil {
		slog.Error("Fatal error", "error", err)
		_ = logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}

	catalog, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		_ = store.Close()
		return err
	}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		_ = store.Close()
		return err
	}
	notifier := event.NewNotifier(publisher)
	clk := clock.NewReal()

	lc := lifecycle.NewService(store, eventcache.New(cfg.CacheSize, cfg.CacheTTL), notifier, clk)

	var econ domain.EconomyPort
	if cfg.EconomyAPIURL != "" {
		econ = economy.NewClient(cfg.EconomyAPIURL, cfg.EconomyAPIKey)
	} else {
		slog.Warn("ECONOMY_API_URL not set, rewards will be recorded but not granted")
	}
	rewards := reward.NewService(store, econ, notifier, clk)
	tracker := progress.NewService(store, rewards, notifier, concurrency.NewLockManager(), clk, progress.MergeMode(cfg.ProgressMergeMode))

	var (
		provider domain.WeatherProvider
		override handler.WeatherOverride
	)
	if cfg.WeatherEnabled() {
		provider = weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	} else {
		static := weather.NewStatic(weather.ConditionClear)
		provider, override = static, static
		slog.Info("Weather API not configured, using static provider")
	}
	rec := recurring.NewService(store, lc, provider, recurring.Location{Lat: cfg.WeatherLat, Lon: cfg.WeatherLon}, catalog, clk)

	hub := sse.NewHub()
	hub.Start()

	var (
		announcer      *discord.Announcer
		discordSession io.Closer
	)
	if cfg.DiscordEnabled() {
		session, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			slog.Warn("Discord unavailable, announcements disabled", "error", err)
		} else {
			announcer = discord.NewAnnouncer(session, cfg.DiscordChannel)
			discordSession = session
		}
	}
	bootstrap.RegisterEventHandlers(ctx, bootstrap.EventHandlerDependencies{
		EventBus:  bus,
		Hub:       hub,
		Announcer: announcer,
	})

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, cfg.JobTimeout)
	pool.Start(ctx)
	sched := scheduler.New(pool)

	components := bootstrap.ShutdownComponents{
		Scheduler:          sched,
		WorkerPool:         pool,
		Hub:                hub,
		Announcer:          announcer,
		DiscordSession:     discordSession,
		ResilientPublisher: publisher,
		Store:              store,
	}

	if err := bootstrap.StartBackgroundJobs(ctx, cfg, sched, lc, rec); err != nil {
		shutdown(components, cfg)
		return err
	}

	// Evaluate every class once so a fresh deploy does not wait a full period
	pool.Enqueue(bootstrap.SweepJob(lc))
	for _, class := range recurring.Classes {
		pool.Enqueue(bootstrap.RecurringJob(rec, class))
	}

	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit:      cfg.RateLimit,
		RateWindow:     cfg.RateWindow,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Version:        cfg.Version,
	}, server.Dependencies{
		Store:     store,
		Lifecycle: lc,
		Progress:  tracker,
		Rewards:   rewards,
		Recurring: rec,
		Hub:       hub,
		Clock:     clk,
		Weather:   override,
	})
	components.Server = srv

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err = <-errCh:
		if err != nil {
			slog.Error("Server stopped unexpectedly", "error", err)
		}
	}

	shutdown(components, cfg)
	return err
}

func shutdown(components bootstrap.ShutdownComponents, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	bootstrap.GracefulShutdown(ctx, components)
}
