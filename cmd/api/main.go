package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ec-simulator/internal/api"
	"ec-simulator/internal/cache"
	"ec-simulator/internal/config"
	"ec-simulator/internal/insight"
	"ec-simulator/internal/logger"
	"ec-simulator/internal/metrics"
	"ec-simulator/internal/simulation"
)

func main() {
	cfg, err := config.LoadServer(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "ec-simulator-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		simCache  simulation.Cache
		snapCache insight.SnapshotCache
	)
	if cfg.RedisURL != "" {
		client, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Error(ctx, "redis.connect_failed", err)
			os.Exit(1)
		}
		defer client.Close()
		simCache = cache.NewRedis[*simulation.Result](client, "simulation", cfg.CacheTTL, log)
		snapCache = cache.NewRedis[*insight.Snapshot](client, "snapshot", insight.SnapshotTTL, log)
		log.Info(ctx, "cache.redis")
	} else {
		results := cache.NewMemory[*simulation.Result](cfg.CacheTTL).WithMaxEntries(cfg.CacheMaxEntries)
		snapshots := cache.NewMemory[*insight.Snapshot](insight.SnapshotTTL)
		go results.Janitor(ctx, time.Minute)
		go snapshots.Janitor(ctx, time.Minute)
		simCache, snapCache = results, snapshots
		log.Info(ctx, "cache.memory")
	}

	seed := cfg.MockSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	router := api.NewRouter(api.Deps{
		Log:               log,
		Metrics:           m,
		Gatherer:          reg,
		Runner:            simulation.NewMemoized(simulation.New(), simCache),
		Source:            insight.NewCachedSource(insight.NewMockSource(seed), snapCache),
		Completer:         insight.NewGeminiClient(cfg.GeminiBaseURL, cfg.CompletionTimeout, log),
		CompletionTimeout: cfg.CompletionTimeout,
		PresetDir:         cfg.PresetDir,
		StaticDir:         cfg.StaticDir,
		CORSOrigins:       cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server.shutdown_failed", err)
		}
	}()

	log.Info(log.WithFields(ctx, map[string]any{
		"addr":       srv.Addr,
		"env":        cfg.Env,
		"preset_dir": cfg.PresetDir,
	}), "server.start")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "server.failed", err)
		os.Exit(1)
	}
	log.Info(ctx, "server.stopped")
}
