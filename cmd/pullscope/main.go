// Command pullscope runs the report orchestration engine behind an HTTP
// surface: OAuth2 token management, paginated report fetching, a
// deduplicating snapshot cache, a bounded job queue, and the analyzer
// family, wired together per SPEC_FULL.md.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/pullscope/pullscope/pkg/api"
	"github.com/pullscope/pullscope/pkg/cache"
	"github.com/pullscope/pullscope/pkg/config"
	"github.com/pullscope/pullscope/pkg/orchestrator"
	"github.com/pullscope/pullscope/pkg/queue"
	"github.com/pullscope/pullscope/pkg/report"
	"github.com/pullscope/pullscope/pkg/wowapi"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	configPath := flag.String("config", "", "optional YAML tunables overlay")
	envPath := flag.String("env-file", ".env", "optional .env file with credentials")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load env file", "path", *envPath, "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tokens := wowapi.NewTokenManager(cfg.ClientID, cfg.ClientSecret, cfg.BaseURL, cfg.RefreshMargin, logger)
	client := wowapi.NewClient(cfg.BaseURL, tokens, cfg.HTTPTimeout, logger)
	fetcher := report.NewFetcher(client, cfg.MaxInflightPerJob, logger)
	snapshotCache := cache.New(cfg.CacheCapacity, cfg.CacheTTL)
	pool := queue.NewPool(cfg.MaxConcurrentReports, cfg.JobTimeout, cfg.CompletedJobTTL, logger)
	defer pool.Close()

	orch := orchestrator.New(cfg, fetcher, snapshotCache, pool, logger)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(orch, logger)

	srv := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	go func() {
		logger.Info("listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
