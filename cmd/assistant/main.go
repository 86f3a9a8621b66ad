package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telemarketing/internal/assistant"
	"telemarketing/internal/bootstrap"
	"telemarketing/internal/config"
	"telemarketing/internal/db"
	"telemarketing/internal/llm"
	"telemarketing/internal/logger"
	"telemarketing/internal/observability"
	"telemarketing/internal/repository"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observability.Start(cfg.MetricsPort)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres unavailable", "error", err)
	}
	defer pool.Close()

	sqlDB, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres unavailable", "error", err)
	}
	defer sqlDB.Close()

	customers := &repository.CustomerRepository{DB: pool}
	builder, err := bootstrap.Builder(ctx, cfg.Prompt, &repository.PlaybookRepository{DB: sqlDB}, log)
	if err != nil {
		log.Fatal("invalid prompt configuration", "error", err)
	}

	redisClient := bootstrap.Redis(cfg)
	defer redisClient.Close()

	svc := assistant.NewService(assistant.Options{
		Customers:       customers,
		Cache:           &repository.PromptCache{Client: redisClient, TTL: cfg.Prompt.CacheTTL},
		Messages:        customers,
		LLM:             llm.New(cfg.LLM, log),
		Builder:         builder,
		TopN:            cfg.Prompt.TopN,
		ARPUField:       cfg.Prompt.ARPUField,
		DefaultCampaign: cfg.CampaignID,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           assistant.NewRouter(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("assistant listening", "port", cfg.HTTPPort, "model", cfg.LLM.Model)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", "error", err)
	}
}
