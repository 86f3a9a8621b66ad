package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"telemarketing/internal/bootstrap"
	"telemarketing/internal/campaign"
	"telemarketing/internal/config"
	"telemarketing/internal/db"
	"telemarketing/internal/llm"
	"telemarketing/internal/logger"
	"telemarketing/internal/observability"
	"telemarketing/internal/repository"
)

func main() {
	cfg := config.Load()

	campaignID := flag.String("campaign", cfg.CampaignID, "campaign to generate guidance for")
	objective := flag.String("objective", "upsell_data", "campaign objective (reactivation, upsell_data, loyalty)")
	channel := flag.String("channel", "call", "contact channel (sms, call, push)")
	flag.Parse()

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

	builder, err := bootstrap.Builder(ctx, cfg.Prompt, &repository.PlaybookRepository{DB: sqlDB}, log)
	if err != nil {
		log.Fatal("invalid prompt configuration", "error", err)
	}

	redisClient := bootstrap.Redis(cfg)
	defer redisClient.Close()

	customers := &repository.CustomerRepository{DB: pool}
	runner := &campaign.Runner{
		Customers: customers,
		Messages:  customers,
		Cache:     &repository.PromptCache{Client: redisClient, TTL: cfg.Prompt.CacheTTL},
		LLM:       llm.New(cfg.LLM, log),
		Builder:   builder,
		TopN:      cfg.Prompt.TopN,
		Workers:   cfg.WorkerCount,
		Objective: *objective,
		Channel:   *channel,
		Logger:    log,
	}

	sum, err := runner.Run(ctx, *campaignID)
	if err != nil {
		log.Fatal("campaign run failed", "campaign_id", *campaignID, "error", err)
	}
	log.Info("campaign run complete", "run_id", sum.RunID, "succeeded", sum.Succeeded, "failed", sum.Failed, "skipped", sum.Skipped)
}
