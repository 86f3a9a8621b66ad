package campaign

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"telemarketing/internal/llm"
	"telemarketing/internal/logger"
	"telemarketing/internal/model"
	"telemarketing/internal/observability"
	"telemarketing/internal/prompt"
	"telemarketing/internal/ranking"
)

const defaultWorkers = 5

type CustomerLister interface {
	ListCampaign(ctx context.Context, campaignID string) ([]model.CustomerRecord, error)
}

type MessageStore interface {
	SaveMessage(ctx context.Context, m model.GeneratedMessage) error
}

type PromptCache interface {
	Set(ctx context.Context, campaignID, prompt string) error
}

// Summary counts the outcome of a campaign run. Skipped customers lacked
// enough drivers for a prompt.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Runner generates and stores sales guidance for every customer of a
// campaign. The global prompt is built once and shared by all workers.
type Runner struct {
	Customers CustomerLister
	Messages  MessageStore
	// Cache, when set, is refreshed with the run's global prompt.
	Cache     PromptCache
	LLM       llm.Completer
	Builder   *prompt.Builder
	TopN      int
	Workers   int
	Objective string
	Channel   string
	Logger    *logger.Logger
}

func (r *Runner) Run(ctx context.Context, campaignID string) (Summary, error) {
	log := r.Logger
	if log == nil {
		log = logger.Nop()
	}
	sum := Summary{RunID: uuid.NewString()}
	log = log.With("run_id", sum.RunID, "campaign_id", campaignID)

	batch, err := r.Customers.ListCampaign(ctx, campaignID)
	if err != nil {
		return sum, fmt.Errorf("load campaign %s: %w", campaignID, err)
	}
	sum.Total = len(batch)
	if len(batch) == 0 {
		log.Warn("campaign has no scored customers")
		return sum, nil
	}

	ranked := ranking.Rank(batch, r.TopN)
	system := r.Builder.GlobalPrompt(ranked)
	observability.PromptsBuilt.WithLabelValues("global").Inc()
	log.Info("campaign ranked", "customers", len(batch), "features", ranked)

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, campaignID, system); err != nil {
			log.Warn("prompt cache write failed", "error", err)
		}
	}

	workers := r.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	var ok, failed, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, c := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := r.process(gctx, sum.RunID, campaignID, system, c)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, prompt.ErrInsufficientDriverData):
				skipped.Add(1)
				log.Debug("customer skipped", "customer_id", c.ID, "error", err)
			default:
				failed.Add(1)
				log.Error("customer failed", "customer_id", c.ID, "error", err)
			}
			return nil
		})
	}
	err = g.Wait()

	sum.Succeeded = int(ok.Load())
	sum.Failed = int(failed.Load())
	sum.Skipped = int(skipped.Load())
	log.Info("campaign finished", "total", sum.Total, "succeeded", sum.Succeeded, "failed", sum.Failed, "skipped", sum.Skipped)
	return sum, err
}

func (r *Runner) process(ctx context.Context, runID, campaignID, system string, c model.CustomerRecord) error {
	user, err := r.Builder.CustomerPrompt(c)
	if err != nil {
		return err
	}
	observability.PromptsBuilt.WithLabelValues("customer").Inc()
	user += prompt.CampaignLine(r.Objective, r.Channel)

	answer, err := r.LLM.Complete(ctx, system, user)
	if err != nil {
		return err
	}

	return r.Messages.SaveMessage(ctx, model.GeneratedMessage{
		RequestID:   runID,
		CustomerID:  c.ID,
		CampaignID:  campaignID,
		Objective:   r.Objective,
		Channel:     r.Channel,
		Message:     answer,
		TopFeatures: prompt.TopFeatures(c.Drivers, prompt.SlotCount),
	})
}
