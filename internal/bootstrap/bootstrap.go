package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"

	"telemarketing/internal/config"
	"telemarketing/internal/logger"
	"telemarketing/internal/model"
	"telemarketing/internal/prompt"
	"telemarketing/internal/rules"
)

type PlaybookLoader interface {
	Load(ctx context.Context) (model.FeaturePlaybook, error)
}

// Policy loads RULES_FILE when set, otherwise the default pricing policy.
func Policy(cfg config.PromptConfig) (rules.Policy, error) {
	if cfg.RulesFile == "" {
		return rules.Default(), nil
	}
	return rules.Load(cfg.RulesFile)
}

// Builder assembles the prompt builder from configuration. A playbook that
// cannot be loaded is logged and replaced by the generic description.
func Builder(ctx context.Context, cfg config.PromptConfig, books PlaybookLoader, log *logger.Logger) (*prompt.Builder, error) {
	if log == nil {
		log = logger.Nop()
	}
	policy, err := Policy(cfg)
	if err != nil {
		return nil, err
	}

	b := prompt.NewBuilder(policy)
	b.RulesText = cfg.RulesText
	b.ContextFields = cfg.ContextFields
	b.NameField = cfg.NameField
	b.RankDrivers = cfg.RankDrivers
	b.MinDrivers = cfg.MinDrivers

	if books != nil {
		book, err := books.Load(ctx)
		if err != nil {
			log.Warn("playbook unavailable, using generic descriptions", "error", err)
		} else {
			b.Playbook = book
			log.Info("playbook loaded", "features", len(book))
		}
	}
	return b, nil
}

func Redis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
}
