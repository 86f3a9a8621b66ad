package assistant

import (
	"context"

	"github.com/google/uuid"

	"telemarketing/internal/llm"
	"telemarketing/internal/logger"
	"telemarketing/internal/model"
	"telemarketing/internal/observability"
	"telemarketing/internal/prompt"
	"telemarketing/internal/ranking"
	"telemarketing/internal/rules"
)

type CustomerStore interface {
	Get(ctx context.Context, customerID string) (model.CustomerRecord, error)
	ListCampaign(ctx context.Context, campaignID string) ([]model.CustomerRecord, error)
}

type PromptCache interface {
	Get(ctx context.Context, campaignID string) (string, bool, error)
	Set(ctx context.Context, campaignID, prompt string) error
}

type MessageStore interface {
	SaveMessage(ctx context.Context, m model.GeneratedMessage) error
}

// ExplainRequest asks for guidance for one customer. Objective and channel are
// free-form (e.g. "reactivation", "upsell_data", "loyalty"; "sms", "call",
// "push") and are passed through to the prompt.
type ExplainRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Objective  string `json:"objective" validate:"required"`
	Channel    string `json:"channel" validate:"required"`
}

type ExplainResponse struct {
	CustomerID       string               `json:"customer_id"`
	RequestID        string               `json:"request_id"`
	GeneratedMessage string               `json:"generated_message"`
	TopFeatures      []model.DriverRecord `json:"top_features"`
	PricingBand      string               `json:"pricing_band,omitempty"`
	Eligible         *bool                `json:"eligible,omitempty"`
}

// Prompts is the pair of texts sent to the language model for one customer.
type Prompts struct {
	CustomerID string `json:"customer_id"`
	CampaignID string `json:"campaign_id"`
	System     string `json:"system"`
	User       string `json:"user"`
}

type Options struct {
	Customers CustomerStore
	// Cache and Messages are optional.
	Cache     PromptCache
	Messages  MessageStore
	LLM       llm.Completer
	Builder   *prompt.Builder
	TopN      int
	ARPUField string
	// DefaultCampaign is used for customers scored without a campaign id.
	DefaultCampaign string
	Logger          *logger.Logger
}

type Service struct {
	customers       CustomerStore
	cache           PromptCache
	messages        MessageStore
	llm             llm.Completer
	builder         *prompt.Builder
	topN            int
	arpuField       string
	defaultCampaign string
	log             *logger.Logger
}

func NewService(o Options) *Service {
	if o.Builder == nil {
		o.Builder = &prompt.Builder{RankDrivers: true}
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.TopN < 1 {
		o.TopN = ranking.DefaultTopN
	}
	if o.DefaultCampaign == "" {
		o.DefaultCampaign = "default"
	}
	return &Service{
		customers:       o.Customers,
		cache:           o.Cache,
		messages:        o.Messages,
		llm:             o.LLM,
		builder:         o.Builder,
		topN:            o.TopN,
		arpuField:       o.ARPUField,
		defaultCampaign: o.DefaultCampaign,
		log:             o.Logger,
	}
}

// Explain builds both prompts for a customer, asks the language model for the
// sales guidance and returns it with the customer's strongest drivers.
func (s *Service) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID, "customer_id", req.CustomerID)

	p, c, err := s.prompts(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	user := p.User + prompt.CampaignLine(req.Objective, req.Channel)

	answer, err := s.llm.Complete(ctx, p.System, user)
	if err != nil {
		log.Error("generation failed", "error", err)
		return nil, err
	}

	resp := &ExplainResponse{
		CustomerID:       c.ID,
		RequestID:        requestID,
		GeneratedMessage: answer,
		TopFeatures:      prompt.TopFeatures(c.Drivers, prompt.SlotCount),
	}
	s.applyPricing(resp, c)

	if s.messages != nil {
		err := s.messages.SaveMessage(ctx, model.GeneratedMessage{
			RequestID:   requestID,
			CustomerID:  c.ID,
			CampaignID:  p.CampaignID,
			Objective:   req.Objective,
			Channel:     req.Channel,
			Message:     answer,
			TopFeatures: resp.TopFeatures,
		})
		if err != nil {
			log.Warn("failed to persist message", "error", err)
		}
	}

	log.Info("guidance generated", "campaign_id", p.CampaignID, "pricing_band", resp.PricingBand)
	return resp, nil
}

// Prompts returns the system and user prompts for a customer without calling
// the language model.
func (s *Service) Prompts(ctx context.Context, customerID string) (*Prompts, error) {
	p, _, err := s.prompts(ctx, customerID)
	return p, err
}

func (s *Service) prompts(ctx context.Context, customerID string) (*Prompts, model.CustomerRecord, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, model.CustomerRecord{}, err
	}

	campaignID := c.CampaignID
	if campaignID == "" {
		campaignID = s.defaultCampaign
	}

	system, err := s.GlobalPrompt(ctx, campaignID)
	if err != nil {
		return nil, c, err
	}

	user, err := s.builder.CustomerPrompt(c)
	if err != nil {
		return nil, c, err
	}
	observability.PromptsBuilt.WithLabelValues("customer").Inc()

	return &Prompts{CustomerID: c.ID, CampaignID: campaignID, System: system, User: user}, c, nil
}

// GlobalPrompt returns the campaign's system prompt, ranking the campaign
// batch when it is not cached. Cache failures are logged and bypassed.
func (s *Service) GlobalPrompt(ctx context.Context, campaignID string) (string, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, campaignID)
		switch {
		case err != nil:
			s.log.Warn("prompt cache read failed", "campaign_id", campaignID, "error", err)
		case ok:
			observability.PromptCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
		observability.PromptCache.WithLabelValues("miss").Inc()
	}

	batch, err := s.customers.ListCampaign(ctx, campaignID)
	if err != nil {
		return "", err
	}
	ranked := ranking.Rank(batch, s.topN)
	system := s.builder.GlobalPrompt(ranked)
	observability.PromptsBuilt.WithLabelValues("global").Inc()
	s.log.Debug("global prompt built", "campaign_id", campaignID, "customers", len(batch), "features", len(ranked))

	if s.cache != nil {
		if err := s.cache.Set(ctx, campaignID, system); err != nil {
			s.log.Warn("prompt cache write failed", "campaign_id", campaignID, "error", err)
		}
	}
	return system, nil
}

func (s *Service) applyPricing(resp *ExplainResponse, c model.CustomerRecord) {
	if s.arpuField == "" {
		return
	}
	arpu, ok := c.NumericAttribute(s.arpuField)
	if !ok {
		return
	}
	policy := s.builder.Policy
	if len(policy.Bands) == 0 {
		policy = rules.Default()
	}
	eligible := policy.Eligible(arpu)
	resp.Eligible = &eligible
	if band, ok := policy.BandFor(arpu); ok {
		resp.PricingBand = band.Code
	}
}
