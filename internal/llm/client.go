package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"telemarketing/internal/config"
	"telemarketing/internal/logger"
	"telemarketing/internal/observability"
)

// ErrEmptyCompletion is wrapped in UpstreamCallError when the provider
// answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// UpstreamCallError wraps a failed language model call. Status is the HTTP
// status returned by the provider, or 0 when the request never got a response.
type UpstreamCallError struct {
	Status int
	Err    error
}

func (e *UpstreamCallError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("llm call failed: %v", e.Err)
	}
	return fmt.Sprintf("llm call failed (status %d): %v", e.Status, e.Err)
}

func (e *UpstreamCallError) Unwrap() error { return e.Err }

// Completer sends a system and a user prompt and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client talks to any OpenAI-compatible chat completion endpoint.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	persona     string
	log         *logger.Logger
}

func New(cfg config.LLMConfig, log *logger.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		api:         openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		persona:     cfg.Persona,
		log:         log,
	}
}

// Messages assembles the chat payload: persona, then the campaign system
// prompt, then the customer prompt.
func (c *Client) Messages(system, user string) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if strings.TrimSpace(c.persona) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.persona,
		})
	}
	return append(messages,
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		},
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: user,
		},
	)
}

// Complete makes one chat completion call. There is no retry; failures come
// back as *UpstreamCallError.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := c.Messages(system, user)

	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
	}
	// ~4 characters per token
	c.log.Debug("llm request", "model", c.model, "messages", len(messages), "chars", chars, "tokens_estimate", chars/4)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	observability.LLMLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.LLMCalls.WithLabelValues("error").Inc()
		c.log.Warn("llm call failed", "model", c.model, "error", err)
		return "", &UpstreamCallError{Status: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		observability.LLMCalls.WithLabelValues("error").Inc()
		return "", &UpstreamCallError{Err: ErrEmptyCompletion}
	}

	observability.LLMCalls.WithLabelValues("ok").Inc()
	c.log.Debug("llm response", "model", c.model, "prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
