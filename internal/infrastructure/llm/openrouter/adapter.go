package openrouter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/llm/transport"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/prompts"
)

var (
	_ output.MappingOracle   = (*OpenRouterAdapter)(nil)
	_ output.ChallengeOracle = (*OpenRouterAdapter)(nil)
)

var errNoChoices = errors.New("no choices in response")

// OpenRouterAdapter talks to any OpenAI-compatible chat completions endpoint.
type OpenRouterAdapter struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *transport.Limiter
	logger      output.LoggerPort
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	Limiter     *transport.Limiter
	Logger      output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:      apiKey,
		Model:       model,
		BaseURL:     "https://openrouter.ai/api/v1",
		Temperature: 0.2,
		Timeout:     90 * time.Second,
	}
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = transport.NewHTTPClient(cfg.Logger)

	return &OpenRouterAdapter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		limiter:     cfg.Limiter,
		logger:      cfg.Logger,
	}
}

func (a *OpenRouterAdapter) MapFields(ctx context.Context, req *entity.MappingRequest) (string, error) {
	user, err := prompts.GenerateMappingPrompt(prompts.MappingUserTemplate, req)
	if err != nil {
		return "", fmt.Errorf("render mapping prompt: %w", err)
	}

	return a.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.MappingSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: user},
	})
}

func (a *OpenRouterAdapter) LocateClick(ctx context.Context, img *entity.ChallengeImage) (string, error) {
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", img.Format, base64.StdEncoding.EncodeToString(img.Data))

	return a.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.ChallengeSystemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: fmt.Sprintf("Puzzle image, %dx%d pixels.", img.Width, img.Height),
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	})
}

func (a *OpenRouterAdapter) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: a.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	if a.logger != nil {
		a.logger.Debug("Chat completion received",
			"model", a.model,
			"promptTokens", resp.Usage.PromptTokens,
			"completionTokens", resp.Usage.CompletionTokens,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return resp.Choices[0].Message.Content, nil
}
