// Package gemini implements both oracles on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/llm/transport"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/prompts"
)

var (
	_ output.MappingOracle   = (*Adapter)(nil)
	_ output.ChallengeOracle = (*Adapter)(nil)
)

var errNoCandidates = errors.New("no candidates in response")

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
		Temperature: 0.2,
		Timeout:     90 * time.Second,
	}
}

type Adapter struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *transport.Limiter
	logger      output.LoggerPort
}

func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: transport.NewHTTPClient(cfg.Logger),
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Adapter{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		limiter:     cfg.Limiter,
		logger:      cfg.Logger,
	}, nil
}

func (a *Adapter) MapFields(ctx context.Context, req *entity.MappingRequest) (string, error) {
	user, err := prompts.GenerateMappingPrompt(prompts.MappingUserTemplate, req)
	if err != nil {
		return "", fmt.Errorf("render mapping prompt: %w", err)
	}
	return a.generate(ctx, prompts.MappingSystemPrompt, genai.NewPartFromText(user))
}

func (a *Adapter) LocateClick(ctx context.Context, img *entity.ChallengeImage) (string, error) {
	return a.generate(ctx, prompts.ChallengeSystemPrompt,
		genai.NewPartFromText(fmt.Sprintf("Puzzle image, %dx%d pixels.", img.Width, img.Height)),
		genai.NewPartFromBytes(img.Data, "image/"+img.Format),
	)
}

func (a *Adapter) generate(ctx context.Context, system string, parts ...*genai.Part) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(a.temperature),
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}

	if a.logger != nil {
		a.logger.Debug("Gemini response received",
			"model", a.model,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return resp.Text(), nil
}
