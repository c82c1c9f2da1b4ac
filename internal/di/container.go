package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/artifacts"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/browser/rod"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/browser/rodwrapper"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/llm/gemini"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/llm/openrouter"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/llm/transport"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/logger"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/profile"
	"github.com/AnthonySaldana/nujob/internal/usecase/mapping"
	"github.com/AnthonySaldana/nujob/internal/usecase/orchestrator"
	"github.com/AnthonySaldana/nujob/internal/usecase/site"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

type Container struct {
	Logger   output.LoggerPort
	Profiles output.ProfileStore
	Applier  *orchestrator.UseCase
}

type Config struct {
	Provider      string
	APIKey        string
	Model         string
	BaseURL       string
	OracleTimeout time.Duration
	OracleRPS     float64

	BrowserHeadless bool
	BrowserStealth  bool
	BrowserBin      string
	NavTimeout      time.Duration
	ElementTimeout  time.Duration

	DryRun bool
	// UniqueArtifacts is set for concurrent batches; see orchestrator.Config.
	UniqueArtifacts bool
	ProfilePath     string
	SitesPath       string
	ArtifactDir     string

	LogDir   string
	LogLevel string
	LogName  string
	// Console receives human-readable log lines; nil keeps logs in the file only.
	Console io.Writer
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	logCfg := logger.DefaultConfig(cfg.LogName)
	logCfg.Dir = cfg.LogDir
	logCfg.Level = cfg.LogLevel
	logCfg.Console = cfg.Console
	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	mapper, solver, err := newOracles(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	sites := site.DefaultRegistry()
	if cfg.SitesPath != "" {
		data, err := os.ReadFile(cfg.SitesPath)
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("read site adapters: %w", err)
		}
		extra, err := site.ParseAdapters(data)
		if err != nil {
			log.Close()
			return nil, err
		}
		sites.Register(extra...)
		log.Info("Site adapters loaded", "path", cfg.SitesPath, "count", len(extra))
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browserCfg.Stealth = cfg.BrowserStealth
	browserCfg.Bin = cfg.BrowserBin
	if cfg.ElementTimeout > 0 {
		browserCfg.ElementTimeout = cfg.ElementTimeout
	}
	browsers := rod.NewFactory(browserCfg, log)

	ucCfg := orchestrator.DefaultConfig()
	ucCfg.DryRun = cfg.DryRun
	ucCfg.UniqueArtifacts = cfg.UniqueArtifacts
	if cfg.NavTimeout > 0 {
		ucCfg.NavTimeout = cfg.NavTimeout
	}

	clean := func(raw string) string {
		return rodwrapper.CleanSnapshot(raw, nil)
	}

	uc := orchestrator.New(
		ucCfg,
		browsers,
		sites,
		mapping.NewClient(mapper, log),
		solver,
		artifacts.NewStore(cfg.ArtifactDir),
		clean,
		log,
	)

	log.Info("Container ready",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"headless", cfg.BrowserHeadless,
		"dryRun", cfg.DryRun,
	)

	return &Container{
		Logger:   log,
		Profiles: profile.NewStore(cfg.ProfilePath),
		Applier:  uc,
	}, nil
}

// newOracles builds one client serving both oracles. All runs of the
// process share its rate limiter.
func newOracles(ctx context.Context, cfg Config, log output.LoggerPort) (output.MappingOracle, output.ChallengeOracle, error) {
	limiter := transport.NewLimiter(cfg.OracleRPS)

	switch cfg.Provider {
	case ProviderGemini:
		gcfg := gemini.DefaultConfig(cfg.APIKey, cfg.Model)
		gcfg.BaseURL = cfg.BaseURL
		gcfg.Limiter = limiter
		gcfg.Logger = log
		if cfg.OracleTimeout > 0 {
			gcfg.Timeout = cfg.OracleTimeout
		}
		client, err := gemini.NewAdapter(ctx, gcfg)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil

	case ProviderOpenRouter, ProviderOpenAI, "":
		ocfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
		if cfg.Provider == ProviderOpenAI {
			ocfg.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.BaseURL != "" {
			ocfg.BaseURL = cfg.BaseURL
		}
		ocfg.Limiter = limiter
		ocfg.Logger = log
		if cfg.OracleTimeout > 0 {
			ocfg.Timeout = cfg.OracleTimeout
		}
		client := openrouter.NewOpenRouterAdapter(ocfg)
		return client, client, nil
	}

	return nil, nil, fmt.Errorf("unsupported oracle provider: %s. Supported: %s, %s, %s",
		cfg.Provider, ProviderOpenRouter, ProviderOpenAI, ProviderGemini)
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
