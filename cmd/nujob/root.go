package main

import (
	"github.com/spf13/cobra"

	"github.com/AnthonySaldana/nujob/internal/di"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/env"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nujob",
		Short:         "Fill and submit job applications in a real browser.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newApplyCmd(), newProfileCmd())
	return root
}

// configFromEnv reads the process configuration; flags override it later.
func configFromEnv(e *env.EnvService) di.Config {
	provider := e.GetWithDefault("ORACLE_PROVIDER", di.ProviderOpenRouter)

	cfg := di.Config{
		Provider:      provider,
		OracleTimeout: e.GetDuration("ORACLE_TIMEOUT", 0),
		OracleRPS:     e.GetFloat("ORACLE_RPS", 1),

		BrowserHeadless: e.GetBool("BROWSER_HEADLESS", false),
		BrowserStealth:  e.GetBool("BROWSER_STEALTH", true),
		BrowserBin:      e.Get("BROWSER_BIN"),
		NavTimeout:      e.GetDuration("NAV_TIMEOUT", 0),
		ElementTimeout:  e.GetDuration("ELEMENT_TIMEOUT", 0),

		ProfilePath: e.Get("PROFILE_PATH"),
		SitesPath:   e.Get("SITES_PATH"),
		ArtifactDir: e.GetWithDefault("ARTIFACT_DIR", "artifacts"),

		LogDir:   e.GetWithDefault("LOG_DIR", "log"),
		LogLevel: e.GetWithDefault("LOG_LEVEL", "info"),
	}

	switch provider {
	case di.ProviderGemini:
		cfg.APIKey = e.Get("GEMINI_API_KEY")
		cfg.Model = e.GetWithDefault("GEMINI_MODEL", "gemini-2.0-flash")
		cfg.BaseURL = e.Get("GEMINI_BASE_URL")
	case di.ProviderOpenAI:
		cfg.APIKey = e.Get("OPENAI_API_KEY")
		cfg.Model = e.GetWithDefault("OPENAI_MODEL", "gpt-4o")
		cfg.BaseURL = e.Get("OPENAI_BASE_URL")
	default:
		cfg.APIKey = e.Get("OPENROUTER_API_KEY")
		cfg.Model = e.GetWithDefault("OPENROUTER_MODEL_NAME", "openai/gpt-4o")
		cfg.BaseURL = e.Get("OPENROUTER_BASE_URL")
	}
	return cfg
}
