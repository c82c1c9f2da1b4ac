// Package site holds the per-provider configuration the shared fill engine
// needs: where the form is, what to click before it shows, and how to submit.
package site

import (
	"context"
	"net/url"
	"strings"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/usecase/humanize"
)

// Rule picks a selector by URL substring. An empty Match always applies.
type Rule struct {
	Match    string `yaml:"match"`
	Selector string `yaml:"selector"`
}

// Step is a hover-then-click performed before the form is collected.
type Step struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
	// Match limits the step to URLs containing it.
	Match string `yaml:"match"`
	// Unless skips the step on URLs containing it.
	Unless string `yaml:"unless"`
}

func (s Step) appliesTo(rawURL string) bool {
	if s.Match != "" && !strings.Contains(rawURL, s.Match) {
		return false
	}
	return s.Unless == "" || !strings.Contains(rawURL, s.Unless)
}

type Adapter struct {
	Name              string   `yaml:"name"`
	Hosts             []string `yaml:"hosts"`
	Readiness         []Rule   `yaml:"readiness"`
	PreSteps          []Step   `yaml:"preSteps"`
	FormSelector      string   `yaml:"form"`
	SubmitSelector    string   `yaml:"submit"`
	ChallengeSelector string   `yaml:"challenge"`
}

// ReadinessSelector returns the selector of the first matching rule.
func (a Adapter) ReadinessSelector(rawURL string) string {
	for _, r := range a.Readiness {
		if r.Match == "" || strings.Contains(rawURL, r.Match) {
			return r.Selector
		}
	}
	return "form"
}

func (a Adapter) servesHost(host string) bool {
	for _, h := range a.Hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// RunPreSteps performs the adapter's pre-form steps for rawURL. Missing or
// failing steps are logged and passed over; it returns how many completed.
func RunPreSteps(ctx context.Context, page output.Page, a Adapter, rawURL string, model *humanize.Model, logger output.LoggerPort) int {
	done := 0
	for _, step := range a.PreSteps {
		if !step.appliesTo(rawURL) {
			continue
		}
		log := logger.WithFields(map[string]any{"step": step.Name, "selector": step.Selector})

		ok, err := page.Exists(ctx, step.Selector)
		if err != nil || !ok {
			log.Debug("Pre-step target absent", "error", err)
			continue
		}
		if err := page.Hover(ctx, step.Selector); err != nil {
			log.Warn("Pre-step hover failed", "error", err)
			continue
		}
		model.PauseHover()
		if err := page.Click(ctx, step.Selector); err != nil {
			log.Warn("Pre-step click failed", "error", err)
			continue
		}
		model.PauseSettle()
		log.Info("Pre-step done")
		done++
	}
	return done
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
