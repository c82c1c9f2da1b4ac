// Package orchestrator runs one application end to end: browser session,
// site adapter, field collection, mapping, fill and submission.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AnthonySaldana/nujob/internal/application/port/input"
	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/usecase/challenge"
	"github.com/AnthonySaldana/nujob/internal/usecase/collector"
	"github.com/AnthonySaldana/nujob/internal/usecase/filler"
	"github.com/AnthonySaldana/nujob/internal/usecase/humanize"
	"github.com/AnthonySaldana/nujob/internal/usecase/mapping"
	"github.com/AnthonySaldana/nujob/internal/usecase/site"
)

var _ input.Applier = (*UseCase)(nil)

type Config struct {
	NavTimeout   time.Duration
	ReadyTimeout time.Duration
	// DryRun fills the form and captures it but never clicks submit.
	DryRun bool
	// UniqueArtifacts suffixes artifact names with the run id so concurrent
	// runs on URLs sharing a last path segment do not overwrite each other.
	UniqueArtifacts bool

	Collector collector.Config
	Executor  filler.Config
	Challenge challenge.Config
	Timing    humanize.Timing

	// Sleep replaces time.Sleep for pacing waits.
	Sleep func(time.Duration)
	// Seed returns the random seed for a run's timing model.
	Seed func() int64
}

func DefaultConfig() Config {
	return Config{
		NavTimeout:   30 * time.Second,
		ReadyTimeout: 10 * time.Second,
		Collector:    collector.DefaultConfig(),
		Executor:     filler.DefaultConfig(),
		Challenge:    challenge.DefaultConfig(),
		Timing:       humanize.DefaultTiming(),
	}
}

type UseCase struct {
	cfg       Config
	browsers  output.BrowserFactory
	sites     *site.Registry
	mapper    *mapping.Client
	solver    output.ChallengeOracle
	artifacts output.ArtifactStore
	clean     collector.Cleaner
	logger    output.LoggerPort
}

func New(
	cfg Config,
	browsers output.BrowserFactory,
	sites *site.Registry,
	mapper *mapping.Client,
	solver output.ChallengeOracle,
	artifacts output.ArtifactStore,
	clean collector.Cleaner,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		cfg:       cfg,
		browsers:  browsers,
		sites:     sites,
		mapper:    mapper,
		solver:    solver,
		artifacts: artifacts,
		clean:     clean,
		logger:    logger,
	}
}

// Apply runs one application. Field-level problems are counted in the
// report; navigation and submission failures are returned as errors after
// the browser session is closed. The result is returned in both cases.
func (uc *UseCase) Apply(ctx context.Context, jobURL string, profile *entity.ApplicantProfile) (*entity.RunResult, error) {
	start := time.Now()
	adapter := uc.sites.Resolve(jobURL)
	result := &entity.RunResult{
		RunID:  uuid.NewString(),
		URL:    jobURL,
		Site:   adapter.Name,
		Status: entity.RunFailed,
	}
	log := uc.logger.WithFields(map[string]any{
		"run_id": result.RunID,
		"url":    jobURL,
		"site":   adapter.Name,
	})

	fail := func(err error) (*entity.RunResult, error) {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		log.Error("Run failed", "error", err, "kind", fmt.Sprint(apperr.KindOf(err)))
		return result, err
	}

	if profile == nil {
		return fail(errors.New("no applicant profile"))
	}

	session, err := uc.browsers.NewSession(ctx)
	if err != nil {
		return fail(fmt.Errorf("open browser session: %w", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Browser session close failed", "error", err)
		}
	}()
	page := session.Page()

	model := uc.newModel()
	name := ArtifactName(jobURL)
	if uc.cfg.UniqueArtifacts {
		name += "-" + result.RunID[:8]
	}
	log.Info("Run started", "artifact", name)

	if err := uc.open(ctx, page, adapter, jobURL, model, log); err != nil {
		return fail(err)
	}

	coll, err := collector.New(uc.cfg.Collector, uc.clean, log).Collect(ctx, page, adapter.FormSelector)
	if err != nil {
		return fail(fmt.Errorf("collect fields: %w", err))
	}

	mapped, err := uc.mapper.RequestMapping(ctx, coll.Fields, coll.FormSnapshot, profile)
	if err != nil {
		log.Warn("Mapping reply unusable, passing fields through", "error", err)
		mapped = &mapping.Result{Mappings: mapping.Passthrough(coll.Fields), Degraded: true}
	}
	result.Degraded = mapped.Degraded

	ccfg := uc.cfg.Challenge
	if adapter.ChallengeSelector != "" {
		ccfg.ContainerSelector = adapter.ChallengeSelector
		ccfg.FrameSelector = ""
	}
	monitor := challenge.NewMonitor(ccfg, uc.solver, uc.artifacts, model, log)
	executor := filler.NewExecutor(uc.cfg.Executor, monitor, uc.artifacts, model, log)

	result.Report = executor.Execute(ctx, page, mapped.Mappings, name)

	if uc.cfg.DryRun {
		model.PauseSettle()
		result.Screenshot = executor.Capture(ctx, page, name)
	} else {
		shot, err := executor.Submit(ctx, page, adapter.SubmitSelector, name)
		result.Screenshot = shot
		if err != nil {
			return fail(err)
		}
		result.Submitted = true
	}

	result.Status = entity.RunCompleted
	result.Duration = time.Since(start)
	log.Info("Run completed",
		"attempted", result.Report.Attempted,
		"skipped", result.Report.Skipped,
		"failed", result.Report.Failed,
		"degraded", result.Degraded,
		"submitted", result.Submitted,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// open navigates, runs the adapter's pre-steps and waits for the form.
func (uc *UseCase) open(ctx context.Context, page output.Page, adapter site.Adapter, jobURL string, model *humanize.Model, log output.LoggerPort) error {
	navCtx, cancel := context.WithTimeout(ctx, uc.cfg.NavTimeout)
	err := page.Navigate(navCtx, jobURL)
	cancel()
	if err != nil {
		return apperr.New(apperr.ErrNavigation, "navigate", err)
	}

	site.RunPreSteps(ctx, page, adapter, jobURL, model, log)

	ready := adapter.ReadinessSelector(jobURL)
	if err := page.WaitVisible(ctx, ready, uc.cfg.ReadyTimeout); err != nil {
		return apperr.New(apperr.ErrNavigation, "wait for "+ready, err)
	}
	log.Debug("Form ready", "selector", ready)
	return nil
}

func (uc *UseCase) newModel() *humanize.Model {
	seed := time.Now().UnixNano()
	if uc.cfg.Seed != nil {
		seed = uc.cfg.Seed()
	}
	var opts []humanize.Option
	if uc.cfg.Sleep != nil {
		opts = append(opts, humanize.WithSleep(uc.cfg.Sleep))
	}
	return humanize.New(uc.cfg.Timing, seed, opts...)
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ArtifactName derives a file-name stem from the last path segment of a job
// URL, collapsing each run of other characters to "-". Trailing "apply"
// segments are passed over so Lever apply pages keep their posting id.
func ArtifactName(jobURL string) string {
	segment := jobURL
	if u, err := url.Parse(jobURL); err == nil {
		segment = u.Hostname()
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := len(parts) - 1; i >= 0; i-- {
			if p := parts[i]; p != "" && !strings.EqualFold(p, "apply") {
				segment = p
				break
			}
		}
	}
	name := strings.Trim(nonAlnum.ReplaceAllString(segment, "-"), "-")
	if name == "" {
		return "job"
	}
	return name
}
