// Package filler drives the per-field fill loop and the final submission.
package filler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/usecase/humanize"
)

type ChallengePolicy string

const (
	// PolicySkip skips the field when a challenge cannot be resolved.
	PolicySkip ChallengePolicy = "skip"
	// PolicyBlock waits up to BlockTimeout for the challenge to clear, for
	// example by a person solving it in a visible browser.
	PolicyBlock ChallengePolicy = "block"
)

type Config struct {
	Policy       ChallengePolicy
	BlockTimeout time.Duration
	// EmptyValue is typed into text controls the oracle left blank.
	EmptyValue string
}

func DefaultConfig() Config {
	return Config{
		Policy:       PolicySkip,
		BlockTimeout: 2 * time.Minute,
		EmptyValue:   "no",
	}
}

// ChallengeChecker is the part of the challenge monitor the executor uses.
type ChallengeChecker interface {
	Check(ctx context.Context, page output.Page, artifactName string) error
	WaitCleared(ctx context.Context, page output.Page, timeout time.Duration) error
}

type Executor struct {
	cfg       Config
	challenge ChallengeChecker
	artifacts output.ArtifactStore
	model     *humanize.Model
	logger    output.LoggerPort
}

func NewExecutor(cfg Config, challenge ChallengeChecker, artifacts output.ArtifactStore, model *humanize.Model, logger output.LoggerPort) *Executor {
	return &Executor{cfg: cfg, challenge: challenge, artifacts: artifacts, model: model, logger: logger}
}

// Execute fills mappings in order. Mappings without a target, repeated
// targets, checkboxes mapped to a false value and fields blocked by an
// unresolved challenge are skipped; any other per-field error is counted as
// failed. Nothing here aborts the run.
func (e *Executor) Execute(ctx context.Context, page output.Page, mappings []entity.FieldMapping, artifactName string) entity.FillReport {
	var report entity.FillReport
	filled := make(map[string]bool, len(mappings))

	for i, m := range mappings {
		id := strings.TrimSpace(m.TargetID)
		log := e.logger.WithFields(map[string]any{"field": id, "type": string(m.ControlType), "index": i})

		if id == "" {
			report.Skipped++
			log.Debug("Mapping has no target, skipping")
			continue
		}
		if filled[id] {
			report.Skipped++
			log.Warn("Duplicate mapping target, skipping")
			continue
		}
		filled[id] = true

		if m.ControlType == entity.ControlCheckbox && isFalse(m.Value) {
			report.Skipped++
			log.Debug("Checkbox mapped to false, leaving it unchanged", "value", m.Value)
			continue
		}

		if err := e.clearChallenge(ctx, page, artifactName, log); err != nil {
			report.Skipped++
			log.Warn("Challenge unresolved, skipping field", "error", err)
			e.model.PauseField()
			continue
		}

		if err := e.fill(ctx, page, id, m); err != nil {
			report.Failed++
			log.Error("Field fill failed", "error", err)
		} else {
			report.Attempted++
			log.Debug("Field filled")
		}
		e.model.PauseField()
	}

	e.logger.Info("Fill pass finished",
		"attempted", report.Attempted,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report
}

func isFalse(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "no", "off", "0":
		return true
	}
	return false
}

func (e *Executor) clearChallenge(ctx context.Context, page output.Page, artifactName string, log output.LoggerPort) error {
	if e.challenge == nil {
		return nil
	}
	err := e.challenge.Check(ctx, page, artifactName)
	if err == nil || e.cfg.Policy != PolicyBlock {
		return err
	}

	log.Warn("Waiting for challenge to clear", "timeout", e.cfg.BlockTimeout.String(), "error", err)
	if werr := e.challenge.WaitCleared(ctx, page, e.cfg.BlockTimeout); werr != nil {
		return errors.Join(err, werr)
	}
	return nil
}

func (e *Executor) fill(ctx context.Context, page output.Page, id string, m entity.FieldMapping) error {
	sel := IDSelector(id)

	var err error
	switch {
	case m.ControlType.IsTyped():
		err = e.typeText(ctx, page, sel, m.Value)
	case m.ControlType == entity.ControlSelect:
		err = e.selectOption(ctx, page, sel, m.Value)
	case m.ControlType == entity.ControlCheckbox:
		err = page.Click(ctx, sel)
	case m.ControlType == entity.ControlFile:
		err = e.attachFile(ctx, page, sel, m.Value)
	default:
		err = fmt.Errorf("unsupported control type %q", m.ControlType)
	}
	if err != nil {
		return apperr.New(apperr.ErrFieldFill, id, err)
	}
	return nil
}

func (e *Executor) typeText(ctx context.Context, page output.Page, sel, value string) error {
	if value == "" {
		value = e.cfg.EmptyValue
	}
	if err := page.ClearInput(ctx, sel); err != nil {
		return err
	}
	if err := page.Focus(ctx, sel); err != nil {
		return err
	}
	for _, r := range value {
		if err := page.InsertText(ctx, string(r)); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		e.model.PauseKey()
	}
	e.model.PauseTab()
	return page.PressTab(ctx)
}

func (e *Executor) selectOption(ctx context.Context, page output.Page, sel, value string) error {
	options, err := page.OptionValues(ctx, sel)
	if err != nil {
		return err
	}
	if !slices.Contains(options, value) {
		return fmt.Errorf("option %q not offered (have %d options)", value, len(options))
	}
	return page.SelectValue(ctx, sel, value)
}

func (e *Executor) attachFile(ctx context.Context, page output.Page, sel, path string) error {
	if path == "" {
		return errors.New("no file path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("local file: %w", err)
	}
	return page.SetFiles(ctx, sel, []string{abs})
}

// Capture saves a full-page screenshot as application-<name>.png and returns
// its location, or "" when it could not be taken.
func (e *Executor) Capture(ctx context.Context, page output.Page, artifactName string) string {
	if e.artifacts == nil {
		return ""
	}
	data, err := page.Screenshot(ctx, true)
	if err != nil {
		e.logger.Warn("Screenshot failed", "error", err)
		return ""
	}
	path, err := e.artifacts.Save(fmt.Sprintf("application-%s.png", artifactName), data)
	if err != nil {
		e.logger.Warn("Screenshot not saved", "error", err)
		return ""
	}
	e.logger.Info("Screenshot saved", "path", path)
	return path
}

// Submit settles, captures the page, then hovers and clicks the submit
// control. A missing control is an ErrSubmission error.
func (e *Executor) Submit(ctx context.Context, page output.Page, submitSelector, artifactName string) (string, error) {
	e.model.PauseSettle()
	shot := e.Capture(ctx, page, artifactName)

	ok, err := page.Exists(ctx, submitSelector)
	if err != nil {
		return shot, apperr.New(apperr.ErrSubmission, submitSelector, err)
	}
	if !ok {
		return shot, apperr.New(apperr.ErrSubmission, submitSelector, apperr.ErrElementNotFound)
	}
	if err := page.Hover(ctx, submitSelector); err != nil {
		return shot, apperr.New(apperr.ErrSubmission, "hover "+submitSelector, err)
	}
	e.model.PauseHover()
	if err := page.Click(ctx, submitSelector); err != nil {
		return shot, apperr.New(apperr.ErrSubmission, "click "+submitSelector, err)
	}

	e.logger.Info("Application submitted", "selector", submitSelector)
	return shot, nil
}
