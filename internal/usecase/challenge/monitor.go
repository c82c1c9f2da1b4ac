// Package challenge detects and resolves click-based visual challenges that
// appear while a form is being filled.
package challenge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/usecase/humanize"
	"github.com/AnthonySaldana/nujob/internal/usecase/poll"
)

const DefaultContainerSelector = `div:has(> iframe[src*='recaptcha/api2/bframe']), div:has(> iframe[src*='hcaptcha.com'][src*='challenge'])`

type Config struct {
	ContainerSelector string
	// FrameSelector matches the embedded frames; defaults to the container
	// selector followed by " iframe".
	FrameSelector string
	MaxRounds     int
	MaxImageWidth int
	JPEGQuality   int
	Poll          poll.Config
}

func DefaultConfig() Config {
	return Config{
		ContainerSelector: DefaultContainerSelector,
		MaxRounds:         3,
		MaxImageWidth:     1024,
		JPEGQuality:       80,
		Poll:              poll.Config{Interval: 500 * time.Millisecond},
	}
}

// Monitor is owned by one run. It remembers the pointer position between
// rounds so consecutive movements start where the last one ended.
type Monitor struct {
	cfg       Config
	oracle    output.ChallengeOracle
	artifacts output.ArtifactStore
	model     *humanize.Model
	logger    output.LoggerPort

	cursor entity.Point
}

func NewMonitor(cfg Config, oracle output.ChallengeOracle, artifacts output.ArtifactStore, model *humanize.Model, logger output.LoggerPort) *Monitor {
	if cfg.ContainerSelector == "" {
		cfg.ContainerSelector = DefaultContainerSelector
	}
	if cfg.FrameSelector == "" {
		cfg.FrameSelector = frameSelector(cfg.ContainerSelector)
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 1
	}
	return &Monitor{cfg: cfg, oracle: oracle, artifacts: artifacts, model: model, logger: logger}
}

// Detect probes the page once. A missing container, a container with no
// height, or no visible frame all count as absent.
func (m *Monitor) Detect(ctx context.Context, page output.Page) (entity.ChallengeStatus, *entity.ChallengeFrame, error) {
	probe, err := page.ProbeFrames(ctx, m.cfg.ContainerSelector)
	if err != nil {
		return entity.ChallengeAbsent, nil, err
	}
	if !probe.ContainerPresent || probe.ContainerHeight <= 0 || probe.VisibleFrame < 0 || probe.VisibleFrame >= probe.FrameCount {
		return entity.ChallengeAbsent, nil, nil
	}
	return entity.ChallengeDetected, &entity.ChallengeFrame{Selector: m.cfg.FrameSelector, Index: probe.VisibleFrame}, nil
}

// Check resolves a visible challenge, repeating capture, oracle call and
// click until it disappears or MaxRounds is reached. It returns nil when no
// challenge is present and an ErrChallengeSolve error when one stays.
func (m *Monitor) Check(ctx context.Context, page output.Page, artifactName string) error {
	status, frame, err := m.Detect(ctx, page)
	if err != nil {
		m.logger.Warn("Challenge probe failed, assuming none", "error", err)
		return nil
	}
	if status == entity.ChallengeAbsent {
		return nil
	}

	for round := 1; round <= m.cfg.MaxRounds; round++ {
		m.logger.Info("Challenge detected", "round", round, "frame", frame.Index)

		state := &entity.ChallengeState{Phase: entity.PhaseDetected, Frame: *frame}
		if err := m.resolve(ctx, page, state, fmt.Sprintf("challenge-%s-%d.jpg", artifactName, round)); err != nil {
			return apperr.New(apperr.ErrChallengeSolve, string(state.Phase), err)
		}

		status, frame, err = m.Detect(ctx, page)
		if err != nil {
			m.logger.Warn("Challenge probe failed after click", "error", err)
			return nil
		}
		if status == entity.ChallengeAbsent {
			m.logger.Info("Challenge cleared", "rounds", round)
			return nil
		}
	}
	return apperr.New(apperr.ErrChallengeSolve, "resolve", fmt.Errorf("still visible after %d rounds", m.cfg.MaxRounds))
}

// WaitCleared polls until no challenge is visible or timeout passes.
func (m *Monitor) WaitCleared(ctx context.Context, page output.Page, timeout time.Duration) error {
	cfg := m.cfg.Poll
	cfg.Timeout = timeout
	if cfg.Interval > 0 && timeout > 0 {
		cfg.MaxAttempts = int(timeout/cfg.Interval) + 1
	}
	return poll.Until(ctx, cfg, func(ctx context.Context) (bool, error) {
		status, _, err := m.Detect(ctx, page)
		if err != nil {
			return false, err
		}
		return status == entity.ChallengeAbsent, nil
	})
}

func (m *Monitor) resolve(ctx context.Context, page output.Page, state *entity.ChallengeState, artifact string) error {
	raw, err := page.ElementScreenshot(ctx, state.Frame.Selector, state.Frame.Index)
	if err != nil {
		return fmt.Errorf("capture frame: %w", err)
	}
	img, err := m.encode(raw)
	if err != nil {
		return err
	}
	state.Image = img
	state.Phase = entity.PhaseCaptured

	if m.artifacts != nil {
		if path, err := m.artifacts.Save(artifact, img.Data); err != nil {
			m.logger.Warn("Challenge artifact not saved", "error", err)
		} else {
			m.logger.Debug("Challenge artifact saved", "path", path)
		}
	}

	state.Phase = entity.PhaseResolving
	reply, err := m.oracle.LocateClick(ctx, img)
	if err != nil {
		return apperr.New(apperr.ErrOracle, "locate click", err)
	}
	frac, err := ParseClick(reply, img.Width, img.Height)
	if err != nil {
		return err
	}

	box, err := page.ElementBox(ctx, state.Frame.Selector, state.Frame.Index)
	if err != nil {
		return fmt.Errorf("frame bounds: %w", err)
	}
	if box.Empty() {
		return errors.New("frame bounds unavailable")
	}
	target := box.Project(frac)
	state.Click = &target

	for _, p := range m.model.Path(m.cursor, target) {
		if err := page.MouseMove(ctx, p); err != nil {
			return fmt.Errorf("move pointer: %w", err)
		}
		m.model.PauseStep()
	}
	m.cursor = target
	if err := page.MouseClick(ctx); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	state.Phase = entity.PhaseClicked

	m.logger.Info("Challenge clicked", "x", target.X, "y", target.Y, "fx", frac.X, "fy", frac.Y)
	m.model.PauseSettle()
	return nil
}

// encode downscales the capture to MaxImageWidth and re-encodes it as JPEG.
func (m *Monitor) encode(raw []byte) (*entity.ChallengeImage, error) {
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	if w := m.cfg.MaxImageWidth; w > 0 && src.Bounds().Dx() > w {
		src = imaging.Resize(src, w, 0, imaging.Lanczos)
	}

	quality := m.cfg.JPEGQuality
	if quality <= 0 {
		quality = 80
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	b := src.Bounds()
	return &entity.ChallengeImage{Data: buf.Bytes(), Format: "jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// frameSelector appends " iframe" to every selector in a selector list,
// splitting only on commas outside brackets and parentheses.
func frameSelector(container string) string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range container {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, container[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, container[start:])
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p) + " iframe"
	}
	return strings.Join(parts, ", ")
}
