// Package collector discovers the fillable controls of an application form.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/usecase/poll"
)

type Config struct {
	ScrollStep     float64
	ScrollTick     time.Duration
	MaxScrollTicks int
	// StableTicks is how many bottom-of-page ticks with an unchanged scroll
	// height end the scroll pass.
	StableTicks int
	Sleep       func(ctx context.Context, d time.Duration) error
}

func DefaultConfig() Config {
	return Config{
		ScrollStep:     100,
		ScrollTick:     100 * time.Millisecond,
		MaxScrollTicks: 400,
		StableTicks:    3,
	}
}

// Cleaner reduces raw form markup before it leaves the process.
type Cleaner func(rawHTML string) string

type Collector struct {
	cfg    Config
	clean  Cleaner
	logger output.LoggerPort
}

func New(cfg Config, clean Cleaner, logger output.LoggerPort) *Collector {
	if clean == nil {
		clean = func(s string) string { return s }
	}
	return &Collector{cfg: cfg, clean: clean, logger: logger}
}

// Collect scrolls to the bottom of the page so lazy sections render, then
// extracts every input, select and textarea. The page is left scrolled to
// the bottom. A missing form container only drops the snapshot.
func (c *Collector) Collect(ctx context.Context, page output.Page, formSelector string) (*entity.Collection, error) {
	if err := c.scrollToBottom(ctx, page); err != nil {
		if !errors.Is(err, poll.ErrExhausted) {
			return nil, fmt.Errorf("scroll page: %w", err)
		}
		c.logger.Warn("Scroll height never stabilised, collecting anyway", "maxTicks", c.cfg.MaxScrollTicks)
	}

	snapshot := c.snapshot(ctx, page, formSelector)

	raw, err := page.Controls(ctx)
	if err != nil {
		return nil, fmt.Errorf("query controls: %w", err)
	}

	labels := map[string]string{}
	if snapshot != nil {
		labels = labelsByFor(*snapshot)
	}

	fields := normalize(raw, labels)
	c.logger.Info("Fields collected", "raw", len(raw), "unique", len(fields), "snapshot", snapshot != nil)

	if snapshot != nil {
		cleaned := c.clean(*snapshot)
		snapshot = &cleaned
	}

	return &entity.Collection{Fields: fields, FormSnapshot: snapshot}, nil
}

func (c *Collector) scrollToBottom(ctx context.Context, page output.Page) error {
	var (
		lastHeight float64
		stable     int
	)
	return poll.Until(ctx, poll.Config{
		Interval:    c.cfg.ScrollTick,
		MaxAttempts: c.cfg.MaxScrollTicks,
		Sleep:       c.cfg.Sleep,
	}, func(ctx context.Context) (bool, error) {
		state, err := page.ScrollBy(ctx, c.cfg.ScrollStep)
		if err != nil {
			return false, err
		}
		if state.AtBottom() && state.Height == lastHeight {
			stable++
		} else {
			stable = 0
		}
		lastHeight = state.Height
		return stable >= c.cfg.StableTicks, nil
	})
}

func (c *Collector) snapshot(ctx context.Context, page output.Page, formSelector string) *string {
	if formSelector == "" {
		return nil
	}
	html, err := page.OuterHTML(ctx, formSelector)
	if err != nil {
		if !errors.Is(err, apperr.ErrElementNotFound) {
			c.logger.Warn("Form snapshot failed", "selector", formSelector, "error", err)
		} else {
			c.logger.Debug("Form container absent", "selector", formSelector)
		}
		return nil
	}
	return &html
}

// labelsByFor maps label[for] targets to their trimmed text.
func labelsByFor(snapshot string) map[string]string {
	out := map[string]string{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot))
	if err != nil {
		return out
	}
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("for")
		text := collapseSpace(s.Text())
		if id == "" || text == "" {
			return
		}
		if _, seen := out[id]; !seen {
			out[id] = text
		}
	})
	return out
}

// normalize fills derived attributes and drops records that are exact
// duplicates of one already seen.
func normalize(raw []entity.DiscoveredField, labels map[string]string) []entity.DiscoveredField {
	seen := make(map[string]bool, len(raw))
	fields := make([]entity.DiscoveredField, 0, len(raw))

	for _, f := range raw {
		f.GroupLabel = collapseSpace(f.GroupLabel)
		f.CheckboxOptionLabel = collapseSpace(f.CheckboxOptionLabel)
		if f.ID != "" {
			if l, ok := labels[f.ID]; ok {
				if f.Label == "" {
					f.Label = l
				}
				if f.Type == entity.ControlCheckbox && f.CheckboxOptionLabel == "" {
					f.CheckboxOptionLabel = l
				}
			}
		}

		key, err := json.Marshal(f)
		if err != nil {
			continue
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		fields = append(fields, f)
	}
	return fields
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
