package challenge

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/mocks"
	"github.com/AnthonySaldana/nujob/internal/usecase/humanize"
)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

func visible(frame int) output.FrameProbe {
	return output.FrameProbe{ContainerPresent: true, ContainerHeight: 580, FrameCount: 2, VisibleFrame: frame}
}

var frameBox = entity.Box{X: 100, Y: 200, Width: 400, Height: 580}

type fixture struct {
	page      *mocks.FakePage
	oracle    *mocks.ChallengeOracle
	artifacts *mocks.Artifacts
	monitor   *Monitor
}

func newFixture(t *testing.T, reply string) *fixture {
	t.Helper()
	page := mocks.NewFakePage("https://boards.greenhouse.io/acme/jobs/9")
	page.Image = pngBytes(t, 2048, 1024)
	cfg := DefaultConfig()
	cfg.Poll.Sleep = noSleep
	page.Boxes[frameSelector(cfg.ContainerSelector)+"#1"] = frameBox

	oracle := &mocks.ChallengeOracle{Reply: func(*entity.ChallengeImage) (string, error) { return reply, nil }}
	artifacts := mocks.NewArtifacts()
	model := humanize.New(humanize.DefaultTiming(), 7, humanize.WithSleep(func(time.Duration) {}))

	return &fixture{
		page:      page,
		oracle:    oracle,
		artifacts: artifacts,
		monitor:   NewMonitor(cfg, oracle, artifacts, model, mocks.NewLogger()),
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		probe output.FrameProbe
		want  entity.ChallengeStatus
	}{
		{"no container", output.FrameProbe{VisibleFrame: -1}, entity.ChallengeAbsent},
		{"zero height container", output.FrameProbe{ContainerPresent: true, ContainerHeight: 0, FrameCount: 1, VisibleFrame: 0}, entity.ChallengeAbsent},
		{"frames hidden", output.FrameProbe{ContainerPresent: true, ContainerHeight: 300, FrameCount: 2, VisibleFrame: -1}, entity.ChallengeAbsent},
		{"visible frame", visible(1), entity.ChallengeDetected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			f.page.Probe = func(int) output.FrameProbe { return tt.probe }

			status, frame, err := f.monitor.Detect(context.Background(), f.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
			if tt.want == entity.ChallengeDetected {
				require.NotNil(t, frame)
				assert.Equal(t, 1, frame.Index)
			} else {
				assert.Nil(t, frame)
			}
		})
	}
}

func TestCheck_AbsentIsNoop(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.monitor.Check(context.Background(), f.page, "job"))
	assert.Zero(t, f.oracle.Calls)
	assert.Empty(t, f.page.Clicks)
}

func TestCheck_ClicksInsideFrameBounds(t *testing.T) {
	f := newFixture(t, "```json\n{\"clickPositions\":[{\"x\":0.25,\"y\":0.5},{\"x\":0.9,\"y\":0.9}]}\n```")
	var solved atomic.Bool
	f.page.Probe = func(int) output.FrameProbe {
		if solved.Load() {
			return output.FrameProbe{ContainerPresent: true, ContainerHeight: 0, VisibleFrame: -1}
		}
		return visible(1)
	}
	f.page.OnMouseClick = func(entity.Point) { solved.Store(true) }

	require.NoError(t, f.monitor.Check(context.Background(), f.page, "jobs-9"))

	require.Len(t, f.page.Clicks, 1)
	click := f.page.Clicks[0]
	assert.True(t, frameBox.Contains(click))
	assert.InDelta(t, 200.0, click.X, 1e-9)
	assert.InDelta(t, 490.0, click.Y, 1e-9)
	assert.Greater(t, len(f.page.Moves), 1)
	assert.Equal(t, 1, f.oracle.Calls)
	assert.Contains(t, f.artifacts.Names(), "challenge-jobs-9-1.jpg")
}

func TestCheck_DownscalesCapture(t *testing.T) {
	f := newFixture(t, `{"clickPositions":[{"x":0.5,"y":0.5}]}`)
	var got *entity.ChallengeImage
	f.oracle.Reply = func(img *entity.ChallengeImage) (string, error) {
		got = img
		return `{"clickPositions":[{"x":0.5,"y":0.5}]}`, nil
	}
	f.page.Probe = func(n int) output.FrameProbe {
		if n > 1 {
			return output.FrameProbe{VisibleFrame: -1}
		}
		return visible(1)
	}

	require.NoError(t, f.monitor.Check(context.Background(), f.page, "job"))
	require.NotNil(t, got)
	assert.Equal(t, 1024, got.Width)
	assert.Equal(t, 512, got.Height)
	assert.Equal(t, "jpeg", got.Format)
}

func TestCheck_GivesUpAfterMaxRounds(t *testing.T) {
	f := newFixture(t, `{"clickPositions":[{"x":0.5,"y":0.5}]}`)
	f.page.Probe = func(int) output.FrameProbe { return visible(1) }

	err := f.monitor.Check(context.Background(), f.page, "job")
	assert.ErrorIs(t, err, apperr.ErrChallengeSolve)
	assert.Equal(t, 3, f.oracle.Calls)
	assert.Len(t, f.page.Clicks, 3)
}

func TestCheck_OracleFailurePropagates(t *testing.T) {
	f := newFixture(t, "")
	f.oracle.Reply = func(*entity.ChallengeImage) (string, error) { return "", errors.New("503") }
	f.page.Probe = func(int) output.FrameProbe { return visible(1) }

	err := f.monitor.Check(context.Background(), f.page, "job")
	assert.ErrorIs(t, err, apperr.ErrChallengeSolve)
	assert.ErrorIs(t, err, apperr.ErrOracle)
	assert.Empty(t, f.page.Clicks)
}

func TestCheck_MalformedReplyDoesNotClick(t *testing.T) {
	f := newFixture(t, "I cannot help with that.")
	f.page.Probe = func(int) output.FrameProbe { return visible(1) }

	err := f.monitor.Check(context.Background(), f.page, "job")
	assert.ErrorIs(t, err, apperr.ErrChallengeSolve)
	assert.Empty(t, f.page.Clicks)
}

func TestCheck_MissingBoundsFails(t *testing.T) {
	f := newFixture(t, `{"clickPositions":[{"x":0.5,"y":0.5}]}`)
	f.page.Boxes = map[string]entity.Box{}
	f.page.Probe = func(int) output.FrameProbe { return visible(1) }

	err := f.monitor.Check(context.Background(), f.page, "job")
	assert.ErrorIs(t, err, apperr.ErrChallengeSolve)
	assert.ErrorIs(t, err, apperr.ErrElementNotFound)
}

func TestWaitCleared(t *testing.T) {
	f := newFixture(t, "")
	f.page.Probe = func(n int) output.FrameProbe {
		if n < 4 {
			return visible(0)
		}
		return output.FrameProbe{VisibleFrame: -1}
	}

	require.NoError(t, f.monitor.WaitCleared(context.Background(), f.page, 10*time.Second))
	assert.Equal(t, 4, f.page.ProbeCount())
}

func TestWaitCleared_TimesOut(t *testing.T) {
	f := newFixture(t, "")
	f.page.Probe = func(int) output.FrameProbe { return visible(0) }

	err := f.monitor.WaitCleared(context.Background(), f.page, 2*time.Second)
	assert.ErrorIs(t, err, apperr.ErrTimeout)
}

func TestParseClick(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    entity.Point
		wantErr bool
	}{
		{"fraction", `{"clickPositions":[{"x":0.1,"y":0.9}]}`, entity.Point{X: 0.1, Y: 0.9}, false},
		{"fenced", "```\n{\"clickPositions\":[{\"x\":1,\"y\":0}]}\n```", entity.Point{X: 1, Y: 0}, false},
		{"pixels", `{"clickPositions":[{"x":512,"y":128}]}`, entity.Point{X: 0.5, Y: 0.25}, false},
		{"pixels outside image", `{"clickPositions":[{"x":2000,"y":10}]}`, entity.Point{}, true},
		{"fraction x pixel y", `{"clickPositions":[{"x":0.5,"y":384}]}`, entity.Point{X: 0.5, Y: 0.75}, false},
		{"pixel x fraction y", `{"clickPositions":[{"x":256,"y":0.4}]}`, entity.Point{X: 0.25, Y: 0.4}, false},
		{"mixed pixel outside image", `{"clickPositions":[{"x":0.5,"y":900}]}`, entity.Point{}, true},
		{"negative", `{"clickPositions":[{"x":-0.1,"y":0.2}]}`, entity.Point{}, true},
		{"empty list", `{"clickPositions":[]}`, entity.Point{}, true},
		{"garbage", `click at the top`, entity.Point{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClick(tt.reply, 1024, 512)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestFrameSelector(t *testing.T) {
	assert.Equal(t, "#c iframe", frameSelector("#c"))
	assert.Equal(t,
		"div:has(> iframe[src*='a,b']) iframe, .x iframe",
		frameSelector("div:has(> iframe[src*='a,b']), .x"),
	)
}
