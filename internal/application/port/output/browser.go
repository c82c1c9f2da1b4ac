package output

import (
	"context"
	"time"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

type ScrollState struct {
	Top            float64
	Height         float64
	ViewportHeight float64
}

func (s ScrollState) AtBottom() bool {
	return s.Top+s.ViewportHeight >= s.Height
}

// FrameProbe is the result of one DOM probe for a challenge container.
// VisibleFrame is the index of the first frame whose computed visibility is
// "visible", or -1.
type FrameProbe struct {
	ContainerPresent bool
	ContainerHeight  float64
	FrameCount       int
	VisibleFrame     int
}

// Page is the browser interaction surface consumed by the fill engine.
// Selector lookups fail with apperr.ErrElementNotFound when nothing matches.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Exists(ctx context.Context, selector string) (bool, error)
	URL() string

	ScrollBy(ctx context.Context, dy float64) (ScrollState, error)
	Controls(ctx context.Context) ([]entity.DiscoveredField, error)
	OuterHTML(ctx context.Context, selector string) (string, error)

	ClearInput(ctx context.Context, selector string) error
	Focus(ctx context.Context, selector string) error
	InsertText(ctx context.Context, text string) error
	PressTab(ctx context.Context) error
	OptionValues(ctx context.Context, selector string) ([]string, error)
	SelectValue(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Hover(ctx context.Context, selector string) error
	SetFiles(ctx context.Context, selector string, paths []string) error

	ProbeFrames(ctx context.Context, containerSelector string) (FrameProbe, error)
	ElementBox(ctx context.Context, selector string, index int) (entity.Box, error)
	ElementScreenshot(ctx context.Context, selector string, index int) ([]byte, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)

	MouseMove(ctx context.Context, p entity.Point) error
	MouseClick(ctx context.Context) error
}

// Session is one isolated browser owned by a single run.
type Session interface {
	Page() Page
	Close() error
}

type BrowserFactory interface {
	NewSession(ctx context.Context) (Session, error)
}
