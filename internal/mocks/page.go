// Package mocks provides scriptable in-memory implementations of the
// output ports for engine tests.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

var _ output.Page = (*FakePage)(nil)

// FakePage is a single-page DOM stand-in. Elements are plain selector keys;
// an operation on an unknown selector fails with apperr.ErrElementNotFound.
type FakePage struct {
	mu sync.Mutex

	CurrentURL string
	Elements   map[string]bool
	Options    map[string][]string
	Snapshots  map[string]string
	Fields     []entity.DiscoveredField
	Boxes      map[string]entity.Box
	Image      []byte

	// Heights is the document height seen on successive scroll ticks; the
	// last value repeats.
	Heights        []float64
	ViewportHeight float64

	// Probe returns the challenge probe for the n-th call (1-based).
	Probe func(n int) output.FrameProbe
	// OnMouseClick runs after every mouse click.
	OnMouseClick func(p entity.Point)
	// Fail maps "op selector" (e.g. "click #submit") to an injected error.
	Fail map[string]error

	Calls    []string
	Typed    map[string]string
	Selected map[string]string
	Files    map[string][]string
	Moves    []entity.Point
	Clicks   []entity.Point

	scrollTop  float64
	scrollTick int
	probeCalls int
	focused    string
	mouse      entity.Point
}

func NewFakePage(url string) *FakePage {
	return &FakePage{
		CurrentURL:     url,
		Elements:       map[string]bool{},
		Options:        map[string][]string{},
		Snapshots:      map[string]string{},
		Boxes:          map[string]entity.Box{},
		Fail:           map[string]error{},
		Typed:          map[string]string{},
		Selected:       map[string]string{},
		Files:          map[string][]string{},
		Heights:        []float64{800},
		ViewportHeight: 800,
		Image:          []byte{0x89, 'P', 'N', 'G'},
	}
}

// AddElement registers selectors as present and visible.
func (p *FakePage) AddElement(selectors ...string) *FakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range selectors {
		p.Elements[s] = true
	}
	return p
}

func (p *FakePage) CallLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Calls...)
}

func (p *FakePage) ProbeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.probeCalls
}

func (p *FakePage) record(op, selector string) error {
	call := strings.TrimSpace(op + " " + selector)
	p.Calls = append(p.Calls, call)
	if err, ok := p.Fail[call]; ok {
		return err
	}
	return nil
}

func (p *FakePage) has(selector string) bool {
	if p.Elements[selector] {
		return true
	}
	if _, ok := p.Options[selector]; ok {
		return true
	}
	_, ok := p.Boxes[selector]
	return ok
}

func notFound(selector string) error {
	return apperr.New(apperr.ErrElementNotFound, selector, nil)
}

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("navigate", url); err != nil {
		return err
	}
	p.CurrentURL = url
	return nil
}

func (p *FakePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("wait", selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return apperr.New(apperr.ErrTimeout, "wait "+selector, context.DeadlineExceeded)
	}
	return nil
}

func (p *FakePage) Exists(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.has(selector), nil
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *FakePage) ScrollBy(ctx context.Context, dy float64) (output.ScrollState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("scroll", ""); err != nil {
		return output.ScrollState{}, err
	}
	h := p.Heights[len(p.Heights)-1]
	if p.scrollTick < len(p.Heights) {
		h = p.Heights[p.scrollTick]
	}
	p.scrollTick++

	p.scrollTop += dy
	if max := h - p.ViewportHeight; p.scrollTop > max {
		p.scrollTop = max
	}
	if p.scrollTop < 0 {
		p.scrollTop = 0
	}
	return output.ScrollState{Top: p.scrollTop, Height: h, ViewportHeight: p.ViewportHeight}, nil
}

func (p *FakePage) ScrollTop() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollTop
}

func (p *FakePage) Controls(ctx context.Context) ([]entity.DiscoveredField, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("controls", ""); err != nil {
		return nil, err
	}
	return append([]entity.DiscoveredField(nil), p.Fields...), nil
}

func (p *FakePage) OuterHTML(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("html", selector); err != nil {
		return "", err
	}
	html, ok := p.Snapshots[selector]
	if !ok {
		return "", notFound(selector)
	}
	return html, nil
}

func (p *FakePage) ClearInput(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("clear", selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return notFound(selector)
	}
	p.Typed[selector] = ""
	return nil
}

func (p *FakePage) Focus(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("focus", selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return notFound(selector)
	}
	p.focused = selector
	return nil
}

func (p *FakePage) InsertText(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.focused == "" {
		return fmt.Errorf("no focused element")
	}
	p.Typed[p.focused] += text
	return nil
}

func (p *FakePage) PressTab(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("tab", ""); err != nil {
		return err
	}
	p.focused = ""
	return nil
}

func (p *FakePage) OptionValues(ctx context.Context, selector string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	opts, ok := p.Options[selector]
	if !ok {
		return nil, notFound(selector)
	}
	return append([]string(nil), opts...), nil
}

func (p *FakePage) SelectValue(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("select", selector); err != nil {
		return err
	}
	opts, ok := p.Options[selector]
	if !ok {
		return notFound(selector)
	}
	for _, o := range opts {
		if o == value {
			p.Selected[selector] = value
			return nil
		}
	}
	return notFound(fmt.Sprintf("%s option %q", selector, value))
}

func (p *FakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("click", selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return notFound(selector)
	}
	return nil
}

func (p *FakePage) Hover(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("hover", selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return notFound(selector)
	}
	return nil
}

func (p *FakePage) SetFiles(ctx context.Context, selector string, paths []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("files", selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return notFound(selector)
	}
	p.Files[selector] = append([]string(nil), paths...)
	return nil
}

func (p *FakePage) ProbeFrames(ctx context.Context, containerSelector string) (output.FrameProbe, error) {
	p.mu.Lock()
	p.probeCalls++
	n := p.probeCalls
	probe := p.Probe
	p.mu.Unlock()

	if probe == nil {
		return output.FrameProbe{VisibleFrame: -1}, nil
	}
	return probe(n), nil
}

func (p *FakePage) ElementBox(ctx context.Context, selector string, index int) (entity.Box, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	box, ok := p.Boxes[fmt.Sprintf("%s#%d", selector, index)]
	if !ok {
		box, ok = p.Boxes[selector]
	}
	if !ok {
		return entity.Box{}, notFound(selector)
	}
	return box, nil
}

func (p *FakePage) ElementScreenshot(ctx context.Context, selector string, index int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("capture", selector); err != nil {
		return nil, err
	}
	return append([]byte(nil), p.Image...), nil
}

func (p *FakePage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("screenshot", ""); err != nil {
		return nil, err
	}
	return append([]byte(nil), p.Image...), nil
}

func (p *FakePage) MouseMove(ctx context.Context, pt entity.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Moves = append(p.Moves, pt)
	p.mouse = pt
	return nil
}

func (p *FakePage) MouseClick(ctx context.Context) error {
	p.mu.Lock()
	p.Clicks = append(p.Clicks, p.mouse)
	pt := p.mouse
	hook := p.OnMouseClick
	p.mu.Unlock()

	if hook != nil {
		hook(pt)
	}
	return nil
}

type FakeSession struct {
	page   *FakePage
	mu     sync.Mutex
	closed int
}

func (s *FakeSession) Page() output.Page { return s.page }

func (s *FakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *FakeSession) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FakeFactory hands out sessions over a fresh page built by NewPage.
type FakeFactory struct {
	NewPage func() *FakePage
	Err     error

	mu       sync.Mutex
	Sessions []*FakeSession
}

func (f *FakeFactory) NewSession(ctx context.Context) (output.Session, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	s := &FakeSession{page: f.NewPage()}
	f.mu.Lock()
	f.Sessions = append(f.Sessions, s)
	f.mu.Unlock()
	return s, nil
}
