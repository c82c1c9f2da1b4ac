package rod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

var _ output.Page = (*Page)(nil)

// Page adapts a rod page to output.Page. Element lookups wait up to
// elementTimeout before reporting apperr.ErrElementNotFound.
type Page struct {
	page           *rod.Page
	elementTimeout time.Duration
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return notFound(selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return notFound(selector, err)
	}
	return nil
}

func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	has, _, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", selector, err)
	}
	return has, nil
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) ScrollBy(ctx context.Context, dy float64) (output.ScrollState, error) {
	var res struct {
		Top      float64 `json:"top"`
		Height   float64 `json:"height"`
		Viewport float64 `json:"viewport"`
	}
	if err := p.eval(ctx, &res, scrollScript, dy); err != nil {
		return output.ScrollState{}, fmt.Errorf("scroll failed: %w", err)
	}
	return output.ScrollState{Top: res.Top, Height: res.Height, ViewportHeight: res.Viewport}, nil
}

func (p *Page) Controls(ctx context.Context) ([]entity.DiscoveredField, error) {
	var fields []entity.DiscoveredField
	if err := p.eval(ctx, &fields, controlsScript); err != nil {
		return nil, fmt.Errorf("control extraction failed: %w", err)
	}
	return fields, nil
}

func (p *Page) OuterHTML(ctx context.Context, selector string) (string, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", selector, err)
	}
	if !has {
		return "", apperr.New(apperr.ErrElementNotFound, selector, nil)
	}
	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (p *Page) ClearInput(ctx context.Context, selector string) error {
	el, err := p.find(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	return p.page.Keyboard.Type(input.Backspace)
}

func (p *Page) Focus(ctx context.Context, selector string) error {
	el, err := p.find(ctx, selector)
	if err != nil {
		return err
	}
	return el.Focus()
}

func (p *Page) InsertText(ctx context.Context, text string) error {
	return p.page.Context(ctx).InsertText(text)
}

func (p *Page) PressTab(ctx context.Context) error {
	return p.page.Keyboard.Type(input.Tab)
}

func (p *Page) OptionValues(ctx context.Context, selector string) ([]string, error) {
	el, err := p.find(ctx, selector)
	if err != nil {
		return nil, err
	}
	obj, err := el.Eval(optionValuesScript)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	var values []string
	if err := decode(obj.Value, &values); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return values, nil
}

func (p *Page) SelectValue(ctx context.Context, selector, value string) error {
	el, err := p.find(ctx, selector)
	if err != nil {
		return err
	}
	option := fmt.Sprintf(`option[value="%s"]`, strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value))
	if err := el.Select([]string{option}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("select %q: %w", value, err)
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.find(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (p *Page) Hover(ctx context.Context, selector string) error {
	el, err := p.find(ctx, selector)
	if err != nil {
		return err
	}
	return el.Hover()
}

func (p *Page) SetFiles(ctx context.Context, selector string, paths []string) error {
	el, err := p.find(ctx, selector)
	if err != nil {
		return err
	}
	return el.SetFiles(paths)
}

func (p *Page) ProbeFrames(ctx context.Context, containerSelector string) (output.FrameProbe, error) {
	var res struct {
		Present bool    `json:"present"`
		Height  float64 `json:"height"`
		Frames  int     `json:"frames"`
		Visible int     `json:"visible"`
	}
	if err := p.eval(ctx, &res, probeScript, containerSelector); err != nil {
		return output.FrameProbe{}, fmt.Errorf("challenge probe failed: %w", err)
	}
	return output.FrameProbe{
		ContainerPresent: res.Present,
		ContainerHeight:  res.Height,
		FrameCount:       res.Frames,
		VisibleFrame:     res.Visible,
	}, nil
}

func (p *Page) ElementBox(ctx context.Context, selector string, index int) (entity.Box, error) {
	el, err := p.nth(ctx, selector, index)
	if err != nil {
		return entity.Box{}, err
	}
	shape, err := el.Shape()
	if err != nil {
		return entity.Box{}, fmt.Errorf("element shape: %w", err)
	}
	box := shape.Box()
	if box == nil {
		return entity.Box{}, nil
	}
	return entity.Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

func (p *Page) ElementScreenshot(ctx context.Context, selector string, index int) ([]byte, error) {
	el, err := p.nth(ctx, selector, index)
	if err != nil {
		return nil, err
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("element screenshot failed: %w", err)
	}
	return data, nil
}

func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	data, err := p.page.Context(ctx).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (p *Page) MouseMove(ctx context.Context, pt entity.Point) error {
	return p.page.Mouse.MoveTo(proto.Point{X: pt.X, Y: pt.Y})
}

func (p *Page) MouseClick(ctx context.Context) error {
	return p.page.Mouse.Click(proto.InputMouseButtonLeft, 1)
}

// find waits for selector and returns the element bound to ctx without the
// lookup timeout.
func (p *Page) find(ctx context.Context, selector string) (*rod.Element, error) {
	el, err := p.page.Context(ctx).Timeout(p.elementTimeout).Element(selector)
	if err != nil {
		return nil, notFound(selector, err)
	}
	return el.CancelTimeout(), nil
}

func (p *Page) nth(ctx context.Context, selector string, index int) (*rod.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if index < 0 || index >= len(els) {
		return nil, apperr.New(apperr.ErrElementNotFound, fmt.Sprintf("%s[%d]", selector, index), nil)
	}
	return els[index], nil
}

func (p *Page) eval(ctx context.Context, out any, js string, args ...any) error {
	obj, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return err
	}
	return decode(obj.Value, out)
}

func decode(v gson.JSON, out any) error {
	return json.Unmarshal([]byte(v.JSON("", "")), out)
}

// notFound classifies lookup deadlines as missing elements and keeps other
// errors as they are.
func notFound(selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.ErrElementNotFound, selector, err)
	}
	var nf *rod.ElementNotFoundError
	if errors.As(err, &nf) {
		return apperr.New(apperr.ErrElementNotFound, selector, err)
	}
	return fmt.Errorf("query %s: %w", selector, err)
}
