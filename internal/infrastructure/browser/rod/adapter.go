package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
)

const (
	defaultElementTimeout = 10 * time.Second
	defaultViewportWidth  = 1366
	defaultViewportHeight = 900
)

var (
	_ output.BrowserFactory = (*Factory)(nil)
	_ output.Session        = (*Session)(nil)
)

type Config struct {
	Headless bool
	// Stealth opens pages through go-rod/stealth and hides the automation
	// flag from navigator.webdriver.
	Stealth        bool
	NoSandbox      bool
	Bin            string
	SlowMotion     time.Duration
	ElementTimeout time.Duration
	ViewportWidth  int
	ViewportHeight int
}

func DefaultConfig() Config {
	return Config{
		Headless:       false,
		Stealth:        true,
		NoSandbox:      false,
		ElementTimeout: defaultElementTimeout,
		ViewportWidth:  defaultViewportWidth,
		ViewportHeight: defaultViewportHeight,
	}
}

// Factory launches one browser process per session so concurrent runs
// never share cookies, storage or input state.
type Factory struct {
	cfg    Config
	logger output.LoggerPort
}

func NewFactory(cfg Config, logger output.LoggerPort) *Factory {
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = defaultElementTimeout
	}
	return &Factory{cfg: cfg, logger: logger}
}

func (f *Factory) NewSession(ctx context.Context) (output.Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(f.cfg.Headless).
		NoSandbox(f.cfg.NoSandbox).
		Set("disable-blink-features", "AutomationControlled").
		Delete("use-mock-keychain")
	if f.cfg.Bin != "" {
		l = l.Bin(f.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(f.cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &Session{browser: browser, launcher: l, logger: f.logger}

	var page *rod.Page
	if f.cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if f.cfg.ViewportWidth > 0 && f.cfg.ViewportHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             f.cfg.ViewportWidth,
			Height:            f.cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			f.logger.Warn("Viewport not set", "error", err)
		}
	}

	s.page = &Page{page: page, elementTimeout: f.cfg.ElementTimeout}
	f.logger.Debug("Browser session opened", "headless", f.cfg.Headless, "stealth", f.cfg.Stealth)
	return s, nil
}

type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *Page
	logger   output.LoggerPort
	closed   bool
}

func (s *Session) Page() output.Page {
	return s.page
}

// Close releases the browser process. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
