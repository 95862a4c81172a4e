package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/ingestion/fetch")

var chromiumArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--window-size=1920,1080",
}

type PlaywrightOptions struct {
	UserAgent   string
	Timeout     time.Duration
	SettleDelay time.Duration
}

// Playwright renders pages in headless Chromium. One browser is shared by every Fetch.
type Playwright struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    PlaywrightOptions
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPlaywright starts the driver and launches the browser. Callers must Close it.
func NewPlaywright(opts PlaywrightOptions, logger *zap.Logger) (*Playwright, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     chromiumArgs,
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			logger.Warn("failed to stop playwright", zap.Error(stopErr))
		}
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	logger.Info("playwright browser launched", zap.String("version", browser.Version()))
	return &Playwright{
		pw:      pw,
		browser: browser,
		opts:    opts,
		logger:  logger,
	}, nil
}

func (p *Playwright) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Playwright.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("http.url", url))

	if err := ctx.Err(); err != nil {
		return "", errors.Unavailable("fetch cancelled", err)
	}

	browserCtx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(p.opts.UserAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		span.RecordError(err)
		return "", errors.Unavailable("creating browser context", err)
	}
	defer func() {
		if cerr := browserCtx.Close(); cerr != nil {
			p.logger.Warn("failed to close browser context", zap.Error(cerr))
		}
	}()

	page, err := browserCtx.NewPage()
	if err != nil {
		span.RecordError(err)
		return "", errors.Unavailable("opening page", err)
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.navigationTimeout(ctx).Milliseconds())),
	}); err != nil {
		span.RecordError(err)
		p.logger.Error("navigation failed", zap.String("url", url), zap.Error(err))
		return "", errors.Unavailable("navigating to "+url, err)
	}

	// Let client-side rendering settle before reading the DOM.
	select {
	case <-ctx.Done():
		return "", errors.Unavailable("fetch cancelled", ctx.Err())
	case <-time.After(p.opts.SettleDelay):
	}

	content, err := page.Content()
	if err != nil {
		span.RecordError(err)
		return "", errors.Unavailable("reading page content", err)
	}

	span.SetAttributes(telemetry.Int("page.size", len(content)))
	p.logger.Debug("page rendered", zap.String("url", url), zap.Int("bytes", len(content)))
	return content, nil
}

// navigationTimeout is the configured timeout, shortened to the context deadline.
func (p *Playwright) navigationTimeout(ctx context.Context) time.Duration {
	timeout := p.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout < time.Millisecond {
		timeout = time.Millisecond
	}
	return timeout
}

// Close shuts the browser and the driver. It is safe to call more than once.
func (p *Playwright) Close() error {
	p.closeOnce.Do(func() {
		if err := p.browser.Close(); err != nil {
			p.logger.Warn("failed to close browser", zap.Error(err))
		}
		if err := p.pw.Stop(); err != nil {
			p.closeErr = fmt.Errorf("stopping playwright: %w", err)
		}
		p.logger.Info("playwright browser released")
	})
	return p.closeErr
}
