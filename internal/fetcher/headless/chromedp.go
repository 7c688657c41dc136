// Package headless renders pages with headless Chrome via chromedp.
package headless

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config controls the renderer.
type Config struct {
	UserAgent string
	// Timeout bounds a single render or click-through, navigation included.
	Timeout time.Duration
	// DomainQPS throttles navigations per host; zero disables throttling.
	DomainQPS float64
}

// Renderer owns one browser for its lifetime; each call runs in a fresh
// tab. A scrape run acquires the renderer up front and must Close it on
// every exit path.
type Renderer struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
	timeout         time.Duration
	domainQPS       float64
	domainLimiters  sync.Map
	userAgent       string
}

// New launches the browser and warms it up.
func New(cfg Config, logger *zap.Logger) (*Renderer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		allocatorCancel()
		browserCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Renderer{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
		timeout:         cfg.Timeout,
		domainQPS:       cfg.DomainQPS,
		userAgent:       cfg.UserAgent,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (r *Renderer) Close() {
	if r == nil {
		return
	}
	r.browserCancel()
	r.allocatorCancel()
}

// Render navigates to the URL with JavaScript enabled and returns the
// settled DOM.
func (r *Renderer) Render(ctx context.Context, rawURL string) (string, error) {
	if err := r.waitDomainBudget(ctx, rawURL); err != nil {
		return "", fmt.Errorf("render rate limit: %w", err)
	}

	taskCtx, cancel, stop := r.newTab(ctx)
	defer cancel()
	defer stop()

	var pageHTML string
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return pageHTML, nil
}

// ClickThrough opens the listing page, clicks the nth card, waits for the
// resulting navigation, and returns the detail page's final URL and DOM.
// Used for sites whose cards navigate via script instead of an href.
func (r *Renderer) ClickThrough(ctx context.Context, listingURL, cardSelector string, index int) (string, string, error) {
	if err := r.waitDomainBudget(ctx, listingURL); err != nil {
		return "", "", fmt.Errorf("render rate limit: %w", err)
	}

	taskCtx, cancel, stop := r.newTab(ctx)
	defer cancel()
	defer stop()

	var before string
	setup := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.Navigate(listingURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Location(&before),
	}
	if err := chromedp.Run(taskCtx, setup); err != nil {
		return "", "", fmt.Errorf("open listing: %w", err)
	}

	click := fmt.Sprintf("document.querySelectorAll(%q)[%d].click(); true", cardSelector, index)
	if err := chromedp.Run(taskCtx, chromedp.Evaluate(click, nil)); err != nil {
		return "", "", fmt.Errorf("click card %d: %w", index, err)
	}

	var navigated bool
	waitNav := chromedp.Poll(
		fmt.Sprintf(`location.href !== %q && document.readyState === "complete"`, before),
		&navigated,
	)
	if err := chromedp.Run(taskCtx, waitNav); err != nil {
		return "", "", fmt.Errorf("await navigation: %w", err)
	}

	var finalURL, pageHTML string
	capture := chromedp.Tasks{
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, capture); err != nil {
		return "", "", fmt.Errorf("capture detail page: %w", err)
	}
	return finalURL, pageHTML, nil
}

// newTab opens a fresh tab bounded by the renderer timeout and forwards
// cancellation from the caller's context.
func (r *Renderer) newTab(ctx context.Context) (context.Context, context.CancelFunc, func()) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.timeout)
	stopForward := forwardCancel(ctx, cancelTask)
	return taskCtx, func() {
		cancelTask()
		cancelTab()
	}, stopForward
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func (r *Renderer) waitDomainBudget(ctx context.Context, rawURL string) error {
	if r.domainQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse render url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := r.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(r.domainQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}
