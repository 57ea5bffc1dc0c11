package crawler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type ChromeOptions struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	Width     int
	Height    int
	// per-action timeout for navigation and page reads
	Timeout time.Duration
}

func DefaultChromeOptions() ChromeOptions {
	return ChromeOptions{
		Headless:  true,
		UserAgent: DefaultUserAgent,
		Width:     1920,
		Height:    1080,
		Timeout:   45 * time.Second,
	}
}

// ChromeLauncher starts a local Chrome through chromedp. The browser lives
// until Quit, independent of ctx cancellation.
func ChromeLauncher(opts ChromeOptions) Launcher {
	return func(ctx context.Context) (Browser, error) {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if opts.UserAgent != "" {
			allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
		}
		if opts.Width > 0 && opts.Height > 0 {
			allocOpts = append(allocOpts, chromedp.WindowSize(opts.Width, opts.Height))
		}
		if opts.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

		b := &ChromeBrowser{
			ctx:           browserCtx,
			cancelBrowser: cancelBrowser,
			cancelAlloc:   cancelAlloc,
			timeout:       opts.Timeout,
		}
		// the first Run allocates the browser and ties it to browserCtx, so it
		// must not go through a derived timeout context
		if err := chromedp.Run(browserCtx); err != nil {
			_ = b.Quit()
			return nil, fmt.Errorf("start chrome: %w", err)
		}
		return b, nil
	}
}

type ChromeBrowser struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	timeout       time.Duration
}

// run executes actions on the browser tab, bounded by the per-action timeout
// and by the caller's ctx.
func (b *ChromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if b.timeout > 0 {
		runCtx, cancel = context.WithTimeout(b.ctx, b.timeout)
	} else {
		runCtx, cancel = context.WithCancel(b.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (b *ChromeBrowser) Title(ctx context.Context) (string, error) {
	var title string
	err := b.run(ctx, chromedp.Title(&title))
	return title, err
}

func (b *ChromeBrowser) PageMarkup(ctx context.Context) (string, error) {
	var html string
	err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Screenshot saves a full-page PNG of the current tab.
func (b *ChromeBrowser) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := b.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func (b *ChromeBrowser) Quit() error {
	err := chromedp.Cancel(b.ctx)
	b.cancelBrowser()
	b.cancelAlloc()
	return err
}
