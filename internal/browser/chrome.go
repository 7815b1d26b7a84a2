package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"reelpost/internal/services"
)

// chrome implements Automation on top of chromedp.
type chrome struct {
	ctx       context.Context
	closeOnce sync.Once
	cancels   []context.CancelFunc
}

// LaunchChrome starts a Chrome instance via chromedp. It satisfies Launcher.
func LaunchChrome(ctx context.Context, opts Options) (Automation, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.ChromeBinary != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromeBinary))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so launch failures surface here
	// rather than on the first interaction.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, services.Wrap(services.ErrAutomation, "browser", "launch", "start chrome", err)
	}

	return &chrome{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}, nil
}

func (c *chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := c.ctx
	if ctx != nil {
		merged, cancel := mergeDone(c.ctx, ctx)
		defer cancel()
		runCtx = merged
	}
	return chromedp.Run(runCtx, actions...)
}

// mergeDone derives a context from base that is also canceled when other is
// done. chromedp requires its own context chain, so the caller's deadline is
// propagated by cancellation rather than by passing the context through.
func mergeDone(base, other context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(base)
	go func() {
		select {
		case <-other.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}

func (c *chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return services.Wrap(services.ErrAutomation, "browser", "navigate", url, err)
	}
	return nil
}

func (c *chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	if errors.Is(err, context.Canceled) {
		return false, ctx.Err()
	}
	return false, services.Wrap(services.ErrAutomation, "browser", "wait", selector, err)
}

func (c *chrome) UploadFile(ctx context.Context, selector, path string) error {
	err := c.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery),
	)
	if err != nil {
		return services.Wrap(services.ErrAutomation, "browser", "upload", selector, err)
	}
	return nil
}

func (c *chrome) FillField(ctx context.Context, selector, text string) error {
	err := c.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return services.Wrap(services.ErrAutomation, "browser", "fill", selector, err)
	}
	return nil
}

func (c *chrome) ReadText(ctx context.Context, selector string) (string, error) {
	var out string
	if err := c.run(ctx, chromedp.Text(selector, &out, chromedp.ByQuery)); err != nil {
		return "", services.Wrap(services.ErrAutomation, "browser", "read text", selector, err)
	}
	return out, nil
}

func (c *chrome) ReadAttribute(ctx context.Context, selector, attribute string) (string, error) {
	var (
		value string
		ok    bool
	)
	if err := c.run(ctx, chromedp.AttributeValue(selector, attribute, &value, &ok, chromedp.ByQuery)); err != nil {
		return "", services.Wrap(services.ErrAutomation, "browser", "read attribute", selector, err)
	}
	if !ok {
		return "", services.Wrap(services.ErrAutomation, "browser", "read attribute", fmt.Sprintf("%s has no attribute %q", selector, attribute), nil)
	}
	return value, nil
}

func (c *chrome) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, services.Wrap(services.ErrAutomation, "browser", "get cookies", "", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}
	return cookies, nil
}

func (c *chrome) SetCookies(ctx context.Context, cookies []Cookie) error {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, cookie := range cookies {
		param := &network.CookieParam{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			HTTPOnly: cookie.HTTPOnly,
			Secure:   cookie.Secure,
		}
		if cookie.Expires > 0 {
			expiry := cdp.TimeSinceEpoch(time.Unix(int64(cookie.Expires), 0))
			param.Expires = &expiry
		}
		params = append(params, param)
	}

	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return storage.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return services.Wrap(services.ErrAutomation, "browser", "set cookies", "", err)
	}
	return nil
}

func (c *chrome) Close() error {
	c.closeOnce.Do(func() {
		for _, cancel := range c.cancels {
			cancel()
		}
	})
	return nil
}
