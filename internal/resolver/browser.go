package resolver

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
)

// ResolveFinalURL chases rawURL through client-side redirects in a headless
// browser and verifies the settled URL over plain HTTP. Each attempt owns an
// isolated browser that is torn down before the next one starts. On total
// failure the input URL is returned unchanged; this never reports an error to
// the caller.
func (r *Resolver) ResolveFinalURL(ctx context.Context, rawURL string) string {
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		final, err := r.browse(ctx, rawURL)
		if err == nil {
			return r.verifyURL(ctx, final)
		}
		r.logger.Printf("browser error for %s (attempt %d/%d): %v", rawURL, attempt, r.cfg.MaxRetries, err)
		if attempt < r.cfg.MaxRetries {
			select {
			case <-time.After(r.cfg.RetryBackoff):
			case <-ctx.Done():
				return rawURL
			}
		}
	}
	return rawURL
}

// browseOnce navigates a fresh headless browser to rawURL, lets client-side
// redirects settle, and applies the matching interstitial handler if the
// settled URL is a known click-through page.
func (r *Resolver) browseOnce(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(r.cfg.UserAgent),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(bctx, r.cfg.NavTimeout)
	defer cancelNav()

	var current string
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(rawURL),
		chromedp.Sleep(r.cfg.InitialSettle),
		chromedp.Location(&current),
	); err != nil {
		return "", err
	}
	r.logger.Printf("initial URL after loading %s: %s", rawURL, current)

	for _, h := range r.handlers {
		if !h.Matches(current) {
			continue
		}
		next, err := h.Resolve(bctx, current)
		if err != nil {
			// Keep whatever URL we last saw.
			r.logger.Printf("interstitial handling for %s: %v", current, err)
			return current, nil
		}
		if next != "" {
			current = next
		}
		return current, nil
	}

	// No interstitial matched: give client-side redirects time to fire, then
	// re-read the location.
	settleCtx, cancelSettle := context.WithTimeout(bctx, r.cfg.SettleTime+5*time.Second)
	defer cancelSettle()
	var settled string
	if err := chromedp.Run(settleCtx,
		chromedp.Sleep(r.cfg.SettleTime),
		chromedp.Location(&settled),
	); err == nil && settled != "" {
		current = settled
	}
	return current, nil
}

// verifyURL issues a plain GET following up to 5 redirects and prefers the
// responding URL over the browser-resolved one. Verification failure keeps
// the browser result.
func (r *Resolver) verifyURL(ctx context.Context, resolved string) string {
	client := &http.Client{
		Timeout: r.cfg.VerifyTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return resolved
	}
	setBrowserHeaders(req, r.cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		r.logger.Printf("failed to verify final URL %s: %v", resolved, err)
		return resolved
	}
	defer resp.Body.Close()

	if final := resp.Request.URL.String(); final != "" {
		if final != resolved {
			r.logger.Printf("verified final URL: %s", final)
		}
		return final
	}
	return resolved
}
