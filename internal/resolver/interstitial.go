package resolver

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/VivekPatel4/movie-search-bot/config"
)

// InterstitialHandler recovers from a site-specific click-through page.
// Matches reports whether a settled URL is that site's interstitial; Resolve
// drives the already-open browser context through to the real host. New site
// quirks get a new handler, the resolution loop stays untouched.
type InterstitialHandler interface {
	Matches(url string) bool
	Resolve(ctx context.Context, current string) (string, error)
}

const (
	hdhubContinueSelector  = "a.new-tab.btn.btn-lg.btn-radius.btn-primary"
	hdhubSecondarySelector = "#stx a"
)

var hdhubInterstitialDomains = []string{"hdhub4u.mn", "hdhub4u.do"}

// hdhub4uHandler clicks through the hdhub4u interstitial: a "View Full Site"
// button that opens the real host in a new tab, with a "Click Here" link as
// the secondary route when the button is missing or the tab never opens.
type hdhub4uHandler struct {
	selectorWait time.Duration
	settle       time.Duration
	logger       *log.Logger
}

func newHDHub4uHandler(cfg config.ResolverConfig, logger *log.Logger) *hdhub4uHandler {
	return &hdhub4uHandler{
		selectorWait: cfg.SettleTime,
		settle:       cfg.ClickWait,
		logger:       logger,
	}
}

func (h *hdhub4uHandler) Matches(u string) bool {
	for _, domain := range hdhubInterstitialDomains {
		if strings.Contains(u, domain) {
			return true
		}
	}
	return false
}

func (h *hdhub4uHandler) Resolve(ctx context.Context, current string) (string, error) {
	// The continue button opens the real site in a new tab, so the target
	// listener has to be armed before clicking.
	targets := chromedp.WaitNewTarget(ctx, func(info *target.Info) bool {
		return info.Type == "page" && info.URL != ""
	})

	clickCtx, cancelClick := context.WithTimeout(ctx, h.selectorWait)
	err := chromedp.Run(clickCtx,
		chromedp.WaitVisible(hdhubContinueSelector, chromedp.ByQuery),
		chromedp.Click(hdhubContinueSelector, chromedp.ByQuery),
	)
	cancelClick()
	if err != nil {
		h.logger.Printf("continue button not found on %s: %v", current, err)
		return h.followSecondary(ctx, current)
	}

	select {
	case id := <-targets:
		tabCtx, cancelTab := chromedp.NewContext(ctx, chromedp.WithTargetID(id))
		defer cancelTab()

		var u string
		readCtx, cancelRead := context.WithTimeout(tabCtx, h.settle+h.selectorWait)
		err := chromedp.Run(readCtx, chromedp.Sleep(h.settle), chromedp.Location(&u))
		cancelRead()
		if err != nil || u == "" {
			return current, err
		}
		h.logger.Printf("new tab URL after clicking through %s: %s", current, u)
		if h.Matches(u) {
			// Still stuck on the interstitial in the new tab.
			return h.followSecondary(tabCtx, u)
		}
		return u, nil
	case <-time.After(h.settle):
		// No new tab opened; fall back to the secondary link in place.
		return h.followSecondary(ctx, current)
	case <-ctx.Done():
		return current, ctx.Err()
	}
}

// followSecondary reads the href of the "Click Here" link and navigates to it
// explicitly, then waits out redirects and re-reads the location. When the
// link is missing the current URL is kept.
func (h *hdhub4uHandler) followSecondary(ctx context.Context, current string) (string, error) {
	var href string
	var ok bool
	attrCtx, cancelAttr := context.WithTimeout(ctx, h.selectorWait)
	err := chromedp.Run(attrCtx,
		chromedp.AttributeValue(hdhubSecondarySelector, "href", &href, &ok, chromedp.ByQuery),
	)
	cancelAttr()
	if err != nil || !ok || href == "" {
		h.logger.Printf("no secondary link found on %s", current)
		return current, nil
	}
	h.logger.Printf("found secondary link on %s: %s", current, href)

	var u string
	navCtx, cancelNav := context.WithTimeout(ctx, h.settle+h.selectorWait)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(href),
		chromedp.Sleep(h.settle),
		chromedp.Location(&u),
	); err != nil || u == "" {
		return current, nil
	}
	return u, nil
}
