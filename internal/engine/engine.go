// Package engine implements the multi-turn site/category/query selection
// flow. Given a chat's session and an inbound text event it decides the next
// state, sends the menus and synthesizes search URLs.
package engine

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/VivekPatel4/movie-search-bot/internal/catalog"
	"github.com/VivekPatel4/movie-search-bot/internal/messenger"
	"github.com/VivekPatel4/movie-search-bot/internal/metrics"
	"github.com/VivekPatel4/movie-search-bot/internal/session"
)

type Engine struct {
	catalog  *catalog.Holder
	sessions session.Store
	out      messenger.Messenger
	logger   *log.Logger
}

func New(holder *catalog.Holder, sessions session.Store, out messenger.Messenger, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	return &Engine{catalog: holder, sessions: sessions, out: out, logger: logger}
}

// StartSearch resets the chat's session and walks it into site selection.
func (e *Engine) StartSearch(ctx context.Context, chatID int64, query string) {
	e.logger.Printf("starting search for %q for chat %d", query, chatID)
	sess := e.sessions.CreateOrReset(chatID, query)
	e.showSiteOptions(ctx, sess)
}

// Reset handles the /start command: any session is dropped and a welcome
// message invites a fresh search.
func (e *Engine) Reset(ctx context.Context, chatID int64) {
	e.sessions.Delete(chatID)
	e.send(ctx, chatID, msgWelcome)
}

// HandleText applies one inbound text event to the chat's session. It never
// leaves the session without a forward path: every branch either re-renders
// the current menu or moves to the next one.
func (e *Engine) HandleText(ctx context.Context, chatID int64, text string) {
	metrics.MessagesHandled.Inc()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("recovering from error handling message for chat %d: %v", chatID, r)
			e.sessions.Delete(chatID)
			e.send(ctx, chatID, msgGenericError)
		}
	}()

	sess, ok := e.sessions.Get(chatID)
	if !ok {
		e.StartSearch(ctx, chatID, text)
		return
	}

	switch sess.State {
	case session.StateWaitingForMenu:
		e.handleMenuChoice(ctx, sess, text)
	case session.StateWaitingForSite:
		e.handleSiteChoice(ctx, sess, text)
	case session.StateWaitingForCategory:
		e.handleCategoryChoice(ctx, sess, text)
	case session.StateWaitingForQuery:
		e.handleQuery(ctx, sess, text)
	default:
		// Anything else is treated as a brand-new search.
		e.StartSearch(ctx, chatID, text)
	}
}

func (e *Engine) handleMenuChoice(ctx context.Context, sess *session.Session, text string) {
	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		// Not a number: treat it as a new search query.
		e.StartSearch(ctx, sess.ChatID, text)
		return
	}
	switch choice {
	case 1:
		e.send(ctx, sess.ChatID, msgNewSearch)
		e.StartSearch(ctx, sess.ChatID, "")
	case 2:
		e.send(ctx, sess.ChatID, msgChatCleared)
		e.sessions.Delete(sess.ChatID)
	case 3:
		e.send(ctx, sess.ChatID, msgMainMenu)
		e.StartSearch(ctx, sess.ChatID, "")
	default:
		e.send(ctx, sess.ChatID, msgInvalidChoice)
		e.showOptionsMenu(ctx, sess)
	}
}

func (e *Engine) handleSiteChoice(ctx context.Context, sess *session.Session, text string) {
	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		e.send(ctx, sess.ChatID, msgInvalidNumber)
		e.showSiteOptions(ctx, sess)
		return
	}
	site := e.catalog.Current().SiteByIndex(choice)
	if site == nil {
		e.send(ctx, sess.ChatID, msgInvalidChoice)
		e.showSiteOptions(ctx, sess)
		return
	}
	sess.Site = site.Name
	sess.State = session.StateCategorySelection
	e.logger.Printf("chat %d selected site: %s", sess.ChatID, site.Name)
	e.send(ctx, sess.ChatID, "You selected: *"+strings.ToUpper(site.Name)+"*")
	e.showCategoryOptions(ctx, sess)
}

func (e *Engine) handleCategoryChoice(ctx context.Context, sess *session.Session, text string) {
	site := e.catalog.Current().SiteByName(sess.Site)
	if site == nil {
		// The catalog was replaced and the site is gone; start over.
		e.StartSearch(ctx, sess.ChatID, text)
		return
	}
	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		e.send(ctx, sess.ChatID, msgInvalidNumber)
		e.showCategoryOptions(ctx, sess)
		return
	}
	if choice < 1 || choice > len(site.Categories) {
		e.send(ctx, sess.ChatID, msgInvalidChoice)
		e.showCategoryOptions(ctx, sess)
		return
	}

	cat := site.Categories[choice-1]
	sess.Category = cat.Key
	e.logger.Printf("chat %d selected category: %s (%s)", sess.ChatID, cat.Key, cat.Label)
	e.send(ctx, sess.ChatID, "You selected: *"+cat.Key+"* ("+cat.Label+")")

	if site.DirectCategories && cat.Key != site.SearchCategory {
		// Non-search categories of the direct-link site map straight to a
		// browsable URL, no query needed.
		directURL := e.baseFor(site, cat.Key)
		e.send(ctx, sess.ChatID, renderResult(site.Name, cat.Label, directURL))
		e.showOptionsMenu(ctx, sess)
		return
	}

	e.send(ctx, sess.ChatID, msgAskQuery)
	sess.State = session.StateWaitingForQuery
}

func (e *Engine) handleQuery(ctx context.Context, sess *session.Session, text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		e.send(ctx, sess.ChatID, msgInvalidQuery)
		e.send(ctx, sess.ChatID, msgAskQuery)
		return
	}
	sess.Query = query
	sess.State = session.StateSearching
	e.performSearch(ctx, sess)
}

// performSearch synthesizes the search URL and sends it, then always renders
// the options menu so the chat keeps a forward path.
func (e *Engine) performSearch(ctx context.Context, sess *session.Session) {
	defer e.showOptionsMenu(ctx, sess)

	site := e.catalog.Current().SiteByName(sess.Site)
	if site == nil {
		e.logger.Printf("site %q vanished from catalog during search for chat %d", sess.Site, sess.ChatID)
		e.send(ctx, sess.ChatID, msgGenericError)
		return
	}
	label := site.Label(sess.Category)
	e.send(ctx, sess.ChatID, renderSearching(sess.Query, site.Name, sess.Category, label))

	searchURL := e.SearchURL(site, sess.Category, sess.Query)
	e.logger.Printf("search URL for chat %d: %s", sess.ChatID, searchURL)
	e.send(ctx, sess.ChatID, renderResult(site.Name, label, searchURL))
}

// SearchURL composes the query-string search URL for a site/category pair.
func (e *Engine) SearchURL(site *catalog.Site, category, query string) string {
	return e.baseFor(site, category) + "?s=" + url.QueryEscape(query)
}

// baseFor returns the working domain for a category, falling back to the
// category label when no domain is known. The label is not always a URL; the
// degraded result is still sent, with a warning in the log.
func (e *Engine) baseFor(site *catalog.Site, category string) string {
	base := strings.TrimSpace(site.WorkingDomain(category))
	if base == "" {
		base = site.Label(category)
	}
	if u, err := url.Parse(base); err != nil || !u.IsAbs() {
		e.logger.Printf("base for %s/%s is not an absolute URL: %q", site.Name, category, base)
	}
	return base
}

func (e *Engine) send(ctx context.Context, chatID int64, text string) {
	if err := e.out.Send(ctx, chatID, text); err != nil {
		e.logger.Printf("sending to chat %d: %v", chatID, err)
	}
}
