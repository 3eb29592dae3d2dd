package engine

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/VivekPatel4/movie-search-bot/internal/catalog"
	"github.com/VivekPatel4/movie-search-bot/internal/session"
)

type fakeMessenger struct {
	sent []string
}

func (f *fakeMessenger) Send(_ context.Context, _ int64, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeMessenger) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func newTestEngine() (*Engine, *session.InMemoryStore, *fakeMessenger) {
	holder := catalog.NewHolder(catalog.Seed())
	sessions := session.NewInMemoryStore()
	out := &fakeMessenger{}
	eng := New(holder, sessions, out, log.New(io.Discard, "", 0))
	return eng, sessions, out
}

func mustState(t *testing.T, sessions *session.InMemoryStore, chatID int64, want session.State) *session.Session {
	t.Helper()
	sess, ok := sessions.Get(chatID)
	if !ok {
		t.Fatalf("expected session for chat %d", chatID)
	}
	if sess.State != want {
		t.Fatalf("expected state %q, got %q", want, sess.State)
	}
	return sess
}

func TestFirstMessageRendersSiteList(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "Inception")

	mustState(t, sessions, 42, session.StateWaitingForSite)
	if len(out.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out.sent))
	}
	msg := out.sent[0]
	if !strings.Contains(msg, "Available Sites") {
		t.Fatalf("expected site list, got %q", msg)
	}
	// Catalog order, 1-based numbering.
	if !strings.Contains(msg, "1. *KATWORLD*") ||
		!strings.Contains(msg, "2. *HDHUB4U*") ||
		!strings.Contains(msg, "3. *MOVIESFLIX*") {
		t.Fatalf("expected sites in catalog order, got %q", msg)
	}
}

func TestOutOfRangeSiteChoiceReRendersList(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "Inception")
	siteList := out.last()

	eng.HandleText(ctx, 42, "9")

	mustState(t, sessions, 42, session.StateWaitingForSite)
	if out.last() != siteList {
		t.Fatalf("expected site list re-rendered verbatim, got %q", out.last())
	}
	if !strings.Contains(out.sent[len(out.sent)-2], "Invalid choice") {
		t.Fatalf("expected invalid choice notice, got %q", out.sent[len(out.sent)-2])
	}
}

func TestNonNumericSiteChoiceReRendersList(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "Inception")
	eng.HandleText(ctx, 42, "first one please")

	mustState(t, sessions, 42, session.StateWaitingForSite)
	if !strings.Contains(out.last(), "Available Sites") {
		t.Fatalf("expected site list re-rendered, got %q", out.last())
	}
}

func TestFullSearchFlow(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "Inception")
	eng.HandleText(ctx, 42, "2") // hdhub4u

	sess := mustState(t, sessions, 42, session.StateWaitingForCategory)
	if sess.Site != "hdhub4u" {
		t.Fatalf("expected site hdhub4u, got %q", sess.Site)
	}
	if !strings.Contains(out.last(), "Categories for HDHUB4U") {
		t.Fatalf("expected category list, got %q", out.last())
	}

	eng.HandleText(ctx, 42, "1") // main, a query category
	mustState(t, sessions, 42, session.StateWaitingForQuery)

	eng.HandleText(ctx, 42, "Inception")
	mustState(t, sessions, 42, session.StateWaitingForMenu)

	var result string
	for _, msg := range out.sent {
		if strings.Contains(msg, "?s=") {
			result = msg
		}
	}
	if !strings.Contains(result, "https://hdhub4u.frl/?s=Inception") {
		t.Fatalf("expected synthesized search URL, got %q", result)
	}
	if !strings.Contains(out.last(), "What would you like to do next?") {
		t.Fatalf("expected options menu last, got %q", out.last())
	}
}

func TestQueryEncodingUsesPlusForSpaces(t *testing.T) {
	eng, _, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 7, "hello")
	eng.HandleText(ctx, 7, "2")
	eng.HandleText(ctx, 7, "1")
	eng.HandleText(ctx, 7, "The Dark Knight")

	found := false
	for _, msg := range out.sent {
		if strings.Contains(msg, "?s=The+Dark+Knight") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected query encoded with +, messages: %v", out.sent)
	}
}

func TestDirectCategorySkipsQueryStep(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3") // moviesflix
	eng.HandleText(ctx, 42, "2") // bollywood, a direct category

	mustState(t, sessions, 42, session.StateWaitingForMenu)
	found := false
	for _, msg := range out.sent {
		if strings.Contains(msg, "https://themoviesflix.ag/category/hindi-movies/") {
			found = true
			if strings.Contains(msg, "?s=") {
				t.Fatalf("direct URL must not carry a query, got %q", msg)
			}
		}
		if strings.Contains(msg, "movie or series name") {
			t.Fatalf("direct category must not prompt for a query, got %q", msg)
		}
	}
	if !found {
		t.Fatalf("expected direct category URL, messages: %v", out.sent)
	}
}

func TestSearchCategoryOfDirectSiteStillPrompts(t *testing.T) {
	eng, sessions, _ := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3") // moviesflix
	eng.HandleText(ctx, 42, "1") // search category

	mustState(t, sessions, 42, session.StateWaitingForQuery)
}

func TestEmptyQueryReprompts(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "2")
	eng.HandleText(ctx, 42, "1")
	eng.HandleText(ctx, 42, "   ")

	mustState(t, sessions, 42, session.StateWaitingForQuery)
	if !strings.Contains(out.last(), "movie or series name") {
		t.Fatalf("expected re-prompt, got %q", out.last())
	}
}

func TestSearchURLFallsBackToLabel(t *testing.T) {
	holder := catalog.NewHolder(&catalog.Catalog{Sites: []catalog.Site{{
		Name:           "example",
		Categories:     []catalog.Category{{Key: "main", Label: "https://example.net/"}},
		WorkingDomains: map[string]string{},
	}}})
	eng := New(holder, session.NewInMemoryStore(), &fakeMessenger{}, log.New(io.Discard, "", 0))

	site := holder.Current().SiteByName("example")
	got := eng.SearchURL(site, "main", "Dune")
	if got != "https://example.net/?s=Dune" {
		t.Fatalf("expected label fallback base, got %q", got)
	}
}

func TestMenuClearDeletesSession(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3")
	eng.HandleText(ctx, 42, "2") // direct category, ends in menu
	mustState(t, sessions, 42, session.StateWaitingForMenu)

	eng.HandleText(ctx, 42, "2") // clear chat

	if _, ok := sessions.Get(42); ok {
		t.Fatal("expected session to be deleted")
	}
	if !strings.Contains(out.last(), "Chat cleared") {
		t.Fatalf("expected clear confirmation, got %q", out.last())
	}
}

func TestMenuNewSearchRestartsFlow(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3")
	eng.HandleText(ctx, 42, "2")

	eng.HandleText(ctx, 42, "1") // new search

	mustState(t, sessions, 42, session.StateWaitingForSite)
	if !strings.Contains(out.last(), "Available Sites") {
		t.Fatalf("expected site list, got %q", out.last())
	}
}

func TestMenuMainMenuEqualsNewSearch(t *testing.T) {
	eng, sessions, _ := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3")
	eng.HandleText(ctx, 42, "2")

	eng.HandleText(ctx, 42, "3") // main menu

	mustState(t, sessions, 42, session.StateWaitingForSite)
}

func TestMenuUnknownNumberReRendersMenu(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3")
	eng.HandleText(ctx, 42, "2")

	eng.HandleText(ctx, 42, "7")

	mustState(t, sessions, 42, session.StateWaitingForMenu)
	if !strings.Contains(out.last(), "What would you like to do next?") {
		t.Fatalf("expected menu re-rendered, got %q", out.last())
	}
}

func TestMenuFreeTextStartsNewSearch(t *testing.T) {
	eng, sessions, _ := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.HandleText(ctx, 42, "3")
	eng.HandleText(ctx, 42, "2")

	eng.HandleText(ctx, 42, "Oppenheimer")

	sess := mustState(t, sessions, 42, session.StateWaitingForSite)
	if sess.Query != "Oppenheimer" {
		t.Fatalf("expected query carried into new session, got %q", sess.Query)
	}
}

func TestResetDropsSessionAndWelcomes(t *testing.T) {
	eng, sessions, out := newTestEngine()
	ctx := context.Background()

	eng.HandleText(ctx, 42, "hi")
	eng.Reset(ctx, 42)

	if _, ok := sessions.Get(42); ok {
		t.Fatal("expected session to be gone after reset")
	}
	if !strings.Contains(out.last(), "Welcome") {
		t.Fatalf("expected welcome message, got %q", out.last())
	}
}
