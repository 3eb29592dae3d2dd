package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/VivekPatel4/movie-search-bot/internal/session"
)

const (
	msgWelcome = "👋 Welcome to Movie/Web-Series Search Bot!\n\nSimply type any message to start a new search."

	msgNewSearch   = "🔍 *Starting a new search*"
	msgChatCleared = "🧹 *Chat cleared*\n\nType anything to start a new search."
	msgMainMenu    = "🏠 *Returning to main menu*"

	msgInvalidChoice = "❌ Invalid choice. Please select a number from the list."
	msgInvalidNumber = "❌ Please enter a valid number."
	msgInvalidQuery  = "❌ Please enter a valid search term."
	msgAskQuery      = "🔍 Now, please enter the movie or series name you want to search for:"
	msgGenericError  = "❌ Sorry, there was an error processing your request."
)

// showSiteOptions renders the numbered site list in catalog order and leaves
// the session waiting for a site choice.
func (e *Engine) showSiteOptions(ctx context.Context, sess *session.Session) {
	var b strings.Builder
	b.WriteString("🌐 *Available Sites:*\n\n")
	for i, site := range e.catalog.Current().Sites {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, strings.ToUpper(site.Name))
	}
	b.WriteString("\nReply with the number of the site you want to search on.")
	e.send(ctx, sess.ChatID, b.String())
	sess.State = session.StateWaitingForSite
}

// showCategoryOptions renders the numbered category list for the selected
// site and leaves the session waiting for a category choice.
func (e *Engine) showCategoryOptions(ctx context.Context, sess *session.Session) {
	site := e.catalog.Current().SiteByName(sess.Site)
	if site == nil {
		e.StartSearch(ctx, sess.ChatID, "")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📂 *Categories for %s:*\n\n", strings.ToUpper(site.Name))
	for i, cat := range site.Categories {
		fmt.Fprintf(&b, "%d. *%s* (%s)\n", i+1, cat.Key, cat.Label)
	}
	b.WriteString("\nReply with the number of the category you want to search in.")
	e.send(ctx, sess.ChatID, b.String())
	sess.State = session.StateWaitingForCategory
}

// showOptionsMenu renders the post-search menu and clears the selection so
// the next flow starts clean.
func (e *Engine) showOptionsMenu(ctx context.Context, sess *session.Session) {
	text := "\n\n📋 *What would you like to do next?*\n\n" +
		"1️⃣ *New Search* - Start a new search\n" +
		"2️⃣ *Clear Chat* - Clear chat history\n" +
		"3️⃣ *Main Menu* - Return to main menu\n\n" +
		"Reply with the number of your choice."
	e.send(ctx, sess.ChatID, text)
	sess.State = session.StateWaitingForMenu
	sess.Query = ""
	sess.Site = ""
	sess.Category = ""
}

func renderSearching(query, siteName, categoryKey, label string) string {
	return fmt.Sprintf("🔍 Searching for: *%s* on *%s* in *%s* (%s)...",
		query, strings.ToUpper(siteName), categoryKey, label)
}

func renderResult(siteName, label, url string) string {
	return fmt.Sprintf("✅ *%s* (%s)\n%s", strings.ToUpper(siteName), label, url)
}
