// Package session tracks per-chat conversation state.
package session

import "time"

// State identifies where a chat is in the selection flow.
type State string

const (
	StateSiteSelection      State = "site_selection"
	StateWaitingForSite     State = "waiting_for_site"
	StateCategorySelection  State = "category_selection"
	StateWaitingForCategory State = "waiting_for_category"
	StateWaitingForQuery    State = "waiting_for_query"
	StateSearching          State = "searching"
	StateWaitingForMenu     State = "waiting_for_menu_choice"
)

// Session is the conversation state of one chat. It is owned by the Store;
// the engine mutates it in place while handling a single inbound event, no
// two events for the same chat are processed concurrently.
type Session struct {
	ChatID       int64
	State        State
	Query        string
	Site         string
	Category     string
	LastActivity time.Time
}

// Store is a concurrency-safe map from chat ID to Session.
type Store interface {
	// Get returns the session for a chat, touching its activity timestamp.
	Get(chatID int64) (*Session, bool)
	// CreateOrReset replaces any existing session with a fresh one in the
	// initial state carrying the given query.
	CreateOrReset(chatID int64, query string) *Session
	// Delete removes a session if present.
	Delete(chatID int64)
	// SweepExpired removes every session idle longer than ttl and reports how
	// many were removed.
	SweepExpired(now time.Time, ttl time.Duration) int
}
