// Package messenger is the outbound side of the bot: formatted text to a
// chat, Markdown parse mode, primary channel with an HTTP fallback.
package messenger

import "context"

// Messenger sends a Markdown-formatted message to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}
