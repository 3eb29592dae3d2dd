package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/metrics"
)

// Telegram posts messages to the Bot API. The primary path reuses a pooled
// client; when it fails the same payload is retried through an independent
// fallback client so a wedged connection pool cannot silence the bot.
type Telegram struct {
	token    string
	apiBase  string
	client   *http.Client
	fallback *http.Client
	logger   *log.Logger
}

func NewTelegram(cfg config.TelegramConfig, logger *log.Logger) *Telegram {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEND] ", log.LstdFlags)
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Telegram{
		token:    cfg.Token,
		apiBase:  cfg.APIBaseURL,
		client:   &http.Client{Timeout: timeout},
		fallback: &http.Client{Timeout: timeout, Transport: &http.Transport{DisableKeepAlives: true}},
		logger:   logger,
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	if err := t.post(ctx, t.client, chatID, text); err != nil {
		t.logger.Printf("primary send to chat %d failed: %v, retrying via fallback", chatID, err)
		metrics.SendFallbacks.Inc()
		if err2 := t.post(ctx, t.fallback, chatID, text); err2 != nil {
			metrics.SendFailures.Inc()
			t.logger.Printf("fallback send to chat %d failed: %v", chatID, err2)
			return fmt.Errorf("sending message to chat %d: %w", chatID, err2)
		}
	}
	return nil
}

func (t *Telegram) post(ctx context.Context, client *http.Client, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram sendMessage returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
