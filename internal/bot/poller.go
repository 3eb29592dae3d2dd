// Package bot is the inbound side of the Telegram transport: a getUpdates
// long-poll loop that feeds text events into the conversation engine.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/engine"
)

type Poller struct {
	token       string
	apiBase     string
	pollTimeout time.Duration
	client      *http.Client
	engine      *engine.Engine
	logger      *log.Logger
}

func New(cfg config.TelegramConfig, eng *engine.Engine, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.New(log.Writer(), "[BOT] ", log.LstdFlags)
	}
	return &Poller{
		token:       cfg.Token,
		apiBase:     cfg.APIBaseURL,
		pollTimeout: cfg.PollTimeout,
		client:      &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
		engine:      eng,
		logger:      logger,
	}
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Run polls for updates until the context is cancelled. Updates are
// dispatched sequentially in arrival order, so events for a single chat are
// always applied to its session in order.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("telegram bot is running")
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := p.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Printf("polling error: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.dispatch(ctx, u)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, u update) {
	if u.Message == nil {
		return
	}
	text := strings.TrimSpace(u.Message.Text)
	if text == "" {
		return
	}
	chatID := u.Message.Chat.ID
	p.logger.Printf("received message %q from chat %d", text, chatID)

	if strings.HasPrefix(text, "/") {
		if text == "/start" {
			p.engine.Reset(ctx, chatID)
		}
		// Other commands are ignored.
		return
	}
	p.engine.HandleText(ctx, chatID, text)
}

func (p *Poller) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=%d&offset=%d",
		p.apiBase, p.token, int(p.pollTimeout.Seconds()), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("getUpdates returned %d: %s", resp.StatusCode, detail)
	}

	var parsed updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates response not ok")
	}
	return parsed.Result, nil
}
