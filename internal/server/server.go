// Package server exposes the conversation engine and the domain resolver
// over HTTP and runs the periodic background jobs.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/bot"
	"github.com/VivekPatel4/movie-search-bot/internal/catalog"
	"github.com/VivekPatel4/movie-search-bot/internal/engine"
	"github.com/VivekPatel4/movie-search-bot/internal/messenger"
	"github.com/VivekPatel4/movie-search-bot/internal/resolver"
	"github.com/VivekPatel4/movie-search-bot/internal/session"
)

type Server struct {
	cfg      *config.Config
	engine   *engine.Engine
	catalog  *catalog.Holder
	sessions session.Store
	logger   *log.Logger

	// updateDomains runs one resolver pass and applies the result to the
	// catalog; stubbed in tests.
	updateDomains func(ctx context.Context) error
}

func New(cfg *config.Config, eng *engine.Engine, holder *catalog.Holder, sessions session.Store, updateDomains func(ctx context.Context) error, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{
		cfg:           cfg,
		engine:        eng,
		catalog:       holder,
		sessions:      sessions,
		logger:        logger,
		updateDomains: updateDomains,
	}
}

// Routes builds the echo instance with all handlers bound.
func (s *Server) Routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"status": "error", "message": msg})
		}
	}

	e.POST("/search", s.handleSearch)
	e.POST("/response", s.handleResponse)
	e.GET("/health", s.handleHealth)
	e.POST("/update-domains", s.handleUpdateDomains)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

type searchRequest struct {
	Query  string `json:"query"`
	ChatID int64  `json:"chat_id"`
}

type responseRequest struct {
	Text   string `json:"text"`
	ChatID int64  `json:"chat_id"`
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.engine.StartSearch(c.Request().Context(), req.ChatID, req.Query)
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "queued",
		"message": fmt.Sprintf("Searching '%s' in background", req.Query),
	})
}

func (s *Server) handleResponse(c echo.Context) error {
	var req responseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.engine.HandleText(c.Request().Context(), req.ChatID, req.Text)
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "processed",
		"message": "User response processed",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdateDomains(c echo.Context) error {
	s.logger.Printf("manual domain update requested")
	if err := s.updateDomains(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "updated",
		"message": "Domains updated successfully",
	})
}

// Run wires every component from config and blocks serving HTTP until the
// context is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := log.New(log.Writer(), "[SERVE] ", log.LstdFlags)

	store, err := newDomainStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// Seed catalog patched with whatever the last resolver run persisted.
	holder := catalog.NewHolder(catalog.Seed())
	if persisted, err := store.Load(ctx); err != nil {
		logger.Printf("loading persisted domains: %v", err)
	} else if len(persisted) > 0 {
		holder.ApplyResolved(persisted)
	}

	sessions := session.NewInMemoryStore()
	out := messenger.NewTelegram(cfg.Telegram, nil)
	eng := engine.New(holder, sessions, out, nil)
	res := resolver.New(cfg.Resolver, store, nil)

	updateDomains := func(ctx context.Context) error {
		resolved, err := res.Run(ctx)
		if err != nil {
			return err
		}
		holder.ApplyResolved(resolved)
		return nil
	}

	sched := NewScheduler(cfg, sessions, updateDomains, nil)
	sched.Start(ctx)
	defer sched.Stop()

	if cfg.Telegram.Enabled {
		poller := bot.New(cfg.Telegram, eng, nil)
		go func() {
			if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Printf("poller stopped: %v", err)
			}
		}()
	}

	srv := New(cfg, eng, holder, sessions, updateDomains, nil)
	e := srv.Routes()

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()

	logger.Printf("listening on %s", cfg.Server.Address)
	if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newDomainStore(ctx context.Context, cfg config.StorageConfig) (catalog.DomainStore, error) {
	switch cfg.Type {
	case "redis":
		store := catalog.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis connection failed (%s): %w", cfg.Redis.Addr, err)
		}
		return store, nil
	default:
		return catalog.NewFileStore(cfg.DomainsFile), nil
	}
}
