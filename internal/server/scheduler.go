package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/metrics"
	"github.com/VivekPatel4/movie-search-bot/internal/session"
)

// Scheduler runs the two background jobs on their own goroutine: the cron
// driven domain update and the session staleness sweep. Neither blocks
// inbound message handling.
type Scheduler struct {
	cfg           *config.Config
	sessions      session.Store
	updateDomains func(ctx context.Context) error
	logger        *log.Logger

	stop    chan struct{}
	lastRun time.Time
}

func NewScheduler(cfg *config.Config, sessions session.Store, updateDomains func(ctx context.Context) error, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	return &Scheduler{
		cfg:           cfg,
		sessions:      sessions,
		updateDomains: updateDomains,
		logger:        logger,
		stop:          make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) loop(ctx context.Context) {
	sweep := time.NewTicker(s.cfg.Session.SweepInterval)
	defer sweep.Stop()
	cronCheck := time.NewTicker(time.Minute)
	defer cronCheck.Stop()

	initial := time.NewTimer(s.cfg.Resolver.InitialDelay)
	defer initial.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-initial.C:
			s.logger.Printf("running initial domain update")
			s.runUpdate(ctx)
		case <-cronCheck.C:
			if s.isDue(time.Now()) {
				s.logger.Printf("running scheduled domain update")
				s.runUpdate(ctx)
			}
		case <-sweep.C:
			removed := s.sessions.SweepExpired(time.Now(), s.cfg.Session.TTL)
			if removed > 0 {
				metrics.SessionsSwept.Add(float64(removed))
				s.logger.Printf("swept %d expired sessions", removed)
			}
		}
	}
}

func (s *Scheduler) runUpdate(ctx context.Context) {
	s.lastRun = time.Now()
	if err := s.updateDomains(ctx); err != nil {
		s.logger.Printf("domain update failed: %v", err)
		return
	}
	s.logger.Printf("domain update completed")
}

// isDue reports whether the cron expression has a fire time between the last
// run and now.
func (s *Scheduler) isDue(now time.Time) bool {
	expr, err := cronexpr.Parse(s.cfg.Resolver.Cron)
	if err != nil {
		// Invalid expression: fall back to every 6 hours.
		return s.lastRun.IsZero() || now.Sub(s.lastRun) >= 6*time.Hour
	}
	base := s.lastRun
	if base.IsZero() {
		base = now.Add(-time.Minute)
	}
	next := expr.Next(base)
	return !next.IsZero() && !next.After(now)
}
