package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"eduhub/api/internal/repository"
	"eduhub/api/internal/service"
)

// Scheduler runs the periodic maintenance work: refreshing the admin
// dashboard cache and sweeping expired sessions.
type Scheduler struct {
	cron      *cron.Cron
	dashboard *service.DashboardService
	sessions  *repository.SessionRepository
	log       zerolog.Logger
}

func NewScheduler(dashboard *service.DashboardService, sessions *repository.SessionRepository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		dashboard: dashboard,
		sessions:  sessions,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	// hourly dashboard refresh so the first admin of the day sees warm data
	if _, err := s.cron.AddFunc("0 0 * * * *", s.refreshDashboard); err != nil {
		return err
	}
	// nightly session sweep
	if _, err := s.cron.AddFunc("0 30 3 * * *", s.sweepSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to a bound.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) refreshDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.dashboard.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("dashboard refresh failed")
	}
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("removed", n).Msg("expired sessions swept")
	}
}
