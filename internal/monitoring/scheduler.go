package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/services"
)

// SchedulerConfig holds the cron specs of the background jobs.
type SchedulerConfig struct {
	SecurityScanSpec    string
	SubmissionSweepSpec string
	SubmissionRetention time.Duration
}

// Scheduler runs the periodic security scan and submission sweep.
type Scheduler struct {
	cron     *cron.Cron
	cfg      SchedulerConfig
	security services.SecurityServiceProvider
	ballots  services.BallotServiceProvider
}

// NewScheduler validates the cron specs and registers the jobs.
func NewScheduler(cfg SchedulerConfig, security services.SecurityServiceProvider, ballots services.BallotServiceProvider) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		security: security,
		ballots:  ballots,
	}
	if _, err := s.cron.AddFunc(cfg.SecurityScanSpec, s.scanSecurity); err != nil {
		return nil, fmt.Errorf("invalid security scan schedule %q: %w", cfg.SecurityScanSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.SubmissionSweepSpec, s.sweepSubmissions); err != nil {
		return nil, fmt.Errorf("invalid submission sweep schedule %q: %w", cfg.SubmissionSweepSpec, err)
	}
	return s, nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Str("security_scan", s.cfg.SecurityScanSpec).Str("submission_sweep", s.cfg.SubmissionSweepSpec).Msg("Starting background scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopping background scheduler.")
}

func (s *Scheduler) scanSecurity() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if n := s.security.ScanFailedLogins(ctx); n > 0 {
		log.Warn().Int("alerts", n).Msg("Scheduler: brute-force scan raised alerts")
	}
}

func (s *Scheduler) sweepSubmissions() {
	if n := s.ballots.SweepFinished(s.cfg.SubmissionRetention); n > 0 {
		log.Info().Int("removed", n).Msg("Scheduler: swept finished submissions")
	}
}
