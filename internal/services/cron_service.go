package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	slaSvc    *SLAService
	sweepSpec string
	logger    *logrus.Logger
}

// NewCronService creates a new CronService. The sweep spec uses
// seconds-precision cron syntax, e.g. "0 */5 * * * *" for every five minutes.
func NewCronService(slaSvc *SLAService, sweepSpec string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:      cron.New(cron.WithSeconds()),
		slaSvc:    slaSvc,
		sweepSpec: sweepSpec,
		logger:    logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.sweepSpec, s.slaSweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule SLA sweep: %w", err)
	}
	s.logger.WithField("spec", s.sweepSpec).Info("Scheduled SLA sweep")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) slaSweepJob() {
	if _, err := s.slaSvc.Sweep(); err != nil {
		s.logger.WithError(err).Error("Scheduled SLA sweep failed")
	}
}
