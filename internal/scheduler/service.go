package scheduler

import (
	"context"

	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/watchdog"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Checker is the periodic liveness check
type Checker interface {
	CheckAndRespawn(ctx context.Context) (watchdog.Status, error)
}

// Service runs the watchdog check on a cron schedule
type Service struct {
	config  *config.Config
	checker Checker
	cron    *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, checker Checker) *Service {
	return &Service{
		config:  cfg,
		checker: checker,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start begins the scheduled checks
func (s *Service) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.config.WatchdogSchedule, func() {
		logrus.Debug("Starting scheduled liveness check")
		status, err := s.checker.CheckAndRespawn(ctx)
		if err != nil {
			logrus.Errorf("Scheduled liveness check failed: %v", err)
			return
		}
		logrus.Debugf("Liveness check finished: %s", status)
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q", s.config.WatchdogSchedule)
	return nil
}

// Stop stops the scheduler and waits for a running check to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
