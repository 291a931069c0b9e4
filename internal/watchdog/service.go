// Package watchdog restarts the stream loop when it is no longer running.
package watchdog

import (
	"context"
	"fmt"
	"strings"

	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/notifications"
	"github.com/sirupsen/logrus"
)

// Status is the result of a single check
type Status int

const (
	StatusUp Status = iota
	StatusRespawned
)

func (s Status) String() string {
	if s == StatusRespawned {
		return "respawned"
	}
	return "up"
}

// ProcessLister returns the command lines of running processes
type ProcessLister interface {
	CommandLines(ctx context.Context) ([]string, error)
}

// Launcher starts a process that outlives the watchdog
type Launcher interface {
	Launch(command []string) (pid int, err error)
}

// Service checks for the stream loop process and relaunches it
type Service struct {
	config   *config.Config
	lister   ProcessLister
	launcher Launcher
	notifier notifications.NotificationInterface
}

// NewService creates a new watchdog service
func NewService(cfg *config.Config, lister ProcessLister, launcher Launcher, notifier notifications.NotificationInterface) *Service {
	return &Service{
		config:   cfg,
		lister:   lister,
		launcher: launcher,
		notifier: notifier,
	}
}

// CheckAndRespawn relaunches the stream loop if no running process mentions
// the configured process name. The respawn email goes out before the launch;
// a missing email configuration aborts the respawn.
func (s *Service) CheckAndRespawn(ctx context.Context) (Status, error) {
	name, err := s.config.WatchdogProcessIdentifier()
	if err != nil {
		return StatusUp, err
	}

	running, err := s.isRunning(ctx, name)
	if err != nil {
		return StatusUp, fmt.Errorf("failed to list processes: %w", err)
	}
	if running {
		logrus.Infof("%s is up", name)
		return StatusUp, nil
	}

	command, err := s.config.WatchdogCommand()
	if err != nil {
		return StatusUp, err
	}
	commandText := strings.Join(command, " ")

	logrus.Infof("Respawning process %s", name)
	logrus.Debugf("Respawn command: %s", commandText)

	err = s.notifier.SendEmail(fmt.Sprintf("Respawning %s", name), fmt.Sprintf("Respawning process %s", commandText))
	if err != nil && notifications.IsFatal(err) {
		return StatusUp, err
	}

	pid, err := s.launcher.Launch(command)
	if err != nil {
		return StatusUp, fmt.Errorf("failed to launch %s: %w", commandText, err)
	}

	logrus.WithField("pid", pid).Infof("Respawned %s", name)
	return StatusRespawned, nil
}

func (s *Service) isRunning(ctx context.Context, name string) (bool, error) {
	lines, err := s.lister.CommandLines(ctx)
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		if strings.Contains(line, name) {
			return true, nil
		}
	}
	return false, nil
}
