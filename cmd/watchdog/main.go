package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/notifications"
	"github.com/legodeal/legodealbot/internal/scheduler"
	"github.com/legodeal/legodealbot/internal/watchdog"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	service := watchdog.NewService(
		cfg,
		watchdog.NewPSLister(),
		watchdog.NewDetachedLauncher(cfg.WatchdogLogFile),
		notifications.NewService(cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WatchdogSchedule == "" {
		if _, err := service.CheckAndRespawn(ctx); err != nil {
			logrus.Errorf("Liveness check failed: %v", err)
			os.Exit(1)
		}
		return
	}

	schedulerService := scheduler.NewService(cfg, service)
	if err := schedulerService.Start(ctx); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}

	<-ctx.Done()
	schedulerService.Stop()
}
