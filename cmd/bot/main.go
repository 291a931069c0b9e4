package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/monitoring"
	"github.com/legodeal/legodealbot/internal/notifications"
	"github.com/legodeal/legodealbot/internal/progress"
	"github.com/legodeal/legodealbot/internal/sources"
	"github.com/legodeal/legodealbot/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
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

	if err := cfg.CheckChannels(); err != nil {
		if cfg.StrictConfig {
			logrus.Fatalf("Refusing to start: %v", err)
		}
		logrus.Warnf("%v; notifications will fail when a post matches", err)
	}

	logrus.Infof("Starting legodealbot for r/%s", cfg.Subreddit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, markerName, err := storage.Open(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize marker storage: %v", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	tracker := progress.NewTracker(store, markerName)
	if cfg.ResetMarker {
		if err := tracker.Reset(ctx); err != nil {
			logrus.Fatalf("Failed to reset progress marker: %v", err)
		}
	}

	source, err := sources.NewFromConfig(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize feed: %v", err)
	}

	notificationService := notifications.NewService(cfg)
	monitoringService := monitoring.NewService(cfg, tracker, notificationService)

	var server *http.Server
	if cfg.Port != "" {
		server = startHTTPServer(cfg.Port, monitoringService)
	}

	stream := sources.NewStream(source, cfg.FeedPollInterval)
	stream.Start(ctx)

	runErr := monitoringService.Run(ctx, stream)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("Server forced to shutdown: %v", err)
		}
		cancel()
	}

	if runErr != nil {
		logrus.Errorf("Stream loop terminated: %v", runErr)
		os.Exit(1)
	}

	logrus.Info("legodealbot exited")
}

func startHTTPServer(port string, monitoringService *monitoring.Service) *http.Server {
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(monitoringService)).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("HTTP server failed: %v", err)
		}
	}()

	return server
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(monitoringService.GetMetrics()))
	}
}
