package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/solacq/solacq/internal/api"
	"github.com/solacq/solacq/internal/collector"
	"github.com/solacq/solacq/internal/config"
	"github.com/solacq/solacq/internal/metrics"
	"github.com/solacq/solacq/internal/scheduler"
	"github.com/solacq/solacq/internal/status"
	"github.com/solacq/solacq/internal/storage"
)

// Command solacq polls a solar installation's telemetry sources and
// persists per-cycle snapshots.
//
// Sources:
//   - inverter gateway: GET {dtu.url}/api/record/live
//   - power meter:      GET {meter.url}/cm?cmnd=Status%2010
//
// Sinks:
//   - PostgreSQL (when database.host is configured)
//   - append-only weekly JSON files (otherwise)
//
// Usage:
//
//	solacq [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(appConfig.Logging)

	logger.WithFields(logrus.Fields{
		"dtu_url":   appConfig.DTU.URL,
		"meter_url": appConfig.Meter.URL,
		"interval":  appConfig.Poll.Interval.String(),
	}).Info("Starting collector")

	// One limiter shared by both sources keeps the total outgoing
	// request rate bounded.
	limiter := rate.NewLimiter(rate.Limit(appConfig.Poll.RateLimit), 1)
	gateway := api.NewDTUClient(appConfig.DTU.URL, limiter)
	meterClient := api.NewMeterClient(appConfig.Meter.URL, limiter)

	writer := selectWriter(appConfig, logger)
	defer writer.Close()

	metrics.Register(prometheus.DefaultRegisterer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coll := collector.New(gateway, meterClient, writer, logger)
	sched := scheduler.NewScheduler(ctx, coll, logger, appConfig.Poll.Interval)

	errChan := make(chan error, 1)

	go func() {
		if err := sched.Start(); err != nil {
			errChan <- fmt.Errorf("scheduler error: %w", err)
		}
	}()

	go func() {
		router := status.NewRouter(coll)
		addr := fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port)
		if err := router.Run(addr); err != nil {
			errChan <- fmt.Errorf("status server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Fatalf("Service error: %v", err)
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
	}

	logger.Println("Gracefully stopping collector...")
	sched.Stop()
	logger.Println("Collector stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format != "text" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// selectWriter picks the relational store when one is configured and
// the append-only file sink otherwise.
func selectWriter(cfg *config.Config, logger *logrus.Logger) storage.Writer {
	if cfg.Database.Configured() {
		logger.WithField("host", cfg.Database.Host).Info("Using PostgreSQL sink")
		return storage.NewPostgresWriter(cfg.Database.ConnString())
	}
	logger.WithField("dir", cfg.Sink.Dir).Info("No database configured, using file sink")
	return storage.NewFileWriter(cfg.Sink.Dir)
}
