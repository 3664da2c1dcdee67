package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/solacq/solacq/internal/collector"
)

// cycleTimeout bounds one poll cycle; it must stay well under any
// sensible poll interval.
const cycleTimeout = 2 * time.Minute

type Scheduler struct {
	ctx       context.Context
	collector *collector.Collector
	logger    *logrus.Logger
	cron      *cron.Cron
	interval  time.Duration
}

func NewScheduler(ctx context.Context, c *collector.Collector, logger *logrus.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		ctx:       ctx,
		collector: c,
		logger:    logger,
		cron:      cron.New(),
		interval:  interval,
	}
}

// Start runs the first poll cycle immediately and schedules the rest at
// the fixed interval. Cycle errors are logged and never terminate the
// loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.collectData)
	if err != nil {
		return err
	}
	s.collectData()
	s.cron.Start()
	return nil
}

// collectData runs one poll cycle against the sources and the store.
func (s *Scheduler) collectData() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	if err := s.collector.RunCycle(ctx); err != nil {
		s.logger.WithError(err).Error("Poll cycle failed")
	}
}

// Stop the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
