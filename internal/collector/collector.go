// Package collector runs one poll cycle end to end: fetch both sources,
// decode, aggregate, normalize and write.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/solacq/solacq/internal/dtu"
	"github.com/solacq/solacq/internal/meter"
	"github.com/solacq/solacq/internal/metrics"
	"github.com/solacq/solacq/internal/models"
	"github.com/solacq/solacq/internal/storage"
)

// RecordFetcher fetches the inverter gateway's live record payload.
type RecordFetcher interface {
	FetchRecordLive(ctx context.Context) (models.RecordLive, error)
}

// StatusFetcher fetches the power meter's raw status payload.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) ([]byte, error)
}

// Collector orchestrates poll cycles. Failures are contained at the
// smallest scope: a failed source fetch makes that source's data absent
// for the cycle, a malformed inverter is dropped individually, and only
// a store failure is surfaced to the caller.
type Collector struct {
	gateway RecordFetcher
	meter   StatusFetcher
	writer  storage.Writer
	logger  *logrus.Logger
	now     func() time.Time

	// The most recent snapshots are the only state kept across cycles;
	// the ops endpoint reads them concurrently.
	mu        sync.RWMutex
	lastSnap  *models.InstallationSnapshot
	lastMeter *models.MeterSnapshot
}

func New(gateway RecordFetcher, meterClient StatusFetcher, writer storage.Writer, logger *logrus.Logger) *Collector {
	return &Collector{
		gateway: gateway,
		meter:   meterClient,
		writer:  writer,
		logger:  logger,
		now:     time.Now,
	}
}

// RunCycle executes one fetch-decode-aggregate-write iteration. It
// returns an error only when the cycle's writes were abandoned; fetch
// and decode failures are logged and contained.
func (c *Collector) RunCycle(ctx context.Context) error {
	ts := c.now()
	log := c.logger.WithField("cycle_id", uuid.NewString())

	snap := c.collectInstallation(ctx, ts, log)
	meterSnap := c.collectMeter(ctx, ts, log)

	if err := c.writer.WriteCycle(ctx, snap, meterSnap); err != nil {
		metrics.StoreErrors.Inc()
		log.WithError(err).Error("Failed to write poll cycle")
		return err
	}

	c.retain(snap, meterSnap)
	c.observe(snap, meterSnap, ts)

	if snap != nil {
		log.WithFields(logrus.Fields{
			"inverters":       len(snap.Inverters),
			"power_sum":       snap.PowerSum,
			"yield_day_sum":   snap.YieldDaySum,
			"yield_total_sum": snap.YieldTotalSum,
		}).Info("Poll cycle written")
	}
	return nil
}

// collectInstallation fetches and decodes the inverter side of the
// cycle. A fetch failure makes the installation data absent; the meter
// is still processed.
func (c *Collector) collectInstallation(ctx context.Context, ts time.Time, log logrus.FieldLogger) *models.InstallationSnapshot {
	rec, err := c.gateway.FetchRecordLive(ctx)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("dtu").Inc()
		log.WithError(err).Error("Failed to fetch inverter data")
		return nil
	}

	readings := dtu.DecodeAll(rec, log)
	if dropped := dtu.NumInverters(rec) - len(readings); dropped > 0 {
		metrics.MalformedInverters.Add(float64(dropped))
	}

	snap := dtu.Aggregate(ts, readings)
	return &snap
}

// collectMeter fetches and normalizes the meter side of the cycle. Any
// failure makes the meter data absent; inverter data is still written.
func (c *Collector) collectMeter(ctx context.Context, ts time.Time, log logrus.FieldLogger) *models.MeterSnapshot {
	body, err := c.meter.FetchStatus(ctx)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("meter").Inc()
		log.WithError(err).Error("Failed to fetch meter data")
		return nil
	}

	snap, err := meter.Normalize(body, ts)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("meter").Inc()
		log.WithError(err).WithField("raw", string(body)).Error("Failed to normalize meter data")
		return nil
	}
	return &snap
}

func (c *Collector) retain(snap *models.InstallationSnapshot, meterSnap *models.MeterSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap != nil {
		c.lastSnap = snap
	}
	if meterSnap != nil {
		c.lastMeter = meterSnap
	}
}

func (c *Collector) observe(snap *models.InstallationSnapshot, meterSnap *models.MeterSnapshot, ts time.Time) {
	metrics.CyclesTotal.Inc()
	metrics.LastCycleTime.Set(float64(ts.Unix()))
	if snap != nil {
		metrics.PowerSum.Set(snap.PowerSum)
		metrics.YieldDaySum.Set(snap.YieldDaySum)
	}
	if meterSnap != nil {
		metrics.MeterPowerIn.Set(meterSnap.PowerIn)
	}
}

// Latest returns the most recently retained snapshots. Either may be
// nil before the first successful cycle for its source.
func (c *Collector) Latest() (*models.InstallationSnapshot, *models.MeterSnapshot) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSnap, c.lastMeter
}

// Ready reports whether at least one installation snapshot has been
// collected and written.
func (c *Collector) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSnap != nil
}
