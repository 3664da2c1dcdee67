package dtu

import (
	"time"

	"github.com/solacq/solacq/internal/models"
)

// Gateway yields are reported in watt-hours; snapshots store kWh.
const whPerKWh = 1000

// Aggregate combines one cycle's inverter readings into an
// installation-wide snapshot. Sums are the exact arithmetic sum of each
// inverter's totals, never recomputed from cell-level data, and the
// Wh-to-kWh conversion for yields happens here exactly once. An empty
// reading list yields zero sums.
func Aggregate(ts time.Time, readings []models.InverterReading) models.InstallationSnapshot {
	snap := models.InstallationSnapshot{
		Timestamp: ts,
		Inverters: make([]models.InverterReading, len(readings)),
	}
	for i, r := range readings {
		r.YieldDay /= whPerKWh
		r.YieldTotal /= whPerKWh
		snap.Inverters[i] = r

		snap.PowerSum += r.Power
		snap.YieldDaySum += r.YieldDay
		snap.YieldTotalSum += r.YieldTotal
	}
	return snap
}
